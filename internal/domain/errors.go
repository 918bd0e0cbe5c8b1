package domain

import "errors"

// Domain errors
var (
	ErrNoFileSelected     = errors.New("no file selected")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrUploadInProgress   = errors.New("upload already in progress")
	ErrBlockNotFound      = errors.New("block not found")
	ErrControlUnavailable = errors.New("control not available for this block")
	ErrUnsupportedRate    = errors.New("unsupported playback rate")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrPreferencesStore   = errors.New("preference store not initialized")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
