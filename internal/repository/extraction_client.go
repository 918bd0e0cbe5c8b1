package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"extract-viewer/internal/domain"
	apperrors "extract-viewer/pkg/errors"

	"golang.org/x/sync/semaphore"
)

const (
	uploadPath     = "/upload"
	uploadField    = "file"
	maxResponseLen = 512 << 20
)

// ExtractionClient posts files to the extraction backend. It implements
// domain.Extractor.
type ExtractionClient struct {
	baseURL    string
	httpClient *http.Client
	slots      *semaphore.Weighted
	logger     domain.Logger
}

// NewExtractionClient creates a client for the backend at baseURL. At most
// maxConcurrent requests are in flight at once.
func NewExtractionClient(baseURL string, timeout time.Duration, maxConcurrent int64, logger domain.Logger) *ExtractionClient {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExtractionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		slots:      semaphore.NewWeighted(maxConcurrent),
		logger:     logger,
	}
}

// Extract uploads file as multipart field "file" and decodes the reply.
//
// A reply carrying {"error": msg} yields a server error with msg verbatim,
// whatever its status. Network failures, other non-2xx replies and bodies
// that do not decode yield a transport error.
func (c *ExtractionClient) Extract(ctx context.Context, filename string, file io.Reader) (*domain.ExtractionResult, error) {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, apperrors.NewTransportError("upload cancelled while waiting", err)
	}
	defer c.slots.Release(1)

	pr, pw := io.Pipe()
	defer pr.Close()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile(uploadField, filename)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, pr)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to create request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Extraction request failed", err, "filename", filename)
		return nil, apperrors.NewTransportError("extraction backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read response", err)
	}
	c.logger.Debug("Extraction response received",
		"filename", filename,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).String())

	result, err := decodeUploadResponse(body, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	if result.Filename == "" {
		result.Filename = filename
	}
	return result, nil
}

// DecodeUploadResponse decodes a saved backend reply.
func DecodeUploadResponse(r io.Reader) (*domain.ExtractionResult, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseLen))
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read response", err)
	}
	return decodeUploadResponse(body, http.StatusOK)
}

func decodeUploadResponse(body []byte, status int) (*domain.ExtractionResult, error) {
	var payload domain.UploadResponse
	decodeErr := json.Unmarshal(bytes.TrimSpace(body), &payload)

	if decodeErr == nil && payload.Error != "" {
		return nil, apperrors.NewServerError(payload.Error)
	}
	if status < 200 || status > 299 {
		return nil, apperrors.NewTransportError(fmt.Sprintf("server responded with status: %d", status), decodeErr)
	}
	if decodeErr != nil {
		return nil, apperrors.NewTransportError("failed to decode response", decodeErr)
	}
	return payload.ToResult(), nil
}
