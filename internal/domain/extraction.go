package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ContentType is the declared media kind of an upload. A result is
// homogeneous: every unit in it is rendered with the same strategy.
type ContentType string

const (
	ContentTypePDF   ContentType = "pdf"
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"
	ContentTypeVideo ContentType = "video"
)

// ParseContentType maps the backend's fileType to a ContentType.
// Unknown or empty values fall back to pdf, which renders plain pages.
func ParseContentType(s string) ContentType {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case ContentTypeImage:
		return ContentTypeImage
	case ContentTypeAudio:
		return ContentTypeAudio
	case ContentTypeVideo:
		return ContentTypeVideo
	default:
		return ContentTypePDF
	}
}

// SourceKind is the provenance tag of a unit's text.
type SourceKind string

const (
	SourceDigital     SourceKind = "digital-text"
	SourceOCR         SourceKind = "ocr-text"
	SourceSpeech      SourceKind = "speech-text"
	SourceVideoSpeech SourceKind = "video-speech-text"
	SourceNone        SourceKind = "none"
)

// ParseSourceKind maps the backend's source tag. Anything unrecognised,
// including the backend's "error" tag, is SourceNone.
func ParseSourceKind(wire string) SourceKind {
	switch strings.ToLower(strings.TrimSpace(wire)) {
	case "digital":
		return SourceDigital
	case "ocr":
		return SourceOCR
	case "speech":
		return SourceSpeech
	case "video":
		return SourceVideoSpeech
	default:
		return SourceNone
	}
}

// Badge returns the label shown next to a unit header.
func (k SourceKind) Badge() string {
	switch k {
	case SourceDigital:
		return "Digital Text"
	case SourceOCR:
		return "OCR Text"
	case SourceSpeech:
		return "Speech-to-Text"
	case SourceVideoSpeech:
		return "Video Speech-to-Text"
	default:
		return "No Text"
	}
}

// BadgeClass returns the CSS modifier for the badge.
func (k SourceKind) BadgeClass() string {
	switch k {
	case SourceDigital:
		return "source-digital"
	case SourceOCR:
		return "source-ocr"
	case SourceSpeech:
		return "source-speech"
	case SourceVideoSpeech:
		return "source-video"
	default:
		return "source-none"
	}
}

// ContentUnit is one page, track or segment of an extraction result.
type ContentUnit struct {
	Index  int        `json:"index"`
	Source SourceKind `json:"source"`
	Text   string     `json:"text,omitempty"`

	Image string `json:"image,omitempty"`
	Audio string `json:"audio,omitempty"`
	Video string `json:"video,omitempty"`

	Thumbnail string   `json:"thumbnail,omitempty"`
	Frames    []string `json:"frames,omitempty"`
	// FrameTimestamps is aligned by position with Frames; NaN marks a
	// frame without a known offset.
	FrameTimestamps []float64 `json:"-"`
	Captions        string    `json:"captions,omitempty"`
}

// HasText reports whether the unit carries non-blank text.
func (u ContentUnit) HasText() bool {
	return strings.TrimSpace(u.Text) != ""
}

// FrameTimestamp returns the offset aligned with frame i, if any.
func (u ContentUnit) FrameTimestamp(i int) (float64, bool) {
	if i < 0 || i >= len(u.FrameTimestamps) {
		return 0, false
	}
	ts := u.FrameTimestamps[i]
	if math.IsNaN(ts) || math.IsInf(ts, 0) || ts < 0 {
		return 0, false
	}
	return ts, true
}

// DownloadLinks are opaque locators surfaced as-is.
type DownloadLinks struct {
	Original string `json:"original"`
	Text     string `json:"text"`
}

// ExtractionResult is the structured output of the extraction backend.
type ExtractionResult struct {
	Filename      string         `json:"filename"`
	ContentType   ContentType    `json:"contentType"`
	Units         []ContentUnit  `json:"units"`
	DownloadLinks *DownloadLinks `json:"downloadLinks,omitempty"`
}

// Clone returns a deep copy so callers can hold a result that nobody else
// can mutate.
func (r *ExtractionResult) Clone() *ExtractionResult {
	if r == nil {
		return nil
	}
	out := &ExtractionResult{
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Units:       make([]ContentUnit, len(r.Units)),
	}
	for i, u := range r.Units {
		u.Frames = append([]string(nil), u.Frames...)
		u.FrameTimestamps = append([]float64(nil), u.FrameTimestamps...)
		out.Units[i] = u
	}
	if r.DownloadLinks != nil {
		links := *r.DownloadLinks
		out.DownloadLinks = &links
	}
	return out
}

// UploadResponse is the JSON body returned by the extraction backend.
type UploadResponse struct {
	Success       bool           `json:"success,omitempty"`
	Error         string         `json:"error,omitempty"`
	Filename      string         `json:"filename"`
	FileType      string         `json:"fileType"`
	Pages         []PagePayload  `json:"pages"`
	DownloadLinks *DownloadLinks `json:"downloadLinks,omitempty"`
}

// PagePayload is one element of UploadResponse.Pages.
type PagePayload struct {
	Page            int         `json:"page"`
	Text            string      `json:"text"`
	Source          string      `json:"source"`
	Image           string      `json:"image,omitempty"`
	Audio           string      `json:"audio,omitempty"`
	Video           string      `json:"video,omitempty"`
	Thumbnail       string      `json:"thumbnail,omitempty"`
	Frames          []string    `json:"frames,omitempty"`
	FrameTimestamps []Timestamp `json:"frameTimestamps,omitempty"`
	Captions        string      `json:"captions,omitempty"`
}

// Timestamp is a media offset in seconds. The backend may send it as a
// number or a numeric string; null and anything else decode to NaN.
type Timestamp float64

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp(math.NaN())
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Timestamp(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*t = Timestamp(v)
			return nil
		}
	}
	*t = Timestamp(math.NaN())
	return nil
}

// ToResult converts a successful response into an ExtractionResult,
// treating absent optional fields as not present.
func (r *UploadResponse) ToResult() *ExtractionResult {
	result := &ExtractionResult{
		Filename:    r.Filename,
		ContentType: ParseContentType(r.FileType),
		Units:       make([]ContentUnit, 0, len(r.Pages)),
	}
	if r.DownloadLinks != nil {
		links := *r.DownloadLinks
		result.DownloadLinks = &links
	}

	for i, p := range r.Pages {
		index := p.Page
		if index <= 0 {
			index = i + 1
		}
		unit := ContentUnit{
			Index:     index,
			Source:    ParseSourceKind(p.Source),
			Text:      p.Text,
			Image:     p.Image,
			Audio:     p.Audio,
			Video:     p.Video,
			Thumbnail: p.Thumbnail,
			Captions:  p.Captions,
			Frames:    append([]string(nil), p.Frames...),
		}

		stamps := p.FrameTimestamps
		if len(stamps) > len(unit.Frames) {
			stamps = stamps[:len(unit.Frames)]
		}
		if len(stamps) > 0 {
			unit.FrameTimestamps = make([]float64, len(stamps))
			for j, ts := range stamps {
				unit.FrameTimestamps[j] = float64(ts)
			}
		}

		result.Units = append(result.Units, unit)
	}

	return result
}
