package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy admits no elements. Extracted text is escaped before it is
// sanitized, so tag-like text survives as literal characters.
var textPolicy = bluemonday.StrictPolicy()

var blocksTemplate = template.Must(template.New("blocks").Funcs(template.FuncMap{
	"paragraph": func(line string) template.HTML {
		return template.HTML(textPolicy.Sanitize(template.HTMLEscapeString(line)))
	},
	"media": SafeLocator,
	"rate": func(r float64) string {
		return fmt.Sprintf("%gx", r)
	},
	"percent": func(p float64) string {
		return fmt.Sprintf("%.1f%%", p)
	},
}).Parse(blocksHTML))

// WriteHTML renders the blocks of a presentation view as HTML fragments.
func WriteHTML(w io.Writer, v *PresentationView) error {
	if v == nil {
		return nil
	}
	return blocksTemplate.Execute(w, v)
}

// SafeLocator admits relative paths, http(s) URLs and inline media data
// URIs. Anything else is replaced by "#".
func SafeLocator(locator string) template.URL {
	l := strings.TrimSpace(locator)
	lower := strings.ToLower(l)
	switch {
	case l == "":
		return ""
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "data:audio/"),
		strings.HasPrefix(lower, "data:video/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(l, "/") && !strings.HasPrefix(l, "//"):
		return template.URL(l)
	default:
		return "#"
	}
}

const blocksHTML = `{{range .Blocks}}
<div class="page" id="{{.ID}}" data-position="{{.Position}}">
  <div class="page-header">
    <div class="page-title">{{.Label}}</div>
    <span class="source-tag {{.BadgeClass}}">{{.Badge}}</span>
  </div>
  {{with .Image}}
  <div class="page-image">
    <img src="{{media .Locator}}" alt="{{.Alt}}" loading="lazy" data-action="image-open">
  </div>
  {{end}}
  {{with .Audio}}
  <div class="page-audio">
    {{if .WaveformID}}<div class="audio-waveform" id="{{.WaveformID}}"></div>{{end}}
    <div class="audio-player{{if .Compact}} compact-controls{{end}}">
      <audio id="{{.ElementID}}" controls preload="metadata" src="{{media .Locator}}"></audio>
      <div class="audio-controls">
        <button class="play-button" data-action="audio-play" aria-label="{{if .Playing}}Pause{{else}}Play{{end}}">
          <i class="fas {{if .Playing}}fa-pause{{else}}fa-play{{end}}"></i>
        </button>
        <div class="progress-container" data-action="audio-seek">
          <div class="progress-bar"><div class="progress" style="width: {{percent .Progress}}"></div></div>
        </div>
        <div class="time-display">{{.Readout}}</div>
        <select class="speed-control" data-action="audio-rate">
          {{$rate := .Rate}}{{range .Rates}}<option value="{{.}}"{{if eq . $rate}} selected{{end}}>{{rate .}}</option>{{end}}
        </select>
      </div>
    </div>
  </div>
  {{end}}
  {{with .Video}}
  <div class="page-video">
    <div class="video-player{{if .Compact}} compact-controls{{end}}">
      <video id="{{.ElementID}}" controls preload="metadata" src="{{media .Locator}}"{{if .Poster}} poster="{{media .Poster}}"{{end}}>
        {{with .Captions}}<track kind="subtitles" label="{{.Label}}" srclang="{{.Lang}}" src="{{media .Locator}}" default>{{end}}
      </video>
    </div>
    {{if .Frames}}
    <div class="video-frames">
      <button class="frame-nav-btn" data-action="frames-prev" aria-label="Previous frame"><i class="fas fa-step-backward"></i></button>
      <div class="frame-thumbnails">
        {{$cursor := .FrameCursor}}{{range $i, $f := .Frames}}<img id="{{$f.ID}}" src="{{media $f.Locator}}" alt="{{$f.Alt}}" class="video-frame-thumbnail{{if eq $i $cursor}} current{{end}}" data-action="frame-select" data-frame="{{$i}}"{{with $f.Timestamp}} data-timestamp="{{.}}"{{end}}>{{end}}
      </div>
      <button class="frame-nav-btn" data-action="frames-next" aria-label="Next frame"><i class="fas fa-step-forward"></i></button>
    </div>
    {{end}}
    <div class="custom-video-controls">
      {{with .Captions}}<button class="caption-btn{{if .Active}} active{{end}}" title="Toggle Captions" data-action="captions-toggle"><i class="fas fa-closed-captioning"></i></button>{{end}}
      <select class="speed-control" data-action="video-rate">
        {{$rate := .Rate}}{{range .Rates}}<option value="{{.}}"{{if eq . $rate}} selected{{end}}>{{rate .}}</option>{{end}}
      </select>
    </div>
  </div>
  {{end}}
  {{with .Text}}
  <div class="text-container" id="{{.ID}}">
    <div class="text-header"><i class="fas fa-align-left"></i> Extracted Text</div>
    <div class="text-content">{{range .Paragraphs}}<p>{{paragraph .}}</p>{{end}}</div>
    <div class="text-actions">
      <button class="copy-btn{{if .Copied}} copied{{end}}" data-action="text-copy"><i class="fas {{if .Copied}}fa-check{{else}}fa-copy{{end}}"></i> {{.CopyLabel}}</button>
      {{if .CanSpeak}}<button class="speak-btn" data-action="text-speak" data-state="{{.SpeechState}}"><i class="fas {{if eq .SpeechState "stop"}}fa-stop{{else}}fa-volume-up{{end}}"></i> {{.SpeechLabel}}</button>{{end}}
    </div>
  </div>
  {{end}}
</div>
{{end}}`
