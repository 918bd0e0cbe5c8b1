package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/render"
	"extract-viewer/internal/service"
)

type pageData struct {
	View   service.View
	Theme  domain.Theme
	Blocks template.HTML
	Accept string
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"media": render.SafeLocator,
}).Parse(pageHTML))

// Page renders the full application page for the session
func (h *AppHandler) Page(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	theme := domain.ThemeLight
	if visitor, ok := VisitorFromContext(r); ok && h.container.PreferenceService != nil {
		t, err := h.container.PreferenceService.GetTheme(r.Context(), visitor)
		if err != nil {
			h.logger.Warn("Failed to load theme", "visitor", visitor, "error", err)
		} else {
			theme = t
		}
	}

	view := s.View()
	var blocks bytes.Buffer
	if err := render.WriteHTML(&blocks, view.Presentation); err != nil {
		h.logger.Error("Failed to render blocks", err, "session", s.ID)
		writeError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	data := pageData{
		View:   view,
		Theme:  theme,
		Blocks: template.HTML(blocks.String()),
		Accept: acceptList(),
	}
	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, data); err != nil {
		h.logger.Error("Failed to render page", err, "session", s.ID)
		writeError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page.Bytes())
}

func acceptList() string {
	var b bytes.Buffer
	for i, ext := range service.AllowedExtensions {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

const pageHTML = `<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Content Extractor</title>
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
  <script src="https://unpkg.com/wavesurfer.js@7"></script>
</head>
<body>
  <main class="container">
    <header>
      <h1>Content Extractor</h1>
      <button id="theme-toggle" aria-label="Toggle theme"><i class="fas fa-adjust"></i></button>
    </header>

    <section id="upload-section"{{if not .View.FormVisible}} hidden{{end}}>
      <form id="upload-form" enctype="multipart/form-data">
        <label class="drop-zone" id="drop-zone">
          <input type="file" id="file-input" name="file" accept="{{.Accept}}">
          <span id="file-name">{{with .View.Selection}}<i class="file-type-icon {{.Icon}}"></i> {{.Filename}}{{else}}Drop a PDF, image, audio, or video file{{end}}</span>
        </label>
        <button type="submit" id="upload-button"{{if .View.Loading}} disabled{{end}}>Extract</button>
      </form>
    </section>

    <section id="loading"{{if not .View.Loading}} hidden{{end}}>
      <div class="spinner"></div><p>Processing your file...</p>
    </section>

    <section id="results-section"{{if not .View.ResultsVisible}} hidden{{end}}>
      <div class="results-header">
        <h2 id="results-filename">{{with .View.Presentation}}{{.Filename}}{{end}}</h2>
        <div class="download-links">{{with .View.Presentation}}{{with .DownloadLinks}}
          {{if .Text}}<a href="{{media .Text}}" download>Download text</a>{{end}}
          {{if .Original}}<a href="{{media .Original}}" download>Download original</a>{{end}}{{end}}{{end}}
        </div>
        <button id="back-button">Back</button>
        <button id="reset-button">New file</button>
      </div>
      <div id="results-content">{{.Blocks}}</div>
    </section>
  </main>

  <div id="image-modal" class="modal"{{if not .View.Modal.Open}} hidden{{end}}>
    <span class="close-modal" aria-label="Close">&times;</span>
    <img id="modal-image" src="{{media .View.Modal.Locator}}" alt="{{.View.Modal.Title}}">
    <div id="modal-caption">{{.View.Modal.Title}}</div>
  </div>

  <div id="notifications">{{range .View.Notifications}}
    <div class="notification {{.Severity}}" data-id="{{.ID}}" data-expires-in="{{.ExpiresIn}}"><i class="fas {{.Icon}}"></i> {{.Message}}</div>{{end}}
  </div>

  <script>
` + pageScript + `
  </script>
</body>
</html>`

const pageScript = `(function () {
  const caps = ['media'];
  if (navigator.clipboard) caps.push('clipboard');
  if ('speechSynthesis' in window) caps.push('speech');
  if (window.WaveSurfer) caps.push('waveform');
  if ('ResizeObserver' in window) caps.push('resize');
  if (Element.prototype.scrollIntoView) caps.push('viewport');

  const waves = {};
  const utterances = {};
  const observers = {};
  let lastCopy = null;

  async function call(method, url, body, refresh) {
    const opts = { method, credentials: 'same-origin', headers: { 'X-Host-Capabilities': caps.join(',') } };
    if (body instanceof FormData) {
      opts.body = body;
    } else if (body !== undefined) {
      opts.headers['Content-Type'] = 'application/json';
      opts.body = JSON.stringify(body);
    }
    const res = await fetch(url, opts);
    const snap = await res.json();
    await apply(snap, refresh);
    return snap;
  }

  function blockURL(el, path) {
    const page = el.closest('.page');
    return '/api/v1/blocks/' + page.dataset.position + '/' + path;
  }

  function expire(div, ms) {
    setTimeout(function () { div.remove(); }, Math.max(ms || 0, 0));
  }

  async function apply(snap, refresh) {
    if (!snap || !snap.view) return;
    const v = snap.view;
    document.getElementById('upload-section').hidden = !v.form_visible;
    document.getElementById('loading').hidden = !v.loading;
    document.getElementById('results-section').hidden = !v.results_visible;
    document.getElementById('upload-button').disabled = v.loading;
    const name = document.getElementById('file-name');
    name.textContent = v.selection ? v.selection.filename : 'Drop a PDF, image, audio, or video file';
    document.getElementById('results-filename').textContent = v.presentation ? v.presentation.filename : '';

    const modal = document.getElementById('image-modal');
    modal.hidden = !v.modal.open;
    document.getElementById('modal-image').src = v.modal.locator || '';
    document.getElementById('modal-caption').textContent = v.modal.title || '';

    const list = document.getElementById('notifications');
    list.innerHTML = '';
    (v.notifications || []).forEach(function (n) {
      const div = document.createElement('div');
      div.className = 'notification ' + n.severity;
      div.dataset.id = n.id;
      div.textContent = n.message;
      div.addEventListener('click', function () { call('POST', '/api/v1/notifications/' + n.id + '/dismiss'); });
      list.appendChild(div);
      expire(div, n.expires_in_ms);
    });

    if (refresh) {
      const html = await fetch('/api/v1/session/blocks', { credentials: 'same-origin' }).then(function (r) { return r.text(); });
      document.getElementById('results-content').innerHTML = html;
    } else if (v.presentation) {
      v.presentation.blocks.forEach(patch);
    }
    (snap.effects || []).forEach(run);
  }

  function patch(b) {
    const page = document.getElementById(b.id);
    if (!page) return;
    const player = b.audio || b.video;
    if (player) {
      const icon = page.querySelector('.play-button i');
      if (icon) icon.className = 'fas ' + (player.playing ? 'fa-pause' : 'fa-play');
      const bar = page.querySelector('.progress');
      if (bar) bar.style.width = player.progress.toFixed(1) + '%';
      const readout = page.querySelector('.time-display');
      if (readout) readout.textContent = player.readout;
      const box = page.querySelector('.audio-player, .video-player');
      if (box) box.classList.toggle('compact-controls', player.compact);
    }
    if (b.video) {
      (b.video.frames || []).forEach(function (f) {
        const img = document.getElementById(f.id);
        if (img) img.classList.toggle('current', f.current);
      });
      const cc = page.querySelector('.caption-btn');
      if (cc && b.video.captions) cc.classList.toggle('active', b.video.captions.active);
    }
    if (b.text) {
      const copy = page.querySelector('.copy-btn');
      if (copy) {
        copy.classList.toggle('copied', b.text.copied);
        copy.innerHTML = '<i class="fas ' + (b.text.copied ? 'fa-check' : 'fa-copy') + '"></i> ';
        copy.appendChild(document.createTextNode(b.text.copy_label));
      }
      const speak = page.querySelector('.speak-btn');
      if (speak) {
        speak.dataset.state = b.text.speech_state;
        speak.innerHTML = '<i class="fas ' + (b.text.speech_state === 'stop' ? 'fa-stop' : 'fa-volume-up') + '"></i> ';
        speak.appendChild(document.createTextNode(b.text.speech_label));
      }
    }
  }

  function media(id) { return document.getElementById(id); }

  function run(e) {
    switch (e.kind) {
      case 'clipboard.write':
        navigator.clipboard.writeText(e.text).catch(function (err) {
          if (lastCopy) call('POST', blockURL(lastCopy, 'text/copy-failed'), { reason: String(err) });
        });
        break;
      case 'speech.speak': {
        const u = new SpeechSynthesisUtterance(e.text);
        utterances[e.target] = u;
        u.onend = function () {
          const el = document.getElementById(e.target);
          if (el && utterances[e.target] === u) call('POST', blockURL(el, 'text/speech-ended'));
        };
        speechSynthesis.speak(u);
        break;
      }
      case 'speech.cancel':
        delete utterances[e.target];
        speechSynthesis.cancel();
        break;
      case 'media.play': { const m = media(e.target); if (m) m.play().catch(function () {}); break; }
      case 'media.pause': { const m = media(e.target); if (m) m.pause(); break; }
      case 'media.seek': { const m = media(e.target); if (m) m.currentTime = e.value || 0; break; }
      case 'media.rate': { const m = media(e.target); if (m) m.playbackRate = e.value || 1; break; }
      case 'media.track': {
        const m = media(e.target);
        if (m && m.textTracks.length) m.textTracks[0].mode = e.mode;
        break;
      }
      case 'media.unbind':
        if (waves[e.target]) { waves[e.target].destroy(); delete waves[e.target]; }
        if (observers[e.target]) { observers[e.target].disconnect(); delete observers[e.target]; }
        break;
      case 'waveform.load':
        if (window.WaveSurfer) {
          waves[e.target] = WaveSurfer.create({ container: '#' + e.target, height: 80 });
          waves[e.target].load(e.locator);
        }
        break;
      case 'resize.observe': {
        const el = media(e.target);
        if (!el) break;
        const kind = el.tagName === 'VIDEO' ? 'video' : 'audio';
        observers[e.target] = new ResizeObserver(function (entries) {
          call('POST', blockURL(el, kind + '/layout'), { value: entries[0].contentRect.width });
        });
        observers[e.target].observe(el.parentElement);
        break;
      }
      case 'viewport.scroll': {
        const el = media(e.target);
        if (el) el.scrollIntoView({ behavior: 'smooth', block: 'nearest', inline: 'center' });
        break;
      }
    }
  }

  document.addEventListener('click', function (ev) {
    const el = ev.target.closest('[data-action]');
    if (!el) return;
    switch (el.dataset.action) {
      case 'image-open': call('POST', blockURL(el, 'image/open')); break;
      case 'audio-play': call('POST', blockURL(el, 'audio/play')); break;
      case 'audio-seek': {
        const r = el.getBoundingClientRect();
        call('POST', blockURL(el, 'audio/seek'), { value: (ev.clientX - r.left) / r.width });
        break;
      }
      case 'frames-prev': call('POST', blockURL(el, 'video/frames/prev')); break;
      case 'frames-next': call('POST', blockURL(el, 'video/frames/next')); break;
      case 'frame-select': call('POST', blockURL(el, 'video/frames/' + el.dataset.frame + '/select')); break;
      case 'captions-toggle': call('POST', blockURL(el, 'video/captions')); break;
      case 'text-copy':
        lastCopy = el;
        call('POST', blockURL(el, 'text/copy')).then(function () {
          setTimeout(function () { call('POST', blockURL(el, 'text/copied')); }, 2000);
        });
        break;
      case 'text-speak': call('POST', blockURL(el, 'text/speak')); break;
    }
  });

  document.addEventListener('change', function (ev) {
    const el = ev.target.closest('[data-action]');
    if (!el) return;
    if (el.dataset.action === 'audio-rate') call('POST', blockURL(el, 'audio/rate'), { value: parseFloat(el.value) });
    if (el.dataset.action === 'video-rate') call('POST', blockURL(el, 'video/rate'), { value: parseFloat(el.value) });
  });

  ['timeupdate', 'ended', 'play', 'pause'].forEach(function (type) {
    document.addEventListener(type, function (ev) {
      const m = ev.target;
      if (!(m instanceof HTMLMediaElement) || !m.closest('.page')) return;
      const kind = m.tagName === 'VIDEO' ? 'video' : 'audio';
      if (type === 'timeupdate') {
        call('POST', blockURL(m, kind + '/time'), { current: m.currentTime, duration: m.duration });
      } else if (type === 'ended') {
        call('POST', blockURL(m, kind + '/ended'));
      } else {
        call('POST', blockURL(m, kind + (type === 'play' ? '/played' : '/paused')));
      }
    }, true);
  });

  const input = document.getElementById('file-input');
  input.addEventListener('change', async function () {
    const file = input.files[0];
    if (!file) return;
    const head = new Uint8Array(await file.slice(0, 3072).arrayBuffer());
    let bin = '';
    head.forEach(function (b) { bin += String.fromCharCode(b); });
    call('POST', '/api/v1/select', { filename: file.name, head: btoa(bin) });
  });

  const zone = document.getElementById('drop-zone');
  zone.addEventListener('dragover', function (ev) { ev.preventDefault(); zone.classList.add('dragover'); });
  zone.addEventListener('dragleave', function () { zone.classList.remove('dragover'); });
  zone.addEventListener('drop', async function (ev) {
    ev.preventDefault();
    zone.classList.remove('dragover');
    const file = ev.dataTransfer.files[0];
    if (!file) return;
    const snap = await call('POST', '/api/v1/drop', { filename: file.name });
    if (!snap.error) {
      const dt = new DataTransfer();
      dt.items.add(file);
      input.files = dt.files;
    }
  });

  document.getElementById('upload-form').addEventListener('submit', function (ev) {
    ev.preventDefault();
    document.getElementById('loading').hidden = false;
    call('POST', '/upload', new FormData(ev.target), true);
  });

  document.getElementById('back-button').addEventListener('click', function () { input.value = ''; call('POST', '/api/v1/back', undefined, true); });
  document.getElementById('reset-button').addEventListener('click', function () { input.value = ''; call('POST', '/api/v1/reset', undefined, true); });
  document.querySelector('.close-modal').addEventListener('click', function () { call('POST', '/api/v1/modal/close'); });
  document.getElementById('image-modal').addEventListener('click', function (ev) {
    if (ev.target.id === 'image-modal') call('POST', '/api/v1/modal/close');
  });
  document.addEventListener('keydown', function (ev) { if (ev.key === 'Escape') call('POST', '/api/v1/escape'); });

  document.getElementById('theme-toggle').addEventListener('click', async function () {
    const res = await fetch('/api/v1/preferences/theme/toggle', { method: 'POST', credentials: 'same-origin' });
    const body = await res.json();
    if (body.theme) document.documentElement.dataset.theme = body.theme;
  });

  document.querySelectorAll('#notifications .notification').forEach(function (div) {
    expire(div, parseInt(div.dataset.expiresIn, 10));
  });

  call('GET', '/api/v1/session', undefined, true);
})();`
