package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/render"
)

// PageOptions configures the interactive preview page.
type PageOptions struct {
	Title      string
	Legend     []config.LegendEntry
	LinkStyle  string
	LiveReload bool
}

type pageData struct {
	PageOptions
	Script template.JS
	SVG    template.HTML
}

const pageHead = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; font-family: sans-serif; background: #fafafa; }
  #chart { width: 100%; height: calc(100% - 2.5rem); display: block; }
  #legend { height: 2.5rem; display: flex; gap: 1rem; align-items: center; padding: 0 1rem; font-size: 12px; overflow-x: auto; }
  #legend span.swatch { display: inline-block; width: 12px; height: 12px; border: 1px solid #ccc; margin-right: 4px; vertical-align: middle; }
  g.node { transition-property: transform; }
</style>
</head>
<body>
<div id="legend">{{range .Legend}}<span><span class="swatch" style="background: {{.Color}}"></span>{{.Title}}</span>{{end}}</div>
{{end}}`

const pageTemplate = pageHead + `{{template "head" .}}<svg id="chart" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><g class="links"></g><g class="nodes"></g></svg>
<script>{{.Script}}</script>
</body>
</html>
`

const standaloneTemplate = pageHead + `{{template "head" .}}<div id="chart">{{.SVG}}</div>
</body>
</html>
`

// patchScript applies patches from the server and posts toggle clicks.
const patchScript = `
(function() {
  var NS = 'http://www.w3.org/2000/svg';
  var svg = document.getElementById('chart');
  var linksG = svg.querySelector('g.links');
  var nodesG = svg.querySelector('g.nodes');
  var linkStyle = %q;

  function byID(parent, sel, id) {
    return parent.querySelector(sel + '[data-id="' + CSS.escape(id) + '"]');
  }

  function place(el, x, y, ms) {
    el.style.transitionDuration = ms + 'ms';
    el.style.transform = 'translate(' + x + 'px,' + y + 'px)';
  }

  function apply(p) {
    svg.setAttribute('viewBox', p.view_box.join(' '));
    p.exit.forEach(function(id) { var el = byID(nodesG, 'g.node', id); if (el) el.remove(); });
    p.link_exit.forEach(function(id) { var el = byID(linksG, 'path.link', id); if (el) el.remove(); });
    p.link_enter.concat(p.link_update).forEach(function(l) {
      var el = byID(linksG, 'path.link', l.id);
      if (!el) {
        el = document.createElementNS(NS, 'path');
        el.setAttribute('class', 'link');
        el.setAttribute('data-id', l.id);
        el.setAttribute('style', linkStyle);
        linksG.appendChild(el);
      }
      el.setAttribute('d', l.d);
    });
    p.enter.forEach(function(e) {
      var tmp = document.createElementNS(NS, 'g');
      tmp.innerHTML = e.svg;
      var el = tmp.firstElementChild;
      el.removeAttribute('transform');
      place(el, e.from_x, e.from_y, 0);
      nodesG.appendChild(el);
      el.getBoundingClientRect();
      place(el, e.x, e.y, p.duration_ms);
    });
    p.update.forEach(function(m) {
      var el = byID(nodesG, 'g.node', m.id);
      if (!el) return;
      place(el, m.x, m.y, p.duration_ms);
      var icon = el.querySelector('.toggle-icon');
      if (icon) icon.textContent = m.glyph;
    });
  }

  function load(resp) {
    if (resp.status === 409) { location.reload(); return null; }
    if (!resp.ok) throw new Error(resp.statusText);
    return resp.json();
  }

  nodesG.addEventListener('click', function(ev) {
    var btn = ev.target.closest('.toggle-btn');
    if (!btn) return;
    ev.stopPropagation();
    var id = btn.closest('g.node').getAttribute('data-id');
    fetch('/api/toggle?id=' + encodeURIComponent(id), {method: 'POST'})
      .then(load).then(function(p) { if (p) apply(p); })
      .catch(function(err) { console.error('[orgchart] toggle failed', err); });
  });

  fetch('/api/chart').then(load).then(function(p) { if (p) apply(p); })
    .catch(function(err) { console.error('[orgchart] load failed', err); });
})();
`

var (
	page       = template.Must(template.New("page").Parse(pageTemplate))
	standalone = template.Must(template.New("standalone").Parse(standaloneTemplate))
)

// WritePage writes the interactive preview page. Cards arrive as patches
// from /api/chart and /api/toggle.
func WritePage(w io.Writer, opts PageOptions) error {
	script := fmt.Sprintf(patchScript, opts.LinkStyle)
	if opts.LiveReload {
		script += liveReloadJS
	}
	return page.Execute(w, pageData{PageOptions: opts, Script: template.JS(script)})
}

// WriteStandalone writes a self-contained page with frame inlined as SVG.
func WriteStandalone(w io.Writer, title string, legend []config.LegendEntry, f render.Frame) error {
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, f); err != nil {
		return err
	}
	doc := buf.Bytes()
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:] // drop the XML prolog
	}
	return standalone.Execute(w, pageData{
		PageOptions: PageOptions{Title: title, Legend: legend},
		SVG:         template.HTML(doc),
	})
}

// SaveStandalone writes WriteStandalone output to path.
func SaveStandalone(path, title string, legend []config.LegendEntry, f render.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteStandalone(file, title, legend, f); err != nil {
		return err
	}
	return file.Close()
}
