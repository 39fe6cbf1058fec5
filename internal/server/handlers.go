package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/streamlit/streamlit-bokeh/internal/bridge"
	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/component"
	"github.com/streamlit/streamlit-bokeh/internal/config"
	"github.com/streamlit/streamlit-bokeh/internal/dom"
	"github.com/streamlit/streamlit-bokeh/internal/host"
	"github.com/streamlit/streamlit-bokeh/internal/mocks"
	"github.com/streamlit/streamlit-bokeh/internal/preview"
	"github.com/streamlit/streamlit-bokeh/internal/storage"
)

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":        "healthy",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"version":       config.GetVersion(),
		"bokeh_version": component.RequiredBokehVersion,
		"storage":       string(s.DeploymentMode),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// HandleBundle serves a version-stamped runtime bundle, mirroring it from
// the upstream CDN on the first request.
func (s *Server) HandleBundle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/bokeh/")
	if filename == "" || strings.Contains(filename, "/") {
		http.NotFound(w, r)
		return
	}

	data, err := s.bundleBytes(r.Context(), filename)
	if err != nil {
		s.log.WarnErr("bundle request failed", err, map[string]interface{}{"file": filename})
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", storage.GetContentType(filename))
	// Stamped filenames never change content, so clients may cache forever.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

// HandleDemo renders the sample figure through the full component path
// (producer -> payload -> bridge -> preview runtime) and returns the result
// as an HTML page.
func (s *Server) HandleDemo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = host.DefaultTheme
	}

	spec, err := mocks.LineChartSpec(component.RequiredBokehVersion)
	if err != nil {
		http.Error(w, "demo figure unavailable", http.StatusInternalServerError)
		return
	}

	opts := component.DefaultOptions()
	opts.Theme = theme
	payload, err := component.BokehChart(spec, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Each request is its own page: fresh registry, container, and frames.
	registry := bundles.NewRegistry(&storageFetcher{server: s}, s.log)
	runtime := preview.New(s.log)
	frames := dom.NewManualScheduler()
	comp := host.NewComponent(bridge.New(runtime, registry, frames, s.log), s.log)

	root := dom.NewRoot()
	slot := dom.NewElement("component-slot")
	root.AppendChild(slot)
	container := dom.NewElement("container")
	slot.AppendChild(container)
	slot.SetSize(800, 500)

	handle, err := comp.Render(r.Context(), payload, container)
	if err != nil {
		http.Error(w, fmt.Sprintf("demo render failed: %v", err), http.StatusBadGateway)
		return
	}
	defer handle.Dispose()
	frames.Flush()

	children := container.Children()
	if len(children) == 0 {
		http.Error(w, "demo produced no chart element", http.StatusInternalServerError)
		return
	}
	png, contentType := children[0].Content()
	if contentType != "image/png" {
		http.Error(w, "demo produced no image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, demoPageTemplate,
		component.RequiredBokehVersion, theme,
		base64.StdEncoding.EncodeToString(png))
}

const demoPageTemplate = `<!DOCTYPE html>
<html>
<head><title>streamlit-bokeh demo</title></head>
<body>
<h1>streamlit-bokeh</h1>
<p>Server-side preview of the sample figure (runtime %s, theme %q).</p>
<img alt="sample bokeh figure" src="data:image/png;base64,%s"/>
</body>
</html>
`

// HandleRoot serves the docs page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := s.docs.Render()
	if err != nil {
		s.log.WarnErr("docs page unavailable", err)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>streamlit-bokeh</h1><p>See /demo for a rendered sample figure.</p></body></html>")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write(page)
}
