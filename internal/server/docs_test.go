package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocsPageRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "USAGE.md")
	source := "# streamlit-bokeh\n\nUsage | Notes\n--- | ---\n`bokeh_chart` | renders a figure\n"
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("Failed to write docs source: %v", err)
	}

	page, err := NewDocsPage(path).Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	body := string(page)
	if !strings.Contains(body, "<h1 id=\"streamlit-bokeh\">streamlit-bokeh</h1>") {
		t.Error("Expected a heading with an auto-generated id")
	}
	// GFM tables render as HTML tables.
	if !strings.Contains(body, "<table>") {
		t.Error("Expected the table to render")
	}
	if !strings.HasPrefix(body, "<!DOCTYPE html>") {
		t.Error("Expected a complete HTML page")
	}
}

func TestDocsPageMissingSource(t *testing.T) {
	if _, err := NewDocsPage("does-not-exist.md").Render(); err == nil {
		t.Error("Expected an error for a missing source file")
	}
}
