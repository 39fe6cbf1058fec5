package server

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DocsPage renders the usage documentation from markdown.
type DocsPage struct {
	path string
	md   goldmark.Markdown
}

// NewDocsPage creates a docs page backed by the markdown file at path.
func NewDocsPage(path string) *DocsPage {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &DocsPage{
		path: path,
		md:   md,
	}
}

// Render converts the markdown source to a complete HTML page.
func (d *DocsPage) Render() ([]byte, error) {
	source, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load docs source: %w", err)
	}

	var body bytes.Buffer
	if err := d.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to convert docs markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head><title>streamlit-bokeh</title></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("\n</body>\n</html>\n")
	return page.Bytes(), nil
}
