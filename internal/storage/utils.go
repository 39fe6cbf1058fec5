package storage

import (
	"strings"
)

// BundleDir is the prefix under which runtime bundles are stored.
const BundleDir = "bokeh"

// BundlePath returns the storage path for a bundle filename.
func BundlePath(filename string) string {
	return BundleDir + "/" + filename
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".js"):
		return "text/javascript"
	case strings.HasSuffix(filename, ".js.map"):
		return "application/json"
	case strings.HasSuffix(filename, ".json"):
		return "application/json"
	case strings.HasSuffix(filename, ".html"):
		return "text/html"
	case strings.HasSuffix(filename, ".css"):
		return "text/css"
	case strings.HasSuffix(filename, ".md"):
		return "text/markdown"
	case strings.HasSuffix(filename, ".txt"):
		return "text/plain"
	case strings.HasSuffix(filename, ".png"):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
