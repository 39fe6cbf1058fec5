// Package mocks holds sample figure documents for the demo page and for
// tests that need realistic json_item payloads without a Python producer.
package mocks

import (
	"fmt"

	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

// lineChartTemplate is a trimmed json_item serialization of the "simple line
// example" figure: one Figure root with a title, a Line glyph, and a
// ColumnDataSource holding five points.
const lineChartTemplate = `{
  "target_id": null,
  "root_id": "p1001",
  "doc": {
    "defs": [],
    "roots": [
      {
        "type": "object",
        "name": "Figure",
        "id": "p1001",
        "attributes": {
          "width": 600,
          "height": 400,
          "title": {"type": "Title", "attributes": {"text": "simple line example"}},
          "renderers": [
            {
              "type": "object",
              "name": "GlyphRenderer",
              "id": "p1005",
              "attributes": {
                "data_source": {
                  "type": "object",
                  "name": "ColumnDataSource",
                  "id": "p1002",
                  "attributes": {
                    "data": {"x": [1, 2, 3, 4, 5], "y": [6, 7, 2, 4, 5]}
                  }
                },
                "glyph": {
                  "type": "object",
                  "name": "Line",
                  "id": "p1003",
                  "attributes": {"line_width": 2}
                }
              }
            }
          ]
        }
      }
    ],
    "title": "",
    "version": "%s"
  }
}`

// sineChartTemplate is a denser figure without declared dimensions, used to
// exercise the "no declared size" paths.
const sineChartTemplate = `{
  "target_id": null,
  "root_id": "p2001",
  "doc": {
    "defs": [],
    "roots": [
      {
        "type": "object",
        "name": "Figure",
        "id": "p2001",
        "attributes": {
          "title": {"type": "Title", "attributes": {"text": "sine"}},
          "renderers": [
            {
              "type": "object",
              "name": "GlyphRenderer",
              "id": "p2005",
              "attributes": {
                "data_source": {
                  "type": "object",
                  "name": "ColumnDataSource",
                  "id": "p2002",
                  "attributes": {
                    "data": {
                      "x": [0, 1, 2, 3, 4, 5, 6, 7, 8, 9],
                      "y": [0, 0.84, 0.91, 0.14, -0.76, -0.96, -0.28, 0.66, 0.99, 0.41]
                    }
                  }
                },
                "glyph": {
                  "type": "object",
                  "name": "Line",
                  "id": "p2003",
                  "attributes": {"line_width": 1}
                }
              }
            }
          ]
        }
      }
    ],
    "title": "",
    "version": "%s"
  }
}`

// LineChartJSON returns the sample line figure serialized with the given
// runtime version tag.
func LineChartJSON(version string) []byte {
	return []byte(fmt.Sprintf(lineChartTemplate, version))
}

// LineChartSpec parses the sample line figure.
func LineChartSpec(version string) (*plotspec.Spec, error) {
	return plotspec.Parse(LineChartJSON(version))
}

// SineChartJSON returns a figure that declares no explicit size.
func SineChartJSON(version string) []byte {
	return []byte(fmt.Sprintf(sineChartTemplate, version))
}

// SineChartSpec parses the sine figure.
func SineChartSpec(version string) (*plotspec.Spec, error) {
	return plotspec.Parse(SineChartJSON(version))
}
