package preview

import (
	"encoding/json"
	"fmt"
)

// dataSeries is one plottable x/y column pair pulled out of a figure
// document.
type dataSeries struct {
	X []float64
	Y []float64
}

// extractSeries walks the opaque document tree and collects every
// ColumnDataSource-shaped node: a "data" map holding numeric "x" and "y"
// columns of equal length. The preview does not interpret anything else in
// the document.
func extractSeries(doc json.RawMessage) ([]dataSeries, error) {
	var tree interface{}
	if err := json.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("decoding document tree: %w", err)
	}

	var out []dataSeries
	walkSeries(tree, &out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no plottable column data found in document")
	}
	return out, nil
}

func walkSeries(node interface{}, out *[]dataSeries) {
	switch v := node.(type) {
	case map[string]interface{}:
		if data, ok := v["data"].(map[string]interface{}); ok {
			x := floatColumn(data["x"])
			y := floatColumn(data["y"])
			if len(x) > 0 && len(x) == len(y) {
				*out = append(*out, dataSeries{X: x, Y: y})
			}
		}
		for _, child := range v {
			walkSeries(child, out)
		}
	case []interface{}:
		for _, child := range v {
			walkSeries(child, out)
		}
	}
}

func floatColumn(col interface{}) []float64 {
	items, ok := col.([]interface{})
	if !ok {
		return nil
	}
	values := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil
		}
		values = append(values, f)
	}
	return values
}

// extractTitle finds the text of the document's first Title node, if any.
func extractTitle(doc json.RawMessage) string {
	var tree interface{}
	if err := json.Unmarshal(doc, &tree); err != nil {
		return ""
	}
	return walkTitle(tree)
}

func walkTitle(node interface{}) string {
	switch v := node.(type) {
	case map[string]interface{}:
		if v["type"] == "Title" {
			if attrs, ok := v["attributes"].(map[string]interface{}); ok {
				if text, ok := attrs["text"].(string); ok {
					return text
				}
			}
		}
		for _, child := range v {
			if title := walkTitle(child); title != "" {
				return title
			}
		}
	case []interface{}:
		for _, child := range v {
			if title := walkTitle(child); title != "" {
				return title
			}
		}
	}
	return ""
}
