// Package plotspec models the serialized figure documents produced by
// Bokeh's json_item serializer. The document tree is kept opaque; only the
// envelope (target/root IDs) and the version tag are interpreted here.
package plotspec

import (
	"encoding/json"
	"fmt"
)

// ParseError indicates a malformed figure payload. This points at a bug in
// the producing side, not at user input.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plotspec: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("plotspec: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Spec is a parsed json_item envelope. Doc is handed wholesale to the
// runtime's hydration call and never rewritten.
type Spec struct {
	TargetID string          `json:"target_id"`
	RootID   json.RawMessage `json:"root_id"`
	Doc      json.RawMessage `json:"doc"`

	version string
	width   float64
	height  float64
	raw     []byte
}

// docEnvelope covers the handful of document attributes the bridge reads.
type docEnvelope struct {
	Version string            `json:"version"`
	Roots   []json.RawMessage `json:"roots"`
}

type rootEnvelope struct {
	Attributes struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"attributes"`
}

// Parse decodes a serialized figure payload and extracts its version tag.
func Parse(raw []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, &ParseError{Reason: "invalid figure JSON", Err: err}
	}

	if len(spec.Doc) == 0 {
		return nil, &ParseError{Reason: "figure payload has no document"}
	}

	var doc docEnvelope
	if err := json.Unmarshal(spec.Doc, &doc); err != nil {
		return nil, &ParseError{Reason: "invalid document tree", Err: err}
	}
	if doc.Version == "" {
		return nil, &ParseError{Reason: "document carries no version tag"}
	}

	spec.version = doc.Version
	spec.raw = append([]byte(nil), raw...)

	// Dimensions are best-effort: the first root's declared width/height
	// drive the aspect policy on container resizes.
	if len(doc.Roots) > 0 {
		var root rootEnvelope
		if err := json.Unmarshal(doc.Roots[0], &root); err == nil {
			spec.width = root.Attributes.Width
			spec.height = root.Attributes.Height
		}
	}

	return &spec, nil
}

// ParseString decodes a serialized figure payload held as a string.
func ParseString(raw string) (*Spec, error) {
	return Parse([]byte(raw))
}

// Version returns the version tag the document was serialized with.
func (s *Spec) Version() string {
	return s.version
}

// JSON returns the payload exactly as it was parsed.
func (s *Spec) JSON() []byte {
	return s.raw
}

// DeclaredSize returns the width/height the document declares on its first
// root. ok is false when the document declares no explicit size.
func (s *Spec) DeclaredSize() (width, height float64, ok bool) {
	return s.width, s.height, s.width > 0 && s.height > 0
}
