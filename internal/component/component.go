// Package component is the producing side of the integration: it turns a
// serialized figure into the payload the host delivers to the frontend
// component, enforcing the pinned runtime version before any render attempt.
package component

import (
	"fmt"

	"github.com/streamlit/streamlit-bokeh/internal/host"
	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

// RequiredBokehVersion is the runtime version this build of the component
// ships bundles for. Overridable at build time:
//
//	go build -ldflags "-X .../internal/component.RequiredBokehVersion=3.8.0"
var RequiredBokehVersion = "3.7.3"

// VersionError reports a figure serialized with a runtime version other than
// the pinned one. Raised before rendering, as a precondition.
type VersionError struct {
	FigureVersion string
	Required      string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf(
		"streamlit-bokeh only supports Bokeh version %s, but this figure was serialized with version %s; install bokeh==%s to produce compatible figures",
		e.Required, e.FigureVersion, e.Required)
}

// Options configure one BokehChart call.
type Options struct {
	UseContainerWidth bool
	Theme             string
	Key               string
}

// DefaultOptions mirrors the defaults of the public API:
// use_container_width=true, theme="streamlit".
func DefaultOptions() Options {
	return Options{
		UseContainerWidth: true,
		Theme:             host.DefaultTheme,
	}
}

// BokehChart builds the host payload for a serialized figure. It fails fast
// with *VersionError when the figure's version tag differs from the pinned
// runtime version; the frontend may assume this precondition was enforced.
func BokehChart(spec *plotspec.Spec, opts Options) (host.Payload, error) {
	if spec == nil {
		return host.Payload{}, fmt.Errorf("component: nil figure spec")
	}
	if spec.Version() != RequiredBokehVersion {
		return host.Payload{}, &VersionError{
			FigureVersion: spec.Version(),
			Required:      RequiredBokehVersion,
		}
	}

	theme := opts.Theme
	if theme == "" {
		theme = host.DefaultTheme
	}

	return host.Payload{
		Figure:            string(spec.JSON()),
		BokehTheme:        theme,
		UseContainerWidth: opts.UseContainerWidth,
		Key:               opts.Key,
	}, nil
}
