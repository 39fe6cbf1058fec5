// Package host adapts the dashboarding framework's custom-component
// contract to the bridge. The framework delivers a JSON payload and a
// container element; how it discovers or loads the component is its own
// business.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamlit/streamlit-bokeh/internal/bridge"
	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/dom"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

// DefaultTheme is applied when the payload does not name one.
const DefaultTheme = "streamlit"

// Payload is the data a host render call delivers to the component.
type Payload struct {
	Figure            string `json:"figure"`
	BokehTheme        string `json:"bokeh_theme"`
	UseContainerWidth bool   `json:"use_container_width"`
	Key               string `json:"key,omitempty"`
}

// DecodePayload parses a raw host payload.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("host: decoding payload: %w", err)
	}
	if p.Figure == "" {
		return Payload{}, fmt.Errorf("host: payload carries no figure")
	}
	return p, nil
}

// Disposable is the handle the component returns to the host lifecycle.
type Disposable interface {
	Dispose()
}

// Component is the bundled component the host invokes on every render.
type Component struct {
	bridge *bridge.Bridge
	log    *logger.Logger
}

// NewComponent wires the component to a bridge.
func NewComponent(b *bridge.Bridge, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{
		bridge: b,
		log:    log.WithComponent("host"),
	}
}

// Render mounts the payload's figure into container. Parse and load failures
// surface as an in-place error placeholder; a superseded mount returns
// bridge.ErrSuperseded and leaves the container to its newer owner.
func (c *Component) Render(ctx context.Context, payload Payload, container *dom.Element) (Disposable, error) {
	spec, err := plotspec.ParseString(payload.Figure)
	if err != nil {
		bridge.RenderErrorPlaceholder(container, "The Bokeh figure payload could not be parsed. "+err.Error())
		c.log.Error("figure parse failed", err)
		return nil, err
	}

	theme := payload.BokehTheme
	if theme == "" {
		theme = DefaultTheme
	}

	req := bridge.RenderRequest{
		Spec:              spec,
		Theme:             theme,
		UseContainerWidth: payload.UseContainerWidth,
		InstanceKey:       payload.Key,
	}

	handle, err := c.bridge.Mount(ctx, req, container)
	if err != nil {
		if errors.Is(err, bridge.ErrSuperseded) {
			return nil, err
		}
		var mismatch *bundles.VersionMismatchError
		if errors.As(err, &mismatch) {
			// The bridge leaves the container untouched on a version
			// gate; the user still needs to see what went wrong.
			bridge.RenderErrorPlaceholder(container, mismatch.Error())
		}
		return nil, err
	}

	return handle, nil
}
