// Package preview is a headless implementation of the bridge's Runtime
// contract: it rasterizes a figure document's column data into a PNG with
// go-chart. It exists for server-side previews and tests; in the browser the
// real BokehJS bundles own rendering.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/streamlit/streamlit-bokeh/internal/bridge"
	"github.com/streamlit/streamlit-bokeh/internal/dom"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

const (
	defaultWidth  = 600
	defaultHeight = 400
	minDimension  = 60
)

// Runtime renders figure documents headlessly. It also counts live
// instances, which is how the no-leak property is checked.
type Runtime struct {
	log *logger.Logger

	mu   sync.Mutex
	live int
}

// New creates a preview runtime.
func New(log *logger.Logger) *Runtime {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Runtime{log: log.WithComponent("preview")}
}

// Live returns the number of instances hydrated and not yet destroyed.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Hydrate implements bridge.Runtime.
func (r *Runtime) Hydrate(ctx context.Context, spec *plotspec.Spec, theme string, container *dom.Element) (bridge.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, err := extractSeries(spec.Doc)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	width, height := defaultWidth, defaultHeight
	if w, h, ok := spec.DeclaredSize(); ok {
		width, height = int(w), int(h)
	}

	inst := &instance{
		runtime:   r,
		container: container,
		element:   dom.NewElement("bokeh-chart-" + uuid.NewString()[:8]),
		series:    series,
		title:     extractTitle(spec.Doc),
		colors:    themePalette(theme),
	}

	if err := inst.render(float64(width), float64(height)); err != nil {
		return nil, fmt.Errorf("preview: rendering figure: %w", err)
	}
	container.AppendChild(inst.element)

	r.mu.Lock()
	r.live++
	r.mu.Unlock()

	r.log.Debug("figure hydrated", map[string]interface{}{
		"series": len(series),
		"theme":  theme,
	})
	return inst, nil
}

// instance is one live preview chart bound to a container.
type instance struct {
	runtime   *Runtime
	container *dom.Element
	element   *dom.Element
	series    []dataSeries
	title     string
	colors    palette

	mu        sync.Mutex
	width     float64
	height    float64
	destroyed bool
}

// Resize implements bridge.Instance. A height of 0 keeps the current height.
func (i *instance) Resize(width, height float64) error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return fmt.Errorf("preview: instance already destroyed")
	}
	if height <= 0 {
		height = i.height
	}
	i.mu.Unlock()

	return i.render(width, height)
}

// Destroy implements bridge.Instance.
func (i *instance) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return nil
	}
	i.destroyed = true
	i.mu.Unlock()

	i.container.RemoveChild(i.element)

	i.runtime.mu.Lock()
	i.runtime.live--
	i.runtime.mu.Unlock()
	return nil
}

// render rasterizes the chart at the given size and installs the result on
// the chart element.
func (i *instance) render(width, height float64) error {
	if width < minDimension {
		width = minDimension
	}
	if height < minDimension {
		height = minDimension
	}

	chartSeries := make([]chart.Series, 0, len(i.series))
	for _, s := range i.series {
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			XValues: s.X,
			YValues: s.Y,
			Style: chart.Style{
				StrokeColor: i.colors.Stroke,
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title: i.title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: i.colors.Text,
		},
		Width:  int(width),
		Height: int(height),
		Background: chart.Style{
			FillColor: i.colors.Background,
		},
		Canvas: chart.Style{
			FillColor: i.colors.Canvas,
		},
		XAxis: chart.XAxis{
			Style: chart.Style{FontColor: i.colors.Text, FontSize: 9},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: i.colors.Text, FontSize: 9},
		},
		Series: chartSeries,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("rendering chart PNG: %w", err)
	}

	i.mu.Lock()
	i.width = width
	i.height = height
	i.mu.Unlock()

	i.element.SetContent("image/png", buf.Bytes())
	i.element.SetSize(width, height)
	return nil
}
