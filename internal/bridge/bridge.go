// Package bridge mounts serialized Bokeh figures into container elements and
// owns their lifecycle: bundle loading, hydration, container-width tracking,
// and disposal. Exactly one live chart instance exists per container; a new
// mount on the same container replaces the previous instance, never stacks
// on top of it.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/dom"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

// Runtime is the figure-construction entry point of the charting library.
// The bridge wraps it, it never reimplements it.
type Runtime interface {
	// Hydrate builds a live chart from the spec's document tree inside
	// container, applying the named theme.
	Hydrate(ctx context.Context, spec *plotspec.Spec, theme string, container *dom.Element) (Instance, error)
}

// Instance is a live, runtime-owned chart bound to one container.
type Instance interface {
	// Resize redraws the chart at the given width. A height of 0 keeps
	// the chart's own height policy.
	Resize(width, height float64) error
	// Destroy releases runtime-level resources. Called at most once by
	// the bridge.
	Destroy() error
}

// RenderRequest is one host render call. Immutable for the lifetime of the
// call.
type RenderRequest struct {
	Spec              *plotspec.Spec
	Theme             string
	UseContainerWidth bool
	InstanceKey       string
}

// Bridge coordinates mounts across containers. Safe for concurrent use.
type Bridge struct {
	runtime  Runtime
	registry *bundles.Registry
	frames   dom.FrameScheduler
	log      *logger.Logger

	mu     sync.Mutex
	mounts map[*dom.Element]*containerSlot
}

// containerSlot tracks the latest mount generation per container so a stale,
// slow-loading render can never clobber a newer one.
type containerSlot struct {
	generation uint64
	handle     *Handle
}

// New creates a bridge over the given runtime and bundle registry.
func New(runtime Runtime, registry *bundles.Registry, frames dom.FrameScheduler, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Bridge{
		runtime:  runtime,
		registry: registry,
		frames:   frames,
		log:      log.WithComponent("bridge"),
		mounts:   map[*dom.Element]*containerSlot{},
	}
}

// Mount renders req into container and returns a disposable handle.
//
// The bundle set for the spec's version is loaded lazily; concurrent mounts
// of one version share a single fetch. A mismatching already-loaded version
// fails with *bundles.VersionMismatchError before the container is touched.
// If the handle is disposed, or a newer mount targets the same container,
// while the load is pending, Mount returns ErrSuperseded without hydrating.
func (b *Bridge) Mount(ctx context.Context, req RenderRequest, container *dom.Element) (*Handle, error) {
	if container == nil {
		return nil, fmt.Errorf("bridge: nil container")
	}
	if !container.Attached() {
		return nil, fmt.Errorf("bridge: container is not attached to the document")
	}
	if req.Spec == nil {
		return nil, fmt.Errorf("bridge: request carries no spec")
	}
	version := req.Spec.Version()
	if version == "" {
		return nil, fmt.Errorf("bridge: spec carries no version tag")
	}

	h, gen := b.register(req, container)

	if err := b.registry.Load(ctx, version); err != nil {
		h.markErrored()
		b.clearSlot(container, h)
		var mismatch *bundles.VersionMismatchError
		if !errors.As(err, &mismatch) {
			// Network/evaluation failures render in place; a version
			// mismatch must not mutate the container at all.
			RenderErrorPlaceholder(container, "Failed to load the Bokeh runtime. "+err.Error())
			b.log.Error("bundle load failed", err, map[string]interface{}{"version": version})
		}
		return nil, err
	}

	if !b.stillCurrent(container, gen, h) || h.Disposed() {
		return nil, ErrSuperseded
	}

	inst, err := b.runtime.Hydrate(ctx, req.Spec, req.Theme, container)
	if err != nil {
		h.markErrored()
		b.clearSlot(container, h)
		RenderErrorPlaceholder(container, "Failed to render the Bokeh figure. "+err.Error())
		b.log.Error("hydration failed", err, map[string]interface{}{"version": version})
		return nil, fmt.Errorf("bridge: hydrating figure: %w", err)
	}

	if !h.adopt(inst) || !b.stillCurrent(container, gen, h) {
		// Disposed or replaced between load and hydration finishing.
		if derr := inst.Destroy(); derr != nil {
			b.log.Error("destroying superseded instance", derr)
		}
		return nil, ErrSuperseded
	}

	if req.UseContainerWidth {
		b.observe(h, container)
	}

	b.log.Debug("figure mounted", map[string]interface{}{
		"version": version,
		"theme":   req.Theme,
		"key":     req.InstanceKey,
	})
	return h, nil
}

// Unmount disposes whatever is mounted, or still loading, for container.
// This is the cancellation path: a load that resolves after Unmount finds
// its generation stale and never hydrates.
func (b *Bridge) Unmount(container *dom.Element) {
	b.mu.Lock()
	var h *Handle
	if slot := b.mounts[container]; slot != nil {
		h = slot.handle
		delete(b.mounts, container)
	}
	b.mu.Unlock()

	if h != nil {
		h.Dispose()
	}
}

// register replaces any live handle on the container and installs a fresh
// one in Loading state.
func (b *Bridge) register(req RenderRequest, container *dom.Element) (*Handle, uint64) {
	b.mu.Lock()
	var prev *Handle
	if slot := b.mounts[container]; slot != nil {
		prev = slot.handle
		slot.handle = nil
	}
	b.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}

	h := newHandle(b, container, req)

	// Re-fetch the slot: disposing prev may have dropped it.
	b.mu.Lock()
	slot := b.mounts[container]
	if slot == nil {
		slot = &containerSlot{}
		b.mounts[container] = slot
	}
	slot.generation++
	gen := slot.generation
	h.generation = gen
	slot.handle = h
	b.mu.Unlock()

	return h, gen
}

func (b *Bridge) stillCurrent(container *dom.Element, gen uint64, h *Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot := b.mounts[container]
	return slot != nil && slot.generation == gen && slot.handle == h
}

// clearSlot drops the bookkeeping for a failed mount. The container must
// not stay pinned in the mounts map once no handle owns it.
func (b *Bridge) clearSlot(container *dom.Element, h *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot := b.mounts[container]; slot != nil && slot.handle == h {
		delete(b.mounts, container)
	}
}

// release drops the bookkeeping for a disposed handle.
func (b *Bridge) release(h *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot := b.mounts[h.container]; slot != nil && slot.handle == h {
		delete(b.mounts, h.container)
	}
}

// observe starts container-width tracking on the container's parent. On
// pages without a resize observation mechanism the chart degrades to fixed
// width instead of failing the mount.
func (b *Bridge) observe(h *Handle, container *dom.Element) {
	parent := container.Parent()
	if parent == nil {
		b.log.Warn("container has no parent to observe, using fixed width")
		return
	}

	cancel, err := parent.Observe(h.onParentResize)
	if err != nil {
		obsErr := &ResizeObservationError{Err: err}
		b.log.WarnErr("falling back to fixed width", obsErr)
		return
	}
	h.startObserving(cancel)

	// Fit the chart to the width the container already has.
	if sz := parent.MeasuredSize(); sz.Width > 0 {
		h.applySize(sz)
	}
}

// RenderErrorPlaceholder replaces the container's subtree with a visible
// error message, in place of the chart.
func RenderErrorPlaceholder(container *dom.Element, message string) {
	container.RemoveAllChildren()
	placeholder := dom.NewElement("bokeh-error")
	placeholder.SetText(message)
	container.AppendChild(placeholder)
}
