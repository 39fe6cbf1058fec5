package bridge

import (
	"sync"

	"github.com/streamlit/streamlit-bokeh/internal/dom"
)

// State is the lifecycle position of a mounted figure.
type State int

const (
	StateUnmounted State = iota
	StateLoading
	StateMounted
	StateObserving
	StateResizing
	StateDisposed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateLoading:
		return "loading"
	case StateMounted:
		return "mounted"
	case StateObserving:
		return "observing"
	case StateResizing:
		return "resizing"
	case StateDisposed:
		return "disposed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Handle owns one mounted figure. Dispose is idempotent and is the only way
// out of the lifecycle other than a fatal load error.
type Handle struct {
	bridge     *Bridge
	container  *dom.Element
	generation uint64

	mu            sync.Mutex
	state         State
	instance      Instance
	cancelObserve func()
	pending       *dom.Size
	frameQueued   bool
	aspect        float64
}

func newHandle(b *Bridge, container *dom.Element, req RenderRequest) *Handle {
	h := &Handle{
		bridge:    b,
		container: container,
		state:     StateLoading,
	}
	if w, ht, ok := req.Spec.DeclaredSize(); ok {
		h.aspect = ht / w
	}
	return h
}

// State returns the handle's current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Disposed reports whether Dispose has run.
func (h *Handle) Disposed() bool {
	return h.State() == StateDisposed
}

// Dispose stops size observation and tears the chart instance down at the
// runtime level. Safe to call any number of times.
func (h *Handle) Dispose() {
	h.mu.Lock()
	if h.state == StateDisposed {
		h.mu.Unlock()
		return
	}
	h.state = StateDisposed
	cancel := h.cancelObserve
	h.cancelObserve = nil
	inst := h.instance
	h.instance = nil
	h.pending = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if inst != nil {
		if err := inst.Destroy(); err != nil {
			h.bridge.log.Error("destroying chart instance", err)
		}
	}
	h.bridge.release(h)
}

// adopt binds the hydrated instance to the handle. Returns false when the
// handle was disposed while hydration was in flight, in which case the
// caller owns the instance's teardown.
func (h *Handle) adopt(inst Instance) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateDisposed {
		return false
	}
	h.instance = inst
	h.state = StateMounted
	return true
}

func (h *Handle) markErrored() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateDisposed {
		h.state = StateErrored
	}
}

func (h *Handle) startObserving(cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateDisposed {
		cancel()
		return
	}
	h.cancelObserve = cancel
	h.state = StateObserving
}

// onParentResize records the newest observed size and schedules one apply
// per frame. Burst resizes within a frame collapse to the latest size.
func (h *Handle) onParentResize(sz dom.Size) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateDisposed {
		return
	}
	h.pending = &sz
	if !h.frameQueued {
		h.frameQueued = true
		h.bridge.frames.Request(h.applyPending)
	}
}

// applyPending runs at frame boundaries and pushes the latest pending size
// to the runtime instance.
func (h *Handle) applyPending() {
	h.mu.Lock()
	sz := h.pending
	h.pending = nil
	h.frameQueued = false
	inst := h.instance
	if sz == nil || inst == nil || h.state == StateDisposed {
		h.mu.Unlock()
		return
	}
	h.state = StateResizing
	aspect := h.aspect
	h.mu.Unlock()

	h.resize(inst, *sz, aspect)

	h.mu.Lock()
	if h.state == StateResizing {
		h.state = StateObserving
	}
	h.mu.Unlock()
}

// applySize resizes immediately, bypassing frame coalescing. Used for the
// initial fit after mounting.
func (h *Handle) applySize(sz dom.Size) {
	h.mu.Lock()
	inst := h.instance
	aspect := h.aspect
	disposed := h.state == StateDisposed
	h.mu.Unlock()
	if inst == nil || disposed {
		return
	}
	h.resize(inst, sz, aspect)
}

func (h *Handle) resize(inst Instance, sz dom.Size, aspect float64) {
	// Height follows the figure's own aspect when it declares one,
	// otherwise the runtime keeps its height policy.
	var height float64
	if aspect > 0 {
		height = sz.Width * aspect
	}
	if err := inst.Resize(sz.Width, height); err != nil {
		h.bridge.log.WarnErr("resize failed", err)
	}
}
