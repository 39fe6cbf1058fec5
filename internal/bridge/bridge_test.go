package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/dom"
	"github.com/streamlit/streamlit-bokeh/internal/mocks"
	"github.com/streamlit/streamlit-bokeh/internal/plotspec"
)

// fakeFetcher serves bundle bytes instantly, optionally failing or blocking
// until released.
type fakeFetcher struct {
	mu      sync.Mutex
	fail    bool
	release chan struct{}
	fetches int
}

func (f *fakeFetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.fetches++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, errors.New("network down")
	}
	return []byte("// " + filename), nil
}

// fakeRuntime counts hydrations and live instances.
type fakeRuntime struct {
	mu         sync.Mutex
	hydrations int
	live       int
	hydrateErr error
}

func (r *fakeRuntime) Hydrate(ctx context.Context, spec *plotspec.Spec, theme string, container *dom.Element) (Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hydrateErr != nil {
		return nil, r.hydrateErr
	}
	r.hydrations++
	r.live++
	return &fakeInstance{runtime: r}, nil
}

func (r *fakeRuntime) liveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

func (r *fakeRuntime) hydrationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hydrations
}

type fakeInstance struct {
	runtime *fakeRuntime

	mu       sync.Mutex
	resizes  []dom.Size
	destroys int
}

func (i *fakeInstance) Resize(width, height float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.resizes = append(i.resizes, dom.Size{Width: width, Height: height})
	return nil
}

func (i *fakeInstance) Destroy() error {
	i.mu.Lock()
	i.destroys++
	i.mu.Unlock()

	i.runtime.mu.Lock()
	i.runtime.live--
	i.runtime.mu.Unlock()
	return nil
}

func (i *fakeInstance) resizeCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.resizes)
}

func (i *fakeInstance) lastResize() dom.Size {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.resizes) == 0 {
		return dom.Size{}
	}
	return i.resizes[len(i.resizes)-1]
}

// page bundles the moving parts of one test scenario.
type page struct {
	fetcher   *fakeFetcher
	runtime   *fakeRuntime
	frames    *dom.ManualScheduler
	bridge    *Bridge
	root      *dom.Element
	parent    *dom.Element
	container *dom.Element
}

func newPage(t *testing.T) *page {
	t.Helper()
	p := &page{
		fetcher: &fakeFetcher{},
		runtime: &fakeRuntime{},
		frames:  dom.NewManualScheduler(),
	}
	p.bridge = New(p.runtime, bundles.NewRegistry(p.fetcher, nil), p.frames, nil)
	p.root = dom.NewRoot()
	p.parent = dom.NewElement("parent")
	p.container = dom.NewElement("container")
	p.root.AppendChild(p.parent)
	p.parent.AppendChild(p.container)
	p.parent.SetSize(800, 600)
	return p
}

func lineRequest(t *testing.T, version string, useContainerWidth bool) RenderRequest {
	t.Helper()
	spec, err := mocks.LineChartSpec(version)
	if err != nil {
		t.Fatalf("Fixture parse failed: %v", err)
	}
	return RenderRequest{
		Spec:              spec,
		Theme:             "streamlit",
		UseContainerWidth: useContainerWidth,
	}
}

func TestMountAndDispose(t *testing.T) {
	p := newPage(t)

	handle, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", false), p.container)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if handle.State() != StateMounted {
		t.Errorf("Expected state mounted, got %s", handle.State())
	}
	if p.runtime.liveCount() != 1 {
		t.Errorf("Expected 1 live instance, got %d", p.runtime.liveCount())
	}

	handle.Dispose()
	if handle.State() != StateDisposed {
		t.Errorf("Expected state disposed, got %s", handle.State())
	}
	if p.runtime.liveCount() != 0 {
		t.Errorf("Expected 0 live instances after dispose, got %d", p.runtime.liveCount())
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	p := newPage(t)

	handle, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", true), p.container)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	handle.Dispose()
	handle.Dispose()
	handle.Dispose()

	if p.runtime.liveCount() != 0 {
		t.Errorf("Expected 0 live instances, got %d", p.runtime.liveCount())
	}

	// Resizes after dispose are ignored rather than crashing.
	p.parent.SetSize(100, 100)
	p.frames.Flush()
}

func TestRemountReplacesInstance(t *testing.T) {
	p := newPage(t)
	ctx := context.Background()

	first, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), p.container)
	if err != nil {
		t.Fatalf("First mount failed: %v", err)
	}

	second, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), p.container)
	if err != nil {
		t.Fatalf("Second mount failed: %v", err)
	}

	if p.runtime.liveCount() != 1 {
		t.Fatalf("Expected exactly 1 live instance after re-mount, got %d", p.runtime.liveCount())
	}
	if first.State() != StateDisposed {
		t.Errorf("Expected the first handle disposed, got %s", first.State())
	}
	if second.State() != StateMounted {
		t.Errorf("Expected the second handle mounted, got %s", second.State())
	}
}

func TestStaleLoadNeverHydrates(t *testing.T) {
	p := newPage(t)
	p.fetcher.release = make(chan struct{})

	results := make(chan error, 1)
	go func() {
		_, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", true), p.container)
		results <- err
	}()

	// Unmount the container while the bundle load is still pending.
	waitFor(t, func() bool {
		p.bridge.mu.Lock()
		defer p.bridge.mu.Unlock()
		return p.bridge.mounts[p.container] != nil
	})
	p.bridge.Unmount(p.container)
	close(p.fetcher.release)

	if err := <-results; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", err)
	}
	if p.runtime.hydrationCount() != 0 {
		t.Errorf("Hydration must never run for an unmounted container, got %d", p.runtime.hydrationCount())
	}
}

func TestVersionGateBeforeAnyMutation(t *testing.T) {
	p := newPage(t)
	ctx := context.Background()

	// A different runtime version is already evaluated in the page.
	if _, err := p.bridge.Mount(ctx, lineRequest(t, "3.6.0", false), dom.NewRoot()); err != nil {
		t.Fatalf("Priming mount failed: %v", err)
	}

	_, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), p.container)
	var mismatch *bundles.VersionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected *bundles.VersionMismatchError, got %v", err)
	}

	if len(p.container.Children()) != 0 || p.container.Text() != "" {
		t.Error("A version mismatch must not mutate the container")
	}
	if p.runtime.hydrationCount() != 1 {
		t.Errorf("Expected no hydration beyond the priming mount, got %d", p.runtime.hydrationCount())
	}
}

func TestBundleLoadFailureRendersPlaceholder(t *testing.T) {
	p := newPage(t)
	p.fetcher.fail = true

	_, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", false), p.container)
	var loadErr *bundles.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *bundles.LoadError, got %v", err)
	}

	children := p.container.Children()
	if len(children) != 1 || children[0].ID() != "bokeh-error" {
		t.Fatal("Expected an in-place error placeholder")
	}
	if children[0].Text() == "" {
		t.Error("Placeholder must carry a visible message")
	}
}

func TestHydrationFailureRendersPlaceholder(t *testing.T) {
	p := newPage(t)
	p.runtime.hydrateErr = errors.New("bad document")

	_, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", false), p.container)
	if err == nil {
		t.Fatal("Expected mount to fail")
	}

	children := p.container.Children()
	if len(children) != 1 || children[0].ID() != "bokeh-error" {
		t.Fatal("Expected an in-place error placeholder")
	}
}

func TestResizeCoalescing(t *testing.T) {
	p := newPage(t)

	handle, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", true), p.container)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	inst := currentInstance(t, p)
	initial := inst.resizeCount()

	// A resize storm within a single frame.
	for i := 1; i <= 50; i++ {
		p.parent.SetSize(float64(800-i), 600)
	}
	p.frames.Flush()

	if got := inst.resizeCount() - initial; got != 1 {
		t.Errorf("Expected 1 coalesced resize, got %d", got)
	}
	if got := inst.lastResize().Width; got != 750 {
		t.Errorf("Expected the latest width 750 to win, got %v", got)
	}

	if handle.State() != StateObserving {
		t.Errorf("Expected state observing after resize, got %s", handle.State())
	}
}

func TestAspectRatioFollowsDeclaredSize(t *testing.T) {
	p := newPage(t)

	// The line fixture declares 600x400, so height tracks width at 2:3.
	_, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", true), p.container)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	inst := currentInstance(t, p)
	p.parent.SetSize(300, 600)
	p.frames.Flush()

	last := inst.lastResize()
	if last.Width != 300 || last.Height != 200 {
		t.Errorf("Expected 300x200, got %vx%v", last.Width, last.Height)
	}
}

func TestFixedWidthWhenNotUsingContainerWidth(t *testing.T) {
	p := newPage(t)

	_, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", false), p.container)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	inst := currentInstance(t, p)
	before := inst.resizeCount()

	// Page layout resizes the container anyway; the chart stays fixed.
	p.parent.SetSize(100, 100)
	p.frames.Flush()

	if inst.resizeCount() != before {
		t.Errorf("Expected no resize tracking, got %d extra calls", inst.resizeCount()-before)
	}
}

func TestObservationFailureDegradesToFixedWidth(t *testing.T) {
	p := newPage(t)
	p.parent.FailObservation(errors.New("no ResizeObserver in this page"))

	handle, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", true), p.container)
	if err != nil {
		t.Fatalf("Mount must succeed despite observation failure, got %v", err)
	}
	if handle.State() != StateMounted {
		t.Errorf("Expected state mounted (not observing), got %s", handle.State())
	}
	if p.runtime.liveCount() != 1 {
		t.Errorf("Expected the chart to stay rendered, got %d live", p.runtime.liveCount())
	}
}

func TestFailedMountLeavesNoBookkeeping(t *testing.T) {
	p := newPage(t)
	ctx := context.Background()

	// Bundle load failure.
	p.fetcher.fail = true
	if _, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), p.container); err == nil {
		t.Fatal("Expected the mount to fail")
	}
	if got := mountCount(p.bridge); got != 0 {
		t.Fatalf("Load failure pinned %d container(s)", got)
	}

	// Hydration failure.
	p.fetcher.fail = false
	p.runtime.hydrateErr = errors.New("bad document")
	if _, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), p.container); err == nil {
		t.Fatal("Expected the mount to fail")
	}
	if got := mountCount(p.bridge); got != 0 {
		t.Fatalf("Hydration failure pinned %d container(s)", got)
	}

	// Version mismatch against an already-loaded version.
	p.runtime.hydrateErr = nil
	other := dom.NewRoot()
	if _, err := p.bridge.Mount(ctx, lineRequest(t, "3.7.3", false), other); err != nil {
		t.Fatalf("Priming mount failed: %v", err)
	}
	if _, err := p.bridge.Mount(ctx, lineRequest(t, "3.6.0", false), p.container); err == nil {
		t.Fatal("Expected a version mismatch")
	}
	if got := mountCount(p.bridge); got != 1 {
		t.Fatalf("Expected only the live mount tracked, got %d container(s)", got)
	}
}

func mountCount(b *Bridge) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.mounts)
}

func TestMountRequiresAttachedContainer(t *testing.T) {
	p := newPage(t)
	detached := dom.NewElement("floating")

	if _, err := p.bridge.Mount(context.Background(), lineRequest(t, "3.7.3", false), detached); err == nil {
		t.Fatal("Expected mount on a detached container to fail")
	}
}

func currentInstance(t *testing.T, p *page) *fakeInstance {
	t.Helper()
	p.bridge.mu.Lock()
	defer p.bridge.mu.Unlock()
	slot := p.bridge.mounts[p.container]
	if slot == nil || slot.handle == nil {
		t.Fatal("No live handle for container")
	}
	inst, ok := slot.handle.instance.(*fakeInstance)
	if !ok {
		t.Fatalf("Unexpected instance type %T", slot.handle.instance)
	}
	return inst
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Condition never became true")
}
