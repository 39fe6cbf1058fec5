package dom

import (
	"errors"
	"testing"
	"time"
)

func TestAttachmentPropagates(t *testing.T) {
	root := NewRoot()
	parent := NewElement("parent")
	child := NewElement("child")
	parent.AppendChild(child)

	if parent.Attached() || child.Attached() {
		t.Fatal("Detached subtree must not report attached")
	}

	root.AppendChild(parent)
	if !parent.Attached() || !child.Attached() {
		t.Fatal("Appending under the root must attach the whole subtree")
	}

	parent.Detach()
	if parent.Attached() || child.Attached() {
		t.Fatal("Detach must detach the whole subtree")
	}
}

func TestRemoveAllChildren(t *testing.T) {
	root := NewRoot()
	a := NewElement("a")
	b := NewElement("b")
	root.AppendChild(a)
	root.AppendChild(b)

	root.RemoveAllChildren()

	if len(root.Children()) != 0 {
		t.Errorf("Expected no children, got %d", len(root.Children()))
	}
	if a.Attached() || b.Attached() {
		t.Error("Removed children must be detached")
	}
	if a.Parent() != nil {
		t.Error("Removed child must have no parent")
	}
}

func TestObserveNotifiesOnResize(t *testing.T) {
	el := NewElement("panel")

	var got []Size
	cancel, err := el.Observe(func(sz Size) {
		got = append(got, sz)
	})
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	el.SetSize(800, 600)
	el.SetSize(400, 300)

	if len(got) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(got))
	}
	if got[1].Width != 400 || got[1].Height != 300 {
		t.Errorf("Unexpected last observation: %+v", got[1])
	}

	cancel()
	el.SetSize(100, 100)
	if len(got) != 2 {
		t.Error("Cancelled observer must not be notified")
	}
}

func TestFailObservation(t *testing.T) {
	el := NewElement("panel")
	el.FailObservation(errors.New("no ResizeObserver"))

	if _, err := el.Observe(func(Size) {}); err == nil {
		t.Fatal("Expected Observe to fail")
	}
}

func TestManualSchedulerCoalesces(t *testing.T) {
	s := NewManualScheduler()

	runs := 0
	s.Request(func() { runs++ })
	s.Request(func() { runs++ })

	if s.Pending() != 2 {
		t.Errorf("Expected 2 pending callbacks, got %d", s.Pending())
	}

	if flushed := s.Flush(); flushed != 2 {
		t.Errorf("Expected 2 flushed callbacks, got %d", flushed)
	}
	if runs != 2 {
		t.Errorf("Expected both callbacks to run, got %d", runs)
	}

	if flushed := s.Flush(); flushed != 0 {
		t.Errorf("An empty flush should run nothing, got %d", flushed)
	}
}

func TestTickSchedulerRunsCallbacks(t *testing.T) {
	s := NewTickScheduler(time.Millisecond)
	defer s.Stop()

	done := make(chan struct{})
	s.Request(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Tick scheduler never ran the callback")
	}
}

func TestTickSchedulerStopDropsWork(t *testing.T) {
	s := NewTickScheduler(time.Hour)
	s.Stop()

	// Requests after Stop are dropped rather than queued forever.
	s.Request(func() { t.Error("Callback ran after Stop") })
	time.Sleep(5 * time.Millisecond)
}
