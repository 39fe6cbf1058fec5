// Package dom is a minimal stand-in for the page surface the host hands to
// the component: elements with attachment, measured size, and resize
// notification. The host framework owns the real DOM; this model carries
// just enough behavior for the bridge to run server-side and under test.
package dom

import (
	"fmt"
	"sync"
)

// Size is an ephemeral width/height measurement of an element.
type Size struct {
	Width  float64
	Height float64
}

// Element is a node in the page model. All methods are safe for concurrent
// use.
type Element struct {
	mu         sync.Mutex
	id         string
	parent     *Element
	children   []*Element
	attached   bool
	size       Size
	text       string
	content    []byte
	contentTyp string

	observers  map[int]func(Size)
	nextObsID  int
	observeErr error
}

// NewRoot creates an attached document root.
func NewRoot() *Element {
	return &Element{
		id:        "root",
		attached:  true,
		observers: map[int]func(Size){},
	}
}

// NewElement creates a detached element with the given id.
func NewElement(id string) *Element {
	return &Element{
		id:        id,
		observers: map[int]func(Size){},
	}
}

// ID returns the element id.
func (e *Element) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// Attached reports whether the element is connected to a document root.
func (e *Element) Attached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attached
}

// Parent returns the element's parent, or nil for detached/root elements.
func (e *Element) Parent() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent
}

// Children returns a snapshot of the element's children.
func (e *Element) Children() []*Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// AppendChild attaches child under e. The child inherits e's attachment.
func (e *Element) AppendChild(child *Element) {
	e.mu.Lock()
	e.children = append(e.children, child)
	attached := e.attached
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = e
	child.mu.Unlock()
	child.setAttached(attached)
}

// RemoveChild detaches child from e. Removing an element that is not a child
// is a no-op.
func (e *Element) RemoveChild(child *Element) {
	e.mu.Lock()
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	child.setAttached(false)
}

// RemoveAllChildren empties the element's subtree.
func (e *Element) RemoveAllChildren() {
	e.mu.Lock()
	children := e.children
	e.children = nil
	e.mu.Unlock()

	for _, c := range children {
		c.mu.Lock()
		c.parent = nil
		c.mu.Unlock()
		c.setAttached(false)
	}
}

// Detach removes the element from its parent, detaching its whole subtree.
func (e *Element) Detach() {
	e.mu.Lock()
	parent := e.parent
	e.mu.Unlock()

	if parent != nil {
		parent.RemoveChild(e)
		return
	}
	e.setAttached(false)
}

func (e *Element) setAttached(attached bool) {
	e.mu.Lock()
	e.attached = attached
	children := make([]*Element, len(e.children))
	copy(children, e.children)
	e.mu.Unlock()

	for _, c := range children {
		c.setAttached(attached)
	}
}

// SetSize updates the element's measured size and notifies observers
// synchronously.
func (e *Element) SetSize(width, height float64) {
	e.mu.Lock()
	e.size = Size{Width: width, Height: height}
	sz := e.size
	observers := make([]func(Size), 0, len(e.observers))
	for _, fn := range e.observers {
		observers = append(observers, fn)
	}
	e.mu.Unlock()

	for _, fn := range observers {
		fn(sz)
	}
}

// MeasuredSize returns the element's current measured size.
func (e *Element) MeasuredSize() Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Observe registers fn to be called on every size change and returns a
// cancel function. Observation can fail on pages without a resize
// observation mechanism; callers are expected to degrade to fixed-width
// behavior.
func (e *Element) Observe(fn func(Size)) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.observeErr != nil {
		return nil, e.observeErr
	}

	id := e.nextObsID
	e.nextObsID++
	e.observers[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}, nil
}

// FailObservation makes subsequent Observe calls fail with err. Used to
// model environments where resize observation is unavailable.
func (e *Element) FailObservation(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observeErr = err
}

// SetText replaces the element's subtree with plain text content.
func (e *Element) SetText(text string) {
	e.RemoveAllChildren()
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

// Text returns the element's plain text content.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetContent stores rendered binary content (e.g. an encoded image) on the
// element.
func (e *Element) SetContent(contentType string, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contentTyp = contentType
	e.content = data
}

// Content returns the element's binary content and its content type.
func (e *Element) Content() ([]byte, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content, e.contentTyp
}

func (e *Element) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("<%s attached=%v children=%d>", e.id, e.attached, len(e.children))
}
