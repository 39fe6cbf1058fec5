package bridge

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned when a mount was cancelled because its container
// was disposed, or replaced by a newer request, while the bundle load was
// still pending. The caller should drop the attempt silently; a newer render
// owns the container.
var ErrSuperseded = errors.New("bridge: mount superseded")

// ResizeObservationError records a failure to observe container resizes.
// Non-fatal: the chart stays rendered at a fixed width.
type ResizeObservationError struct {
	Err error
}

func (e *ResizeObservationError) Error() string {
	return fmt.Sprintf("bridge: resize observation unavailable: %v", e.Err)
}

func (e *ResizeObservationError) Unwrap() error {
	return e.Err
}
