package bundles

import "fmt"

// VersionMismatchError indicates that a figure requires a runtime version
// different from the one already evaluated in the page. The runtime does not
// support multiple live versions, so this is fatal for the render attempt
// and is never retried.
type VersionMismatchError struct {
	Loaded    string
	Requested string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf(
		"bundles: runtime version %s is already loaded but the figure requires %s; reload the page to switch versions",
		e.Loaded, e.Requested)
}

// LoadError indicates a network or evaluation failure while fetching a
// bundle. Safe to retry on the next mount attempt.
type LoadError struct {
	Version string
	File    string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("bundles: loading %s for version %s: %v", e.File, e.Version, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
