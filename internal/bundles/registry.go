package bundles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/streamlit/streamlit-bokeh/internal/logger"
)

// Registry tracks which runtime version is evaluated in the page. The page
// can hold exactly one live version: the first successful load wins and is
// never unloaded. Concurrent loads of the same version share one in-flight
// fetch instead of double-fetching.
type Registry struct {
	fetcher Fetcher
	log     *logger.Logger

	mu       sync.Mutex
	loaded   string
	files    map[string]int
	inflight map[string]*inflightLoad
}

type inflightLoad struct {
	done chan struct{}
	err  error
}

// NewRegistry creates an empty registry backed by fetcher.
func NewRegistry(fetcher Fetcher, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Registry{
		fetcher:  fetcher,
		log:      log.WithComponent("bundles"),
		files:    map[string]int{},
		inflight: map[string]*inflightLoad{},
	}
}

// LoadedVersion returns the version evaluated in the page, or "" when no
// runtime has been loaded yet.
func (r *Registry) LoadedVersion() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// LoadedFiles returns the bundle filenames evaluated so far, sorted.
func (r *Registry) LoadedFiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.files))
	for f := range r.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Load ensures the bundle set for version is evaluated in the page. It is
// idempotent: a version that is already loaded returns immediately, and
// concurrent callers for the same version await a single shared fetch.
// A failed load is forgotten so the next mount attempt can retry.
func (r *Registry) Load(ctx context.Context, version string) error {
	if version == "" {
		return &LoadError{Version: version, Err: fmt.Errorf("empty version")}
	}

	r.mu.Lock()
	if r.loaded == version {
		r.mu.Unlock()
		return nil
	}
	if r.loaded != "" {
		loaded := r.loaded
		r.mu.Unlock()
		return &VersionMismatchError{Loaded: loaded, Requested: version}
	}
	if l, ok := r.inflight[version]; ok {
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
		}
		if l.err != nil {
			return l.err
		}
		return r.confirm(version)
	}

	l := &inflightLoad{done: make(chan struct{})}
	r.inflight[version] = l
	r.mu.Unlock()

	// The fetch is shared page-wide state, so it must not die with the
	// first caller's context; waiters and late mounts rely on it.
	fetched, err := r.fetchAll(context.WithoutCancel(ctx), version)

	r.mu.Lock()
	delete(r.inflight, version)
	if err == nil {
		switch r.loaded {
		case "":
			r.loaded = version
			for name, size := range fetched {
				r.files[name] = size
			}
		case version:
			// Already won by an identical load.
		default:
			err = &VersionMismatchError{Loaded: r.loaded, Requested: version}
		}
	}
	l.err = err
	r.mu.Unlock()
	close(l.done)

	if err == nil {
		r.log.Info("runtime bundles loaded", map[string]interface{}{
			"version": version,
			"files":   len(fetched),
		})
	}
	return err
}

// confirm re-checks the page state after awaiting someone else's load.
func (r *Registry) confirm(version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded == version {
		return nil
	}
	return &VersionMismatchError{Loaded: r.loaded, Requested: version}
}

func (r *Registry) fetchAll(ctx context.Context, version string) (map[string]int, error) {
	fetched := make(map[string]int, len(SubModules))
	for _, file := range Files(version) {
		data, err := r.fetcher.Fetch(ctx, file)
		if err != nil {
			return nil, &LoadError{Version: version, File: file, Err: err}
		}
		if len(data) == 0 {
			return nil, &LoadError{Version: version, File: file, Err: fmt.Errorf("empty bundle")}
		}
		fetched[file] = len(data)
	}
	return fetched, nil
}
