package shutdown

import (
	"context"
	"sort"
	"sync"
)

// Func is a cleanup function executed during graceful shutdown. The context
// carries the shutdown deadline.
type Func func(ctx context.Context) error

// entry holds a registered shutdown function with metadata.
type entry struct {
	name     string
	fn       Func
	priority int // lower = earlier execution
}

// Registry maintains an ordered collection of shutdown functions.
//
// Usage:
//
//	registry := NewRegistry()
//
//	// Register handlers (lower priority runs first)
//	registry.Register("pipelines", 20, func(ctx context.Context) error {
//	    manager.Close()
//	    return nil
//	})
//	registry.Register("database", 30, func(ctx context.Context) error {
//	    return conn.Close()
//	})
//
//	// During shutdown:
//	errs := registry.Shutdown(ctx)
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates a Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{entries: make([]entry, 0)}
}

// Register adds a shutdown function with a name and priority. Lower
// priority values execute earlier. Registration after Shutdown is a no-op.
//
// Typical priority ranges:
//   - 0-9: Critical cleanup (flush logs, metrics)
//   - 10-19: Connection cleanup (close client connections)
//   - 20-29: Service cleanup (release pipelines, stop workers)
//   - 30-39: Resource cleanup (close databases, files)
//   - 40+: Final cleanup (remove temp files)
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Shutdown executes all registered shutdown functions in priority order and
// returns the errors from functions that failed. All functions run even
// when some fail. After Shutdown completes, the registry is closed.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Names returns the names of all registered shutdown functions in priority
// order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered shutdown functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IsClosed returns true if Shutdown has been called.
func (r *Registry) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
