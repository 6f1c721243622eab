package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// Registry maps exact verb names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]handler.Handler // verb -> handlers, highest priority first
	usage    map[string]string
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]handler.Handler),
		usage:    make(map[string]string),
	}
}

// Register adds a handler for a verb. Several handlers may share a verb;
// the highest priority one wins and equal priorities keep insertion order.
func (r *Registry) Register(verb string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.handlers[verb], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	r.handlers[verb] = handlers
}

// SetUsage records a one-line usage string shown by Verbs.
func (r *Registry) SetUsage(verb, usage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[verb] = usage
}

// Usage returns the usage string for verb.
func (r *Registry) Usage(verb string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usage[verb]
}

// Unregister removes all handlers for a verb.
func (r *Registry) Unregister(verb string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, verb)
	delete(r.usage, verb)
}

// Get returns the highest priority handler for a verb, or nil.
func (r *Registry) Get(verb string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := r.handlers[verb]
	if len(handlers) == 0 {
		return nil
	}
	return handlers[0]
}

// GetAll returns all handlers for a verb.
func (r *Registry) GetAll(verb string) []handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]handler.Handler(nil), r.handlers[verb]...)
}

// Has returns true if a handler is registered for the verb.
func (r *Registry) Has(verb string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[verb]) > 0
}

// List returns all registered verbs, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered verbs.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
