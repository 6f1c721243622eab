package dispatcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// Router routes namespaced verbs such as "stash.apply" to the handler
// registered for their namespace.
type Router struct {
	mu         sync.RWMutex
	namespaces map[string]handler.NamespaceHandler
	fallback   handler.Handler
}

// NewRouter creates a new router.
func NewRouter() *Router {
	return &Router{
		namespaces: make(map[string]handler.NamespaceHandler),
	}
}

// RegisterNamespace registers h for every verb in its namespace.
func (r *Router) RegisterNamespace(namespace string, h handler.NamespaceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[namespace] = h
}

// UnregisterNamespace removes a namespace handler.
func (r *Router) UnregisterNamespace(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.namespaces, namespace)
}

// SetFallback sets the handler for verbs no namespace accepts.
func (r *Router) SetFallback(h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Route finds the handler for verb, or nil.
func (r *Router) Route(verb string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ns := extractNamespace(verb); ns != "" {
		if h, ok := r.namespaces[ns]; ok && h.CanHandle(verb) {
			return handler.NewNamespaceAdapter(h)
		}
	}
	return r.fallback
}

// Namespace returns the handler for a namespace, or nil.
func (r *Router) Namespace(namespace string) handler.NamespaceHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namespaces[namespace]
}

// Namespaces returns the registered namespace names, sorted.
func (r *Router) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extractNamespace returns the part of "namespace.verb" before the
// first dot, or "" when there is none.
func extractNamespace(verb string) string {
	ns, _, ok := strings.Cut(verb, ".")
	if !ok {
		return ""
	}
	return ns
}
