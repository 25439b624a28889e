package workflow

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps "<source>-to-<target>" routes to their handlers.
type Registry struct {
	handlers map[string]Handler
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func routeKey(source, target string) string {
	return fmt.Sprintf("%s-to-%s", source, target)
}

// Register adds handler under its route. A route can only be registered once.
func (r *Registry) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := routeKey(handler.SourcePlatform(), handler.TargetPlatform())
	if existing, exists := r.handlers[key]; exists {
		return fmt.Errorf("route %s is already handled by %q", key, existing.Name())
	}
	r.handlers[key] = handler
	return nil
}

// Get returns the handler for the route from sourcePlatform to targetPlatform.
func (r *Registry) Get(sourcePlatform, targetPlatform string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := routeKey(sourcePlatform, targetPlatform)
	if handler, exists := r.handlers[key]; exists {
		return handler, nil
	}
	return nil, fmt.Errorf("no migration handler for %s, supported routes: %s", key, strings.Join(r.routes(), ", "))
}

// Routes returns the registered routes in sorted order.
func (r *Registry) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes()
}

func (r *Registry) routes() []string {
	keys := make([]string, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
