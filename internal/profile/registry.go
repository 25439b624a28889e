package profile

import (
	"fmt"
	"sync"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Registry dispatches steps to mappers by process identifier.
type Registry struct {
	mappers map[string]Mapper
	order   []Mapper
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mappers: make(map[string]Mapper),
	}
}

// NewDefaultRegistry creates a registry holding the five built-in mappers.
// Transcode profiles are read through videos.
func NewDefaultRegistry(videos VideoProfileReader) *Registry {
	r := NewRegistry()
	for _, m := range []Mapper{
		&PreviewMapper{},
		&WebMapper{},
		&VideoThumbnailMapper{},
		&ThumbnailMapper{},
		NewTranscodeMapper(videos),
	} {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a mapper under each of its process identifiers.
// A process identifier can only be registered once.
func (r *Registry) Register(m Mapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range m.ProcessIDs() {
		if existing, exists := r.mappers[id]; exists {
			return fmt.Errorf("process %s already mapped by %s", id, existing.Name())
		}
	}
	for _, id := range m.ProcessIDs() {
		r.mappers[id] = m
	}
	r.order = append(r.order, m)
	return nil
}

// Get returns the mapper for step, or nil when the step produces no renditions.
func (r *Registry) Get(step model.WorkflowStep) Mapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mappers[step.ProcessID]
}

// List returns all registered mappers in registration order.
func (r *Registry) List() []Mapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Mapper(nil), r.order...)
}
