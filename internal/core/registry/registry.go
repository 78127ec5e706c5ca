// Package registry holds the live, mutable set of named counters.
//
// The registry does not know about the timer. Callers must only increment
// or decrement while recording and only remove counters while not
// recording.
package registry

import (
	"strings"

	"obscount/internal/core/model"

	"github.com/google/uuid"
)

// IDFunc generates unique counter identifiers.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// Registry is an ordered list of counters. It is not safe for concurrent use.
type Registry struct {
	counters []model.Counter
	newID    IDFunc
}

// New creates an empty registry. A nil newID falls back to NewID.
func New(newID IDFunc) *Registry {
	if newID == nil {
		newID = NewID
	}
	return &Registry{newID: newID}
}

// Add appends a counter with count zero. Names that are blank after trimming
// are rejected; other names are stored exactly as given.
func (registry *Registry) Add(name string) (model.Counter, bool) {
	if strings.TrimSpace(name) == "" {
		return model.Counter{}, false
	}
	counter := model.Counter{
		ID:    registry.newID(),
		Name:  name,
		Count: 0,
	}
	registry.counters = append(registry.counters, counter)
	return counter, true
}

// Increment adds one to the counter with the given id.
func (registry *Registry) Increment(id string) bool {
	index := registry.indexOf(id)
	if index < 0 {
		return false
	}
	registry.counters[index].Count++
	return true
}

// Decrement subtracts one from the counter with the given id. Counts never
// go below zero.
func (registry *Registry) Decrement(id string) bool {
	index := registry.indexOf(id)
	if index < 0 || registry.counters[index].Count <= 0 {
		return false
	}
	registry.counters[index].Count--
	return true
}

// Remove deletes the counter with the given id.
func (registry *Registry) Remove(id string) bool {
	index := registry.indexOf(id)
	if index < 0 {
		return false
	}
	registry.counters = append(registry.counters[:index:index], registry.counters[index+1:]...)
	return true
}

// ResetCounts zeroes every count, keeping ids and names.
func (registry *Registry) ResetCounts() {
	for i := range registry.counters {
		registry.counters[i].Count = 0
	}
}

// HasObservations reports whether any counter is above zero.
func (registry *Registry) HasObservations() bool {
	for _, counter := range registry.counters {
		if counter.Count > 0 {
			return true
		}
	}
	return false
}

// Counters returns a copy of the current list.
func (registry *Registry) Counters() []model.Counter {
	return model.CloneCounters(registry.counters)
}

// Get returns the counter with the given id.
func (registry *Registry) Get(id string) (model.Counter, bool) {
	index := registry.indexOf(id)
	if index < 0 {
		return model.Counter{}, false
	}
	return registry.counters[index], true
}

// Len returns the number of counters.
func (registry *Registry) Len() int {
	return len(registry.counters)
}

// Replace swaps the whole list, e.g. after loading from storage. Negative
// counts are floored at zero.
func (registry *Registry) Replace(counters []model.Counter) {
	registry.counters = model.CloneCounters(counters)
	for i := range registry.counters {
		if registry.counters[i].Count < 0 {
			registry.counters[i].Count = 0
		}
	}
}

func (registry *Registry) indexOf(id string) int {
	for i, counter := range registry.counters {
		if counter.ID == id {
			return i
		}
	}
	return -1
}
