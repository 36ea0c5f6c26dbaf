package instance

import (
	"sort"
	"sync"
)

// BackingNode is the owning tree node of an element state, if any.
type BackingNode interface {
	Path() string
}

// ElementState is the mutable store behind a synthesised instance. Property
// reads and writes on a Proxy are delegated here.
type ElementState interface {
	// BackingNode returns the owning node, or nil.
	BackingNode() BackingNode
	DisplayName() string
	Get(name string) (any, bool)
	Set(name string, value any)
}

// NoOpState reads nothing and discards writes. It is used to probe whether a
// schema can be instantiated without side effects.
var NoOpState ElementState = noOpState{}

type noOpState struct{}

func (noOpState) BackingNode() BackingNode { return nil }
func (noOpState) DisplayName() string      { return "" }
func (noOpState) Get(string) (any, bool)   { return nil, false }
func (noOpState) Set(string, any)          {}

// MapState is an in-memory ElementState safe for concurrent use.
type MapState struct {
	mu     sync.RWMutex
	name   string
	values map[string]any
}

// NewMapState returns an empty state labelled with displayName.
func NewMapState(displayName string) *MapState {
	return &MapState{
		name:   displayName,
		values: make(map[string]any),
	}
}

// BackingNode returns nil; map states are not attached to a tree.
func (s *MapState) BackingNode() BackingNode { return nil }

// DisplayName returns the label supplied at construction.
func (s *MapState) DisplayName() string { return s.name }

// Get returns the stored value for name.
func (s *MapState) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	return value, ok
}

// Set stores value under name.
func (s *MapState) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Keys returns the stored names in sorted order.
func (s *MapState) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
