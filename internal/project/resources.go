package project

import (
	"github.com/leapstack-labs/dessist/internal/naming"
)

// Resource is one text resource of a generated project.
type Resource struct {
	Key  string
	Text string
}

// ResourceStore keeps SQL text and other long strings out of the generated
// function bodies. Keys come from the run's naming service so they are unique
// per package.
type ResourceStore struct {
	names     *naming.Service
	resources []Resource
}

// NewResourceStore creates an empty store drawing keys from names.
func NewResourceStore(names *naming.Service) *ResourceStore {
	return &ResourceStore{names: names}
}

// AddTextResource stores text under a key derived from scope and returns the
// key.
func (s *ResourceStore) AddTextResource(scope, text string) string {
	key := s.names.ResourceName(scope)
	s.resources = append(s.resources, Resource{Key: key, Text: text})
	return key
}

// Resources returns the stored resources in insertion order.
func (s *ResourceStore) Resources() []Resource {
	out := make([]Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Len returns the number of stored resources.
func (s *ResourceStore) Len() int {
	return len(s.resources)
}
