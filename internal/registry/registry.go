// Package registry provides identity registration and lookup for package nodes.
// It maps DTSIDs (and the refId paths used by newer package formats) to the
// nodes that declared them, so connection managers, variables and tasks can
// be resolved from the references scattered through a package.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// IdentityRegistry maps identifiers to nodes for one conversion run.
type IdentityRegistry struct {
	mu sync.RWMutex

	// byID maps DTSIDs to nodes.
	// Note: re-registering an identifier replaces the mapping, last writer wins.
	byID map[uuid.UUID]*dtsx.Node

	// byRef maps refId paths to nodes: "Package\Load Customers" → *Node
	byRef map[string]*dtsx.Node
}

// NewIdentityRegistry creates a new empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byID:  make(map[uuid.UUID]*dtsx.Node),
		byRef: make(map[string]*dtsx.Node),
	}
}

// Register records n under id.
func (r *IdentityRegistry) Register(id uuid.UUID, n *dtsx.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = n
}

// RegisterRef records n under a refId path. Lookups are case-insensitive.
func (r *IdentityRegistry) RegisterRef(ref string, n *dtsx.Node) {
	if ref == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRef[strings.ToLower(ref)] = n
}

// Get returns the node registered under id.
func (r *IdentityRegistry) Get(id uuid.UUID) (*dtsx.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.byID[id]; ok {
		return n, nil
	}
	return nil, &diag.ReferenceError{ID: id.String()}
}

// GetByIdentifier resolves identifier text. The text may be a DTSID in any
// form uuid.Parse accepts or a refId path. Unparsable text that is not a
// known refId yields an IdentifierError; a well-formed id with no node
// yields a ReferenceError.
func (r *IdentityRegistry) GetByIdentifier(text string) (*dtsx.Node, error) {
	if n, ok := r.lookupRef(text); ok {
		return n, nil
	}
	id, err := dtsx.ParseID(text)
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

// GetByRef returns the node registered under a refId path.
func (r *IdentityRegistry) GetByRef(ref string) (*dtsx.Node, error) {
	if n, ok := r.lookupRef(ref); ok {
		return n, nil
	}
	return nil, &diag.ReferenceError{ID: ref}
}

func (r *IdentityRegistry) lookupRef(ref string) (*dtsx.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byRef[strings.ToLower(strings.TrimSpace(ref))]
	return n, ok
}

// Len returns the number of registered identifiers.
func (r *IdentityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IDs returns all registered identifiers in sorted order.
func (r *IdentityRegistry) IDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
