// Package session holds the state shared by every step of one conversion run:
// the identity registry, the name sets, the variable binding table and the
// diagnostics sink. A new Session is created per converted package, so
// nothing leaks between runs.
package session

import (
	"github.com/google/uuid"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/naming"
	"github.com/leapstack-labs/dessist/internal/registry"
)

// Session is the per-run context.
type Session struct {
	ID          string
	Registry    *registry.IdentityRegistry
	Names       *naming.Service
	Bindings    *Bindings
	Diagnostics *diag.Sink
}

// New creates an empty session. Reserved names are passed to the naming
// service as already issued.
func New(reserved ...string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Registry:    registry.NewIdentityRegistry(),
		Names:       naming.NewService(reserved...),
		Bindings:    NewBindings(),
		Diagnostics: diag.NewSink(),
	}
}
