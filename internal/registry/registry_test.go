package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

func TestIdentityRegistry_SetPropertyRoundTrip(t *testing.T) {
	r := NewIdentityRegistry()

	ids := []string{
		"{6E0C1B1E-6C5A-4C44-9B9B-5C2D9A0B7E11}",
		"{1A2B3C4D-0000-4000-8000-00000000000A}",
		"7f1d9f9e-2b8a-4a54-9d53-0c6f3fbc0a42",
	}
	nodes := make([]*dtsx.Node, len(ids))
	for i, id := range ids {
		n := dtsx.NewNode(dtsx.TagExecutable)
		require.NoError(t, n.SetProperty(r, dtsx.PropDTSID, id))
		nodes[i] = n
	}

	assert.Equal(t, len(ids), r.Len())
	for i, id := range ids {
		got, err := r.GetByIdentifier(id)
		require.NoError(t, err, "lookup %s", id)
		assert.Same(t, nodes[i], got, "expected same node instance for %s", id)
	}
}

func TestIdentityRegistry_LastWriterWins(t *testing.T) {
	r := NewIdentityRegistry()
	id := uuid.New()

	first := dtsx.NewNode(dtsx.TagVariable)
	second := dtsx.NewNode(dtsx.TagVariable)
	r.Register(id, first)
	r.Register(id, second)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())
}

func TestIdentityRegistry_Misses(t *testing.T) {
	r := NewIdentityRegistry()

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name:    "unknown identifier",
			text:    "{00000000-0000-4000-8000-000000000001}",
			wantErr: diag.ErrReferenceNotFound,
		},
		{
			name:    "malformed identifier",
			text:    "{not-a-guid}",
			wantErr: diag.ErrMalformedIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := r.GetByIdentifier(tt.text)
			assert.Nil(t, n)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIdentityRegistry_MalformedNodeSurvives(t *testing.T) {
	r := NewIdentityRegistry()
	n := dtsx.NewNode(dtsx.TagExecutable)

	err := n.SetProperty(r, dtsx.PropDTSID, "garbage")
	assert.ErrorIs(t, err, diag.ErrMalformedIdentifier)
	assert.False(t, n.HasID())
	assert.Equal(t, 0, r.Len())
}

func TestIdentityRegistry_Refs(t *testing.T) {
	r := NewIdentityRegistry()
	n := dtsx.NewNode(dtsx.TagConnectionManager)
	r.RegisterRef(`Package.ConnectionManagers[Source]`, n)
	r.RegisterRef("", dtsx.NewNode(dtsx.TagExecutable))

	got, err := r.GetByIdentifier(`package.connectionmanagers[source]`)
	require.NoError(t, err)
	assert.Same(t, n, got)

	_, err = r.GetByRef(`Package\Missing`)
	assert.ErrorIs(t, err, diag.ErrReferenceNotFound)
}

func TestIdentityRegistry_IDsSorted(t *testing.T) {
	r := NewIdentityRegistry()
	b := uuid.MustParse("bbbbbbbb-0000-4000-8000-000000000000")
	a := uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000000")
	r.Register(b, dtsx.NewNode("x"))
	r.Register(a, dtsx.NewNode("y"))

	assert.Equal(t, []uuid.UUID{a, b}, r.IDs())
}
