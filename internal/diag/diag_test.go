package diag

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	path string
	id   string
}

func (f fakeLocator) Path() string      { return f.path }
func (f fakeLocator) NearestID() string { return f.id }

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnrecognizedConstruct, "unrecognized_construct"},
		{KindReferenceNotFound, "reference_not_found"},
		{KindMalformedIdentifier, "malformed_identifier"},
		{KindStructuralCycle, "structural_cycle"},
		{KindFormat, "format"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("ERROR")
	assert.True(t, ok)
	assert.Equal(t, SeverityError, sev)

	sev, ok = ParseSeverity("loud")
	assert.False(t, ok)
	assert.Equal(t, SeverityWarning, sev)
}

func TestNew_UsesLocatorAndDefaultSeverity(t *testing.T) {
	d := New(KindReferenceNotFound, fakeLocator{path: `Package\Load`, id: "abc"}, "missing %s", "conn")

	assert.Equal(t, KindReferenceNotFound, d.Kind)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, `Package\Load`, d.Path)
	assert.Equal(t, "abc", d.NodeID)
	assert.Equal(t, "missing conn", d.Message)
	assert.Equal(t, `error [reference_not_found] Package\Load: missing conn`, d.String())
}

func TestNew_NilLocator(t *testing.T) {
	d := New(KindUnrecognizedConstruct, nil, "odd")
	assert.Empty(t, d.Path)
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cycle := &CycleError{Container: "Package", Cycle: []string{"A", "B", "A"}}
	assert.ErrorIs(t, cycle, ErrStructuralCycle)
	assert.Equal(t, "precedence cycle in Package: A -> B -> A", cycle.Error())

	ref := &ReferenceError{ID: "{X}"}
	assert.ErrorIs(t, ref, ErrReferenceNotFound)

	_, parseErr := uuid.Parse("not-a-guid")
	require.Error(t, parseErr)
	ident := &IdentifierError{Value: "not-a-guid", Err: parseErr}
	assert.ErrorIs(t, ident, ErrMalformedIdentifier)
	assert.True(t, errors.Is(ident, parseErr))
}

func TestFromError(t *testing.T) {
	d := FromError(&ReferenceError{ID: "x"}, nil)
	assert.Equal(t, KindReferenceNotFound, d.Kind)

	d = FromError(errors.New("boom"), nil)
	assert.Equal(t, KindUnrecognizedConstruct, d.Kind)
}

func TestSink(t *testing.T) {
	s := NewSink()
	s.Report(KindUnrecognizedConstruct, fakeLocator{path: "B"}, "skip")
	s.Report(KindReferenceNotFound, fakeLocator{path: "A"}, "miss")
	s.Add(Diagnostic{Kind: KindFormat, Severity: SeverityInfo, Message: "note"})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Count(SeverityError))
	assert.Equal(t, 1, s.Count(SeverityWarning))

	items := s.Items()
	items[0].Message = "mutated"
	assert.Equal(t, "skip", s.Items()[0].Message, "Items must return a copy")

	sorted := Sorted(s.Items())
	assert.Equal(t, "miss", sorted[0].Message)
	assert.Equal(t, "skip", sorted[1].Message)
	assert.Equal(t, "note", sorted[2].Message)

	groups := ByKind(s.Items())
	assert.Len(t, groups[KindReferenceNotFound], 1)
}
