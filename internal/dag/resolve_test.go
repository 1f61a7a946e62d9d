package dag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// =============================================================================
// Test Helpers
// =============================================================================

type fixture struct {
	container *dtsx.Node
	tasks     map[string]*dtsx.Node
}

func newFixture(names ...string) *fixture {
	f := &fixture{container: dtsx.NewNode(dtsx.TagExecutable), tasks: make(map[string]*dtsx.Node)}
	f.container.Name = "Package"
	for i, name := range names {
		n := dtsx.NewNode(dtsx.TagExecutable)
		n.Name = name
		n.ID = uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", i+1))
		f.container.AddChild(n)
		f.tasks[name] = n
	}
	return f
}

// link adds a 2008-style constraint from one task to another.
func (f *fixture) link(from, to string, props map[string]string) *dtsx.Node {
	c := dtsx.NewNode(dtsx.TagPrecedenceConstraint)
	for k, v := range props {
		c.Properties[k] = v
	}
	for _, end := range []struct {
		name   string
		isFrom string
	}{{from, "-1"}, {to, "0"}} {
		e := dtsx.NewNode(dtsx.TagExecutable)
		if task, ok := f.tasks[end.name]; ok {
			e.Attributes["IDREF"] = "{" + strings.ToUpper(task.ID.String()) + "}"
		} else {
			e.Attributes["IDREF"] = end.name
		}
		e.Properties["IsFrom"] = end.isFrom
		c.AddChild(e)
	}
	f.container.AddChild(c)
	return c
}

// render flattens a plan into indented lines: "name", guarded steps in [].
func render(p *Plan) []string {
	var out []string
	p.Walk(func(s *Step, depth int) {
		line := strings.Repeat("  ", depth) + s.Node.Label()
		if s.Via != nil && s.Via.Guard != "" {
			line += " [" + s.Via.Guard + "]"
		}
		out = append(out, line)
	})
	return out
}

// =============================================================================
// Resolve
// =============================================================================

func TestResolve_NoConstraintsKeepsDocumentOrder(t *testing.T) {
	f := newFixture("A", "B", "C")
	variable := dtsx.NewNode(dtsx.TagVariable)
	variable.Name = "V"
	f.container.AddChild(variable)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "V"}, render(plan))
	assert.Empty(t, plan.Edges)
	assert.Equal(t, 4, plan.Steps)
}

func TestResolve_FanOut(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.link("A", "B", nil)
	f.link("A", "C", nil)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	require.Len(t, plan.Roots, 1)
	assert.Equal(t, []string{"A", "  B", "  C"}, render(plan))
	for _, e := range plan.Edges {
		assert.Empty(t, e.Guard)
	}
}

func TestResolve_DeclarationOrderWins(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.link("A", "C", nil)
	f.link("A", "B", nil)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "  C", "  B"}, render(plan))
}

func TestResolve_GuardedEdge(t *testing.T) {
	f := newFixture("A", "B")
	f.link("A", "B", map[string]string{"EvalOp": "3", "Expression": "@[User::Flag]"})

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "  B [@[User::Flag]]"}, render(plan))
	require.Len(t, plan.Edges, 1)
	assert.Equal(t, EvalExpressionAndConstraint, plan.Edges[0].EvalOp)
	assert.Equal(t, "A -> B (Success, And) when @[User::Flag]", plan.Edges[0].String())
}

func TestResolve_ConstraintOnlyIgnoresExpression(t *testing.T) {
	f := newFixture("A", "B")
	f.link("A", "B", map[string]string{"EvalOp": "2", "Expression": "@[User::Flag]", "Value": "1", "LogicalAnd": "0"})

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	e := plan.Edges[0]
	assert.Empty(t, e.Guard)
	assert.Equal(t, OutcomeFailure, e.Outcome)
	assert.Equal(t, LogicalOr, e.LogicalOp)
}

func TestResolve_DiamondIsEmittedPerEdge(t *testing.T) {
	f := newFixture("A", "B", "C", "D")
	f.link("A", "B", nil)
	f.link("A", "C", nil)
	f.link("B", "D", nil)
	f.link("C", "D", nil)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "  B", "    D", "  C", "    D"}, render(plan))
	assert.Equal(t, 5, plan.Steps)
}

func TestResolve_CycleIsFatal(t *testing.T) {
	f := newFixture("A", "B")
	f.link("A", "B", nil)
	f.link("B", "A", nil)

	plan, err := Resolve(f.container, Options{})
	assert.Nil(t, plan)
	require.ErrorIs(t, err, diag.ErrStructuralCycle)

	var cycleErr *diag.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"A", "B", "A"}, cycleErr.Cycle)
	assert.Equal(t, "Package", cycleErr.Container)
}

func TestResolve_SelfLoopIsFatal(t *testing.T) {
	f := newFixture("A")
	f.link("A", "A", nil)

	_, err := Resolve(f.container, Options{})
	assert.ErrorIs(t, err, diag.ErrStructuralCycle)
}

func TestResolve_CycleUnreachableFromRoots(t *testing.T) {
	f := newFixture("R", "X", "Y")
	f.link("X", "Y", nil)
	f.link("Y", "X", nil)

	_, err := Resolve(f.container, Options{})
	assert.ErrorIs(t, err, diag.ErrStructuralCycle)
}

func TestResolve_UnknownEndpointIsDropped(t *testing.T) {
	f := newFixture("A", "B")
	f.link("A", "{00000000-0000-4000-8000-000000000099}", nil)
	f.link("A", "{garbage}", nil)
	f.link("A", "B", nil)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "  B"}, render(plan))
	require.Len(t, plan.Diagnostics, 2)
	assert.Equal(t, diag.KindReferenceNotFound, plan.Diagnostics[0].Kind)
	assert.Equal(t, diag.KindMalformedIdentifier, plan.Diagnostics[1].Kind)
}

func TestResolve_TargetAlreadyConsumed(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.link("A", "C", nil)
	f.link("B", "C", nil)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "  C", "B", "  C"}, render(plan))
}

func TestResolve_RefIDEndpoints(t *testing.T) {
	f := newFixture("Retry", "Archive")
	f.tasks["Retry"].Attributes[dtsx.AttrRefID] = `Package\Retry`
	f.tasks["Archive"].Attributes[dtsx.AttrRefID] = `Package\Archive`
	c := dtsx.NewNode(dtsx.TagPrecedenceConstraint)
	c.Properties["From"] = `Package\Retry`
	c.Properties["To"] = `package\archive`
	c.Properties["LogicalAnd"] = "True"
	f.container.AddChild(c)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Retry", "  Archive"}, render(plan))

	c.Properties["To"] = `Package\Missing`
	plan, err = Resolve(f.container, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Diagnostics, 1)
	assert.Equal(t, diag.KindReferenceNotFound, plan.Diagnostics[0].Kind)
}

func TestResolve_ExpansionLimit(t *testing.T) {
	// A ladder of diamonds doubles the step count at every rung.
	names := []string{"S"}
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("L%d", i), fmt.Sprintf("R%d", i), fmt.Sprintf("J%d", i))
	}
	f := newFixture(names...)
	prev := "S"
	for i := 0; i < 12; i++ {
		l, r, j := fmt.Sprintf("L%d", i), fmt.Sprintf("R%d", i), fmt.Sprintf("J%d", i)
		f.link(prev, l, nil)
		f.link(prev, r, nil)
		f.link(l, j, nil)
		f.link(r, j, nil)
		prev = j
	}

	_, err := Resolve(f.container, Options{MaxSteps: 500})
	assert.ErrorIs(t, err, ErrExpansionLimit)
	assert.NotErrorIs(t, err, diag.ErrStructuralCycle)
}

func TestResolve_MissingEndpoint(t *testing.T) {
	f := newFixture("A")
	c := dtsx.NewNode(dtsx.TagPrecedenceConstraint)
	f.container.AddChild(c)

	plan, err := Resolve(f.container, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Diagnostics, 1)
	assert.Equal(t, diag.KindUnrecognizedConstruct, plan.Diagnostics[0].Kind)
}
