package dag

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// DefaultMaxSteps bounds the number of steps one container may expand to.
const DefaultMaxSteps = 10000

// ErrExpansionLimit is returned when a container expands past its step
// bound. It aborts that container only.
var ErrExpansionLimit = errors.New("precedence expansion limit exceeded")

// Step is one emission of a child. Next holds the steps triggered by its
// outgoing edges in declaration order.
type Step struct {
	Node *dtsx.Node
	// Via is the edge that led here, nil for roots.
	Via  *Edge
	Next []*Step
}

// Plan is the resolved emission order of a container's children.
type Plan struct {
	Container *dtsx.Node
	Roots     []*Step
	Edges     []*Edge
	// Steps counts every step in the plan, duplicates included.
	Steps       int
	Diagnostics []diag.Diagnostic
}

// Walk visits every step depth-first in emission order.
func (p *Plan) Walk(fn func(s *Step, depth int)) {
	var visit func(s *Step, depth int)
	visit = func(s *Step, depth int) {
		fn(s, depth)
		for _, next := range s.Next {
			visit(next, depth+1)
		}
	}
	for _, r := range p.Roots {
		visit(r, 0)
	}
}

// Options tunes Resolve.
type Options struct {
	// MaxSteps bounds expansion, DefaultMaxSteps when zero.
	MaxSteps int
}

// Resolve orders the children of container by its precedence constraints.
//
// Children with no incoming edge are roots and keep document order. After a
// child, each edge leaving it is followed in declaration order, depth first.
// A child reachable over several edges appears once per edge. Cycles are
// reported as a *diag.CycleError before any expansion happens.
func Resolve(container *dtsx.Node, opts Options) (*Plan, error) {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	plan := &Plan{Container: container}

	var candidates, constraints []*dtsx.Node
	for _, c := range container.Children {
		if c.Kind() == dtsx.KindPrecedenceConstraint {
			constraints = append(constraints, c)
		} else {
			candidates = append(candidates, c)
		}
	}

	roots := make([]*dtsx.Node, len(candidates))
	copy(roots, candidates)

	sibs := indexSiblings(candidates)
	outgoing := make(map[*dtsx.Node][]*Edge)
	for _, c := range constraints {
		e, d := buildEdge(c, sibs)
		if d != nil {
			plan.Diagnostics = append(plan.Diagnostics, *d)
			continue
		}
		plan.Edges = append(plan.Edges, e)
		outgoing[e.From] = append(outgoing[e.From], e)
		roots = remove(roots, e.To)
	}

	if err := checkCycles(container, candidates, plan.Edges); err != nil {
		return nil, err
	}

	for _, r := range roots {
		plan.Roots = append(plan.Roots, &Step{Node: r})
	}
	plan.Steps = len(plan.Roots)

	type work struct {
		step *Step
		path []*dtsx.Node
	}
	stack := make([]work, 0, len(plan.Roots))
	for i := len(plan.Roots) - 1; i >= 0; i-- {
		stack = append(stack, work{step: plan.Roots[i]})
	}

	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path := make([]*dtsx.Node, len(w.path)+1)
		copy(path, w.path)
		path[len(w.path)] = w.step.Node

		for _, e := range outgoing[w.step.Node] {
			if onPath(path, e.To) {
				return nil, cycleError(container, append(path, e.To))
			}
			w.step.Next = append(w.step.Next, &Step{Node: e.To, Via: e})
		}

		plan.Steps += len(w.step.Next)
		if plan.Steps > maxSteps {
			return nil, fmt.Errorf("%s: %w (%d steps)", container.Path(), ErrExpansionLimit, maxSteps)
		}

		for i := len(w.step.Next) - 1; i >= 0; i-- {
			stack = append(stack, work{step: w.step.Next[i], path: path})
		}
	}

	return plan, nil
}

// checkCycles loads the edges into a Graph and reports the first cycle.
func checkCycles(container *dtsx.Node, candidates []*dtsx.Node, edges []*Edge) error {
	if len(edges) == 0 {
		return nil
	}
	g := NewGraph()
	for _, c := range candidates {
		g.AddNode(c)
	}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return fmt.Errorf("%s: %w", container.Path(), err)
		}
	}
	if cycle := g.FindCycle(); cycle != nil {
		return cycleError(container, cycle)
	}
	return nil
}

func cycleError(container *dtsx.Node, nodes []*dtsx.Node) *diag.CycleError {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Label()
	}
	return &diag.CycleError{Container: container.Path(), Cycle: names}
}

func onPath(path []*dtsx.Node, n *dtsx.Node) bool {
	for _, p := range path {
		if p == n {
			return true
		}
	}
	return false
}

// remove drops the first occurrence of n, keeping order.
func remove(nodes []*dtsx.Node, n *dtsx.Node) []*dtsx.Node {
	for i, c := range nodes {
		if c == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}
