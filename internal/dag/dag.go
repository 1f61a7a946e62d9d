// Package dag orders the tasks of a container by their precedence
// constraints. Graph detects cycles among constraints up front; Resolve turns
// the constraints into a tree of emission steps.
package dag

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// Graph is a directed graph over the tasks of one container. Nodes and edges
// keep insertion order so every traversal is deterministic.
type Graph struct {
	nodes    []*dtsx.Node
	index    map[*dtsx.Node]int
	children [][]int
	parents  [][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[*dtsx.Node]int)}
}

// AddNode adds n unless it is already present.
func (g *Graph) AddNode(n *dtsx.Node) {
	if _, ok := g.index[n]; ok {
		return
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.children = append(g.children, nil)
	g.parents = append(g.parents, nil)
}

// AddEdge adds an edge between two nodes of the graph. Repeated edges are
// stored once; an edge from a node to itself is kept and forms a cycle.
func (g *Graph) AddEdge(from, to *dtsx.Node) error {
	f, ok := g.index[from]
	if !ok {
		return fmt.Errorf("%s is not in the graph", from.Label())
	}
	t, ok := g.index[to]
	if !ok {
		return fmt.Errorf("%s is not in the graph", to.Label())
	}
	if slices.Contains(g.children[f], t) {
		return nil
	}
	g.children[f] = append(g.children[f], t)
	g.parents[t] = append(g.parents[t], f)
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, c := range g.children {
		count += len(c)
	}
	return count
}

// Parents returns the nodes with an edge into n.
func (g *Graph) Parents(n *dtsx.Node) []*dtsx.Node {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.resolve(g.parents[i])
}

// Children returns the nodes n has an edge to.
func (g *Graph) Children(n *dtsx.Node) []*dtsx.Node {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.resolve(g.children[i])
}

// Roots returns the nodes without incoming edges.
func (g *Graph) Roots() []*dtsx.Node {
	var roots []*dtsx.Node
	for i, n := range g.nodes {
		if len(g.parents[i]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

func (g *Graph) resolve(ids []int) []*dtsx.Node {
	out := make([]*dtsx.Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// FindCycle returns the first cycle met by a depth-first search started from
// each node in insertion order, as a path whose first and last nodes are the
// same. It returns nil for an acyclic graph.
func (g *Graph) FindCycle() []*dtsx.Node {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]uint8, len(g.nodes))
	parent := make([]int, len(g.nodes))

	type frame struct {
		node, next int
	}
	for start := range g.nodes {
		if state[start] != unvisited {
			continue
		}
		state[start] = active
		stack := []frame{{node: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(g.children[top.node]) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := g.children[top.node][top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = active
				parent[child] = top.node
				stack = append(stack, frame{node: child})
			case active:
				return g.cyclePath(parent, top.node, child)
			}
		}
	}
	return nil
}

// cyclePath rebuilds to -> ... -> from -> to from the search tree.
func (g *Graph) cyclePath(parent []int, from, to int) []*dtsx.Node {
	path := []*dtsx.Node{g.nodes[to]}
	for cur := from; cur != to; cur = parent[cur] {
		path = append(path, g.nodes[cur])
	}
	path = append(path, g.nodes[to])
	slices.Reverse(path)
	return path
}
