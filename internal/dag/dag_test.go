package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// tasks returns one named executable node per name.
func tasks(names ...string) map[string]*dtsx.Node {
	out := make(map[string]*dtsx.Node, len(names))
	for _, name := range names {
		n := dtsx.NewNode(dtsx.TagExecutable)
		n.Name = name
		out[name] = n
	}
	return out
}

func labels(nodes []*dtsx.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	ts := tasks("a", "b", "c")
	g := NewGraph()
	for _, name := range []string{"a", "b", "c", "a"} {
		g.AddNode(ts[name])
	}
	assert.Equal(t, 3, g.Len())

	require.NoError(t, g.AddEdge(ts["a"], ts["b"]))
	require.NoError(t, g.AddEdge(ts["b"], ts["c"]))
	// Repeated edges are stored once
	require.NoError(t, g.AddEdge(ts["a"], ts["b"]))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraph_AddEdge_UnknownNode(t *testing.T) {
	ts := tasks("a", "stray")
	g := NewGraph()
	g.AddNode(ts["a"])

	assert.Error(t, g.AddEdge(ts["a"], ts["stray"]))
	assert.Error(t, g.AddEdge(ts["stray"], ts["a"]))
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_ParentsChildrenRoots(t *testing.T) {
	ts := tasks("a", "b", "c")
	g := NewGraph()
	for _, name := range []string{"a", "b", "c"} {
		g.AddNode(ts[name])
	}
	require.NoError(t, g.AddEdge(ts["a"], ts["b"]))
	require.NoError(t, g.AddEdge(ts["a"], ts["c"]))
	require.NoError(t, g.AddEdge(ts["b"], ts["c"]))

	assert.Equal(t, []string{"a", "b"}, labels(g.Parents(ts["c"])))
	assert.Equal(t, []string{"b", "c"}, labels(g.Children(ts["a"])))
	assert.Equal(t, []string{"a"}, labels(g.Roots()))
	assert.Nil(t, g.Children(dtsx.NewNode(dtsx.TagExecutable)))
}

func TestGraph_FindCycle(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []string
		edges    [][2]string
		wantPath []string
	}{
		{
			name:  "chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:  "diamond",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
		},
		{
			name:     "self loop",
			nodes:    []string{"a"},
			edges:    [][2]string{{"a", "a"}},
			wantPath: []string{"a", "a"},
		},
		{
			name:     "two node cycle",
			nodes:    []string{"a", "b"},
			edges:    [][2]string{{"a", "b"}, {"b", "a"}},
			wantPath: []string{"a", "b", "a"},
		},
		{
			name:     "cycle behind a root",
			nodes:    []string{"r", "x", "y", "z"},
			edges:    [][2]string{{"r", "x"}, {"x", "y"}, {"y", "z"}, {"z", "x"}},
			wantPath: []string{"x", "y", "z", "x"},
		},
		{
			name:     "cycle after an acyclic branch",
			nodes:    []string{"a", "b", "c", "d"},
			edges:    [][2]string{{"a", "b"}, {"a", "c"}, {"c", "d"}, {"d", "c"}},
			wantPath: []string{"c", "d", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := tasks(tt.nodes...)
			g := NewGraph()
			for _, n := range tt.nodes {
				g.AddNode(ts[n])
			}
			for _, e := range tt.edges {
				require.NoError(t, g.AddEdge(ts[e[0]], ts[e[1]]))
			}

			cycle := g.FindCycle()
			if tt.wantPath == nil {
				assert.Nil(t, cycle)
				return
			}
			assert.Equal(t, tt.wantPath, labels(cycle))
		})
	}
}
