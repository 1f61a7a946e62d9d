package dtsx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/diag"
)

type mapRegistrar map[uuid.UUID]*Node

func (m mapRegistrar) Register(id uuid.UUID, n *Node) { m[id] = n }

func named(tag, name string) *Node {
	n := NewNode(tag)
	n.Name = name
	return n
}

func TestSetProperty_RoutesSpecialKeys(t *testing.T) {
	reg := mapRegistrar{}
	n := NewNode(TagExecutable)

	require.NoError(t, n.SetProperty(reg, PropObjectName, "Load Customers"))
	require.NoError(t, n.SetProperty(reg, PropDescription, "Loads the customer table"))
	require.NoError(t, n.SetProperty(reg, PropDTSID, "{6E0C1B1E-6C5A-4C44-9B9B-5C2D9A0B7E11}"))
	require.NoError(t, n.SetProperty(reg, "InitExpression", "@i = 0"))

	assert.Equal(t, "Load Customers", n.Name)
	assert.Equal(t, "Loads the customer table", n.Description)
	assert.Equal(t, "6e0c1b1e-6c5a-4c44-9b9b-5c2d9a0b7e11", n.ID.String())
	assert.Equal(t, map[string]string{"InitExpression": "@i = 0"}, n.Properties)
	assert.Same(t, n, reg[n.ID])
}

func TestSetProperty_MalformedID(t *testing.T) {
	reg := mapRegistrar{}
	n := NewNode(TagExecutable)

	err := n.SetProperty(reg, PropDTSID, "{12}")
	assert.ErrorIs(t, err, diag.ErrMalformedIdentifier)
	assert.False(t, n.HasID())
	assert.Empty(t, reg)
	assert.NotContains(t, n.Properties, PropDTSID)
}

func TestFinders_DocumentOrder(t *testing.T) {
	root := NewNode("components")
	first := NewNode("component")
	first.Attributes["componentClassID"] = "src"
	first.Attributes["id"] = "1"
	second := NewNode("component")
	second.Attributes["componentClassID"] = "dst"
	second.Attributes["id"] = "2"
	third := NewNode("component")
	third.Attributes["componentClassID"] = "src"
	third.Attributes["id"] = "3"
	other := NewNode("path")
	for _, c := range []*Node{first, second, other, third} {
		root.AddChild(c)
	}

	assert.Same(t, first, root.FindChildByType("component"))
	assert.Same(t, other, root.FindChildByType("path"))
	assert.Nil(t, root.FindChildByType("missing"))

	assert.Same(t, second, root.FindChildByTypeAndAttribute("component", "componentClassID", "dst"))
	assert.Nil(t, root.FindChildByTypeAndAttribute("component", "componentClassID", "other"))

	assert.Equal(t, []*Node{first, third}, root.FindChildrenByAttribute("componentClassID", "src"))
	assert.Equal(t, []*Node{first, second, third}, root.FindChildrenByType("component"))
	assert.Same(t, root, first.Parent)
}

func TestFinders_NilSafe(t *testing.T) {
	var n *Node
	assert.Nil(t, n.FindChildByType("x"))
	assert.Nil(t, n.Descend("a", "b"))
	assert.Empty(t, n.Attr("x"))
	assert.Empty(t, n.Property("x"))
	assert.Nil(t, n.FirstChild())
	assert.Nil(t, n.ChildNodes())
	assert.Nil(t, n.FindChildByType("x").ChildNodes())
}

func TestDescend(t *testing.T) {
	exec := NewNode(TagExecutable)
	data := NewNode(TagObjectData)
	pipe := NewNode(TagPipeline)
	comps := NewNode("components")
	exec.AddChild(data)
	data.AddChild(pipe)
	pipe.AddChild(comps)

	assert.Same(t, comps, exec.Descend(TagObjectData, TagPipeline, "components"))
	assert.Nil(t, exec.Descend(TagObjectData, "components"))
}

func TestAncestry(t *testing.T) {
	pkg := named(TagExecutable, "Package")
	pkg.ID = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000000")
	loop := named(TagExecutable, "Loop")
	data := NewNode(TagObjectData)
	inner := NewNode("component")
	pkg.AddChild(loop)
	loop.AddChild(data)
	data.AddChild(inner)

	assert.Equal(t, "Loop", inner.NearestName())
	assert.Equal(t, `Package\Loop`, inner.Path())
	assert.Equal(t, pkg.ID.String(), inner.NearestID())
	assert.Same(t, pkg, inner.Root())

	orphan := NewNode("x")
	assert.Equal(t, UnnamedName, orphan.NearestName())
	assert.Equal(t, UnnamedName, orphan.Path())
	assert.Empty(t, orphan.NearestID())
}

func TestWalk_PreOrder(t *testing.T) {
	root := named("r", "root")
	a := named("a", "a")
	b := named("b", "b")
	a1 := named("a1", "a1")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)

	var seen []string
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "b"}, seen)

	seen = nil
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, seen)
}

func TestLabel(t *testing.T) {
	comp := NewNode("component")
	comp.Attributes["name"] = "OLE DB Source"
	assert.Equal(t, "OLE DB Source", comp.Label())
	assert.Equal(t, "Task", named(TagExecutable, "Task").Label())
	assert.Equal(t, "pipeline", NewNode("pipeline").Label())
}

func TestClassifyExecutable(t *testing.T) {
	tests := []struct {
		raw  string
		want ExecKind
	}{
		{"SSIS.Package.2", ExecPackage},
		{"Microsoft.SqlServer.Dts.Tasks.ExecuteSQLTask.ExecuteSQLTask, Microsoft.SqlServer.SQLTask, Version=10.0.0.0", ExecSQLTask},
		{"Microsoft.ExecuteSQLTask", ExecSQLTask},
		{"Microsoft.SqlServer.Dts.Tasks.ScriptTask.ScriptTask, Microsoft.SqlServer.ScriptTask", ExecScriptTask},
		{"STOCK:SEQUENCE", ExecSequence},
		{"STOCK:FORLOOP", ExecForLoop},
		{"STOCK:FOREACHLOOP", ExecForEachLoop},
		{"SSIS.Pipeline.2", ExecPipeline},
		{"Microsoft.SqlServer.Dts.Tasks.SendMailTask.SendMailTask, Microsoft.SqlServer.SendMailTask", ExecSendMail},
		{"Microsoft.SqlServer.Dts.Tasks.FileSystemTask.FileSystemTask", ExecUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ClassifyExecutable(tt.raw)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExecutable, KindOf(TagExecutable))
	assert.Equal(t, KindPipeline, KindOf("pipeline"))
	assert.Equal(t, KindGrouping, KindOf(TagExecutables))
	assert.Equal(t, KindUnknown, KindOf("DTS:Whatever"))
	assert.Equal(t, "unknown", KindUnknown.String())
}
