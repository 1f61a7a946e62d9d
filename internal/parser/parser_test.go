package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/registry"
	"github.com/leapstack-labs/dessist/internal/testutil"
)

func parseSample(t *testing.T, doc string) (*Result, *registry.IdentityRegistry) {
	t.Helper()
	reg := registry.NewIdentityRegistry()
	res, err := Parse(strings.NewReader(doc), reg)
	require.NoError(t, err)
	return res, reg
}

func TestParse_2008Layout(t *testing.T) {
	res, reg := parseSample(t, testutil.SamplePackage2008)
	root := res.Root

	assert.Equal(t, dtsx.TagExecutable, root.TypeTag)
	assert.Equal(t, "Customer Load", root.Name)
	assert.Equal(t, "Loads customers into staging", root.Description)
	assert.Equal(t, dtsx.ExecPackage, root.Executable().Kind)
	assert.Empty(t, res.Diagnostics)

	// DTS:Property elements become fields, never children.
	assert.Nil(t, root.FindChildByType(dtsx.TagProperty))
	assert.NotContains(t, root.Properties, dtsx.PropObjectName)

	fetch, err := reg.GetByIdentifier(testutil.SampleFetchID)
	require.NoError(t, err)
	assert.Equal(t, "Fetch Customers", fetch.Name)
	assert.Same(t, root, fetch.Parent)

	sqlData := fetch.Descend(dtsx.TagObjectData, dtsx.TagSQLTaskData)
	require.NotNil(t, sqlData)
	assert.Equal(t, "ResultSetType_Rowset", sqlData.Attr("SQLTask:ResultType"))
	assert.Len(t, sqlData.FindChildrenByType(dtsx.TagSQLParameterBinding), 1)

	conn, err := reg.GetByIdentifier(testutil.SampleWarehouseID)
	require.NoError(t, err)
	assert.Equal(t, "OLEDB", conn.Property("CreationName"))
	inner := conn.Descend(dtsx.TagObjectData, dtsx.TagConnectionManager)
	require.NotNil(t, inner)
	assert.Contains(t, inner.Property("ConnectionString"), "Initial Catalog=dw")

	variable, err := reg.GetByIdentifier(testutil.SampleBatchVarID)
	require.NoError(t, err)
	assert.Equal(t, "User", variable.Property("Namespace"))
	value := variable.FindChildByType(dtsx.TagVariableValue)
	require.NotNil(t, value)
	assert.Equal(t, "3", value.Attr(dtsx.AttrDataType))
	assert.Equal(t, "500", value.Content)

	comps := res.Root.FindChildrenByType(dtsx.TagExecutable)
	assert.Len(t, comps, 5)
}

func TestParse_PipelineContent(t *testing.T) {
	_, reg := parseSample(t, testutil.SamplePackage2008)
	copyTask, err := reg.GetByIdentifier(testutil.SampleCopyID)
	require.NoError(t, err)

	comps := copyTask.Descend(dtsx.TagObjectData, dtsx.TagPipeline, "components")
	require.NotNil(t, comps)
	require.Len(t, comps.Children, 3)

	src := comps.Children[0]
	sql := src.Descend("properties").FindChildByTypeAndAttribute("property", "name", "SqlCommand")
	require.NotNil(t, sql)
	assert.Equal(t, "SELECT CustomerID, Name FROM dbo.Customer WHERE Batch = ?", sql.Content)
}

func TestParse_PrecedenceConstraintEndpoints(t *testing.T) {
	res, _ := parseSample(t, testutil.SamplePackage2008)
	constraints := res.Root.FindChildrenByType(dtsx.TagPrecedenceConstraint)
	require.Len(t, constraints, 4)

	last := constraints[3]
	assert.Equal(t, "@[User::Notify] == True", last.Property("Expression"))
	ends := last.FindChildrenByType(dtsx.TagExecutable)
	require.Len(t, ends, 2)
	assert.Equal(t, testutil.SampleCopyID, ends[0].Attr("IDREF"))
	assert.Equal(t, "-1", ends[0].Property("IsFrom"))
}

func TestParse_2012Layout(t *testing.T) {
	res, reg := parseSample(t, testutil.SamplePackage2012)
	root := res.Root

	assert.Equal(t, "Nightly", root.Name)
	assert.Equal(t, dtsx.ExecPackage, root.Executable().Kind)

	// Grouping elements are flattened into the container.
	assert.Nil(t, root.FindChildByType(dtsx.TagExecutables))
	assert.Len(t, root.FindChildrenByType(dtsx.TagExecutable), 2)
	assert.Len(t, root.FindChildrenByType(dtsx.TagVariable), 1)
	assert.Len(t, root.FindChildrenByType(dtsx.TagPrecedenceConstraint), 1)

	loop, err := reg.GetByRef(`Package\Retry`)
	require.NoError(t, err)
	assert.Equal(t, "Retry", loop.Name)
	assert.Equal(t, "@[User::i] < 3", loop.Property("EvalExpression"))
	assert.Equal(t, dtsx.ExecForLoop, loop.Executable().Kind)

	ping, err := reg.GetByIdentifier("{10000000-0000-4000-8000-0000000000A2}")
	require.NoError(t, err)
	assert.Same(t, loop, ping.Parent)

	conn, err := reg.GetByIdentifier("Package.ConnectionManagers[Source]")
	require.NoError(t, err)
	assert.Equal(t, "Source", conn.Name)
}

func TestParse_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	doc := strings.Replace(testutil.SamplePackage2012, `<?xml version="1.0"?>`, `<?xml version="1.0" encoding="utf-16"?>`, 1)
	encoded, err := enc.Bytes([]byte(doc))
	require.NoError(t, err)

	res, err := Parse(bytes.NewReader(encoded), registry.NewIdentityRegistry())
	require.NoError(t, err)
	assert.Equal(t, "Nightly", res.Root.Name)
}

func TestParse_MalformedIdentifierIsReported(t *testing.T) {
	doc := `<DTS:Executable xmlns:DTS="www.microsoft.com/SqlServer/Dts" DTS:ExecutableType="SSIS.Package.2">
  <DTS:Property DTS:Name="ObjectName">Broken</DTS:Property>
  <DTS:Property DTS:Name="DTSID">{nope}</DTS:Property>
</DTS:Executable>`

	res, reg := parseSample(t, doc)
	assert.Equal(t, "Broken", res.Root.Name)
	assert.False(t, res.Root.HasID())
	assert.Equal(t, 0, reg.Len())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.KindMalformedIdentifier, res.Diagnostics[0].Kind)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not xml", "<DTS:Executable"},
		{"comment only", "<!-- nothing -->"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc), nil)
			assert.Error(t, err)
		})
	}
}
