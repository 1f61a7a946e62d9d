package lineage

import (
	"strings"

	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// Role is the part a component plays in a pipeline.
type Role int

// Component roles. RoleUnknown components are skipped.
const (
	RoleUnknown Role = iota
	RoleSource
	RoleTransform
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleTransform:
		return "transform"
	case RoleSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Keys are upper-cased class ids (2008) or lower-cased class names (2012+).
var roleByClass = map[string]Role{
	"{BCEFE59B-6819-47F7-A125-63753B33ABB7}": RoleSource,
	"microsoft.oledbsource":                  RoleSource,
	"{BD06A22E-BC69-4AF7-A69B-C44C2EF684BB}": RoleTransform,
	"microsoft.dataconvert":                  RoleTransform,
	"microsoft.derivedcolumn":                RoleTransform,
	"{5A0B62E8-D91D-49F5-94A5-7BE58DE508F0}": RoleSink,
	"microsoft.oledbdestination":             RoleSink,
}

// ClassifyComponent maps a componentClassID to its role.
func ClassifyComponent(classID string) Role {
	id := strings.TrimSpace(classID)
	if strings.HasPrefix(id, "{") {
		return roleByClass[strings.ToUpper(id)]
	}
	return roleByClass[strings.ToLower(id)]
}

// Element and attribute names of the pipeline document.
const (
	tagComponents      = "components"
	tagComponent       = "component"
	tagProperties      = "properties"
	tagProperty        = "property"
	tagConnections     = "connections"
	tagConnection      = "connection"
	tagOutputs         = "outputs"
	tagOutput          = "output"
	tagOutputColumns   = "outputColumns"
	tagInputs          = "inputs"
	tagInput           = "input"
	tagInputColumns    = "inputColumns"
	tagExternalColumns = "externalMetadataColumns"
)

// Component is one classified pipeline component.
type Component struct {
	Node *dtsx.Node
	ID   string
	Name string
	Role Role
	// Table is the in-memory table symbol for the component's rows.
	Table string
	// ConnectionID is the connection manager the component reads or writes.
	ConnectionID string
	// Query is the read statement of a source.
	Query string
	// Params are the positional parameters of Query.
	Params []Param
	// Target is the table a sink writes to.
	Target string
	// Outputs are the columns the component produces.
	Outputs []Column
	// Inputs are the columns a sink consumes, in declared order.
	Inputs []Input
	// Upstream is the table a transform reads, empty when unknown.
	Upstream string
}

// Param binds one query parameter to a package variable.
type Param struct {
	Name     string
	Ordinal  int
	Variable string
}

// Input is a column consumed by a sink.
type Input struct {
	LineageID string
	// Name is the destination column name.
	Name string
	// Source is the producing column, nil when the lineage id is unknown.
	Source *Column
}

// property returns the text of a named component property.
func property(component *dtsx.Node, name string) string {
	props := component.FindChildByType(tagProperties)
	p := props.FindChildByTypeAndAttribute(tagProperty, "name", name)
	if p == nil {
		return ""
	}
	return p.Content
}

// TableName returns the table symbol for a component id.
func TableName(id string) string {
	return "component" + id
}
