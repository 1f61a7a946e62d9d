package lineage

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// MissingQuery stands in for a source statement that could not be found.
const MissingQuery = "COULD NOT FIND SQL STATEMENT"

// Column is one column produced inside a pipeline.
type Column struct {
	LineageID string
	// Table is the symbol of the producing component's table.
	Table string
	// Ordinal is the column's position in Table.
	Ordinal  int
	Name     string
	DataType string
}

// Tracker accumulates the columns of one pipeline walk. Columns are only
// ever added.
type Tracker struct {
	columns []Column
	byID    map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byID: make(map[string]int)}
}

// Add records a column. A repeated lineage id keeps resolving to the first
// column recorded under it.
func (t *Tracker) Add(c Column) {
	if _, ok := t.byID[c.LineageID]; !ok {
		t.byID[c.LineageID] = len(t.columns)
	}
	t.columns = append(t.columns, c)
}

// Lookup resolves a lineage id.
func (t *Tracker) Lookup(lineageID string) (*Column, bool) {
	i, ok := t.byID[lineageID]
	if !ok {
		return nil, false
	}
	c := t.columns[i]
	return &c, true
}

// Columns returns the columns in the order they were added.
func (t *Tracker) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of tracked columns.
func (t *Tracker) Len() int {
	return len(t.columns)
}

// Resolver looks up the variables a source query is parameterized with.
type Resolver interface {
	GetByIdentifier(text string) (*dtsx.Node, error)
}

// Result is the analysis of one pipeline.
type Result struct {
	Pipeline *dtsx.Node
	// Components are in processing order: sources, transforms, sinks.
	Components  []*Component
	Columns     []Column
	Diagnostics []diag.Diagnostic
}

// ByRole returns the components playing role, in processing order.
func (r *Result) ByRole(role Role) []*Component {
	var out []*Component
	for _, c := range r.Components {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// Analyze classifies the components of a pipeline element and resolves the
// lineage of every sink input. reg may be nil, in which case query
// parameters stay unbound.
func Analyze(pipeline *dtsx.Node, reg Resolver) *Result {
	a := &analyzer{
		res:     &Result{Pipeline: pipeline},
		tracker: NewTracker(),
		reg:     reg,
	}

	var sources, transforms, sinks []*dtsx.Node
	for _, n := range pipeline.Descend(tagComponents).FindChildrenByType(tagComponent) {
		switch ClassifyComponent(n.Attr("componentClassID")) {
		case RoleSource:
			sources = append(sources, n)
		case RoleTransform:
			transforms = append(transforms, n)
		case RoleSink:
			sinks = append(sinks, n)
		default:
			a.report(diag.KindUnrecognizedConstruct, n, "pipeline component %q has unsupported class %s",
				n.Attr("name"), n.Attr("componentClassID"))
		}
	}

	for _, n := range sources {
		a.source(n)
	}
	for _, n := range transforms {
		a.transform(n)
	}
	for _, n := range sinks {
		a.sink(n)
	}

	a.res.Columns = a.tracker.Columns()
	return a.res
}

type analyzer struct {
	res     *Result
	tracker *Tracker
	reg     Resolver
}

func (a *analyzer) report(kind diag.Kind, at *dtsx.Node, format string, args ...any) {
	a.res.Diagnostics = append(a.res.Diagnostics, diag.New(kind, at, format, args...))
}

func (a *analyzer) component(n *dtsx.Node, role Role) *Component {
	c := &Component{
		Node:         n,
		ID:           n.Attr("id"),
		Name:         n.Attr("name"),
		Role:         role,
		Table:        TableName(n.Attr("id")),
		ConnectionID: connectionID(n),
	}
	a.res.Components = append(a.res.Components, c)
	return c
}

func (a *analyzer) source(n *dtsx.Node) {
	c := a.component(n, RoleSource)
	a.outputs(c)
	if len(c.Outputs) == 0 {
		a.report(diag.KindUnrecognizedConstruct, n, "source %q declares no output columns", c.Name)
	}

	switch {
	case property(n, "SqlCommand") != "":
		c.Query = property(n, "SqlCommand")
	case property(n, "OpenRowset") != "":
		c.Query = "SELECT * FROM " + property(n, "OpenRowset")
	default:
		c.Query = MissingQuery
		a.report(diag.KindUnrecognizedConstruct, n, "source %q has no SQL statement or table", c.Name)
	}
	c.Params = a.params(n, property(n, "ParameterMapping"))
}

func (a *analyzer) transform(n *dtsx.Node) {
	c := a.component(n, RoleTransform)
	for _, in := range a.inputs(n) {
		if in.Source != nil {
			c.Upstream = in.Source.Table
			break
		}
	}
	if c.Upstream == "" {
		if sources := a.res.ByRole(RoleSource); len(sources) > 0 {
			c.Upstream = sources[0].Table
		}
	}
	a.outputs(c)
}

func (a *analyzer) sink(n *dtsx.Node) {
	c := a.component(n, RoleSink)
	c.Target = property(n, "OpenRowset")
	if c.Target == "" {
		a.report(diag.KindUnrecognizedConstruct, n, "destination %q names no table", c.Name)
	}
	c.Inputs = a.inputs(n)
	for _, in := range c.Inputs {
		if in.Source == nil {
			a.report(diag.KindReferenceNotFound, n, "unable to find column %s (lineage id %s) for destination %q",
				in.Name, in.LineageID, c.Name)
		}
	}
}

// outputs records the non-error output columns of a component in declared
// order.
func (a *analyzer) outputs(c *Component) {
	for _, out := range c.Node.FindChildByType(tagOutputs).FindChildrenByType(tagOutput) {
		if strings.EqualFold(out.Attr("isErrorOut"), "true") {
			continue
		}
		columns := out.FindChildByType(tagOutputColumns)
		if columns == nil {
			a.report(diag.KindUnrecognizedConstruct, out, "output %q of %q has no column list",
				out.Attr("name"), c.Name)
			continue
		}
		for _, col := range columns.ChildNodes() {
			lid := col.Attr("lineageId")
			if lid == "" {
				a.report(diag.KindUnrecognizedConstruct, col, "output column %q of %q has no lineage id",
					col.Attr("name"), c.Name)
				continue
			}
			dataType := col.Attr("dataType")
			if _, ok := GoType(dataType); !ok {
				a.report(diag.KindUnrecognizedConstruct, col, "column %q of %q has unsupported data type %q",
					col.Attr("name"), c.Name, dataType)
			}
			column := Column{
				LineageID: lid,
				Table:     c.Table,
				Ordinal:   len(c.Outputs),
				Name:      col.Attr("name"),
				DataType:  dataType,
			}
			c.Outputs = append(c.Outputs, column)
			a.tracker.Add(column)
		}
	}
}

// inputs resolves every input column of a component against the columns
// tracked so far.
func (a *analyzer) inputs(n *dtsx.Node) []Input {
	var out []Input
	for _, input := range n.FindChildByType(tagInputs).FindChildrenByType(tagInput) {
		external := make(map[string]string)
		for _, ext := range input.FindChildByType(tagExternalColumns).ChildNodes() {
			external[ext.Attr("id")] = ext.Attr("name")
		}
		columns := input.FindChildByType(tagInputColumns)
		if columns == nil {
			a.report(diag.KindUnrecognizedConstruct, input, "input %q of %q has no column list",
				input.Attr("name"), n.Attr("name"))
			continue
		}
		for _, col := range columns.ChildNodes() {
			in := Input{LineageID: col.Attr("lineageId")}
			in.Name = external[col.Attr("externalMetadataColumnId")]
			if in.Name == "" {
				in.Name = col.Attr("cachedName")
			}
			if in.Name == "" {
				in.Name = col.Attr("name")
			}
			if in.Name == "" {
				a.report(diag.KindReferenceNotFound, col, "input column with lineage id %s of %q has no name",
					in.LineageID, n.Attr("name"))
			}
			if src, ok := a.tracker.Lookup(in.LineageID); ok {
				in.Source = src
			}
			out = append(out, in)
		}
	}
	return out
}

// params parses a ParameterMapping property of the form
//
//	"Parameter0:Input",{id};"Parameter1:Input",{id};
func (a *analyzer) params(n *dtsx.Node, mapping string) []Param {
	var out []Param
	for _, entry := range strings.Split(mapping, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		i := strings.LastIndex(entry, ",")
		if i < 0 {
			a.report(diag.KindUnrecognizedConstruct, n, "unreadable parameter mapping %q", entry)
			continue
		}
		name := strings.Trim(strings.TrimSpace(entry[:i]), `"`)
		if j := strings.Index(name, ":"); j >= 0 {
			name = name[:j]
		}
		p := Param{Name: name, Ordinal: len(out)}
		ref := strings.TrimSpace(entry[i+1:])
		if a.reg != nil {
			if v, err := a.reg.GetByIdentifier(ref); err != nil {
				a.res.Diagnostics = append(a.res.Diagnostics, diag.FromError(err, n))
			} else {
				p.Variable = v.Name
			}
		}
		out = append(out, p)
	}
	return out
}

func connectionID(n *dtsx.Node) string {
	conn := n.Descend(tagConnections, tagConnection)
	if id := conn.Attr("connectionManagerID"); id != "" {
		return id
	}
	return conn.Attr("connectionManagerRefId")
}

// PositionalName is the placeholder name of the n-th parameter for drivers
// that only bind by position.
func PositionalName(ordinal int) string {
	return "p" + strconv.Itoa(ordinal+1)
}
