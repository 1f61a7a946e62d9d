package codegen

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/lineage"
	"github.com/leapstack-labs/dessist/internal/naming"
)

func (e *emitter) emitPipelineTask(task *dtsx.Node) {
	p := task.Descend(dtsx.TagObjectData, dtsx.TagPipeline)
	if p.FindChildByType("components") == nil {
		e.report(diag.KindUnrecognizedConstruct, task, "unable to find pipeline components")
		e.w.Comment("unable to find pipeline components")
		return
	}
	e.emitPipeline(p)
}

// emitPipeline writes readers, then transforms, then writers. Every table is
// indexed by row up to rowCount, which the first reader that resolves its
// connection sets.
func (e *emitter) emitPipeline(p *dtsx.Node) {
	res := lineage.Analyze(p, e.sess.Registry)
	e.sess.Diagnostics.Add(res.Diagnostics...)
	scope := p.NearestName()

	e.w.Line("var rowCount int")
	e.w.Line("_ = rowCount")

	counted := false
	for _, c := range res.Components {
		e.w.Blank()
		e.w.Comment("%s", c.Name)
		switch c.Role {
		case lineage.RoleSource:
			if e.emitPipelineReader(scope, c, !counted) {
				counted = true
			}
		case lineage.RoleTransform:
			e.emitPipelineTransform(c)
		case lineage.RoleSink:
			e.emitPipelineWriter(scope, c)
		}
	}
	if !counted && len(res.ByRole(lineage.RoleSource)) > 0 {
		e.report(diag.KindReferenceNotFound, p, "no reader of pipeline %q could be connected, rowCount stays 0", scope)
	}
}

// emitPipelineReader reports whether the reader was emitted with a query.
// The table is declared either way so later components can refer to it.
func (e *emitter) emitPipelineReader(scope string, c *lineage.Component, setsRowCount bool) bool {
	e.w.Line("var %s DataTable", c.Table)
	symbol, family, ok := e.connection(c.Node, c.ConnectionID)
	if !ok {
		e.w.Comment("Unable to find connection %s", c.ConnectionID)
		e.w.Line("_ = %s", c.Table)
		return false
	}

	args := []string{"ctx", "db", e.resource(scope+"_ReadPipe", c.Query)}
	positional := strings.EqualFold(family, "OLEDB")
	for _, p := range c.Params {
		if p.Variable == "" {
			e.w.Comment("Unable to find variable for parameter %s", p.Name)
			continue
		}
		name := p.Name
		if positional {
			name = lineage.PositionalName(p.Ordinal)
		}
		args = append(args, fmt.Sprintf("sql.Named(%q, %s)", name, naming.Identifier(p.Variable)))
	}

	e.w.Open("if err := withDB(ctx, %q, %q, func(db *sql.DB) error {", family, symbol)
	e.w.Line("var err error")
	e.w.Line("%s, err = queryTable(%s)", c.Table, strings.Join(args, ", "))
	e.w.Line("return err")
	e.w.dedent()
	e.w.Open("}); err != nil {")
	e.w.Line("return err")
	e.w.Close("}")

	if setsRowCount {
		e.w.Line("rowCount = len(%s)", c.Table)
	}
	return true
}

func (e *emitter) emitPipelineTransform(c *lineage.Component) {
	e.w.Line("var %s DataTable", c.Table)
	for _, col := range c.Outputs {
		goType, _ := lineage.GoType(col.DataType)
		e.w.Comment("column %d: %s %s", col.Ordinal, col.Name, goType)
	}
	e.w.Open("for row := 0; row < rowCount; row++ {")
	if c.Upstream != "" {
		e.w.Comment("transform %s[row] here", c.Upstream)
	}
	e.w.Line("%s = append(%s, make([]any, %d))", c.Table, c.Table, len(c.Outputs))
	e.w.Close("}")
}

func (e *emitter) emitPipelineWriter(scope string, c *lineage.Component) {
	if c.Target == "" {
		e.w.Comment("destination %s names no table", c.Name)
		return
	}
	symbol, family, ok := e.connection(c.Node, c.ConnectionID)
	if !ok {
		e.w.Comment("Unable to find connection %s", c.ConnectionID)
		return
	}

	cols := make([]string, len(c.Inputs))
	params := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		cols[i] = in.Name
		params[i] = "@" + in.Name
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.Target, strings.Join(cols, ", "), strings.Join(params, ", "))

	e.w.Open("if err := withDB(ctx, %q, %q, func(db *sql.DB) error {", family, symbol)
	e.w.Open("for row := 0; row < rowCount; row++ {")
	e.w.Open("if _, err := db.ExecContext(ctx, %s,", e.resource(scope+"_WritePipe", stmt))
	for _, in := range c.Inputs {
		if in.Source == nil {
			e.w.Comment("Unable to find column %s", in.LineageID)
			continue
		}
		e.w.Line("sql.Named(%q, %s[row][%d]),", in.Name, in.Source.Table, in.Source.Ordinal)
	}
	e.w.dedent()
	e.w.Open("); err != nil {")
	e.w.Line("return err")
	e.w.Close("}")
	e.w.Close("}")
	e.w.Line("return nil")
	e.w.dedent()
	e.w.Open("}); err != nil {")
	e.w.Line("return err")
	e.w.Close("}")
}
