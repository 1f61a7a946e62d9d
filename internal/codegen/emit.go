package codegen

import (
	"errors"
	"log/slog"

	"github.com/leapstack-labs/dessist/internal/dag"
	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/session"
)

// ignoredTags are elements that carry nothing translatable.
var ignoredTags = map[string]bool{
	"DTS:DesignTimeProperties":   true,
	"DTS:PackageVariable":        true,
	"DTS:PropertyExpression":     true,
	"DTS:Configuration":          true,
	"DTS:LogProvider":            true,
	"DTS:SelectedLogProviders":   true,
	"DTS:SelectedLogProvider":    true,
	"DTS:PackageParameter":       true,
	"DTS:PackageParameters":      true,
	"DTS:ForEachEnumeratorInner": true,
}

type emitter struct {
	sess   *session.Session
	opts   Options
	logger *slog.Logger
	w      *Writer
	root   *dtsx.Node

	// hoisted marks variables already declared, either at package level
	// or ahead of a loop body.
	hoisted   map[*dtsx.Node]bool
	functions []string
}

func (e *emitter) report(kind diag.Kind, at *dtsx.Node, format string, args ...any) {
	e.sess.Diagnostics.Report(kind, at, format, args...)
}

// emitGlobals declares the package root's variables at package level and
// reserves their names.
func (e *emitter) emitGlobals() {
	for _, c := range e.root.Children {
		if c.Kind() != dtsx.KindVariable {
			continue
		}
		e.emitVariable(c, session.ScopeGlobal)
		e.hoisted[c] = true
	}
}

// emitFunction writes the function of an executable followed by the
// functions of its child executables.
func (e *emitter) emitFunction(n *dtsx.Node) error {
	name := e.sess.Names.FunctionName(n)
	e.functions = append(e.functions, name)
	exec := n.Executable()
	e.logger.Debug("emitting function", "function", name, "type", exec.Kind.String(), "path", n.Path())

	e.w.Blank()
	if n.Description != "" {
		e.w.Comment("%s %s", name, n.Description)
	}
	e.w.Open("func %s(ctx context.Context) error {", name)

	var err error
	switch exec.Kind {
	case dtsx.ExecPackage, dtsx.ExecSequence, dtsx.ExecSQLTask:
		err = e.emitChildren(n)
	case dtsx.ExecForLoop:
		err = e.emitForLoop(n)
	case dtsx.ExecForEachLoop:
		err = e.emitForEachLoop(n)
	case dtsx.ExecPipeline:
		e.emitPipelineTask(n)
	case dtsx.ExecSendMail:
		e.emitSendMail(n.Descend(dtsx.TagObjectData, dtsx.TagSendMailTaskData), n)
	case dtsx.ExecScriptTask:
		e.emitScriptTask(n)
	default:
		e.report(diag.KindUnrecognizedConstruct, n, "unsupported task type %q", exec.Raw)
		e.w.Comment("unsupported task type %s", exec.Raw)
	}
	if err != nil {
		return err
	}

	e.w.Line("return nil")
	e.w.Close("}")

	for _, c := range n.Children {
		if c.Kind() != dtsx.KindExecutable {
			continue
		}
		if err := e.emitFunction(c); err != nil {
			return err
		}
	}
	return nil
}

// emitChildren writes the children of a container in precedence order.
// Only a structural cycle is returned; every other problem is reported.
func (e *emitter) emitChildren(container *dtsx.Node) error {
	plan, err := dag.Resolve(container, dag.Options{MaxSteps: e.opts.MaxSteps})
	if err != nil {
		if errors.Is(err, diag.ErrStructuralCycle) {
			return err
		}
		e.report(diag.KindUnrecognizedConstruct, container, "%v", err)
		e.w.Comment("precedence constraints not expanded: %v", err)
		return nil
	}
	e.sess.Diagnostics.Add(plan.Diagnostics...)

	if len(plan.Roots) == 0 {
		return nil
	}
	e.w.Comment("These calls have no dependencies")
	for _, step := range plan.Roots {
		e.emitStep(step)
	}
	return nil
}

// emitStep writes a child, then every step its outgoing edges trigger.
func (e *emitter) emitStep(s *dag.Step) {
	e.emitChild(s.Node)
	for _, next := range s.Next {
		e.w.Blank()
		e.w.Comment("%s", next.Via.String())
		if next.Via.Guard == "" {
			e.emitStep(next)
			continue
		}
		e.w.Open("if %s {", FixExpression(next.Via.Guard))
		e.emitStep(next)
		e.w.Close("}")
	}
}

// emitChild writes the code for one child of a container.
func (e *emitter) emitChild(c *dtsx.Node) {
	if c.Kind() == dtsx.KindObjectData {
		c = c.FirstChild()
		if c == nil {
			return
		}
	}

	switch c.Kind() {
	case dtsx.KindVariable:
		if !e.hoisted[c] {
			e.emitVariable(c, session.ScopeLocal)
		}
	case dtsx.KindExecutable:
		e.w.Open("if err := %s(ctx); err != nil {", e.sess.Names.FunctionName(c))
		e.w.Line("return err")
		e.w.Close("}")
	case dtsx.KindSQLTaskData:
		e.emitSQLStatement(c)
	case dtsx.KindPipeline:
		e.emitPipeline(c)
	case dtsx.KindSendMailTaskData:
		e.emitSendMail(c, c.Parent)
	case dtsx.KindPrecedenceConstraint,
		dtsx.KindLoggingOptions,
		dtsx.KindForEachVariableMapping,
		dtsx.KindForEachEnumerator,
		dtsx.KindConnectionManager:
		// Handled elsewhere or nothing to translate.
	case dtsx.KindEventHandler:
		e.report(diag.KindUnrecognizedConstruct, c, "event handlers are not translated")
		e.w.Comment("event handler %s not translated", c.Label())
	default:
		if ignoredTags[c.TypeTag] {
			return
		}
		e.report(diag.KindUnrecognizedConstruct, c, "unsupported element %s", c.TypeTag)
	}
}
