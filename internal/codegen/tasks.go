package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/naming"
	"github.com/leapstack-labs/dessist/internal/session"
)

// =============================================================================
// Loops
// =============================================================================

func loopExpression(n *dtsx.Node, key string) string {
	return FixExpression(html.UnescapeString(n.Property(key)))
}

func (e *emitter) emitForLoop(n *dtsx.Node) error {
	start := loopExpression(n, "InitExpression")
	cond := loopExpression(n, "EvalExpression")
	post := loopExpression(n, "AssignExpression")

	e.w.Open("for %s; %s; %s {", start, cond, post)
	if err := e.emitChildren(n); err != nil {
		return err
	}
	e.w.Close("}")
	return nil
}

func (e *emitter) emitForEachLoop(n *dtsx.Node) error {
	enumerator := n.FindChildByType(dtsx.TagForEachEnumerator)
	data := enumerator.Descend(dtsx.TagObjectData).FirstChild()
	if data == nil || data.TypeTag != "FEEADO" {
		kind := "missing"
		if data != nil {
			kind = data.TypeTag
		}
		e.report(diag.KindUnrecognizedConstruct, n, "foreach enumerator %s is not supported", kind)
		e.w.Comment("unsupported foreach enumerator %s", kind)
		return nil
	}

	table := naming.Identifier(data.Attr("VarName"))
	e.w.Open("for _, iter := range %s {", table)

	// Loop variables are declared first so the mappings can see their types.
	for _, c := range n.Children {
		if c.Kind() == dtsx.KindVariable {
			e.emitVariable(c, session.ScopeLocal)
			e.hoisted[c] = true
		}
	}
	mappings := n.FindChildrenByType(dtsx.TagForEachVariableMapping)
	for _, m := range mappings {
		e.emitVariableMapping(m)
	}
	if len(mappings) == 0 {
		e.w.Line("_ = iter")
	}
	e.w.Blank()

	if err := e.emitChildren(n); err != nil {
		return err
	}
	e.w.Close("}")
	return nil
}

func (e *emitter) emitVariableMapping(m *dtsx.Node) {
	raw := m.Property("VariableName")
	index := m.Property("ValueIndex")
	if _, err := strconv.Atoi(index); err != nil {
		e.report(diag.KindUnrecognizedConstruct, m, "variable mapping for %s has no valid index %q", raw, index)
		e.w.Comment("Unable to map %s: bad index %q", raw, index)
		return
	}
	b, ok := e.sess.Bindings.Lookup(raw)
	if !ok {
		e.report(diag.KindReferenceNotFound, m, "variable mapping refers to undeclared variable %s", raw)
		e.w.Comment("Unable to map %s: variable not declared", raw)
		return
	}
	e.w.Line("%s = cast[%s](iter[%s])", b.Name, b.Type, index)
}

// =============================================================================
// SQL task
// =============================================================================

// connection resolves the setting and family of a connection manager. It
// reports and returns ok false when the connection cannot be found.
func (e *emitter) connection(at *dtsx.Node, id string) (symbol, family string, ok bool) {
	if e.opts.Connections == nil {
		e.report(diag.KindReferenceNotFound, at, "no connection resolver for connection %s", id)
		return "", "", false
	}
	symbol, err := e.opts.Connections.ConnectionSymbol(id)
	if err != nil {
		e.sess.Diagnostics.Add(diag.FromError(err, at))
		return "", "", false
	}
	return symbol, e.opts.Connections.ConnectionFamily(id), true
}

// resource stores text with the resource writer and returns the Go
// expression that reads it back.
func (e *emitter) resource(scope, text string) string {
	if e.opts.Resources == nil {
		return strconv.Quote(text)
	}
	return fmt.Sprintf("resources[%q]", e.opts.Resources.AddTextResource(scope, text))
}

func (e *emitter) emitSQLStatement(data *dtsx.Node) {
	connID := data.Attr("SQLTask:Connection")
	symbol, family, ok := e.connection(data, connID)
	if !ok {
		e.w.Comment("Unable to find connection %s", connID)
		return
	}
	stmt := e.resource(data.NearestName(), data.Attr("SQLTask:SqlStatementSource"))
	singleRow := data.Attr("SQLTask:ResultType") == "ResultSetType_SingleRow"

	args := []string{"ctx", "db", stmt}
	for _, p := range data.FindChildrenByType(dtsx.TagSQLParameterBinding) {
		args = append(args, fmt.Sprintf("sql.Named(%q, %s)",
			p.Attr("SQLTask:ParameterName"), naming.Identifier(p.Attr("SQLTask:DtsVariableName"))))
	}

	query := "queryTable"
	if singleRow {
		e.w.Line("var result any")
		query = "queryScalar"
	} else {
		e.w.Line("var result DataTable")
	}
	e.w.Open("if err := withDB(ctx, %q, %q, func(db *sql.DB) error {", family, symbol)
	e.w.Line("var err error")
	e.w.Line("result, err = %s(%s)", query, strings.Join(args, ", "))
	e.w.Line("return err")
	e.w.dedent()
	e.w.Open("}); err != nil {")
	e.w.Line("return err")
	e.w.Close("}")

	binding := data.FindChildByType(dtsx.TagSQLResultBinding)
	if binding == nil {
		e.w.Line("_ = result")
		return
	}
	raw := binding.Attr("SQLTask:DtsVariableName")
	b, ok := e.sess.Bindings.Lookup(raw)
	e.w.Blank()
	if !ok {
		e.report(diag.KindReferenceNotFound, binding, "result binding refers to undeclared variable %s", raw)
		e.w.Comment("Unable to bind results to %s", raw)
		e.w.Line("_ = result")
		return
	}
	e.w.Comment("Bind results to %s", raw)
	if b.Type == "DataTable" && !singleRow {
		e.w.Line("%s = result", b.Name)
	} else {
		e.w.Line("%s = cast[%s](result)", b.Name, b.Type)
	}
}

// =============================================================================
// Send mail task
// =============================================================================

func addressList(raw string) string {
	var quoted []string
	for _, addr := range strings.Split(raw, ";") {
		if addr = strings.TrimSpace(addr); addr != "" {
			quoted = append(quoted, strconv.Quote(addr))
		}
	}
	if len(quoted) == 0 {
		return ""
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func (e *emitter) emitSendMail(mail, task *dtsx.Node) {
	if mail == nil {
		e.report(diag.KindUnrecognizedConstruct, task, "send mail task has no mail data")
		e.w.Comment("send mail task has no mail data")
		return
	}

	serverID := mail.Attr("SendMailTask:SMTPServer")
	server, err := e.sess.Registry.GetByIdentifier(serverID)
	if err != nil {
		e.sess.Diagnostics.Add(diag.FromError(err, task))
		e.w.Comment("Unable to find SMTP connection %s", serverID)
		return
	}

	var body string
	source := mail.Attr("SendMailTask:MessageSource")
	switch mail.Attr("SendMailTask:MessageSourceType") {
	case "Variable":
		body = naming.Identifier(source)
	case "DirectInput":
		body = strconv.Quote(source)
	default:
		e.report(diag.KindUnrecognizedConstruct, task, "unsupported mail message source type %q",
			mail.Attr("SendMailTask:MessageSourceType"))
		body = `""`
	}

	e.w.Open("if err := sendMail(ctx, %q, mailMessage{", server.Name)
	e.w.Line("From:    %q,", mail.Attr("SendMailTask:From"))
	for _, field := range []struct{ name, attr string }{
		{"To", "SendMailTask:To"},
		{"CC", "SendMailTask:CC"},
		{"BCC", "SendMailTask:BCC"},
	} {
		if list := addressList(mail.Attr(field.attr)); list != "" {
			e.w.Line("%s: %s,", field.name, list)
		}
	}
	e.w.Line("Subject: %q,", mail.Attr("SendMailTask:Subject"))
	e.w.Line("Body:    %s,", body)
	e.w.dedent()
	e.w.Open("}); err != nil {")
	e.w.Line("return err")
	e.w.Close("}")
}

// =============================================================================
// Script task
// =============================================================================

func (e *emitter) emitScriptTask(n *dtsx.Node) {
	if e.opts.Scripts == nil {
		e.report(diag.KindUnrecognizedConstruct, n, "script task not exported")
		e.w.Comment("script task not exported")
		return
	}
	if err := e.opts.Scripts.EmitScriptProject(n, e.w); err != nil {
		e.report(diag.KindUnrecognizedConstruct, n, "failed to export script project: %v", err)
		e.w.Comment("script project not exported")
	}
}
