// Package codegen turns a parsed package into Go source.
//
// Every executable becomes a function of the form
//
//	func Name(ctx context.Context) error
//
// whose body runs the executable's children in precedence order. Package
// variables become package-level vars, container variables become locals.
// Pipelines are lowered to reads into in-memory tables followed by
// parameterized inserts, with column lineage resolved by package lineage.
//
// SQL text, connections and script projects are handed to collaborators so
// the generated function bodies only hold symbols.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/tools/imports"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/session"
)

// RuntimeNames are the identifiers the generated runtime declares. No task
// function or variable may take one of these names.
var RuntimeNames = []string{
	"DataTable", "withDB", "queryTable", "queryScalar", "cast", "sendMail",
	"mailMessage", "resources", "settings", "drivers", "rowCount", "result",
}

// ResourceWriter stores text outside the generated code and returns the key
// under which the generated code finds it.
type ResourceWriter interface {
	AddTextResource(scope, text string) string
}

// ConnectionResolver maps a connection manager identifier to the setting
// that holds its connection string and to its connection family
// (OLEDB, ADO.NET, ...).
type ConnectionResolver interface {
	ConnectionSymbol(id string) (string, error)
	ConnectionFamily(id string) string
}

// ScriptWriter exports the project of a script task and writes whatever the
// task function should contain.
type ScriptWriter interface {
	EmitScriptProject(task *dtsx.Node, w *Writer) error
}

// Options configures Generate.
type Options struct {
	// PackageName is the Go package clause, "main" when empty.
	PackageName string
	Resources   ResourceWriter
	Connections ConnectionResolver
	Scripts     ScriptWriter
	// MaxSteps bounds precedence expansion per container.
	MaxSteps int
	Logger   *slog.Logger
}

// Result is the generated source of one package.
type Result struct {
	// Source is the formatted file. When formatting fails it holds the
	// unformatted text and Diagnostics carries a format entry.
	Source []byte
	// Entry is the function of the package root.
	Entry string
	// Functions lists every generated task function in emission order.
	Functions   []string
	Bindings    []session.Binding
	Diagnostics []diag.Diagnostic
}

// ErrNoRoot is returned when Generate is given no package.
var ErrNoRoot = errors.New("no package root to generate")

// Generate emits the Go source for the package rooted at root. Diagnostics
// are reported to the session's sink and copied into the result. A
// precedence cycle aborts generation with a *diag.CycleError.
func Generate(sess *session.Session, root *dtsx.Node, opts Options) (*Result, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pkg := opts.PackageName
	if pkg == "" {
		pkg = "main"
	}

	sess.Names.Reserve(RuntimeNames...)
	e := &emitter{
		sess:    sess,
		opts:    opts,
		logger:  logger,
		w:       NewWriter(),
		root:    root,
		hoisted: make(map[*dtsx.Node]bool),
	}

	e.w.Line("// Code generated by dessist from %q. DO NOT EDIT.", root.NearestName())
	e.w.Blank()
	e.w.Line("package %s", pkg)
	e.w.Blank()
	e.w.Open("import (")
	for _, path := range []string{"context", "database/sql", "time"} {
		e.w.Line("%q", path)
	}
	e.w.Close(")")

	e.emitGlobals()
	if err := e.emitFunction(root); err != nil {
		return nil, err
	}

	res := &Result{
		Entry:     sess.Names.FunctionName(root),
		Functions: e.functions,
		Bindings:  sess.Bindings.All(),
	}

	raw := e.w.Bytes()
	formatted, err := Format(root.NearestName()+".go", raw)
	if err != nil {
		logger.Debug("generated source does not format", "package", root.NearestName(), "error", err)
		sess.Diagnostics.Add(diag.New(diag.KindFormat, root, "%v", fmt.Errorf("%w: %v", diag.ErrFormat, err)))
		res.Source = raw
	} else {
		res.Source = formatted
	}

	res.Diagnostics = sess.Diagnostics.Items()
	logger.Debug("generated package",
		"package", root.NearestName(),
		"functions", len(res.Functions),
		"bindings", len(res.Bindings),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

// Format gofmts src and prunes unused imports.
func Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
}
