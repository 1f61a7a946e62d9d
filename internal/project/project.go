// Package project assembles the Go module generated for one SSIS package.
//
// The code emitter only produces the task functions. This package supplies
// the collaborators it writes through (resource store, connection resolver,
// script exporter) and turns their contents into the remaining files of a
// buildable module:
//
//	<name>.go       task functions and package variables
//	main.go         entry point calling the package function (package main only)
//	runtime.go      database, mail and conversion helpers
//	resources.go    SQL text keyed by resource name
//	settings.go     connection strings keyed by connection manager
//	go.mod
//	bindings.yaml   variable binding table
//	scripts/...     exported script task sources
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dessist/internal/codegen"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/session"
)

// DefaultGoVersion is written to the go.mod of generated projects.
const DefaultGoVersion = "1.24"

// ErrNotGenerated is returned when files are requested before code
// generation ran.
var ErrNotGenerated = errors.New("project has no generated source")

// File is one file of a generated project, with a slash-separated path
// relative to the project directory.
type File struct {
	Path string
	Data []byte
}

// Options configures a project.
type Options struct {
	// Module is the module path of the generated go.mod, the folder name of
	// the package when empty.
	Module string
	// PackageName is the Go package clause, "main" when empty.
	PackageName string
	// Families maps connection families to driver names.
	Families map[string]string
	MaxSteps int
}

// Project collects everything generated for one package.
type Project struct {
	Name        string
	Module      string
	PackageName string

	Resources   *ResourceStore
	Connections *Connections
	Scripts     *ScriptExporter
	Result      *codegen.Result

	sess     *session.Session
	root     *dtsx.Node
	maxSteps int
}

// New creates a project for the package rooted at root, drawing names from
// the run's session.
func New(sess *session.Session, root *dtsx.Node, opts Options) *Project {
	pkg := opts.PackageName
	if pkg == "" {
		pkg = "main"
	}
	name := sess.Names.FolderName(root)
	module := opts.Module
	if module == "" {
		module = strings.ToLower(name)
	}
	return &Project{
		Name:        name,
		Module:      module,
		PackageName: pkg,
		Resources:   NewResourceStore(sess.Names),
		Connections: NewConnections(sess.Registry, opts.Families),
		Scripts:     NewScriptExporter(sess.Names),
		sess:        sess,
		root:        root,
		maxSteps:    opts.MaxSteps,
	}
}

// CodegenOptions returns emitter options wired to the project's
// collaborators.
func (p *Project) CodegenOptions() codegen.Options {
	return codegen.Options{
		PackageName: p.PackageName,
		Resources:   p.Resources,
		Connections: p.Connections,
		Scripts:     p.Scripts,
		MaxSteps:    p.maxSteps,
	}
}

// Generate runs the code emitter and keeps its result.
func (p *Project) Generate(opts codegen.Options) (*codegen.Result, error) {
	res, err := codegen.Generate(p.sess, p.root, opts)
	if err != nil {
		return nil, err
	}
	p.Result = res
	return res, nil
}

// Files renders every file of the project in a stable order.
func (p *Project) Files() ([]File, error) {
	if p.Result == nil {
		return nil, ErrNotGenerated
	}

	type rendered struct {
		path   string
		render func() []byte
	}
	var support []rendered
	if p.PackageName == "main" {
		support = append(support, rendered{"main.go", p.mainFile})
	}
	support = append(support,
		rendered{"runtime.go", p.runtimeFile},
		rendered{"resources.go", p.resourcesFile},
		rendered{"settings.go", p.settingsFile},
	)

	files := []File{{Path: p.Name + ".go", Data: p.Result.Source}}
	for _, f := range support {
		src, err := codegen.Format(f.path, f.render())
		if err != nil {
			return nil, fmt.Errorf("failed to format %s: %w", f.path, err)
		}
		files = append(files, File{Path: f.path, Data: src})
	}

	files = append(files, File{Path: "go.mod", Data: p.goMod()})
	manifest, err := p.bindingsFile()
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "bindings.yaml", Data: manifest})
	files = append(files, p.Scripts.Files()...)
	return files, nil
}

// Write stores the project files under dir, which may be any URL afs
// understands. It returns the URLs written.
func (p *Project) Write(ctx context.Context, fs afs.Service, dir string) ([]string, error) {
	files, err := p.Files()
	if err != nil {
		return nil, err
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		target := url.Join(dir, f.Path)
		if err := fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(f.Data)); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

// =============================================================================
// Rendered files
// =============================================================================

func (p *Project) header(w *codegen.Writer) {
	w.Line("// Code generated by dessist from %q. DO NOT EDIT.", p.root.NearestName())
	w.Blank()
	w.Line("package %s", p.PackageName)
}

func (p *Project) mainFile() []byte {
	w := codegen.NewWriter()
	p.header(w)
	w.Blank()
	w.Open("import (")
	w.Line(`"context"`)
	w.Line(`"fmt"`)
	w.Line(`"os"`)
	w.Close(")")
	w.Blank()
	w.Open("func main() {")
	w.Open("if err := %s(context.Background()); err != nil {", p.Result.Entry)
	w.Line("fmt.Fprintln(os.Stderr, err)")
	w.Line("os.Exit(1)")
	w.Close("}")
	w.Close("}")
	return w.Bytes()
}

func (p *Project) runtimeFile() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by dessist from %q. DO NOT EDIT.\n\n", p.root.NearestName())
	fmt.Fprintf(&sb, runtimeSource, p.PackageName)

	w := codegen.NewWriter()
	w.Blank()
	w.Comment("drivers maps connection families to database/sql driver names. The")
	w.Comment("drivers themselves are registered by importing them in main.go.")
	w.Open("var drivers = map[string]string{")
	drivers := p.Connections.Drivers()
	for _, family := range sortedKeys(drivers) {
		w.Line("%q: %q,", family, drivers[family])
	}
	w.Close("}")
	sb.WriteString(w.String())
	return []byte(sb.String())
}

func (p *Project) resourcesFile() []byte {
	w := codegen.NewWriter()
	p.header(w)
	w.Blank()
	w.Comment("resources holds the SQL text of the package, keyed by resource name.")
	w.Open("var resources = map[string]string{")
	for _, r := range p.Resources.Resources() {
		w.Line("%q: %s,", r.Key, stringLiteral(r.Text))
	}
	w.Close("}")
	return w.Bytes()
}

func (p *Project) settingsFile() []byte {
	w := codegen.NewWriter()
	p.header(w)
	w.Blank()
	w.Comment("settings holds the connection strings of the package, keyed by")
	w.Comment("connection manager name.")
	w.Open("var settings = map[string]string{")
	for _, s := range p.Connections.Settings(p.root) {
		w.Line("%q: %q,", s.Name, s.Value)
	}
	w.Close("}")
	return w.Bytes()
}

func (p *Project) goMod() []byte {
	return []byte(fmt.Sprintf("module %s\n\ngo %s\n", p.Module, DefaultGoVersion))
}

// Manifest is the content of bindings.yaml.
type Manifest struct {
	Package   string            `yaml:"package"`
	Entry     string            `yaml:"entry"`
	Functions []string          `yaml:"functions"`
	Bindings  []session.Binding `yaml:"bindings"`
}

func (p *Project) bindingsFile() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(Manifest{
		Package:   p.root.NearestName(),
		Entry:     p.Result.Entry,
		Functions: p.Result.Functions,
		Bindings:  p.Result.Bindings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bindings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode bindings: %w", err)
	}
	return buf.Bytes(), nil
}

// stringLiteral prefers a raw string so multi-line SQL stays readable.
func stringLiteral(s string) string {
	if strings.Contains(s, "`") || strings.Contains(s, "\r") {
		return strconv.Quote(s)
	}
	return "`" + s + "`"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
