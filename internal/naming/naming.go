// Package naming issues the identifiers used in generated code: function
// names for tasks, folder names for nested projects, resource keys, and
// normalized variable names.
//
// Names are unique within a Service and depend on first-call order. A
// Service belongs to one conversion run and is discarded with it.
package naming

import (
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dessist/internal/dtsx"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// predeclared holds Go identifiers a generated function must not shadow.
var predeclared = []string{
	"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
	"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
	"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"true", "false", "iota", "nil",
	"append", "cap", "clear", "close", "complex", "copy", "delete", "imag",
	"len", "make", "max", "min", "new", "panic", "print", "println", "real",
	"recover", "main", "init",
}

// Service issues unique names for one run.
type Service struct {
	functions *nameSet
	folders   *nameSet
	resources *nameSet

	functionMemo map[*dtsx.Node]string
	folderMemo   map[*dtsx.Node]string
}

// NewService creates a Service. Reserved names are treated as already issued
// function names, so generated helpers never collide with task functions.
func NewService(reserved ...string) *Service {
	s := &Service{
		functions:    newNameSet(),
		folders:      newNameSet(),
		resources:    newNameSet(),
		functionMemo: make(map[*dtsx.Node]string),
		folderMemo:   make(map[*dtsx.Node]string),
	}
	for _, name := range predeclared {
		s.functions.add(name)
	}
	for _, name := range reserved {
		s.functions.add(name)
	}
	return s
}

// FunctionName returns the function name for n, derived from the nearest
// named ancestor. Characters outside [A-Za-z0-9] become underscores and a
// numeric suffix keeps the name unique. Repeated calls return the same name.
func (s *Service) FunctionName(n *dtsx.Node) string {
	if name, ok := s.functionMemo[n]; ok {
		return name
	}
	name := s.functions.issue(goSafe(nonAlnum.ReplaceAllString(n.NearestName(), "_"), "Task_"))
	s.functionMemo[n] = name
	return name
}

// FolderName returns the folder name for n. It follows FunctionName but
// removes separators and draws from its own set.
func (s *Service) FolderName(n *dtsx.Node) string {
	if name, ok := s.folderMemo[n]; ok {
		return name
	}
	base := nonAlnum.ReplaceAllString(n.NearestName(), "")
	if base == "" {
		base = dtsx.UnnamedName
	}
	name := s.folders.issue(base)
	s.folderMemo[n] = name
	return name
}

// ResourceName returns a unique resource key for scope.
func (s *Service) ResourceName(scope string) string {
	base := nonAlnum.ReplaceAllString(scope, "_")
	if base == "" {
		base = "resource"
	}
	return s.resources.issue(base)
}

// Reserve marks names as issued function names, typically package-level
// variables declared before any task function is named.
func (s *Service) Reserve(names ...string) {
	for _, name := range names {
		s.functions.add(name)
	}
}

// IssuedFunctions returns how many function names have been issued,
// reserved names excluded.
func (s *Service) IssuedFunctions() int {
	return len(s.functionMemo)
}

// NormalizeVariableName strips everything up to and including the first
// "::". A name starting with "::" has no namespace and is kept as is.
//
//	NormalizeVariableName("User::Counter") // "Counter"
func NormalizeVariableName(raw string) string {
	if i := strings.Index(raw, "::"); i > 0 {
		return raw[i+2:]
	}
	return raw
}

// Identifier turns a variable name into a Go identifier.
func Identifier(raw string) string {
	return goSafe(nonAlnum.ReplaceAllString(NormalizeVariableName(raw), "_"), "Var_")
}

// goSafe makes a sanitized name usable as a Go identifier.
func goSafe(name, prefix string) string {
	switch {
	case name == "":
		return prefix + dtsx.UnnamedName
	case name[0] >= '0' && name[0] <= '9':
		return prefix + name
	case token.IsKeyword(name):
		return name + "_"
	}
	return name
}

// nameSet hands out names unique within the set.
type nameSet struct {
	issued map[string]struct{}
}

func newNameSet() *nameSet {
	return &nameSet{issued: make(map[string]struct{})}
}

func (ns *nameSet) add(name string) {
	ns.issued[name] = struct{}{}
}

func (ns *nameSet) has(name string) bool {
	_, ok := ns.issued[name]
	return ok
}

// issue returns base, or base_1, base_2, ... for the first unused variant.
func (ns *nameSet) issue(base string) string {
	name := base
	for i := 1; ns.has(name); i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	ns.add(name)
	return name
}
