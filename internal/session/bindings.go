package session

import (
	"fmt"

	"github.com/leapstack-labs/dessist/internal/naming"
)

// Scope says where a variable binding is declared in generated code.
type Scope int

// Binding scopes.
const (
	// ScopeLocal is a variable declared inside a task function.
	ScopeLocal Scope = iota
	// ScopeGlobal is a package-level variable.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// MarshalYAML writes the scope as its name.
func (s Scope) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads a scope name.
func (s *Scope) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "global":
		*s = ScopeGlobal
	case "local", "":
		*s = ScopeLocal
	default:
		return fmt.Errorf("unknown scope %q", name)
	}
	return nil
}

// Binding records how a package variable is declared in generated code.
type Binding struct {
	// Name is the Go identifier of the variable.
	Name string `yaml:"name"`
	// Qualified is the declared name including its namespace, e.g. User::Counter.
	Qualified   string `yaml:"qualified"`
	Type        string `yaml:"type"`
	Default     string `yaml:"default,omitempty"`
	Scope       Scope  `yaml:"scope"`
	Owner       string `yaml:"owner,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Bindings is the run's variable binding table, keyed by normalized name.
// Entries are only ever added.
type Bindings struct {
	byName map[string]*Binding
	order  []string
}

// NewBindings creates an empty table.
func NewBindings() *Bindings {
	return &Bindings{byName: make(map[string]*Binding)}
}

// Bind adds b unless a binding with the same normalized name exists. It
// returns the binding now in the table and whether b was added.
func (t *Bindings) Bind(b Binding) (Binding, bool) {
	key := naming.NormalizeVariableName(b.Qualified)
	if key == "" {
		key = b.Name
	}
	if existing, ok := t.byName[key]; ok {
		return *existing, false
	}
	stored := b
	t.byName[key] = &stored
	t.order = append(t.order, key)
	return stored, true
}

// Lookup finds a binding by raw or normalized variable name.
func (t *Bindings) Lookup(name string) (Binding, bool) {
	b, ok := t.byName[naming.NormalizeVariableName(name)]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// All returns the bindings in creation order.
func (t *Bindings) All() []Binding {
	out := make([]Binding, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.byName[key])
	}
	return out
}

// Len returns the number of bindings.
func (t *Bindings) Len() int {
	return len(t.order)
}
