package project

import (
	"strings"

	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/registry"
)

// DefaultFamilies maps connection families to the database/sql driver the
// generated runtime opens for them.
var DefaultFamilies = map[string]string{
	"OLEDB":   "sqlserver",
	"ADO.NET": "sqlserver",
	"ODBC":    "odbc",
}

// Setting is one connection string of a generated project.
type Setting struct {
	Name   string
	Family string
	Value  string
}

// Connections resolves connection manager identifiers for the code emitter
// and collects the settings file of the generated project.
type Connections struct {
	reg      *registry.IdentityRegistry
	families map[string]string
}

// NewConnections creates a resolver over reg. Families map connection
// families to driver names; nil selects DefaultFamilies.
func NewConnections(reg *registry.IdentityRegistry, families map[string]string) *Connections {
	if families == nil {
		families = DefaultFamilies
	}
	return &Connections{reg: reg, families: families}
}

// ConnectionSymbol returns the settings key of a connection manager, which
// is its display name.
func (c *Connections) ConnectionSymbol(id string) (string, error) {
	n, err := c.reg.GetByIdentifier(id)
	if err != nil {
		return "", err
	}
	return symbol(n), nil
}

// ConnectionFamily returns the family of a connection manager, the part of
// its creation name before any colon. It is empty when id does not resolve.
func (c *Connections) ConnectionFamily(id string) string {
	n, err := c.reg.GetByIdentifier(id)
	if err != nil {
		return ""
	}
	return Family(n)
}

// Drivers returns the family to driver table for the runtime.
func (c *Connections) Drivers() map[string]string {
	out := make(map[string]string, len(c.families))
	for k, v := range c.families {
		out[k] = v
	}
	return out
}

// Settings returns one setting per connection manager under root, in
// document order.
func (c *Connections) Settings(root *dtsx.Node) []Setting {
	var out []Setting
	seen := make(map[string]bool)
	root.Walk(func(n *dtsx.Node) bool {
		if n.Kind() != dtsx.KindConnectionManager || !n.HasID() {
			return true
		}
		name := symbol(n)
		if !seen[name] {
			seen[name] = true
			out = append(out, Setting{Name: name, Family: Family(n), Value: ConnectionString(n)})
		}
		return false
	})
	return out
}

// Family returns the connection family of a connection manager node.
func Family(cm *dtsx.Node) string {
	family, _, _ := strings.Cut(cm.Property("CreationName"), ":")
	return strings.TrimSpace(family)
}

// ConnectionString reads the connection string of a connection manager from
// the manager itself or from the element inside its object data.
func ConnectionString(cm *dtsx.Node) string {
	if s := cm.Property("ConnectionString"); s != "" {
		return s
	}
	inner := cm.Descend(dtsx.TagObjectData).FirstChild()
	if s := inner.Property("ConnectionString"); s != "" {
		return s
	}
	return inner.Attr("ConnectionString")
}

func symbol(n *dtsx.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.String()
}
