// Package dtsx holds the in-memory object model of an SSIS package: a tree of
// typed nodes with attributes, properties and document-ordered children.
//
// The tree is built once by the parser and is read-only afterwards, except
// for identity registration which happens as identifiers are assigned.
package dtsx

import (
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/dessist/internal/diag"
)

// UnnamedName is returned by NearestName when no ancestor carries a name.
const UnnamedName = "Unnamed"

// Special property keys routed to dedicated node fields.
const (
	PropObjectName  = "ObjectName"
	PropDTSID       = "DTSID"
	PropDescription = "Description"
)

// Registrar records a node under its identifier. It is implemented by the
// per-run identity registry.
type Registrar interface {
	Register(id uuid.UUID, n *Node)
}

// Node is one element of a package document.
type Node struct {
	// TypeTag is the qualified element name, e.g. "DTS:Executable".
	TypeTag string
	// Name is the display name (ObjectName property), empty when absent.
	Name string
	// ID is the DTSID of the node, uuid.Nil when absent.
	ID          uuid.UUID
	Description string
	Attributes  map[string]string
	Properties  map[string]string
	// Content is the element text.
	Content  string
	Children []*Node
	// Parent is a non-owning back reference, nil for the root.
	Parent *Node
}

// NewNode creates a detached node with the given type tag.
func NewNode(tag string) *Node {
	return &Node{
		TypeTag:    tag,
		Attributes: make(map[string]string),
		Properties: make(map[string]string),
	}
}

// AddChild appends c to the children of n and sets its parent.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// HasID reports whether the node carries an identifier.
func (n *Node) HasID() bool {
	return n != nil && n.ID != uuid.Nil
}

// SetProperty assigns a declared field. ObjectName, DTSID and Description go
// to dedicated fields, everything else into Properties. A DTSID is parsed and
// registered with reg; when it does not parse the node keeps no identifier
// and an IdentifierError is returned.
func (n *Node) SetProperty(reg Registrar, key, value string) error {
	switch key {
	case PropObjectName:
		n.Name = value
	case PropDescription:
		n.Description = value
	case PropDTSID:
		id, err := ParseID(value)
		if err != nil {
			return err
		}
		n.ID = id
		if reg != nil {
			reg.Register(id, n)
		}
	default:
		n.Properties[key] = value
	}
	return nil
}

// ParseID parses identifier text in either braced or bare form.
func ParseID(s string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(s)
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, &diag.IdentifierError{Value: s, Err: err}
	}
	return id, nil
}

// Attr returns an attribute value, empty when absent.
func (n *Node) Attr(key string) string {
	if n == nil {
		return ""
	}
	return n.Attributes[key]
}

// Property returns a property value, empty when absent.
func (n *Node) Property(key string) string {
	if n == nil {
		return ""
	}
	return n.Properties[key]
}

// =============================================================================
// Lookups
// =============================================================================

// FindChildByType returns the first child with the given tag, or nil.
func (n *Node) FindChildByType(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.TypeTag == tag {
			return c
		}
	}
	return nil
}

// FindChildByTypeAndAttribute returns the first child with the given tag
// whose attribute key equals value, or nil.
func (n *Node) FindChildByTypeAndAttribute(tag, key, value string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.TypeTag == tag && c.Attributes[key] == value {
			return c
		}
	}
	return nil
}

// FindChildrenByAttribute returns every child whose attribute key equals
// value, in document order.
func (n *Node) FindChildrenByAttribute(key, value string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if v, ok := c.Attributes[key]; ok && v == value {
			out = append(out, c)
		}
	}
	return out
}

// FindChildrenByType returns every child with the given tag, in document order.
func (n *Node) FindChildrenByType(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.TypeTag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Descend follows FindChildByType through each tag in turn and returns nil as
// soon as a step is missing.
func (n *Node) Descend(tags ...string) *Node {
	cur := n
	for _, tag := range tags {
		cur = cur.FindChildByType(tag)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// ChildNodes returns the children of n, or nil when n is nil.
func (n *Node) ChildNodes() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Root returns the top of the tree containing n.
func (n *Node) Root() *Node {
	cur := n
	for cur != nil && cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// =============================================================================
// Ancestry
// =============================================================================

// NearestNamed returns n or its closest ancestor carrying a name, or nil.
func (n *Node) NearestNamed() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Name != "" {
			return cur
		}
	}
	return nil
}

// NearestName returns the name of the closest named node at or above n.
func (n *Node) NearestName() string {
	if named := n.NearestNamed(); named != nil {
		return named.Name
	}
	return UnnamedName
}

// NearestID returns the closest identifier at or above n, empty when none.
func (n *Node) NearestID() string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.HasID() {
			return cur.ID.String()
		}
	}
	return ""
}

// Path joins the names of n and its named ancestors from the root down.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Name != "" {
			parts = append(parts, cur.Name)
		}
	}
	if len(parts) == 0 {
		return UnnamedName
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, `\`)
}

// Label names the node for comments: its name, or its tag and name attribute
// when it has no name of its own.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	if n.Name != "" {
		return n.Name
	}
	if v := n.Attributes["name"]; v != "" {
		return v
	}
	return n.TypeTag
}
