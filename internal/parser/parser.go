// Package parser reads SSIS package documents (.dtsx) into dtsx node trees.
//
// Both the 2008 layout, where fields are DTS:Property child elements, and the
// 2012+ layout, where fields are DTS:-prefixed attributes, are accepted.
// Declared fields are assigned through Node.SetProperty so identifiers are
// registered as they are read.
package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// ErrEmptyDocument is returned when a document has no root element.
var ErrEmptyDocument = errors.New("package document has no root element")

// Registry receives identifiers and refIds as nodes are read.
type Registry interface {
	Register(id uuid.UUID, n *dtsx.Node)
	RegisterRef(ref string, n *dtsx.Node)
}

// Result is a parsed package document.
type Result struct {
	Root *dtsx.Node
	// Nodes counts the nodes in the tree.
	Nodes int
	// Diagnostics holds malformed identifiers met while reading. The nodes
	// concerned are kept without an identifier.
	Diagnostics []diag.Diagnostic
}

// ParseBytes parses a package document held in memory.
func ParseBytes(data []byte, reg Registry) (*Result, error) {
	return Parse(bytes.NewReader(data), reg)
}

// Parse reads a package document. UTF-8 and UTF-16 input with or without a
// byte order mark is accepted.
func Parse(r io.Reader, reg Registry) (*Result, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	dec := xml.NewDecoder(decoded)
	// Input is already UTF-8 at this point, whatever the prolog declares.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	b := &builder{reg: reg}
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse package document: %w", err)
		}
		b.token(tok)
	}
	if b.root == nil {
		return nil, ErrEmptyDocument
	}
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("failed to parse package document: %d unclosed elements", len(b.stack))
	}
	return &Result{Root: b.root, Nodes: b.count, Diagnostics: b.diags}, nil
}

// frame is one open element. Exactly one of node and property is set, or
// neither for grouping elements that are flattened into their parent.
type frame struct {
	node     *dtsx.Node
	property string
	text     strings.Builder
	// skip counts nested elements inside a property, which are ignored.
	skip int
}

type builder struct {
	reg   Registry
	root  *dtsx.Node
	stack []*frame
	count int
	diags []diag.Diagnostic
}

// current returns the innermost open node.
func (b *builder) current() *dtsx.Node {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].node != nil {
			return b.stack[i].node
		}
	}
	return nil
}

func (b *builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) token(tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		b.start(t)
	case xml.EndElement:
		b.end()
	case xml.CharData:
		if f := b.top(); f != nil && f.skip == 0 {
			f.text.Write(t)
		}
	}
}

func (b *builder) start(el xml.StartElement) {
	if f := b.top(); f != nil && f.property != "" {
		f.skip++
		return
	}

	tag := qualified(el.Name)
	parent := b.current()

	if tag == dtsx.TagProperty && parent != nil {
		b.stack = append(b.stack, &frame{property: attr(el, "DTS:Name")})
		return
	}
	if dtsx.KindOf(tag) == dtsx.KindGrouping && parent != nil {
		b.stack = append(b.stack, &frame{})
		return
	}

	n := dtsx.NewNode(tag)
	b.count++
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		key := qualified(a.Name)
		n.Attributes[key] = a.Value
		if a.Name.Space == "DTS" && el.Name.Space == "DTS" {
			b.set(n, a.Name.Local, a.Value)
		}
	}
	if ref := n.Attributes[dtsx.AttrRefID]; ref != "" && b.reg != nil {
		b.reg.RegisterRef(ref, n)
	}

	if parent == nil {
		if b.root == nil {
			b.root = n
		}
	} else {
		parent.AddChild(n)
	}
	b.stack = append(b.stack, &frame{node: n})
}

func (b *builder) end() {
	f := b.top()
	if f == nil {
		return
	}
	if f.property != "" && f.skip > 0 {
		f.skip--
		return
	}
	b.stack = b.stack[:len(b.stack)-1]

	text := strings.TrimSpace(f.text.String())
	switch {
	case f.property != "":
		if owner := b.current(); owner != nil {
			b.set(owner, f.property, text)
		}
	case f.node != nil:
		f.node.Content = text
	}
}

func (b *builder) set(n *dtsx.Node, key, value string) {
	var reg dtsx.Registrar
	if b.reg != nil {
		reg = b.reg
	}
	if err := n.SetProperty(reg, key, value); err != nil {
		b.diags = append(b.diags, diag.FromError(err, n))
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func attr(el xml.StartElement, key string) string {
	for _, a := range el.Attr {
		if qualified(a.Name) == key {
			return a.Value
		}
	}
	return ""
}
