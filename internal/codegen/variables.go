package codegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/naming"
	"github.com/leapstack-labs/dessist/internal/session"
)

// variableTypes maps variable DataType codes to Go types.
var variableTypes = map[string]string{
	"2":  "int16",
	"3":  "int32",
	"4":  "float32",
	"5":  "float64",
	"6":  "float64",
	"7":  "time.Time",
	"8":  "string",
	"11": "bool",
	"13": "DataTable",
	"14": "float64",
	"16": "int8",
	"17": "uint8",
	"18": "uint16",
	"19": "uint32",
	"20": "int64",
	"21": "uint64",
}

// VariableType returns the Go type for a variable DataType code, "any" with
// ok false when the code is unknown.
func VariableType(code string) (goType string, ok bool) {
	if t, ok := variableTypes[strings.TrimSpace(code)]; ok {
		return t, true
	}
	return "any", false
}

// literal renders a variable's stored value as a Go literal of goType. It
// returns "" when the value is empty or has no literal form.
func literal(goType, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true
	}
	switch goType {
	case "string":
		return strconv.Quote(value), true
	case "bool":
		switch strings.ToLower(value) {
		case "-1", "1", "true":
			return "true", true
		case "0", "false":
			return "false", true
		}
		return "", false
	case "int8", "int16", "int32", "int64":
		n, err := strconv.ParseInt(value, 10, bitSize(goType))
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	case "uint8", "uint16", "uint32", "uint64":
		n, err := strconv.ParseUint(value, 10, bitSize(goType))
		if err != nil {
			return "", false
		}
		return strconv.FormatUint(n, 10), true
	case "float32", "float64":
		f, err := strconv.ParseFloat(value, bitSize(goType))
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, bitSize(goType)), true
	}
	// Dates and tables start at their zero value.
	return "", true
}

// bitSize returns the width of a sized numeric Go type.
func bitSize(goType string) int {
	switch {
	case strings.HasSuffix(goType, "8"):
		return 8
	case strings.HasSuffix(goType, "16"):
		return 16
	case strings.HasSuffix(goType, "32"):
		return 32
	}
	return 64
}

// emitVariable declares a variable and records its binding.
func (e *emitter) emitVariable(v *dtsx.Node, scope session.Scope) {
	name := naming.Identifier(v.Name)
	qualified := v.Name
	if ns := v.Property("Namespace"); ns != "" {
		qualified = ns + "::" + v.Name
	}
	if scope == session.ScopeGlobal {
		e.sess.Names.Reserve(name)
	}

	value := v.FindChildByType(dtsx.TagVariableValue)
	code := value.Attr(dtsx.AttrDataType)
	if code == "" {
		code = value.Property("DataType")
	}
	goType, ok := VariableType(code)
	if !ok {
		e.report(diag.KindUnrecognizedConstruct, v, "variable %s has unsupported data type %q", qualified, code)
	}
	def, ok := literal(goType, value.Content)
	if !ok {
		e.report(diag.KindUnrecognizedConstruct, v, "variable %s has value %q not valid for %s", qualified, value.Content, goType)
	}

	e.sess.Bindings.Bind(session.Binding{
		Name:        name,
		Qualified:   qualified,
		Type:        goType,
		Default:     def,
		Scope:       scope,
		Owner:       v.Parent.NearestName(),
		Description: v.Description,
	})

	if scope == session.ScopeGlobal {
		e.w.Blank()
		if v.Description != "" {
			e.w.Comment("%s %s", name, v.Description)
		}
	}
	if def == "" {
		e.w.Line("var %s %s", name, goType)
	} else {
		e.w.Line("var %s %s = %s", name, goType, def)
	}
	if scope == session.ScopeLocal {
		e.w.Line("_ = %s", name)
	}
}
