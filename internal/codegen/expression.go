package codegen

import (
	"regexp"
	"strings"
)

var (
	qualifiedVariable = regexp.MustCompile(`@\[([^\]:]+)::([^\]]+)\]`)
	trueLiteral       = regexp.MustCompile(`\bTrue\b`)
	falseLiteral      = regexp.MustCompile(`\bFalse\b`)
)

// FixExpression rewrites a package expression into Go by textual
// substitution: @[Namespace::Name] becomes Name, remaining @ signs are
// dropped and True/False become true/false. Nothing else is translated.
//
//	FixExpression("@[User::Flag] == True") // "Flag == true"
func FixExpression(expr string) string {
	s := qualifiedVariable.ReplaceAllString(expr, "$2")
	s = strings.ReplaceAll(s, "@", "")
	s = trueLiteral.ReplaceAllString(s, "true")
	return falseLiteral.ReplaceAllString(s, "false")
}
