package dag

import (
	"strings"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
)

// Outcome is the result of the source task an edge waits for.
type Outcome int

// Constraint outcomes, numbered as in the package format.
const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCompletion
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailure:
		return "Failure"
	case OutcomeCompletion:
		return "Completion"
	default:
		return "Success"
	}
}

// EvalOp says how the outcome and the expression of an edge combine.
type EvalOp int

// Evaluation operations, numbered as in the package format.
const (
	EvalExpression              EvalOp = 1
	EvalConstraint              EvalOp = 2
	EvalExpressionAndConstraint EvalOp = 3
	EvalExpressionOrConstraint  EvalOp = 4
)

// LogicalOp combines several edges into the same task.
type LogicalOp int

// Logical operators.
const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (l LogicalOp) String() string {
	if l == LogicalOr {
		return "Or"
	}
	return "And"
}

// Edge is one precedence constraint between two sibling tasks.
type Edge struct {
	Constraint *dtsx.Node
	From       *dtsx.Node
	To         *dtsx.Node
	// Guard is the raw expression text, empty when the edge is unconditional.
	Guard     string
	LogicalOp LogicalOp
	Outcome   Outcome
	EvalOp    EvalOp
}

// String describes the edge for generated comments.
func (e *Edge) String() string {
	var sb strings.Builder
	sb.WriteString(e.From.Label())
	sb.WriteString(" -> ")
	sb.WriteString(e.To.Label())
	sb.WriteString(" (")
	sb.WriteString(e.Outcome.String())
	sb.WriteString(", ")
	sb.WriteString(e.LogicalOp.String())
	sb.WriteString(")")
	if e.Guard != "" {
		sb.WriteString(" when ")
		sb.WriteString(e.Guard)
	}
	return sb.String()
}

// siblings indexes the candidate tasks of a container for endpoint lookup.
type siblings struct {
	byID  map[string]*dtsx.Node
	byRef map[string]*dtsx.Node
}

func indexSiblings(candidates []*dtsx.Node) *siblings {
	s := &siblings{
		byID:  make(map[string]*dtsx.Node),
		byRef: make(map[string]*dtsx.Node),
	}
	for _, c := range candidates {
		if c.HasID() {
			s.byID[c.ID.String()] = c
		}
		if ref := c.Attr(dtsx.AttrRefID); ref != "" {
			s.byRef[strings.ToLower(ref)] = c
		}
	}
	return s
}

// find resolves a DTSID or refId to a sibling.
func (s *siblings) find(constraint *dtsx.Node, ref string) (*dtsx.Node, *diag.Diagnostic) {
	if n, ok := s.byRef[strings.ToLower(strings.TrimSpace(ref))]; ok {
		return n, nil
	}
	id, err := dtsx.ParseID(ref)
	if err != nil {
		if strings.ContainsAny(ref, `\.`) {
			d := diag.New(diag.KindReferenceNotFound, constraint, "precedence endpoint %q is not a task of this container", ref)
			return nil, &d
		}
		d := diag.FromError(err, constraint)
		return nil, &d
	}
	if n, ok := s.byID[id.String()]; ok {
		return n, nil
	}
	d := diag.New(diag.KindReferenceNotFound, constraint, "precedence endpoint %s is not a task of this container", ref)
	return nil, &d
}

// buildEdge reads one constraint node. Both the IDREF child form and the
// From/To property form are understood.
func buildEdge(constraint *dtsx.Node, sibs *siblings) (*Edge, *diag.Diagnostic) {
	fromRef, toRef := constraint.Property("From"), constraint.Property("To")
	for _, end := range constraint.FindChildrenByType(dtsx.TagExecutable) {
		ref := end.Attr("IDREF")
		if isTrue(end.Property("IsFrom")) {
			fromRef = ref
		} else {
			toRef = ref
		}
	}
	if fromRef == "" || toRef == "" {
		d := diag.New(diag.KindUnrecognizedConstruct, constraint, "precedence constraint has no source or target")
		return nil, &d
	}

	from, d := sibs.find(constraint, fromRef)
	if d != nil {
		return nil, d
	}
	to, d := sibs.find(constraint, toRef)
	if d != nil {
		return nil, d
	}

	e := &Edge{
		Constraint: constraint,
		From:       from,
		To:         to,
		LogicalOp:  LogicalAnd,
		Outcome:    OutcomeSuccess,
	}
	if v := constraint.Property("LogicalAnd"); v != "" && !isTrue(v) {
		e.LogicalOp = LogicalOr
	}
	switch constraint.Property("Value") {
	case "1":
		e.Outcome = OutcomeFailure
	case "2":
		e.Outcome = OutcomeCompletion
	}

	expr := strings.TrimSpace(constraint.Property("Expression"))
	switch constraint.Property("EvalOp") {
	case "1":
		e.EvalOp = EvalExpression
	case "2":
		e.EvalOp = EvalConstraint
	case "3":
		e.EvalOp = EvalExpressionAndConstraint
	case "4":
		e.EvalOp = EvalExpressionOrConstraint
	default:
		if expr != "" {
			e.EvalOp = EvalExpressionAndConstraint
		} else {
			e.EvalOp = EvalConstraint
		}
	}
	// A constraint-only edge ignores any stored expression.
	if e.EvalOp != EvalConstraint {
		e.Guard = expr
	}
	return e, nil
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "-1", "1", "true":
		return true
	}
	return false
}
