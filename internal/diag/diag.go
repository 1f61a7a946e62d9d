// Package diag defines the conversion error taxonomy and the diagnostics
// collected while a package is translated.
//
// Diagnostics are values. Components return them alongside their results and
// the caller decides where they accumulate; nothing in the conversion core
// writes to a logger to report a gap.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per diagnostic kind. Typed errors below unwrap to these
// so callers can use errors.Is.
var (
	ErrUnrecognizedConstruct = errors.New("unrecognized construct")
	ErrReferenceNotFound     = errors.New("reference not found")
	ErrMalformedIdentifier   = errors.New("malformed identifier")
	ErrStructuralCycle       = errors.New("structural cycle")
	ErrFormat                = errors.New("generated source does not format")
)

// =============================================================================
// Kind
// =============================================================================

// Kind classifies a diagnostic.
type Kind int

// Diagnostic kinds.
const (
	// KindUnrecognizedConstruct marks an unknown task, component or type tag.
	KindUnrecognizedConstruct Kind = iota
	// KindReferenceNotFound marks an identifier or lineage lookup miss.
	KindReferenceNotFound
	// KindMalformedIdentifier marks unparsable unique-id text.
	KindMalformedIdentifier
	// KindStructuralCycle marks a cycle among precedence constraints.
	KindStructuralCycle
	// KindFormat marks generated source that could not be formatted.
	KindFormat
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnrecognizedConstruct:
		return "unrecognized_construct"
	case KindReferenceNotFound:
		return "reference_not_found"
	case KindMalformedIdentifier:
		return "malformed_identifier"
	case KindStructuralCycle:
		return "structural_cycle"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for the kind.
func (k Kind) Err() error {
	switch k {
	case KindUnrecognizedConstruct:
		return ErrUnrecognizedConstruct
	case KindReferenceNotFound:
		return ErrReferenceNotFound
	case KindMalformedIdentifier:
		return ErrMalformedIdentifier
	case KindStructuralCycle:
		return ErrStructuralCycle
	case KindFormat:
		return ErrFormat
	default:
		return nil
	}
}

// DefaultSeverity is the severity a diagnostic of this kind gets when reported
// through a Sink.
func (k Kind) DefaultSeverity() Severity {
	switch k {
	case KindUnrecognizedConstruct, KindFormat:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates generated code that is missing or wrong.
	SeverityError Severity = iota
	// SeverityWarning indicates a construct that was skipped or stubbed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// Diagnostic
// =============================================================================

// Diagnostic is a single reported gap in a conversion.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	// Path is the named ancestry of the node, e.g. Package\Loop\Load.
	Path string
	// NodeID is the nearest identifier at or above the node, if any.
	NodeID  string
	Message string
}

// String formats the diagnostic for logs and plain-text reports.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteString(" [")
	sb.WriteString(d.Kind.String())
	sb.WriteString("]")
	if d.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(d.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Locator identifies where in a package a diagnostic applies.
type Locator interface {
	Path() string
	NearestID() string
}

// New builds a diagnostic with the kind's default severity.
func New(kind Kind, at Locator, format string, args ...any) Diagnostic {
	d := Diagnostic{
		Kind:     kind,
		Severity: kind.DefaultSeverity(),
		Message:  fmt.Sprintf(format, args...),
	}
	if at != nil {
		d.Path = at.Path()
		d.NodeID = at.NearestID()
	}
	return d
}

// =============================================================================
// Typed errors
// =============================================================================

// CycleError reports precedence constraints that form a cycle.
type CycleError struct {
	// Container is the path of the container whose children form the cycle.
	Container string
	// Cycle lists the task names along the cycle, first and last equal.
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("precedence cycle in %s: %s", e.Container, strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrStructuralCycle.
func (e *CycleError) Unwrap() error { return ErrStructuralCycle }

// ReferenceError reports an identifier lookup miss.
type ReferenceError struct {
	ID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("no node registered for identifier %s", e.ID)
}

// Unwrap returns ErrReferenceNotFound.
func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// IdentifierError reports identifier text that does not parse.
type IdentifierError struct {
	Value string
	Err   error
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrMalformedIdentifier and the underlying parse error.
func (e *IdentifierError) Unwrap() []error { return []error{ErrMalformedIdentifier, e.Err} }

// FromError converts a typed error into a diagnostic. Errors outside the
// taxonomy are reported as unrecognized constructs.
func FromError(err error, at Locator) Diagnostic {
	kind := KindUnrecognizedConstruct
	switch {
	case errors.Is(err, ErrReferenceNotFound):
		kind = KindReferenceNotFound
	case errors.Is(err, ErrMalformedIdentifier):
		kind = KindMalformedIdentifier
	case errors.Is(err, ErrStructuralCycle):
		kind = KindStructuralCycle
	case errors.Is(err, ErrFormat):
		kind = KindFormat
	}
	return New(kind, at, "%s", err.Error())
}
