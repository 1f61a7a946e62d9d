// Package state persists conversion history in SQLite: every conversion run,
// the diagnostics and variable bindings it produced, and the fingerprint of
// each converted package so unchanged packages can be skipped.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/session"
)

// ErrNotOpen is returned by store operations before Open.
var ErrNotOpen = errors.New("database not opened")

// ErrNotFound is returned when a conversion does not exist.
var ErrNotFound = errors.New("conversion not found")

// Status is the outcome of a conversion.
type Status string

// Conversion statuses.
const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Conversion is one recorded conversion of a package document.
type Conversion struct {
	ID          string
	Package     string
	Source      string
	Fingerprint string
	OutputDir   string
	Status      Status
	Functions   int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store records conversion history.
type Store interface {
	Open(path string) error
	Close() error

	CreateConversion(pkg, source, fingerprint string) (*Conversion, error)
	CompleteConversion(id string, status Status, functions int, outputDir, errMsg string) error
	GetConversion(id string) (*Conversion, error)
	ListConversions(limit int) ([]*Conversion, error)
	LatestConversion(source string) (*Conversion, error)

	SaveDiagnostics(conversionID string, ds []diag.Diagnostic) error
	GetDiagnostics(conversionID string) ([]diag.Diagnostic, error)

	SaveBindings(conversionID string, bs []session.Binding) error
	GetBindings(conversionID string) ([]session.Binding, error)

	GetFingerprint(source string) (string, error)
	SetFingerprint(source, fingerprint string) error
}
