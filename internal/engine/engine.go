// Package engine converts SSIS package documents into generated Go projects.
// It handles discovery, change detection, parallel conversion and the
// conversion history kept in the state store.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/viant/afs"

	"github.com/leapstack-labs/dessist/internal/state"
)

// Engine orchestrates conversions.
type Engine struct {
	cfg Config
	fs  afs.Service

	// Structured logger
	logger *slog.Logger

	// store is nil when state tracking is disabled.
	store state.Store
}

// Config holds engine configuration.
type Config struct {
	// OutputDir receives one project directory per converted package.
	OutputDir string
	// StatePath is the path to the SQLite state database.
	StatePath string
	// NoState disables conversion history and change detection.
	NoState bool

	// ModulePrefix is joined with the project directory to form each
	// generated module path.
	ModulePrefix string
	// PackageName is the generated package clause, "main" when empty.
	PackageName string
	// Families maps connection families to database/sql driver names.
	Families map[string]string
	// MaxSteps bounds precedence expansion per container.
	MaxSteps int

	// Parallel caps concurrent conversions, 1 when zero.
	Parallel int
	// Force converts packages whose fingerprint is unchanged.
	Force bool
	// DryRun generates without writing files or recording history.
	DryRun bool

	// FS is the storage service, afs.New() when nil.
	FS afs.Service
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine. Unless NoState is set the state store is opened
// and migrated.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	fs := cfg.FS
	if fs == nil {
		fs = afs.New()
	}

	logger.Debug("initializing engine", "output_dir", cfg.OutputDir, "state", cfg.StatePath, "parallel", cfg.Parallel)

	e := &Engine{cfg: cfg, fs: fs, logger: logger}
	if cfg.NoState || cfg.StatePath == "" {
		return e, nil
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	e.store = store
	return e, nil
}

// Close releases the state store.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Store returns the state store, nil when state tracking is disabled.
func (e *Engine) Store() state.Store {
	return e.store
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
