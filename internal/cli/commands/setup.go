// Package commands implements the dessist CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/config"
	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// engineOptions adjust the engine a command gets.
type engineOptions struct {
	noState bool
	dryRun  bool
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	return newCommandContext(cmd, engineOptions{})
}

func newCommandContext(cmd *cobra.Command, opts engineOptions) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger, opts)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// getConfig returns the current configuration, defaults when none was
// loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		OutputDir:    config.DefaultOutputDir,
		StatePath:    config.DefaultStateFile,
		PackageName:  config.DefaultPackageName,
		Parallel:     config.DefaultParallel,
		OutputFormat: config.DefaultOutput,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger, opts engineOptions) (*engine.Engine, error) {
	noState := cfg.NoState || opts.noState || opts.dryRun
	if !noState {
		// Ensure state directory exists
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	return engine.New(engine.Config{
		OutputDir:    cfg.OutputDir,
		StatePath:    cfg.StatePath,
		NoState:      noState,
		ModulePrefix: cfg.ModulePrefix,
		PackageName:  cfg.PackageName,
		Families:     cfg.Families,
		MaxSteps:     cfg.MaxSteps,
		Parallel:     cfg.Parallel,
		Force:        cfg.Force,
		DryRun:       opts.dryRun,
		Logger:       logger,
	})
}

// diagnosticInfos converts diagnostics for JSON output.
func diagnosticInfos(ds []diag.Diagnostic) []output.DiagnosticInfo {
	out := make([]output.DiagnosticInfo, 0, len(ds))
	for _, d := range diag.Sorted(ds) {
		out = append(out, output.DiagnosticInfo{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Path:     d.Path,
			NodeID:   d.NodeID,
			Message:  d.Message,
		})
	}
	return out
}

// renderDiagnostics writes a diagnostics table, nothing when ds is empty.
func renderDiagnostics(r *output.Renderer, ds []diag.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	rows := make([][]string, 0, len(ds))
	for _, d := range diag.Sorted(ds) {
		rows = append(rows, []string{d.Severity.String(), d.Kind.String(), d.Path, d.Message})
	}
	r.Header(2, "Diagnostics")
	r.Table([]string{"Severity", "Kind", "Path", "Message"}, rows)
}
