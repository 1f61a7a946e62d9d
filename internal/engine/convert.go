package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/afs/url"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/parser"
	"github.com/leapstack-labs/dessist/internal/project"
	"github.com/leapstack-labs/dessist/internal/session"
	"github.com/leapstack-labs/dessist/internal/state"
)

// Outcome is the result of converting one package document.
type Outcome struct {
	Source      Source
	Package     string
	Fingerprint string
	Status      state.Status
	// ConversionID is the history record, empty without state.
	ConversionID string
	Entry        string
	Functions    []string
	Bindings     []session.Binding
	Diagnostics  []diag.Diagnostic
	// OutputDir is the project directory, empty on a dry run.
	OutputDir string
	Files     []string
	Duration  time.Duration
	Err       error
}

// Report summarizes a conversion run. Outcomes follow discovery order.
type Report struct {
	Outcomes []*Outcome
	Duration time.Duration
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(status state.Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of failed conversions.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Source.URL, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Convert discovers the package documents under inputs and converts each
// one. A failing package does not stop the others; its error is kept in
// its outcome. Only discovery failures and cancellation are returned.
func (e *Engine) Convert(ctx context.Context, inputs []string) (*Report, error) {
	sources, err := e.Discover(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return e.ConvertSources(ctx, sources)
}

// ConvertSources converts already discovered sources, at most Parallel at
// a time.
func (e *Engine) ConvertSources(ctx context.Context, sources []Source) (*Report, error) {
	start := time.Now()
	report := &Report{Outcomes: make([]*Outcome, len(sources))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallel)
	for i, src := range sources {
		g.Go(func() error {
			report.Outcomes[i] = e.ConvertOne(gctx, src)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	e.logger.Info("conversion finished",
		"packages", len(sources),
		"succeeded", report.Count(state.StatusSucceeded),
		"skipped", report.Count(state.StatusSkipped),
		"failed", report.Count(state.StatusFailed),
		"duration", report.Duration)
	return report, nil
}

// ConvertOne converts a single package document in its own session.
func (e *Engine) ConvertOne(ctx context.Context, src Source) *Outcome {
	start := time.Now()
	src.URL = CanonicalURL(src.URL)
	out := &Outcome{Source: src}
	logger := e.logger.With(slog.String("source", src.URL))
	defer func() { out.Duration = time.Since(start) }()

	data, err := e.fs.DownloadWithURL(ctx, src.URL)
	if err != nil {
		return out.fail(fmt.Errorf("failed to read package: %w", err))
	}
	out.Fingerprint = Fingerprint(data)

	if e.unchanged(src.URL, out.Fingerprint) {
		logger.Debug("package unchanged, skipping", "fingerprint", out.Fingerprint)
		out.Status = state.StatusSkipped
		return out
	}

	sess := session.New()
	parsed, err := parser.ParseBytes(data, sess.Registry)
	if err != nil {
		return out.fail(err)
	}
	sess.Diagnostics.Add(parsed.Diagnostics...)
	out.Package = parsed.Root.NearestName()
	logger.Debug("parsed package", "package", out.Package, "nodes", parsed.Nodes)

	record := e.begin(out)
	e.generate(ctx, sess, parsed.Root, out, logger)
	e.finish(record, out, logger)

	if out.Err != nil {
		logger.Error("conversion failed", "error", out.Err)
	} else {
		logger.Info("converted package",
			"package", out.Package,
			"functions", len(out.Functions),
			"diagnostics", len(out.Diagnostics),
			"output", out.OutputDir)
	}
	return out
}

// Inspect parses a package document without generating code.
func (e *Engine) Inspect(ctx context.Context, source string) (*session.Session, *dtsx.Node, error) {
	data, err := e.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read package: %w", err)
	}
	sess := session.New()
	parsed, err := parser.ParseBytes(data, sess.Registry)
	if err != nil {
		return nil, nil, err
	}
	sess.Diagnostics.Add(parsed.Diagnostics...)
	return sess, parsed.Root, nil
}

func (e *Engine) generate(ctx context.Context, sess *session.Session, root *dtsx.Node, out *Outcome, logger *slog.Logger) {
	module := out.Source.Dir
	if e.cfg.ModulePrefix != "" {
		module = e.cfg.ModulePrefix + "/" + out.Source.Dir
	}
	proj := project.New(sess, root, project.Options{
		Module:      module,
		PackageName: e.cfg.PackageName,
		Families:    e.cfg.Families,
		MaxSteps:    e.cfg.MaxSteps,
	})
	opts := proj.CodegenOptions()
	opts.Logger = logger

	res, err := proj.Generate(opts)
	out.Diagnostics = sess.Diagnostics.Items()
	if err != nil {
		out.fail(err)
		return
	}
	out.Entry = res.Entry
	out.Functions = res.Functions
	out.Bindings = res.Bindings

	if e.cfg.DryRun {
		out.Status = state.StatusSucceeded
		return
	}
	dir := url.Join(e.cfg.OutputDir, out.Source.Dir)
	files, err := proj.Write(ctx, e.fs, dir)
	out.Files = files
	if err != nil {
		out.fail(err)
		return
	}
	out.OutputDir = dir
	out.Status = state.StatusSucceeded
}

// unchanged reports whether the last recorded conversion of source
// succeeded with the same fingerprint.
func (e *Engine) unchanged(source, fingerprint string) bool {
	if e.store == nil || e.cfg.Force || e.cfg.DryRun {
		return false
	}
	latest, err := e.store.LatestConversion(source)
	if err != nil {
		e.logger.Warn("failed to read conversion history", "source", source, "error", err)
		return false
	}
	return latest != nil && latest.Status == state.StatusSucceeded && latest.Fingerprint == fingerprint
}

// begin records a running conversion. History failures are logged, never
// fatal.
func (e *Engine) begin(out *Outcome) *state.Conversion {
	if e.store == nil || e.cfg.DryRun {
		return nil
	}
	c, err := e.store.CreateConversion(out.Package, out.Source.URL, out.Fingerprint)
	if err != nil {
		e.logger.Warn("failed to record conversion", "source", out.Source.URL, "error", err)
		return nil
	}
	out.ConversionID = c.ID
	return c
}

func (e *Engine) finish(c *state.Conversion, out *Outcome, logger *slog.Logger) {
	if c == nil {
		return
	}
	var errMsg string
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	if err := e.store.SaveDiagnostics(c.ID, out.Diagnostics); err != nil {
		logger.Warn("failed to record diagnostics", "error", err)
	}
	if err := e.store.SaveBindings(c.ID, out.Bindings); err != nil {
		logger.Warn("failed to record bindings", "error", err)
	}
	if err := e.store.CompleteConversion(c.ID, out.Status, len(out.Functions), out.OutputDir, errMsg); err != nil {
		logger.Warn("failed to complete conversion record", "error", err)
	}
	if out.Status == state.StatusSucceeded {
		if err := e.store.SetFingerprint(out.Source.URL, out.Fingerprint); err != nil {
			logger.Warn("failed to record fingerprint", "error", err)
		}
	}
}

func (o *Outcome) fail(err error) *Outcome {
	o.Status = state.StatusFailed
	o.Err = err
	return o
}
