package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/engine"
	"github.com/leapstack-labs/dessist/internal/state"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Watch  bool
	DryRun bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert SSIS packages into Go projects",
		Long: `Convert SSIS package documents (.dtsx) into Go projects.

Each path may be a package file or a directory, which is searched
recursively. Every package becomes its own project under the output
directory: one function per task, resources and connection settings in
separate files, and a bindings.yaml describing the package variables.

Packages whose content is unchanged since their last successful
conversion are skipped unless --force is given.`,
		Example: `  # Convert every package under ./packages
  dessist convert ./packages

  # Convert one package into ./out, regenerating even if unchanged
  dessist convert load.dtsx --output-dir out --force

  # Keep converting as packages change
  dessist convert ./packages --watch

  # Report what would be generated without writing anything
  dessist convert ./packages --dry-run --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Convert again whenever a package changes")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Generate without writing files or recording history")
	cmd.Flags().StringP("output-dir", "d", "", "Directory receiving the generated projects")
	cmd.Flags().Bool("force", false, "Convert packages even when unchanged")
	cmd.Flags().IntP("parallel", "p", 0, "Number of packages converted at once")
	cmd.Flags().String("package-name", "", "Package clause of the generated code")
	cmd.Flags().String("module-prefix", "", "Module path prefix of the generated projects")
	cmd.Flags().Int("max-steps", 0, "Precedence expansion bound per container")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	if opts.Watch && opts.DryRun {
		return fmt.Errorf("--watch and --dry-run cannot be combined")
	}

	cmdCtx, cleanup, err := newCommandContext(cmd, engineOptions{dryRun: opts.DryRun})
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		r.Muted("Watching for changes, press Ctrl+C to stop")
		return eng.Watch(ctx, args, func(report *engine.Report, err error) {
			if err != nil {
				r.Error(err.Error())
				return
			}
			_ = renderReport(r, report)
		})
	}

	report, err := eng.Convert(cmd.Context(), args)
	if err != nil {
		return err
	}
	if err := renderReport(r, report); err != nil {
		return err
	}
	if failed := report.Count(state.StatusFailed); failed > 0 {
		return fmt.Errorf("%d of %d packages failed", failed, len(report.Outcomes))
	}
	return nil
}

// renderReport writes a conversion report in the effective mode.
func renderReport(r *output.Renderer, report *engine.Report) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(convertOutput(report))
	case output.ModeMarkdown:
		convertMarkdown(r, report)
	default:
		convertText(r, report)
	}
	return nil
}

func convertText(r *output.Renderer, report *engine.Report) {
	styles := r.Styles()
	r.Header(1, "Conversion")

	for _, o := range report.Outcomes {
		name := filepath.Base(o.Source.URL)
		switch o.Status {
		case state.StatusSucceeded:
			target := o.OutputDir
			if target == "" {
				target = "(dry run)"
			}
			r.Success(fmt.Sprintf("%s %s %s", name, styles.Muted.Render("→"), target))
			r.Printf("    %s %s, %d functions, %d diagnostics\n",
				styles.Muted.Render("package"), o.Package, len(o.Functions), len(o.Diagnostics))
		case state.StatusSkipped:
			r.Muted(fmt.Sprintf("- %s unchanged, skipped", name))
		default:
			r.Error(fmt.Sprintf("%s: %v", name, o.Err))
		}
	}
	r.Println()

	for _, o := range report.Outcomes {
		if len(o.Diagnostics) > 0 {
			r.Println(styles.Bold.Render(o.Package))
			renderDiagnostics(r, o.Diagnostics)
		}
	}

	r.Muted(summaryLine(report))
}

func convertMarkdown(r *output.Renderer, report *engine.Report) {
	r.Header(1, "Conversion")

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		detail := o.OutputDir
		if o.Err != nil {
			detail = o.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(o.Source.URL),
			o.Package,
			string(o.Status),
			fmt.Sprintf("%d", len(o.Functions)),
			fmt.Sprintf("%d", len(o.Diagnostics)),
			detail,
		})
	}
	r.Table([]string{"Source", "Package", "Status", "Functions", "Diagnostics", "Output"}, rows)

	for _, o := range report.Outcomes {
		if len(o.Diagnostics) > 0 {
			r.Println(output.FormatHeader(3, o.Package))
			r.Println()
			renderDiagnostics(r, o.Diagnostics)
		}
	}
	r.Println(summaryLine(report))
}

func summaryLine(report *engine.Report) string {
	return fmt.Sprintf("%d converted, %d skipped, %d failed in %s",
		report.Count(state.StatusSucceeded),
		report.Count(state.StatusSkipped),
		report.Count(state.StatusFailed),
		report.Duration.Round(time.Millisecond))
}

func convertOutput(report *engine.Report) output.ConvertOutput {
	out := output.ConvertOutput{
		Packages: make([]output.PackageResult, 0, len(report.Outcomes)),
		Summary: output.ConvertSummary{
			Total:      len(report.Outcomes),
			Succeeded:  report.Count(state.StatusSucceeded),
			Skipped:    report.Count(state.StatusSkipped),
			Failed:     report.Count(state.StatusFailed),
			DurationMS: report.Duration.Milliseconds(),
		},
	}
	for _, o := range report.Outcomes {
		p := output.PackageResult{
			Source:       o.Source.URL,
			Package:      o.Package,
			Status:       string(o.Status),
			Fingerprint:  o.Fingerprint,
			ConversionID: o.ConversionID,
			Entry:        o.Entry,
			Functions:    o.Functions,
			OutputDir:    o.OutputDir,
			Files:        o.Files,
			Diagnostics:  diagnosticInfos(o.Diagnostics),
			DurationMS:   o.Duration.Milliseconds(),
		}
		if p.Functions == nil {
			p.Functions = []string{}
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
		}
		out.Packages = append(out.Packages, p)
	}
	return out
}
