package commands

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	ID    string
}

// errNoState is returned when history is asked for with state disabled.
var errNoState = errors.New("conversion history is disabled (no_state)")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past conversions",
		Long: `List recorded conversions, most recent first.

With --id, show one conversion together with the diagnostics it
reported and the variable bindings it generated.`,
		Example: `  # Show the last 20 conversions
  dessist history

  # Show one conversion in detail
  dessist history --id 3f6c0b9e-6a59-4d6b-9a57-4a8e3f0f2d11

  # Output as JSON
  dessist history --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Number of conversions to show")
	cmd.Flags().StringVar(&opts.ID, "id", "", "Show a single conversion in detail")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cmdCtx.Engine.Store()
	if store == nil {
		return errNoState
	}
	r := cmdCtx.Renderer

	if opts.ID != "" {
		return historyDetail(r, store, opts.ID)
	}

	conversions, err := store.ListConversions(opts.Limit)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.HistoryOutput{Conversions: conversionInfos(conversions)})
	}

	r.Header(1, "Conversion history")
	if len(conversions) == 0 {
		r.Muted("no conversions recorded")
		return nil
	}
	r.Table([]string{"ID", "Package", "Status", "Functions", "Started", "Source"}, conversionRows(conversions))
	return nil
}

func historyDetail(r *output.Renderer, store state.Store, id string) error {
	c, err := store.GetConversion(id)
	if err != nil {
		return err
	}
	ds, err := store.GetDiagnostics(id)
	if err != nil {
		return err
	}
	bindings, err := store.GetBindings(id)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := output.HistoryOutput{
			Conversions: conversionInfos([]*state.Conversion{c}),
			Diagnostics: diagnosticInfos(ds),
		}
		for _, b := range bindings {
			out.Bindings = append(out.Bindings, output.BindingInfo{
				Name:      b.Name,
				Qualified: b.Qualified,
				Type:      b.Type,
				Default:   b.Default,
				Scope:     b.Scope.String(),
				Owner:     b.Owner,
			})
		}
		return r.JSON(out)
	}

	r.Header(1, "Conversion "+c.ID)
	for _, kv := range [][2]string{
		{"Package", c.Package},
		{"Source", c.Source},
		{"Status", string(c.Status)},
		{"Functions", strconv.Itoa(c.Functions)},
		{"Output", c.OutputDir},
		{"Started", c.StartedAt.Local().Format(time.DateTime)},
		{"Error", c.Error},
	} {
		if kv[1] == "" {
			continue
		}
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
			continue
		}
		r.Printf("%s %s\n", r.Styles().Bold.Render(kv[0]+":"), kv[1])
	}
	r.Println()

	if len(bindings) > 0 {
		rows := make([][]string, 0, len(bindings))
		for _, b := range bindings {
			rows = append(rows, []string{b.Name, b.Type, b.Default, b.Scope.String(), b.Owner})
		}
		r.Header(2, "Bindings")
		r.Table([]string{"Name", "Type", "Default", "Scope", "Owner"}, rows)
	}
	renderDiagnostics(r, ds)
	return nil
}

func conversionRows(cs []*state.Conversion) [][]string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			c.ID,
			c.Package,
			string(c.Status),
			strconv.Itoa(c.Functions),
			c.StartedAt.Local().Format(time.DateTime),
			c.Source,
		})
	}
	return rows
}

func conversionInfos(cs []*state.Conversion) []output.ConversionInfo {
	out := make([]output.ConversionInfo, 0, len(cs))
	for _, c := range cs {
		info := output.ConversionInfo{
			ID:        c.ID,
			Package:   c.Package,
			Source:    c.Source,
			Status:    string(c.Status),
			Functions: c.Functions,
			OutputDir: c.OutputDir,
			StartedAt: c.StartedAt.UTC().Format(time.RFC3339),
			Error:     c.Error,
		}
		if c.CompletedAt != nil {
			s := c.CompletedAt.UTC().Format(time.RFC3339)
			info.CompletedAt = &s
		}
		out = append(out, info)
	}
	return out
}
