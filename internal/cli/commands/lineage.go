package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/engine"
	"github.com/leapstack-labs/dessist/internal/lineage"
)

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineage <package.dtsx>",
		Short: "Show column lineage of a package's pipelines",
		Long: `Display how columns flow through each pipeline task.

Sources produce columns into in-memory tables, transforms extend them,
and each destination column is traced back to the table and position
that produced it. Destination columns whose lineage cannot be found are
reported.`,
		Example: `  # Show lineage for every pipeline of a package
  dessist lineage load.dtsx

  # Output as JSON
  dessist lineage load.dtsx --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0])
		},
	}
	return cmd
}

func runLineage(cmd *cobra.Command, source string) error {
	cmdCtx, cleanup, err := newCommandContext(cmd, engineOptions{noState: true})
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	sess, root, err := cmdCtx.Engine.Inspect(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to load package: %w", err)
	}
	results := engine.Lineages(sess, root)

	ds := sess.Diagnostics.Items()
	for _, res := range results {
		ds = append(ds, res.Diagnostics...)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(lineageOutput(root.NearestName(), results, ds))
	}

	r.Header(1, "Lineage: "+root.NearestName())
	if len(results) == 0 {
		r.Muted("no pipelines")
		return nil
	}
	for _, res := range results {
		r.Header(2, res.Pipeline.NearestName())

		var produced [][]string
		for _, c := range res.Components {
			for _, col := range c.Outputs {
				produced = append(produced, []string{
					c.Role.String(), c.Name, col.Table, strconv.Itoa(col.Ordinal), col.Name, col.DataType,
				})
			}
		}
		if len(produced) > 0 {
			r.Table([]string{"Role", "Component", "Table", "Ordinal", "Column", "Type"}, produced)
		}

		for _, c := range res.ByRole(lineage.RoleSink) {
			rows := make([][]string, 0, len(c.Inputs))
			for _, in := range c.Inputs {
				from := "unresolved lineage " + in.LineageID
				if in.Source != nil {
					from = fmt.Sprintf("%s[%d] %s", in.Source.Table, in.Source.Ordinal, in.Source.Name)
				}
				rows = append(rows, []string{in.Name, from})
			}
			r.Println(fmt.Sprintf("%s → %s", c.Name, c.Target))
			r.Table([]string{"Column", "From"}, rows)
		}
		r.Println()
	}
	renderDiagnostics(r, ds)
	return nil
}

func lineageOutput(pkg string, results []*lineage.Result, ds []diag.Diagnostic) output.LineageOutput {
	column := func(c lineage.Column) output.LineageColumn {
		return output.LineageColumn{
			LineageID: c.LineageID,
			Table:     c.Table,
			Ordinal:   c.Ordinal,
			Name:      c.Name,
			DataType:  c.DataType,
		}
	}

	out := output.LineageOutput{Package: pkg, Pipelines: make([]output.PipelineLineage, 0, len(results))}
	for _, res := range results {
		pl := output.PipelineLineage{Pipeline: res.Pipeline.NearestName()}
		for _, c := range res.Components {
			lc := output.LineageComponent{
				ID:     c.ID,
				Name:   c.Name,
				Role:   c.Role.String(),
				Table:  c.Table,
				Query:  c.Query,
				Target: c.Target,
			}
			for _, col := range c.Outputs {
				lc.Outputs = append(lc.Outputs, column(col))
			}
			for _, in := range c.Inputs {
				li := output.LineageInput{LineageID: in.LineageID, Name: in.Name}
				if in.Source != nil {
					src := column(*in.Source)
					li.Source = &src
				}
				lc.Inputs = append(lc.Inputs, li)
			}
			pl.Components = append(pl.Components, lc)
		}
		out.Pipelines = append(out.Pipelines, pl)
	}
	out.Diagnostics = diagnosticInfos(ds)
	return out
}
