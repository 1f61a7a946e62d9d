package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/dag"
	"github.com/leapstack-labs/dessist/internal/engine"
	"github.com/leapstack-labs/dessist/internal/session"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <package.dtsx>",
		Short: "Show the precedence plan of a package",
		Long: `Display the order in which each container calls its tasks.

Tasks without incoming precedence constraints are called first, in
document order. Each constraint then leads to the task it precedes,
guarded by its expression when it has one. A task reached over several
constraints is called once per constraint.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the plan of a package
  dessist plan load.dtsx

  # Output as JSON
  dessist plan load.dtsx --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0])
		},
	}
	cmd.Flags().Int("max-steps", 0, "Precedence expansion bound per container")
	return cmd
}

func runPlan(cmd *cobra.Command, source string) error {
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
	plans := engine.Plans(sess, root, cmdCtx.Cfg.MaxSteps)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(planOutput(sess, root.NearestName(), plans))
	}

	r.Header(1, "Precedence plan: "+root.NearestName())
	for _, p := range plans {
		r.Header(2, fmt.Sprintf("%s (%s)", p.Function, p.Container.Path()))
		if p.Err != nil {
			r.Error(p.Err.Error())
			continue
		}
		if len(p.Plan.Roots) == 0 {
			r.Muted("no tasks")
			r.Println()
			continue
		}
		p.Plan.Walk(func(s *dag.Step, depth int) {
			r.Println(strings.Repeat("  ", depth) + "- " + stepLabel(r, sess, s))
		})
		r.Println()
	}

	ds := sess.Diagnostics.Items()
	for _, p := range plans {
		if p.Plan != nil {
			ds = append(ds, p.Plan.Diagnostics...)
		}
	}
	renderDiagnostics(r, ds)
	return nil
}

func stepLabel(r *output.Renderer, sess *session.Session, s *dag.Step) string {
	name := sess.Names.FunctionName(s.Node)
	if s.Via == nil {
		return name
	}
	cond := fmt.Sprintf("on %s", strings.ToLower(s.Via.Outcome.String()))
	if s.Via.Guard != "" {
		cond += " when " + s.Via.Guard
	}
	if r.EffectiveMode() == output.ModeText {
		return name + " " + r.Styles().Muted.Render("("+cond+")")
	}
	return fmt.Sprintf("%s (%s)", name, cond)
}

func planOutput(sess *session.Session, pkg string, plans []engine.ContainerPlan) output.PlanOutput {
	var toSteps func(steps []*dag.Step) []output.PlanStep
	toSteps = func(steps []*dag.Step) []output.PlanStep {
		out := make([]output.PlanStep, 0, len(steps))
		for _, s := range steps {
			ps := output.PlanStep{
				Task:     s.Node.NearestName(),
				Function: sess.Names.FunctionName(s.Node),
				Next:     toSteps(s.Next),
			}
			if s.Via != nil {
				ps.Via = s.Via.String()
				ps.Guard = s.Via.Guard
			}
			out = append(out, ps)
		}
		return out
	}

	ds := sess.Diagnostics.Items()
	out := output.PlanOutput{Package: pkg, Containers: make([]output.ContainerPlan, 0, len(plans))}
	for _, p := range plans {
		cp := output.ContainerPlan{Container: p.Container.Path(), Function: p.Function, Roots: []output.PlanStep{}}
		if p.Err != nil {
			cp.Error = p.Err.Error()
		} else {
			cp.Steps = p.Plan.Steps
			cp.Roots = toSteps(p.Plan.Roots)
			ds = append(ds, p.Plan.Diagnostics...)
		}
		out.Containers = append(out.Containers, cp)
	}
	out.Diagnostics = diagnosticInfos(ds)
	return out
}
