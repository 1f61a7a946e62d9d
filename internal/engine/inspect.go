package engine

import (
	"github.com/leapstack-labs/dessist/internal/codegen"
	"github.com/leapstack-labs/dessist/internal/dag"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/lineage"
	"github.com/leapstack-labs/dessist/internal/session"
)

// ContainerPlan is the precedence plan of one container executable.
type ContainerPlan struct {
	Container *dtsx.Node
	Function  string
	Plan      *dag.Plan
	// Err is set when the container could not be resolved.
	Err error
}

// Plans resolves the precedence order of every container in the package,
// in document order.
func Plans(sess *session.Session, root *dtsx.Node, maxSteps int) []ContainerPlan {
	sess.Names.Reserve(codegen.RuntimeNames...)
	var plans []ContainerPlan
	root.Walk(func(n *dtsx.Node) bool {
		if n.Kind() != dtsx.KindExecutable {
			return false
		}
		name := sess.Names.FunctionName(n)
		switch n.Executable().Kind {
		case dtsx.ExecPackage, dtsx.ExecSequence, dtsx.ExecForLoop, dtsx.ExecForEachLoop:
			plan, err := dag.Resolve(n, dag.Options{MaxSteps: maxSteps})
			plans = append(plans, ContainerPlan{Container: n, Function: name, Plan: plan, Err: err})
		}
		return true
	})
	return plans
}

// Lineages analyzes the column flow of every pipeline task in the package,
// in document order.
func Lineages(sess *session.Session, root *dtsx.Node) []*lineage.Result {
	var results []*lineage.Result
	root.Walk(func(n *dtsx.Node) bool {
		if n.Kind() != dtsx.KindExecutable {
			return false
		}
		if n.Executable().Kind != dtsx.ExecPipeline {
			return true
		}
		p := n.Descend(dtsx.TagObjectData, dtsx.TagPipeline)
		if p == nil || p.FindChildByType("components") == nil {
			return true
		}
		results = append(results, lineage.Analyze(p, sess.Registry))
		return true
	})
	return results
}
