package search

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/quorum/internal/logger"
)

// Filter narrows a search result with a CEL expression evaluated per
// coalition. Available variables:
//
//	sum    (double)       the driving metric's coalition sum
//	size   (int)          number of groups in the coalition
//	groups (list<string>) ids of all coalition members
//	added  (list<string>) ids of the non-baseline members
//
// Filtering is post hoc; it never affects which coalitions are minimal.
type Filter struct {
	expr string
	prog cel.Program
}

// CompileFilter compiles a filter expression. Compilation failures are
// returned to the caller; they are the one place bad input is an error
// rather than a degraded result, since a broken expression can only
// come from the caller itself.
func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("sum", cel.DoubleType),
		cel.Variable("size", cel.IntType),
		cel.Variable("groups", cel.ListType(cel.StringType)),
		cel.Variable("added", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	// Cost limit prevents resource exhaustion from runaway expressions
	prog, err := env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	return &Filter{expr: expr, prog: prog}, nil
}

// Apply returns a copy of the result keeping only coalitions the
// expression accepts. Evaluation errors and non-boolean outcomes
// exclude the coalition (fail-closed) and are reported, not raised.
func (f *Filter) Apply(res Result) Result {
	inBaseline := make(map[string]bool, len(res.Baseline))
	for _, id := range res.Baseline {
		inBaseline[id] = true
	}

	kept := make([]Coalition, 0, len(res.Coalitions))
	for _, c := range res.Coalitions {
		if f.keep(c, inBaseline) {
			kept = append(kept, c)
		}
	}

	out := res
	out.Coalitions = kept
	return out
}

func (f *Filter) keep(c Coalition, inBaseline map[string]bool) bool {
	groups := make([]string, 0, len(c.Groups))
	added := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, g.ID)
		if !inBaseline[g.ID] {
			added = append(added, g.ID)
		}
	}

	out, _, err := f.prog.Eval(map[string]any{
		"sum":    c.Sum,
		"size":   len(c.Groups),
		"groups": groups,
		"added":  added,
	})
	if err != nil {
		logger.Warn("coalition filter evaluation failed", "expr", f.expr, "error", err.Error())
		return false
	}

	keep, ok := out.Value().(bool)
	return ok && keep
}
