// Package search enumerates minimal winning coalitions: the supersets
// of a fixed baseline selection that satisfy a rule's driving sum
// condition and cannot spare any single added group.
package search

import (
	"errors"
	"fmt"

	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/engine"
	"github.com/liamcoop/quorum/internal/logger"
)

// ErrTooManyGroups is returned when the number of non-baseline groups
// exceeds Options.MaxFreeGroups. The search space is the power set of
// the non-baseline groups, so a hard ceiling keeps pathological bodies
// from blocking the caller indefinitely.
var ErrTooManyGroups = errors.New("too many non-baseline groups")

// DefaultMaxFreeGroups bounds the exponential search space to 2^25
// nodes before pruning
const DefaultMaxFreeGroups = 25

// Options control the search's resource ceilings
type Options struct {
	// MaxFreeGroups caps the number of non-baseline groups; exceeding
	// it rejects the search with ErrTooManyGroups. 0 means
	// DefaultMaxFreeGroups.
	MaxFreeGroups int

	// NodeBudget caps the number of visited search nodes; exhausting it
	// stops the search and marks the result truncated. 0 means no
	// budget.
	NodeBudget int
}

// Coalition is one minimal winning coalition: the baseline groups plus
// the added groups, with the driving metric's accumulated sum
type Coalition struct {
	Groups []body.Group `json:"groups"`
	Sum    float64      `json:"sum"`
}

// Result holds the enumerated coalitions in discovery order. Callers
// wanting smallest-first must sort afterwards.
type Result struct {
	Coalitions []Coalition `json:"coalitions"`
	Baseline   []string    `json:"baseline,omitempty"`

	// Truncated is set when the node budget ran out before the space
	// was exhausted; the coalitions found so far are still valid.
	Truncated bool `json:"truncated,omitempty"`

	// Nodes is the number of search nodes visited
	Nodes int `json:"nodes"`
}

type searcher struct {
	op        string
	threshold float64
	free      []body.Group
	values    []float64
	suffixPos []float64
	prune     bool

	baseline []body.Group
	budget   int

	nodes      int
	truncated  bool
	coalitions []Coalition
}

// FindMinimalWinningCoalitions enumerates every minimal coalition,
// extending baselineIDs, that satisfies the driving condition of the
// rule identified by ruleID: the rule's first sum condition on the
// body's default metric.
//
// Missing rule, driving condition or default metric yield an empty
// result and a nil error; the only error is ErrTooManyGroups. Unknown
// rule ids fall back to the first declared rule (documented fail-soft
// behavior, reported through the logger).
func FindMinimalWinningCoalitions(b *body.GoverningBody, baselineIDs []string, ruleID string, opts Options) (Result, error) {
	if len(b.Rules) == 0 {
		return Result{Baseline: baselineIDs}, nil
	}

	rule, ok := b.RuleByID(ruleID)
	if !ok {
		rule = b.Rules[0]
		logger.Warn("rule not found, falling back to first declared rule",
			"body", b.ID, "rule", ruleID, "fallback", rule.ID)
	}

	metric, ok := b.DefaultMetric()
	if !ok {
		return Result{Baseline: baselineIDs}, nil
	}

	driving, ok := drivingCondition(rule, metric)
	if !ok {
		return Result{Baseline: baselineIDs}, nil
	}

	var spec body.ThresholdSpec
	if driving.Threshold != nil {
		spec = *driving.Threshold
	}
	threshold := engine.ResolveThreshold(spec, metric, b)

	inBaseline := make(map[string]bool, len(baselineIDs))
	for _, id := range baselineIDs {
		inBaseline[id] = true
	}

	baseline := b.SelectGroups(baselineIDs)

	var free []body.Group
	for _, g := range b.Groups {
		if !inBaseline[g.ID] {
			free = append(free, g)
		}
	}

	maxFree := opts.MaxFreeGroups
	if maxFree <= 0 {
		maxFree = DefaultMaxFreeGroups
	}
	if len(free) > maxFree {
		return Result{Baseline: baselineIDs}, fmt.Errorf("%w: %d non-baseline groups, limit %d",
			ErrTooManyGroups, len(free), maxFree)
	}

	values := make([]float64, len(free))
	for i, g := range free {
		v, _ := g.Value(metric)
		values[i] = v
	}

	// Upper bound on the sum any extension of a node can still reach:
	// only positive contributions can help, so summing those keeps the
	// bound sound even when some metric values are negative.
	suffixPos := make([]float64, len(free)+1)
	for i := len(free) - 1; i >= 0; i-- {
		suffixPos[i] = suffixPos[i+1]
		if values[i] > 0 {
			suffixPos[i] += values[i]
		}
	}

	s := &searcher{
		op:        driving.Op,
		threshold: threshold,
		free:      free,
		values:    values,
		suffixPos: suffixPos,
		prune:     engine.LowerBoundOp(driving.Op),
		baseline:  baseline,
		budget:    opts.NodeBudget,
	}

	s.dfs(0, body.Sum(baseline, metric), nil)

	if s.truncated {
		logger.TruncatedSearches.Add(1)
		logger.Warn("coalition search truncated by node budget",
			"body", b.ID, "rule", rule.ID, "nodes", s.nodes)
	}

	return Result{
		Coalitions: s.coalitions,
		Baseline:   baselineIDs,
		Truncated:  s.truncated,
		Nodes:      s.nodes,
	}, nil
}

// drivingCondition picks the rule's first sum condition on the default
// metric. The search drives off a single threshold; joint satisfaction
// of the full rule can be rechecked with engine.EvaluateRule afterwards.
func drivingCondition(rule body.Rule, defaultMetric string) (body.Condition, bool) {
	for _, c := range rule.Conditions {
		if c.Kind == body.CondSum && c.Metric == defaultMetric {
			return c, true
		}
	}
	return body.Condition{}, false
}

// dfs explores including or excluding each free group in declaration
// order. chosen holds indices into s.free for the groups included on
// the current path.
func (s *searcher) dfs(idx int, sum float64, chosen []int) {
	if s.truncated {
		return
	}
	s.nodes++
	if s.budget > 0 && s.nodes > s.budget {
		s.truncated = true
		return
	}

	if engine.Compare(s.op, sum, s.threshold) {
		// Winning. Minimal only if removing any single added group
		// breaks satisfaction; a redundant member means some subset on
		// another branch wins with less, so this branch is abandoned
		// either way. The search never grows a winning coalition.
		for _, ci := range chosen {
			if engine.Compare(s.op, sum-s.values[ci], s.threshold) {
				return
			}
		}
		s.record(chosen, sum)
		return
	}

	if idx == len(s.free) {
		return
	}

	// For lower-bound operators the remaining positive values bound
	// what this subtree can still add; if even that cannot win, skip it.
	if s.prune && !engine.Compare(s.op, sum+s.suffixPos[idx], s.threshold) {
		return
	}

	s.dfs(idx+1, sum+s.values[idx], append(chosen, idx))
	s.dfs(idx+1, sum, chosen)
}

func (s *searcher) record(chosen []int, sum float64) {
	groups := make([]body.Group, 0, len(s.baseline)+len(chosen))
	groups = append(groups, s.baseline...)
	for _, ci := range chosen {
		groups = append(groups, s.free[ci])
	}
	s.coalitions = append(s.coalitions, Coalition{Groups: groups, Sum: sum})
}
