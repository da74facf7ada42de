package engine

import (
	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/internal/logger"
)

// RuleResult contains the outcome of evaluating one rule against a
// coalition
type RuleResult struct {
	RuleID    string `json:"ruleId"`
	RuleName  string `json:"ruleName"`
	Satisfied bool   `json:"satisfied"`
}

// EvaluateRule reports whether the coalition satisfies the rule: the
// AND over its conditions. An empty condition list is vacuously
// satisfied. Pure; identical inputs always yield identical output.
func EvaluateRule(b *body.GoverningBody, r body.Rule, coalition []body.Group) bool {
	for _, c := range r.Conditions {
		if !evaluateCondition(b, c, coalition) {
			return false
		}
	}
	return true
}

// evaluateCondition dispatches on the condition kind. Unknown kinds are
// reported and unsatisfied; evaluation of sibling conditions proceeds.
func evaluateCondition(b *body.GoverningBody, c body.Condition, coalition []body.Group) bool {
	switch c.Kind {
	case body.CondSum:
		sum := body.Sum(coalition, c.Metric)
		var spec body.ThresholdSpec
		if c.Threshold != nil {
			spec = *c.Threshold
		}
		return Compare(c.Op, sum, ResolveThreshold(spec, c.Metric, b))
	case body.CondCountGroups:
		return Compare(c.Op, float64(len(coalition)), c.Value)
	default:
		logger.UnknownConditionKinds.Add(1)
		logger.Warn("unknown condition kind, treated as unsatisfied", "kind", c.Kind)
		return false
	}
}

// EvaluateAll evaluates every rule of the body against the selection,
// in the body's declared rule order. Used for reporting, not search.
func EvaluateAll(b *body.GoverningBody, selectedIDs []string) []RuleResult {
	coalition := b.SelectGroups(selectedIDs)

	results := make([]RuleResult, 0, len(b.Rules))
	for _, r := range b.Rules {
		results = append(results, RuleResult{
			RuleID:    r.ID,
			RuleName:  r.Name,
			Satisfied: EvaluateRule(b, r, coalition),
		})
	}
	return results
}
