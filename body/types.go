// Package body defines the governing-body document model: groups holding
// shares of one or more metrics, and rules made of threshold conditions
// that coalitions of groups are evaluated against.
package body

import "encoding/json"

// Condition kinds. Anything else is treated as unsatisfied (fail-closed).
const (
	CondSum         = "sum"
	CondCountGroups = "countGroups"
)

// Threshold kinds. Anything else resolves with absolute semantics.
const (
	ThresholdAbsolute        = "absolute"
	ThresholdPercentage      = "percentage"
	ThresholdFractionOfTotal = "fractionOfTotal"
)

// GoverningBody is a parliament, council or board: an ordered set of
// groups, the metrics they hold shares of, and the rules coalitions are
// checked against. Immutable once loaded; the evaluator and search never
// mutate it.
type GoverningBody struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Meta    map[string]string `json:"meta,omitempty"`
	Metrics MetricSet         `json:"metrics,omitempty"`
	Groups  []Group           `json:"groups,omitempty"`
	Rules   []Rule            `json:"rules,omitempty"`
}

// MetricDef describes one metric of a body
type MetricDef struct {
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`

	// Total overrides the sum of group values (e.g. to include
	// non-voting seats). Nil means "derive from the groups".
	Total *float64 `json:"total,omitempty"`

	// Default marks this metric as the body's default. At most one
	// metric per body should carry it.
	Default bool `json:"default,omitempty"`
}

// Group is a faction or member block holding metric shares
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`

	// Values maps metric id to a raw JSON value. Absence is distinct
	// from zero; non-numeric values count as absent for aggregation.
	Values map[string]json.RawMessage `json:"values,omitempty"`

	// Presentation metadata, opaque to the evaluation core
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Value returns the numeric value the group holds for a metric.
// The second return is false when the metric is absent or non-numeric.
func (g Group) Value(metricID string) (float64, bool) {
	raw, ok := g.Values[metricID]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Rule is satisfied by a coalition iff all of its conditions are
// satisfied. There is no OR/NOT composition in this model; that is a
// documented limitation, not a bug.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Condition is a kind-tagged variant. For CondSum, Metric, Op and
// Threshold apply; for CondCountGroups, Op and Value apply.
type Condition struct {
	Kind      string         `json:"kind"`
	Metric    string         `json:"metric,omitempty"`
	Op        string         `json:"op"`
	Threshold *ThresholdSpec `json:"threshold,omitempty"`
	Value     float64        `json:"value,omitempty"`
}

// ThresholdSpec declares how a concrete threshold number is derived.
// For ThresholdFractionOfTotal, Metric optionally overrides the metric
// whose total the fraction applies to.
type ThresholdSpec struct {
	Kind   string  `json:"kind"`
	Value  float64 `json:"value"`
	Offset float64 `json:"offset,omitempty"`
	Metric string  `json:"metric,omitempty"`
}
