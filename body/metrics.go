package body

// DefaultMetric returns the body's default metric id: the explicitly
// flagged metric if one exists, else the first declared metric. The
// second return is false when the body declares no metrics at all;
// callers must degrade (absent, not zero) in that case.
func (b *GoverningBody) DefaultMetric() (string, bool) {
	for _, id := range b.Metrics.order {
		if b.Metrics.defs[id].Default {
			return id, true
		}
	}
	if len(b.Metrics.order) > 0 {
		return b.Metrics.order[0], true
	}
	return "", false
}

// Sum adds the numeric value of metricID across the given groups.
// Groups missing the metric or holding a non-numeric value contribute
// zero. Total absence across all groups yields zero; Sum never fails.
func Sum(groups []Group, metricID string) float64 {
	var total float64
	for _, g := range groups {
		if v, ok := g.Value(metricID); ok {
			total += v
		}
	}
	return total
}

// Total returns the metric's precomputed total if the MetricDef carries
// one, else the sum over all of the body's groups. Bodies use the
// override to account for e.g. non-voting seats, so callers needing a
// total must go through here rather than summing raw group values.
func (b *GoverningBody) Total(metricID string) float64 {
	if def, ok := b.Metrics.Get(metricID); ok && def.Total != nil {
		return *def.Total
	}
	return Sum(b.Groups, metricID)
}

// SelectGroups resolves a set of group ids to the body's groups in
// declaration order. Unknown ids are dropped; duplicates in the input
// select a group once.
func (b *GoverningBody) SelectGroups(ids []string) []Group {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var selected []Group
	for _, g := range b.Groups {
		if want[g.ID] {
			selected = append(selected, g)
		}
	}
	return selected
}

// Group returns the group with the given id
func (b *GoverningBody) Group(id string) (Group, bool) {
	for _, g := range b.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// RuleByID returns the rule with the given id
func (b *GoverningBody) RuleByID(id string) (Rule, bool) {
	for _, r := range b.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
