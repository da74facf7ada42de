package body

import "fmt"

// Validate checks structural invariants on ingest: a non-empty body id
// and unique group and rule ids. The evaluation core itself never
// validates; it degrades on bad data instead of rejecting it, so this
// is only called where documents enter the system.
func (b *GoverningBody) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("body has no id")
	}

	groupIDs := make(map[string]bool, len(b.Groups))
	for _, g := range b.Groups {
		if g.ID == "" {
			return fmt.Errorf("body %s: group with empty id", b.ID)
		}
		if groupIDs[g.ID] {
			return fmt.Errorf("body %s: duplicate group id %q", b.ID, g.ID)
		}
		groupIDs[g.ID] = true
	}

	ruleIDs := make(map[string]bool, len(b.Rules))
	for _, r := range b.Rules {
		if ruleIDs[r.ID] {
			return fmt.Errorf("body %s: duplicate rule id %q", b.ID, r.ID)
		}
		ruleIDs[r.ID] = true
	}

	return nil
}
