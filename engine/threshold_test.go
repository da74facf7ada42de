package engine

import (
	"encoding/json"
	"testing"

	"github.com/liamcoop/quorum/body"
)

func mustBody(t *testing.T, doc string) *body.GoverningBody {
	t.Helper()
	var b body.GoverningBody
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		t.Fatalf("failed to decode body document: %v", err)
	}
	return &b
}

// seatsBody has a seats total of 100 derived from its groups, and a
// members metric with an explicit total of 200.
func seatsBody(t *testing.T) *body.GoverningBody {
	t.Helper()
	return mustBody(t, `{
		"id": "b",
		"metrics": {
			"seats": {"label": "Seats", "default": true},
			"members": {"label": "Members", "total": 200}
		},
		"groups": [
			{"id": "a", "values": {"seats": 60, "members": 10}},
			{"id": "b", "values": {"seats": 40, "members": 5}}
		]
	}`)
}

func TestResolveThreshold(t *testing.T) {
	b := seatsBody(t)

	testCases := []struct {
		name string
		spec body.ThresholdSpec
		want float64
	}{
		{"absolute", body.ThresholdSpec{Kind: "absolute", Value: 61}, 61},
		{"absolute with offset", body.ThresholdSpec{Kind: "absolute", Value: 61, Offset: 2}, 63},
		{"percentage passes through", body.ThresholdSpec{Kind: "percentage", Value: 50}, 50},
		{"percentage with offset", body.ThresholdSpec{Kind: "percentage", Value: 50, Offset: 0.5}, 50.5},
		{"fraction of total", body.ThresholdSpec{Kind: "fractionOfTotal", Value: 0.5}, 50},
		{"fraction of total with offset", body.ThresholdSpec{Kind: "fractionOfTotal", Value: 0.5, Offset: 1}, 51},
		{"fraction with metric override", body.ThresholdSpec{Kind: "fractionOfTotal", Value: 0.5, Metric: "members"}, 100},
		{"fraction beyond [0,1] is allowed", body.ThresholdSpec{Kind: "fractionOfTotal", Value: 2}, 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveThreshold(tc.spec, "seats", b); got != tc.want {
				t.Errorf("ResolveThreshold(%+v) = %v, want %v", tc.spec, got, tc.want)
			}
		})
	}
}

func TestResolveThresholdUnknownKind(t *testing.T) {
	b := seatsBody(t)

	// Unknown kinds resolve with absolute semantics instead of failing
	spec := body.ThresholdSpec{Kind: "majorityish", Value: 12, Offset: 3}
	if got := ResolveThreshold(spec, "seats", b); got != 15 {
		t.Errorf("ResolveThreshold(unknown kind) = %v, want 15", got)
	}

	// The zero spec resolves to zero
	if got := ResolveThreshold(body.ThresholdSpec{}, "seats", b); got != 0 {
		t.Errorf("ResolveThreshold(zero spec) = %v, want 0", got)
	}
}

func TestResolveThresholdUsesMetricDefTotal(t *testing.T) {
	b := seatsBody(t)

	// members declares total=200 even though its groups only sum to 15
	spec := body.ThresholdSpec{Kind: "fractionOfTotal", Value: 0.1}
	if got := ResolveThreshold(spec, "members", b); got != 20 {
		t.Errorf("ResolveThreshold over members = %v, want 20 (declared total, not group sum)", got)
	}
}
