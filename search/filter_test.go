package search

import (
	"testing"
)

func TestCompileFilterError(t *testing.T) {
	if _, err := CompileFilter(`sum >`); err == nil {
		t.Error("CompileFilter should reject a syntax error")
	}
	if _, err := CompileFilter(`nonsense_var > 1`); err == nil {
		t.Error("CompileFilter should reject undeclared variables")
	}
}

func TestFilterApply(t *testing.T) {
	b := parliament(t)
	res, err := FindMinimalWinningCoalitions(b, nil, "majority", Options{})
	if err != nil {
		t.Fatalf("FindMinimalWinningCoalitions() failed: %v", err)
	}

	testCases := []struct {
		name string
		expr string
		want []string
	}{
		{
			"pairs only",
			`size == 2`,
			[]string{"a,b"},
		},
		{
			"sum ceiling",
			`sum <= 55.0`,
			[]string{"a,b", "a,d,e", "b,c,e"},
		},
		{
			"member exclusion",
			`!("a" in groups)`,
			[]string{"b,c,d", "b,c,e"},
		},
		{
			"everything",
			`true`,
			[]string{"a,b", "a,c,d", "a,c,e", "a,d,e", "b,c,d", "b,c,e"},
		},
		{
			"nothing",
			`false`,
			nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := CompileFilter(tc.expr)
			if err != nil {
				t.Fatalf("CompileFilter(%q) failed: %v", tc.expr, err)
			}

			filtered := f.Apply(res)
			got := sortedKeys(keys(filtered))
			if len(got) != len(tc.want) {
				t.Fatalf("Apply(%q) kept %v, want %v", tc.expr, got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("Apply(%q) kept %v, want %v", tc.expr, got, tc.want)
					break
				}
			}
		})
	}
}

func TestFilterAddedVariable(t *testing.T) {
	b := parliament(t)
	res, err := FindMinimalWinningCoalitions(b, []string{"e"}, "majority", Options{})
	if err != nil {
		t.Fatalf("FindMinimalWinningCoalitions() failed: %v", err)
	}

	f, err := CompileFilter(`size(added) <= 2`)
	if err != nil {
		t.Fatalf("CompileFilter() failed: %v", err)
	}

	filtered := f.Apply(res)
	if len(filtered.Coalitions) == 0 {
		t.Fatal("expected coalitions with at most two added members")
	}
	for _, c := range filtered.Coalitions {
		if len(c.Groups) > 3 { // baseline e plus at most two added
			t.Errorf("coalition {%s} has more than two added members", key(c.Groups))
		}
	}
}

func TestFilterNonBooleanExcludes(t *testing.T) {
	b := parliament(t)
	res, err := FindMinimalWinningCoalitions(b, nil, "majority", Options{})
	if err != nil {
		t.Fatalf("FindMinimalWinningCoalitions() failed: %v", err)
	}

	// A double-valued expression compiles but never yields a boolean
	f, err := CompileFilter(`sum`)
	if err != nil {
		t.Fatalf("CompileFilter() failed: %v", err)
	}
	if filtered := f.Apply(res); len(filtered.Coalitions) != 0 {
		t.Error("non-boolean filter outcomes must exclude coalitions")
	}
}
