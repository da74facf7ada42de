// Package engine evaluates a governing body's rules against candidate
// coalitions: comparison operators, threshold resolution, per-condition
// and per-rule evaluation, and the body store/cache the HTTP layer sits
// on. Bad domain data degrades to "not satisfied"; nothing here panics
// or returns an error for it.
package engine

import "github.com/liamcoop/quorum/internal/logger"

// Comparison operators accepted in conditions
const (
	OpGT = ">"
	OpGE = ">="
	OpLT = "<"
	OpLE = "<="
	OpEQ = "=="
	OpEq = "="
	OpNE = "!="
)

// Compare applies a comparison operator to two float64 values.
// Unknown operators are reported and compare false (fail-closed).
// Equality is exact IEEE-754 equality; callers should avoid == on
// derived sums unless the values are integral, e.g. seat counts.
func Compare(op string, a, b float64) bool {
	switch op {
	case OpGT:
		return a > b
	case OpGE:
		return a >= b
	case OpLT:
		return a < b
	case OpLE:
		return a <= b
	case OpEQ, OpEq:
		return a == b
	case OpNE:
		return a != b
	default:
		logger.UnknownOperators.Add(1)
		logger.Warn("unknown comparison operator", "op", op)
		return false
	}
}

// LowerBoundOp reports whether the operator is satisfied by growing the
// left-hand side, i.e. whether "more sum can only help". The search
// relies on this to know when its upper-bound pruning is sound.
func LowerBoundOp(op string) bool {
	return op == OpGT || op == OpGE
}
