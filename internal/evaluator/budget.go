package evaluator

import "fmt"

// Budget bounds the number of reduction steps Eval will take before
// giving up, so that a non-terminating program (spec §4.2 "the evaluator
// does not enforce termination... non-terminating programs may diverge
// during type checking") cannot hang the typechecker forever — spec §9's
// "configurable step budget for use in tooling". A Limit of 0 means
// unbounded, matching the evaluator's default, uninstrumented behavior.
type Budget struct {
	Limit int
	steps int
}

// NewBudget constructs a budget with the given step limit (0 = unbounded).
func NewBudget(limit int) *Budget {
	return &Budget{Limit: limit}
}

// Unbounded is a convenience budget that never trips.
func Unbounded() *Budget {
	return &Budget{Limit: 0}
}

// tick charges one reduction step and returns ErrStepBudgetExceeded once
// the limit has been passed; every later call returns it too (the caller
// is expected to abort immediately on the first error).
func (b *Budget) tick() error {
	if b == nil || b.Limit <= 0 {
		return nil
	}
	b.steps++
	if b.steps > b.Limit {
		return ErrStepBudgetExceeded
	}
	return nil
}

// ErrStepBudgetExceeded is returned by Eval when a Budget's step limit is
// reached. It is a sentinel, not a structural-bug panic: a budget trip is
// an expected, recoverable outcome the typechecker can report as a
// diagnostic rather than crash on.
var ErrStepBudgetExceeded = fmt.Errorf("evaluator: step budget exceeded")
