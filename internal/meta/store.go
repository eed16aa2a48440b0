// Package meta is the elaborator's metavariable store (spec §3, §4.7): a
// global, append-only table from metavariable id to its solution, if any.
// Solutions are terms (not values), re-evaluated under the environment at
// each use site, per spec §4.7.
package meta

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
)

// Status is whether a metavariable has been solved yet.
type Status int

const (
	Unsolved Status = iota
	Solved
)

// Entry is one metavariable's record.
type Entry struct {
	ID     int
	Span   diagnostics.Span
	Kind   ast.HoleKind
	// Depth is the number of De Bruijn levels in scope where this
	// metavariable was allocated; a solution is well-scoped only if every
	// free variable it mentions is below Depth (spec §4.7 scope check).
	Depth int
	// Name, if non-empty, is a user-facing hint (e.g. the name of the
	// implicit parameter this hole was lowered from) purely for
	// diagnostics.
	Name string

	Status   Status
	Solution ast.Expr // nil while Unsolved
}

// Store is the module's single metavariable table, threaded explicitly
// through elaboration (never a package-level global — spec §5 forbids
// sharing core state across threads implicitly, and spec §9 calls out
// "pass an explicit store handle through elaboration" as the chosen
// strategy over a process-wide global).
type Store struct {
	entries []*Entry
}

// NewStore allocates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Fresh allocates a new, unsolved metavariable bound over a context of
// the given depth (spec §4.6 "Hole{must_solve}": "allocate a fresh
// metavariable bound over the current context"). IDs are monotonically
// increasing, matching spec §5's determinism guarantee.
func (s *Store) Fresh(span diagnostics.Span, kind ast.HoleKind, depth int, name string) *Entry {
	e := &Entry{
		ID:    len(s.entries),
		Span:  span,
		Kind:  kind,
		Depth: depth,
		Name:  name,
	}
	s.entries = append(s.entries, e)
	return e
}

// Get looks up a metavariable by id. Looking up an id this store never
// allocated is a structural bug (spec §4.1's convention for out-of-range
// lookups), not a user error, so it panics.
func (s *Store) Get(id int) *Entry {
	if id < 0 || id >= len(s.entries) {
		panic(fmt.Sprintf("meta: out-of-range metavariable id %d", id))
	}
	return s.entries[id]
}

// Solve records term as α's solution, after an occurs check (α must not
// appear in term) and a scope check (every free variable term mentions
// must be below α's recorded Depth). Both checks are the caller's
// responsibility to perform with full knowledge of term's free variables
// (the conversion checker, which already walks the value being
// abstracted) — Solve itself only enforces the invariant that a solved
// entry is never resolved again (spec invariant 3: "once solved it is
// never unsolved").
func (s *Store) Solve(id int, term ast.Expr) error {
	e := s.Get(id)
	if e.Status == Solved {
		return fmt.Errorf("meta: ?m%d is already solved, cannot re-solve", id)
	}
	e.Status = Solved
	e.Solution = term
	return nil
}

// All returns every entry in allocation order, for declaration
// finalization (spec §4.6 "Finalization").
func (s *Store) All() []*Entry {
	return s.entries
}

// Unsolved returns the subset of entries still unsolved, in allocation
// order.
func (s *Store) Unsolved() []*Entry {
	var out []*Entry
	for _, e := range s.entries {
		if e.Status == Unsolved {
			out = append(out, e)
		}
	}
	return out
}
