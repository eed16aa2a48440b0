package ast

import "github.com/polarity-go/elaborator/internal/diagnostics"

// Binder is one fresh name introduced by a pattern or copattern; a
// wildcard binder still gets a synthesized name (never silently dropped)
// so diagnostics inside its scope, however unlikely, can still refer to
// it by position.
type Binder struct {
	Span     diagnostics.Span
	Name     string
	Wildcard bool
}

// Pattern is the shared shape of patterns and copatterns (spec §3): a
// head naming the constructor/destructor and a list of fresh binders.
type Pattern struct {
	Span    diagnostics.Span
	Head    string
	Binders []Binder
}

// Clause is one arm of a match or comatch. IsAbsurd marks an Absurd
// clause (spec §3): Body is nil and the typechecker must instead derive
// False via index unification (spec §4.5).
type Clause struct {
	Span    diagnostics.Span
	Pattern Pattern
	Body    Expr // nil iff IsAbsurd
	IsAbsurd bool
}
