package ast

import "github.com/polarity-go/elaborator/internal/diagnostics"

// Param is one entry of a telescope: a binder whose type may mention
// earlier binders in the same telescope (spec §3 "Telescopes").
type Param struct {
	Span diagnostics.Span
	Name string
	Ty   Expr
}

// Telescope is an ordered sequence of typed parameters.
type Telescope []Param

// Len is a readability helper; telescopes are plain slices so callers can
// also range/index directly.
func (t Telescope) Len() int { return len(t) }
