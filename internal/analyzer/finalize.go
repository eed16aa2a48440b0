package analyzer

import (
	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
)

// Finalize checks that every metavariable marked MustSolve (spec §4.6
// "Finalization": a Hole{must_solve} left unsolved at the end of a
// declaration is an error, but a Hole{can_solve} may legitimately remain
// open, to be resolved by a later declaration's use) has in fact been
// solved, reporting E-META-UNSOLVED for any that has not. It walks every
// unsolved metavariable in the module's store, including ones left over
// from earlier declarations; the Bag's (span, code) dedup keeps such a
// repeat from being recorded twice. It is meant to run
// once after an entire declaration (data/codata/def/codef/let) has
// finished elaborating, not per-expression, so a hole solved by a
// sibling clause checked later in the same declaration still counts.
func (c *Checker) Finalize() {
	for _, e := range c.Store.Unsolved() {
		if e.Kind != ast.MustSolve {
			continue
		}
		name := e.Name
		if name == "" {
			name = "?"
		}
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrMetaUnsolved, e.Span, "metavariable %s (?m%d) was never solved", name, e.ID))
	}
}
