// Package analyzer is the elaborator's bidirectional typechecker (spec
// §4.6): check/infer over the term language, declaration-level
// elaboration of data/codata/def/codef/let/infix, dependent
// pattern/copattern match elaboration with exhaustiveness checking, and
// conversion checking with metavariable solving.
//
// The teacher's internal/analyzer splits by concern across many files
// (inference.go, inference_solver.go, declarations*.go, statements.go) —
// a single InferenceContext threading a constraint queue and a
// GlobalSubst through a Hindley-Milner-flavored inferencer. This rewrite
// keeps that same "split by concern, thread one context" discipline, but
// there is no deferred constraint queue: a dependent bidirectional
// checker solves each equation (conversion, or index unification at a
// match) the moment it is encountered, against the already-built
// *symbols.Context and *meta.Store, matching spec §4.6's "checking
// proceeds declaration by declaration, left to right".
package analyzer

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/evaluator"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// Convert checks that lhs and rhs denote the same value up to reduction
// (spec §4.4 "Conversion checking"). Checking solves metavariables as a
// side effect (spec §4.7): whenever one side is an unsolved, unapplied
// metavariable, the other side's value is read back — at the
// metavariable's own recorded allocation depth, not the depth of this
// particular Convert call (see solveMeta) — and recorded as its
// solution, after an occurs check and a scope check.
func Convert(sig *symbols.Signature, store *meta.Store, lhs, rhs typesystem.Value, budget *evaluator.Budget) error {
	lhs, err := evaluator.Force(sig, store, lhs, budget)
	if err != nil {
		return err
	}
	rhs, err = evaluator.Force(sig, store, rhs, budget)
	if err != nil {
		return err
	}

	if ln, ok := lhs.(typesystem.VNeutral); ok {
		if hm, ok := ln.Head.(typesystem.HMeta); ok {
			if e := store.Get(hm.ID); e.Status == meta.Unsolved {
				return solveMeta(sig, store, hm.ID, ln.Spine, rhs, budget)
			}
		}
	}
	if rn, ok := rhs.(typesystem.VNeutral); ok {
		if hm, ok := rn.Head.(typesystem.HMeta); ok {
			if e := store.Get(hm.ID); e.Status == meta.Unsolved {
				return solveMeta(sig, store, hm.ID, rn.Spine, lhs, budget)
			}
		}
	}

	switch l := lhs.(type) {
	case typesystem.VType:
		if _, ok := rhs.(typesystem.VType); ok {
			return nil
		}
		return mismatch(lhs, rhs)

	case typesystem.VTyCtor:
		r, ok := rhs.(typesystem.VTyCtor)
		if !ok || r.Name != l.Name || len(r.Args) != len(l.Args) {
			return mismatch(lhs, rhs)
		}
		return convertAll(sig, store, l.Args, r.Args, budget)

	case typesystem.VCtor:
		r, ok := rhs.(typesystem.VCtor)
		if !ok || r.Name != l.Name || len(r.Args) != len(l.Args) {
			return mismatch(lhs, rhs)
		}
		return convertAll(sig, store, l.Args, r.Args, budget)

	case typesystem.VNeutral:
		r, ok := rhs.(typesystem.VNeutral)
		if !ok || !headsConvertible(l.Head, r.Head) || len(l.Spine) != len(r.Spine) {
			return mismatch(lhs, rhs)
		}
		for i := range l.Spine {
			if err := convertElim(sig, store, l.Spine[i], r.Spine[i], budget); err != nil {
				return err
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("analyzer: unhandled value %T in Convert — structural bug, not a user error", lhs))
	}
}

func convertAll(sig *symbols.Signature, store *meta.Store, ls, rs []typesystem.Value, budget *evaluator.Budget) error {
	for i := range ls {
		if err := Convert(sig, store, ls[i], rs[i], budget); err != nil {
			return err
		}
	}
	return nil
}

func convertElim(sig *symbols.Signature, store *meta.Store, l, r typesystem.Elim, budget *evaluator.Budget) error {
	switch le := l.(type) {
	case typesystem.ElimApp:
		re, ok := r.(typesystem.ElimApp)
		if !ok || len(re.Args) != len(le.Args) {
			return diagnostics.Newf(diagnostics.ErrTypeMismatch, diagnostics.Span{}, "spine shape mismatch")
		}
		return convertAll(sig, store, le.Args, re.Args, budget)
	case typesystem.ElimDtor:
		re, ok := r.(typesystem.ElimDtor)
		if !ok || re.Name != le.Name || len(re.Args) != len(le.Args) {
			return diagnostics.Newf(diagnostics.ErrTypeMismatch, diagnostics.Span{}, "destructor spine mismatch")
		}
		return convertAll(sig, store, le.Args, re.Args, budget)
	case typesystem.ElimMatch:
		// Two stuck matches on the same neutral scrutinee are convertible
		// only if clause-for-clause their bodies are (conservatively
		// requiring the same clause count and head order, rather than a
		// full permutation search).
		re, ok := r.(typesystem.ElimMatch)
		if !ok || len(re.Clauses) != len(le.Clauses) {
			return diagnostics.Newf(diagnostics.ErrTypeMismatch, diagnostics.Span{}, "stuck match shape mismatch")
		}
		for i := range le.Clauses {
			if le.Clauses[i].Clause.Pattern.Head != re.Clauses[i].Clause.Pattern.Head {
				return diagnostics.Newf(diagnostics.ErrTypeMismatch, diagnostics.Span{}, "stuck match clause head mismatch")
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("analyzer: unhandled elim %T in convertElim — structural bug, not a user error", l))
	}
}

func headsConvertible(l, r typesystem.Head) bool {
	switch lh := l.(type) {
	case typesystem.HVar:
		rh, ok := r.(typesystem.HVar)
		return ok && rh.Level == lh.Level
	case typesystem.HMeta:
		rh, ok := r.(typesystem.HMeta)
		return ok && rh.ID == lh.ID
	case typesystem.HCall:
		rh, ok := r.(typesystem.HCall)
		return ok && rh.Name == lh.Name
	case typesystem.HComatch:
		// Two distinct inline comatches are never syntactically the same
		// head, and Convert does not compare codata values destructor by
		// destructor (it does not have the codata type's destructor list
		// here), so two comatch heads are never convertible.
		return false
	}
	return false
}

func mismatch(lhs, rhs typesystem.Value) error {
	return diagnostics.Newf(diagnostics.ErrTypeMismatch, diagnostics.Span{}, "not convertible: %s vs %s", describeValue(lhs), describeValue(rhs))
}

func describeValue(v typesystem.Value) string {
	switch t := v.(type) {
	case typesystem.VType:
		return "Type"
	case typesystem.VCtor:
		return t.Name
	case typesystem.VTyCtor:
		return t.Name
	case typesystem.VNeutral:
		switch h := t.Head.(type) {
		case typesystem.HVar:
			return h.Name
		case typesystem.HMeta:
			return fmt.Sprintf("?m%d", h.ID)
		case typesystem.HCall:
			return h.Name
		case typesystem.HComatch:
			return "<comatch>"
		}
	}
	return "<value>"
}

// solveMeta records other as metavariable id's solution (spec §4.7).
// Because holes in this language are nullary occurrences (there is no
// lambda value to apply a metavariable to — codata subsumes function
// types, and a metavariable never stands for a destructor), a flexible
// meta's spine is always empty by construction; Miller-pattern spine
// abstraction accordingly degenerates to a direct scope check against
// the context depth recorded at allocation, which is what is implemented
// here. A meta that has picked up a destructor projection before being
// solved (spine non-empty) cannot be solved by this simple rule and is
// reported instead.
func solveMeta(sig *symbols.Signature, store *meta.Store, id int, spine []typesystem.Elim, other typesystem.Value, budget *evaluator.Budget) error {
	if len(spine) != 0 {
		return diagnostics.Newf(diagnostics.ErrMetaConflict, diagnostics.Span{}, "?m%d has pending projections and cannot be solved directly", id)
	}

	entry := store.Get(id)

	if occursIn(other, id) {
		return diagnostics.Newf(diagnostics.ErrOccursCheck, entry.Span, "?m%d occurs in its own solution", id)
	}
	if level, out := outOfScope(other, entry.Depth); out {
		return diagnostics.Newf(diagnostics.ErrScopeViolation, entry.Span, "?m%d's solution mentions variable at level %d, out of its scope (depth %d)", id, level, entry.Depth)
	}

	// Read back at the meta's own recorded depth, not the (possibly
	// deeper) depth of whichever Convert call first triggered the solve:
	// the scope check above already guarantees every free variable other
	// mentions is below entry.Depth, and the stored term's indices must
	// stay meaningful however deep the context is the next time this same
	// solved meta recurs (internal/evaluator.Force re-evaluates it against
	// the identity environment of exactly entry.Depth).
	term, err := evaluator.Readback(sig, store, entry.Depth, other, budget)
	if err != nil {
		return err
	}
	return store.Solve(id, term)
}

func occursIn(v typesystem.Value, id int) bool {
	switch t := v.(type) {
	case typesystem.VCtor:
		return anyOccurs(t.Args, id)
	case typesystem.VTyCtor:
		return anyOccurs(t.Args, id)
	case typesystem.VNeutral:
		if hm, ok := t.Head.(typesystem.HMeta); ok && hm.ID == id {
			return true
		}
		for _, e := range t.Spine {
			if elimOccurs(e, id) {
				return true
			}
		}
	}
	return false
}

func anyOccurs(vs []typesystem.Value, id int) bool {
	for _, v := range vs {
		if occursIn(v, id) {
			return true
		}
	}
	return false
}

func elimOccurs(e typesystem.Elim, id int) bool {
	switch el := e.(type) {
	case typesystem.ElimApp:
		return anyOccurs(el.Args, id)
	case typesystem.ElimDtor:
		return anyOccurs(el.Args, id)
	case typesystem.ElimMatch:
		return false
	}
	return false
}

// outOfScope reports the first free-variable level in v, if any, at or
// above maxLevel (the metavariable's recorded scope depth).
func outOfScope(v typesystem.Value, maxLevel int) (int, bool) {
	switch t := v.(type) {
	case typesystem.VCtor:
		return anyOutOfScope(t.Args, maxLevel)
	case typesystem.VTyCtor:
		return anyOutOfScope(t.Args, maxLevel)
	case typesystem.VNeutral:
		if hv, ok := t.Head.(typesystem.HVar); ok && hv.Level >= maxLevel {
			return hv.Level, true
		}
		for _, e := range t.Spine {
			if lvl, out := elimOutOfScope(e, maxLevel); out {
				return lvl, true
			}
		}
	}
	return 0, false
}

func anyOutOfScope(vs []typesystem.Value, maxLevel int) (int, bool) {
	for _, v := range vs {
		if lvl, out := outOfScope(v, maxLevel); out {
			return lvl, true
		}
	}
	return 0, false
}

func elimOutOfScope(e typesystem.Elim, maxLevel int) (int, bool) {
	switch el := e.(type) {
	case typesystem.ElimApp:
		return anyOutOfScope(el.Args, maxLevel)
	case typesystem.ElimDtor:
		return anyOutOfScope(el.Args, maxLevel)
	}
	return 0, false
}
