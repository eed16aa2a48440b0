package evaluator

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// applyCall dispatches a saturated call to its signature entry (spec
// §4.2 "Call to ..."): a transparent let substitutes and keeps reducing;
// an opaque let, a def stuck on a non-constructor scrutinee, or a codef
// (always, since a codef only reduces under a destructor) all produce a
// neutral carrying its own call arguments as the first spine element, so
// a later destructor projection or meta solve can resume the call.
func applyCall(sig *symbols.Signature, store *meta.Store, name string, args []typesystem.Value, budget *Budget) (typesystem.Value, error) {
	if let, ok := sig.Let(name); ok {
		if !let.Transparent {
			return typesystem.VNeutral{Head: typesystem.HCall{Name: name}, Spine: []typesystem.Elim{typesystem.ElimApp{Args: args}}}, nil
		}
		env := typesystem.Env{}.ExtendAll(args)
		return Eval(sig, store, env, let.Body, budget)
	}

	if def, ok := sig.Def(name); ok {
		if len(args) == 0 {
			panic(fmt.Sprintf("evaluator: call to def %q with no self argument — structural bug, not a user error", name))
		}
		self, rest := args[0], args[1:]
		switch s := self.(type) {
		case typesystem.VCtor:
			clause, ok := findClause(def.Clauses, s.Name)
			if !ok {
				panic(fmt.Sprintf("evaluator: def %q has no clause for constructor %q — non-exhaustive match escaped checking", name, s.Name))
			}
			env := typesystem.Env{}.ExtendAll(rest).ExtendAll(s.Args)
			return Eval(sig, store, env, clause.Body, budget)
		case typesystem.VNeutral:
			return typesystem.VNeutral{Head: typesystem.HCall{Name: name}, Spine: []typesystem.Elim{typesystem.ElimApp{Args: args}}}, nil
		default:
			panic(fmt.Sprintf("evaluator: def %q scrutinee reduced to non-constructor, non-neutral value %T — structural bug, not a user error", name, self))
		}
	}

	if _, ok := sig.Codef(name); ok {
		return typesystem.VNeutral{Head: typesystem.HCall{Name: name}, Spine: []typesystem.Elim{typesystem.ElimApp{Args: args}}}, nil
	}

	panic(fmt.Sprintf("evaluator: call to undeclared name %q — structural bug, not a user error (should have been caught during elaboration)", name))
}

// applyDtor projects destructor name (with its own arguments, for a
// destructor that itself takes parameters) onto head. A comatch value
// resolves immediately against its own clause closures; a stuck call to
// a named codef resolves by looking up the codef's clauses and replaying
// its own call arguments first; anything else stays stuck and the
// projection is appended to the neutral's spine (spec §4.2 "Destructor
// projection on a neutral: grow the spine").
func applyDtor(sig *symbols.Signature, store *meta.Store, head typesystem.Value, name string, args []typesystem.Value, budget *Budget) (typesystem.Value, error) {
	n, ok := head.(typesystem.VNeutral)
	if !ok {
		panic(fmt.Sprintf("evaluator: destructor %q projected onto non-neutral, non-codata value %T — structural bug, not a user error", name, head))
	}

	switch h := n.Head.(type) {
	case typesystem.HComatch:
		clause, ok := findClause(h.Clauses, name)
		if !ok {
			panic(fmt.Sprintf("evaluator: comatch has no clause for destructor %q — non-exhaustive match escaped checking", name))
		}
		env := clause.Env.ExtendAll(args)
		return Eval(sig, store, env, clause.Body, budget)

	case typesystem.HCall:
		if codef, ok := sig.Codef(h.Name); ok {
			callArgs := spineCallArgs(n.Spine)
			clause, ok := findClause(codef.Clauses, name)
			if !ok {
				panic(fmt.Sprintf("evaluator: codef %q has no clause for destructor %q — non-exhaustive match escaped checking", h.Name, name))
			}
			env := typesystem.Env{}.ExtendAll(callArgs).ExtendAll(args)
			return Eval(sig, store, env, clause.Body, budget)
		}
		return typesystem.VNeutral{Head: n.Head, Spine: append(append([]typesystem.Elim{}, n.Spine...), typesystem.ElimDtor{Name: name, Args: args})}, nil

	default:
		return typesystem.VNeutral{Head: n.Head, Spine: append(append([]typesystem.Elim{}, n.Spine...), typesystem.ElimDtor{Name: name, Args: args})}, nil
	}
}

// applyMatch resolves a LocalMatch whose scrutinee has just
// reduced to scrut: a constructor value selects and enters its clause;
// a still-neutral scrutinee grows the neutral's spine with the pending
// match so read-back can reify it and conversion can compare two stuck
// matches structurally (spec §4.2 "Match on a neutral scrutinee").
func applyMatch(sig *symbols.Signature, store *meta.Store, scrut typesystem.Value, closures []typesystem.ClauseClosure, motive typesystem.Value, budget *Budget) (typesystem.Value, error) {
	switch s := scrut.(type) {
	case typesystem.VCtor:
		clause, ok := findClause(closures, s.Name)
		if !ok {
			panic(fmt.Sprintf("evaluator: match has no clause for constructor %q — non-exhaustive match escaped checking", s.Name))
		}
		env := clause.Env.ExtendAll(s.Args)
		return Eval(sig, store, env, clause.Body, budget)
	case typesystem.VNeutral:
		return typesystem.VNeutral{Head: s.Head, Spine: append(append([]typesystem.Elim{}, s.Spine...), typesystem.ElimMatch{Clauses: closures, Motive: motive})}, nil
	default:
		panic(fmt.Sprintf("evaluator: match scrutinee reduced to non-constructor, non-neutral value %T — structural bug, not a user error", scrut))
	}
}

// findClause selects the first non-absurd clause whose pattern/copattern
// head matches name, the same left-to-right first-match discipline the
// checker's exhaustiveness/redundancy pass assumes (spec §4.6 step 4).
func findClause(closures []typesystem.ClauseClosure, name string) (typesystem.ClauseClosure, bool) {
	for _, c := range closures {
		if c.Clause.IsAbsurd {
			continue
		}
		if c.Clause.Pattern.Head == name {
			return c, true
		}
	}
	return typesystem.ClauseClosure{}, false
}

// spineCallArgs recovers the original call arguments stashed as the
// first spine element of an HCall neutral (see applyCall).
func spineCallArgs(spine []typesystem.Elim) []typesystem.Value {
	if len(spine) == 0 {
		return nil
	}
	app, ok := spine[0].(typesystem.ElimApp)
	if !ok {
		panic("evaluator: HCall neutral's first spine element is not its call arguments — structural bug, not a user error")
	}
	return app.Args
}

// applySpine replays a neutral's accumulated spine against a newly
// resolved base value, used when a metavariable solve unblocks a
// computation that had been stuck on it (see Force in eval.go). Raw
// application never accumulates on a metavariable's spine — this
// language routes all application through named Call/DtorProj nodes —
// so only destructor projections and stuck matches can appear here.
func applySpine(sig *symbols.Signature, store *meta.Store, base typesystem.Value, spine []typesystem.Elim, budget *Budget) (typesystem.Value, error) {
	var err error
	for _, elim := range spine {
		switch e := elim.(type) {
		case typesystem.ElimDtor:
			base, err = applyDtor(sig, store, base, e.Name, e.Args, budget)
		case typesystem.ElimMatch:
			base, err = applyMatch(sig, store, base, e.Clauses, e.Motive, budget)
		case typesystem.ElimApp:
			panic("evaluator: raw application spine on a solved metavariable — structural bug, not a user error")
		default:
			panic(fmt.Sprintf("evaluator: unhandled spine element %T — structural bug, not a user error", elim))
		}
		if err != nil {
			return nil, err
		}
	}
	return base, nil
}
