// Package evaluator implements normalization-by-evaluation over the
// elaborator's term language (spec §4.2): Eval reflects a term into a
// value, forcing neutrals only when a redex appears at the head, and
// Readback (readback.go) reifies a value back to a beta-normal term at a
// given context depth (spec §4.3); codata values are not eta-expanded.
//
// The teacher's internal/evaluator.Evaluator threads a single mutable
// struct through a tree-walking interpreter, with its Environment doing
// name-keyed, outer-chained lookup (environment.go: Get/Set/Update,
// outer *Environment). This rewrite keeps the "thread one explicit
// handle through evaluation" discipline but the handle is now the
// signature + metavariable store (both read-only from the evaluator's
// point of view — only the typechecker calls meta.Store.Solve), and the
// environment is De Bruijn-indexed (typesystem.Env) instead of
// name-keyed, since values must stay stable under context extension
// (spec §3 "values remain stable under context extension").
package evaluator

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// Eval reflects term into a value under env (spec §4.2 contract:
// "eval(env, term) -> value"). sig resolves top-level names; store
// resolves metavariable heads to their solutions, if any; budget bounds
// the number of reduction steps taken (nil or zero-limit means
// unbounded).
func Eval(sig *symbols.Signature, store *meta.Store, env typesystem.Env, term ast.Expr, budget *Budget) (typesystem.Value, error) {
	if err := budget.tick(); err != nil {
		return nil, err
	}

	switch t := term.(type) {
	case *ast.Var:
		v, ok := env.Lookup(t.Idx)
		if !ok {
			panic(fmt.Sprintf("evaluator: De Bruijn index %d out of range — structural bug, not a user error", t.Idx))
		}
		return v, nil

	case *ast.TypeUniv:
		return typesystem.VType{}, nil

	case *ast.TyCtor:
		args, err := evalArgs(sig, store, env, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return typesystem.VTyCtor{Name: t.Name, Args: args}, nil

	case *ast.CoTyCtor:
		args, err := evalArgs(sig, store, env, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return typesystem.VTyCtor{Name: t.Name, Args: args}, nil

	case *ast.Ctor:
		args, err := evalArgs(sig, store, env, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return typesystem.VCtor{Name: t.Name, Args: args}, nil

	case *ast.NatLit:
		v := typesystem.Value(typesystem.VCtor{Name: "Z"})
		for i := uint64(0); i < t.N; i++ {
			v = typesystem.VCtor{Name: "S", Args: []typesystem.Value{v}}
		}
		return v, nil

	case *ast.Call:
		args, err := evalArgs(sig, store, env, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return applyCall(sig, store, t.Name, args, budget)

	case *ast.DtorProj:
		head, err := Eval(sig, store, env, t.Head, budget)
		if err != nil {
			return nil, err
		}
		args, err := evalArgs(sig, store, env, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return applyDtor(sig, store, head, t.Name, args, budget)

	case *ast.Anno:
		return Eval(sig, store, env, t.Body, budget)

	case *ast.LocalLet:
		bound, err := Eval(sig, store, env, t.Bound, budget)
		if err != nil {
			return nil, err
		}
		return Eval(sig, store, env.Extend(bound), t.Body, budget)

	case *ast.LocalMatch:
		scrut, err := Eval(sig, store, env, t.Scrutinee, budget)
		if err != nil {
			return nil, err
		}
		closures := make([]typesystem.ClauseClosure, len(t.Arms))
		for i, c := range t.Arms {
			closures[i] = typesystem.ClauseClosure{Clause: c, Env: env}
		}
		var motive typesystem.Value
		if t.Motive != nil {
			motive, err = Eval(sig, store, env, t.Motive, budget)
			if err != nil {
				return nil, err
			}
		}
		return applyMatch(sig, store, scrut, closures, motive, budget)

	case *ast.LocalComatch:
		closures := make([]typesystem.ClauseClosure, len(t.Arms))
		for i, c := range t.Arms {
			closures[i] = typesystem.ClauseClosure{Clause: c, Env: env}
		}
		return typesystem.VNeutral{Head: typesystem.HComatch{Clauses: closures}}, nil

	case *ast.Hole:
		return evalMeta(sig, store, t.MetaID, env, budget)

	default:
		panic(fmt.Sprintf("evaluator: unhandled term %T — structural bug, not a user error", term))
	}
}

func evalArgs(sig *symbols.Signature, store *meta.Store, env typesystem.Env, args []ast.Arg, budget *Budget) ([]typesystem.Value, error) {
	out := make([]typesystem.Value, len(args))
	for i, a := range args {
		v, err := Eval(sig, store, env, a.Value, budget)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalMeta looks up a metavariable head (spec §4.2 "A Meta(id) head is
// looked up in the metavariable store during evaluation"): if solved, the
// stored solution term is re-evaluated under env and the spine (there is
// none yet for a bare Hole occurrence) re-applied; if unsolved, a bare
// neutral is returned.
func evalMeta(sig *symbols.Signature, store *meta.Store, id int, env typesystem.Env, budget *Budget) (typesystem.Value, error) {
	e := store.Get(id)
	if e.Status == meta.Unsolved {
		return typesystem.VNeutral{Head: typesystem.HMeta{ID: id}}, nil
	}
	return Eval(sig, store, env, e.Solution, budget)
}

// Force re-evaluates a value whose head is a now-solved metavariable,
// substituting the stored solution and re-applying any spine accumulated
// while it was still unsolved. Conversion checking calls this before
// comparing two neutrals headed by the same meta id, since a solve can
// happen between the time a value was built and the time it is compared
// (spec §4.2 "Solutions may be re-checked... on substitution").
//
// A solution term's Var indices are relative to the metavariable's own
// recorded allocation depth (solveMeta reads it back at entry.Depth, not
// at whatever deeper context happened to trigger the solve — see
// internal/analyzer/convert.go), since the same solved meta can recur in
// later contexts with a different depth (e.g. one def clause binds more
// pattern variables than its sibling). Re-evaluating it therefore needs
// the identity environment of that same recorded depth — the environment
// of opaque neutral variables the solution's indices were computed
// against — not whatever environment the caller happens to be holding.
func Force(sig *symbols.Signature, store *meta.Store, v typesystem.Value, budget *Budget) (typesystem.Value, error) {
	n, ok := v.(typesystem.VNeutral)
	if !ok {
		return v, nil
	}
	hm, ok := n.Head.(typesystem.HMeta)
	if !ok {
		return v, nil
	}
	e := store.Get(hm.ID)
	if e.Status == meta.Unsolved {
		return v, nil
	}
	base, err := Eval(sig, store, identityEnv(e.Depth), e.Solution, budget)
	if err != nil {
		return nil, err
	}
	return applySpine(sig, store, base, n.Spine, budget)
}

// identityEnv builds the environment of depth opaque neutral variables
// that Readback's HVar case assumes when reifying a value at that same
// depth: index i denotes the variable at level depth-1-i, exactly
// reversing Readback's `depth-1-h.Level`.
func identityEnv(depth int) typesystem.Env {
	env := make(typesystem.Env, depth)
	for i := 0; i < depth; i++ {
		level := depth - 1 - i
		env[i] = typesystem.VNeutral{Head: typesystem.HVar{Level: level}}
	}
	return env
}
