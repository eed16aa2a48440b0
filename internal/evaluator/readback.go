package evaluator

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// Readback reifies a value at the given context depth (the number of De
// Bruijn levels currently in scope, used to convert HVar levels back to
// indices relative to the use site) into a beta-normal term (spec §4.3).
//
// This is a structural read-back: a neutral's spine is reified as the
// chain of Call/DtorProj/LocalMatch nodes it stands for, and an
// unprojected comatch value is reified as the LocalComatch literal that
// produced it, with its clause bodies left as the (already term-level)
// closures they were captured with rather than re-normalized eagerly.
// Codata values are not eta-expanded into a canonical comatch form, and
// the conversion checker does not compare codata values destructor by
// destructor either: two inline comatches are never convertible (see
// headsConvertible in internal/analyzer).
func Readback(sig *symbols.Signature, store *meta.Store, depth int, v typesystem.Value, budget *Budget) (ast.Expr, error) {
	switch t := v.(type) {
	case typesystem.VType:
		return ast.NewTypeUniv(diagnostics.Span{}), nil

	case typesystem.VTyCtor:
		args, err := readbackArgs(sig, store, depth, t.Args, budget)
		if err != nil {
			return nil, err
		}
		if _, ok := sig.Codata(t.Name); ok {
			return ast.NewCoTyCtor(diagnostics.Span{}, t.Name, args), nil
		}
		return ast.NewTyCtor(diagnostics.Span{}, t.Name, args), nil

	case typesystem.VCtor:
		args, err := readbackArgs(sig, store, depth, t.Args, budget)
		if err != nil {
			return nil, err
		}
		return ast.NewCtor(diagnostics.Span{}, t.Name, args), nil

	case typesystem.VNeutral:
		return readbackNeutral(sig, store, depth, t, budget)

	default:
		panic(fmt.Sprintf("evaluator: unhandled value %T in readback — structural bug, not a user error", v))
	}
}

func readbackNeutral(sig *symbols.Signature, store *meta.Store, depth int, n typesystem.VNeutral, budget *Budget) (ast.Expr, error) {
	spine := n.Spine

	var head ast.Expr
	switch h := n.Head.(type) {
	case typesystem.HVar:
		head = ast.NewVar(diagnostics.Span{}, depth-1-h.Level, h.Name)

	case typesystem.HMeta:
		hole := ast.NewHole(diagnostics.Span{}, ast.CanSolve)
		hole.MetaID = h.ID
		head = hole

	case typesystem.HCall:
		callArgs := spineCallArgs(spine)
		args, err := readbackArgs(sig, store, depth, callArgs, budget)
		if err != nil {
			return nil, err
		}
		head = ast.NewCall(diagnostics.Span{}, h.Name, args)
		spine = spine[1:]

	case typesystem.HComatch:
		arms := make([]*ast.Clause, len(h.Clauses))
		for i, c := range h.Clauses {
			arms[i] = c.Clause
		}
		head = ast.NewLocalComatch(diagnostics.Span{}, nil, arms)

	default:
		panic(fmt.Sprintf("evaluator: unhandled neutral head %T in readback — structural bug, not a user error", n.Head))
	}

	for _, elim := range spine {
		switch e := elim.(type) {
		case typesystem.ElimDtor:
			args, err := readbackArgs(sig, store, depth, e.Args, budget)
			if err != nil {
				return nil, err
			}
			head = ast.NewDtorProj(diagnostics.Span{}, head, e.Name, args)

		case typesystem.ElimMatch:
			arms := make([]*ast.Clause, len(e.Clauses))
			for i, c := range e.Clauses {
				arms[i] = c.Clause
			}
			var motive ast.Expr
			if e.Motive != nil {
				var err error
				motive, err = Readback(sig, store, depth, e.Motive, budget)
				if err != nil {
					return nil, err
				}
			}
			head = ast.NewLocalMatch(diagnostics.Span{}, head, motive, arms)

		case typesystem.ElimApp:
			panic("evaluator: raw application spine element on a non-initial position — structural bug, not a user error")

		default:
			panic(fmt.Sprintf("evaluator: unhandled spine element %T in readback — structural bug, not a user error", elim))
		}
	}

	return head, nil
}

func readbackArgs(sig *symbols.Signature, store *meta.Store, depth int, vs []typesystem.Value, budget *Budget) ([]ast.Arg, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]ast.Arg, len(vs))
	for i, v := range vs {
		e, err := Readback(sig, store, depth, v, budget)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Arg{Kind: ast.ArgExplicit, Value: e}
	}
	return out, nil
}
