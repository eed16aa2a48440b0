package analyzer

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/evaluator"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// Checker threads the signature, metavariable store, and step budget
// through one elaboration run, the same "one explicit context object"
// discipline as the teacher's InferenceContext (which threads
// Constraints/GlobalSubst instead). Diagnostics are accumulated in Diags
// rather than returned from every call, so elaborating one declaration
// can report every error it finds instead of stopping at the first.
type Checker struct {
	Sig    *symbols.Signature
	Store  *meta.Store
	Budget *evaluator.Budget
	Diags  *diagnostics.Bag
}

// NewChecker allocates a Checker over an already-built signature.
func NewChecker(sig *symbols.Signature, store *meta.Store, budget *evaluator.Budget) *Checker {
	return &Checker{Sig: sig, Store: store, Budget: budget, Diags: diagnostics.NewBag()}
}

func (c *Checker) convert(lhs, rhs typesystem.Value) error {
	return Convert(c.Sig, c.Store, lhs, rhs, c.Budget)
}

func (c *Checker) eval(env typesystem.Env, term ast.Expr) (typesystem.Value, error) {
	return evaluator.Eval(c.Sig, c.Store, env, term, c.Budget)
}

// Check verifies term against expectedType, per spec §4.6's check-mode
// rules (spec §4.6 "check(ctx, term, expected_type) -> annotated term").
// Most forms fall back to inferring and then converting; Hole and the
// match forms have dedicated check-mode rules.
func (c *Checker) Check(ctx *symbols.Context, term ast.Expr, expected typesystem.Value) (ast.Expr, error) {
	switch t := term.(type) {
	case *ast.Hole:
		entry := c.Store.Fresh(t.Span(), t.Kind, ctx.Depth(), "")
		t.MetaID = entry.ID
		return t, nil

	case *ast.LocalMatch:
		annotated, _, err := c.elaborateMatch(ctx, t, expected)
		return annotated, err

	case *ast.LocalComatch:
		annotated, _, err := c.elaborateComatch(ctx, t, expected)
		return annotated, err

	default:
		annotated, ty, err := c.Infer(ctx, term)
		if err != nil {
			return nil, err
		}
		if err := c.convert(ty, expected); err != nil {
			return nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, term.Span(), "%v", err)
		}
		return annotated, nil
	}
}

// Infer synthesizes term's type, per spec §4.6's infer-mode rules (spec
// §4.6 "infer(ctx, term) -> (annotated term, type)").
func (c *Checker) Infer(ctx *symbols.Context, term ast.Expr) (ast.Expr, typesystem.Value, error) {
	switch t := term.(type) {
	case *ast.Var:
		_, ty := ctx.Lookup(t.Idx)
		return t, ty, nil

	case *ast.TypeUniv:
		// `Type : Type` — inconsistent by design (spec §4.6 note).
		return t, typesystem.VType{}, nil

	case *ast.TyCtor:
		data, okData := c.Sig.Data(t.Name)
		codata, okCodata := c.Sig.Codata(t.Name)
		var params ast.Telescope
		switch {
		case okData:
			params = data.Params
		case okCodata:
			params = codata.Params
		default:
			return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "undeclared type %q", t.Name)
		}
		args, err := c.checkTelescopeArgs(ctx, params, t.Args)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewTyCtor(t.Span(), t.Name, args), typesystem.VType{}, nil

	case *ast.CoTyCtor:
		codata, ok := c.Sig.Codata(t.Name)
		if !ok {
			return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "undeclared codata type %q", t.Name)
		}
		args, err := c.checkTelescopeArgs(ctx, codata.Params, t.Args)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewCoTyCtor(t.Span(), t.Name, args), typesystem.VType{}, nil

	case *ast.Ctor:
		return c.inferCtor(ctx, t)

	case *ast.Call:
		return c.inferCall(ctx, t)

	case *ast.DtorProj:
		return c.inferDtorProj(ctx, t)

	case *ast.Anno:
		checkedTy, err := c.Check(ctx, t.Ty, typesystem.VType{})
		if err != nil {
			return nil, nil, err
		}
		tyVal, err := c.eval(ctx.ToEnv(), checkedTy)
		if err != nil {
			return nil, nil, err
		}
		checkedBody, err := c.Check(ctx, t.Body, tyVal)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewAnno(t.Span(), checkedBody, checkedTy), tyVal, nil

	case *ast.LocalLet:
		var boundTy typesystem.Value
		var checkedBound ast.Expr
		var err error
		if t.Ty != nil {
			checkedTy, err2 := c.Check(ctx, t.Ty, typesystem.VType{})
			if err2 != nil {
				return nil, nil, err2
			}
			boundTy, err = c.eval(ctx.ToEnv(), checkedTy)
			if err != nil {
				return nil, nil, err
			}
			checkedBound, err = c.Check(ctx, t.Bound, boundTy)
		} else {
			checkedBound, boundTy, err = c.Infer(ctx, t.Bound)
		}
		if err != nil {
			return nil, nil, err
		}
		innerCtx, _ := ctx.Extend(t.Name, boundTy)
		checkedBody, bodyTy, err := c.Infer(innerCtx, t.Body)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewLocalLet(t.Span(), t.Name, t.Ty, checkedBound, checkedBody), bodyTy, nil

	case *ast.NatLit:
		if _, ok := c.Sig.Data("Nat"); !ok {
			return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "Nat is not declared, cannot check a numeral literal")
		}
		return t, typesystem.VTyCtor{Name: "Nat"}, nil

	case *ast.Hole:
		tmeta := c.Store.Fresh(t.Span(), ast.CanSolve, ctx.Depth(), "")
		vmeta := c.Store.Fresh(t.Span(), t.Kind, ctx.Depth(), "")
		t.MetaID = vmeta.ID
		return t, typesystem.VNeutral{Head: typesystem.HMeta{ID: tmeta.ID}}, nil

	case *ast.LocalMatch:
		return c.elaborateMatch(ctx, t, nil)

	case *ast.LocalComatch:
		return c.elaborateComatch(ctx, t, nil)

	default:
		panic(fmt.Sprintf("analyzer: unhandled term %T in Infer — structural bug, not a user error", term))
	}
}

// checkTelescopeArgs checks a positional argument vector against a
// telescope, evaluating each checked argument so later parameter types
// (which may depend on earlier ones) are checked against the right
// value (spec §3 "Telescopes").
func (c *Checker) checkTelescopeArgs(ctx *symbols.Context, params ast.Telescope, args []ast.Arg) ([]ast.Arg, error) {
	if len(args) != len(params) {
		return nil, diagnostics.Newf(diagnostics.ErrArityMismatch, diagnostics.Span{}, "expected %d argument(s), got %d", len(params), len(args))
	}
	env := ctx.ToEnv()
	out := make([]ast.Arg, len(args))
	for i, p := range params {
		ty, err := c.eval(env, p.Ty)
		if err != nil {
			return nil, err
		}
		checked, err := c.Check(ctx, args[i].Value, ty)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Arg{Kind: args[i].Kind, Name: args[i].Name, Value: checked}
		v, err := c.eval(ctx.ToEnv(), checked)
		if err != nil {
			return nil, err
		}
		env = env.Extend(v)
	}
	return out, nil
}
