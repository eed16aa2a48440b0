package analyzer

import (
	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// inferCtor checks a constructor application's own telescope and
// computes the data type it inhabits by evaluating its declared return
// indices under the just-checked argument values (spec §3 "`VCons(n, x,
// xs): Vec(S(n))` has ReturnIndices = [S(n)]").
func (c *Checker) inferCtor(ctx *symbols.Context, t *ast.Ctor) (ast.Expr, typesystem.Value, error) {
	owner, ok := c.Sig.OwnerOfCtor(t.Name)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "undeclared constructor %q", t.Name)
	}
	entry, _ := owner.Ctor(t.Name)

	args, err := c.checkTelescopeArgs(ctx, entry.Params, t.Args)
	if err != nil {
		return nil, nil, err
	}

	env, err := c.evalArgsEnv(ctx, args)
	if err != nil {
		return nil, nil, err
	}

	indices := make([]typesystem.Value, len(entry.ReturnIndices))
	for i, idx := range entry.ReturnIndices {
		v, err := c.eval(env, idx.Value)
		if err != nil {
			return nil, nil, err
		}
		indices[i] = v
	}

	return ast.NewCtor(t.Span(), t.Name, args), typesystem.VTyCtor{Name: owner.Name, Args: indices}, nil
}

// inferCall checks a call's argument vector against its signature
// entry's telescope — a def's Self parameter first, then its own
// Params — and evaluates Return under the accumulated argument
// environment (spec glossary "Definition"/"Codefinition"). A call whose
// name is a declared infix symbol is elaborated as a call to that
// symbol's target.
func (c *Checker) inferCall(ctx *symbols.Context, t *ast.Call) (ast.Expr, typesystem.Value, error) {
	if infix, ok := c.Sig.Infix(t.Name); ok {
		t = ast.NewCall(t.Span(), infix.Target, t.Args)
	}

	if let, ok := c.Sig.Let(t.Name); ok {
		args, err := c.checkTelescopeArgs(ctx, let.Params, t.Args)
		if err != nil {
			return nil, nil, err
		}
		env, err := c.evalArgsEnv(ctx, args)
		if err != nil {
			return nil, nil, err
		}
		retTy, err := c.eval(env, let.Ty)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewCall(t.Span(), t.Name, args), retTy, nil
	}

	if def, ok := c.Sig.Def(t.Name); ok {
		if len(t.Args) == 0 {
			return nil, nil, diagnostics.Newf(diagnostics.ErrArityMismatch, t.Span(), "call to %q is missing its self argument", t.Name)
		}
		selfTy, err := c.eval(ctx.ToEnv(), def.Self.Ty)
		if err != nil {
			return nil, nil, err
		}
		checkedSelf, err := c.Check(ctx, t.Args[0].Value, selfTy)
		if err != nil {
			return nil, nil, err
		}
		rest, err := c.checkTelescopeArgs(ctx, def.Params, t.Args[1:])
		if err != nil {
			return nil, nil, err
		}
		allArgs := append([]ast.Arg{{Kind: t.Args[0].Kind, Name: t.Args[0].Name, Value: checkedSelf}}, rest...)
		env, err := c.evalArgsEnv(ctx, allArgs)
		if err != nil {
			return nil, nil, err
		}
		retTy, err := c.eval(env, def.Return)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewCall(t.Span(), t.Name, allArgs), retTy, nil
	}

	if codef, ok := c.Sig.Codef(t.Name); ok {
		args, err := c.checkTelescopeArgs(ctx, codef.Params, t.Args)
		if err != nil {
			return nil, nil, err
		}
		env, err := c.evalArgsEnv(ctx, args)
		if err != nil {
			return nil, nil, err
		}
		retTy, err := c.eval(env, codef.Return)
		if err != nil {
			return nil, nil, err
		}
		return ast.NewCall(t.Span(), t.Name, args), retTy, nil
	}

	return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "undeclared call target %q", t.Name)
}

// inferDtorProj infers a destructor projection by checking its head
// resolves to a codata type, then checking the destructor's own
// arguments against its telescope with its self binder bound to the
// head's value.
func (c *Checker) inferDtorProj(ctx *symbols.Context, t *ast.DtorProj) (ast.Expr, typesystem.Value, error) {
	checkedHead, headTy, err := c.Infer(ctx, t.Head)
	if err != nil {
		return nil, nil, err
	}
	tyc, ok := headTy.(typesystem.VTyCtor)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, t.Span(), "destructor %q projected onto a non-codata type", t.Name)
	}
	codata, ok := c.Sig.Codata(tyc.Name)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, t.Span(), "%q is not a codata type", tyc.Name)
	}
	dtor, ok := codata.Dtor(t.Name)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrUndeclaredName, t.Span(), "%q has no destructor %q", tyc.Name, t.Name)
	}

	headVal, err := c.eval(ctx.ToEnv(), checkedHead)
	if err != nil {
		return nil, nil, err
	}

	args, err := c.checkTelescopeArgs(ctx, dtor.Params, t.Args)
	if err != nil {
		return nil, nil, err
	}

	env := ctx.ToEnv().Extend(headVal)
	for _, a := range args {
		v, err := c.eval(ctx.ToEnv(), a.Value)
		if err != nil {
			return nil, nil, err
		}
		env = env.Extend(v)
	}
	retTy, err := c.eval(env, dtor.Return)
	if err != nil {
		return nil, nil, err
	}
	return ast.NewDtorProj(t.Span(), checkedHead, t.Name, args), retTy, nil
}

func (c *Checker) evalArgsEnv(ctx *symbols.Context, args []ast.Arg) (typesystem.Env, error) {
	env := ctx.ToEnv()
	for _, a := range args {
		v, err := c.eval(ctx.ToEnv(), a.Value)
		if err != nil {
			return nil, err
		}
		env = env.Extend(v)
	}
	return env, nil
}
