package analyzer

import (
	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// checkTelescopeWF extends ctx with each of tele's parameters in turn,
// checking every parameter's declared type is itself well-formed (a
// `Type`) before the next parameter (which may depend on it) is
// checked — the same left-to-right telescope discipline as
// checkTelescopeArgs, but for a *declaration* rather than a call site.
func (c *Checker) checkTelescopeWF(ctx *symbols.Context, tele ast.Telescope) (*symbols.Context, error) {
	for _, p := range tele {
		checkedTy, err := c.Check(ctx, p.Ty, typesystem.VType{})
		if err != nil {
			return nil, err
		}
		tyVal, err := c.eval(ctx.ToEnv(), checkedTy)
		if err != nil {
			return nil, err
		}
		ctx, _ = ctx.Extend(p.Name, tyVal)
	}
	return ctx, nil
}

// DeclareData elaborates a data declaration (spec §3 "Signature
// entries"): its own parameter telescope and each constructor's
// telescope must be well-formed; return indices are only required to
// elaborate without error here (full well-formedness against the data
// type's own parameter types is established structurally wherever a
// constructor is actually checked against an expected TyCtor, via
// Convert/UnifyIndices at the use site).
func (c *Checker) DeclareData(d *ast.DataDecl) *symbols.DataEntry {
	ctx, err := c.checkTelescopeWF(symbols.Empty(), d.Params)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		ctx = symbols.Empty()
	}

	entry := &symbols.DataEntry{Name: d.DeclName(), Params: d.Params}
	c.Sig.AddData(entry)

	ctors := make([]symbols.CtorEntry, 0, len(d.Ctors))
	for _, cs := range d.Ctors {
		ctorCtx, err := c.checkTelescopeWF(ctx, cs.Params)
		if err != nil {
			c.Diags.Add(asDiag(err, cs.Span))
			continue
		}
		for _, idx := range cs.ReturnIndices {
			if _, _, err := c.Infer(ctorCtx, idx.Value); err != nil {
				c.Diags.Add(asDiag(err, cs.Span))
			}
		}
		ctors = append(ctors, symbols.CtorEntry{Name: cs.Name, Params: cs.Params, ReturnIndices: cs.ReturnIndices})
	}

	entry.Ctors = ctors
	return entry
}

// DeclareCodata is DeclareData's dual for codata types: each destructor's
// own parameter telescope and dependent return type are checked with its
// self binder in scope.
func (c *Checker) DeclareCodata(d *ast.CodataDecl) *symbols.CodataEntry {
	ctx, err := c.checkTelescopeWF(symbols.Empty(), d.Params)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		ctx = symbols.Empty()
	}

	entry := &symbols.CodataEntry{Name: d.DeclName(), Params: d.Params}
	c.Sig.AddCodata(entry)

	selfTy := typesystem.Value(typesystem.VTyCtor{Name: d.DeclName()})

	dtors := make([]symbols.DtorEntry, 0, len(d.Dtors))
	for _, ds := range d.Dtors {
		dtorCtx := ctx
		if ds.Self != nil {
			dtorCtx, _ = dtorCtx.Extend(ds.Self.Name, selfTy)
		}
		paramCtx, err := c.checkTelescopeWF(dtorCtx, ds.Params)
		if err != nil {
			c.Diags.Add(asDiag(err, ds.Span))
			continue
		}
		if _, err := c.Check(paramCtx, ds.Return, typesystem.VType{}); err != nil {
			c.Diags.Add(asDiag(err, ds.Span))
			continue
		}
		dtors = append(dtors, symbols.DtorEntry{Name: ds.Name, Params: ds.Params, Self: ds.Self, Return: ds.Return})
	}

	entry.Dtors = dtors
	return entry
}

// DeclareDefSkeleton registers a def's signature (self type, parameter
// telescope, result type) before any clause body is checked, so mutually
// recursive defs can refer to each other (spec §4.1, §5 "Shared
// resources" — the teacher's SymbolTable is built the same
// skeleton-then-body way for mutually recursive functions).
func (c *Checker) DeclareDefSkeleton(d *ast.DefDecl) *symbols.DefEntry {
	entry := &symbols.DefEntry{Name: d.DeclName(), TypeName: d.TypeName, Self: d.Self, Params: d.Params, Return: d.Return}
	c.Sig.AddDef(entry)
	return entry
}

// ElaborateDefBody checks a def's clauses against its already-registered
// skeleton, dispatching through the shared elaborateClauses arm driver.
// The def's Self parameter is not bound in the context clauses are
// checked in (only the params are) — the same simplification as match's
// motive not depending on its scrutinee (see DESIGN.md): the scrutinee's
// own indices still drive index unification per clause, just not a
// fully dependent self-typed return.
func (c *Checker) ElaborateDefBody(entry *symbols.DefEntry, d *ast.DefDecl) {
	data, ok := c.Sig.Data(d.TypeName)
	if !ok {
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrUndeclaredName, d.Span(), "def %q eliminates undeclared data type %q", d.DeclName(), d.TypeName))
		return
	}

	paramsCtx, err := c.checkTelescopeWF(symbols.Empty(), d.Params)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	resultTy, err := c.eval(paramsCtx.ToEnv(), d.Return)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}

	selfTyVal, err := c.eval(symbols.Empty().ToEnv(), d.Self.Ty)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	selfTyc, ok := selfTyVal.(typesystem.VTyCtor)
	if !ok || selfTyc.Name != d.TypeName {
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrTypeMismatch, d.Span(), "def %q's self type does not match %q", d.DeclName(), d.TypeName))
		return
	}

	arms, err := c.elaborateClauses(paramsCtx, d.Span(), data.CtorNames(), func(name string) (ast.Telescope, []ast.Arg, bool) {
		ce, ok := data.Ctor(name)
		return ce.Params, ce.ReturnIndices, ok
	}, d.Clauses, selfTyc.Args, resultTy)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	entry.Clauses = arms
}

// DeclareCodefSkeleton is DeclareDefSkeleton's dual for codefs.
func (c *Checker) DeclareCodefSkeleton(d *ast.CodefDecl) *symbols.CodefEntry {
	entry := &symbols.CodefEntry{Name: d.DeclName(), TypeName: d.TypeName, Params: d.Params, Return: d.Return}
	c.Sig.AddCodef(entry)
	return entry
}

// ElaborateCodefBody is ElaborateDefBody's dual: every destructor of the
// codef's codata type must be covered by exactly one clause.
func (c *Checker) ElaborateCodefBody(entry *symbols.CodefEntry, d *ast.CodefDecl) {
	codata, ok := c.Sig.Codata(d.TypeName)
	if !ok {
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrUndeclaredName, d.Span(), "codef %q produces undeclared codata type %q", d.DeclName(), d.TypeName))
		return
	}

	paramsCtx, err := c.checkTelescopeWF(symbols.Empty(), d.Params)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}

	arms := make([]*ast.Clause, 0, len(d.Clauses))
	for _, dtorName := range codata.DtorNames() {
		clause, found := findSourceClause(d.Clauses, dtorName)
		if !found {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrNonExhaustive, d.Span(), "codef %q is missing a clause for destructor %q", d.DeclName(), dtorName))
			continue
		}
		dtor, _ := codata.Dtor(dtorName)
		if len(clause.Pattern.Binders) != len(dtor.Params) {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrArityMismatch, clause.Span, "destructor %q expects %d argument(s), got %d", dtorName, len(dtor.Params), len(clause.Pattern.Binders)))
			continue
		}
		innerCtx := paramsCtx
		env := paramsCtx.ToEnv()
		for i, b := range clause.Pattern.Binders {
			pty, err := c.eval(env, dtor.Params[i].Ty)
			if err != nil {
				c.Diags.Add(asDiag(err, clause.Span))
				continue
			}
			innerCtx, _ = innerCtx.Extend(b.Name, pty)
			env = innerCtx.ToEnv()
		}
		retTy, err := c.eval(env, dtor.Return)
		if err != nil {
			c.Diags.Add(asDiag(err, clause.Span))
			continue
		}
		checkedBody, err := c.Check(innerCtx, clause.Body, retTy)
		if err != nil {
			c.Diags.Add(asDiag(err, clause.Span))
			continue
		}
		arms = append(arms, &ast.Clause{Span: clause.Span, Pattern: clause.Pattern, Body: checkedBody})
	}
	checkUnknownClauseHeads(c, d.Clauses, codata.DtorNames())

	entry.Clauses = arms
}

// DeclareLetSkeleton/ElaborateLetBody split a let the same way as
// def/codef, so a transparent let may refer to itself or to a
// mutually-recursive sibling registered earlier in the same group.
func (c *Checker) DeclareLetSkeleton(d *ast.LetDecl) *symbols.LetEntry {
	entry := &symbols.LetEntry{Name: d.DeclName(), Params: d.Params, Ty: d.Ty, Transparent: d.Transparent}
	c.Sig.AddLet(entry)
	return entry
}

func (c *Checker) ElaborateLetBody(entry *symbols.LetEntry, d *ast.LetDecl) {
	paramsCtx, err := c.checkTelescopeWF(symbols.Empty(), d.Params)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	checkedTy, err := c.Check(paramsCtx, d.Ty, typesystem.VType{})
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	tyVal, err := c.eval(paramsCtx.ToEnv(), checkedTy)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	checkedBody, err := c.Check(paramsCtx, d.Body, tyVal)
	if err != nil {
		c.Diags.Add(asDiag(err, d.Span()))
		return
	}
	entry.Ty = checkedTy
	entry.Body = checkedBody
}

// DeclareInfix registers an infix operator alias; it has no body of its
// own to elaborate, only a reference to an existing call target, which
// must already be declared (infix declarations are expected after their
// target, matching the teacher's forward-reference rules for operator
// sugar).
func (c *Checker) DeclareInfix(d *ast.InfixDecl) *symbols.InfixEntry {
	if !c.Sig.Has(d.Target) {
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrUndeclaredName, d.Span(), "infix %q targets undeclared name %q", d.Symbol, d.Target))
	}
	entry := &symbols.InfixEntry{Symbol: d.Symbol, Target: d.Target}
	c.Sig.AddInfix(entry)
	return entry
}
