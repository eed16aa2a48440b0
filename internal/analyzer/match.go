package analyzer

import (
	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

// elaborateMatch checks a LocalMatch's arms against the data type of its
// scrutinee (spec §4.6 "Declaration-level typechecking" / match
// elaboration): every constructor must be covered by exactly one
// non-absurd clause unless the unifier proves it impossible, each
// clause's pattern variables are bound at the constructor's own
// telescope types, and the constructor's return indices are unified
// against the scrutinee's actual indices to refine the clause's result
// type (spec §4.5).
func (c *Checker) elaborateMatch(ctx *symbols.Context, m *ast.LocalMatch, expected typesystem.Value) (ast.Expr, typesystem.Value, error) {
	checkedScrut, scrutTy, err := c.Infer(ctx, m.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	tyc, ok := scrutTy.(typesystem.VTyCtor)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, m.Span(), "match scrutinee does not have a data type")
	}
	data, ok := c.Sig.Data(tyc.Name)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, m.Span(), "%q is not a data type", tyc.Name)
	}

	resultTy, checkedMotive, err := c.resolveMotive(ctx, m.Motive, expected, m.Span())
	if err != nil {
		return nil, nil, err
	}

	arms, err := c.elaborateClauses(ctx, m.Span(), data.CtorNames(), func(name string) (ast.Telescope, []ast.Arg, bool) {
		ce, ok := data.Ctor(name)
		return ce.Params, ce.ReturnIndices, ok
	}, m.Arms, tyc.Args, resultTy)
	if err != nil {
		return nil, nil, err
	}

	return ast.NewLocalMatch(m.Span(), checkedScrut, checkedMotive, arms), resultTy, nil
}

// elaborateComatch is elaborateMatch's dual for copattern matches
// against a codata type.
func (c *Checker) elaborateComatch(ctx *symbols.Context, m *ast.LocalComatch, expected typesystem.Value) (ast.Expr, typesystem.Value, error) {
	resultTy, checkedMotive, err := c.resolveMotive(ctx, m.Motive, expected, m.Span())
	if err != nil {
		return nil, nil, err
	}
	tyc, ok := resultTy.(typesystem.VTyCtor)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, m.Span(), "comatch needs a codata result type")
	}
	codata, ok := c.Sig.Codata(tyc.Name)
	if !ok {
		return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, m.Span(), "%q is not a codata type", tyc.Name)
	}

	arms := make([]*ast.Clause, 0, len(m.Arms))
	for _, dtor := range codata.DtorNames() {
		clause, found := findSourceClause(m.Arms, dtor)
		if !found {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrNonExhaustive, m.Span(), "comatch is missing a clause for destructor %q", dtor))
			continue
		}
		entry, _ := codata.Dtor(dtor)
		if len(clause.Pattern.Binders) != len(entry.Params) {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrArityMismatch, clause.Span, "destructor %q expects %d argument(s), got %d", dtor, len(entry.Params), len(clause.Pattern.Binders)))
			continue
		}
		innerCtx := ctx
		env := ctx.ToEnv()
		for i, b := range clause.Pattern.Binders {
			pty, err := c.eval(env, entry.Params[i].Ty)
			if err != nil {
				return nil, nil, err
			}
			innerCtx, _ = innerCtx.Extend(b.Name, pty)
			env = innerCtx.ToEnv()
		}
		retTy, err := c.eval(env, entry.Return)
		if err != nil {
			return nil, nil, err
		}
		checkedBody, err := c.Check(innerCtx, clause.Body, retTy)
		if err != nil {
			c.Diags.Add(asDiag(err, clause.Span))
			continue
		}
		arms = append(arms, &ast.Clause{Span: clause.Span, Pattern: clause.Pattern, Body: checkedBody})
	}
	checkUnknownClauseHeads(c, m.Arms, codata.DtorNames())

	return ast.NewLocalComatch(m.Span(), checkedMotive, arms), resultTy, nil
}

// elaborateClauses is the shared data-match arm driver used by both
// LocalMatch and top-level def elaboration (see decls.go): for every
// constructor of the scrutinee's data type it locates the matching
// clause, binds its pattern variables at the constructor's telescope
// types, unifies the constructor's return indices against the
// scrutinee's actual indices, and either proves a claimed-absurd clause
// impossible or checks a real clause's body against the (possibly
// index-refined) result type.
func (c *Checker) elaborateClauses(
	ctx *symbols.Context,
	span diagnostics.Span,
	ctorNames []string,
	telescopeOf func(name string) (ast.Telescope, []ast.Arg, bool),
	sourceArms []*ast.Clause,
	scrutArgs []typesystem.Value,
	resultTy typesystem.Value,
) ([]*ast.Clause, error) {
	arms := make([]*ast.Clause, 0, len(sourceArms))

	for _, name := range ctorNames {
		clause, found := findSourceClause(sourceArms, name)
		if !found {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrNonExhaustive, span, "match is missing a clause for constructor %q", name))
			continue
		}
		params, returnIndices, _ := telescopeOf(name)
		if len(clause.Pattern.Binders) != len(params) {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrArityMismatch, clause.Span, "constructor %q expects %d argument(s), got %d", name, len(params), len(clause.Pattern.Binders)))
			continue
		}

		innerCtx := ctx
		bindLevels := make(map[int]bool)
		env := ctx.ToEnv()
		for i, b := range clause.Pattern.Binders {
			pty, err := c.eval(env, params[i].Ty)
			if err != nil {
				return nil, err
			}
			var level int
			innerCtx, level = innerCtx.Extend(b.Name, pty)
			bindLevels[level] = true
			env = innerCtx.ToEnv()
		}

		indices := make([]typesystem.Value, len(returnIndices))
		for i, idx := range returnIndices {
			v, err := c.eval(env, idx.Value)
			if err != nil {
				return nil, err
			}
			indices[i] = v
		}

		subst, unifyErr := unifyAllIndices(indices, scrutArgs, func(level int) bool { return bindLevels[level] })

		switch {
		case unifyErr == nil && clause.IsAbsurd:
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrAbsurdInhabited, clause.Span, "clause for %q is marked absurd, but %q is reachable", name, name))
			continue
		case unifyErr != nil && !clause.IsAbsurd:
			if _, isClash := unifyErr.(*typesystem.Contradiction); isClash {
				c.Diags.Add(diagnostics.Newf(diagnostics.ErrNonAbsurdContradiction, clause.Span, "clause for %q can never match (indices clash) — mark it absurd", name))
				continue
			}
			// Undecidable: the unifier cannot prove or refute reachability.
			// Proceed without index refinement rather than reject a
			// possibly-valid clause outright (a conservative, documented
			// limitation — see DESIGN.md).
		case unifyErr != nil && clause.IsAbsurd:
			if _, isClash := unifyErr.(*typesystem.Contradiction); !isClash {
				c.Diags.Add(diagnostics.Newf(diagnostics.ErrIndexUndecidable, clause.Span, "cannot decide whether %q is absurd", name))
				continue
			}
			arms = append(arms, &ast.Clause{Span: clause.Span, Pattern: clause.Pattern, IsAbsurd: true})
			continue
		}

		refined := resultTy
		if unifyErr == nil {
			refined = subst.Apply(resultTy)
		}
		checkedBody, err := c.Check(innerCtx, clause.Body, refined)
		if err != nil {
			c.Diags.Add(asDiag(err, clause.Span))
			continue
		}
		arms = append(arms, &ast.Clause{Span: clause.Span, Pattern: clause.Pattern, Body: checkedBody})
	}

	checkUnknownClauseHeads(c, sourceArms, ctorNames)
	return arms, nil
}

func unifyAllIndices(lhs, rhs []typesystem.Value, bindable typesystem.Bindable) (typesystem.IndexSubst, error) {
	subst := typesystem.IndexSubst{}
	n := len(lhs)
	if len(rhs) < n {
		n = len(rhs)
	}
	for i := 0; i < n; i++ {
		s, err := typesystem.UnifyIndices(lhs[i], rhs[i], bindable)
		if err != nil {
			return nil, err
		}
		subst = subst.Compose(s)
	}
	return subst, nil
}

func findSourceClause(arms []*ast.Clause, head string) (*ast.Clause, bool) {
	for _, a := range arms {
		if a.Pattern.Head == head {
			return a, true
		}
	}
	return nil, false
}

func checkUnknownClauseHeads(c *Checker, arms []*ast.Clause, known []string) {
	seen := make(map[string]bool)
	for _, a := range arms {
		ok := false
		for _, k := range known {
			if k == a.Pattern.Head {
				ok = true
				break
			}
		}
		if !ok {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrUnknownClauseHead, a.Span, "no constructor or destructor named %q here", a.Pattern.Head))
			continue
		}
		if seen[a.Pattern.Head] {
			c.Diags.Add(diagnostics.Newf(diagnostics.ErrRedundantClause, a.Span, "more than one clause for %q", a.Pattern.Head))
			continue
		}
		seen[a.Pattern.Head] = true
	}
}

// resolveMotive decides the result type a match/comatch elaborates its
// arms against: an explicit expected type (check mode) takes priority;
// otherwise an explicit motive annotation is checked against `Type` and
// evaluated (spec §3's Motive is treated here as the match's overall
// result type rather than a dependent function of the scrutinee — see
// DESIGN.md for this simplification).
func (c *Checker) resolveMotive(ctx *symbols.Context, motive ast.Expr, expected typesystem.Value, span diagnostics.Span) (typesystem.Value, ast.Expr, error) {
	if motive == nil {
		if expected == nil {
			return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, span, "cannot infer a match's result type without a motive or expected type")
		}
		return expected, nil, nil
	}
	checked, err := c.Check(ctx, motive, typesystem.VType{})
	if err != nil {
		return nil, nil, err
	}
	ty, err := c.eval(ctx.ToEnv(), checked)
	if err != nil {
		return nil, nil, err
	}
	if expected != nil {
		if err := c.convert(ty, expected); err != nil {
			return nil, nil, diagnostics.Newf(diagnostics.ErrTypeMismatch, span, "motive does not match expected type: %v", err)
		}
	}
	return ty, checked, nil
}

func asDiag(err error, fallback diagnostics.Span) *diagnostics.Error {
	if de, ok := err.(*diagnostics.Error); ok {
		return de
	}
	return diagnostics.Newf(diagnostics.ErrTypeMismatch, fallback, "%v", err)
}
