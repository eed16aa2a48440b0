// Package elab is the elaborator's entrypoint (spec §6): it owns the
// Module -> TypedModule pipeline, wiring a fresh *symbols.Signature and
// *meta.Store through declaration-by-declaration elaboration (spec §5
// "declarations are elaborated in source order") and running
// finalization (spec §4.6) after each one.
package elab

import (
	"fmt"

	"github.com/polarity-go/elaborator/internal/analyzer"
	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/evaluator"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
)

// TypedModule is the elaborator's output (spec §6.2): the module's
// declarations plus the metavariable store for any holes that remain
// open. Decls holds the input declarations as given: no type is attached
// to their nodes, and the checked clause bodies recorded in the checker's
// signature are not part of the result.
type TypedModule struct {
	Name        string
	Imports     []ast.ModuleRef
	Decls       []ast.Decl
	Metas       *meta.Store
	SymbolTable any
}

// Elaborate is the pure function from a resolved module to a typed
// module plus accumulated diagnostics (spec §6.4 "a pure function from
// resolved module + signatures of imports → typed module + metavariable
// table (+ errors)"). A budget bounds every evaluation step taken while
// elaborating; pass evaluator.Unbounded() for no limit.
func Elaborate(mod *ast.Module, budget *evaluator.Budget) (*TypedModule, *diagnostics.Bag) {
	sig := symbols.New()
	store := meta.NewStore()
	checker := analyzer.NewChecker(sig, store, budget)

	typed := make([]ast.Decl, 0, len(mod.Decls))
	for _, d := range mod.Decls {
		typed = append(typed, elaborateDecl(checker, d))
		checker.Finalize()
	}

	return &TypedModule{
		Name:        mod.Name,
		Imports:     mod.Imports,
		Decls:       typed,
		Metas:       store,
		SymbolTable: mod.SymbolTable,
	}, checker.Diags
}

// elaborateDecl dispatches one declaration through its skeleton-then-body
// elaboration (decls.go); diagnostics from a failing declaration are
// recorded on checker.Diags by the callee rather than raised here, so one
// bad declaration never prevents the driver from seeing the rest (spec
// §7 "Errors within a single declaration abort that declaration; the
// driver continues to the next").
func elaborateDecl(c *analyzer.Checker, d ast.Decl) ast.Decl {
	if c.Sig.Has(d.DeclName()) {
		c.Diags.Add(diagnostics.Newf(diagnostics.ErrDuplicateDecl, d.Span(), "%q is already declared", d.DeclName()))
		return d
	}

	switch decl := d.(type) {
	case *ast.DataDecl:
		c.DeclareData(decl)
	case *ast.CodataDecl:
		c.DeclareCodata(decl)
	case *ast.DefDecl:
		entry := c.DeclareDefSkeleton(decl)
		c.ElaborateDefBody(entry, decl)
	case *ast.CodefDecl:
		entry := c.DeclareCodefSkeleton(decl)
		c.ElaborateCodefBody(entry, decl)
	case *ast.LetDecl:
		entry := c.DeclareLetSkeleton(decl)
		c.ElaborateLetBody(entry, decl)
	case *ast.InfixDecl:
		c.DeclareInfix(decl)
	default:
		panic(fmt.Sprintf("elab: unhandled declaration %T — structural bug, not a user error", d))
	}
	return d
}
