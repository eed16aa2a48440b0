package elab

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/evaluator"
)

var noSpan = diagnostics.Span{}

// natStreamModule builds a small but complete module exercising every
// declaration kind: `data Nat`, `def Nat.add`, `codata Stream`, `codef
// zeros`, a transparent `let`, and an `infix` alias — the same S1-style
// scenario spec.md §8 describes end to end.
func natStreamModule() *ast.Module {
	natDecl := ast.NewDataDecl(noSpan, "Nat", nil, []ast.CtorSig{
		{Span: noSpan, Name: "Z"},
		{Span: noSpan, Name: "S", Params: ast.Telescope{{Span: noSpan, Name: "n", Ty: ast.NewTyCtor(noSpan, "Nat", nil)}}},
	})

	addDecl := ast.NewDefDecl(noSpan, "add", "Nat",
		ast.Param{Span: noSpan, Name: "self", Ty: ast.NewTyCtor(noSpan, "Nat", nil)},
		ast.Telescope{{Span: noSpan, Name: "m", Ty: ast.NewTyCtor(noSpan, "Nat", nil)}},
		ast.NewTyCtor(noSpan, "Nat", nil),
		[]*ast.Clause{
			{Span: noSpan, Pattern: ast.Pattern{Span: noSpan, Head: "Z"}, Body: ast.NewVar(noSpan, 0, "m")},
			{
				Span:    noSpan,
				Pattern: ast.Pattern{Span: noSpan, Head: "S", Binders: []ast.Binder{{Span: noSpan, Name: "n"}}},
				Body: ast.NewCtor(noSpan, "S", ast.ExplicitArgs(
					ast.NewCall(noSpan, "add", ast.ExplicitArgs(ast.NewVar(noSpan, 0, "n"), ast.NewVar(noSpan, 1, "m"))),
				)),
			},
		})

	self := &ast.Binder{Span: noSpan, Name: "self"}
	streamDecl := ast.NewCodataDecl(noSpan, "Stream", nil, []ast.DtorSig{
		{Span: noSpan, Name: "head", Self: self, Return: ast.NewTyCtor(noSpan, "Nat", nil)},
		{Span: noSpan, Name: "tail", Self: self, Return: ast.NewTyCtor(noSpan, "Stream", nil)},
	})

	zerosDecl := ast.NewCodefDecl(noSpan, "zeros", "Stream", nil, ast.NewCoTyCtor(noSpan, "Stream", nil),
		[]*ast.Clause{
			{Span: noSpan, Pattern: ast.Pattern{Span: noSpan, Head: "head"}, Body: ast.NewCtor(noSpan, "Z", nil)},
			{Span: noSpan, Pattern: ast.Pattern{Span: noSpan, Head: "tail"}, Body: ast.NewCall(noSpan, "zeros", nil)},
		})

	oneDecl := ast.NewLetDecl(noSpan, "one", nil, ast.NewTyCtor(noSpan, "Nat", nil),
		ast.NewCtor(noSpan, "S", ast.ExplicitArgs(ast.NewCtor(noSpan, "Z", nil))), true)

	addInfix := ast.NewInfixDecl(noSpan, "+", "add")

	return &ast.Module{
		Name:  "NatStream",
		Decls: []ast.Decl{natDecl, addDecl, streamDecl, zerosDecl, oneDecl, addInfix},
	}
}

func TestElaborateFullModuleProducesNoDiagnostics(t *testing.T) {
	typed, diags := Elaborate(natStreamModule(), evaluator.Unbounded())

	require.True(t, diags.Empty(), "%v", diags.Errors())
	require.Equal(t, "NatStream", typed.Name)
	require.Len(t, typed.Decls, 6)
	require.NotNil(t, typed.Metas)
}

// TestElaborateFullModuleDeclarationSummary snapshots the shape of a clean
// elaboration (declaration names and clause counts), the same golden-output
// style config.IsTestMode exists to make reproducible.
func TestElaborateFullModuleDeclarationSummary(t *testing.T) {
	typed, diags := Elaborate(natStreamModule(), evaluator.Unbounded())
	require.True(t, diags.Empty(), "%v", diags.Errors())

	summary := make([]string, 0, len(typed.Decls))
	for _, d := range typed.Decls {
		summary = append(summary, fmt.Sprintf("%T %s", d, d.DeclName()))
	}
	snaps.MatchSnapshot(t, summary)
}

func TestElaborateReportsDuplicateDeclaration(t *testing.T) {
	mod := natStreamModule()
	mod.Decls = append(mod.Decls, ast.NewDataDecl(noSpan, "Nat", nil, nil))

	_, diags := Elaborate(mod, evaluator.Unbounded())

	require.False(t, diags.Empty())
	found := false
	for _, e := range diags.Errors() {
		if e.Code == diagnostics.ErrDuplicateDecl {
			found = true
		}
	}
	require.True(t, found)
}

func TestElaborateReportsNonExhaustiveDefClause(t *testing.T) {
	mod := natStreamModule()
	def := mod.Decls[1].(*ast.DefDecl)
	def.Clauses = def.Clauses[:1]

	_, diags := Elaborate(mod, evaluator.Unbounded())

	require.False(t, diags.Empty())
	require.Equal(t, diagnostics.ErrNonExhaustive, diags.Errors()[0].Code)
}
