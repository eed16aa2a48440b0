package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/evaluator"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

var ns = diagnostics.Span{}

func newChecker() *Checker {
	return NewChecker(symbols.New(), meta.NewStore(), evaluator.Unbounded())
}

// natDataDecl builds `data Nat { Z: Nat, S(n: Nat): Nat }`.
func natDataDecl() *ast.DataDecl {
	return ast.NewDataDecl(ns, "Nat", nil, []ast.CtorSig{
		{Span: ns, Name: "Z", Params: nil, ReturnIndices: nil},
		{Span: ns, Name: "S", Params: ast.Telescope{{Span: ns, Name: "n", Ty: ast.NewTyCtor(ns, "Nat", nil)}}, ReturnIndices: nil},
	})
}

func TestDeclareDataRegistersCtorsAndInfersFine(t *testing.T) {
	c := newChecker()
	entry := c.DeclareData(natDataDecl())
	require.True(t, c.Diags.Empty())
	require.Equal(t, []string{"Z", "S"}, entry.CtorNames())

	got, ty, err := c.Infer(symbols.Empty(), ast.NewCtor(ns, "Z", nil))
	require.NoError(t, err)
	require.Equal(t, typesystem.VTyCtor{Name: "Nat", Args: []typesystem.Value{}}, ty)
	require.Equal(t, "Z", got.(*ast.Ctor).Name)
}

func TestDeclareDataRejectsUnknownCtorName(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())

	_, _, err := c.Infer(symbols.Empty(), ast.NewCtor(ns, "Nope", nil))
	require.Error(t, err)
}

// natAddDefDecl builds `def Nat.add(self: Nat, m: Nat): Nat { Z => m, S(n) => S(add(n, m)) }`.
func natAddDefDecl() *ast.DefDecl {
	clauses := []*ast.Clause{
		{Span: ns, Pattern: ast.Pattern{Span: ns, Head: "Z"}, Body: ast.NewVar(ns, 0, "m")},
		{
			Span:    ns,
			Pattern: ast.Pattern{Span: ns, Head: "S", Binders: []ast.Binder{{Span: ns, Name: "n"}}},
			Body: ast.NewCtor(ns, "S", ast.ExplicitArgs(
				ast.NewCall(ns, "add", ast.ExplicitArgs(ast.NewVar(ns, 0, "n"), ast.NewVar(ns, 1, "m"))),
			)),
		},
	}
	return ast.NewDefDecl(ns, "add", "Nat", ast.Param{Span: ns, Name: "self", Ty: ast.NewTyCtor(ns, "Nat", nil)},
		ast.Telescope{{Span: ns, Name: "m", Ty: ast.NewTyCtor(ns, "Nat", nil)}},
		ast.NewTyCtor(ns, "Nat", nil), clauses)
}

func TestElaborateDefBodyChecksBothClauses(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	entry := c.DeclareDefSkeleton(natAddDefDecl())
	c.ElaborateDefBody(entry, natAddDefDecl())

	require.True(t, c.Diags.Empty(), "%v", c.Diags.Errors())
	require.Len(t, entry.Clauses, 2)
}

func TestElaborateDefBodyReportsNonExhaustive(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	d := natAddDefDecl()
	d.Clauses = d.Clauses[:1] // drop the S clause
	entry := c.DeclareDefSkeleton(d)
	c.ElaborateDefBody(entry, d)

	require.False(t, c.Diags.Empty())
	require.Equal(t, diagnostics.ErrNonExhaustive, c.Diags.Errors()[0].Code)
}

// streamCodataDecl builds `codata Stream { .head(self: Stream): Nat, .tail(self: Stream): Stream }`.
func streamCodataDecl() *ast.CodataDecl {
	self := &ast.Binder{Span: ns, Name: "self"}
	return ast.NewCodataDecl(ns, "Stream", nil, []ast.DtorSig{
		{Span: ns, Name: "head", Self: self, Return: ast.NewTyCtor(ns, "Nat", nil)},
		{Span: ns, Name: "tail", Self: self, Return: ast.NewTyCtor(ns, "Stream", nil)},
	})
}

// zerosCodefDecl builds `codef zeros: Stream { .head => Z, .tail => zeros }`.
func zerosCodefDecl() *ast.CodefDecl {
	clauses := []*ast.Clause{
		{Span: ns, Pattern: ast.Pattern{Span: ns, Head: "head"}, Body: ast.NewCtor(ns, "Z", nil)},
		{Span: ns, Pattern: ast.Pattern{Span: ns, Head: "tail"}, Body: ast.NewCall(ns, "zeros", nil)},
	}
	return ast.NewCodefDecl(ns, "zeros", "Stream", nil, ast.NewCoTyCtor(ns, "Stream", nil), clauses)
}

func TestElaborateCodefBodyChecksEveryDestructor(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	c.DeclareCodata(streamCodataDecl())
	entry := c.DeclareCodefSkeleton(zerosCodefDecl())
	c.ElaborateCodefBody(entry, zerosCodefDecl())

	require.True(t, c.Diags.Empty(), "%v", c.Diags.Errors())
	require.Len(t, entry.Clauses, 2)
}

func TestElaborateCodefBodyReportsMissingDestructor(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	c.DeclareCodata(streamCodataDecl())
	d := zerosCodefDecl()
	d.Clauses = d.Clauses[:1] // drop .tail
	entry := c.DeclareCodefSkeleton(d)
	c.ElaborateCodefBody(entry, d)

	require.False(t, c.Diags.Empty())
	require.Equal(t, diagnostics.ErrNonExhaustive, c.Diags.Errors()[0].Code)
}

func TestDeclareLetChecksBodyAgainstDeclaredType(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	d := ast.NewLetDecl(ns, "one", nil, ast.NewTyCtor(ns, "Nat", nil), ast.NewCtor(ns, "S", ast.ExplicitArgs(ast.NewCtor(ns, "Z", nil))), true)
	entry := c.DeclareLetSkeleton(d)
	c.ElaborateLetBody(entry, d)

	require.True(t, c.Diags.Empty(), "%v", c.Diags.Errors())
	require.NotNil(t, entry.Body)
}

func TestDeclareInfixRequiresKnownTarget(t *testing.T) {
	c := newChecker()
	c.DeclareInfix(ast.NewInfixDecl(ns, "++", "append"))
	require.False(t, c.Diags.Empty())
	require.Equal(t, diagnostics.ErrUndeclaredName, c.Diags.Errors()[0].Code)
}

// vecDataDecl builds the length-indexed `data Vec(n: Nat) { VNil: Vec(Z),
// VCons(m: Nat, xs: Vec(m)): Vec(S(m)) }`, the same family spec.md §8 S4
// uses to require a match arm for an index-incompatible constructor to be
// marked absurd.
func vecDataDecl() *ast.DataDecl {
	return ast.NewDataDecl(ns, "Vec", ast.Telescope{{Span: ns, Name: "n", Ty: ast.NewTyCtor(ns, "Nat", nil)}}, []ast.CtorSig{
		{
			Span:          ns,
			Name:          "VNil",
			ReturnIndices: []ast.Arg{{Kind: ast.ArgExplicit, Value: ast.NewCtor(ns, "Z", nil)}},
		},
		{
			Span: ns,
			Name: "VCons",
			Params: ast.Telescope{
				{Span: ns, Name: "m", Ty: ast.NewTyCtor(ns, "Nat", nil)},
				{Span: ns, Name: "xs", Ty: ast.NewTyCtor(ns, "Vec", ast.ExplicitArgs(ast.NewVar(ns, 0, "m")))},
			},
			ReturnIndices: []ast.Arg{{Kind: ast.ArgExplicit, Value: ast.NewCtor(ns, "S", ast.ExplicitArgs(ast.NewVar(ns, 1, "m")))}},
		},
	})
}

// headOrZeroDefDecl builds `def headOrZero(self: Vec(Z)): Nat { VNil => Z,
// VCons(m, xs) => absurd }` — VCons's return index S(m) can never unify
// with the self type's fixed index Z, so the VCons clause is only
// well-formed when marked absurd.
func headOrZeroDefDecl(vconsAbsurd bool) *ast.DefDecl {
	vcons := &ast.Clause{
		Span:    ns,
		Pattern: ast.Pattern{Span: ns, Head: "VCons", Binders: []ast.Binder{{Span: ns, Name: "m"}, {Span: ns, Name: "xs"}}},
	}
	if vconsAbsurd {
		vcons.IsAbsurd = true
	} else {
		vcons.Body = ast.NewVar(ns, 0, "m")
	}
	return ast.NewDefDecl(ns, "headOrZero", "Vec",
		ast.Param{Span: ns, Name: "self", Ty: ast.NewTyCtor(ns, "Vec", ast.ExplicitArgs(ast.NewCtor(ns, "Z", nil)))},
		nil, ast.NewTyCtor(ns, "Nat", nil),
		[]*ast.Clause{
			{Span: ns, Pattern: ast.Pattern{Span: ns, Head: "VNil"}, Body: ast.NewCtor(ns, "Z", nil)},
			vcons,
		})
}

func TestElaborateDefBodyAcceptsGenuinelyAbsurdClause(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	c.DeclareData(vecDataDecl())
	d := headOrZeroDefDecl(true)
	entry := c.DeclareDefSkeleton(d)
	c.ElaborateDefBody(entry, d)

	require.True(t, c.Diags.Empty(), "%v", c.Diags.Errors())
	require.Len(t, entry.Clauses, 2)
	require.True(t, entry.Clauses[1].IsAbsurd)
	require.Nil(t, entry.Clauses[1].Body)
}

func TestElaborateDefBodyRejectsClauseWronglyMarkedAbsurd(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	c.DeclareData(vecDataDecl())
	// VNil (index Z) genuinely matches the self type's index Z, so marking
	// it absurd is itself an error.
	d := headOrZeroDefDecl(true)
	d.Clauses[0].IsAbsurd = true
	d.Clauses[0].Body = nil
	entry := c.DeclareDefSkeleton(d)
	c.ElaborateDefBody(entry, d)

	require.False(t, c.Diags.Empty())
	require.Equal(t, diagnostics.ErrAbsurdInhabited, c.Diags.Errors()[0].Code)
}

func TestFinalizeFlagsUnsolvedMustSolveMeta(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	hole := ast.NewHole(ns, ast.MustSolve)
	_, err := c.Check(symbols.Empty(), hole, typesystem.VTyCtor{Name: "Nat"})
	require.NoError(t, err)

	c.Finalize()
	require.False(t, c.Diags.Empty())
	require.Equal(t, diagnostics.ErrMetaUnsolved, c.Diags.Errors()[0].Code)
}

func TestFinalizeAllowsUnsolvedCanSolveMeta(t *testing.T) {
	c := newChecker()
	c.DeclareData(natDataDecl())
	hole := ast.NewHole(ns, ast.CanSolve)
	_, err := c.Check(symbols.Empty(), hole, typesystem.VTyCtor{Name: "Nat"})
	require.NoError(t, err)

	c.Finalize()
	require.True(t, c.Diags.Empty())
}
