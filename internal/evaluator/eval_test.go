package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/meta"
	"github.com/polarity-go/elaborator/internal/symbols"
	"github.com/polarity-go/elaborator/internal/typesystem"
)

var noSpan = diagnostics.Span{}

func vnat(n int) typesystem.Value {
	v := typesystem.Value(typesystem.VCtor{Name: "Z"})
	for i := 0; i < n; i++ {
		v = typesystem.VCtor{Name: "S", Args: []typesystem.Value{v}}
	}
	return v
}

// natSignature registers a Peano Nat data type plus a def "add" computed
// by recursion on its first (self) argument, the structurally simplest
// scenario exercising def clause dispatch (spec §8 S1-shaped setup).
func natSignature() *symbols.Signature {
	sig := symbols.New()
	sig.AddData(&symbols.DataEntry{
		Name: "Nat",
		Ctors: []symbols.CtorEntry{
			{Name: "Z"},
			{Name: "S", Params: ast.Telescope{{Name: "n", Ty: ast.NewTyCtor(noSpan, "Nat", nil)}}},
		},
	})
	// add(self, m): match self { Z -> m | S(n) -> S(add(n, m)) }
	addClauses := []*ast.Clause{
		{
			Pattern: ast.Pattern{Head: "Z"},
			Body:    ast.NewVar(noSpan, 0, "m"),
		},
		{
			Pattern: ast.Pattern{Head: "S", Binders: []ast.Binder{{Name: "n"}}},
			Body: ast.NewCtor(noSpan, "S", ast.ExplicitArgs(
				ast.NewCall(noSpan, "add", ast.ExplicitArgs(
					ast.NewVar(noSpan, 0, "n"),
					ast.NewVar(noSpan, 1, "m"),
				)),
			)),
		},
	}
	sig.AddDef(&symbols.DefEntry{
		Name:     "add",
		TypeName: "Nat",
		Self:     ast.Param{Name: "self", Ty: ast.NewTyCtor(noSpan, "Nat", nil)},
		Params:   ast.Telescope{{Name: "m", Ty: ast.NewTyCtor(noSpan, "Nat", nil)}},
		Clauses:  addClauses,
	})
	return sig
}

// streamSignature registers a codata Stream type and a codef "zeros"
// producing the constant stream of Z (spec §8 S2-shaped setup), the
// simplest scenario exercising stuck-call-to-codef destructor dispatch.
func streamSignature() *symbols.Signature {
	sig := symbols.New()
	sig.AddCodata(&symbols.CodataEntry{
		Name: "Stream",
		Dtors: []symbols.DtorEntry{
			{Name: "head", Return: ast.NewTyCtor(noSpan, "Nat", nil)},
			{Name: "tail", Return: ast.NewCoTyCtor(noSpan, "Stream", nil)},
		},
	})
	sig.AddCodef(&symbols.CodefEntry{
		Name:     "zeros",
		TypeName: "Stream",
		Return:   ast.NewCoTyCtor(noSpan, "Stream", nil),
		Clauses: []*ast.Clause{
			{Pattern: ast.Pattern{Head: "head"}, Body: ast.NewNatLit(noSpan, 0)},
			{Pattern: ast.Pattern{Head: "tail"}, Body: ast.NewCall(noSpan, "zeros", nil)},
		},
	})
	return sig
}

func TestEvalNatLitDesugarsToSuccessors(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	v, err := Eval(sig, store, nil, ast.NewNatLit(noSpan, 3), Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(3), v)
}

func TestEvalCallDispatchesDefOnZ(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	v, err := applyCall(sig, store, "add", []typesystem.Value{vnat(0), vnat(5)}, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(5), v)
}

func TestEvalCallDispatchesDefRecursively(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	v, err := applyCall(sig, store, "add", []typesystem.Value{vnat(2), vnat(3)}, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(5), v)
}

func TestEvalCallOnNeutralScrutineeStaysStuck(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	scrutinee := typesystem.VNeutral{Head: typesystem.HVar{Level: 0, Name: "x"}}
	v, err := applyCall(sig, store, "add", []typesystem.Value{scrutinee, vnat(1)}, Unbounded())
	require.NoError(t, err)

	n, ok := v.(typesystem.VNeutral)
	require.True(t, ok, "stuck add should evaluate to a neutral")
	require.Equal(t, typesystem.HCall{Name: "add"}, n.Head)
}

func TestEvalCodefProjectionDispatchesHead(t *testing.T) {
	sig := streamSignature()
	store := meta.NewStore()

	zeros, err := applyCall(sig, store, "zeros", nil, Unbounded())
	require.NoError(t, err)

	head, err := applyDtor(sig, store, zeros, "head", nil, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(0), head)
}

func TestEvalCodefProjectionTailStaysACodef(t *testing.T) {
	sig := streamSignature()
	store := meta.NewStore()

	zeros, err := applyCall(sig, store, "zeros", nil, Unbounded())
	require.NoError(t, err)

	tail, err := applyDtor(sig, store, zeros, "tail", nil, Unbounded())
	require.NoError(t, err)

	n, ok := tail.(typesystem.VNeutral)
	require.True(t, ok)
	require.Equal(t, typesystem.HCall{Name: "zeros"}, n.Head)

	// Projecting head again off the recursive tail must reach the same Z.
	headAgain, err := applyDtor(sig, store, tail, "head", nil, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(0), headAgain)
}

func TestEvalLocalComatchProjectsDirectly(t *testing.T) {
	sig := streamSignature()
	store := meta.NewStore()

	comatch := ast.NewLocalComatch(noSpan, nil, []*ast.Clause{
		{Pattern: ast.Pattern{Head: "head"}, Body: ast.NewNatLit(noSpan, 7)},
		{Pattern: ast.Pattern{Head: "tail"}, Body: ast.NewCall(noSpan, "zeros", nil)},
	})

	v, err := Eval(sig, store, nil, comatch, Unbounded())
	require.NoError(t, err)
	_, ok := v.(typesystem.VNeutral).Head.(typesystem.HComatch)
	require.True(t, ok)

	proj := ast.NewDtorProj(noSpan, comatch, "head", nil)
	headVal, err := Eval(sig, store, nil, proj, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(7), headVal)
}

func TestEvalLocalMatchStuckOnNeutralGrowsSpine(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	env := typesystem.Env{}.Extend(typesystem.VNeutral{Head: typesystem.HVar{Level: 0, Name: "x"}})
	match := ast.NewLocalMatch(noSpan, ast.NewVar(noSpan, 0, "x"), nil, []*ast.Clause{
		{Pattern: ast.Pattern{Head: "Z"}, Body: ast.NewNatLit(noSpan, 0)},
		{Pattern: ast.Pattern{Head: "S", Binders: []ast.Binder{{Name: "n"}}}, Body: ast.NewVar(noSpan, 0, "n")},
	})

	v, err := Eval(sig, store, env, match, Unbounded())
	require.NoError(t, err)

	n, ok := v.(typesystem.VNeutral)
	require.True(t, ok)
	require.Len(t, n.Spine, 1)
	_, ok = n.Spine[0].(typesystem.ElimMatch)
	require.True(t, ok)
}

func TestEvalHoleLooksUpMetaStore(t *testing.T) {
	store := meta.NewStore()
	entry := store.Fresh(noSpan, ast.CanSolve, 0, "?0")

	hole := ast.NewHole(noSpan, ast.CanSolve)
	hole.MetaID = entry.ID

	v, err := Eval(nil, store, nil, hole, Unbounded())
	require.NoError(t, err)
	require.Equal(t, typesystem.VNeutral{Head: typesystem.HMeta{ID: entry.ID}}, v)

	require.NoError(t, store.Solve(entry.ID, ast.NewNatLit(noSpan, 2)))
	v2, err := Eval(nil, store, nil, hole, Unbounded())
	require.NoError(t, err)
	require.Equal(t, vnat(2), v2)
}

// TestForceReevaluatesVariableSolutionAtItsOwnDepth reproduces the
// scenario where a metavariable's solution is a reference to an outer
// bound variable (spec §8 S6's `Refl(Bool, b)`-shaped case): the solution
// is recorded once, at the depth the meta was allocated at, and Force
// must be able to re-evaluate it later without the caller supplying any
// environment of its own — in particular it must not panic the way
// passing a bare nil environment to Eval would.
func TestForceReevaluatesVariableSolutionAtItsOwnDepth(t *testing.T) {
	store := meta.NewStore()
	// Allocated as if under a single bound parameter (depth 1).
	entry := store.Fresh(noSpan, ast.CanSolve, 1, "")
	// Solved to that same outer parameter: Var(0) relative to depth 1.
	require.NoError(t, store.Solve(entry.ID, ast.NewVar(noSpan, 0, "m")))

	neutral := typesystem.VNeutral{Head: typesystem.HMeta{ID: entry.ID}}
	got, err := Force(nil, store, neutral, Unbounded())
	require.NoError(t, err)
	require.Equal(t, typesystem.VNeutral{Head: typesystem.HVar{Level: 0}}, got)
}

func TestEvalStepBudgetExceeded(t *testing.T) {
	sig := natSignature()
	store := meta.NewStore()

	// Nest enough LocalLets that each contributes multiple Eval calls
	// (the let itself, its bound expression, its body) to comfortably
	// exceed a tiny budget.
	term := ast.Expr(ast.NewNatLit(noSpan, 0))
	for i := 0; i < 10; i++ {
		term = ast.NewLocalLet(noSpan, "x", nil, ast.NewNatLit(noSpan, 1), term)
	}

	budget := NewBudget(2)
	_, err := Eval(sig, store, nil, term, budget)
	require.ErrorIs(t, err, ErrStepBudgetExceeded)
}
