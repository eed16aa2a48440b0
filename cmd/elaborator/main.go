// Command elaborator is a small smoke-test driver for the core (spec
// §6.4 "the elaborator is a pure function... caching is the driver's
// concern"). Unlike the teacher's cmd/funxy, which reads source files
// through a lexer/parser/backend pipeline, this core's input is the
// already-resolved Module of spec §6.1 — the lowering stage that would
// produce one from source text is explicitly out of scope (spec §1).
// This binary instead builds a small built-in module and reports what
// elaborating it finds, the same "run one module, print diagnostics,
// set exit status" shape as the teacher's CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/polarity-go/elaborator/internal/ast"
	"github.com/polarity-go/elaborator/internal/config"
	"github.com/polarity-go/elaborator/internal/diagnostics"
	"github.com/polarity-go/elaborator/internal/elab"
	"github.com/polarity-go/elaborator/internal/evaluator"
)

func span() diagnostics.Span { return diagnostics.Span{} }

func main() {
	mod := smokeTestModule()
	budget := evaluator.NewBudget(config.EvalStepBudget)

	typed, diags := elab.Elaborate(mod, budget)
	if !diags.Empty() {
		for _, e := range diags.Errors() {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}

	fmt.Printf("elaborated module %q: %d declaration(s), %d metavariable(s) allocated\n",
		typed.Name, len(typed.Decls), len(typed.Metas.All()))
}

// smokeTestModule builds `data Nat { Z: Nat, S(n: Nat): Nat }` plus a
// transparent `let two: Nat = S(S(Z))`, just enough to exercise
// declaration elaboration end to end without a parser.
func smokeTestModule() *ast.Module {
	nat := ast.NewDataDecl(span(), "Nat", nil, []ast.CtorSig{
		{Span: span(), Name: "Z"},
		{Span: span(), Name: "S", Params: ast.Telescope{{Span: span(), Name: "n", Ty: ast.NewTyCtor(span(), "Nat", nil)}}},
	})
	two := ast.NewLetDecl(span(), "two", nil, ast.NewTyCtor(span(), "Nat", nil),
		ast.NewCtor(span(), "S", ast.ExplicitArgs(ast.NewCtor(span(), "S", ast.ExplicitArgs(ast.NewCtor(span(), "Z", nil))))),
		true)
	return &ast.Module{Name: "smoke", Decls: []ast.Decl{nat, two}}
}
