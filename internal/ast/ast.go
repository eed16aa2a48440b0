// Package ast is the typed AST the elaborator core consumes and produces
// (spec §3, §6.1, §6.2): a resolved, name-annotated tree with De Bruijn
// indices already filled in by the (out-of-scope) lowering stage.
//
// The shape mirrors the teacher's internal/ast package (a Node base
// interface, Statement/Expression markers, a GetToken accessor for
// diagnostics) but the node set itself is the dependent term language of
// spec §3, not funxy's surface syntax. Inferred/checked types are *not*
// stored inline on the node (that would force this package to import the
// semantic domain, which in turn needs to close over terms for
// closures — an import cycle). The elaborator keeps no side table from
// node to type either: a node's type exists only as the Value returned by
// the checker's Infer call, and the exported TypedModule carries no
// per-node type annotations.
package ast

import (
	"github.com/polarity-go/elaborator/internal/diagnostics"
)

// Node is the base interface for every AST node.
type Node interface {
	// Span returns the node's primary source location, for diagnostics.
	Span() diagnostics.Span
}

// Expr is a term of spec §3. Every Expr constructor below is one of the
// tagged variants: Var, TypeUniv, TyCtor, Ctor, CoTyCtor, DtorProj, Call,
// LocalMatch, LocalComatch, Hole, Anno, LocalLet, NatLit.
type Expr interface {
	Node
	exprNode()
}

// exprBase factors the Span bookkeeping shared by every Expr variant, the
// way the teacher's nodes each re-embed a Token field for GetToken.
type exprBase struct {
	span diagnostics.Span
}

func (b *exprBase) Span() diagnostics.Span { return b.span }
func (b *exprBase) exprNode()              {}

// Var is a bound-variable reference, indexed by De Bruijn index (distance
// from its binder) and annotated with the display name used in
// diagnostics (spec §3 "Identifiers").
type Var struct {
	exprBase
	Idx  int
	Name string
}

func NewVar(span diagnostics.Span, idx int, name string) *Var {
	return &Var{exprBase: exprBase{span: span}, Idx: idx, Name: name}
}

// TypeUniv is the single universe `Type`, inhabited by itself
// (spec §4.6: "TypeUniv — infer: type is VType (inconsistent by design)").
type TypeUniv struct{ exprBase }

func NewTypeUniv(span diagnostics.Span) *TypeUniv {
	return &TypeUniv{exprBase{span: span}}
}

// TyCtor is a saturated application of a data or codata type constructor,
// e.g. `Vec(n)`.
type TyCtor struct {
	exprBase
	Name string
	Args []Arg
}

func NewTyCtor(span diagnostics.Span, name string, args []Arg) *TyCtor {
	return &TyCtor{exprBase: exprBase{span: span}, Name: name, Args: args}
}

// Ctor is a saturated application of a term constructor of a data type,
// e.g. `S(n)`.
type Ctor struct {
	exprBase
	Name string
	Args []Arg
}

func NewCtor(span diagnostics.Span, name string, args []Arg) *Ctor {
	return &Ctor{exprBase: exprBase{span: span}, Name: name, Args: args}
}

// CoTyCtor is a saturated codata type constructor application.
type CoTyCtor struct {
	exprBase
	Name string
	Args []Arg
}

func NewCoTyCtor(span diagnostics.Span, name string, args []Arg) *CoTyCtor {
	return &CoTyCtor{exprBase: exprBase{span: span}, Name: name, Args: args}
}

// DtorProj is a destructor projection applied to a head, e.g. `s.head`
// or, with further arguments, `s.apply(x)`.
type DtorProj struct {
	exprBase
	Head Expr
	Name string
	Args []Arg
}

func NewDtorProj(span diagnostics.Span, head Expr, name string, args []Arg) *DtorProj {
	return &DtorProj{exprBase: exprBase{span: span}, Head: head, Name: name, Args: args}
}

// Call is a saturated call to a top-level def/codef/let/type-level
// function, e.g. `Nat.add(m)` or a bare `id(x)`.
type Call struct {
	exprBase
	Name string
	Args []Arg
}

func NewCall(span diagnostics.Span, name string, args []Arg) *Call {
	return &Call{exprBase: exprBase{span: span}, Name: name, Args: args}
}

// LocalMatch is a pattern match on a data value (spec §3, §4.6).
type LocalMatch struct {
	exprBase
	Scrutinee Expr
	// Motive is the (possibly absent) result type of the whole match,
	// checked against Type; it is not a function of the scrutinee. nil
	// means the expected type is used in check mode; in infer mode a nil
	// motive is an error.
	Motive Expr
	Arms   []*Clause
}

func NewLocalMatch(span diagnostics.Span, scrutinee Expr, motive Expr, arms []*Clause) *LocalMatch {
	return &LocalMatch{exprBase: exprBase{span: span}, Scrutinee: scrutinee, Motive: motive, Arms: arms}
}

// LocalComatch is a copattern match producing a codata value.
type LocalComatch struct {
	exprBase
	Motive Expr
	Arms   []*Clause
}

func NewLocalComatch(span diagnostics.Span, motive Expr, arms []*Clause) *LocalComatch {
	return &LocalComatch{exprBase: exprBase{span: span}, Motive: motive, Arms: arms}
}

// HoleKind distinguishes holes that must be solved by the end of
// elaborating a declaration from ones that may remain as a user-visible
// goal (spec §4.6 "Hole{must_solve}").
type HoleKind int

const (
	MustSolve HoleKind = iota
	CanSolve
)

// Hole is a user-visible or compiler-inserted metavariable placeholder.
// MetaID is filled in by the typechecker once a metavariable has been
// allocated for this occurrence.
type Hole struct {
	exprBase
	Kind   HoleKind
	MetaID int
}

func NewHole(span diagnostics.Span, kind HoleKind) *Hole {
	return &Hole{exprBase: exprBase{span: span}, Kind: kind}
}

// Anno is an explicit type annotation, switching bidirectional mode to
// check the body against the (evaluated) annotation.
type Anno struct {
	exprBase
	Body Expr
	Ty   Expr
}

func NewAnno(span diagnostics.Span, body, ty Expr) *Anno {
	return &Anno{exprBase: exprBase{span: span}, Body: body, Ty: ty}
}

// LocalLet is an inlined, non-recursive let binding.
type LocalLet struct {
	exprBase
	Name  string
	Ty    Expr // optional
	Bound Expr
	Body  Expr
}

func NewLocalLet(span diagnostics.Span, name string, ty, bound, body Expr) *LocalLet {
	return &LocalLet{exprBase: exprBase{span: span}, Name: name, Ty: ty, Bound: bound, Body: body}
}

// NatLit is a natural-number literal, desugared to successor applications
// over the resolved `Nat` type during evaluation/read-back of display
// forms; the typechecker treats it as sugar for nested Ctor("S", ...)
// applications terminating in Ctor("Z", nil).
type NatLit struct {
	exprBase
	N uint64
}

func NewNatLit(span diagnostics.Span, n uint64) *NatLit {
	return &NatLit{exprBase: exprBase{span: span}, N: n}
}
