package ast

import "github.com/polarity-go/elaborator/internal/diagnostics"

// Decl is a top-level declaration (spec §3 "Signature entries").
type Decl interface {
	Node
	declNode()
	DeclName() string
}

type declBase struct {
	span diagnostics.Span
	name string
}

func (d declBase) Span() diagnostics.Span { return d.span }
func (d declBase) declNode()              {}
func (d declBase) DeclName() string       { return d.name }

// CtorSig is one constructor of a DataDecl: a telescope of its own
// parameters plus the index vector its return type instantiates the
// owning data type's parameters with, e.g. `VCons(n:Nat, x:A, xs:Vec(n)):
// Vec(S(n))` has ReturnIndices = [S(n)].
type CtorSig struct {
	Span          diagnostics.Span
	Name          string
	Params        Telescope
	ReturnIndices []Arg
}

// DataDecl declares a data type by its finite constructor list.
type DataDecl struct {
	declBase
	Params Telescope
	Ctors  []CtorSig
}

func NewDataDecl(span diagnostics.Span, name string, params Telescope, ctors []CtorSig) *DataDecl {
	return &DataDecl{declBase: declBase{span: span, name: name}, Params: params, Ctors: ctors}
}

// DtorSig is one destructor of a CodataDecl. Self is the (possibly
// compiler-synthesized, per spec §9's ambiguity flag) binder for the
// scrutinee the destructor observes, in scope in Return.
type DtorSig struct {
	Span   diagnostics.Span
	Name   string
	Params Telescope
	Self   *Binder
	Return Expr
}

// CodataDecl declares a codata type by its finite destructor list.
type CodataDecl struct {
	declBase
	Params Telescope
	Dtors  []DtorSig
}

func NewCodataDecl(span diagnostics.Span, name string, params Telescope, dtors []DtorSig) *CodataDecl {
	return &CodataDecl{declBase: declBase{span: span, name: name}, Params: params, Dtors: dtors}
}

// DefDecl is a top-level destructor-like clause set eliminating a data
// type (spec glossary "Definition"), e.g. `def Nat.add(m: Nat): Nat { ... }`.
// Self names the scrutinee binder; per spec §9 an unnamed scrutinee
// (`def Vec(S(n)).head(...)`) still gets Self populated with a
// compiler-synthesized name ("self"), never silently dropped, so
// diagnostics can still name it.
type DefDecl struct {
	declBase
	TypeName string
	Self     Param
	Params   Telescope
	Return   Expr
	Clauses  []*Clause
}

func NewDefDecl(span diagnostics.Span, name, typeName string, self Param, params Telescope, ret Expr, clauses []*Clause) *DefDecl {
	return &DefDecl{declBase: declBase{span: span, name: name}, TypeName: typeName, Self: self, Params: params, Return: ret, Clauses: clauses}
}

// CodefDecl is a top-level copattern clause set producing a codata value
// (spec glossary "Codefinition"), e.g. `codef Zeroes: Stream { .head => Z, .tail => Zeroes }`.
type CodefDecl struct {
	declBase
	TypeName string
	Params   Telescope
	Return   Expr
	Clauses  []*Clause
}

func NewCodefDecl(span diagnostics.Span, name, typeName string, params Telescope, ret Expr, clauses []*Clause) *CodefDecl {
	return &CodefDecl{declBase: declBase{span: span, name: name}, TypeName: typeName, Params: params, Return: ret, Clauses: clauses}
}

// LetDecl is a top-level let-binding. Transparent controls whether the
// evaluator unfolds it during conversion checking (spec §4.4).
type LetDecl struct {
	declBase
	Params      Telescope
	Ty          Expr
	Body        Expr
	Transparent bool
}

func NewLetDecl(span diagnostics.Span, name string, params Telescope, ty, body Expr, transparent bool) *LetDecl {
	return &LetDecl{declBase: declBase{span: span, name: name}, Params: params, Ty: ty, Body: body, Transparent: transparent}
}

// InfixDecl maps a user operator symbol to a binary call target, e.g.
// `infix "++" = Vec.append`.
type InfixDecl struct {
	declBase
	Symbol string
	Target string
}

func NewInfixDecl(span diagnostics.Span, symbol, target string) *InfixDecl {
	return &InfixDecl{declBase: declBase{span: span, name: symbol}, Symbol: symbol, Target: target}
}

// ModuleRef names an imported module; the core treats its contents as
// opaque, already-elaborated signature entries (spec §6.1).
type ModuleRef struct {
	Name string
}

// Module is the resolved input the core consumes (spec §6.1). SymbolTable
// is opaque to the core — passed through untouched to the TypedModule.
type Module struct {
	Name        string
	Imports     []ModuleRef
	Decls       []Decl
	SymbolTable any
}
