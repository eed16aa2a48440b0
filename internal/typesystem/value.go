// Package typesystem is the elaborator's semantic domain (spec §3 "Values
// & neutrals", §4.2): weak-head normal forms closed over environments,
// with neutrals standing for stuck computations and metavariables.
//
// Because this language has a single universe (`Type : Type`), a "type"
// is just a Value like any other — there is no separate kind system the
// way the teacher's typesystem package had one (Kind/TVar/TCon for its
// Hindley-Milner surface language). What is kept from the teacher is the
// *shape*: a closed Value/Subst representation and a unifier
// (unify.go) that solves equations by structural recursion with an
// explicit substitution accumulator, mirroring typesystem.Unify's
// co-inductive recursion over typesystem.Type in the teacher.
package typesystem

import "github.com/polarity-go/elaborator/internal/ast"

// Value is a term reduced to weak-head normal form (spec §4.2).
type Value interface {
	isValue()
}

// VType is the single universe `Type`.
type VType struct{}

func (VType) isValue() {}

// VTyCtor is a saturated data-type or codata-type constructor value, e.g.
// `Vec(n)`. Which of the two it is is recoverable from the signature by
// Name; the value representation does not distinguish them because
// nothing in the evaluator/conversion checker needs to before a
// destructor is actually projected (that path goes through VNeutral for
// codata values instead — see VCtor's doc comment).
type VTyCtor struct {
	Name string
	Args []Value
}

func (VTyCtor) isValue() {}

// VCtor is a saturated term-constructor value of a data type, e.g.
// `S(Z)`.
//
// There is no separate "VComatch" or "VClosure" value: a codata value
// produced by a codef is represented as VNeutral with an HCall head
// (spec §4.2: "Call to a codef: produce a VNeutral whose head is the
// codef, awaiting destructor observation"), and one produced by an inline
// comatch as VNeutral with an HComatch head — it genuinely cannot
// reduce further until a destructor is projected onto it, which is
// exactly what a neutral means.
type VCtor struct {
	Name string
	Args []Value
}

func (VCtor) isValue() {}

// VNeutral is a value whose computation is stuck: the head is a free
// variable, an unsolved metavariable, an opaque/blocked call, and the
// spine is the sequence of eliminators (applications, projections,
// matches) still pending against it.
type VNeutral struct {
	Head  Head
	Spine []Elim
}

func (VNeutral) isValue() {}

// Head is the stuck computation at the bottom of a neutral's spine.
type Head interface {
	isHead()
}

// HVar is a free local variable, addressed by De Bruijn level so its
// identity is stable across context extension (spec §3 "Identifiers").
type HVar struct {
	Level int
	Name  string // display name, for diagnostics/read-back only
}

func (HVar) isHead() {}

// HMeta is an unsolved metavariable.
type HMeta struct {
	ID int
}

func (HMeta) isHead() {}

// HComatch is the head of a value produced directly by a LocalComatch
// expression (an inline copattern match, as opposed to a named codef):
// it carries its own copattern arms and the environment they close over,
// since — unlike a named codef — there is no signature entry to look
// them up from later when a destructor is finally projected.
type HComatch struct {
	Clauses []ClauseClosure
}

func (HComatch) isHead() {}

// HCall is a stuck call: either an opaque let (never unfolded during
// conversion, spec §4.4) or a def/codef call blocked because its
// scrutinee/self argument is itself neutral (spec §4.2 "Call to a def...:
// choose the clause whose pattern head matches the scrutinee's
// constructor" — when there is no such constructor yet, the call stays
// stuck under this head), or a codef awaiting its first destructor
// projection.
type HCall struct {
	Name string
}

func (HCall) isHead() {}

// Elim is one eliminator applied to a neutral head, in application order.
type Elim interface {
	isElim()
}

// ElimApp is an applied argument vector, e.g. the `(m)` in a stuck
// `add(n, m)` call, or extra arguments passed alongside a destructor
// projection.
type ElimApp struct {
	Args []Value
}

func (ElimApp) isElim() {}

// ElimDtor is a destructor projection, e.g. the `.head` in `s.head`.
type ElimDtor struct {
	Name string
	Args []Value
}

func (ElimDtor) isElim() {}

// ElimMatch is a LocalMatch stuck on this neutral as its scrutinee: the
// clause bodies are retained as closures (unevaluated terms paired with
// the environment they close over) so that once the
// scrutinee resolves to a constructor the match can resume, and so that
// read-back can reify the stuck match back into a term (spec §4.3).
type ElimMatch struct {
	Clauses []ClauseClosure
	Motive  Value // the match's motive, for read-back/annotation; may be nil
}

func (ElimMatch) isElim() {}

// Closure pairs an unevaluated term with the environment it closes over,
// used whenever evaluation needs to defer substitution into a binder's
// body (spec §3 "closures pair a term with its lexical environment").
type Closure struct {
	Term ast.Expr
	Env  Env
}

// ClauseClosure is one match/comatch arm paired with the environment in
// scope at the point the match itself was encountered (before the
// pattern's own binders are added).
type ClauseClosure struct {
	Clause *ast.Clause
	Env    Env
}
