// Package diagnostics is the elaborator's error channel (spec §6.3, §7).
//
// The core never writes to stdio; every failure that is not a structural
// bug (an invariant violation worth a panic) is returned as an *Error,
// collected in a Bag (one per elaboration run).
package diagnostics

import (
	"fmt"

	"github.com/google/uuid"
)

// Span is a primary or secondary source location. The core treats spans as
// opaque tokens handed down by the (out-of-scope) lowering stage; it only
// ever echoes them back into diagnostics.
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Code identifies the kind of error, grouped the way spec §7 groups them.
type Code string

const (
	// Typing
	ErrTypeMismatch     Code = "E-TYPE-MISMATCH"
	ErrOccursCheck      Code = "E-OCCURS-CHECK"
	ErrScopeViolation   Code = "E-SCOPE-VIOLATION"
	ErrUniverseMismatch Code = "E-UNIVERSE-MISMATCH"

	// Pattern matching
	ErrNonExhaustive     Code = "E-NON-EXHAUSTIVE"
	ErrRedundantClause   Code = "E-REDUNDANT-CLAUSE"
	ErrUnknownClauseHead Code = "E-UNKNOWN-CLAUSE-HEAD"
	ErrArityMismatch     Code = "E-ARITY-MISMATCH"

	// Absurd clauses
	ErrAbsurdInhabited        Code = "E-ABSURD-INHABITED"
	ErrNonAbsurdContradiction Code = "E-NON-ABSURD-CONTRADICTION"

	// Metavariables
	ErrMetaUnsolved Code = "E-META-UNSOLVED"
	ErrMetaConflict Code = "E-META-CONFLICT"

	// Index unification
	ErrIndexUndecidable Code = "E-INDEX-UNDECIDABLE"
	ErrIndexCyclic      Code = "E-INDEX-CYCLIC"

	// Signature
	ErrDuplicateDecl  Code = "E-DUPLICATE-DECL"
	ErrUndeclaredName Code = "E-UNDECLARED-NAME"
)

// Error is a single structured diagnostic.
type Error struct {
	Code      Code
	Primary   Span
	Secondary []Span
	Message   string
}

func (e *Error) Error() string {
	if len(e.Secondary) == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Primary, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s (see also %v)", e.Primary, e.Code, e.Message, e.Secondary)
}

// New constructs an Error at a primary span, in the teacher's
// diagnostics.NewError(code, token, message) call shape.
func New(code Code, primary Span, message string) *Error {
	return &Error{Code: code, Primary: primary, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(code Code, primary Span, format string, args ...any) *Error {
	return New(code, primary, fmt.Sprintf(format, args...))
}

// WithSecondary attaches secondary spans (e.g. where a conflicting type was
// introduced) and returns the receiver for chaining.
func (e *Error) WithSecondary(spans ...Span) *Error {
	e.Secondary = append(e.Secondary, spans...)
	return e
}

// Bag accumulates the errors produced while elaborating one declaration
// (or one module), deduplicating by (span, code) exactly like the
// teacher's walker.errorSet keyed by "line:col:code".
type Bag struct {
	// RunID correlates every error in this Bag back to one Elaborate call,
	// for drivers that elaborate modules concurrently and need to thread
	// diagnostics back into the right log line.
	RunID uuid.UUID

	seen   map[string]bool
	errors []*Error
}

// NewBag allocates an empty Bag with a fresh correlation id.
func NewBag() *Bag {
	return &Bag{RunID: uuid.New(), seen: make(map[string]bool)}
}

// Add inserts err into the bag, deduplicating by (span, code).
func (b *Bag) Add(err *Error) {
	if err == nil {
		return
	}
	key := fmt.Sprintf("%s:%s", err.Primary, err.Code)
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.errors = append(b.errors, err)
}

// AddAll adds every error from another slice/bag.
func (b *Bag) AddAll(errs []*Error) {
	for _, e := range errs {
		b.Add(e)
	}
}

// Errors returns the accumulated errors in insertion order.
func (b *Bag) Errors() []*Error {
	return b.errors
}

// Empty reports whether no error has been recorded.
func (b *Bag) Empty() bool {
	return len(b.errors) == 0
}
