// Package symbols is the elaborator's global lookup table (spec §3
// "Signature entries", §4.1) and the local variable context stacked on
// top of it. It mirrors the teacher's internal/symbols.SymbolTable in
// shape — a name-keyed table built incrementally during elaboration,
// supporting forward declaration via a two-phase (skeleton, then body)
// insertion — but the entry kinds are the dependent-language declaration
// forms of spec §3, not funxy's variable/type/trait/module symbols.
package symbols

import "github.com/polarity-go/elaborator/internal/ast"

// CtorEntry is one constructor or destructor of a data/codata entry,
// cached for O(1) lookup by name within the owning type.
type CtorEntry struct {
	Name          string
	Params        ast.Telescope
	ReturnIndices []ast.Arg // data constructors only
}

// DtorEntry mirrors CtorEntry for codata destructors, which additionally
// carry a self binder and a dependent return type.
type DtorEntry struct {
	Name   string
	Params ast.Telescope
	Self   *ast.Binder
	Return ast.Expr
}

// DataEntry is a data-type signature entry (spec §3).
type DataEntry struct {
	Name   string
	Params ast.Telescope
	Ctors  []CtorEntry
}

// CtorNames returns the constructor names in declaration order, the
// canonical order exhaustiveness checking (spec §4.6 step 4) walks.
func (d *DataEntry) CtorNames() []string {
	names := make([]string, len(d.Ctors))
	for i, c := range d.Ctors {
		names[i] = c.Name
	}
	return names
}

func (d *DataEntry) Ctor(name string) (CtorEntry, bool) {
	for _, c := range d.Ctors {
		if c.Name == name {
			return c, true
		}
	}
	return CtorEntry{}, false
}

// CodataEntry is a codata-type signature entry (spec §3).
type CodataEntry struct {
	Name   string
	Params ast.Telescope
	Dtors  []DtorEntry
}

func (d *CodataEntry) DtorNames() []string {
	names := make([]string, len(d.Dtors))
	for i, x := range d.Dtors {
		names[i] = x.Name
	}
	return names
}

func (d *CodataEntry) Dtor(name string) (DtorEntry, bool) {
	for _, x := range d.Dtors {
		if x.Name == name {
			return x, true
		}
	}
	return DtorEntry{}, false
}

// DefEntry is a top-level def's signature entry: the destructor-like
// clause set eliminating TypeName (spec glossary "Definition").
type DefEntry struct {
	Name     string
	TypeName string
	Self     ast.Param
	Params   ast.Telescope
	Return   ast.Expr
	Clauses  []*ast.Clause
}

// CodefEntry is a top-level codef's signature entry (spec glossary
// "Codefinition").
type CodefEntry struct {
	Name     string
	TypeName string
	Params   ast.Telescope
	Return   ast.Expr
	Clauses  []*ast.Clause
}

// LetEntry is a top-level let-binding's signature entry.
type LetEntry struct {
	Name        string
	Params      ast.Telescope
	Ty          ast.Expr
	Body        ast.Expr
	Transparent bool
}

// InfixEntry maps a user operator symbol to the call it desugars to
// (spec §3 "Infix declaration").
type InfixEntry struct {
	Symbol string
	Target string
}

// Signature is the elaborator's global declaration table. It is built
// incrementally: a declaration's entry is inserted after its own
// signature (parameters + types) has been checked but before its body is
// checked, so forward references within a mutually recursive group can
// resolve (spec §4.1, §5 "Shared resources").
type Signature struct {
	data   map[string]*DataEntry
	codata map[string]*CodataEntry
	defs   map[string]*DefEntry
	codefs map[string]*CodefEntry
	lets   map[string]*LetEntry
	infix  map[string]*InfixEntry
	// order records insertion order across all entry kinds, for
	// deterministic iteration (e.g. golden-output test rendering).
	order []string
}

// New allocates an empty signature.
func New() *Signature {
	return &Signature{
		data:   make(map[string]*DataEntry),
		codata: make(map[string]*CodataEntry),
		defs:   make(map[string]*DefEntry),
		codefs: make(map[string]*CodefEntry),
		lets:   make(map[string]*LetEntry),
		infix:  make(map[string]*InfixEntry),
	}
}

// Has reports whether name is already bound to any entry kind, the check
// a duplicate-declaration diagnostic is built from (spec §7 "Signature:
// duplicate declaration").
func (s *Signature) Has(name string) bool {
	if _, ok := s.data[name]; ok {
		return true
	}
	if _, ok := s.codata[name]; ok {
		return true
	}
	if _, ok := s.defs[name]; ok {
		return true
	}
	if _, ok := s.codefs[name]; ok {
		return true
	}
	if _, ok := s.lets[name]; ok {
		return true
	}
	return false
}

func (s *Signature) AddData(e *DataEntry) {
	s.data[e.Name] = e
	s.order = append(s.order, e.Name)
}

func (s *Signature) AddCodata(e *CodataEntry) {
	s.codata[e.Name] = e
	s.order = append(s.order, e.Name)
}

func (s *Signature) AddDef(e *DefEntry) {
	s.defs[e.Name] = e
	s.order = append(s.order, e.Name)
}

func (s *Signature) AddCodef(e *CodefEntry) {
	s.codefs[e.Name] = e
	s.order = append(s.order, e.Name)
}

func (s *Signature) AddLet(e *LetEntry) {
	s.lets[e.Name] = e
	s.order = append(s.order, e.Name)
}

func (s *Signature) AddInfix(e *InfixEntry) {
	s.infix[e.Symbol] = e
}

func (s *Signature) Data(name string) (*DataEntry, bool) {
	e, ok := s.data[name]
	return e, ok
}

func (s *Signature) Codata(name string) (*CodataEntry, bool) {
	e, ok := s.codata[name]
	return e, ok
}

func (s *Signature) Def(name string) (*DefEntry, bool) {
	e, ok := s.defs[name]
	return e, ok
}

func (s *Signature) Codef(name string) (*CodefEntry, bool) {
	e, ok := s.codefs[name]
	return e, ok
}

func (s *Signature) Let(name string) (*LetEntry, bool) {
	e, ok := s.lets[name]
	return e, ok
}

func (s *Signature) Infix(symbol string) (*InfixEntry, bool) {
	e, ok := s.infix[symbol]
	return e, ok
}

// Order returns declaration names in insertion order.
func (s *Signature) Order() []string {
	return s.order
}

// OwnerOfCtor finds the data type that declares a constructor named
// name, needed whenever elaboration sees a bare Ctor(name, args) and
// must recover which DataEntry it belongs to.
func (s *Signature) OwnerOfCtor(name string) (*DataEntry, bool) {
	for _, d := range s.data {
		if _, ok := d.Ctor(name); ok {
			return d, true
		}
	}
	return nil, false
}

// OwnerOfDtor is OwnerOfCtor's dual for codata destructors.
func (s *Signature) OwnerOfDtor(name string) (*CodataEntry, bool) {
	for _, d := range s.codata {
		if _, ok := d.Dtor(name); ok {
			return d, true
		}
	}
	return nil, false
}
