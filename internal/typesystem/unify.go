package typesystem

import "fmt"

// IndexSubst is the result of the index unifier (spec §4.5): a mapping
// from bound De Bruijn levels to the Value they were forced to, used to
// refine a match branch's context and motive. The teacher's analogous
// accumulator is typesystem.Subst (map[string]Type) threaded through
// Unify/UnifyInternal and composed at each step; this is the same shape
// keyed by level instead of type-variable name, since index unification
// never needs to invent fresh names — it only ever binds pattern
// variables the clause already introduced.
type IndexSubst map[int]Value

// Apply substitutes every bound level appearing (with an empty spine) in
// v. Index terms are plain data values, so in practice a bound variable
// never appears under a non-trivial elimination spine; if one does, the
// substitution conservatively leaves that occurrence as-is rather than
// attempting a full re-application (which needs the evaluator's apply
// machinery and the signature it closes over).
func (s IndexSubst) Apply(v Value) Value {
	if len(s) == 0 || v == nil {
		return v
	}
	switch t := v.(type) {
	case VCtor:
		return VCtor{Name: t.Name, Args: s.applyAll(t.Args)}
	case VTyCtor:
		return VTyCtor{Name: t.Name, Args: s.applyAll(t.Args)}
	case VNeutral:
		if hv, ok := t.Head.(HVar); ok && len(t.Spine) == 0 {
			if repl, ok2 := s[hv.Level]; ok2 {
				return repl
			}
		}
		spine := make([]Elim, len(t.Spine))
		for i, e := range t.Spine {
			spine[i] = s.applyElim(e)
		}
		return VNeutral{Head: t.Head, Spine: spine}
	default:
		return v
	}
}

func (s IndexSubst) applyAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = s.Apply(v)
	}
	return out
}

func (s IndexSubst) applyElim(e Elim) Elim {
	switch el := e.(type) {
	case ElimApp:
		return ElimApp{Args: s.applyAll(el.Args)}
	case ElimDtor:
		return ElimDtor{Name: el.Name, Args: s.applyAll(el.Args)}
	default:
		return e
	}
}

// Compose returns the substitution equivalent to applying s first, then
// other, matching Subst.Compose in the teacher's inference solver.
func (s IndexSubst) Compose(other IndexSubst) IndexSubst {
	out := make(IndexSubst, len(s)+len(other))
	for k, v := range s {
		out[k] = other.Apply(v)
	}
	for k, v := range other {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Contradiction is returned when two index terms have distinct
// constructor heads of the same data type — spec §4.5's "clash", which
// makes an `absurd` clause well-typed (or rejects a non-absurd one).
type Contradiction struct {
	LHS, RHS Value
}

func (c *Contradiction) Error() string {
	return fmt.Sprintf("index clash: %s vs %s", describe(c.LHS), describe(c.RHS))
}

// Undecidable is returned when the unifier meets a non-constructor head
// on a side it cannot bind (spec §4.5 "cannot decide").
type Undecidable struct {
	LHS, RHS Value
}

func (u *Undecidable) Error() string {
	return fmt.Sprintf("cannot decide index equation: %s =?= %s", describe(u.LHS), describe(u.RHS))
}

func describe(v Value) string {
	switch t := v.(type) {
	case VCtor:
		return t.Name
	case VTyCtor:
		return t.Name
	case VType:
		return "Type"
	case VNeutral:
		switch h := t.Head.(type) {
		case HVar:
			return h.Name
		case HMeta:
			return fmt.Sprintf("?m%d", h.ID)
		case HCall:
			return h.Name
		}
	}
	return "<value>"
}

// Bindable reports whether a De Bruijn level is one of the fresh pattern
// variables the current clause introduced, and is therefore eligible to
// be solved by the index unifier rather than merely compared.
type Bindable func(level int) bool

// UnifyIndices implements spec §4.5's index unifier: a first-order
// syntactic unifier over constructor terms, extended with injectivity on
// constructors of the same data type and clash on distinct ones. It
// terminates because each recursive step strictly decreases the combined
// size of the two terms (constructor arguments are always structurally
// smaller than their parent).
func UnifyIndices(lhs, rhs Value, bindable Bindable) (IndexSubst, error) {
	return unifyIndices(lhs, rhs, IndexSubst{}, bindable)
}

func unifyIndices(lhs, rhs Value, subst IndexSubst, bindable Bindable) (IndexSubst, error) {
	lhs = subst.Apply(lhs)
	rhs = subst.Apply(rhs)

	if lv, ok := asBindableVar(lhs, bindable); ok {
		if rv, ok2 := asBindableVar(rhs, bindable); ok2 && rv == lv {
			return subst, nil
		}
		return subst.Compose(IndexSubst{lv: rhs}), nil
	}
	if rv, ok := asBindableVar(rhs, bindable); ok {
		return subst.Compose(IndexSubst{rv: lhs}), nil
	}

	switch l := lhs.(type) {
	case VType:
		if _, ok := rhs.(VType); ok {
			return subst, nil
		}
		return nil, &Undecidable{lhs, rhs}

	case VCtor:
		r, ok := rhs.(VCtor)
		if !ok {
			if _, isNeutral := rhs.(VNeutral); isNeutral {
				return nil, &Undecidable{lhs, rhs}
			}
			return nil, &Contradiction{lhs, rhs}
		}
		if l.Name != r.Name {
			return nil, &Contradiction{lhs, rhs}
		}
		return unifyArgs(l.Args, r.Args, subst, bindable)

	case VTyCtor:
		r, ok := rhs.(VTyCtor)
		if !ok || r.Name != l.Name {
			return nil, &Undecidable{lhs, rhs}
		}
		return unifyArgs(l.Args, r.Args, subst, bindable)

	case VNeutral:
		r, ok := rhs.(VNeutral)
		if ok && headsEqual(l.Head, r.Head) && len(l.Spine) == len(r.Spine) {
			cur := subst
			for i := range l.Spine {
				var err error
				cur, err = unifyElim(l.Spine[i], r.Spine[i], cur, bindable)
				if err != nil {
					return nil, err
				}
			}
			return cur, nil
		}
		return nil, &Undecidable{lhs, rhs}

	default:
		return nil, &Undecidable{lhs, rhs}
	}
}

func unifyArgs(ls, rs []Value, subst IndexSubst, bindable Bindable) (IndexSubst, error) {
	if len(ls) != len(rs) {
		return nil, &Contradiction{}
	}
	cur := subst
	for i := range ls {
		var err error
		cur, err = unifyIndices(ls[i], rs[i], cur, bindable)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func unifyElim(l, r Elim, subst IndexSubst, bindable Bindable) (IndexSubst, error) {
	switch le := l.(type) {
	case ElimApp:
		re, ok := r.(ElimApp)
		if !ok {
			return nil, &Undecidable{}
		}
		return unifyArgs(le.Args, re.Args, subst, bindable)
	case ElimDtor:
		re, ok := r.(ElimDtor)
		if !ok || re.Name != le.Name {
			return nil, &Undecidable{}
		}
		return unifyArgs(le.Args, re.Args, subst, bindable)
	default:
		return nil, &Undecidable{}
	}
}

func headsEqual(l, r Head) bool {
	switch lh := l.(type) {
	case HVar:
		rh, ok := r.(HVar)
		return ok && rh.Level == lh.Level
	case HMeta:
		rh, ok := r.(HMeta)
		return ok && rh.ID == lh.ID
	case HCall:
		rh, ok := r.(HCall)
		return ok && rh.Name == lh.Name
	}
	return false
}

func asBindableVar(v Value, bindable Bindable) (int, bool) {
	n, ok := v.(VNeutral)
	if !ok || len(n.Spine) != 0 {
		return 0, false
	}
	hv, ok := n.Head.(HVar)
	if !ok || bindable == nil || !bindable(hv.Level) {
		return 0, false
	}
	return hv.Level, true
}
