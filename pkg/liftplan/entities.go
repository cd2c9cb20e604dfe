package liftplan

import (
	"fmt"
	"strings"
	"sync"
)

// Object is an interned constant. Identity is by Index; two Objects with
// the same Index are the same object (spec §3: "All are interned;
// identity is by stable unsigned index; equality by index").
type Object struct {
	Index uint32
	Name  string
	Types []string // base types this object belongs to, most specific first
}

func (o *Object) String() string { return o.Name }

// HasType reports whether t names one of o's base types.
func (o *Object) HasType(t string) bool {
	for _, bt := range o.Types {
		if bt == t {
			return true
		}
	}
	return false
}

// PredicateClass tags a predicate (or a literal, atom, bitset...) by which
// of the three dynamics classes it belongs to: three parallel fields and
// three parallel method overloads rather than a generic type parameter,
// since the three classes are a closed, small set and the differences
// between them are in *where their bitset lives*, not in their shape.
type PredicateClass uint8

const (
	// Static predicates never change: their extension is fixed at the
	// problem's initial state and is reused, unchanged, for the whole run.
	Static PredicateClass = iota
	// Fluent predicates may change under action effects.
	Fluent
	// Derived predicates are defined by axioms, not by initial state or
	// action effects.
	Derived
)

func (p PredicateClass) String() string {
	switch p {
	case Static:
		return "static"
	case Fluent:
		return "fluent"
	case Derived:
		return "derived"
	default:
		return "unknown"
	}
}

// Predicate is an interned predicate symbol of a given PredicateClass.
type Predicate struct {
	Index uint32
	Name  string
	Arity int
	Class PredicateClass
}

func (p *Predicate) String() string { return p.Name }

// Variable is a reference to the pi-th parameter of whichever
// ConjunctiveCondition or ActionSchema/AxiomSchema owns it (spec §3:
// "a parameter index (0-based within its owning schema/condition)").
// Variables carry no global identity outside their owner; two Variables
// with the same ParamIndex in two different conditions are unrelated.
type Variable struct {
	ParamIndex int
}

func (v Variable) String() string { return fmt.Sprintf("?x%d", v.ParamIndex) }

// Term is a tagged union of {Object, Variable}. Exactly one of the two
// optional fields is meaningful, selected by IsVar.
type Term struct {
	isVar bool
	obj   *Object
	vrb   Variable
}

// ObjectTerm builds a ground Term wrapping o.
func ObjectTerm(o *Object) Term { return Term{isVar: false, obj: o} }

// VariableTerm builds a lifted Term referencing parameter index pi.
func VariableTerm(pi int) Term { return Term{isVar: true, vrb: Variable{ParamIndex: pi}} }

// IsVar reports whether t is a Variable term.
func (t Term) IsVar() bool { return t.isVar }

// Object returns the underlying Object; only valid when !IsVar().
func (t Term) Object() *Object { return t.obj }

// Variable returns the underlying Variable; only valid when IsVar().
func (t Term) Variable() Variable { return t.vrb }

func (t Term) String() string {
	if t.isVar {
		return t.vrb.String()
	}
	return t.obj.String()
}

// Atom is a predicate applied to an ordered term list. An Atom is lifted
// (contains at least one Variable term) or ground (every term is an
// Object term). Arity-0 atoms (Predicate.Arity == 0) carry an empty Terms
// slice and are always ground.
type Atom struct {
	Predicate *Predicate
	Terms     []Term
}

func (a *Atom) String() string {
	if len(a.Terms) == 0 {
		return a.Predicate.Name
	}
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", a.Predicate.Name, strings.Join(parts, ", "))
}

// IsLifted reports whether any term of a is a Variable.
func (a *Atom) IsLifted() bool {
	for _, t := range a.Terms {
		if t.IsVar() {
			return true
		}
	}
	return false
}

// GroundAtom is an interned, fully-ground Atom: a predicate applied to an
// ordered Object list. Identity is by Index within the owning
// GroundAtomTable for the predicate's PredicateClass.
type GroundAtom struct {
	Index     uint32
	Predicate *Predicate
	Objects   []*Object
}

func (g *GroundAtom) String() string {
	if len(g.Objects) == 0 {
		return g.Predicate.Name
	}
	parts := make([]string, len(g.Objects))
	for i, o := range g.Objects {
		parts[i] = o.Name
	}
	return fmt.Sprintf("%s(%s)", g.Predicate.Name, strings.Join(parts, ", "))
}

// Polarity is the sign of a literal.
type Polarity bool

const (
	Positive Polarity = true
	Negative Polarity = false
)

func (p Polarity) String() string {
	if p == Positive {
		return "+"
	}
	return "-"
}

// Literal is a polarity-tagged Atom.
type Literal struct {
	Polarity Polarity
	Atom     *Atom
}

func (l *Literal) String() string {
	if l.Polarity == Negative {
		return "(not " + l.Atom.String() + ")"
	}
	return l.Atom.String()
}

// GroundLiteral is a polarity-tagged GroundAtom.
type GroundLiteral struct {
	Polarity Polarity
	Atom     *GroundAtom
}

func (l *GroundLiteral) String() string {
	if l.Polarity == Negative {
		return "(not " + l.Atom.String() + ")"
	}
	return l.Atom.String()
}

// ObjectTable is the append-only, dense interning repository for Objects
// (C1). It is single-writer (the problem loader) and read-only during
// search (spec §5), indexed by dense uint32 rather than string IDs.
type ObjectTable struct {
	byIndex []*Object
	byName  map[string]*Object
}

// NewObjectTable returns an empty ObjectTable.
func NewObjectTable() *ObjectTable {
	return &ObjectTable{byName: make(map[string]*Object)}
}

// Intern appends a new Object and returns it, or returns the existing
// Object if name was already interned.
func (t *ObjectTable) Intern(name string, types []string) *Object {
	if o, ok := t.byName[name]; ok {
		return o
	}
	o := &Object{Index: uint32(len(t.byIndex)), Name: name, Types: types}
	t.byIndex = append(t.byIndex, o)
	t.byName[name] = o
	return o
}

// Lookup returns the Object named name, or nil.
func (t *ObjectTable) Lookup(name string) *Object { return t.byName[name] }

// All returns the dense, index-ordered slice of every interned Object.
func (t *ObjectTable) All() []*Object { return t.byIndex }

// Len returns the number of interned objects.
func (t *ObjectTable) Len() int { return len(t.byIndex) }

// ByType returns every interned Object whose Types include t, in index
// order. The static consistency graph does not call it; it filters All()
// through typeConsistent instead.
func (t *ObjectTable) ByType(typ string) []*Object {
	out := make([]*Object, 0)
	for _, o := range t.byIndex {
		if o.HasType(typ) {
			out = append(out, o)
		}
	}
	return out
}

// PredicateTable interns Predicates of a single PredicateClass.
type PredicateTable struct {
	class   PredicateClass
	byIndex []*Predicate
	byName  map[string]*Predicate
}

// NewPredicateTable returns an empty PredicateTable for class.
func NewPredicateTable(class PredicateClass) *PredicateTable {
	return &PredicateTable{class: class, byName: make(map[string]*Predicate)}
}

// Intern appends a new Predicate of the table's class, or returns the
// existing one if name was already interned; arity is not compared
// against the existing predicate's.
func (t *PredicateTable) Intern(name string, arity int) *Predicate {
	if p, ok := t.byName[name]; ok {
		return p
	}
	p := &Predicate{Index: uint32(len(t.byIndex)), Name: name, Arity: arity, Class: t.class}
	t.byIndex = append(t.byIndex, p)
	t.byName[name] = p
	return p
}

// Lookup returns the Predicate named name, or nil.
func (t *PredicateTable) Lookup(name string) *Predicate { return t.byName[name] }

// All returns every interned Predicate in index order.
func (t *PredicateTable) All() []*Predicate { return t.byIndex }

// Len returns the number of interned predicates.
func (t *PredicateTable) Len() int { return len(t.byIndex) }

// GroundAtomTable interns GroundAtoms for a single predicate class,
// keyed by (predicate index, object index list). This is the per-class
// analogue of the grounder's hash-cons table (C7), specialised to atoms
// rather than whole ground actions: it gives every ground atom a stable,
// dense Index usable directly as a bit position in a BitSet. Problem
// loading interns every atom over the problem's objects up front; LAAG/SAE
// still call Intern while grounding schemas against new states (which
// returns the existing atom), so Intern/Lookup take mu to stay safe when a
// WorkerPool grounds several schemas concurrently.
type GroundAtomTable struct {
	mu      sync.RWMutex
	class   PredicateClass
	byIndex []*GroundAtom
	byKey   map[string]*GroundAtom
}

// NewGroundAtomTable returns an empty GroundAtomTable for class.
func NewGroundAtomTable(class PredicateClass) *GroundAtomTable {
	return &GroundAtomTable{class: class, byKey: make(map[string]*GroundAtom)}
}

func groundAtomKey(p *Predicate, objs []*Object) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	for _, o := range objs {
		sb.WriteByte('/')
		fmt.Fprintf(&sb, "%d", o.Index)
	}
	return sb.String()
}

// Intern returns the GroundAtom for (p, objs), creating and appending one
// if it hasn't been seen before.
func (t *GroundAtomTable) Intern(p *Predicate, objs []*Object) *GroundAtom {
	key := groundAtomKey(p, objs)
	t.mu.RLock()
	if g, ok := t.byKey[key]; ok {
		t.mu.RUnlock()
		return g
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.byKey[key]; ok {
		return g
	}
	objsCopy := append([]*Object(nil), objs...)
	g := &GroundAtom{Index: uint32(len(t.byIndex)), Predicate: p, Objects: objsCopy}
	t.byIndex = append(t.byIndex, g)
	t.byKey[key] = g
	return g
}

// Lookup returns the GroundAtom for (p, objs) without interning, or nil.
func (t *GroundAtomTable) Lookup(p *Predicate, objs []*Object) *GroundAtom {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byKey[groundAtomKey(p, objs)]
}

// Len returns the number of interned ground atoms; also the required
// universe size for a BitSet over this table's class.
func (t *GroundAtomTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byIndex)
}

// Get returns the GroundAtom with the given dense index.
func (t *GroundAtomTable) Get(i uint32) *GroundAtom {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byIndex[i]
}

// All returns every interned GroundAtom in index order.
func (t *GroundAtomTable) All() []*GroundAtom {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byIndex
}
