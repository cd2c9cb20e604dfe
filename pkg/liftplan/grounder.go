package liftplan

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// GroundAction is a hash-consed ground instance of an ActionSchema: a flat
// precondition (split by PredicateClass into positive/negative bitsets),
// a flat unconditional effect, a ground conditional-effect list, and an
// already-evaluated cost (spec §4.5, C7).
type GroundAction struct {
	Index   uint32
	Schema  *ActionSchema
	Binding []*Object
	debugID uuid.UUID

	PosStatic, NegStatic   BitSet
	PosFluent, NegFluent   BitSet
	PosDerived, NegDerived BitSet

	AddEffects BitSet // fluent atom indices
	DelEffects BitSet

	Conditional []*GroundConditionalEffect
	Numeric     []*GroundNumericEffect

	Cost float64
}

func (g *GroundAction) String() string { return g.Schema.Name }

// DebugID returns a stable, printable handle for g, distinct from its
// dense Index. It exists only for diagnostics (event-hook payloads,
// CLI output) and is never used for equality or hash-cons lookup.
func (g *GroundAction) DebugID() string { return g.debugID.String() }

// IsApplicable re-checks g's flat precondition against state, the
// "assert dynamically applicable" step LAAG performs at emit time (spec
// §4.6).
func (g *GroundAction) IsApplicable(p *Problem, state *UnpackedState) (bool, error) {
	if !state.FluentAtoms.Supersets(g.PosFluent) || !state.FluentAtoms.Disjoint(g.NegFluent) {
		return false, nil
	}
	if !state.DerivedAtoms.Supersets(g.PosDerived) || !state.DerivedAtoms.Disjoint(g.NegDerived) {
		return false, nil
	}
	if !p.InitialStaticPositive.Supersets(g.PosStatic) || !p.InitialStaticPositive.Disjoint(g.NegStatic) {
		return false, nil
	}
	ctx := state.EvalContext()
	for _, nc := range g.Schema.Precondition.NumericConstraints {
		ok, err := nc.Eval(ctx, g.Binding)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// GroundConditionalEffect is one fully-resolved (flat condition, simple
// effect) pair: the quantified variables of a universal effect, if any,
// have already been expanded to concrete objects (spec §4.5: "Universal
// effects expand by Cartesian product ... extending the binding with
// quantified parameters"). Its flat condition is checked against the
// pre-effect state at apply time (spec §4.9); grounding itself only
// prunes instances that are statically or structurally inapplicable.
type GroundConditionalEffect struct {
	PosStatic, NegStatic   BitSet
	PosFluent, NegFluent   BitSet
	PosDerived, NegDerived BitSet
	Binding                []*Object // schema binding, extended with quantified objects

	Numeric []*NumericConstraint // Condition.NumericConstraints, evaluated against Binding

	Add       bool // true: add AtomIndex; false: delete it
	AtomIndex uint32
}

// Holds reports whether ce's flat condition holds in state (spec §4.9).
func (ce *GroundConditionalEffect) Holds(p *Problem, state *UnpackedState) (bool, error) {
	if !state.FluentAtoms.Supersets(ce.PosFluent) || !state.FluentAtoms.Disjoint(ce.NegFluent) {
		return false, nil
	}
	if !state.DerivedAtoms.Supersets(ce.PosDerived) || !state.DerivedAtoms.Disjoint(ce.NegDerived) {
		return false, nil
	}
	if !p.InitialStaticPositive.Supersets(ce.PosStatic) || !p.InitialStaticPositive.Disjoint(ce.NegStatic) {
		return false, nil
	}
	ctx := state.EvalContext()
	for _, nc := range ce.Numeric {
		ok, err := nc.Eval(ctx, ce.Binding)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// GroundAxiom is a hash-consed ground instance of an AxiomSchema: a flat
// body condition and the single derived atom it concludes (spec §4.5,
// §4.7, C7/C9).
type GroundAxiom struct {
	Index   uint32
	Schema  *AxiomSchema
	Binding []*Object
	debugID uuid.UUID

	PosStatic, NegStatic   BitSet
	PosFluent, NegFluent   BitSet
	PosDerived, NegDerived BitSet

	HeadAtomIndex uint32
}

func (g *GroundAxiom) String() string { return g.Schema.Name }

// DebugID returns a stable, printable handle for g, distinct from its
// dense Index. It exists only for diagnostics and is never used for
// equality or hash-cons lookup.
func (g *GroundAxiom) DebugID() string { return g.debugID.String() }

// IsApplicable checks g's flat body against (fluent, derived, static)
// atoms (spec §4.7 step c: "Assert g is applicable against
// (σ.fluent_atoms, σ.derived_atoms, static_positive_atoms)").
func (g *GroundAxiom) IsApplicable(p *Problem, state *UnpackedState) (bool, error) {
	if !state.FluentAtoms.Supersets(g.PosFluent) || !state.FluentAtoms.Disjoint(g.NegFluent) {
		return false, nil
	}
	if !state.DerivedAtoms.Supersets(g.PosDerived) || !state.DerivedAtoms.Disjoint(g.NegDerived) {
		return false, nil
	}
	if !p.InitialStaticPositive.Supersets(g.PosStatic) || !p.InitialStaticPositive.Disjoint(g.NegStatic) {
		return false, nil
	}
	ctx := state.EvalContext()
	for _, nc := range g.Schema.Body.NumericConstraints {
		ok, err := nc.Eval(ctx, g.Binding)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// classify splits cc's literals into per-PredicateClass slices, folding
// nullary literals (not separated by class in ConjunctiveCondition) in by
// their own predicate's class.
func classify(cc *ConjunctiveCondition) (static, fluent, derived []*Literal) {
	static = append(static, cc.StaticLiterals...)
	fluent = append(fluent, cc.FluentLiterals...)
	derived = append(derived, cc.DerivedLiterals...)
	for _, l := range cc.NullaryLiterals {
		switch l.Atom.Predicate.Class {
		case Static:
			static = append(static, l)
		case Fluent:
			fluent = append(fluent, l)
		case Derived:
			derived = append(derived, l)
		}
	}
	return
}

// flatten substitutes binding into every literal of lits and sets the
// resulting ground atom's index in pos (positive literals) or neg
// (negative literals).
func flatten(p *Problem, binding []*Object, lits []*Literal, pos, neg BitSet) {
	for _, l := range lits {
		ga := p.GroundLiteral(l, binding).Atom
		if l.Polarity == Positive {
			pos.SetMut(int(ga.Index))
		} else {
			neg.SetMut(int(ga.Index))
		}
	}
}

// flatCondition builds the six (pos/neg x static/fluent/derived) bitsets
// for cc under binding, reporting ok=false when the positive/negative
// bitsets for any class overlap (spec §4.5: "Assert the positive and
// negative bitsets are disjoint, else ... skip").
func flatCondition(p *Problem, cc *ConjunctiveCondition, binding []*Object) (posS, negS, posF, negF, posD, negD BitSet, ok bool) {
	staticLits, fluentLits, derivedLits := classify(cc)

	posS, negS = NewBitSet(p.StaticAtoms.Len()), NewBitSet(p.StaticAtoms.Len())
	posF, negF = NewBitSet(p.FluentAtoms.Len()), NewBitSet(p.FluentAtoms.Len())
	posD, negD = NewBitSet(p.DerivedAtoms.Len()), NewBitSet(p.DerivedAtoms.Len())

	flatten(p, binding, staticLits, posS, negS)
	flatten(p, binding, fluentLits, posF, negF)
	flatten(p, binding, derivedLits, posD, negD)

	ok = posS.Disjoint(negS) && posF.Disjoint(negF) && posD.Disjoint(negD)
	return
}

// cartesian returns every combination picking one object from each list in
// lists, preserving list order; a single empty combination for an empty
// input (the no-quantified-parameters case).
func cartesian(lists [][]*Object) [][]*Object {
	if len(lists) == 0 {
		return [][]*Object{{}}
	}
	rest := cartesian(lists[1:])
	out := make([][]*Object, 0, len(lists[0])*len(rest))
	for _, o := range lists[0] {
		for _, r := range rest {
			combo := make([]*Object, 0, len(r)+1)
			combo = append(combo, o)
			combo = append(combo, r...)
			out = append(out, combo)
		}
	}
	return out
}

// staticOnlyValid reports whether cc's static (and nullary-static)
// literals are satisfied by binding, ignoring fluent/derived/numeric —
// the filter grounding applies to quantified-parameter combinations
// before they are fully resolved into ground conditional effects (spec
// §4.5's Cartesian-product expansion is pruned by static consistency
// only; dynamic literals are left to the apply-time Holds check).
func staticOnlyValid(p *Problem, cc *ConjunctiveCondition, binding []*Object) bool {
	staticLits, _, _ := classify(cc)
	for _, l := range staticLits {
		ga := p.GroundLiteral(l, binding).Atom
		if p.InitialStaticPositive.Get(int(ga.Index)) != bool(l.Polarity) {
			return false
		}
	}
	return true
}

// groundConditionalEffects expands ce into one GroundConditionalEffect per
// statically-consistent quantified-object combination. ce.Condition's
// parameter list is, by convention, the owning schema's parameters
// followed by zero or more freshly-quantified parameters (spec §4.5:
// "extending the binding with quantified parameters"); actionBinding
// supplies the shared prefix.
func groundConditionalEffects(p *Problem, ce *ConditionalEffect, actionBinding []*Object) []*GroundConditionalEffect {
	cc := ce.Condition
	quantifiedCount := len(cc.Parameters) - len(actionBinding)

	var quantifiedLists [][]*Object
	if quantifiedCount > 0 {
		g := cc.Graph()
		if g == nil {
			return nil
		}
		quantifiedLists = g.ObjectsByParam[len(actionBinding):]
	}

	var out []*GroundConditionalEffect
	for _, combo := range cartesian(quantifiedLists) {
		binding := make([]*Object, 0, len(cc.Parameters))
		binding = append(binding, actionBinding...)
		binding = append(binding, combo...)

		if !staticOnlyValid(p, cc, binding) {
			continue
		}

		posS, negS, posF, negF, posD, negD, ok := flatCondition(p, cc, binding)
		if !ok {
			continue
		}

		atom := p.GroundLiteral(&Literal{Polarity: Positive, Atom: ce.Effect.Atom}, binding).Atom
		out = append(out, &GroundConditionalEffect{
			PosStatic: posS, NegStatic: negS,
			PosFluent: posF, NegFluent: negF,
			PosDerived: posD, NegDerived: negD,
			Binding:   binding,
			Numeric:   cc.NumericConstraints,
			Add:       ce.Effect.Kind == EffectAdd,
			AtomIndex: atom.Index,
		})
	}
	return out
}

// Grounder implements ground(schema, binding) (C7, spec §4.5): a
// hash-cons table per schema/axiom, keyed on (schema index, binding)
// rather than a general call-pattern memoisation table. LAAG may ground
// several schemas concurrently through a WorkerPool, so every cache
// access is taken under mu.
type Grounder struct {
	p     *Problem
	hooks EventHooks

	mu              sync.Mutex
	actionCache     map[uint32]map[string]*GroundAction
	axiomCache      map[uint32]map[string]*GroundAxiom
	nextActionIndex uint32
	nextAxiomIndex  uint32
}

// NewGrounder returns a Grounder over p, reporting cache hits/misses
// through hooks (NoopHooks if nil).
func NewGrounder(p *Problem, hooks EventHooks) *Grounder {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	return &Grounder{
		p:           p,
		hooks:       hooks,
		actionCache: make(map[uint32]map[string]*GroundAction),
		axiomCache:  make(map[uint32]map[string]*GroundAxiom),
	}
}

// bindingKey encodes binding as a fixed-width byte string keyed on object
// index rather than object name: joining names with a "/" separator
// would let two distinct bindings collide whenever an object name itself
// contains "/". Every object contributes exactly 4 bytes, so the
// encoding is unambiguous regardless of naming.
func bindingKey(binding []*Object) string {
	buf := make([]byte, 4*len(binding))
	for i, o := range binding {
		binary.BigEndian.PutUint32(buf[4*i:], o.Index)
	}
	return string(buf)
}

// GroundAction returns the hash-consed GroundAction for (schema, binding),
// building and caching it on a miss. A nil, nil result (with no error)
// means the binding is statically inapplicable (spec §4.5: "skip").
func (gr *Grounder) GroundAction(schema *ActionSchema, binding []*Object) (*GroundAction, error) {
	gr.mu.Lock()
	defer gr.mu.Unlock()

	key := bindingKey(binding)
	m := gr.actionCache[schema.Index]
	if m == nil {
		m = make(map[string]*GroundAction)
		gr.actionCache[schema.Index] = m
	}
	if ga, ok := m[key]; ok {
		gr.hooks.OnCacheHit(schema.Index)
		return ga, nil
	}

	p := gr.p
	posS, negS, posF, negF, posD, negD, ok := flatCondition(p, schema.Precondition, binding)
	if !ok {
		m[key] = nil
		return nil, nil
	}

	addEffects := NewBitSet(p.FluentAtoms.Len())
	delEffects := NewBitSet(p.FluentAtoms.Len())
	for _, a := range schema.Effect.Adds {
		ga := p.GroundLiteral(&Literal{Polarity: Positive, Atom: a}, binding).Atom
		addEffects.SetMut(int(ga.Index))
	}
	for _, a := range schema.Effect.Deletes {
		ga := p.GroundLiteral(&Literal{Polarity: Positive, Atom: a}, binding).Atom
		delEffects.SetMut(int(ga.Index))
	}

	numeric := make([]*GroundNumericEffect, 0, len(schema.Effect.Numeric))
	for _, ne := range schema.Effect.Numeric {
		objs := make([]*Object, len(ne.Args))
		for i, t := range ne.Args {
			objs[i] = substituteTerm(t, binding)
		}
		gf := p.GroundFunctions.Intern(ne.Target, objs)
		numeric = append(numeric, &GroundNumericEffect{Kind: ne.Kind, Target: gf.Index, Value: ne.Value, Args: binding})
	}

	var conditional []*GroundConditionalEffect
	for _, ce := range schema.Conditional {
		conditional = append(conditional, groundConditionalEffects(p, ce, binding)...)
	}

	cost := 1.0 // unit-cost default for schemas with no cost expression.
	if schema.Cost != nil {
		v, err := schema.Cost.Eval(p.EvalContext(), binding)
		if err != nil {
			// ArithmeticError while grounding is swallowed, not propagated
			// (spec §7): treat the binding as statically inapplicable.
			gr.hooks.OnInvalidBinding(err)
			m[key] = nil
			return nil, nil
		}
		cost = v
	}

	ga := &GroundAction{
		Index: gr.nextActionIndex, Schema: schema, Binding: binding,
		debugID:   uuid.New(),
		PosStatic: posS, NegStatic: negS,
		PosFluent: posF, NegFluent: negF,
		PosDerived: posD, NegDerived: negD,
		AddEffects: addEffects, DelEffects: delEffects,
		Conditional: conditional, Numeric: numeric,
		Cost: cost,
	}
	gr.nextActionIndex++
	m[key] = ga
	gr.hooks.OnCacheMiss(schema.Index)
	return ga, nil
}

// GroundAxiom returns the hash-consed GroundAxiom for (schema, binding),
// building and caching it on a miss. A nil, nil result means the binding
// is statically inapplicable.
func (gr *Grounder) GroundAxiom(schema *AxiomSchema, binding []*Object) (*GroundAxiom, error) {
	gr.mu.Lock()
	defer gr.mu.Unlock()

	key := bindingKey(binding)
	m := gr.axiomCache[schema.Index]
	if m == nil {
		m = make(map[string]*GroundAxiom)
		gr.axiomCache[schema.Index] = m
	}
	if ga, ok := m[key]; ok {
		gr.hooks.OnCacheHit(schema.Index)
		return ga, nil
	}

	p := gr.p
	posS, negS, posF, negF, posD, negD, ok := flatCondition(p, schema.Body, binding)
	if !ok {
		m[key] = nil
		return nil, nil
	}

	head := p.GroundLiteral(&Literal{Polarity: Positive, Atom: schema.Head}, binding).Atom

	ga := &GroundAxiom{
		Index: gr.nextAxiomIndex, Schema: schema, Binding: binding,
		debugID:   uuid.New(),
		PosStatic: posS, NegStatic: negS,
		PosFluent: posF, NegFluent: negF,
		PosDerived: posD, NegDerived: negD,
		HeadAtomIndex: head.Index,
	}
	gr.nextAxiomIndex++
	m[key] = ga
	gr.hooks.OnCacheMiss(schema.Index)
	return ga, nil
}
