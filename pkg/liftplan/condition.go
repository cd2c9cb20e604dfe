package liftplan

// ConditionShape classifies a ConjunctiveCondition by its parameter arity,
// fixing which of the three binding-generation paths in spec §4.4 applies
// (nullary / unary / k-partite clique). Computed once at construction
// time rather than re-branched on every state.
type ConditionShape int

const (
	ShapeNullary ConditionShape = iota
	ShapeUnary
	ShapeClique
)

// ParameterSlot is one parameter of a ConjunctiveCondition: its index and
// the set of base types an object must have to fill it.
type ParameterSlot struct {
	Index int
	Types []string
}

// ConjunctiveCondition is a parameter list with literal lists split by
// PredicateClass and a numeric-constraint list (spec §3). Its nullary
// sub-lists (arity-0 literals) are precomputed at construction, since
// they never participate in the clique search (spec's invariant: "Arity-0
// literals are extracted once as nullary conditions; they are never part
// of the clique search").
type ConjunctiveCondition struct {
	Parameters []ParameterSlot

	// Literals split by class, already partitioned into nullary
	// (arity-0 atom) and non-nullary (mentions at least one parameter).
	NullaryLiterals    []*Literal
	StaticLiterals     []*Literal
	FluentLiterals     []*Literal
	DerivedLiterals    []*Literal
	NumericConstraints []*NumericConstraint

	Shape ConditionShape

	// graph is the precomputed static consistency graph (C4), built once
	// at problem-load time and nil for ShapeNullary conditions.
	graph *StaticConsistencyGraph
}

// Arity returns the number of parameters; |parameters| in spec §3.
func (c *ConjunctiveCondition) Arity() int { return len(c.Parameters) }

// NewConjunctiveCondition partitions literals into nullary/static/fluent/
// derived buckets and numeric constraints, and fixes the condition's
// Shape. The static consistency graph (C4) is attached separately via
// SetGraph once the problem's object universe is known, since graph
// construction needs the full Problem (spec §3: "Consistency graphs ...
// are constructed per schema/axiom once at problem-load time").
func NewConjunctiveCondition(params []ParameterSlot, literals []*Literal, numeric []*NumericConstraint) *ConjunctiveCondition {
	cc := &ConjunctiveCondition{Parameters: params, NumericConstraints: numeric}
	for _, l := range literals {
		if len(l.Atom.Terms) == 0 {
			cc.NullaryLiterals = append(cc.NullaryLiterals, l)
			continue
		}
		switch l.Atom.Predicate.Class {
		case Static:
			cc.StaticLiterals = append(cc.StaticLiterals, l)
		case Fluent:
			cc.FluentLiterals = append(cc.FluentLiterals, l)
		case Derived:
			cc.DerivedLiterals = append(cc.DerivedLiterals, l)
		}
	}
	switch {
	case len(params) == 0:
		cc.Shape = ShapeNullary
	case len(params) == 1:
		cc.Shape = ShapeUnary
	default:
		cc.Shape = ShapeClique
	}
	return cc
}

// SetGraph attaches the precomputed static consistency graph. Called once
// during problem loading.
func (c *ConjunctiveCondition) SetGraph(g *StaticConsistencyGraph) { c.graph = g }

// Graph returns the condition's static consistency graph, or nil for a
// ShapeNullary condition.
func (c *ConjunctiveCondition) Graph() *StaticConsistencyGraph { return c.graph }

// SimpleEffectKind distinguishes the add/delete form of a propositional
// simple effect.
type SimpleEffectKind int

const (
	EffectAdd SimpleEffectKind = iota
	EffectDelete
)

// SimpleEffect is a single polarity-tagged Fluent atom template, the
// payload of a ConditionalEffect (spec §3).
type SimpleEffect struct {
	Kind SimpleEffectKind
	Atom *Atom // over a Fluent predicate
}

// ConjunctiveEffect is an action's unconditional effect: add and delete
// lists over Fluent atoms, plus the numeric effects that always fire
// (spec §3, §4.9).
type ConjunctiveEffect struct {
	Adds    []*Atom
	Deletes []*Atom
	Numeric []*NumericEffect
}

// ConditionalEffect pairs a ConjunctiveCondition with a single simple
// effect: "forall (quantified vars) if Condition then Effect" (spec §3).
// Universal effects are conditional effects whose Condition's parameters
// are the enclosing schema's parameters followed by the quantified
// variables; they expand by Cartesian
// product over the condition's static-consistency-graph object sets at
// grounding time (spec §4.5).
type ConditionalEffect struct {
	Condition *ConjunctiveCondition
	Effect    SimpleEffect
}
