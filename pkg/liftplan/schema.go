package liftplan

// ActionSchema is a lifted action: name, parameters, a ConjunctiveCondition
// precondition, an unconditional ConjunctiveEffect over Fluent atoms, a
// list of ConditionalEffects, and a cost function-expression (spec §3).
type ActionSchema struct {
	Index         uint32
	Name          string
	Parameters    []ParameterSlot
	Precondition  *ConjunctiveCondition
	Effect        *ConjunctiveEffect
	Conditional   []*ConditionalEffect
	// Cost is nil for unit-cost actions: a schema with no cost expression
	// defaults to cost 1.
	Cost *NumericExpr
}

func (a *ActionSchema) String() string { return a.Name }

// AxiomSchema is a lifted derived-predicate rule: parameters, a
// ConjunctiveCondition body, and a head GroundLiteral-template over a
// Derived predicate, always positive (spec §3). An axiom with zero
// parameters and an empty body is a nullary "always true" rule.
type AxiomSchema struct {
	Index      uint32
	Name       string
	Parameters []ParameterSlot
	Body       *ConjunctiveCondition
	Head       *Atom // over a Derived predicate; Head.Predicate.Class must be Derived
}

func (a *AxiomSchema) String() string { return a.Name }

// HeadPredicateIndex returns the dense index of the axiom's head
// predicate, used to key stratification and axioms_by_body_predicate.
func (a *AxiomSchema) HeadPredicateIndex() uint32 { return a.Head.Predicate.Index }
