package liftplan

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Domain holds the lifted theory shared across problem instances: indexed
// predicate tables by PredicateClass, action schemas, axiom schemas, and
// domain-level constants (spec §3).
type Domain struct {
	Name string

	StaticPredicates  *PredicateTable
	FluentPredicates  *PredicateTable
	DerivedPredicates *PredicateTable
	Functions         *NumericFunctionTable

	Actions   []*ActionSchema
	Axioms    []*AxiomSchema
	Constants *ObjectTable
}

// NewDomain returns an empty Domain named name, with the three predicate
// tables initialised to their respective class.
func NewDomain(name string) *Domain {
	return &Domain{
		Name:              name,
		StaticPredicates:  NewPredicateTable(Static),
		FluentPredicates:  NewPredicateTable(Fluent),
		DerivedPredicates: NewPredicateTable(Derived),
		Functions:         NewNumericFunctionTable(),
		Constants:         NewObjectTable(),
	}
}

// Predicates returns the predicate table for class.
func (d *Domain) Predicates(class PredicateClass) *PredicateTable {
	switch class {
	case Static:
		return d.StaticPredicates
	case Fluent:
		return d.FluentPredicates
	default:
		return d.DerivedPredicates
	}
}

// DomainRepository is the narrow interface LAAG/SAE consume from the
// domain/problem repository (spec §6, "Consumed from the domain/problem
// repository"). *Problem implements it directly; this module treats the
// PDDL parser and any alternative theory representation as an external
// collaborator behind this interface.
type DomainRepository interface {
	GetPredicates(class PredicateClass) []*Predicate
	GetObjects() []*Object
	GetActionSchemas() []*ActionSchema
	GetAxiomSchemas() []*AxiomSchema
	GroundLiteral(l *Literal, binding []*Object) *GroundLiteral
	InitialPositiveStaticAtoms() BitSet
	InitialNumericValues() map[uint32]float64
}

// Problem is a ground problem instance over a Domain: objects, initial
// literals split by PredicateClass, initial numeric-fluent values, a goal
// condition, and problem-level axiom schemas/derived predicates (spec
// §3).
type Problem struct {
	Domain *Domain

	Objects *ObjectTable

	StaticAtoms  *GroundAtomTable
	FluentAtoms  *GroundAtomTable
	DerivedAtoms *GroundAtomTable

	GroundFunctions *GroundFunctionTable

	InitialStaticPositive BitSet
	InitialFluentPositive BitSet
	InitialNumeric        map[uint32]float64

	Goal *ConjunctiveCondition

	// ProblemAxioms are unioned with Domain.Axioms before stratifying: a
	// problem file's own derived-predicate rules participate in the same
	// stratification as the domain's.
	ProblemAxioms []*AxiomSchema

	Strata []Stratum
}

// AllAxioms returns Domain.Axioms unioned with ProblemAxioms, in that
// order (domain axioms first), the set stratification (C10) partitions.
func (p *Problem) AllAxioms() []*AxiomSchema {
	out := make([]*AxiomSchema, 0, len(p.Domain.Axioms)+len(p.ProblemAxioms))
	out = append(out, p.Domain.Axioms...)
	out = append(out, p.ProblemAxioms...)
	return out
}

// GetPredicates implements DomainRepository.
func (p *Problem) GetPredicates(class PredicateClass) []*Predicate {
	return p.Domain.Predicates(class).All()
}

// GetObjects implements DomainRepository.
func (p *Problem) GetObjects() []*Object { return p.Objects.All() }

// GetActionSchemas implements DomainRepository.
func (p *Problem) GetActionSchemas() []*ActionSchema { return p.Domain.Actions }

// GetAxiomSchemas implements DomainRepository.
func (p *Problem) GetAxiomSchemas() []*AxiomSchema { return p.AllAxioms() }

// GroundLiteral substitutes binding into l and interns the resulting
// GroundAtom in the table matching its predicate's class, memoising the
// lookup as spec §6 requires ("memoised by the repository").
func (p *Problem) GroundLiteral(l *Literal, binding []*Object) *GroundLiteral {
	objs := make([]*Object, len(l.Atom.Terms))
	for i, t := range l.Atom.Terms {
		objs[i] = substituteTerm(t, binding)
	}
	ga := p.groundAtomTable(l.Atom.Predicate.Class).Intern(l.Atom.Predicate, objs)
	return &GroundLiteral{Polarity: l.Polarity, Atom: ga}
}

func (p *Problem) groundAtomTable(class PredicateClass) *GroundAtomTable {
	switch class {
	case Static:
		return p.StaticAtoms
	case Fluent:
		return p.FluentAtoms
	default:
		return p.DerivedAtoms
	}
}

// InitialPositiveStaticAtoms implements DomainRepository.
func (p *Problem) InitialPositiveStaticAtoms() BitSet { return p.InitialStaticPositive }

// InitialNumericValues implements DomainRepository.
func (p *Problem) InitialNumericValues() map[uint32]float64 { return p.InitialNumeric }

// EvalContext returns the shared numeric evaluation context for
// static-only evaluation (cost expressions, which never read state).
func (p *Problem) EvalContext() *EvalContext {
	return &EvalContext{Funcs: p.GroundFunctions, StaticInit: p.InitialNumeric}
}

// ProblemBuilder incrementally assembles a Problem, then validates and
// precomputes derived structure (stratification, per-schema/per-axiom
// static consistency graphs) in Build. This is the load-time, single-
// writer phase spec §5 describes; nothing here runs once search begins.
type ProblemBuilder struct {
	domain  *Domain
	objects *ObjectTable

	staticAtoms  *GroundAtomTable
	fluentAtoms  *GroundAtomTable
	derivedAtoms *GroundAtomTable
	groundFuncs  *GroundFunctionTable

	initialStaticLiterals []*Literal
	initialFluentLiterals []*Literal
	initialNumeric        map[uint32]float64

	goal          *ConjunctiveCondition
	problemAxioms []*AxiomSchema
}

// NewProblemBuilder starts building a Problem over domain and objects.
func NewProblemBuilder(domain *Domain, objects *ObjectTable) *ProblemBuilder {
	return &ProblemBuilder{
		domain:         domain,
		objects:        objects,
		staticAtoms:    NewGroundAtomTable(Static),
		fluentAtoms:    NewGroundAtomTable(Fluent),
		derivedAtoms:   NewGroundAtomTable(Derived),
		groundFuncs:    NewGroundFunctionTable(),
		initialNumeric: make(map[uint32]float64),
	}
}

// AddInitialLiteral records one :init literal. Negative literals are
// rejected at Build time (spec §7: "negative literal in initial state").
func (b *ProblemBuilder) AddInitialLiteral(l *Literal) {
	switch l.Atom.Predicate.Class {
	case Static:
		b.initialStaticLiterals = append(b.initialStaticLiterals, l)
	case Fluent:
		b.initialFluentLiterals = append(b.initialFluentLiterals, l)
	}
}

// SetInitialNumericValue records a :init numeric-fluent assignment.
func (b *ProblemBuilder) SetInitialNumericValue(f *NumericFunction, objs []*Object, value float64) {
	gf := b.groundFuncs.Intern(f, objs)
	b.initialNumeric[gf.Index] = value
}

// SetGoal sets the problem's goal condition.
func (b *ProblemBuilder) SetGoal(goal *ConjunctiveCondition) { b.goal = goal }

// AddProblemAxiom records a problem-level (as opposed to domain-level)
// axiom schema.
func (b *ProblemBuilder) AddProblemAxiom(a *AxiomSchema) {
	b.problemAxioms = append(b.problemAxioms, a)
}

// internAll eagerly interns every initial literal's GroundAtom, then every
// ground atom of every static, fluent and derived predicate over the
// problem's objects, so that the atom tables' Len() reflects the full
// universe before any BitSet is sized. It returns the two initial
// ground-atom lists so Build can set their bits directly without a
// second, redundant lookup.
func (b *ProblemBuilder) internAll(p *Problem) ([]*GroundAtom, []*GroundAtom, error) {
	staticGround := make([]*GroundAtom, 0, len(b.initialStaticLiterals))
	for _, l := range b.initialStaticLiterals {
		if l.Polarity == Negative {
			return nil, nil, &StructuralError{Context: l.Atom.String(), Err: ErrNegativeInitialAtom}
		}
		staticGround = append(staticGround, p.GroundLiteral(l, nil).Atom)
	}
	fluentGround := make([]*GroundAtom, 0, len(b.initialFluentLiterals))
	for _, l := range b.initialFluentLiterals {
		if l.Polarity == Negative {
			return nil, nil, &StructuralError{Context: l.Atom.String(), Err: ErrNegativeInitialAtom}
		}
		fluentGround = append(fluentGround, p.GroundLiteral(l, nil).Atom)
	}
	all := p.Objects.All()
	for _, class := range []PredicateClass{Static, Fluent, Derived} {
		for _, pred := range p.Domain.Predicates(class).All() {
			lists := make([][]*Object, pred.Arity)
			for i := range lists {
				lists[i] = all
			}
			for _, objs := range cartesian(lists) {
				p.groundAtomTable(class).Intern(pred, objs)
			}
		}
	}
	return staticGround, fluentGround, nil
}

// Build validates structural invariants, interns the initial atom
// universe, and precomputes per-schema/per-axiom static consistency
// graphs and the axiom stratification. Independent schema/axiom graphs
// are built concurrently via an errgroup.Group, since they share no
// mutable state and the problem's object/predicate universe is already
// frozen by this point (spec §5: loader is single-writer, but nothing
// forbids fanning work out within that one phase).
func (b *ProblemBuilder) Build(ctx context.Context) (*Problem, error) {
	for _, a := range b.domain.Axioms {
		if a.Head.Predicate.Class != Derived {
			return nil, &StructuralError{Context: a.Name, Err: fmt.Errorf("axiom head predicate %q is not derived", a.Head.Predicate.Name)}
		}
	}
	for _, a := range b.problemAxioms {
		if a.Head.Predicate.Class != Derived {
			return nil, &StructuralError{Context: a.Name, Err: fmt.Errorf("axiom head predicate %q is not derived", a.Head.Predicate.Name)}
		}
	}

	p := &Problem{
		Domain:          b.domain,
		Objects:         b.objects,
		StaticAtoms:     b.staticAtoms,
		FluentAtoms:     b.fluentAtoms,
		DerivedAtoms:    b.derivedAtoms,
		GroundFunctions: b.groundFuncs,
		InitialNumeric:  b.initialNumeric,
		Goal:            b.goal,
		ProblemAxioms:   b.problemAxioms,
	}

	staticGround, fluentGround, err := b.internAll(p)
	if err != nil {
		return nil, err
	}

	p.InitialStaticPositive = NewBitSet(p.StaticAtoms.Len())
	for _, ga := range staticGround {
		p.InitialStaticPositive.SetMut(int(ga.Index))
	}
	p.InitialFluentPositive = NewBitSet(p.FluentAtoms.Len())
	for _, ga := range fluentGround {
		p.InitialFluentPositive.SetMut(int(ga.Index))
	}

	strata, err := Stratify(p.AllAxioms())
	if err != nil {
		return nil, err
	}
	p.Strata = strata

	conditions := make([]*ConjunctiveCondition, 0)
	for _, a := range p.Domain.Actions {
		conditions = append(conditions, a.Precondition)
		for _, ce := range a.Conditional {
			conditions = append(conditions, ce.Condition)
		}
	}
	for _, a := range p.AllAxioms() {
		conditions = append(conditions, a.Body)
	}
	if p.Goal != nil {
		conditions = append(conditions, p.Goal)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, cc := range conditions {
		cc := cc
		if cc.Shape != ShapeClique && cc.Shape != ShapeUnary {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			graph, err := BuildStaticConsistencyGraph(cc, p)
			if err != nil {
				return err
			}
			cc.SetGraph(graph)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p, nil
}
