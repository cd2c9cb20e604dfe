package liftplan

import "errors"

// errBindingRejected is reported to EventHooks.OnInvalidBinding when a
// candidate binding reaches full validation and fails it (spec §4.4,
// "emit or report invalid"). It is never returned to BindingGenerator's
// caller — invalid bindings are swallowed, not propagated (spec §7).
var errBindingRejected = errors.New("liftplan: candidate binding failed validation")

// nullaryHolds reports whether every arity-0 literal of cc holds in
// state (static literals against the problem's initial set, fluent/
// derived literals against state). Nullary literals carry no terms, so
// this test is independent of any parameter binding (spec §4.6: "If any
// nullary literal in a's precondition does not hold in σ, skip a").
func nullaryHolds(cc *ConjunctiveCondition, p *Problem, state *UnpackedState) bool {
	for _, l := range cc.NullaryLiterals {
		ga := p.GroundLiteral(l, nil).Atom
		var present bool
		switch ga.Predicate.Class {
		case Static:
			present = p.InitialStaticPositive.Get(int(ga.Index))
		case Fluent:
			present = state.FluentAtoms.Get(int(ga.Index))
		case Derived:
			present = state.DerivedAtoms.Get(int(ga.Index))
		}
		if present != bool(l.Polarity) {
			return false
		}
	}
	return true
}

// isValidBinding implements the five validity checks of spec §4.4:
// nullary literals, is_valid_static_binding, is_valid_dynamic_binding for
// fluent and derived literals, and the numeric constraints. An
// ArithmeticError surfaced while grounding a numeric constraint is
// returned unchanged so the caller can treat it as an invalid binding
// (spec §7) without aborting the whole generator.
func isValidBinding(cc *ConjunctiveCondition, p *Problem, state *UnpackedState, binding []*Object) (bool, error) {
	test := func(l *Literal, present bool) bool { return present == bool(l.Polarity) }

	if !nullaryHolds(cc, p, state) {
		return false, nil
	}
	for _, l := range cc.StaticLiterals {
		ga := p.GroundLiteral(l, binding).Atom
		if !test(l, p.InitialStaticPositive.Get(int(ga.Index))) {
			return false, nil
		}
	}
	for _, l := range cc.FluentLiterals {
		ga := p.GroundLiteral(l, binding).Atom
		if !test(l, state.FluentAtoms.Get(int(ga.Index))) {
			return false, nil
		}
	}
	for _, l := range cc.DerivedLiterals {
		ga := p.GroundLiteral(l, binding).Atom
		if !test(l, state.DerivedAtoms.Get(int(ga.Index))) {
			return false, nil
		}
	}

	ctx := state.EvalContext()
	for _, nc := range cc.NumericConstraints {
		ok, err := nc.Eval(ctx, binding)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// BindingGenerator is the Satisficing Binding Generator (C6, spec §4.4):
// given a ConjunctiveCondition and an unpacked state, it lazily yields
// bindings parameters->objects satisfying the condition, dispatching on
// the condition's precomputed Shape to the nullary, unary, or k-partite
// clique path. It is a restartable iterator: Next() resumes exactly where
// the previous call left off and owns no state beyond one generator's
// lifetime (spec §4.11: "UnpackedState buffers used by C6 ... are owned
// by the generator and reused across calls").
type BindingGenerator struct {
	cc    *ConjunctiveCondition
	p     *Problem
	state *UnpackedState
	hooks EventHooks

	// arity-0 path
	nullaryDone bool

	// arity-1 path
	vertices []Vertex
	vIdx     int

	// arity-1 and arity>=2 paths (kp: arity>=2 only)
	fluentAS  *AssignmentSet
	derivedAS *AssignmentSet
	kp        *KPKCIterator
}

// NewBindingGenerator returns a BindingGenerator for cc against state,
// reporting observational events through hooks (NoopHooks if nil).
func NewBindingGenerator(cc *ConjunctiveCondition, p *Problem, state *UnpackedState, hooks EventHooks) *BindingGenerator {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	bg := &BindingGenerator{cc: cc, p: p, state: state, hooks: hooks}
	switch cc.Shape {
	case ShapeUnary:
		bg.fluentAS = BuildDynamicAssignmentSet(p.Domain.FluentPredicates.All(), p.Objects.Len(), state.FluentAtoms, p.FluentAtoms)
		bg.derivedAS = BuildDynamicAssignmentSet(p.Domain.DerivedPredicates.All(), p.Objects.Len(), state.DerivedAtoms, p.DerivedAtoms)
		bg.vertices = cc.Graph().Vertices
	case ShapeClique:
		bg.setupClique()
	}
	return bg
}

// vertexDynamicConsistent implements step (b) of the arity>=2 algorithm,
// and doubles as the arity-1 prefilter: v is dynamically consistent iff
// both fluent and derived assignment-set vertex tests pass.
func (bg *BindingGenerator) vertexDynamicConsistent(v Vertex) bool {
	return bg.fluentAS.ConsistentVertex(bg.cc.FluentLiterals, v.Param, v.Object) &&
		bg.derivedAS.ConsistentVertex(bg.cc.DerivedLiterals, v.Param, v.Object)
}

// setupClique builds the scratch k-partite adjacency F (spec §4.4 steps
// a-c) and the kpkc iterator over it.
func (bg *BindingGenerator) setupClique() {
	p, state, cc := bg.p, bg.state, bg.cc
	g := cc.Graph()

	bg.fluentAS = BuildDynamicAssignmentSet(p.Domain.FluentPredicates.All(), p.Objects.Len(), state.FluentAtoms, p.FluentAtoms)
	bg.derivedAS = BuildDynamicAssignmentSet(p.Domain.DerivedPredicates.All(), p.Objects.Len(), state.DerivedAtoms, p.DerivedAtoms)

	n := g.NumVertices()
	consistent := make([]bool, n)
	for i, v := range g.Vertices {
		consistent[i] = bg.vertexDynamicConsistent(v)
	}

	adjacency := make([]BitSet, n)
	for i := range adjacency {
		adjacency[i] = NewBitSet(n)
	}
	for i := 0; i < n; i++ {
		if !consistent[i] {
			continue
		}
		vi := g.Vertices[i]
		for j := i + 1; j < n; j++ {
			if !consistent[j] {
				continue
			}
			vj := g.Vertices[j]
			if vi.Param == vj.Param || !g.Adjacent(i, j) {
				continue
			}
			if !bg.fluentAS.ConsistentEdge(cc.FluentLiterals, vi.Param, vi.Object, vj.Param, vj.Object) {
				continue
			}
			if !bg.derivedAS.ConsistentEdge(cc.DerivedLiterals, vi.Param, vi.Object, vj.Param, vj.Object) {
				continue
			}
			adjacency[i].SetMut(j)
			adjacency[j].SetMut(i)
		}
	}

	scratch := &StaticConsistencyGraph{Vertices: g.Vertices, Adjacency: adjacency, VerticesByParam: g.VerticesByParam, ObjectsByParam: g.ObjectsByParam}
	bg.kp = NewKPKCIterator(scratch, g.VerticesByParam)
}

// projectBinding turns a clique (vertex indices, one per partition) into
// a parameters->objects binding (spec §4.4 step d: "project to a binding
// β[parameter(vᵢ)] = object(vᵢ)").
func (bg *BindingGenerator) projectBinding(clique []int) []*Object {
	g := bg.cc.Graph()
	binding := make([]*Object, len(bg.cc.Parameters))
	for _, vi := range clique {
		v := g.Vertices[vi]
		binding[v.Param] = v.Object
	}
	return binding
}

// Next advances the generator and returns the next valid binding, or
// (nil, false) once every candidate has been exhausted.
func (bg *BindingGenerator) Next() ([]*Object, bool) {
	switch bg.cc.Shape {
	case ShapeNullary:
		return bg.nextNullary()
	case ShapeUnary:
		return bg.nextUnary()
	default:
		return bg.nextClique()
	}
}

func (bg *BindingGenerator) nextNullary() ([]*Object, bool) {
	if bg.nullaryDone {
		return nil, false
	}
	bg.nullaryDone = true
	valid, err := isValidBinding(bg.cc, bg.p, bg.state, nil)
	if err != nil {
		bg.hooks.OnInvalidBinding(err)
		return nil, false
	}
	if !valid {
		bg.hooks.OnInvalidBinding(errBindingRejected)
		return nil, false
	}
	return []*Object{}, true
}

func (bg *BindingGenerator) nextUnary() ([]*Object, bool) {
	for bg.vIdx < len(bg.vertices) {
		v := bg.vertices[bg.vIdx]
		bg.vIdx++
		if !bg.vertexDynamicConsistent(v) {
			continue
		}
		binding := []*Object{v.Object}
		valid, err := isValidBinding(bg.cc, bg.p, bg.state, binding)
		if err != nil {
			bg.hooks.OnInvalidBinding(err)
			continue
		}
		if !valid {
			bg.hooks.OnInvalidBinding(errBindingRejected)
			continue
		}
		return binding, true
	}
	return nil, false
}

func (bg *BindingGenerator) nextClique() ([]*Object, bool) {
	for {
		clique, ok := bg.kp.Next()
		if !ok {
			return nil, false
		}
		binding := bg.projectBinding(clique)
		valid, err := isValidBinding(bg.cc, bg.p, bg.state, binding)
		if err != nil {
			bg.hooks.OnInvalidBinding(err)
			continue
		}
		if !valid {
			bg.hooks.OnInvalidBinding(errBindingRejected)
			continue
		}
		return binding, true
	}
}
