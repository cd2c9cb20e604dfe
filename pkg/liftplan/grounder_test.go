package liftplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildUnitCostProblem returns a single-action, single-object problem
// whose ActionSchema carries no Cost expression, exercising the
// unit-cost-default supplemented feature.
func buildUnitCostProblem(t *testing.T) (*Problem, *ActionSchema) {
	t.Helper()
	domain := NewDomain("unit-cost-demo")
	avail := domain.FluentPredicates.Intern("avail", 1)

	objects := NewObjectTable()
	o1 := objects.Intern("o1", []string{"item"})

	action := &ActionSchema{
		Index: 0, Name: "use",
		Parameters:   []ParameterSlot{{Index: 0, Types: []string{"item"}}},
		Precondition: NewConjunctiveCondition(nil, []*Literal{{Polarity: Positive, Atom: &Atom{Predicate: avail, Terms: []Term{VariableTerm(0)}}}}, nil),
		Effect:       &ConjunctiveEffect{Deletes: []*Atom{{Predicate: avail, Terms: []Term{VariableTerm(0)}}}},
	}
	domain.Actions = append(domain.Actions, action)

	pb := NewProblemBuilder(domain, objects)
	pb.AddInitialLiteral(&Literal{Polarity: Positive, Atom: &Atom{Predicate: avail, Terms: []Term{ObjectTerm(o1)}}})

	p, err := pb.Build(context.Background())
	require.NoError(t, err)
	return p, action
}

func TestGroundActionDefaultsToUnitCost(t *testing.T) {
	p, action := buildUnitCostProblem(t)
	o1 := p.Objects.Lookup("o1")

	grounder := NewGrounder(p, nil)
	ga, err := grounder.GroundAction(action, []*Object{o1})
	require.NoError(t, err)
	require.NotNil(t, ga)
	require.Equal(t, 1.0, ga.Cost)
}

func TestGroundActionIsHashConsedOnRepeatedBinding(t *testing.T) {
	p, action := buildUnitCostProblem(t)
	o1 := p.Objects.Lookup("o1")

	counters := NewCounters()
	grounder := NewGrounder(p, counters)

	first, err := grounder.GroundAction(action, []*Object{o1})
	require.NoError(t, err)
	second, err := grounder.GroundAction(action, []*Object{o1})
	require.NoError(t, err)

	require.Same(t, first, second, "identical (schema, binding) must return the memoised record")

	snap := counters.Snapshot()
	require.Equal(t, int64(1), snap.CacheMisses)
	require.Equal(t, int64(1), snap.CacheHits)
}

func TestGroundActionHasNonEmptyDebugID(t *testing.T) {
	p, action := buildUnitCostProblem(t)
	o1 := p.Objects.Lookup("o1")

	grounder := NewGrounder(p, nil)
	ga, err := grounder.GroundAction(action, []*Object{o1})
	require.NoError(t, err)
	require.NotEmpty(t, ga.DebugID())
}
