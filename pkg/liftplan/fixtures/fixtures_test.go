package fixtures

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/liftplan/pkg/liftplan"
)

func groundActionNames(actions []*liftplan.GroundAction) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String() + "(" + bindingString(a.Binding) + ")"
	}
	sort.Strings(names)
	return names
}

func bindingString(binding []*liftplan.Object) string {
	s := ""
	for i, o := range binding {
		if i > 0 {
			s += ", "
		}
		s += o.Name
	}
	return s
}

// TestGripperInitialActions is spec seed scenario S1.
func TestGripperInitialActions(t *testing.T) {
	p, err := Load("gripper.yaml")
	require.NoError(t, err)

	grounder := liftplan.NewGrounder(p, nil)
	laag := liftplan.NewLAAG(p, grounder, nil)

	state := liftplan.InitialState(p)
	require.NoError(t, liftplan.CloseDerivedAtoms(p, grounder, nil, state))

	actions, err := laag.Generate(state)
	require.NoError(t, err)
	require.Len(t, actions, 6)

	want := []string{
		"move(rooma, rooma)",
		"move(rooma, roomb)",
		"pick(ball1, rooma, left)",
		"pick(ball1, rooma, right)",
		"pick(ball2, rooma, left)",
		"pick(ball2, rooma, right)",
	}
	sort.Strings(want)
	require.Equal(t, want, groundActionNames(actions))
}

// TestGripperAfterPick is spec seed scenario S2.
func TestGripperAfterPick(t *testing.T) {
	p, err := Load("gripper.yaml")
	require.NoError(t, err)

	grounder := liftplan.NewGrounder(p, nil)
	laag := liftplan.NewLAAG(p, grounder, nil)

	state := liftplan.InitialState(p)
	require.NoError(t, liftplan.CloseDerivedAtoms(p, grounder, nil, state))

	actions, err := laag.Generate(state)
	require.NoError(t, err)

	var pickBall1Left *liftplan.GroundAction
	for _, a := range actions {
		if a.String() == "pick" && bindingString(a.Binding) == "ball1, rooma, left" {
			pickBall1Left = a
		}
	}
	require.NotNil(t, pickBall1Left)

	succ, err := liftplan.ApplyEffect(p, pickBall1Left, state)
	require.NoError(t, err)
	require.NoError(t, liftplan.CloseDerivedAtoms(p, grounder, nil, succ))

	carryAtom := p.FluentAtoms.Lookup(p.Domain.FluentPredicates.Lookup("carry"), objs(p, "ball1", "left"))
	require.NotNil(t, carryAtom)
	require.True(t, succ.FluentAtoms.Get(int(carryAtom.Index)))

	freeAtom := p.FluentAtoms.Lookup(p.Domain.FluentPredicates.Lookup("free"), objs(p, "left"))
	require.NotNil(t, freeAtom)
	require.False(t, succ.FluentAtoms.Get(int(freeAtom.Index)))

	atAtom := p.FluentAtoms.Lookup(p.Domain.FluentPredicates.Lookup("at"), objs(p, "ball1", "rooma"))
	require.NotNil(t, atAtom)
	require.False(t, succ.FluentAtoms.Get(int(atAtom.Index)))

	nextActions, err := laag.Generate(succ)
	require.NoError(t, err)

	var sawDrop bool
	for _, a := range nextActions {
		require.Falsef(t, a.String() == "pick" && a.Binding[0].Name == "ball1",
			"pick(ball1, ...) must not be emitted after ball1 is carried, got %s(%s)", a, bindingString(a.Binding))
		if a.String() == "drop" && bindingString(a.Binding) == "ball1, rooma, left" {
			sawDrop = true
		}
	}
	require.True(t, sawDrop, "drop(ball1, rooma, left) must be emitted")
}

func objs(p *liftplan.Problem, names ...string) []*liftplan.Object {
	out := make([]*liftplan.Object, len(names))
	for i, n := range names {
		out[i] = p.Objects.Lookup(n)
	}
	return out
}

// TestTransitStratification is spec seed scenario S3: reachable closes to
// {b, c, d} (and not a), and unreachable (its negative-dependency second
// stratum) holds for a.
func TestTransitStratification(t *testing.T) {
	p, err := Load("transit.yaml")
	require.NoError(t, err)
	require.Len(t, p.Strata, 2, "reachable and unreachable must land in separate strata")

	grounder := liftplan.NewGrounder(p, nil)
	state := liftplan.InitialState(p)
	require.NoError(t, liftplan.CloseDerivedAtoms(p, grounder, nil, state))

	reachable := p.Domain.DerivedPredicates.Lookup("reachable")
	unreachable := p.Domain.DerivedPredicates.Lookup("unreachable")

	for _, name := range []string{"b", "c", "d"} {
		ga := p.DerivedAtoms.Lookup(reachable, objs(p, name))
		require.NotNil(t, ga)
		require.Truef(t, state.DerivedAtoms.Get(int(ga.Index)), "reachable(%s) must hold", name)
	}
	aReachable := p.DerivedAtoms.Lookup(reachable, objs(p, "a"))
	require.NotNil(t, aReachable)
	require.False(t, state.DerivedAtoms.Get(int(aReachable.Index)), "reachable(a) must not hold")

	aUnreachable := p.DerivedAtoms.Lookup(unreachable, objs(p, "a"))
	require.NotNil(t, aUnreachable)
	require.True(t, state.DerivedAtoms.Get(int(aUnreachable.Index)), "unreachable(a) must hold")

	// Idempotence (spec §8 item 9): closing twice from scratch agrees.
	state2 := liftplan.InitialState(p)
	require.NoError(t, liftplan.CloseDerivedAtoms(p, grounder, nil, state2))
	require.True(t, state.DerivedAtoms.Equal(state2.DerivedAtoms))
}

// TestCostEvaluation is spec seed scenario S6.
func TestCostEvaluation(t *testing.T) {
	p, err := Load("cost_demo.yaml")
	require.NoError(t, err)

	grounder := liftplan.NewGrounder(p, nil)
	schema := p.Domain.Actions[0]
	o1 := p.Objects.Lookup("o1")
	require.NotNil(t, o1)

	ga, err := grounder.GroundAction(schema, []*liftplan.Object{o1})
	require.NoError(t, err)
	require.NotNil(t, ga)
	require.Equal(t, 7.0, ga.Cost)
}
