package liftplan

import (
	"context"
	"testing"
)

// TestConditionalEffectDeleteWins is spec seed scenario S5: an
// unconditional effect that adds p and a conditional effect whose
// condition holds and deletes p must leave p absent from the successor,
// regardless of declaration order (spec §4.9: delete wins).
func TestConditionalEffectDeleteWins(t *testing.T) {
	domain := NewDomain("delete-wins-demo")
	p := domain.FluentPredicates.Intern("p", 0)
	trigger := domain.FluentPredicates.Intern("trigger", 0)

	objects := NewObjectTable()
	pb := NewProblemBuilder(domain, objects)
	pb.AddInitialLiteral(&Literal{Polarity: Positive, Atom: &Atom{Predicate: trigger}})

	precondition := NewConjunctiveCondition(nil, nil, nil)
	condition := NewConjunctiveCondition(nil, []*Literal{
		{Polarity: Positive, Atom: &Atom{Predicate: trigger}},
	}, nil)

	action := &ActionSchema{
		Index:        0,
		Name:         "fire",
		Parameters:   nil,
		Precondition: precondition,
		Effect: &ConjunctiveEffect{
			Adds: []*Atom{{Predicate: p}},
		},
		Conditional: []*ConditionalEffect{
			{
				Condition: condition,
				Effect:    SimpleEffect{Kind: EffectDelete, Atom: &Atom{Predicate: p}},
			},
		},
	}
	domain.Actions = append(domain.Actions, action)

	prob, err := pb.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	grounder := NewGrounder(prob, nil)
	state := InitialState(prob)

	ga, err := grounder.GroundAction(action, nil)
	if err != nil {
		t.Fatalf("ground: %v", err)
	}
	if ga == nil {
		t.Fatalf("action unexpectedly statically inapplicable")
	}

	succ, err := ApplyEffect(prob, ga, state)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	pAtom := prob.FluentAtoms.Lookup(p, nil)
	if pAtom == nil {
		t.Fatalf("ground atom for p not interned")
	}
	if succ.FluentAtoms.Get(int(pAtom.Index)) {
		t.Fatalf("p must not hold in the successor: delete wins over the unconditional add")
	}
}
