package liftplan

import (
	"errors"
	"testing"
)

// TestStratifyNegativeCycle asserts that a negative-dependency cycle
// (p defined by not q, q defined by not p) has no valid stratification.
func TestStratifyNegativeCycle(t *testing.T) {
	domain := NewDomain("cycle-demo")
	p := domain.DerivedPredicates.Intern("p", 0)
	q := domain.DerivedPredicates.Intern("q", 0)

	axiomP := &AxiomSchema{
		Index: 0, Name: "p-from-not-q",
		Body: NewConjunctiveCondition(nil, []*Literal{{Polarity: Negative, Atom: &Atom{Predicate: q}}}, nil),
		Head: &Atom{Predicate: p},
	}
	axiomQ := &AxiomSchema{
		Index: 1, Name: "q-from-not-p",
		Body: NewConjunctiveCondition(nil, []*Literal{{Polarity: Negative, Atom: &Atom{Predicate: p}}}, nil),
		Head: &Atom{Predicate: q},
	}

	_, err := Stratify([]*AxiomSchema{axiomP, axiomQ})
	if err == nil {
		t.Fatalf("expected ErrNoStratification, got nil")
	}
	if !errors.Is(err, ErrNoStratification) {
		t.Fatalf("expected ErrNoStratification, got %v", err)
	}
}

// TestStratifyOrdersByDependency checks the straightforward acyclic case:
// a predicate depending negatively on another lands in a strictly later
// stratum (spec §8 item 5).
func TestStratifyOrdersByDependency(t *testing.T) {
	domain := NewDomain("order-demo")
	base := domain.DerivedPredicates.Intern("base", 0)
	negated := domain.DerivedPredicates.Intern("negated", 0)

	axiomBase := &AxiomSchema{
		Index: 0, Name: "base-rule",
		Body: NewConjunctiveCondition(nil, nil, nil),
		Head: &Atom{Predicate: base},
	}
	axiomNegated := &AxiomSchema{
		Index: 1, Name: "negated-rule",
		Body: NewConjunctiveCondition(nil, []*Literal{{Polarity: Negative, Atom: &Atom{Predicate: base}}}, nil),
		Head: &Atom{Predicate: negated},
	}

	strata, err := Stratify([]*AxiomSchema{axiomBase, axiomNegated})
	if err != nil {
		t.Fatalf("stratify: %v", err)
	}
	if len(strata) != 2 {
		t.Fatalf("expected 2 strata, got %d", len(strata))
	}
	if strata[0].Axioms[0].Name != "base-rule" {
		t.Fatalf("expected base-rule in stratum 0, got %s", strata[0].Axioms[0].Name)
	}
	if strata[1].Axioms[0].Name != "negated-rule" {
		t.Fatalf("expected negated-rule in stratum 1, got %s", strata[1].Axioms[0].Name)
	}
}
