package liftplan

import (
	"context"
	"testing"
)

// buildLinkProblem returns a 5-object, single "link" static-predicate
// problem with exactly two directed triangles: (o1,o2,o3) and
// (o3,o4,o5). No actions or axioms; only the static theory the clique
// test below needs.
func buildLinkProblem(t *testing.T) (*Problem, *PredicateTable) {
	t.Helper()
	domain := NewDomain("link-demo")
	link := domain.StaticPredicates.Intern("link", 2)

	objects := NewObjectTable()
	names := []string{"o1", "o2", "o3", "o4", "o5"}
	objs := make(map[string]*Object, len(names))
	for _, n := range names {
		objs[n] = objects.Intern(n, []string{"obj"})
	}

	pb := NewProblemBuilder(domain, objects)
	edges := [][2]string{
		{"o1", "o2"}, {"o2", "o3"}, {"o1", "o3"}, // triangle 1
		{"o3", "o4"}, {"o4", "o5"}, {"o3", "o5"}, // triangle 2
	}
	for _, e := range edges {
		pb.AddInitialLiteral(&Literal{
			Polarity: Positive,
			Atom:     &Atom{Predicate: link, Terms: []Term{ObjectTerm(objs[e[0]]), ObjectTerm(objs[e[1]])}},
		})
	}

	p, err := pb.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p, domain.StaticPredicates
}

// TestKPKCCliqueSparsity is spec seed scenario S4: a schema of arity 3
// over 5 objects where only two triples satisfy the static edges must
// enumerate exactly 2 cliques.
func TestKPKCCliqueSparsity(t *testing.T) {
	p, predicates := buildLinkProblem(t)
	link := predicates.Lookup("link")

	params := []ParameterSlot{{Index: 0, Types: []string{"obj"}}, {Index: 1, Types: []string{"obj"}}, {Index: 2, Types: []string{"obj"}}}
	lits := []*Literal{
		{Polarity: Positive, Atom: &Atom{Predicate: link, Terms: []Term{VariableTerm(0), VariableTerm(1)}}},
		{Polarity: Positive, Atom: &Atom{Predicate: link, Terms: []Term{VariableTerm(1), VariableTerm(2)}}},
		{Polarity: Positive, Atom: &Atom{Predicate: link, Terms: []Term{VariableTerm(0), VariableTerm(2)}}},
	}
	cc := NewConjunctiveCondition(params, lits, nil)
	if cc.Shape != ShapeClique {
		t.Fatalf("expected ShapeClique, got %v", cc.Shape)
	}

	graph, err := BuildStaticConsistencyGraph(cc, p)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	it := NewKPKCIterator(graph, graph.VerticesByParam)
	var got [][]string
	for {
		clique, ok := it.Next()
		if !ok {
			break
		}
		binding := make([]string, len(clique))
		for i, vi := range clique {
			v := graph.Vertices[vi]
			binding[v.Param] = v.Object.Name
		}
		got = append(got, binding)
	}

	if len(got) != 2 {
		t.Fatalf("expected exactly 2 cliques, got %d: %v", len(got), got)
	}

	seen := map[string]bool{"o1/o2/o3": false, "o3/o4/o5": false}
	for _, b := range got {
		key := b[0] + "/" + b[1] + "/" + b[2]
		if _, ok := seen[key]; !ok {
			t.Fatalf("unexpected clique %v", b)
		}
		seen[key] = true
	}
	for key, ok := range seen {
		if !ok {
			t.Fatalf("expected clique %s was not emitted", key)
		}
	}
}
