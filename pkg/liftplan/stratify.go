package liftplan

// Stratum is one ordered layer of the axiom stratification (C10, spec
// §4.8): the axioms whose head predicate was assigned this stratum
// number, the subset of those that can fire before any new derived atom
// of this stratum exists (InitiallyRelevant), and the per-predicate
// index SAE (C9) uses to discover newly-relevant axioms as it closes the
// stratum to a fixed point.
type Stratum struct {
	Number int
	Axioms []*AxiomSchema

	// InitiallyRelevant is initially_relevant_axioms(S): axioms whose body
	// has no Derived literal from the same stratum.
	InitiallyRelevant []*AxiomSchema

	// AxiomsByBodyPredicate[p] lists axioms in this stratum whose body
	// mentions derived predicate index p positively.
	AxiomsByBodyPredicate map[uint32][]*AxiomSchema
}

// bodyDerivedLiterals returns every Derived-class literal (nullary or
// not) in cc's body.
func bodyDerivedLiterals(cc *ConjunctiveCondition) []*Literal {
	out := append([]*Literal(nil), cc.DerivedLiterals...)
	for _, l := range cc.NullaryLiterals {
		if l.Atom.Predicate.Class == Derived {
			out = append(out, l)
		}
	}
	return out
}

// Stratify partitions axioms into an ordered list of strata (C10, spec
// §4.8): a textbook positive/negative dependency-graph stratification
// over derived predicates, assigning each axiom to the stratum of its
// head predicate via iterative relaxation (a predicate's stratum must be
// >= every predicate it depends on positively, and > every predicate it
// depends on negatively). A predicate involved in a negative dependency
// cycle can never stabilise, detected by exceeding the iteration bound;
// that case returns ErrNoStratification.
func Stratify(axioms []*AxiomSchema) ([]Stratum, error) {
	type dep struct {
		head, body uint32
		negative   bool
	}

	stratumOf := make(map[uint32]int)
	var deps []dep
	for _, a := range axioms {
		h := a.HeadPredicateIndex()
		if _, ok := stratumOf[h]; !ok {
			stratumOf[h] = 0
		}
		for _, l := range bodyDerivedLiterals(a.Body) {
			deps = append(deps, dep{head: h, body: l.Atom.Predicate.Index, negative: l.Polarity == Negative})
		}
	}

	limit := len(stratumOf) + 2
	for i := 0; i < limit; i++ {
		changed := false
		for _, d := range deps {
			need := stratumOf[d.body]
			if d.negative {
				need++
			}
			if stratumOf[d.head] < need {
				stratumOf[d.head] = need
				changed = true
			}
		}
		if !changed {
			break
		}
		if i == limit-1 {
			return nil, &StructuralError{Context: "axiom stratification", Err: ErrNoStratification}
		}
	}

	byNumber := make(map[int][]*AxiomSchema)
	maxNumber := -1
	for _, a := range axioms {
		n := stratumOf[a.HeadPredicateIndex()]
		byNumber[n] = append(byNumber[n], a)
		if n > maxNumber {
			maxNumber = n
		}
	}

	var numbers []int
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	for i := 0; i < len(numbers); i++ {
		for j := i + 1; j < len(numbers); j++ {
			if numbers[j] < numbers[i] {
				numbers[i], numbers[j] = numbers[j], numbers[i]
			}
		}
	}

	strata := make([]Stratum, 0, len(numbers))
	for idx, n := range numbers {
		group := byNumber[n]
		s := Stratum{Number: idx, Axioms: group, AxiomsByBodyPredicate: make(map[uint32][]*AxiomSchema)}

		for _, a := range group {
			sameStratum := false
			for _, l := range bodyDerivedLiterals(a.Body) {
				if stratumOf[l.Atom.Predicate.Index] == n {
					sameStratum = true
				}
				if l.Polarity == Positive {
					s.AxiomsByBodyPredicate[l.Atom.Predicate.Index] = append(s.AxiomsByBodyPredicate[l.Atom.Predicate.Index], a)
				}
			}
			if !sameStratum {
				s.InitiallyRelevant = append(s.InitiallyRelevant, a)
			}
		}
		strata = append(strata, s)
	}

	return strata, nil
}
