package liftplan

// CloseDerivedAtoms is the Stratified Axiom Evaluator (C9, spec §4.7): it
// mutates state.DerivedAtoms to the fixed point implied by
// state.FluentAtoms and the problem's stratified axiom set, assuming
// DerivedAtoms starts cleared (the caller's responsibility — ApplyEffect
// already clears it after every successor transition).
//
// Per stratum, the relevant-axiom set starts at initially_relevant_axioms
// and grows as newly-derived atoms make more axioms eligible
// (axioms_by_body_predicate), a tabling-style fixed-point loop re-scoped
// from general resolution to stratified Datalog-style axiom closure.
func CloseDerivedAtoms(p *Problem, grounder *Grounder, hooks EventHooks, state *UnpackedState) error {
	if hooks == nil {
		hooks = NoopHooks{}
	}

	for _, stratum := range p.Strata {
		seen := make(map[uint32]bool, len(stratum.Axioms))
		relevant := make([]*AxiomSchema, 0, len(stratum.InitiallyRelevant))
		add := func(a *AxiomSchema) {
			if !seen[a.Index] {
				seen[a.Index] = true
				relevant = append(relevant, a)
			}
		}
		for _, a := range stratum.InitiallyRelevant {
			add(a)
		}

		for {
			notFixedPoint := false

			var applicable []*GroundAxiom
			for _, a := range relevant {
				bg := NewBindingGenerator(a.Body, p, state, hooks)
				for {
					binding, ok := bg.Next()
					if !ok {
						break
					}
					ga, err := grounder.GroundAxiom(a, binding)
					if err != nil {
						return err
					}
					if ga == nil {
						continue
					}
					applicable = append(applicable, ga)
				}
			}

			for _, ga := range applicable {
				ok, err := ga.IsApplicable(p, state)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				i := int(ga.HeadAtomIndex)
				if state.DerivedAtoms.Get(i) {
					continue
				}
				state.DerivedAtoms.SetMut(i)
				hooks.OnGroundAxiom(ga)
				notFixedPoint = true

				headPred := ga.Schema.Head.Predicate.Index
				for _, next := range stratum.AxiomsByBodyPredicate[headPred] {
					add(next)
				}
			}

			if !notFixedPoint {
				break
			}
		}
	}

	return nil
}
