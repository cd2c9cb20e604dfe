package liftplan

// ApplyEffect computes the successor state for a GroundAction applied
// against pre (spec §4.9): the unconditional add/delete fluent bitsets
// are unioned with the contributions of every conditional effect whose
// flat condition Holds in pre, deletions are applied after additions
// ("delete wins"), numeric effects update the cloned numeric vector in
// declaration order, and the derived bitset is cleared for SAE (C9) to
// recompute from scratch.
func ApplyEffect(p *Problem, ga *GroundAction, pre *UnpackedState) (*UnpackedState, error) {
	succ := pre.Clone()

	allAdd := ga.AddEffects.Clone()
	allDel := ga.DelEffects.Clone()
	for _, ce := range ga.Conditional {
		holds, err := ce.Holds(p, pre)
		if err != nil {
			return nil, err
		}
		if !holds {
			continue
		}
		if ce.Add {
			allAdd.SetMut(int(ce.AtomIndex))
		} else {
			allDel.SetMut(int(ce.AtomIndex))
		}
	}
	succ.FluentAtoms = succ.FluentAtoms.Union(allAdd).Difference(allDel)

	ctx := succ.EvalContext()
	for _, ne := range ga.Numeric {
		if err := ne.Apply(ctx, &succ.Numeric); err != nil {
			return nil, err
		}
	}

	succ.DerivedAtoms = NewBitSet(p.DerivedAtoms.Len())
	return succ, nil
}
