package liftplan

// AssignmentSet is an O(1) consistency test for candidate parameter→object
// assignments against a set of ground atoms (spec §4.1, C3). For a
// predicate p of arity a it stores a dense boolean function
//
//	f(p, i, oi, j, oj)
//
// with sentinel MAX (encoded here as index -1, offset to 0 in the rank)
// meaning "unused": a bit at (p,i,oi,MAX,MAX) means some ground atom of p
// has oi at position i; a bit at (p,i,oi,j,oj) (i<j) means some ground
// atom has oi at i and oj at j simultaneously.
//
// One AssignmentSet instance covers every predicate of a single
// PredicateClass: each predicate owns its own rank space, sized by its
// own arity, inside a shared map.
type AssignmentSet struct {
	objCount int
	bits     map[uint32]BitSet // predicate index -> dense rank-space BitSet
	arity    map[uint32]int
}

// rank computes spec §4.1's rank(A) for a predicate of arity a over an
// object universe of size objCount.
func rank(a, objCount, pi, oi, pj, oj int) int {
	return (pi + 1) +
		(a+1)*(pj+1) +
		(a+1)*(a+1)*(oi+1) +
		(a+1)*(a+1)*(objCount+1)*(oj+1)
}

func rankSpace(a, objCount int) int {
	return (a + 1) * (a + 1) * (objCount + 1) * (objCount + 1)
}

const unused = -1

// NewAssignmentSet returns an AssignmentSet with a zeroed rank space
// preallocated for every predicate in predicates, over an object universe
// of size objCount.
func NewAssignmentSet(predicates []*Predicate, objCount int) *AssignmentSet {
	as := &AssignmentSet{
		objCount: objCount,
		bits:     make(map[uint32]BitSet, len(predicates)),
		arity:    make(map[uint32]int, len(predicates)),
	}
	for _, p := range predicates {
		as.bits[p.Index] = NewBitSet(rankSpace(p.Arity, objCount))
		as.arity[p.Index] = p.Arity
	}
	return as
}

// InsertGroundAtom records ga: for every position i it sets the 1-ary
// bit, and for every i<j it sets the 2-ary bit (spec §4.1).
func (as *AssignmentSet) InsertGroundAtom(ga *GroundAtom) {
	pidx := ga.Predicate.Index
	a := as.arity[pidx]
	b := as.bits[pidx]
	for i, oi := range ga.Objects {
		b.SetMut(rank(a, as.objCount, i, int(oi.Index), unused, unused))
		for j := i + 1; j < len(ga.Objects); j++ {
			oj := ga.Objects[j]
			b.SetMut(rank(a, as.objCount, i, int(oi.Index), j, int(oj.Index)))
		}
	}
}

// has1ary reports whether some ground atom of predicate p has object o at
// position pos.
func (as *AssignmentSet) has1ary(p *Predicate, pos int, o *Object) bool {
	b, ok := as.bits[p.Index]
	if !ok {
		return false
	}
	return b.Get(rank(as.arity[p.Index], as.objCount, pos, int(o.Index), unused, unused))
}

// has2ary reports whether some ground atom of predicate p has oi at
// posI and oj at posJ simultaneously. The two (position, object) pairs
// may be given in either order; they are swapped so that posI < posJ.
func (as *AssignmentSet) has2ary(p *Predicate, posI int, oi *Object, posJ int, oj *Object) bool {
	if posI > posJ {
		posI, oi, posJ, oj = posJ, oj, posI, oi
	}
	b, ok := as.bits[p.Index]
	if !ok {
		return false
	}
	return b.Get(rank(as.arity[p.Index], as.objCount, posI, int(oi.Index), posJ, int(oj.Index)))
}

// matchedPositions returns the positions of atom that reference the
// single parameter index paramIdx, skipping atoms that don't mention it.
func matchedPositions(atom *Atom, paramIdx int) []int {
	var out []int
	for i, t := range atom.Terms {
		if t.IsVar() && t.Variable().ParamIndex == paramIdx {
			out = append(out, i)
		}
	}
	return out
}

// ConsistentVertex implements consistent_literals(L, v) for a single
// (param, object) vertex (spec §4.1): every literal in lits is consistent
// iff no positional assignment induced by v contradicts its polarity. A
// negative literal is only checked when its arity is <= 1; higher-arity
// negative literals are left to the edge test or full validation (spec:
// "if ℓ is negative, arity must be ≤1 for the vertex test, otherwise
// skip"). This is a correctness-preserving prefilter, not an exactness
// oracle: callers always re-validate the full binding before emitting it.
func (as *AssignmentSet) ConsistentVertex(lits []*Literal, paramIdx int, obj *Object) bool {
	for _, l := range lits {
		positions := matchedPositions(l.Atom, paramIdx)
		if len(positions) == 0 {
			continue
		}
		pred := l.Atom.Predicate
		if l.Polarity == Positive {
			for _, pos := range positions {
				if !as.has1ary(pred, pos, obj) {
					return false
				}
			}
		} else if len(l.Atom.Terms) <= 1 {
			for _, pos := range positions {
				if as.has1ary(pred, pos, obj) {
					return false
				}
			}
		}
	}
	return true
}

// ConsistentEdge implements consistent_literals(L, e) for a
// (param_i,obj_i)-(param_j,obj_j) edge (spec §4.1): literals mentioning
// both parameters at exactly one position each are checked against the
// 2-ary assignment bits. Like ConsistentVertex, this is a
// correctness-preserving prefilter.
func (as *AssignmentSet) ConsistentEdge(lits []*Literal, paramI int, objI *Object, paramJ int, objJ *Object) bool {
	for _, l := range lits {
		posI := matchedPositions(l.Atom, paramI)
		posJ := matchedPositions(l.Atom, paramJ)
		if len(posI) != 1 || len(posJ) != 1 {
			continue
		}
		pred := l.Atom.Predicate
		if l.Polarity == Positive {
			if !as.has2ary(pred, posI[0], objI, posJ[0], objJ) {
				return false
			}
		} else if len(l.Atom.Terms) == 2 {
			if as.has2ary(pred, posI[0], objI, posJ[0], objJ) {
				return false
			}
		}
	}
	return true
}

// BuildStaticAssignmentSet constructs the AssignmentSet covering every
// Static ground atom in p — built once at problem-load time, since
// static atoms never change (spec §4.1: "static if all atoms it holds
// are static").
func BuildStaticAssignmentSet(p *Problem) *AssignmentSet {
	as := NewAssignmentSet(p.Domain.StaticPredicates.All(), p.Objects.Len())
	p.InitialStaticPositive.ForEach(func(i int) {
		as.InsertGroundAtom(p.StaticAtoms.Get(uint32(i)))
	})
	return as
}

// BuildDynamicAssignmentSet constructs an AssignmentSet covering every
// atom currently set in atoms, for predicates of class over atomTable.
// Called fresh per state inside the binding generator (spec §4.1:
// "dynamic if ... rebuilt or updated per state").
func BuildDynamicAssignmentSet(predicates []*Predicate, objCount int, atoms BitSet, atomTable *GroundAtomTable) *AssignmentSet {
	as := NewAssignmentSet(predicates, objCount)
	atoms.ForEach(func(i int) {
		as.InsertGroundAtom(atomTable.Get(uint32(i)))
	})
	return as
}
