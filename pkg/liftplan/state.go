package liftplan

// PackedState is the compressed, interned representation of a planning
// state: three compressed slot handles (spec §3). The packing/unpacking
// scheme itself is an external collaborator's concern (spec §6, "state
// repository"); PackedState here is the narrow value that collaborator
// hands back and forth. A trivial StateRepository (IdentityRepository,
// below) treats PackedState as already holding the unpacked bitsets,
// which is sufficient for in-process use and for the seed tests in spec
// §8; a host embedding this core against a real compressed backing store
// supplies its own StateRepository.
type PackedState struct {
	FluentHandle  BitSet
	DerivedHandle BitSet
	NumericHandle NumericVector
}

// UnpackedState is the materialised (FluentBitset, DerivedBitset,
// NumericVector) view LAAG and SAE operate on directly, plus a
// back-pointer to the problem that defines the bitsets' universe (spec
// §3). UnpackedState values are scratch: created/mutated during successor
// construction and reset between queries (spec §3 Lifecycles).
type UnpackedState struct {
	Problem      *Problem
	FluentAtoms  BitSet
	DerivedAtoms BitSet
	Numeric      NumericVector
}

// NewUnpackedState returns a zeroed UnpackedState sized for p's atom and
// function universes.
func NewUnpackedState(p *Problem) *UnpackedState {
	return &UnpackedState{
		Problem:      p,
		FluentAtoms:  NewBitSet(p.FluentAtoms.Len()),
		DerivedAtoms: NewBitSet(p.DerivedAtoms.Len()),
		Numeric:      NewNumericVector(p.GroundFunctions.Len()),
	}
}

// InitialState returns the UnpackedState described by the problem's
// :init section, with DerivedAtoms empty (SAE closes it separately).
func InitialState(p *Problem) *UnpackedState {
	s := NewUnpackedState(p)
	s.FluentAtoms = p.InitialFluentPositive.Clone()
	for idx, val := range p.InitialNumeric {
		s.Numeric.SetMut(idx, val)
	}
	return s
}

// Clone returns an independent deep copy of s, used before mutating a
// state into a successor candidate.
func (s *UnpackedState) Clone() *UnpackedState {
	return &UnpackedState{
		Problem:      s.Problem,
		FluentAtoms:  s.FluentAtoms.Clone(),
		DerivedAtoms: s.DerivedAtoms.Clone(),
		Numeric:      s.Numeric.Clone(),
	}
}

// EvalContext returns the numeric evaluation context reading this
// state's numeric vector alongside the problem's static initial values.
func (s *UnpackedState) EvalContext() *EvalContext {
	return &EvalContext{Funcs: s.Problem.GroundFunctions, StaticInit: s.Problem.InitialNumeric, State: &s.Numeric}
}

// StateRepository is the narrow external collaborator LAAG/SAE consume
// for packing and unpacking (spec §6): `unpack(PackedState, &mut
// UnpackedState)` and `pack(&UnpackedState) → PackedState`.
type StateRepository interface {
	Unpack(ps PackedState, out *UnpackedState)
	Pack(s *UnpackedState) PackedState
}

// IdentityRepository is the minimal StateRepository this module ships:
// it performs no additional compression, interning PackedState's bitsets
// directly as the handles. It is sufficient for single-process use and
// for every seed test in spec §8 (including the pack/unpack round-trip
// idempotence property), since BitSet/NumericVector already are the
// dense, bit-exact layout spec §6 fixes; a host with an out-of-process
// or on-disk state store supplies its own implementation instead.
type IdentityRepository struct{}

// Unpack implements StateRepository.
func (IdentityRepository) Unpack(ps PackedState, out *UnpackedState) {
	out.FluentAtoms = ps.FluentHandle.Clone()
	out.DerivedAtoms = ps.DerivedHandle.Clone()
	out.Numeric = ps.NumericHandle.Clone()
}

// Pack implements StateRepository.
func (IdentityRepository) Pack(s *UnpackedState) PackedState {
	return PackedState{
		FluentHandle:  s.FluentAtoms.Clone(),
		DerivedHandle: s.DerivedAtoms.Clone(),
		NumericHandle: s.Numeric.Clone(),
	}
}
