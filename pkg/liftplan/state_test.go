package liftplan

import (
	"testing"

	"pgregory.net/rapid"
)

// TestIdentityRepositoryPackUnpackIdempotent is spec §8 item 8: pack,
// unpack, pack again yields a bit-identical packed state, for any subset
// of set fluent/derived bits and any numeric assignment.
func TestIdentityRepositoryPackUnpackIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "universe")
		fluentIdx := rapid.SliceOfN(rapid.IntRange(0, n-1), 0, n).Draw(t, "fluent_bits")
		derivedIdx := rapid.SliceOfN(rapid.IntRange(0, n-1), 0, n).Draw(t, "derived_bits")
		numericVal := rapid.Float64Range(-1e6, 1e6).Draw(t, "numeric_value")

		fluent := NewBitSet(n)
		for _, i := range fluentIdx {
			fluent.SetMut(i)
		}
		derived := NewBitSet(n)
		for _, i := range derivedIdx {
			derived.SetMut(i)
		}
		numeric := NewNumericVector(1)
		numeric.SetMut(0, numericVal)

		repo := IdentityRepository{}
		ps := repo.Pack(&UnpackedState{FluentAtoms: fluent, DerivedAtoms: derived, Numeric: numeric})

		var unpacked UnpackedState
		repo.Unpack(ps, &unpacked)
		ps2 := repo.Pack(&unpacked)

		if !ps.FluentHandle.Equal(ps2.FluentHandle) {
			t.Fatalf("fluent handle changed across pack/unpack/pack")
		}
		if !ps.DerivedHandle.Equal(ps2.DerivedHandle) {
			t.Fatalf("derived handle changed across pack/unpack/pack")
		}
		if v1, ok1 := ps.NumericHandle.Get(0); ok1 {
			v2, ok2 := ps2.NumericHandle.Get(0)
			if !ok2 || v1 != v2 {
				t.Fatalf("numeric handle changed across pack/unpack/pack: %v -> %v", v1, v2)
			}
		}
	})
}
