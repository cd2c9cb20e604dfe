package liftplan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitSetSetGetClear(t *testing.T) {
	b := NewBitSet(130) // spans 3 words
	require.False(t, b.Get(0))
	require.False(t, b.Get(129))

	b1 := b.Set(5)
	require.False(t, b.Get(5), "Set must not mutate the receiver")
	require.True(t, b1.Get(5))

	b2 := b1.Set(128)
	require.True(t, b2.Get(5))
	require.True(t, b2.Get(128))

	b3 := b2.Clear(5)
	require.False(t, b3.Get(5))
	require.True(t, b3.Get(128), "Clear must only touch the target bit")
}

func TestBitSetSetMutSharesUnderlyingSlice(t *testing.T) {
	b := NewBitSet(64)
	alias := b
	alias.SetMut(3)
	require.True(t, b.Get(3), "SetMut mutates the shared word slice even through a value copy")
}

func TestBitSetUnionIntersectDifference(t *testing.T) {
	a := NewBitSet(8)
	a.SetMut(0)
	a.SetMut(1)
	b := NewBitSet(8)
	b.SetMut(1)
	b.SetMut(2)

	require.Equal(t, []int{0, 1, 2}, a.Union(b).Slice())
	require.Equal(t, []int{1}, a.Intersect(b).Slice())
	require.Equal(t, []int{0}, a.Difference(b).Slice())
}

func TestBitSetDisjointSupersetsEqual(t *testing.T) {
	a := NewBitSet(8)
	a.SetMut(0)
	b := NewBitSet(8)
	b.SetMut(1)

	require.True(t, a.Disjoint(b))

	c := a.Union(b)
	require.True(t, c.Supersets(a))
	require.True(t, c.Supersets(b))
	require.False(t, a.Supersets(c))

	require.True(t, a.Equal(a.Clone()))
	require.False(t, a.Equal(b))
}

func TestBitSetCountAndEmpty(t *testing.T) {
	b := NewBitSet(8)
	require.True(t, b.Empty())
	require.Equal(t, 0, b.Count())

	b.SetMut(3)
	b.SetMut(7)
	require.False(t, b.Empty())
	require.Equal(t, 2, b.Count())
}
