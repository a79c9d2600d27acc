package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/lang/arena"
)

func TestInsertGet(t *testing.T) {
	a := arena.New[string]()
	h := a.Insert("hello")
	v, ok := a.Get(h)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestGetMissing(t *testing.T) {
	a := arena.New[string]()
	_, ok := a.Get(arena.Handle{Index: 0, Generation: 0})
	require.False(t, ok)
}

func TestRemoveInvalidatesHandle(t *testing.T) {
	a := arena.New[int]()
	h := a.Insert(42)
	v, ok := a.Remove(h)
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = a.Get(h)
	require.False(t, ok)
}

func TestRemoveTwiceFails(t *testing.T) {
	a := arena.New[int]()
	h := a.Insert(1)
	_, ok := a.Remove(h)
	require.True(t, ok)
	_, ok = a.Remove(h)
	require.False(t, ok)
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	a := arena.New[int]()
	h1 := a.Insert(1)
	_, ok := a.Remove(h1)
	require.True(t, ok)

	h2 := a.Insert(2)
	require.Equal(t, h1.Index, h2.Index, "expected the freed slot to be recycled")
	require.NotEqual(t, h1.Generation, h2.Generation)

	// the stale handle must not resolve to the new occupant.
	_, ok = a.Get(h1)
	require.False(t, ok)

	v, ok := a.Get(h2)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestSet(t *testing.T) {
	a := arena.New[int]()
	h := a.Insert(1)
	require.True(t, a.Set(h, 2))
	v, ok := a.Get(h)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestSetStaleHandleFails(t *testing.T) {
	a := arena.New[int]()
	h := a.Insert(1)
	_, _ = a.Remove(h)
	require.False(t, a.Set(h, 99))
}

func TestLen(t *testing.T) {
	a := arena.New[int]()
	require.Equal(t, 0, a.Len())
	h1 := a.Insert(1)
	a.Insert(2)
	require.Equal(t, 2, a.Len())
	_, _ = a.Remove(h1)
	require.Equal(t, 1, a.Len())
}

func TestHandleBits48RoundTrip(t *testing.T) {
	h := arena.Handle{Index: 123456, Generation: 7}
	got := arena.HandleFromBits48(h.Bits48())
	require.Equal(t, h, got)
}
