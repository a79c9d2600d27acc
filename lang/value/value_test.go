package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/lang/value"
)

func TestNumberRoundTrip(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 3.14, -3.14, 1e300, -1e-300, math.Inf(1), math.Inf(-1)} {
		v := value.Number(n)
		require.True(t, v.IsNumber())
		require.Equal(t, n, v.AsNumber())
	}
}

func TestNumberNaNRoundTrip(t *testing.T) {
	v := value.Number(math.NaN())
	require.True(t, v.IsNumber())
	require.True(t, math.IsNaN(v.AsNumber()))
}

func TestNullSingleton(t *testing.T) {
	n := value.Null()
	assert.True(t, n.IsNull())
	assert.False(t, n.IsNumber())
	assert.False(t, n.IsBool())
	assert.False(t, n.IsPtr())
}

func TestBoolValues(t *testing.T) {
	tr, fl := value.Bool(true), value.Bool(false)
	assert.True(t, tr.IsBool())
	assert.True(t, tr.AsBool())
	assert.True(t, fl.IsBool())
	assert.False(t, fl.AsBool())
	assert.False(t, tr.IsNumber())
	assert.False(t, tr.IsNull())
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Null(), false},
		{value.Bool(false), false},
		{value.Bool(true), true},
		{value.Number(0), false},
		{value.Number(math.NaN()), false},
		{value.Number(-0.0), false},
		{value.Number(1), true},
		{value.Number(-1), true},
		{value.Ptr(value.PtrString, 0), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.Truthy())
	}
}

func TestEqualNumbers(t *testing.T) {
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.False(t, value.Equal(value.Number(math.NaN()), value.Number(math.NaN())))
}

func TestEqualSingletons(t *testing.T) {
	assert.True(t, value.Equal(value.Null(), value.Null()))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	assert.False(t, value.Equal(value.Bool(true), value.Bool(false)))
	assert.False(t, value.Equal(value.Null(), value.Bool(false)))
}

func TestPtrTagAndHandleRoundTrip(t *testing.T) {
	v := value.Ptr(value.PtrClosureHandle, 0xABCDEF)
	require.True(t, v.IsPtr())
	require.False(t, v.IsNumber())
	assert.Equal(t, value.PtrClosureHandle, v.PtrTag())
	assert.Equal(t, uint64(0xABCDEF), v.HandleBits())
}

func TestPtrTagsDistinguishable(t *testing.T) {
	tags := []value.PtrTag{value.PtrString, value.PtrClosure, value.PtrNativeFn, value.PtrUpvalue, value.PtrClosureHandle}
	for _, tag := range tags {
		v := value.Ptr(tag, 42)
		assert.Equal(t, tag, v.PtrTag())
		assert.Equal(t, uint64(42), v.HandleBits())
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, value.KindNumber, value.Number(1).Kind())
	assert.Equal(t, value.KindBool, value.Bool(true).Kind())
	assert.Equal(t, value.KindNull, value.Null().Kind())
	assert.Equal(t, value.KindString, value.Ptr(value.PtrString, 0).Kind())
	assert.Equal(t, value.KindNativeFn, value.Ptr(value.PtrNativeFn, 0).Kind())
	assert.Equal(t, value.KindClosure, value.Ptr(value.PtrClosureHandle, 0).Kind())
}

func TestStrEqual(t *testing.T) {
	a := value.NewStr("hello")
	b := value.NewStr("hello")
	c := value.NewStr("world")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
