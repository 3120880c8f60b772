package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddZeroIdentity(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})

	r, err := Add(Zero, a)
	require.NoError(t, err)
	assert.Equal(t, a, r)

	r, err = Add(a, Zero)
	require.NoError(t, err)
	assert.Equal(t, a, r)

	r, err = Add(Zero, Zero)
	require.NoError(t, err)
	assert.True(t, IsZero(r))
}

func TestMulZeroAbsorbing(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})

	r, err := Mul(Zero, a)
	require.NoError(t, err)
	assert.True(t, IsZero(r))

	r, err = Mul(2.0, Zero)
	require.NoError(t, err)
	assert.True(t, IsZero(r))
}

func TestAddBroadcast(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})

	r, err := Add(a, 1.0)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{2, 3, 4}), r)

	r, err = Add(0.5, a)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{1.5, 2.5, 3.5}), r)
}

func TestAddShapeMismatch(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	b := FromSlice([]float64{1, 2})
	_, err := Add(a, b)
	assert.Error(t, err)
}

func TestAddLists(t *testing.T) {
	a := []any{1.0, FromSlice([]float64{1, 1})}
	b := []any{Zero, FromSlice([]float64{2, 3})}
	r, err := Add(a, b)
	require.NoError(t, err)
	rs, ok := r.([]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, rs[0])
	assert.Equal(t, FromSlice([]float64{3, 4}), rs[1])
}

func TestMulElementwise(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	b := FromSlice([]float64{4, 5, 6})
	r, err := Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{4, 10, 18}), r)

	r, err = Mul(2.0, a)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{2, 4, 6}), r)
}

func TestDot(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	r, err := Dot(a, a)
	require.NoError(t, err)
	assert.Equal(t, 14.0, r)

	r, err = Dot(a, Zero)
	require.NoError(t, err)
	assert.True(t, IsZero(r))
}

func TestSumSquares(t *testing.T) {
	r, err := SumSquares(Arange(10))
	require.NoError(t, err)
	assert.Equal(t, 285.0, r)

	r, err = SumSquares(3.0)
	require.NoError(t, err)
	assert.Equal(t, 9.0, r)
}

func TestZerosLike(t *testing.T) {
	assert.Equal(t, 0.0, ZerosLike(4.0))
	assert.Equal(t, New(2, 3), ZerosLike(New(2, 3)))
	assert.True(t, IsZero(ZerosLike(Zero)))
}

func TestCloneIsDeep(t *testing.T) {
	a := FromSlice([]float64{1, 2})
	c := Clone(a).(*Array)
	c.Data()[0] = 9
	assert.Equal(t, 1.0, a.Data()[0])
}

func TestStackScalars(t *testing.T) {
	r, err := Stack([]any{1.0, 2.0, 3.0}, 0)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{1, 2, 3}), r)
}

func TestStackArraysAxis0(t *testing.T) {
	a := FromSlice([]float64{1, 2})
	b := FromSlice([]float64{3, 4})
	r, err := Stack([]any{a, b}, 0)
	require.NoError(t, err)
	want, err := NewFromData([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, r)
}

func TestStackArraysAxis1(t *testing.T) {
	a := FromSlice([]float64{1, 2})
	b := FromSlice([]float64{3, 4})
	r, err := Stack([]any{a, b}, 1)
	require.NoError(t, err)
	want, err := NewFromData([]float64{1, 3, 2, 4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, r)
}

func TestStackZeroElements(t *testing.T) {
	a := FromSlice([]float64{1, 2})
	r, err := Stack([]any{Zero, a}, 0)
	require.NoError(t, err)
	want, err := NewFromData([]float64{0, 0, 1, 2}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, r)

	r, err = Stack([]any{Zero, Zero}, 0)
	require.NoError(t, err)
	assert.True(t, IsZero(r))
}

func TestTakeInvertsStack(t *testing.T) {
	a := FromSlice([]float64{1, 2})
	b := FromSlice([]float64{3, 4})
	for axis := 0; axis <= 1; axis++ {
		s, err := Stack([]any{a, b}, axis)
		require.NoError(t, err)
		r, err := Take(s, 0, axis)
		require.NoError(t, err)
		assert.Equal(t, a, r, "axis %d", axis)
		r, err = Take(s, 1, axis)
		require.NoError(t, err)
		assert.Equal(t, b, r, "axis %d", axis)
	}
}

func TestTakeScalarFrom1D(t *testing.T) {
	r, err := Take(Arange(5), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, r)
}

func TestTakeFromList(t *testing.T) {
	r, err := Take([]any{1.0, 2.0}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, r)
}

func TestUntake(t *testing.T) {
	like, err := NewFromData([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	v := FromSlice([]float64{5, 6})

	r, err := Untake(like, v, 1, 0)
	require.NoError(t, err)
	want, err := NewFromData([]float64{0, 0, 5, 6}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, r)

	r, err = Untake(like, v, 0, 1)
	require.NoError(t, err)
	want, err = NewFromData([]float64{5, 0, 6, 0}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, r)

	s, err := Untake(Arange(4), 7.0, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, FromSlice([]float64{0, 0, 7, 0}), s)
}
