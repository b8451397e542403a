package cell_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/cell"
)

func TestRoundTrip(t *testing.T) {
	ic := cell.Int(-12345)
	assert.Equal(t, int64(-12345), ic.Int())
	assert.Equal(t, cell.KindInt, ic.Kind())

	fc := cell.Float(3.5)
	assert.Equal(t, 3.5, fc.Float())
	assert.Equal(t, cell.KindFloat, fc.Kind())
	assert.True(t, fc.IsFloat())

	ac := cell.Addr(42)
	assert.Equal(t, uint32(42), ac.Addr())
	assert.Equal(t, cell.KindAddr, ac.Kind())
}

func TestArithCoercion(t *testing.T) {
	sum, ovf := cell.Add(cell.Int(2), cell.Int(3))
	require.False(t, ovf)
	assert.Equal(t, cell.KindInt, sum.Kind())
	assert.Equal(t, int64(5), sum.Int())

	mixed, ovf := cell.Add(cell.Int(2), cell.Float(0.5))
	require.False(t, ovf)
	assert.Equal(t, cell.KindFloat, mixed.Kind())
	assert.Equal(t, 2.5, mixed.Float())

	fsum, _ := cell.Add(cell.Float(1.5), cell.Float(2.5))
	assert.Equal(t, 4.0, fsum.Float())
}

func TestOverflowFlag(t *testing.T) {
	_, ovf := cell.Add(cell.Int(math.MaxInt64), cell.Int(1))
	assert.True(t, ovf)

	wrapped, _ := cell.Add(cell.Int(math.MaxInt64), cell.Int(1))
	assert.Equal(t, int64(math.MinInt64), wrapped.Int())

	_, ovf = cell.Mul(cell.Int(math.MaxInt64), cell.Int(2))
	assert.True(t, ovf)

	_, ovf = cell.Add(cell.Int(1), cell.Int(1))
	assert.False(t, ovf)
}

func TestDivideByZero(t *testing.T) {
	_, err := cell.Div(cell.Int(1), cell.Int(0))
	assert.ErrorIs(t, err, cell.ErrDivideByZero)

	_, err = cell.Div(cell.Float(1), cell.Float(0))
	assert.ErrorIs(t, err, cell.ErrDivideByZero)

	v, err := cell.Div(cell.Int(7), cell.Int(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int())
}

func TestNaNComparisons(t *testing.T) {
	nan := cell.Float(math.NaN())
	one := cell.Float(1)
	assert.False(t, cell.Less(nan, one))
	assert.False(t, cell.Greater(nan, one))
	assert.False(t, cell.Equal(nan, one))
	assert.False(t, cell.Equal(nan, nan))
}

func TestBitwise(t *testing.T) {
	assert.Equal(t, int64(0xF0), cell.And(cell.Int(0xFF), cell.Int(0xF0)).Int())
	assert.Equal(t, int64(0xFF), cell.Or(cell.Int(0x0F), cell.Int(0xF0)).Int())
	assert.Equal(t, int64(0xFF), cell.Xor(cell.Int(0x00), cell.Int(0xFF)).Int())
	assert.Equal(t, int64(^int64(0)), cell.Invert(cell.Int(0)).Int())
	assert.Equal(t, int64(4), cell.Lshift(cell.Int(1), cell.Int(2)).Int())
	assert.Equal(t, int64(1), cell.Rshift(cell.Int(4), cell.Int(2)).Int())
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, int64(2), cell.Min(cell.Int(2), cell.Int(5)).Int())
	assert.Equal(t, int64(5), cell.Max(cell.Int(2), cell.Int(5)).Int())
}
