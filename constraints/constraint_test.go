package constraints

import (
	"math"
	"testing"

	"github.com/fr830/gpytorch/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositiveRoundTrip(t *testing.T) {
	for _, tr := range []Transform{Softplus, Exp} {
		c := NewPositive(WithTransform(tr))
		for _, v := range []float64{1e-8, 0.1, 0.5, 1, 3, 19.9, 20, 25, 1e6} {
			raw, err := c.InverseTransform(tensor.Scalar(v))
			require.NoError(t, err)
			got := c.Transform(raw).Item()
			assert.InEpsilon(t, v, got, 1e-9, "%s round trip of %v", tr.Name, v)
		}
	}
}

func TestPositiveStrictlyPositive(t *testing.T) {
	raw, err := tensor.New(tensor.Shape{6}, []float64{-1e6, -800, -40, 0, 40, 1e6})
	require.NoError(t, err)
	for _, tr := range []Transform{Softplus, Exp} {
		out := NewPositive(WithTransform(tr)).Transform(raw)
		for i, v := range out.Data() {
			assert.Greater(t, v, 0.0, "%s(%v)", tr.Name, raw.Data()[i])
		}
	}
}

func TestTransformAtZero(t *testing.T) {
	assert.InDelta(t, math.Ln2, NewPositive().Transform(tensor.Scalar(0)).Item(), 1e-12)
	assert.Equal(t, 1.0, NewPositive(WithTransform(Exp)).Transform(tensor.Scalar(0)).Item())
}

func TestInverseOutOfBounds(t *testing.T) {
	c := NewPositive()
	for _, v := range []float64{-1, 0, math.NaN()} {
		_, err := c.InverseTransform(tensor.Scalar(v))
		assert.ErrorIs(t, err, ErrOutOfBounds)
	}
	assert.False(t, c.Check(tensor.Scalar(-2)))
	assert.True(t, c.Check(tensor.Scalar(2)))
}

func TestGreaterThan(t *testing.T) {
	c := NewGreaterThan(1e-4)
	assert.Equal(t, 1e-4, c.LowerBound())
	assert.True(t, math.IsInf(c.UpperBound(), 1))
	v := c.Transform(tensor.Scalar(-5)).Item()
	assert.Greater(t, v, 1e-4)
	assert.Equal(t, "GreaterThan(0.0001)", c.String())
}

func TestLessThan(t *testing.T) {
	c := NewLessThan(2)
	raw, err := c.InverseTransform(tensor.Scalar(1.5))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, c.Transform(raw).Item(), 1e-12)
	_, err = c.InverseTransform(tensor.Scalar(2))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestInterval(t *testing.T) {
	c, err := NewInterval(1, 3, WithTransform(Exp))
	require.NoError(t, err)
	assert.Equal(t, "sigmoid", c.TransformName())
	assert.InDelta(t, 2.0, c.Transform(tensor.Scalar(0)).Item(), 1e-12)

	raw, err := c.InverseTransform(tensor.Scalar(2.5))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, c.Transform(raw).Item(), 1e-12)

	_, err = NewInterval(3, 1)
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = NewInterval(math.NaN(), 1)
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = NewInterval(3, 1)
	assert.EqualError(t, err, "constraints: invalid bounds: (3, 1)")
}

func TestSaturatedStaysInside(t *testing.T) {
	raw, err := tensor.New(tensor.Shape{4}, []float64{-1e300, -800, 40, 1e300})
	require.NoError(t, err)
	interval, err := NewInterval(0, 5)
	require.NoError(t, err)
	cases := map[string]Constraint{
		"interval":     interval,
		"greater than": NewGreaterThan(2),
		"less than":    NewLessThan(-1),
	}
	for name, c := range cases {
		v := c.Transform(raw)
		assert.True(t, c.Check(v), name)
		back, err := c.InverseTransform(v)
		require.NoError(t, err, name)
		for _, x := range back.Data() {
			assert.False(t, math.IsInf(x, 0), name)
		}
	}
}

func TestInverseIsElementwise(t *testing.T) {
	v, err := tensor.New(tensor.Shape{3}, []float64{0.5, 1, 2})
	require.NoError(t, err)
	c := NewPositive(WithTransform(Exp))
	raw, err := c.InverseTransform(v)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3}, raw.Shape())
	assert.InDelta(t, math.Log(2), raw.At(2), 1e-12)

	v.Data()[1] = -1
	_, err = c.InverseTransform(v)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
