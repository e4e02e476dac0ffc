package params

import (
	"math"
	"testing"

	"github.com/fr830/gpytorch/constraints"
	"github.com/fr830/gpytorch/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// expModule builds a module with one raw parameter exposed as exp(raw).
func expModule(t *testing.T, shape tensor.Shape) (*Module, *Parameter) {
	t.Helper()
	m := NewModule()
	p := NewParameter("raw_scale", tensor.Zeros(shape))
	require.NoError(t, m.RegisterParameter(p))
	c := constraints.NewPositive(constraints.WithTransform(constraints.Exp))
	require.NoError(t, m.RegisterConstraint("raw_scale", c))
	acc := Accessor{
		Get: func() *tensor.Tensor { return c.Transform(p.Tensor()) },
		Set: func(v *tensor.Tensor) error {
			raw, err := c.InverseTransform(v)
			if err != nil {
				return err
			}
			return p.Tensor().CopyFrom(raw)
		},
	}
	require.NoError(t, m.RegisterPrior("scale_prior", distuv.Gamma{Alpha: 2, Beta: 1}, acc))
	return m, p
}

func TestParameterSet(t *testing.T) {
	p := NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	v, err := tensor.New(tensor.Shape{2}, []float64{1, 2})
	require.NoError(t, err)
	require.NoError(t, p.Set(v))
	assert.Equal(t, []float64{1, 2}, p.Tensor().Data())

	err = p.Set(tensor.Scalar(3))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.Equal(t, []float64{1, 2}, p.Tensor().Data())
}

func TestRegisterErrors(t *testing.T) {
	m, _ := expModule(t, tensor.Shape{})
	err := m.RegisterParameter(NewParameter("raw_scale", tensor.Scalar(0)))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = m.RegisterConstraint("missing", constraints.NewPositive())
	assert.ErrorIs(t, err, ErrUnknown)

	err = m.RegisterPrior("scale_prior", distuv.Normal{Mu: 0, Sigma: 1}, Accessor{})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = m.Initialize("missing", tensor.Scalar(1))
	assert.ErrorIs(t, err, ErrUnknown)

	err = m.SampleFromPrior("missing")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestChildNaming(t *testing.T) {
	inner, innerRaw := expModule(t, tensor.Shape{3})
	outer, _ := expModule(t, tensor.Shape{})
	require.NoError(t, outer.AddChild("base_kernel", inner))
	assert.ErrorIs(t, outer.AddChild("base_kernel", inner), ErrDuplicate)

	names := make([]string, 0)
	for _, np := range outer.NamedParameters() {
		names = append(names, np.Name)
	}
	assert.Equal(t, []string{"raw_scale", "base_kernel.raw_scale"}, names)

	p, ok := outer.Parameter("base_kernel.raw_scale")
	require.True(t, ok)
	assert.Same(t, innerRaw, p)

	c, ok := outer.Constraint("base_kernel.raw_scale")
	require.True(t, ok)
	assert.Equal(t, 0.0, c.LowerBound())

	_, ok = outer.Parameter("nope.raw_scale")
	assert.False(t, ok)

	priors := outer.Priors()
	require.Len(t, priors, 2)
	assert.Equal(t, "base_kernel.scale_prior", priors[1].Name)
}

func TestInitializeBroadcasts(t *testing.T) {
	m, p := expModule(t, tensor.Shape{3})
	require.NoError(t, m.Initialize("raw_scale", tensor.Scalar(0.5)))
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, p.Tensor().Data())

	err := m.Initialize("raw_scale", tensor.Zeros(tensor.Shape{2}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestLogPrior(t *testing.T) {
	m, _ := expModule(t, tensor.Shape{2})
	// Raw zeros map to a scale of 1 under exp.
	want := 2 * distuv.Gamma{Alpha: 2, Beta: 1}.LogProb(1)
	assert.InDelta(t, want, m.LogPrior(), 1e-12)
	assert.False(t, math.IsNaN(m.LogPrior()))
}

func TestSampleFromPrior(t *testing.T) {
	m, p := expModule(t, tensor.Shape{4})
	require.NoError(t, m.SampleFromPrior("scale_prior"))
	for _, raw := range p.Tensor().Data() {
		assert.Greater(t, math.Exp(raw), 0.0)
	}
	assert.NotEqual(t, []float64{0, 0, 0, 0}, p.Tensor().Data())
}
