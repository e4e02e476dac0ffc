package kern

import (
	"fmt"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/tensor"
)

var (
	constant *Constant
	_        Kernel = constant // Check that Constant respects the Kernel interface.
)

// Constant covariance. Results are lazy.Constant, one value per batch
// element whatever the number of inputs.
type Constant struct {
	variance float64
}

func NewConstant(variance float64) *Constant {
	return &Constant{
		variance: variance,
	}
}

func (k *Constant) HasLengthscale() bool {
	return false
}

func (k *Constant) Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error) {
	p, err := pair(x1, x2)
	if err != nil {
		return nil, err
	}
	_, batch := p.slices(opts)
	trailing := tensor.Shape{p.n, p.m}
	if opts.Diag {
		if p.n != p.m {
			return nil, fmt.Errorf("kern: diagonal of %dx%d covariance: %w", p.n, p.m, tensor.ErrShapeMismatch)
		}
		trailing = tensor.Shape{p.n}
	}
	values := make([]float64, batch.NumElements())
	for i := range values {
		values[i] = k.variance
	}
	return lazy.NewConstant(batch, trailing, values)
}

func (k *Constant) OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	return outputSize(x1, x2)
}
