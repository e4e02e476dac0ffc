package kern

import (
	"math"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/tensor"
)

var (
	matern12 *Matern12
	_        Kernel = matern12 // Check that Matern12 respects the Kernel interface.
)

// Matern12 is the exponential covariance variance * exp(-r / lscale).
type Matern12 struct {
	variance float64
	lscale   float64
}

func NewMatern12(variance, lscale float64) *Matern12 {
	return &Matern12{
		variance: variance,
		lscale:   lscale,
	}
}

func (k *Matern12) HasLengthscale() bool {
	return true
}

func (k *Matern12) Cov(r float64) float64 {
	return k.variance * math.Exp(-r/k.lscale)
}

func (k *Matern12) Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error) {
	return evalStationary(x1, x2, opts, k.Cov)
}

func (k *Matern12) OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	return outputSize(x1, x2)
}
