package kern

import (
	"math"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/tensor"
)

var (
	matern32 *Matern32
	_        Kernel = matern32 // Check that Matern32 respects the Kernel interface.
)

type Matern32 struct {
	variance float64
	lambda   float64
}

func NewMatern32(variance, lscale float64) *Matern32 {
	return &Matern32{
		variance: variance,
		lambda:   math.Sqrt(3) / lscale,
	}
}

func (k *Matern32) HasLengthscale() bool {
	return true
}

func (k *Matern32) Cov(r float64) float64 {
	a := k.lambda * r
	return k.variance * (1 + a) * math.Exp(-a)
}

func (k *Matern32) Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error) {
	return evalStationary(x1, x2, opts, k.Cov)
}

func (k *Matern32) OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	return outputSize(x1, x2)
}
