package lazy

import (
	"fmt"

	"github.com/fr830/gpytorch/tensor"
)

// Result is the output of a covariance evaluation. Implementations may defer
// computing their entries until Dense is called.
type Result interface {
	// Logical shape: batch dimensions followed by [n, m], or [n] for a
	// diagonal.
	Shape() tensor.Shape

	// Materialised values.
	Dense() *tensor.Tensor

	// Mul multiplies by s, broadcast against Shape. Representations keep
	// their structure when s is constant over the trailing axes.
	Mul(s *tensor.Tensor) (Result, error)
}

// Delazify returns the dense values of r.
func Delazify(r Result) *tensor.Tensor {
	return r.Dense()
}

// splitMultiplier returns the batch part of s when s is constant over the
// last trailing axes.
func splitMultiplier(s *tensor.Tensor, trailing int) (tensor.Shape, bool) {
	shape := s.Shape()
	k := len(shape) - trailing
	if k < 0 {
		k = 0
	}
	for _, dim := range shape[k:] {
		if dim != 1 {
			return nil, false
		}
	}
	return shape[:k], true
}

// scaleBatch broadcasts a per-batch multiplier against batch and returns the
// output batch shape and, for every output element, the source element and
// multiplier.
func scaleBatch(s *tensor.Tensor, sb, batch tensor.Shape) (tensor.Shape, []int, []float64, error) {
	out, err := tensor.Broadcast(sb, batch)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := tensor.BroadcastIndex(batch, out)
	if err != nil {
		return nil, nil, nil, err
	}
	si, err := tensor.BroadcastIndex(sb, out)
	if err != nil {
		return nil, nil, nil, err
	}
	alphas := make([]float64, len(si))
	for k, i := range si {
		alphas[k] = s.Data()[i]
	}
	return out, src, alphas, nil
}

func denseMul(r Result, s *tensor.Tensor) (Result, error) {
	out, err := tensor.Mul(r.Dense(), s)
	if err != nil {
		return nil, fmt.Errorf("lazy: multiply: %w", err)
	}
	return NewNonLazy(out), nil
}
