package lazy

import (
	"fmt"

	"github.com/fr830/gpytorch/tensor"
)

var (
	nonLazy *NonLazy
	_       Result = nonLazy // Check that NonLazy respects the Result interface.
)

// NonLazy wraps values that are already dense.
type NonLazy struct {
	t *tensor.Tensor
}

func NewNonLazy(t *tensor.Tensor) *NonLazy {
	return &NonLazy{t: t}
}

func (r *NonLazy) Shape() tensor.Shape {
	return r.t.Shape()
}

func (r *NonLazy) Dense() *tensor.Tensor {
	return r.t
}

func (r *NonLazy) Mul(s *tensor.Tensor) (Result, error) {
	out, err := tensor.Mul(r.t, s)
	if err != nil {
		return nil, fmt.Errorf("lazy: multiply: %w", err)
	}
	return NewNonLazy(out), nil
}
