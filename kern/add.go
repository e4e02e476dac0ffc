package kern

import (
	"fmt"
	"strconv"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/params"
	"github.com/fr830/gpytorch/tensor"
)

var (
	add *Add
	_   Kernel = add // Check that Add respects the Kernel interface.
)

// Add sums the covariances of its parts.
type Add struct {
	parts  []Kernel
	module *params.Module
}

// NewAdd flattens nested sums. Nil parts are rejected.
func NewAdd(kernels ...Kernel) (*Add, error) {
	parts := make([]Kernel, 0, len(kernels))
	for _, k := range kernels {
		switch k := k.(type) {
		case nil:
			return nil, ErrNilKernel
		case *Add:
			parts = append(parts, k.parts...)
		default:
			parts = append(parts, k)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty sum", ErrNilKernel)
	}
	children := params.NewModule()
	for i, part := range parts {
		if p, ok := part.(Parameterized); ok {
			if err := children.AddChild(strconv.Itoa(i), p.Params()); err != nil {
				return nil, err
			}
		}
	}
	module := params.NewModule()
	if err := module.AddChild("kernels", children); err != nil {
		return nil, err
	}
	return &Add{
		parts:  parts,
		module: module,
	}, nil
}

func (k *Add) Parts() []Kernel {
	return k.parts
}

func (k *Add) Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error) {
	var sum *tensor.Tensor
	for _, part := range k.parts {
		res, err := part.Evaluate(x1, x2, opts)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = res.Dense().Clone()
			continue
		}
		if sum, err = tensor.Add(sum, res.Dense()); err != nil {
			return nil, fmt.Errorf("kern: add: %w", err)
		}
	}
	return lazy.NewNonLazy(sum), nil
}

func (k *Add) OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	return k.parts[0].OutputSize(x1, x2)
}

// Params groups the parameters of the parts under kernels.<i>.
func (k *Add) Params() *params.Module {
	return k.module
}
