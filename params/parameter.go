// Package params tracks the trainable state of covariance modules.
//
// A Module owns named raw parameters, the constraints that map them to their
// constrained values, and priors registered through read/write accessors.
// Optimisers and regularisers work against a Module without knowing how a
// particular kernel stores its state.
package params

import (
	"fmt"

	"github.com/fr830/gpytorch/tensor"
)

// Parameter is a named, unconstrained tensor updated in place during
// training. Its shape is fixed at creation.
//
// Example:
//
//	raw := params.NewParameter("raw_outputscale", tensor.Zeros(tensor.Shape{3}))
//	raw.Tensor().Data()[0] -= lr * grad[0]
type Parameter struct {
	name  string
	value *tensor.Tensor
}

func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the live parameter tensor. Writes through it are visible to
// every holder of the parameter.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.value
}

// Set copies v into the parameter. v must have exactly the parameter's
// shape; the parameter is left unchanged otherwise.
func (p *Parameter) Set(v *tensor.Tensor) error {
	if !v.Shape().Equal(p.value.Shape()) {
		return fmt.Errorf("params: set %s: %w: %v and %v",
			p.name, tensor.ErrShapeMismatch, []int(v.Shape()), []int(p.value.Shape()))
	}
	copy(p.value.Data(), v.Data())
	return nil
}
