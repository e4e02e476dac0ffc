package lazy

import (
	"fmt"

	"github.com/fr830/gpytorch/tensor"
)

var (
	constant *Constant
	_        Result = constant // Check that Constant respects the Result interface.
)

// Constant holds one value per batch element repeated over trailing axes
// (a full [n, m] block or an [n] diagonal). Storage is one float per batch
// element.
type Constant struct {
	batch    tensor.Shape
	trailing tensor.Shape
	values   []float64
}

func NewConstant(batch, trailing tensor.Shape, values []float64) (*Constant, error) {
	if err := append(batch.Clone(), trailing...).Validate(); err != nil {
		return nil, err
	}
	if len(values) != batch.NumElements() {
		return nil, fmt.Errorf("%w: %d values for batch %v", tensor.ErrInvalidShape, len(values), []int(batch))
	}
	return &Constant{batch: batch.Clone(), trailing: trailing.Clone(), values: values}, nil
}

func (c *Constant) Shape() tensor.Shape {
	return append(c.batch.Clone(), c.trailing...)
}

// Value returns the constant of the i-th batch element.
func (c *Constant) Value(i int) float64 {
	return c.values[i]
}

func (c *Constant) Dense() *tensor.Tensor {
	out := tensor.Zeros(c.Shape())
	block := c.trailing.NumElements()
	data := out.Data()
	for i, v := range c.values {
		for j := i * block; j < (i+1)*block; j++ {
			data[j] = v
		}
	}
	return out
}

func (c *Constant) Mul(s *tensor.Tensor) (Result, error) {
	sb, ok := splitMultiplier(s, len(c.trailing))
	if !ok {
		return denseMul(c, s)
	}
	out, src, alphas, err := scaleBatch(s, sb, c.batch)
	if err != nil {
		return nil, fmt.Errorf("lazy: multiply: %w", err)
	}
	values := make([]float64, len(src))
	for k, i := range src {
		values[k] = alphas[k] * c.values[i]
	}
	return &Constant{batch: out, trailing: c.trailing.Clone(), values: values}, nil
}
