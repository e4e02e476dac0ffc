package kern

import (
	"errors"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/params"
	"github.com/fr830/gpytorch/tensor"
)

var (
	ErrNilKernel    = errors.New("kern: nil base kernel")
	ErrInputRank    = errors.New("kern: inputs must have shape [batch..., n, d]")
	ErrInvalidScale = errors.New("kern: invalid outputscale")
	ErrNotPositive  = errors.New("kern: outputscale constraint admits non-positive values")
)

type Kernel interface {
	// Covariance between the rows of x1 [batch..., n, d] and x2 [batch..., m, d].
	Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error)

	// Logical shape of the full covariance, [batch..., n, m].
	OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error)
}

// Parameterized kernels expose trainable state.
type Parameterized interface {
	Params() *params.Module
}

// Lengthscaled kernels report whether they depend on an input lengthscale.
type Lengthscaled interface {
	HasLengthscale() bool
}

// Options controls a single evaluation.
type Options struct {
	// Only the diagonal [batch..., n] is computed.
	Diag bool

	// With LastDimIsBatch every input dimension becomes its own leading
	// batch element: [batch..., n, d] inputs yield [d, batch..., n, m].
	BatchDims BatchDims

	// Forwarded untouched to wrapped kernels.
	Params map[string]any
}

// BatchDims is a pair of axes describing how inputs fold into batches.
type BatchDims []int

// LastDimIsBatch is the (0, 2) convention.
var LastDimIsBatch = BatchDims{0, 2}

func (b BatchDims) IsLastDimBatch() bool {
	return len(b) == 2 && b[0] == 0 && b[1] == 2
}
