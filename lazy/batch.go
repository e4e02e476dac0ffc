package lazy

import (
	"errors"
	"fmt"

	"github.com/fr830/gpytorch/tensor"
	"gonum.org/v1/gonum/mat"
)

var ErrEmptyBatch = errors.New("lazy: batch holds no matrices")

var (
	batch *Batch
	_     Result = batch // Check that Batch respects the Result interface.
)

// Batch is a batch of matrices kept in whatever representation produced
// them. Entries are read through mat.Matrix.At only when materialised.
type Batch struct {
	batch tensor.Shape
	rows  int
	cols  int
	mats  []mat.Matrix
}

func NewBatch(batch tensor.Shape, mats []mat.Matrix) (*Batch, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if len(mats) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(mats) != batch.NumElements() {
		return nil, fmt.Errorf("%w: %d matrices for batch %v", tensor.ErrInvalidShape, len(mats), []int(batch))
	}
	r, c := mats[0].Dims()
	for _, m := range mats[1:] {
		if mr, mc := m.Dims(); mr != r || mc != c {
			return nil, fmt.Errorf("%w: %dx%d and %dx%d in one batch", tensor.ErrShapeMismatch, r, c, mr, mc)
		}
	}
	return &Batch{batch: batch.Clone(), rows: r, cols: c, mats: mats}, nil
}

func (b *Batch) Shape() tensor.Shape {
	return append(b.batch.Clone(), b.rows, b.cols)
}

func (b *Batch) Len() int {
	return len(b.mats)
}

// Matrix returns the i-th matrix in row-major batch order.
func (b *Batch) Matrix(i int) mat.Matrix {
	return b.mats[i]
}

func (b *Batch) Dense() *tensor.Tensor {
	out := tensor.Zeros(b.Shape())
	for i, m := range b.mats {
		out.Mat(i).Copy(m)
	}
	return out
}

// Mul scales every matrix by its broadcast multiplier without touching the
// entries. Multipliers that vary within a matrix are applied to the dense
// form.
func (b *Batch) Mul(s *tensor.Tensor) (Result, error) {
	sb, ok := splitMultiplier(s, 2)
	if !ok {
		return denseMul(b, s)
	}
	out, src, alphas, err := scaleBatch(s, sb, b.batch)
	if err != nil {
		return nil, fmt.Errorf("lazy: multiply: %w", err)
	}
	mats := make([]mat.Matrix, len(src))
	for k, i := range src {
		mats[k] = Scale(alphas[k], b.mats[i])
	}
	return &Batch{batch: out, rows: b.rows, cols: b.cols, mats: mats}, nil
}
