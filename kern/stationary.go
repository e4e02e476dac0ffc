package kern

import (
	"fmt"

	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pairing describes how the matrices of two batched inputs line up.
type pairing struct {
	batch   tensor.Shape
	n, m, d int
	i1, i2  []int // Source matrix of x1 and x2 for every output batch element.
}

func pair(x1, x2 *tensor.Tensor) (*pairing, error) {
	if x1.Dim() < 2 || x2.Dim() < 2 {
		return nil, fmt.Errorf("%w: got %v and %v", ErrInputRank, []int(x1.Shape()), []int(x2.Shape()))
	}
	s1, s2 := x1.Shape(), x2.Shape()
	p := &pairing{
		n: s1[len(s1)-2],
		m: s2[len(s2)-2],
		d: s1[len(s1)-1],
	}
	if s2[len(s2)-1] != p.d {
		return nil, fmt.Errorf("kern: feature dimensions %d and %d: %w", p.d, s2[len(s2)-1], tensor.ErrShapeMismatch)
	}
	if p.n == 0 || p.m == 0 || p.d == 0 {
		return nil, fmt.Errorf("%w: empty input %v and %v", tensor.ErrInvalidShape, []int(s1), []int(s2))
	}
	b1, b2 := s1[:len(s1)-2], s2[:len(s2)-2]
	var err error
	if p.batch, err = tensor.Broadcast(b1, b2); err != nil {
		return nil, fmt.Errorf("kern: input batches: %w", err)
	}
	if p.i1, err = tensor.BroadcastIndex(b1, p.batch); err != nil {
		return nil, err
	}
	if p.i2, err = tensor.BroadcastIndex(b2, p.batch); err != nil {
		return nil, err
	}
	return p, nil
}

// slices returns the input dimension read by each leading output slice and
// the output batch shape. Dimension -1 means all dimensions.
func (p *pairing) slices(opts Options) ([]int, tensor.Shape) {
	if !opts.BatchDims.IsLastDimBatch() {
		return []int{-1}, p.batch.Clone()
	}
	dims := make([]int, p.d)
	for k := range dims {
		dims[k] = k
	}
	return dims, append(tensor.Shape{p.d}, p.batch...)
}

func outputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	p, err := pair(x1, x2)
	if err != nil {
		return nil, err
	}
	return append(p.batch.Clone(), p.n, p.m), nil
}

func distance(a, b []float64, dim int) float64 {
	if dim < 0 {
		return floats.Distance(a, b, 2)
	}
	d := a[dim] - b[dim]
	if d < 0 {
		return -d
	}
	return d
}

// evalStationary evaluates a covariance that depends only on the distance
// between inputs. Symmetric Gram matrices are kept as mat.SymDense.
func evalStationary(x1, x2 *tensor.Tensor, opts Options, cov func(r float64) float64) (lazy.Result, error) {
	p, err := pair(x1, x2)
	if err != nil {
		return nil, err
	}
	dims, batch := p.slices(opts)

	if opts.Diag {
		if p.n != p.m {
			return nil, fmt.Errorf("kern: diagonal of %dx%d covariance: %w", p.n, p.m, tensor.ErrShapeMismatch)
		}
		out := tensor.Zeros(append(batch.Clone(), p.n))
		data := out.Data()
		k := 0
		for _, dim := range dims {
			for b := range p.i1 {
				a, c := x1.Mat(p.i1[b]), x2.Mat(p.i2[b])
				for i := 0; i < p.n; i++ {
					data[k] = cov(distance(a.RawRowView(i), c.RawRowView(i), dim))
					k++
				}
			}
		}
		return lazy.NewNonLazy(out), nil
	}

	same := x1 == x2
	mats := make([]mat.Matrix, 0, len(dims)*len(p.i1))
	for _, dim := range dims {
		for b := range p.i1 {
			a, c := x1.Mat(p.i1[b]), x2.Mat(p.i2[b])
			if same {
				sym := mat.NewSymDense(p.n, nil)
				for i := 0; i < p.n; i++ {
					for j := i; j < p.n; j++ {
						sym.SetSym(i, j, cov(distance(a.RawRowView(i), a.RawRowView(j), dim)))
					}
				}
				mats = append(mats, sym)
				continue
			}
			gen := mat.NewDense(p.n, p.m, nil)
			for i := 0; i < p.n; i++ {
				for j := 0; j < p.m; j++ {
					gen.Set(i, j, cov(distance(a.RawRowView(i), c.RawRowView(j), dim)))
				}
			}
			mats = append(mats, gen)
		}
	}
	return lazy.NewBatch(batch, mats)
}
