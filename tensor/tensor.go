package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a dense, row-major array of float64 values.
type Tensor struct {
	shape Shape
	data  []float64
}

// New returns a tensor of the given shape backed by data. A nil data slice
// allocates zeros.
func New(shape Shape, data []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	n := shape.NumElements()
	if data == nil {
		data = make([]float64, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrInvalidShape, len(data), []int(shape))
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// Zeros panics if shape has a negative dimension.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape, nil)
	if err != nil {
		panic(err)
	}
	return t
}

func Full(shape Shape, v float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

func Scalar(v float64) *Tensor {
	return &Tensor{shape: Shape{}, data: []float64{v}}
}

func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Data returns the backing slice. Writes through it mutate the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

func (t *Tensor) Dim() int {
	return len(t.shape)
}

func (t *Tensor) Len() int {
	return len(t.data)
}

// Size returns the length of an axis. Negative axes count from the end.
func (t *Tensor) Size(axis int) int {
	if axis < 0 {
		axis += len(t.shape)
	}
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Sprintf("tensor: axis %d out of range for rank %d", axis, len(t.shape)))
	}
	return t.shape[axis]
}

// Item returns the value of a one-element tensor.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor: Item on tensor of shape %v", []int(t.shape)))
	}
	return t.data[0]
}

func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: %d indices for rank %d", len(idx), len(t.shape)))
	}
	off := 0
	for i, stride := range t.shape.Strides() {
		if idx[i] < 0 || idx[i] >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, []int(t.shape)))
		}
		off += idx[i] * stride
	}
	return t.data[off]
}

func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// View returns a tensor sharing t's data under a new shape with the same
// number of elements.
func (t *Tensor) View(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("%w: cannot view %v as %v", ErrShapeMismatch, []int(t.shape), []int(shape))
	}
	return &Tensor{shape: shape.Clone(), data: t.data}, nil
}

// Unsqueeze inserts a singleton axis at position axis, sharing data.
func (t *Tensor) Unsqueeze(axis int) *Tensor {
	if axis < 0 {
		axis += len(t.shape) + 1
	}
	if axis < 0 || axis > len(t.shape) {
		panic(fmt.Sprintf("tensor: cannot unsqueeze axis %d of rank %d", axis, len(t.shape)))
	}
	shape := make(Shape, 0, len(t.shape)+1)
	shape = append(shape, t.shape[:axis]...)
	shape = append(shape, 1)
	shape = append(shape, t.shape[axis:]...)
	return &Tensor{shape: shape, data: t.data}
}

// Repeat tiles t reps[i] times along axis i. When len(reps) exceeds the
// rank, t is first treated as having leading singleton axes.
func (t *Tensor) Repeat(reps ...int) (*Tensor, error) {
	if len(reps) < len(t.shape) {
		return nil, fmt.Errorf("%w: %d repeats for rank %d", ErrInvalidShape, len(reps), len(t.shape))
	}
	src := make(Shape, len(reps))
	for i := range src {
		src[i] = 1
	}
	copy(src[len(reps)-len(t.shape):], t.shape)
	out := make(Shape, len(reps))
	for i, r := range reps {
		if r < 0 {
			return nil, fmt.Errorf("%w: negative repeat %d", ErrInvalidShape, r)
		}
		out[i] = src[i] * r
	}

	strides := src.Strides()
	data := make([]float64, out.NumElements())
	pos := make([]int, len(out))
	for k := range data {
		off := 0
		for d, p := range pos {
			off += (p % src[d]) * strides[d]
		}
		data[k] = t.data[off]
		for d := len(out) - 1; d >= 0; d-- {
			pos[d]++
			if pos[d] < out[d] {
				break
			}
			pos[d] = 0
		}
	}
	return &Tensor{shape: out, data: data}, nil
}

// BroadcastTo returns a new tensor with t's values stretched to shape.
func (t *Tensor) BroadcastTo(shape Shape) (*Tensor, error) {
	index, err := BroadcastIndex(t.shape, shape)
	if err != nil {
		return nil, err
	}
	data := make([]float64, len(index))
	for k, i := range index {
		data[k] = t.data[i]
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// CopyFrom overwrites t in place with src broadcast to t's shape.
func (t *Tensor) CopyFrom(src *Tensor) error {
	b, err := src.BroadcastTo(t.shape)
	if err != nil {
		return err
	}
	copy(t.data, b.data)
	return nil
}

// Apply returns a new tensor with f applied to every element.
func (t *Tensor) Apply(f func(float64) float64) *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = f(v)
	}
	return out
}

// Mat returns a view of the i-th matrix formed by the last two axes.
func (t *Tensor) Mat(i int) *mat.Dense {
	if len(t.shape) < 2 {
		panic(fmt.Sprintf("tensor: Mat on tensor of rank %d", len(t.shape)))
	}
	r, c := t.shape[len(t.shape)-2], t.shape[len(t.shape)-1]
	off := i * r * c
	return mat.NewDense(r, c, t.data[off:off+r*c])
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor%v%v", []int(t.shape), t.data)
}

// Mul returns the broadcast elementwise product of a and b.
func Mul(a, b *Tensor) (*Tensor, error) {
	return binary(a, b, floats.MulTo, func(x, y float64) float64 { return x * y })
}

// Add returns the broadcast elementwise sum of a and b.
func Add(a, b *Tensor) (*Tensor, error) {
	return binary(a, b, floats.AddTo, func(x, y float64) float64 { return x + y })
}

func binary(a, b *Tensor, same func(dst, s, t []float64) []float64, op func(x, y float64) float64) (*Tensor, error) {
	if a.shape.Equal(b.shape) {
		data := make([]float64, len(a.data))
		same(data, a.data, b.data)
		return &Tensor{shape: a.shape.Clone(), data: data}, nil
	}
	shape, err := Broadcast(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	ia, err := BroadcastIndex(a.shape, shape)
	if err != nil {
		return nil, err
	}
	ib, err := BroadcastIndex(b.shape, shape)
	if err != nil {
		return nil, err
	}
	data := make([]float64, len(ia))
	for k := range data {
		data[k] = op(a.data[ia[k]], b.data[ib[k]])
	}
	return &Tensor{shape: shape, data: data}, nil
}
