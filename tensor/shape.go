package tensor

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch = errors.New("tensor: shapes are not broadcast compatible")
	ErrInvalidShape  = errors.New("tensor: invalid shape")
)

// Shape lists the size of every axis, outermost first. The empty shape is a
// scalar.
type Shape []int

// NumElements returns the number of elements held by a tensor of this shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d is %d", ErrInvalidShape, i, dim)
		}
	}
	return nil
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides returns row-major strides.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// Broadcast returns the shape obtained by aligning a and b on their last
// axis and stretching singleton dimensions.
func Broadcast(a, b Shape) (Shape, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Shape, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		case db == 1:
			out[n-i] = da
		default:
			return nil, mismatch(a, b)
		}
	}
	return out, nil
}

// BroadcastIndex maps every flat index of a tensor shaped to onto the flat
// index of the tensor shaped from that it reads when from is broadcast to to.
func BroadcastIndex(from, to Shape) ([]int, error) {
	if len(from) > len(to) {
		return nil, mismatch(from, to)
	}
	offset := len(to) - len(from)
	fromStrides := from.Strides()
	strides := make([]int, len(to))
	for i, dim := range from {
		switch {
		case dim == to[offset+i]:
			strides[offset+i] = fromStrides[i]
		case dim == 1:
			strides[offset+i] = 0
		default:
			return nil, mismatch(from, to)
		}
	}

	n := to.NumElements()
	index := make([]int, n)
	pos := make([]int, len(to))
	cur := 0
	for k := 0; k < n; k++ {
		index[k] = cur
		for d := len(to) - 1; d >= 0; d-- {
			pos[d]++
			cur += strides[d]
			if pos[d] < to[d] {
				break
			}
			cur -= strides[d] * pos[d]
			pos[d] = 0
		}
	}
	return index, nil
}

func mismatch(a, b Shape) error {
	return fmt.Errorf("%w: %v and %v", ErrShapeMismatch, []int(a), []int(b))
}
