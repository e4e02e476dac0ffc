package constraints

import (
	"errors"
	"fmt"
	"math"

	"github.com/fr830/gpytorch/tensor"
)

var (
	ErrOutOfBounds   = errors.New("constraints: value outside constraint bounds")
	ErrInvalidBounds = errors.New("constraints: invalid bounds")
)

type Constraint interface {
	// Transform maps raw, unconstrained values into the constrained set.
	Transform(raw *tensor.Tensor) *tensor.Tensor

	// InverseTransform maps constrained values back to raw values. It fails
	// with ErrOutOfBounds for values outside the constrained set.
	InverseTransform(v *tensor.Tensor) (*tensor.Tensor, error)

	LowerBound() float64
	UpperBound() float64

	// Check reports whether every element of v lies in the constrained set.
	Check(v *tensor.Tensor) bool

	String() string
}

var (
	interval *Interval
	_        Constraint = interval // Check that Interval respects the Constraint interface.
)

// Interval constrains values to the open interval (lower, upper). Either
// bound may be infinite.
// With a single finite bound the configured transform is used, with two the
// sigmoid is.
type Interval struct {
	lower     float64
	upper     float64
	transform Transform
}

type Option func(*Interval)

// WithTransform picks the positive transform used for one-sided bounds.
func WithTransform(t Transform) Option {
	return func(c *Interval) {
		c.transform = t
	}
}

func NewInterval(lower, upper float64, opts ...Option) (*Interval, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower >= upper {
		return nil, fmt.Errorf("%w: (%v, %v)", ErrInvalidBounds, lower, upper)
	}
	c := &Interval{
		lower:     lower,
		upper:     upper,
		transform: Softplus,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasLower() && c.hasUpper() {
		c.transform = Sigmoid
	}
	return c, nil
}

// NewGreaterThan panics if lower is NaN or +Inf.
func NewGreaterThan(lower float64, opts ...Option) *Interval {
	c, err := NewInterval(lower, math.Inf(1), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewLessThan panics if upper is NaN or -Inf.
func NewLessThan(upper float64, opts ...Option) *Interval {
	c, err := NewInterval(math.Inf(-1), upper, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func NewPositive(opts ...Option) *Interval {
	return NewGreaterThan(0, opts...)
}

func (c *Interval) hasLower() bool {
	return !math.IsInf(c.lower, -1)
}

func (c *Interval) hasUpper() bool {
	return !math.IsInf(c.upper, 1)
}

func (c *Interval) LowerBound() float64 {
	return c.lower
}

func (c *Interval) UpperBound() float64 {
	return c.upper
}

func (c *Interval) TransformName() string {
	return c.transform.Name
}

// forward never returns a bound: saturated transforms are pulled back to the
// nearest float inside the interval.
func (c *Interval) forward(x float64) float64 {
	f := c.transform.Forward
	switch {
	case c.hasLower() && c.hasUpper():
		v := c.lower + (c.upper-c.lower)*f(x)
		return math.Min(math.Max(v, math.Nextafter(c.lower, c.upper)), math.Nextafter(c.upper, c.lower))
	case c.hasLower():
		return math.Max(c.lower+f(x), math.Nextafter(c.lower, c.upper))
	case c.hasUpper():
		return math.Min(c.upper-f(-x), math.Nextafter(c.upper, c.lower))
	}
	return x
}

func (c *Interval) inverse(v float64) float64 {
	g := c.transform.Inverse
	switch {
	case c.hasLower() && c.hasUpper():
		p := (v - c.lower) / (c.upper - c.lower)
		return g(math.Min(math.Max(p, math.SmallestNonzeroFloat64), math.Nextafter(1, 0)))
	case c.hasLower():
		return g(v - c.lower)
	case c.hasUpper():
		return -g(c.upper - v)
	}
	return v
}

func (c *Interval) contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if c.hasLower() && v <= c.lower {
		return false
	}
	if c.hasUpper() && v >= c.upper {
		return false
	}
	return true
}

func (c *Interval) Transform(raw *tensor.Tensor) *tensor.Tensor {
	return raw.Apply(c.forward)
}

func (c *Interval) InverseTransform(v *tensor.Tensor) (*tensor.Tensor, error) {
	for _, x := range v.Data() {
		if !c.contains(x) {
			return nil, fmt.Errorf("%w: %v not in %v", ErrOutOfBounds, x, c)
		}
	}
	return v.Apply(c.inverse), nil
}

func (c *Interval) Check(v *tensor.Tensor) bool {
	for _, x := range v.Data() {
		if !c.contains(x) {
			return false
		}
	}
	return true
}

func (c *Interval) String() string {
	switch {
	case c.hasLower() && c.hasUpper():
		return fmt.Sprintf("Interval(%v, %v)", c.lower, c.upper)
	case c.hasLower() && c.lower == 0:
		return "Positive()"
	case c.hasLower():
		return fmt.Sprintf("GreaterThan(%v)", c.lower)
	case c.hasUpper():
		return fmt.Sprintf("LessThan(%v)", c.upper)
	}
	return "Unconstrained()"
}
