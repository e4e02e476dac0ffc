package kern

import (
	"fmt"
	"math"

	"github.com/fr830/gpytorch/constraints"
	"github.com/fr830/gpytorch/lazy"
	"github.com/fr830/gpytorch/params"
	"github.com/fr830/gpytorch/tensor"
	"go.uber.org/zap"
)

var (
	scale *Scale
	_     Kernel        = scale // Check that Scale respects the Kernel interface.
	_     Parameterized = scale
)

// Scale multiplies the covariance of a base kernel by a positive outputscale,
//
//	K_scaled = outputscale * K_base.
//
// The outputscale is stored unconstrained as raw_outputscale and mapped
// through a positivity constraint (softplus by default, so a fresh kernel has
// outputscale ln 2). With a batch shape every batch element has its own
// outputscale.
type Scale struct {
	base       Kernel
	batchShape tensor.Shape
	raw        *params.Parameter
	constraint constraints.Constraint
	prior      params.Prior
	module     *params.Module
	logger     *zap.Logger
}

type ScaleOption func(*Scale)

// WithBatchShape gives every batch element its own outputscale.
func WithBatchShape(dims ...int) ScaleOption {
	return func(k *Scale) {
		k.batchShape = tensor.Shape(dims).Clone()
	}
}

func WithOutputscalePrior(prior params.Prior) ScaleOption {
	return func(k *Scale) {
		k.prior = prior
	}
}

func WithOutputscaleConstraint(c constraints.Constraint) ScaleOption {
	return func(k *Scale) {
		k.constraint = c
	}
}

func WithLogger(logger *zap.Logger) ScaleOption {
	return func(k *Scale) {
		k.logger = logger
	}
}

func NewScale(base Kernel, opts ...ScaleOption) (*Scale, error) {
	if base == nil {
		return nil, ErrNilKernel
	}
	k := &Scale{
		base:       base,
		batchShape: tensor.Shape{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.constraint == nil {
		k.constraint = constraints.NewPositive()
	}
	if lb := k.constraint.LowerBound(); math.IsNaN(lb) || lb < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotPositive, k.constraint)
	}
	value, err := tensor.New(k.batchShape, nil)
	if err != nil {
		return nil, fmt.Errorf("kern: outputscale batch shape: %w", err)
	}
	k.raw = params.NewParameter("raw_outputscale", value)

	k.module = params.NewModule()
	if err := k.module.RegisterParameter(k.raw); err != nil {
		return nil, err
	}
	if k.prior != nil {
		acc := params.Accessor{Get: k.Outputscale, Set: k.SetOutputscale}
		if err := k.module.RegisterPrior("outputscale_prior", k.prior, acc); err != nil {
			return nil, err
		}
	}
	if err := k.module.RegisterConstraint("raw_outputscale", k.constraint); err != nil {
		return nil, err
	}
	if p, ok := base.(Parameterized); ok {
		if err := k.module.AddChild("base_kernel", p.Params()); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func (k *Scale) Base() Kernel {
	return k.base
}

func (k *Scale) BatchShape() tensor.Shape {
	return k.batchShape.Clone()
}

func (k *Scale) Constraint() constraints.Constraint {
	return k.constraint
}

func (k *Scale) Params() *params.Module {
	return k.module
}

// Scaling is multiplicative only.
func (k *Scale) HasLengthscale() bool {
	return false
}

// RawOutputscale returns the unconstrained parameter, updated in place by
// optimisers.
func (k *Scale) RawOutputscale() *params.Parameter {
	return k.raw
}

func (k *Scale) Outputscale() *tensor.Tensor {
	return k.constraint.Transform(k.raw.Tensor())
}

// SetOutputscale stores the raw value mapping to v. v is broadcast to the
// batch shape. On error the outputscale is unchanged.
func (k *Scale) SetOutputscale(v *tensor.Tensor) error {
	v, err := v.BroadcastTo(k.batchShape)
	if err != nil {
		return fmt.Errorf("kern: set outputscale: %w", err)
	}
	raw, err := k.constraint.InverseTransform(v)
	if err != nil {
		k.logger.Warn("rejected outputscale",
			zap.Float64s("value", v.Data()),
			zap.Stringer("constraint", k.constraint),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInvalidScale, err)
	}
	if err := k.raw.Set(raw); err != nil {
		return err
	}
	k.logger.Debug("outputscale updated", zap.Float64s("outputscale", v.Data()))
	return nil
}

func (k *Scale) SetOutputscaleValue(v float64) error {
	return k.SetOutputscale(tensor.Scalar(v))
}

// Evaluate scales the base covariance. Diagonals come back dense; full
// covariances keep the representation the base kernel chose.
// The batch shape must match the covariance's batch axes: a batched
// outputscale against an unbatched covariance scales rows instead.
func (k *Scale) Evaluate(x1, x2 *tensor.Tensor, opts Options) (lazy.Result, error) {
	outputscales := k.Outputscale()
	if opts.BatchDims.IsLastDimBatch() {
		if x1.Dim() == 0 {
			return nil, ErrInputRank
		}
		d := x1.Size(-1)
		reps := make([]int, outputscales.Dim()+1)
		for i := range reps {
			reps[i] = 1
		}
		reps[0] = d
		var err error
		if outputscales, err = outputscales.Unsqueeze(0).Repeat(reps...); err != nil {
			return nil, err
		}
		k.logger.Debug("outputscale expanded over input dimensions", zap.Int("dims", d))
	}

	orig, err := k.base.Evaluate(x1, x2, opts)
	if err != nil {
		return nil, err
	}

	shape := orig.Shape()
	if outputscales.Dim() > len(shape) {
		return nil, fmt.Errorf("kern: outputscale %v against covariance %v: %w",
			[]int(outputscales.Shape()), []int(shape), tensor.ErrShapeMismatch)
	}
	view := outputscales.Shape()
	for len(view) < len(shape) {
		view = append(view, 1)
	}
	if outputscales, err = outputscales.View(view); err != nil {
		return nil, err
	}

	if opts.Diag {
		out, err := tensor.Mul(lazy.Delazify(orig), outputscales)
		if err != nil {
			return nil, fmt.Errorf("kern: scale: %w", err)
		}
		return lazy.NewNonLazy(out), nil
	}
	res, err := orig.Mul(outputscales)
	if err != nil {
		return nil, fmt.Errorf("kern: scale: %w", err)
	}
	return res, nil
}

func (k *Scale) OutputSize(x1, x2 *tensor.Tensor) (tensor.Shape, error) {
	return k.base.OutputSize(x1, x2)
}
