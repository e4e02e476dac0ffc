// Package config builds kernels from YAML descriptions.
//
//	type: scale
//	outputscale: 2.0
//	batch_shape: [3]
//	constraint: {type: positive, transform: exp}
//	prior: {type: gamma, concentration: 2, rate: 0.15}
//	base:
//	  type: matern32
//	  variance: 1
//	  lengthscale: 0.5
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/fr830/gpytorch/constraints"
	"github.com/fr830/gpytorch/kern"
	"github.com/fr830/gpytorch/params"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid kernel configuration")

type Kernel struct {
	Type        string      `yaml:"type"`
	Variance    *float64    `yaml:"variance,omitempty"`
	Lengthscale *float64    `yaml:"lengthscale,omitempty"`
	Outputscale *float64    `yaml:"outputscale,omitempty"`
	BatchShape  []int       `yaml:"batch_shape,omitempty"`
	Constraint  *Constraint `yaml:"constraint,omitempty"`
	Prior       *Prior      `yaml:"prior,omitempty"`
	Base        *Kernel     `yaml:"base,omitempty"`
	Parts       []Kernel    `yaml:"parts,omitempty"`
}

type Constraint struct {
	Type      string   `yaml:"type"`
	Transform string   `yaml:"transform,omitempty"`
	Lower     *float64 `yaml:"lower,omitempty"`
	Upper     *float64 `yaml:"upper,omitempty"`
}

type Prior struct {
	Type          string  `yaml:"type"`
	Concentration float64 `yaml:"concentration,omitempty"`
	Rate          float64 `yaml:"rate,omitempty"`
	Loc           float64 `yaml:"loc,omitempty"`
	Scale         float64 `yaml:"scale,omitempty"`
	Low           float64 `yaml:"low,omitempty"`
	High          float64 `yaml:"high,omitempty"`
}

func Parse(data []byte) (*Kernel, error) {
	var k Kernel
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&k); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &k, nil
}

func Load(path string) (*Kernel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Build constructs the kernel tree described by k.
func Build(k *Kernel, logger *zap.Logger) (kern.Kernel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out, err := build(k, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("kernel built", zap.String("type", k.Type))
	return out, nil
}

func build(k *Kernel, logger *zap.Logger) (kern.Kernel, error) {
	switch k.Type {
	case "constant":
		return kern.NewConstant(valueOr(k.Variance, 1)), nil
	case "matern12":
		l, err := lengthscale(k)
		if err != nil {
			return nil, err
		}
		return kern.NewMatern12(valueOr(k.Variance, 1), l), nil
	case "matern32":
		l, err := lengthscale(k)
		if err != nil {
			return nil, err
		}
		return kern.NewMatern32(valueOr(k.Variance, 1), l), nil
	case "add":
		parts := make([]kern.Kernel, 0, len(k.Parts))
		for i := range k.Parts {
			part, err := build(&k.Parts[i], logger)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		sum, err := kern.NewAdd(parts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return sum, nil
	case "scale":
		return buildScale(k, logger)
	}
	return nil, fmt.Errorf("%w: unknown kernel type %q", ErrInvalidConfig, k.Type)
}

func buildScale(k *Kernel, logger *zap.Logger) (kern.Kernel, error) {
	if k.Base == nil {
		return nil, fmt.Errorf("%w: scale kernel without base", ErrInvalidConfig)
	}
	base, err := build(k.Base, logger)
	if err != nil {
		return nil, err
	}
	opts := []kern.ScaleOption{
		kern.WithBatchShape(k.BatchShape...),
		kern.WithLogger(logger),
	}
	if k.Constraint != nil {
		c, err := buildConstraint(k.Constraint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kern.WithOutputscaleConstraint(c))
	}
	if k.Prior != nil {
		p, err := buildPrior(k.Prior)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kern.WithOutputscalePrior(p))
	}
	scaled, err := kern.NewScale(base, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if k.Outputscale != nil {
		if err := scaled.SetOutputscaleValue(*k.Outputscale); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	logger.Debug("scale kernel configured",
		zap.Ints("batch_shape", k.BatchShape),
		zap.Stringer("constraint", scaled.Constraint()))
	return scaled, nil
}

func buildConstraint(c *Constraint) (constraints.Constraint, error) {
	var opts []constraints.Option
	switch c.Transform {
	case "", "softplus":
	case "exp":
		opts = append(opts, constraints.WithTransform(constraints.Exp))
	default:
		return nil, fmt.Errorf("%w: unknown transform %q", ErrInvalidConfig, c.Transform)
	}

	lower, upper := math.Inf(-1), math.Inf(1)
	switch c.Type {
	case "positive":
		lower = 0
	case "greater_than":
		if c.Lower == nil {
			return nil, fmt.Errorf("%w: greater_than needs lower", ErrInvalidConfig)
		}
		lower = *c.Lower
	case "less_than":
		if c.Upper == nil {
			return nil, fmt.Errorf("%w: less_than needs upper", ErrInvalidConfig)
		}
		upper = *c.Upper
	case "interval":
		if c.Lower == nil || c.Upper == nil {
			return nil, fmt.Errorf("%w: interval needs lower and upper", ErrInvalidConfig)
		}
		lower, upper = *c.Lower, *c.Upper
	default:
		return nil, fmt.Errorf("%w: unknown constraint type %q", ErrInvalidConfig, c.Type)
	}
	out, err := constraints.NewInterval(lower, upper, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return out, nil
}

func buildPrior(p *Prior) (params.Prior, error) {
	switch p.Type {
	case "gamma":
		if p.Concentration <= 0 || p.Rate <= 0 {
			return nil, fmt.Errorf("%w: gamma prior needs positive concentration and rate", ErrInvalidConfig)
		}
		return distuv.Gamma{Alpha: p.Concentration, Beta: p.Rate}, nil
	case "lognormal":
		if p.Scale <= 0 {
			return nil, fmt.Errorf("%w: lognormal prior needs positive scale", ErrInvalidConfig)
		}
		return distuv.LogNormal{Mu: p.Loc, Sigma: p.Scale}, nil
	case "normal":
		if p.Scale <= 0 {
			return nil, fmt.Errorf("%w: normal prior needs positive scale", ErrInvalidConfig)
		}
		return distuv.Normal{Mu: p.Loc, Sigma: p.Scale}, nil
	case "uniform":
		if p.Low >= p.High {
			return nil, fmt.Errorf("%w: uniform prior needs low < high", ErrInvalidConfig)
		}
		return distuv.Uniform{Min: p.Low, Max: p.High}, nil
	}
	return nil, fmt.Errorf("%w: unknown prior type %q", ErrInvalidConfig, p.Type)
}

func lengthscale(k *Kernel) (float64, error) {
	l := valueOr(k.Lengthscale, 1)
	if l <= 0 {
		return 0, fmt.Errorf("%w: %s lengthscale %v", ErrInvalidConfig, k.Type, l)
	}
	return l, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
