package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fr830/gpytorch/kern"
	"github.com/fr830/gpytorch/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const scaledMatern = `
type: scale
outputscale: 2.0
batch_shape: [3]
constraint: {type: positive, transform: exp}
prior: {type: gamma, concentration: 2, rate: 0.15}
base:
  type: matern32
  variance: 1
  lengthscale: 0.5
`

func TestBuildScale(t *testing.T) {
	cfg, err := Parse([]byte(scaledMatern))
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)

	k, err := Build(cfg, zap.New(core))
	require.NoError(t, err)
	scaled, ok := k.(*kern.Scale)
	require.True(t, ok)

	assert.Equal(t, tensor.Shape{3}, scaled.BatchShape())
	for _, v := range scaled.Outputscale().Data() {
		assert.InDelta(t, 2.0, v, 1e-12)
	}
	// Exp maps raw log values directly.
	assert.InDelta(t, math.Log(2), scaled.RawOutputscale().Tensor().At(0), 1e-12)
	assert.Len(t, scaled.Params().Priors(), 1)
	assert.IsType(t, &kern.Matern32{}, scaled.Base())
	assert.Equal(t, 1, logs.FilterMessage("kernel built").Len())
	assert.Equal(t, 1, logs.FilterMessage("scale kernel configured").Len())
}

func TestBuildAdd(t *testing.T) {
	cfg, err := Parse([]byte(`
type: add
parts:
  - type: constant
    variance: 0.5
  - type: scale
    constraint: {type: interval, lower: 0.1, upper: 10}
    base: {type: matern12, lengthscale: 2}
`))
	require.NoError(t, err)
	k, err := Build(cfg, nil)
	require.NoError(t, err)
	sum, ok := k.(*kern.Add)
	require.True(t, ok)
	require.Len(t, sum.Parts(), 2)

	scaled := sum.Parts()[1].(*kern.Scale)
	assert.Equal(t, 0.1, scaled.Constraint().LowerBound())
	assert.Equal(t, 10.0, scaled.Constraint().UpperBound())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scaledMatern), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scale", cfg.Type)
	require.NotNil(t, cfg.Base)
	assert.Equal(t, "matern32", cfg.Base.Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"unknown kernel":     "type: rbf",
		"scale without base": "type: scale",
		"bad lengthscale":    "type: matern12\nlengthscale: -1",
		"bad outputscale":    "type: scale\noutputscale: -2\nbase: {type: constant}",
		"bad transform":      "type: scale\nconstraint: {type: positive, transform: cube}\nbase: {type: constant}",
		"bad constraint":     "type: scale\nconstraint: {type: interval, lower: 3, upper: 1}\nbase: {type: constant}",
		"missing lower":      "type: scale\nconstraint: {type: greater_than}\nbase: {type: constant}",
		"bad prior":          "type: scale\nprior: {type: gamma, concentration: 0, rate: 1}\nbase: {type: constant}",
		"unknown prior":      "type: scale\nprior: {type: cauchy}\nbase: {type: constant}",
		"empty add":          "type: add",
		"bad batch shape":    "type: scale\nbatch_shape: [-1]\nbase: {type: constant}",
		"negative scale":     "type: scale\nconstraint: {type: less_than, upper: 5}\nbase: {type: constant}",
	}
	for name, doc := range cases {
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err, name)
		_, err = Build(cfg, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	_, err := Parse([]byte("type: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseUnknownKeys(t *testing.T) {
	docs := []string{
		"type: scale\noutputscle: 5\nbase: {type: constant}",
		"type: scale\nbase: {type: matern12, lenghtscale: 0.1}",
		"type: add\nparts:\n  - {type: constant, varience: 2}",
	}
	for _, doc := range docs {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidConfig, doc)
	}
}
