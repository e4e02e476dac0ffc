package constraints

import (
	"math"
)

// Transform is a strictly increasing map from the reals onto the positive
// reals together with its inverse.
type Transform struct {
	Name    string
	Forward func(float64) float64
	Inverse func(float64) float64
}

var (
	Softplus = Transform{Name: "softplus", Forward: softplus, Inverse: invSoftplus}
	Exp      = Transform{Name: "exp", Forward: exp, Inverse: math.Log}
	Sigmoid  = Transform{Name: "sigmoid", Forward: sigmoid, Inverse: logit}
)

// Outputs are clamped away from zero so that underflow never yields a
// non-positive value.
func positive(v float64) float64 {
	return math.Max(v, math.SmallestNonzeroFloat64)
}

func softplus(x float64) float64 {
	if x > 20 {
		return x
	}
	return positive(math.Log1p(math.Exp(x)))
}

func invSoftplus(y float64) float64 {
	if y > 20 {
		return y
	}
	// log(exp(y) - 1) written to keep precision for small y.
	return y + math.Log(-math.Expm1(-y))
}

func exp(x float64) float64 {
	return positive(math.Exp(x))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func logit(p float64) float64 {
	return math.Log(p) - math.Log1p(-p)
}
