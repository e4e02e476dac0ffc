package lazy

import (
	"gonum.org/v1/gonum/mat"
)

// Scale returns a matrix reading alpha*m.At(i, j) on access. Nested scalings
// collapse into one and symmetric inputs stay mat.Symmetric.
func Scale(alpha float64, m mat.Matrix) mat.Matrix {
	switch m := m.(type) {
	case *scaled:
		return Scale(alpha*m.alpha, m.m)
	case *scaledSym:
		return Scale(alpha*m.alpha, m.m)
	case mat.Symmetric:
		return &scaledSym{scaled{alpha: alpha, m: m}}
	}
	return &scaled{alpha: alpha, m: m}
}

type scaled struct {
	alpha float64
	m     mat.Matrix
}

func (s *scaled) Dims() (r, c int) {
	return s.m.Dims()
}

func (s *scaled) At(i, j int) float64 {
	return s.alpha * s.m.At(i, j)
}

func (s *scaled) T() mat.Matrix {
	return mat.Transpose{Matrix: s}
}

type scaledSym struct {
	scaled
}

func (s *scaledSym) Symmetric() int {
	r, _ := s.m.Dims()
	return r
}

func (s *scaledSym) T() mat.Matrix {
	return s
}
