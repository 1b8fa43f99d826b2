package ml

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrFactorization is returned when the SVD does not converge
var ErrFactorization = errors.New("svd factorization failed")

// FeasibleComponents returns how many SVD components can be kept for a
// corpus of the given shape: at most limit, at most vocab-1 and never more
// than the number of documents. It returns 0 when no reduction is possible.
func FeasibleComponents(limit, vocab, docs int) int {
	k := limit
	if vocab-1 < k {
		k = vocab - 1
	}
	if docs < k {
		k = docs
	}
	if k < 0 {
		return 0
	}
	return k
}

// TruncatedSVD projects rows onto the top right singular vectors
type TruncatedSVD struct {
	Components int

	basis *mat.Dense // features x components
}

// NewTruncatedSVD creates a reducer keeping the given number of components
func NewTruncatedSVD(components int) *TruncatedSVD {
	return &TruncatedSVD{Components: components}
}

// Fit computes the projection basis of x
func (s *TruncatedSVD) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	k := s.Components
	if k < 1 {
		return errors.New("svd needs at least one component")
	}
	if r := min(rows, cols); k > r {
		k = r
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return ErrFactorization
	}

	var v mat.Dense
	svd.VTo(&v)

	basis := mat.NewDense(cols, k, nil)
	basis.Copy(v.Slice(0, cols, 0, k))
	s.basis = basis
	s.Components = k
	return nil
}

// Transform projects x into the reduced space
func (s *TruncatedSVD) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.basis == nil {
		return nil, ErrNotFitted
	}
	var out mat.Dense
	out.Mul(x, s.basis)
	return &out, nil
}

// FitTransform fits the basis on x and projects it
func (s *TruncatedSVD) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
