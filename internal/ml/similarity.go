package ml

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cosine returns the cosine similarity of a and b, or 0 when either has zero norm
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// CosineMatrix returns the pairwise cosine similarity of the rows of x
func CosineMatrix(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			sim := Cosine(x.RawRowView(i), x.RawRowView(j))
			out.Set(i, j, sim)
			out.Set(j, i, sim)
		}
	}
	return out
}

// MeanRow averages the given rows of x
func MeanRow(x *mat.Dense, rows []int) []float64 {
	_, cols := x.Dims()
	mean := make([]float64, cols)
	if len(rows) == 0 {
		return mean
	}
	for _, i := range rows {
		floats.Add(mean, x.RawRowView(i))
	}
	floats.Scale(1/float64(len(rows)), mean)
	return mean
}
