package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler removes the mean and scales to unit variance per feature
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler creates an unfitted scaler
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-feature mean and population standard deviation.
// Constant features get a scale of 1.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return ErrNoDocuments
	}
	width := len(x[0])
	mean := make([]float64, width)
	scale := make([]float64, width)
	column := make([]float64, len(x))

	for j := 0; j < width; j++ {
		for i, row := range x {
			if len(row) != width {
				return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
			}
			column[i] = row[j]
		}
		m, sd := stat.PopMeanStdDev(column, nil)
		mean[j] = m
		if sd == 0 {
			sd = 1
		}
		scale[j] = sd
	}

	s.mean = mean
	s.scale = scale
	return nil
}

// Transform scales one sample
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if s.mean == nil {
		return nil, ErrNotFitted
	}
	if len(row) != len(s.mean) {
		return nil, fmt.Errorf("sample has %d features, want %d", len(row), len(s.mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out, nil
}

// TransformAll scales every sample
func (s *StandardScaler) TransformAll(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
