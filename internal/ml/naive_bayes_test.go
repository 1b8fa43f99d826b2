package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultinomialNB(t *testing.T) {
	nb := NewMultinomialNB(0)
	require.NoError(t, nb.Fit([][]float64{{2, 0}, {0, 2}}, []int{0, 1}))
	assert.Equal(t, []int{0, 1}, nb.Classes())

	tests := []struct {
		name string
		row  []float64
		want int
	}{
		{"first class features", []float64{3, 0}, 0},
		{"second class features", []float64{0, 1}, 1},
		{"no evidence goes to smallest label", []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nb.Predict(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultinomialNBErrors(t *testing.T) {
	nb := NewMultinomialNB(1)

	_, err := nb.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, nb.Fit(nil, nil), ErrNoDocuments)
	assert.Error(t, nb.Fit([][]float64{{1}}, []int{0, 1}))
	assert.Error(t, nb.Fit([][]float64{{-1}}, []int{0}))
}
