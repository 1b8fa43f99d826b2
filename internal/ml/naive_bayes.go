package ml

import (
	"fmt"
	"math"
	"sort"
)

// MultinomialNB is a naive Bayes classifier for count features
type MultinomialNB struct {
	// Additive (Laplace) smoothing
	Alpha float64

	classes  []int
	logPrior []float64
	logProb  [][]float64
}

// NewMultinomialNB creates an unfitted classifier; alpha <= 0 means 1
func NewMultinomialNB(alpha float64) *MultinomialNB {
	if alpha <= 0 {
		alpha = 1
	}
	return &MultinomialNB{Alpha: alpha}
}

// Fit learns class priors and per-class feature log probabilities
func (nb *MultinomialNB) Fit(x [][]float64, y []int) error {
	if len(x) == 0 {
		return ErrNoDocuments
	}
	if len(x) != len(y) {
		return fmt.Errorf("got %d samples and %d labels", len(x), len(y))
	}
	width := len(x[0])

	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	classes := make([]int, 0, len(counts))
	for label := range counts {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	position := make(map[int]int, len(classes))
	for i, c := range classes {
		position[c] = i
	}

	featureCounts := make([][]float64, len(classes))
	for i := range featureCounts {
		featureCounts[i] = make([]float64, width)
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		fc := featureCounts[position[y[i]]]
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("negative feature value at row %d", i)
			}
			fc[j] += v
		}
	}

	nb.classes = classes
	nb.logPrior = make([]float64, len(classes))
	nb.logProb = make([][]float64, len(classes))
	for i, c := range classes {
		nb.logPrior[i] = math.Log(float64(counts[c]) / float64(len(y)))

		var total float64
		for _, v := range featureCounts[i] {
			total += v + nb.Alpha
		}
		nb.logProb[i] = make([]float64, width)
		for j, v := range featureCounts[i] {
			nb.logProb[i][j] = math.Log((v + nb.Alpha) / total)
		}
	}
	return nil
}

// Predict returns the most likely class; ties go to the smallest label
func (nb *MultinomialNB) Predict(row []float64) (int, error) {
	if nb.classes == nil {
		return 0, ErrNotFitted
	}
	if len(row) != len(nb.logProb[0]) {
		return 0, fmt.Errorf("sample has %d features, want %d", len(row), len(nb.logProb[0]))
	}

	best := 0
	bestScore := math.Inf(-1)
	for i := range nb.classes {
		score := nb.logPrior[i]
		for j, v := range row {
			if v != 0 {
				score += v * nb.logProb[i][j]
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return nb.classes[best], nil
}

// Classes returns the labels seen during Fit in ascending order
func (nb *MultinomialNB) Classes() []int {
	return append([]int(nil), nb.classes...)
}
