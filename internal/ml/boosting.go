package ml

import (
	"fmt"
	"sort"
)

// GBRConfig configures a GradientBoostingRegressor
type GBRConfig struct {
	// Number of boosting stages
	Estimators int
	// Shrinkage applied to every tree
	LearningRate float64
	// Maximum depth of each regression tree
	MaxDepth int
	// Minimum samples required to split a node
	MinSamplesSplit int
	// Minimum samples in a leaf
	MinSamplesLeaf int
}

// DefaultGBRConfig returns the usual boosting settings
func DefaultGBRConfig() GBRConfig {
	return GBRConfig{
		Estimators:      100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// GradientBoostingRegressor fits an additive model of regression trees on the
// residuals of a squared loss. Split search is exhaustive, so fitting is
// deterministic for a given training set.
type GradientBoostingRegressor struct {
	cfg      GBRConfig
	init     float64
	trees    []*treeNode
	features int
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// NewGradientBoostingRegressor creates an unfitted regressor. Zero config
// values are replaced with defaults.
func NewGradientBoostingRegressor(cfg GBRConfig) *GradientBoostingRegressor {
	def := DefaultGBRConfig()
	if cfg.Estimators <= 0 {
		cfg.Estimators = def.Estimators
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = def.MinSamplesSplit
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = def.MinSamplesLeaf
	}
	return &GradientBoostingRegressor{cfg: cfg}
}

// Fit trains the ensemble on samples x with targets y
func (g *GradientBoostingRegressor) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return ErrNoDocuments
	}
	if len(x) != len(y) {
		return fmt.Errorf("got %d samples and %d targets", len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	g.init = sum / float64(len(y))
	g.features = width
	g.trees = make([]*treeNode, 0, g.cfg.Estimators)

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.init
	}
	residual := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	for stage := 0; stage < g.cfg.Estimators; stage++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree := g.buildTree(x, residual, idx, 0)
		g.trees = append(g.trees, tree)
		for i, row := range x {
			pred[i] += g.cfg.LearningRate * tree.predict(row)
		}
	}
	return nil
}

// Predict returns the regression output for one sample
func (g *GradientBoostingRegressor) Predict(row []float64) (float64, error) {
	if g.trees == nil {
		return 0, ErrNotFitted
	}
	if len(row) != g.features {
		return 0, fmt.Errorf("sample has %d features, want %d", len(row), g.features)
	}
	out := g.init
	for _, tree := range g.trees {
		out += g.cfg.LearningRate * tree.predict(row)
	}
	return out, nil
}

// Stages returns the number of fitted trees
func (g *GradientBoostingRegressor) Stages() int {
	return len(g.trees)
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func (g *GradientBoostingRegressor) buildTree(x [][]float64, target []float64, idx []int, depth int) *treeNode {
	mean, sse := meanSSE(target, idx)
	if depth >= g.cfg.MaxDepth || len(idx) < g.cfg.MinSamplesSplit || sse <= 0 {
		return &treeNode{leaf: true, value: mean}
	}

	split, ok := g.bestSplit(x, target, idx, sse)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][split.feature] <= split.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   split.feature,
		threshold: split.threshold,
		left:      g.buildTree(x, target, left, depth+1),
		right:     g.buildTree(x, target, right, depth+1),
	}
}

type split struct {
	feature   int
	threshold float64
}

// bestSplit picks the (feature, threshold) pair with the lowest summed SSE.
// The first best candidate in feature/threshold order wins ties.
func (g *GradientBoostingRegressor) bestSplit(x [][]float64, target []float64, idx []int, parentSSE float64) (split, bool) {
	best := split{}
	bestSSE := parentSSE
	found := false

	sorted := make([]int, len(idx))
	for f := 0; f < g.features; f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return x[sorted[a]][f] < x[sorted[b]][f]
		})

		for k := g.cfg.MinSamplesLeaf; k <= len(sorted)-g.cfg.MinSamplesLeaf; k++ {
			lo := x[sorted[k-1]][f]
			hi := x[sorted[k]][f]
			if lo == hi {
				continue
			}
			_, leftSSE := meanSSE(target, sorted[:k])
			_, rightSSE := meanSSE(target, sorted[k:])
			if total := leftSSE + rightSSE; total < bestSSE {
				bestSSE = total
				best = split{feature: f, threshold: (lo + hi) / 2}
				found = true
			}
		}
	}
	return best, found
}

func meanSSE(target []float64, idx []int) (float64, float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	var sum float64
	for _, i := range idx {
		sum += target[i]
	}
	mean := sum / float64(len(idx))
	var sse float64
	for _, i := range idx {
		d := target[i] - mean
		sse += d * d
	}
	return mean, sse
}
