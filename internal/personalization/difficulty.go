package personalization

import (
	"errors"
	"fmt"

	"github.com/example/learnpath/internal/ml"
)

// Bucket bounds of the predicted difficulty score
const (
	EasyUpperBound   = 0.4
	MediumUpperBound = 0.7
)

// ErrNotInitialized is returned by models used before Engine.Init
var ErrNotInitialized = errors.New("personalization models are not initialized")

// DifficultySample is one labelled training row of the difficulty model
type DifficultySample struct {
	Features FeatureVector
	Target   float64
}

// DefaultDifficultySamples is a placeholder training set: struggling,
// average, strong and excelling learners.
var DefaultDifficultySamples = []DifficultySample{
	{FeatureVector{Progress: 0.2, QuizPerformance: 0.3, Engagement: 0.2, TimeSpent: 0.1, LearningPace: 0.3}, 0.2},
	{FeatureVector{Progress: 0.5, QuizPerformance: 0.5, Engagement: 0.5, TimeSpent: 0.4, LearningPace: 0.5}, 0.5},
	{FeatureVector{Progress: 0.7, QuizPerformance: 0.8, Engagement: 0.6, TimeSpent: 0.6, LearningPace: 0.7}, 0.75},
	{FeatureVector{Progress: 0.9, QuizPerformance: 0.95, Engagement: 0.9, TimeSpent: 0.8, LearningPace: 0.9}, 0.9},
}

// DifficultyConfig configures the difficulty model
type DifficultyConfig struct {
	// Samples defaults to DefaultDifficultySamples
	Samples  []DifficultySample
	Boosting ml.GBRConfig
}

// BucketDifficulty maps a predicted score to a level; bounds belong to the
// lower bucket
func BucketDifficulty(score float64) Difficulty {
	switch {
	case score > MediumUpperBound:
		return DifficultyHard
	case score > EasyUpperBound:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// DifficultyPredictor scales feature vectors and runs them through a
// gradient boosted regressor. It is read-only once fitted.
type DifficultyPredictor struct {
	scaler *ml.StandardScaler
	model  *ml.GradientBoostingRegressor
}

// NewDifficultyPredictor fits the scaler and regressor on the configured samples
func NewDifficultyPredictor(cfg DifficultyConfig) (*DifficultyPredictor, error) {
	samples := cfg.Samples
	if len(samples) == 0 {
		samples = DefaultDifficultySamples
	}

	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.Features.Values()
		y[i] = s.Target
	}

	scaler := ml.NewStandardScaler()
	if err := scaler.Fit(x); err != nil {
		return nil, fmt.Errorf("failed to fit feature scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(x)
	if err != nil {
		return nil, fmt.Errorf("failed to scale training samples: %w", err)
	}

	model := ml.NewGradientBoostingRegressor(cfg.Boosting)
	if err := model.Fit(scaled, y); err != nil {
		return nil, fmt.Errorf("failed to fit difficulty model: %w", err)
	}
	return &DifficultyPredictor{scaler: scaler, model: model}, nil
}

// Score returns the raw predicted difficulty score
func (p *DifficultyPredictor) Score(f FeatureVector) (float64, error) {
	if p == nil {
		return 0, ErrNotInitialized
	}
	row, err := p.scaler.Transform(f.Values())
	if err != nil {
		return 0, err
	}
	return p.model.Predict(row)
}

// Predict returns the difficulty level for a feature vector
func (p *DifficultyPredictor) Predict(f FeatureVector) (Difficulty, error) {
	score, err := p.Score(f)
	if err != nil {
		return "", err
	}
	return BucketDifficulty(score), nil
}
