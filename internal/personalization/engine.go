package personalization

import (
	"fmt"
	"time"

	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/pkg/models"
	"github.com/rs/zerolog"
)

// Stage names used in logs and metrics
const (
	StageContent       = "content"
	StageCollaborative = "collaborative"
	StageHybrid        = "hybrid"
	StageDifficulty    = "difficulty"
	StageLearningStyle = "learning_style"
	StageAdaptation    = "adaptation"
)

// FallbackContentScore is used for every course when content scoring fails
const FallbackContentScore = 0.5

// Config holds engine settings
type Config struct {
	ComponentCap      int
	CollaborativeTopK int
	Weights           HybridWeights
	// DefaultCount is used when a caller asks for n <= 0
	DefaultCount int
	MaxCount     int
	Difficulty   DifficultyConfig
	Style        StyleConfig
	// Now defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		ComponentCap:      DefaultComponentCap,
		CollaborativeTopK: DefaultCollaborativeTopK,
		Weights:           DefaultHybridWeights(),
		DefaultCount:      5,
		MaxCount:          50,
		Now:               time.Now,
	}
}

// Engine runs the personalization pipeline. Every stage is guarded: an
// error or panic is logged, counted and replaced with the stage's fallback,
// so callers always get a usable answer. The fitted models are read-only
// after Init and the engine is safe for concurrent use.
type Engine struct {
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Registry

	content       ContentRanker
	collaborative CollaborativeRanker
	difficulty    *DifficultyPredictor
	style         *StyleClassifier
}

// New creates an engine. Call Init before serving requests.
func New(cfg Config, logger zerolog.Logger, reg *metrics.Registry) *Engine {
	def := DefaultConfig()
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = def.DefaultCount
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = def.MaxCount
	}
	if cfg.Weights == (HybridWeights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}

	return &Engine{
		cfg:           cfg,
		log:           logger.With().Str("component", "personalization").Logger(),
		metrics:       reg,
		content:       ContentRanker{ComponentCap: cfg.ComponentCap},
		collaborative: CollaborativeRanker{TopK: cfg.CollaborativeTopK},
	}
}

// Init fits the difficulty and learning style models
func (e *Engine) Init() error {
	difficulty, err := NewDifficultyPredictor(e.cfg.Difficulty)
	if err != nil {
		return err
	}
	style, err := NewStyleClassifier(e.cfg.Style)
	if err != nil {
		return err
	}

	e.difficulty = difficulty
	e.style = style
	e.log.Info().
		Int("difficulty_samples", len(orDefault(e.cfg.Difficulty.Samples, DefaultDifficultySamples))).
		Int("style_samples", len(orDefault(e.cfg.Style.Samples, DefaultStyleSamples))).
		Msg("personalization models fitted")
	return nil
}

// Count clamps a requested recommendation count
func (e *Engine) Count(n int) int {
	if n <= 0 {
		return e.cfg.DefaultCount
	}
	if n > e.cfg.MaxCount {
		return e.cfg.MaxCount
	}
	return n
}

// ContentScores returns one content score per catalog course
func (e *Engine) ContentScores(learner Learner, catalog []models.Course) []float64 {
	var scores []float64
	ok := e.guard(StageContent, func() error {
		var err error
		scores, err = e.content.Scores(catalog, learner.History())
		return err
	})
	if !ok {
		scores = make([]float64, len(catalog))
		for i := range scores {
			scores[i] = FallbackContentScore
		}
	}
	return scores
}

// CollaborativeTop returns the collaborative top-K courses for the learner
func (e *Engine) CollaborativeTop(learner Learner, catalog []models.Course, roster []Learner) []ScoredCourse {
	var top []ScoredCourse
	ok := e.guard(StageCollaborative, func() error {
		var err error
		top, err = e.collaborative.Top(learner, catalog, roster)
		return err
	})
	if !ok {
		return []ScoredCourse{}
	}
	return top
}

// Recommend returns up to n courses the learner has not taken yet
func (e *Engine) Recommend(learner Learner, catalog []models.Course, roster []Learner, n int) []Recommendation {
	n = e.Count(n)
	content := e.ContentScores(learner, catalog)
	top := e.CollaborativeTop(learner, catalog, roster)

	var recs []Recommendation
	ok := e.guard(StageHybrid, func() error {
		var err error
		recs, err = RankHybrid(catalog, content, top, learner.History(), e.cfg.Weights, n)
		return err
	})
	if !ok {
		return []Recommendation{}
	}
	return recs
}

// PredictDifficulty returns the level content should be served at
func (e *Engine) PredictDifficulty(learner Learner, courseID int64) Difficulty {
	level := DifficultyMedium
	e.guard(StageDifficulty, func() error {
		d, err := e.difficulty.Predict(Features(learner, courseID, e.cfg.Now()))
		if err != nil {
			return err
		}
		level = d
		return nil
	})
	return level
}

// AssessLearningStyle classifies questionnaire answers
func (e *Engine) AssessLearningStyle(responses []string) LearningStyle {
	style := StyleVisual
	e.guard(StageLearningStyle, func() error {
		s, err := e.style.Classify(responses)
		if err != nil {
			return err
		}
		style = s
		return nil
	})
	return style
}

// PersonalizedContent adapts a course to the learner's style and level
func (e *Engine) PersonalizedContent(learner Learner, course models.Course) Personalized {
	style := learner.LearningStyle
	if _, ok := ParseLearningStyle(string(style)); !ok {
		style = StyleVisual
	}
	difficulty := e.PredictDifficulty(learner, course.ID)

	out := Personalized{
		CourseID:      course.ID,
		Difficulty:    difficulty,
		LearningStyle: style,
	}
	ok := e.guard(StageAdaptation, func() error {
		out.Content = AdaptedContent(style, difficulty)
		out.Resources = SuggestResources(style, difficulty, course)
		return nil
	})
	if !ok {
		out.Content = AdaptedContent(StyleVisual, DifficultyMedium)
		out.Resources = []string{}
	}
	return out
}

// guard runs one stage and reports whether it succeeded
func (e *Engine) guard(stage string, fn func() error) (ok bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.fallback(stage, fmt.Errorf("panic: %v", r))
			ok = false
		}
		e.metrics.ObserveStage(stage, time.Since(start))
	}()

	if err := fn(); err != nil {
		e.fallback(stage, err)
		return false
	}
	return true
}

func (e *Engine) fallback(stage string, err error) {
	e.metrics.StageFallback(stage)
	e.log.Warn().Err(err).Str("stage", stage).Msg("personalization stage failed, using fallback")
}

func orDefault[T any](v, def []T) []T {
	if len(v) == 0 {
		return def
	}
	return v
}
