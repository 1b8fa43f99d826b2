package personalization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/learnpath/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// ErrNoResponses is returned when a questionnaire has no usable answer
var ErrNoResponses = errors.New("questionnaire has no answers")

// StyleSample is a labelled questionnaire answer
type StyleSample struct {
	Text  string
	Style LearningStyle
}

// DefaultStyleSamples trains the style classifier, two answers per style
var DefaultStyleSamples = []StyleSample{
	{"I prefer diagrams and charts", StyleVisual},
	{"Pictures and videos help me remember", StyleVisual},
	{"I learn best through lectures and discussions", StyleAuditory},
	{"Listening to podcasts and explanations works for me", StyleAuditory},
	{"Hands-on activities help me understand better", StyleKinesthetic},
	{"I like building things and practicing by doing", StyleKinesthetic},
	{"I enjoy reading textbooks and writing notes", StyleReadingWriting},
	{"Written articles and making lists help me study", StyleReadingWriting},
}

// StyleConfig configures the learning style classifier
type StyleConfig struct {
	// Samples defaults to DefaultStyleSamples
	Samples []StyleSample
	// Alpha is the Laplace smoothing, 1 when unset
	Alpha float64
}

// StyleClassifier predicts a learning style from free text answers. It is
// read-only once fitted.
type StyleClassifier struct {
	vectorizer *ml.CountVectorizer
	model      *ml.MultinomialNB
}

// NewStyleClassifier fits the vectorizer and classifier on the configured samples
func NewStyleClassifier(cfg StyleConfig) (*StyleClassifier, error) {
	samples := cfg.Samples
	if len(samples) == 0 {
		samples = DefaultStyleSamples
	}

	docs := make([]string, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		idx := styleIndex(s.Style)
		if idx < 0 {
			return nil, fmt.Errorf("sample %d has unknown learning style %q", i, s.Style)
		}
		docs[i] = s.Text
		labels[i] = idx
	}

	vectorizer := ml.NewCountVectorizer()
	counts, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize style samples: %w", err)
	}

	model := ml.NewMultinomialNB(cfg.Alpha)
	if err := model.Fit(matrixRows(counts), labels); err != nil {
		return nil, fmt.Errorf("failed to fit style classifier: %w", err)
	}
	return &StyleClassifier{vectorizer: vectorizer, model: model}, nil
}

// Classify predicts one style per answer and returns the majority. Ties go
// to the style listed first in LearningStyles. Blank answers are ignored.
func (c *StyleClassifier) Classify(responses []string) (LearningStyle, error) {
	if c == nil {
		return "", ErrNotInitialized
	}

	var answers []string
	for _, r := range responses {
		if strings.TrimSpace(r) != "" {
			answers = append(answers, r)
		}
	}
	if len(answers) == 0 {
		return "", ErrNoResponses
	}

	counts, err := c.vectorizer.Transform(answers)
	if err != nil {
		return "", err
	}

	votes := make([]int, len(LearningStyles))
	for _, row := range matrixRows(counts) {
		label, err := c.model.Predict(row)
		if err != nil {
			return "", err
		}
		votes[label]++
	}

	best := 0
	for i, v := range votes {
		if v > votes[best] {
			best = i
		}
	}
	return LearningStyles[best], nil
}

func styleIndex(s LearningStyle) int {
	for i, style := range LearningStyles {
		if style == s {
			return i
		}
	}
	return -1
}

func matrixRows(m *mat.Dense) [][]float64 {
	n, _ := m.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = m.RawRowView(i)
	}
	return rows
}
