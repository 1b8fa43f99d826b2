package personalization

import (
	"fmt"

	"github.com/example/learnpath/internal/ml"
	"github.com/example/learnpath/pkg/models"
	"gonum.org/v1/gonum/mat"
)

// DefaultComponentCap bounds the latent dimensions of the content ranker
const DefaultComponentCap = 100

// ContentRanker scores catalog courses by text similarity to the courses a
// learner already has
type ContentRanker struct {
	ComponentCap int
}

// Scores returns one score per catalog course, in catalog order. A learner
// without history gets all zeros.
func (r ContentRanker) Scores(catalog []models.Course, history map[int64]bool) ([]float64, error) {
	scores := make([]float64, len(catalog))

	var historyRows []int
	for i := range catalog {
		if history[catalog[i].ID] {
			historyRows = append(historyRows, i)
		}
	}
	if len(historyRows) == 0 {
		return scores, nil
	}

	vectors, err := r.vectors(catalog)
	if err != nil {
		return nil, err
	}

	profile := ml.MeanRow(vectors, historyRows)
	for i := range catalog {
		scores[i] = ml.Cosine(profile, vectors.RawRowView(i))
	}
	return scores, nil
}

func (r ContentRanker) vectors(catalog []models.Course) (*mat.Dense, error) {
	docs := make([]string, len(catalog))
	for i := range catalog {
		docs[i] = catalog[i].Text()
	}

	tfidf, err := ml.NewTfidfVectorizer().FitTransform(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize catalog: %w", err)
	}

	limit := r.ComponentCap
	if limit <= 0 {
		limit = DefaultComponentCap
	}
	_, vocab := tfidf.Dims()
	k := ml.FeasibleComponents(limit, vocab, len(docs))
	if k < 1 {
		return tfidf, nil
	}

	reduced, err := ml.NewTruncatedSVD(k).FitTransform(tfidf)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce catalog vectors: %w", err)
	}
	return reduced, nil
}
