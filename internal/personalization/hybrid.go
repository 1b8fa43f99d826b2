package personalization

import (
	"fmt"
	"sort"

	"github.com/example/learnpath/pkg/models"
)

// HybridWeights sets how content and collaborative signals are blended
type HybridWeights struct {
	Content       float64
	Collaborative float64
}

// DefaultHybridWeights weighs content similarity over collaborative picks
func DefaultHybridWeights() HybridWeights {
	return HybridWeights{Content: 0.7, Collaborative: 0.3}
}

// Score blends a content score with collaborative top-K membership
func (w HybridWeights) Score(content float64, collaborative bool) float64 {
	score := w.Content * content
	if collaborative {
		score += w.Collaborative
	}
	return score
}

// RankHybrid returns up to n catalog courses outside the learner's history,
// best hybrid score first. content holds one score per catalog course.
func RankHybrid(catalog []models.Course, content []float64, collaborative []ScoredCourse, history map[int64]bool, w HybridWeights, n int) ([]Recommendation, error) {
	if len(content) != len(catalog) {
		return nil, fmt.Errorf("got %d content scores for %d courses", len(content), len(catalog))
	}

	picked := make(map[int64]bool, len(collaborative))
	for _, c := range collaborative {
		picked[c.CourseID] = true
	}

	recs := make([]Recommendation, 0, len(catalog))
	for i, course := range catalog {
		if history[course.ID] {
			continue
		}
		recs = append(recs, Recommendation{
			Course:        course,
			Score:         w.Score(content[i], picked[course.ID]),
			ContentScore:  content[i],
			Collaborative: picked[course.ID],
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if n < 0 {
		n = 0
	}
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}
