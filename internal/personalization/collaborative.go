package personalization

import (
	"math"
	"sort"

	"github.com/example/learnpath/internal/ml"
	"github.com/example/learnpath/pkg/models"
	"gonum.org/v1/gonum/mat"
)

// DefaultCollaborativeTopK is how many collaborative picks feed the hybrid score
const DefaultCollaborativeTopK = 5

// CollaborativeRanker scores courses a learner has not started from how
// similar they are, across all learners' progress, to the courses the
// learner did start
type CollaborativeRanker struct {
	TopK int
}

// ProgressMatrix builds the learners x courses progress matrix. The learner
// is always row 0; roster entries with the learner's id are skipped.
func ProgressMatrix(learner Learner, catalog []models.Course, roster []Learner) *mat.Dense {
	rows := []Learner{learner}
	for _, other := range roster {
		if other.ID != learner.ID {
			rows = append(rows, other)
		}
	}

	m := mat.NewDense(len(rows), len(catalog), nil)
	for i, l := range rows {
		for j := range catalog {
			m.Set(i, j, l.Progress[catalog[j].ID])
		}
	}
	return m
}

// ItemScores scores every course the learner at row has not started (value
// 0) as sum(sim*p) / sum(|sim|). Started courses get NaN. A zero
// denominator gives 0.
func ItemScores(progress, similarity *mat.Dense, row int) []float64 {
	_, courses := progress.Dims()
	scores := make([]float64, courses)
	for c := 0; c < courses; c++ {
		if progress.At(row, c) != 0 {
			scores[c] = math.NaN()
			continue
		}
		var num, den float64
		for j := 0; j < courses; j++ {
			sim := similarity.At(c, j)
			num += sim * progress.At(row, j)
			den += math.Abs(sim)
		}
		if den > 0 {
			scores[c] = num / den
		}
	}
	return scores
}

// Top returns the best TopK unstarted courses, ties kept in catalog order
func (r CollaborativeRanker) Top(learner Learner, catalog []models.Course, roster []Learner) ([]ScoredCourse, error) {
	if len(catalog) == 0 {
		return []ScoredCourse{}, nil
	}

	progress := ProgressMatrix(learner, catalog, roster)
	var byCourse mat.Dense
	byCourse.CloneFrom(progress.T())
	similarity := ml.CosineMatrix(&byCourse)

	scores := ItemScores(progress, similarity, 0)
	out := make([]ScoredCourse, 0, len(catalog))
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		out = append(out, ScoredCourse{CourseID: catalog[i].ID, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	k := r.TopK
	if k <= 0 {
		k = DefaultCollaborativeTopK
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
