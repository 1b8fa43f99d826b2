// Package personalization recommends courses and adapts course content to a
// learner. It blends a content-similarity ranking with an item-based
// collaborative score, predicts a difficulty level from engagement features
// and classifies learning styles from questionnaire answers.
package personalization

import (
	"time"

	"github.com/example/learnpath/pkg/models"
)

// LearningStyle is how a learner prefers to take in material
type LearningStyle string

// Learning styles in tie-break order
const (
	StyleVisual         LearningStyle = "visual"
	StyleAuditory       LearningStyle = "auditory"
	StyleKinesthetic    LearningStyle = "kinesthetic"
	StyleReadingWriting LearningStyle = "reading/writing"
)

// LearningStyles lists every style in tie-break order
var LearningStyles = []LearningStyle{StyleVisual, StyleAuditory, StyleKinesthetic, StyleReadingWriting}

// ParseLearningStyle converts a stored value into a LearningStyle
func ParseLearningStyle(s string) (LearningStyle, bool) {
	for _, style := range LearningStyles {
		if string(style) == s {
			return style, true
		}
	}
	return "", false
}

// Difficulty is the level content is adapted to
type Difficulty string

// Difficulty levels
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuizScore is one graded quiz attempt
type QuizScore struct {
	CourseID int64
	QuizID   int64
	Score    float64
}

// Learner is the per-request view of a user the engine works on
type Learner struct {
	ID                int64
	LearningStyle     LearningStyle
	LastLogin         time.Time
	TotalStudyMinutes int
	// Progress by course id; a key present with value 0 still counts as history
	Progress   map[int64]float64
	QuizScores []QuizScore
}

// History returns the courses the learner has a progress row for
func (l Learner) History() map[int64]bool {
	out := make(map[int64]bool, len(l.Progress))
	for id := range l.Progress {
		out[id] = true
	}
	return out
}

// Recommendation is one ranked course
type Recommendation struct {
	Course        models.Course `json:"course"`
	Score         float64       `json:"score"`
	ContentScore  float64       `json:"content_score"`
	Collaborative bool          `json:"collaborative"`
}

// ScoredCourse is a course id with a collaborative score
type ScoredCourse struct {
	CourseID int64   `json:"course_id"`
	Score    float64 `json:"score"`
}

// Personalized is the adapted view of one course for one learner
type Personalized struct {
	CourseID      int64         `json:"course_id"`
	Difficulty    Difficulty    `json:"difficulty"`
	LearningStyle LearningStyle `json:"learning_style"`
	Content       string        `json:"content"`
	Resources     []string      `json:"resources"`
}
