// Package quiz grades quiz submissions and stores the results.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/pkg/models"
)

// ErrInvalidQuiz is returned for quizzes that cannot be graded
var ErrInvalidQuiz = errors.New("invalid quiz")

// Module handles quiz grading and result storage
type Module struct {
	quizRepo *database.QuizRepository
}

// NewModule creates a new quiz module
func NewModule() *Module {
	return &Module{quizRepo: database.NewQuizRepository()}
}

// Grade is the outcome of one submission
type Grade struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Score   float64 `json:"score"`
	// Question ids answered correctly
	Passed []string `json:"passed"`
}

// Validate checks that every question can be graded
func Validate(q *models.Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	seen := make(map[string]bool, len(q.Questions))
	for i, question := range q.Questions {
		switch {
		case question.ID == "":
			return fmt.Errorf("%w: question %d has no id", ErrInvalidQuiz, i+1)
		case seen[question.ID]:
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuiz, question.ID)
		case question.Answer == "":
			return fmt.Errorf("%w: question %q has no answer", ErrInvalidQuiz, question.ID)
		}
		seen[question.ID] = true

		switch question.Type {
		case models.MultipleChoice:
			if !contains(question.Options, question.Answer) {
				return fmt.Errorf("%w: answer of %q is not one of its options", ErrInvalidQuiz, question.ID)
			}
		case models.TextInput:
		default:
			return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidQuiz, question.ID, question.Type)
		}
	}
	return nil
}

// GradeAnswers compares answers, keyed by question id, with the quiz.
// Multiple choice answers must match the option exactly, text answers are
// compared ignoring case and extra whitespace. A quiz without questions
// scores 0.
func GradeAnswers(q *models.Quiz, answers map[string]string) Grade {
	g := Grade{Total: len(q.Questions), Passed: []string{}}
	for _, question := range q.Questions {
		given, ok := answers[question.ID]
		if !ok {
			continue
		}
		if isCorrect(question, given) {
			g.Correct++
			g.Passed = append(g.Passed, question.ID)
		}
	}
	if g.Total > 0 {
		g.Score = float64(g.Correct) / float64(g.Total) * 100
	}
	return g
}

func isCorrect(q models.Question, given string) bool {
	if q.Type == models.TextInput {
		return normalizeText(given) == normalizeText(q.Answer)
	}
	return given == q.Answer
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Submit grades answers for a stored quiz and records the result
func (m *Module) Submit(ctx context.Context, userID, quizID int64, answers map[string]string) (*models.QuizResult, Grade, error) {
	q, err := m.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, Grade{}, err
	}

	grade := GradeAnswers(q, answers)
	result := &models.QuizResult{
		UserID:   userID,
		QuizID:   q.ID,
		CourseID: q.CourseID,
		Score:    grade.Score,
	}
	if err := m.quizRepo.SaveResult(ctx, result); err != nil {
		return nil, Grade{}, err
	}
	return result, grade, nil
}

// ForLearner returns a copy of the quiz without answers and with shuffled
// multiple choice options
func ForLearner(q models.Quiz, rnd *rand.Rand) models.Quiz {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	out := q
	out.Questions = make(models.Questions, len(q.Questions))
	for i, question := range q.Questions {
		question.Answer = ""
		if len(question.Options) > 0 {
			options := append([]string(nil), question.Options...)
			rnd.Shuffle(len(options), func(i, j int) {
				options[i], options[j] = options[j], options[i]
			})
			question.Options = options
		}
		out.Questions[i] = question
	}
	return out
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
