package database

import (
	"context"
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

// QuizRepository handles quizzes and their results
type QuizRepository struct{}

// NewQuizRepository creates a new repository instance
func NewQuizRepository() *QuizRepository {
	return &QuizRepository{}
}

// Create inserts a quiz with its questions
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.CreatedAt = now()
	id, err := insert(ctx,
		"INSERT INTO quizzes (course_id, title, questions, created_at) VALUES (?, ?, ?, ?)",
		quiz.CourseID, quiz.Title, quiz.Questions, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.ID = id
	return nil
}

// GetByID returns a quiz by ID
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	err := DB.GetContext(ctx, &quiz,
		DB.Rebind("SELECT id, course_id, title, questions, created_at FROM quizzes WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

// GetByCourse returns the quizzes of a course
func (r *QuizRepository) GetByCourse(ctx context.Context, courseID int64) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	err := DB.SelectContext(ctx, &quizzes,
		DB.Rebind("SELECT id, course_id, title, questions, created_at FROM quizzes WHERE course_id = ? ORDER BY id"), courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	return quizzes, nil
}

// SaveResult stores a graded attempt
func (r *QuizRepository) SaveResult(ctx context.Context, result *models.QuizResult) error {
	result.CreatedAt = now()
	id, err := insert(ctx,
		"INSERT INTO quiz_results (user_id, quiz_id, score, created_at) VALUES (?, ?, ?, ?)",
		result.UserID, result.QuizID, result.Score, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	result.ID = id
	return nil
}

// ResultsByUser returns a user's attempts with the course of each quiz
func (r *QuizRepository) ResultsByUser(ctx context.Context, userID int64) ([]models.QuizResult, error) {
	results := []models.QuizResult{}
	err := DB.SelectContext(ctx, &results, DB.Rebind(`
		SELECT qr.id, qr.user_id, qr.quiz_id, q.course_id, qr.score, qr.created_at
		FROM quiz_results qr
		JOIN quizzes q ON q.id = qr.quiz_id
		WHERE qr.user_id = ?
		ORDER BY qr.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}

// AveragesByUser returns the user's average score per quiz
func (r *QuizRepository) AveragesByUser(ctx context.Context, userID int64) ([]models.QuizAverage, error) {
	averages := []models.QuizAverage{}
	err := DB.SelectContext(ctx, &averages, DB.Rebind(`
		SELECT q.title AS quiz_title, AVG(qr.score) AS average_score
		FROM quiz_results qr
		JOIN quizzes q ON q.id = qr.quiz_id
		WHERE qr.user_id = ?
		GROUP BY q.id, q.title
		ORDER BY q.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz averages: %w", err)
	}
	return averages, nil
}
