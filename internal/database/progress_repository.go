package database

import (
	"context"
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

// ProgressRepository handles the per-course progress of users
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// Upsert stores the progress of a user on a course, clamped to [0,100]
func (r *ProgressRepository) Upsert(ctx context.Context, userID, courseID int64, progress float64) (*models.UserCourse, error) {
	uc := &models.UserCourse{
		UserID:    userID,
		CourseID:  courseID,
		Progress:  models.ClampProgress(progress),
		UpdatedAt: now(),
	}

	id, err := insert(ctx, `
		INSERT INTO user_courses (user_id, course_id, progress, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, course_id) DO UPDATE SET
			progress = excluded.progress,
			updated_at = excluded.updated_at`,
		uc.UserID, uc.CourseID, uc.Progress, uc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	uc.ID = id
	return uc, nil
}

// GetByUser returns the progress rows of a user with course titles
func (r *ProgressRepository) GetByUser(ctx context.Context, userID int64) ([]models.UserCourse, error) {
	rows := []models.UserCourse{}
	err := DB.SelectContext(ctx, &rows, DB.Rebind(`
		SELECT uc.id, uc.user_id, uc.course_id, c.title AS course_title, uc.progress, uc.updated_at
		FROM user_courses uc
		JOIN courses c ON c.id = uc.course_id
		WHERE uc.user_id = ?
		ORDER BY uc.course_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return rows, nil
}

// GetAll returns every progress row, used to build the learner roster
func (r *ProgressRepository) GetAll(ctx context.Context) ([]models.UserCourse, error) {
	rows := []models.UserCourse{}
	err := DB.SelectContext(ctx, &rows, `
		SELECT id, user_id, course_id, progress, updated_at
		FROM user_courses
		ORDER BY user_id, course_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress rows: %w", err)
	}
	return rows, nil
}
