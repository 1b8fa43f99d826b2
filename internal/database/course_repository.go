package database

import (
	"context"
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

// CourseRepository handles database operations for the catalog
type CourseRepository struct{}

// NewCourseRepository creates a new repository instance
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{}
}

// Create inserts a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	course.CreatedAt = now()
	id, err := insert(ctx,
		"INSERT INTO courses (title, description, content, created_at) VALUES (?, ?, ?, ?)",
		course.Title, course.Description, course.Content, course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	course.ID = id
	return nil
}

// Update overwrites title, description and content of a course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	res, err := DB.ExecContext(ctx,
		DB.Rebind("UPDATE courses SET title = ?, description = ?, content = ? WHERE id = ?"),
		course.Title, course.Description, course.Content, course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("course: %w", ErrNotFound)
	}
	return nil
}

// GetByID returns a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	err := DB.GetContext(ctx, &course,
		DB.Rebind("SELECT id, title, description, content, created_at FROM courses WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err, "course")
	}
	return &course, nil
}

// GetByTitle finds a course by title, ignoring case
func (r *CourseRepository) GetByTitle(ctx context.Context, title string) (*models.Course, error) {
	var course models.Course
	err := DB.GetContext(ctx, &course,
		DB.Rebind("SELECT id, title, description, content, created_at FROM courses WHERE LOWER(title) = LOWER(?) ORDER BY id LIMIT 1"), title)
	if err != nil {
		return nil, notFound(err, "course")
	}
	return &course, nil
}

// GetAll returns the catalog in id order
func (r *CourseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	if err := DB.SelectContext(ctx, &courses, "SELECT id, title, description, content, created_at FROM courses ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	return courses, nil
}

// Count returns the number of courses
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM courses"); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}
