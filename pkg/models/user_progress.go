package models

import "time"

// MaxProgress is the progress value of a finished course
const MaxProgress = 100.0

// UserCourse tracks how far a user got through a course (0-100)
type UserCourse struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CourseID    int64     `json:"course_id" db:"course_id"`
	CourseTitle string    `json:"course_title,omitempty" db:"course_title"`
	Progress    float64   `json:"progress" db:"progress"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ClampProgress keeps a progress value inside [0, MaxProgress]
func ClampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}
