package models

import "time"

// StudyGroup gathers learners around a course
type StudyGroup struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CourseID    int64     `json:"course_id" db:"course_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// StudyGroupMember is a user inside a study group
type StudyGroupMember struct {
	UserID   int64     `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
