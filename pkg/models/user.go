package models

import "time"

// Roles a user can have
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a learner (or admin) account on the platform
type User struct {
	ID             int64      `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	Role           string     `json:"role" db:"role"`
	LearningStyle  *string    `json:"learning_style,omitempty" db:"learning_style"`
	TelegramChatID *int64     `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	LastLogin      *time.Time `json:"last_login,omitempty" db:"last_login"`
	LastRemindedAt *time.Time `json:"-" db:"last_reminded_at"`
	TotalStudyTime int        `json:"total_study_time" db:"total_study_time"` // in minutes
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
