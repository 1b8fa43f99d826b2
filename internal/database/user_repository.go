package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/learnpath/pkg/models"
)

const userColumns = "id, username, email, password_hash, role, learning_style, telegram_chat_id, last_login, last_reminded_at, total_study_time, created_at"

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create inserts a new user and fills in its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = now()

	id, err := insert(ctx, `
		INSERT INTO users (username, email, password_hash, role, learning_style, telegram_chat_id, total_study_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Role,
		user.LearningStyle, user.TelegramChatID, user.TotalStudyTime, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername returns a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column string, value interface{}) (*models.User, error) {
	var user models.User
	query := DB.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")
	if err := DB.GetContext(ctx, &user, query, value); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := DB.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// UpdateLastLogin stores the time of the latest successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at.UTC(), id)
}

// MarkReminded stores when the user was last sent a study reminder
func (r *UserRepository) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "UPDATE users SET last_reminded_at = ? WHERE id = ?", at.UTC(), id)
}

// AddStudyTime adds minutes to the user's total study time
func (r *UserRepository) AddStudyTime(ctx context.Context, id int64, minutes int) error {
	return r.exec(ctx, "UPDATE users SET total_study_time = total_study_time + ? WHERE id = ?", minutes, id)
}

// SetLearningStyle stores the assessed learning style
func (r *UserRepository) SetLearningStyle(ctx context.Context, id int64, style string) error {
	return r.exec(ctx, "UPDATE users SET learning_style = ? WHERE id = ?", style, id)
}

// SetTelegramChatID links a Telegram chat for reminders
func (r *UserRepository) SetTelegramChatID(ctx context.Context, id, chatID int64) error {
	return r.exec(ctx, "UPDATE users SET telegram_chat_id = ? WHERE id = ?", chatID, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := DB.ExecContext(ctx, DB.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}
