package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType represents different kinds of quiz questions
type QuestionType string

const (
	// MultipleChoice questions are answered by picking one of the options
	MultipleChoice QuestionType = "multiple_choice"
	// TextInput questions are answered by typing the answer
	TextInput QuestionType = "text_input"
)

// Question is a single quiz question
type Question struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Answer  string       `json:"answer,omitempty"`
}

// Questions is stored as a JSON document in the quizzes table
type Questions []Question

// Value implements driver.Valuer
func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (q *Questions) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*q = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for questions: %T", src)
	}
	return json.Unmarshal(data, q)
}

// Quiz belongs to a course
type Quiz struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  int64     `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Questions Questions `json:"questions" db:"questions"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QuizResult tracks a user's score (0-100) on a quiz
type QuizResult struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	QuizID    int64     `json:"quiz_id" db:"quiz_id"`
	CourseID  int64     `json:"course_id,omitempty" db:"course_id"` // filled by joins
	Score     float64   `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QuizAverage is the average score of a user on one quiz
type QuizAverage struct {
	QuizTitle    string  `json:"quiz_title" db:"quiz_title"`
	AverageScore float64 `json:"average_score" db:"average_score"`
}
