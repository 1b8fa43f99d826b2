package models

import "time"

// Course is an item of the catalog
type Course struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Text returns the text used to compare courses with each other
func (c *Course) Text() string {
	return c.Title + " " + c.Description + " " + c.Content
}
