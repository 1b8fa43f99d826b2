package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is used when no DSN is configured for SQLite
const DefaultSQLitePath = "data/learnpath.db"

// DB is the global database connection
var DB *sqlx.DB

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Connect opens the database and creates missing tables
func Connect(driver, dsn string) error {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite {
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Ping checks the database is reachable
func Ping(ctx context.Context) error {
	if DB == nil {
		return errors.New("database is not connected")
	}
	return DB.PingContext(ctx)
}

// ListTables returns the names of the tables in the database
func ListTables(ctx context.Context) ([]string, error) {
	query := "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	if DB.DriverName() == DriverPostgres {
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	}

	var tables []string
	if err := DB.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// now is the timestamp written to created_at/updated_at columns
func now() time.Time {
	return time.Now().UTC()
}

// insert runs an INSERT written with ? placeholders and returns the new id
func insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	err := DB.QueryRowxContext(ctx, DB.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id {{id}},
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			learning_style TEXT,
			telegram_chat_id BIGINT,
			last_login TIMESTAMP,
			last_reminded_at TIMESTAMP,
			total_study_time INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`},
	{"courses", `
		CREATE TABLE IF NOT EXISTS courses (
			id {{id}},
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`},
	{"user_courses", `
		CREATE TABLE IF NOT EXISTS user_courses (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			course_id BIGINT NOT NULL REFERENCES courses(id),
			progress {{real}} NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, course_id)
		)`},
	{"quizzes", `
		CREATE TABLE IF NOT EXISTS quizzes (
			id {{id}},
			course_id BIGINT NOT NULL REFERENCES courses(id),
			title TEXT NOT NULL,
			questions TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL
		)`},
	{"quiz_results", `
		CREATE TABLE IF NOT EXISTS quiz_results (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
			score {{real}} NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`},
	{"study_groups", `
		CREATE TABLE IF NOT EXISTS study_groups (
			id {{id}},
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			course_id BIGINT NOT NULL REFERENCES courses(id),
			created_at TIMESTAMP NOT NULL
		)`},
	{"study_group_members", `
		CREATE TABLE IF NOT EXISTS study_group_members (
			study_group_id BIGINT NOT NULL REFERENCES study_groups(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			joined_at TIMESTAMP NOT NULL,
			PRIMARY KEY (study_group_id, user_id)
		)`},
	{"forum_posts", `
		CREATE TABLE IF NOT EXISTS forum_posts (
			id {{id}},
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id),
			course_id BIGINT NOT NULL REFERENCES courses(id),
			created_at TIMESTAMP NOT NULL
		)`},
	{"forum_replies", `
		CREATE TABLE IF NOT EXISTS forum_replies (
			id {{id}},
			content TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id),
			post_id BIGINT NOT NULL REFERENCES forum_posts(id),
			created_at TIMESTAMP NOT NULL
		)`},
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	dialect := strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{real}}", "REAL",
	)
	if DB.DriverName() == DriverPostgres {
		dialect = strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{real}}", "DOUBLE PRECISION",
		)
	}

	for _, t := range schema {
		if _, err := DB.Exec(dialect.Replace(t.ddl)); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.table, err)
		}
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
