package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a local sqlite database
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and its tables
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (s *SQLite) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			profile_completed BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			files TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			question_set TEXT NOT NULL,
			meta TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			kind TEXT NOT NULL,
			ref_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			items INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			demo BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS activity_uid_created ON activity (uid, created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// UpsertUser inserts the user or updates its profile fields, keeping created_at
func (s *SQLite) UpsertUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (uid, email, display_name, phone_number, profile_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			phone_number = excluded.phone_number,
			profile_completed = excluded.profile_completed,
			updated_at = excluded.updated_at`,
		u.UID, u.Email, u.DisplayName, u.PhoneNumber, u.ProfileCompleted, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by UID
func (s *SQLite) GetUser(ctx context.Context, uid string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT uid, email, display_name, phone_number, profile_completed, created_at, updated_at FROM users WHERE uid = ?",
		uid,
	).Scan(&u.UID, &u.Email, &u.DisplayName, &u.PhoneNumber, &u.ProfileCompleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateUpload stores an upload record
func (s *SQLite) CreateUpload(ctx context.Context, u *Upload) error {
	tags, err := toJSON(u.Tags)
	if err != nil {
		return err
	}
	files, err := toJSON(u.Files)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO uploads (id, uid, title, category, tags, description, files, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.UID, u.Title, u.Category, tags, u.Description, files, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

// GetUpload retrieves an upload by ID
func (s *SQLite) GetUpload(ctx context.Context, id string) (*Upload, error) {
	var u Upload
	var tags, files string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, uid, title, category, tags, description, files, created_at FROM uploads WHERE id = ?",
		id,
	).Scan(&u.ID, &u.UID, &u.Title, &u.Category, &tags, &u.Description, &files, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	if err := fromJSON(tags, &u.Tags); err != nil {
		return nil, err
	}
	if err := fromJSON(files, &u.Files); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveQuiz stores a generated question set
func (s *SQLite) SaveQuiz(ctx context.Context, q *Quiz) error {
	set, err := toJSON(q.Set)
	if err != nil {
		return err
	}
	meta, err := toJSON(q.Meta)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO quizzes (id, uid, title, question_set, meta, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		q.ID, q.UID, q.Title, set, meta, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// GetQuiz retrieves a quiz by ID
func (s *SQLite) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	var q Quiz
	var set, meta string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, uid, title, question_set, meta, created_at FROM quizzes WHERE id = ?",
		id,
	).Scan(&q.ID, &q.UID, &q.Title, &set, &meta, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if err := fromJSON(set, &q.Set); err != nil {
		return nil, err
	}
	if err := fromJSON(meta, &q.Meta); err != nil {
		return nil, err
	}
	return &q, nil
}

// RecordActivity appends an activity record
func (s *SQLite) RecordActivity(ctx context.Context, a *Activity) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity (id, uid, kind, ref_id, title, items, correct, total, demo, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.UID, string(a.Kind), a.RefID, a.Title, a.Items, a.Correct, a.Total, a.Demo, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListActivity returns the newest activity of a user first
func (s *SQLite) ListActivity(ctx context.Context, uid string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, uid, kind, ref_id, title, items, correct, total, demo, created_at FROM activity WHERE uid = ? ORDER BY created_at DESC LIMIT ?",
		uid, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var kind string
		if err := rows.Scan(&a.ID, &a.UID, &kind, &a.RefID, &a.Title, &a.Items, &a.Correct, &a.Total, &a.Demo, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Kind = ActivityKind(kind)
		out = append(out, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %w", err)
	}
	return out, nil
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal: %w", err)
	}
	return string(data), nil
}

func fromJSON(s string, v interface{}) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}
