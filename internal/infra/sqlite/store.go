package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the logged-in session and active quizzes in a local SQLite file,
// so a restarted CLI keeps its login and can resume a quiz.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "quizzer.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		// single-row table; id is pinned to 1
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			token TEXT NOT NULL,
			saved_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS active_quizzes (
			owner_email TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			title TEXT NOT NULL,
			topic TEXT NOT NULL,
			questions_json TEXT NOT NULL,
			cached_at_unix INTEGER NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
