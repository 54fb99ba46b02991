package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizzer/internal/domain"
)

func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	var session domain.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT name, email, token FROM session WHERE id = 1`,
	).Scan(&session.User.Name, &session.User.Email, &session.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotLoggedIn
	}
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Store) Save(ctx context.Context, session domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, name, email, token, saved_at_unix)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			token = excluded.token,
			saved_at_unix = excluded.saved_at_unix
	`, session.User.Name, session.User.Email, session.Token, time.Now().Unix())
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}
