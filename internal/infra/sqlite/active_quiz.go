package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizzer/internal/domain"
)

// ActiveQuizzes is the active_quizzes table of a Store, one row per owner.
type ActiveQuizzes struct {
	store *Store
}

func (s *Store) ActiveQuizzes() *ActiveQuizzes {
	return &ActiveQuizzes{store: s}
}

func (a *ActiveQuizzes) Put(ctx context.Context, owner string, quiz domain.ActiveQuiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	cachedAt := quiz.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	_, err = a.store.db.ExecContext(ctx, `
		INSERT INTO active_quizzes (owner_email, quiz_id, title, topic, questions_json, cached_at_unix)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_email) DO UPDATE SET
			quiz_id = excluded.quiz_id,
			title = excluded.title,
			topic = excluded.topic,
			questions_json = excluded.questions_json,
			cached_at_unix = excluded.cached_at_unix
	`, owner, quiz.QuizID, quiz.Title, quiz.Topic, string(questions), cachedAt.Unix())
	return err
}

func (a *ActiveQuizzes) Get(ctx context.Context, owner string) (domain.ActiveQuiz, error) {
	var (
		quiz          domain.ActiveQuiz
		questionsJSON string
		cachedAtUnix  int64
	)
	err := a.store.db.QueryRowContext(ctx, `
		SELECT quiz_id, title, topic, questions_json, cached_at_unix
		FROM active_quizzes
		WHERE owner_email = ?
	`, owner).Scan(&quiz.QuizID, &quiz.Title, &quiz.Topic, &questionsJSON, &cachedAtUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ActiveQuiz{}, domain.ErrNoActiveQuiz
	}
	if err != nil {
		return domain.ActiveQuiz{}, err
	}
	if err := json.Unmarshal([]byte(questionsJSON), &quiz.Questions); err != nil {
		return domain.ActiveQuiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	quiz.CachedAt = time.Unix(cachedAtUnix, 0)
	return quiz, nil
}

func (a *ActiveQuizzes) Delete(ctx context.Context, owner string) error {
	_, err := a.store.db.ExecContext(ctx, `DELETE FROM active_quizzes WHERE owner_email = ?`, owner)
	return err
}
