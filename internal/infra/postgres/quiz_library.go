package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizzer/internal/domain"
)

// QuizLibrary is a self-hosted quiz source. Questions are stored as JSONB in the data column.
type QuizLibrary struct {
	pool *pgxpool.Pool
}

func NewQuizLibrary(pool *pgxpool.Pool) *QuizLibrary {
	return &QuizLibrary{pool: pool}
}

// LoadQuizzes returns the quizzes owned by the session user, oldest first.
func (l *QuizLibrary) LoadQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, owner_email, title, topic, data
		FROM quizzes
		WHERE owner_email = $1
		ORDER BY created_at, id`, session.User.Email)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var (
			quiz domain.Quiz
			raw  []byte
		)
		if err := rows.Scan(&quiz.ID, &quiz.OwnerEmail, &quiz.Title, &quiz.Topic, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		if err := json.Unmarshal(raw, &quiz.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %s: %w", quiz.ID, err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	return quizzes, nil
}

func (l *QuizLibrary) CreateQuiz(ctx context.Context, session domain.Session, quiz domain.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	quiz.OwnerEmail = session.User.Email
	return l.insert(ctx, quiz)
}

func (l *QuizLibrary) DeleteQuiz(ctx context.Context, session domain.Session, quizID string) error {
	tag, err := l.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1 AND owner_email = $2`, quizID, session.User.Email)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// Import upserts quizzes for owner, validating every question set first. It returns the
// number of quizzes written.
func (l *QuizLibrary) Import(ctx context.Context, owner string, quizzes []domain.Quiz) (int, error) {
	for i, quiz := range quizzes {
		if err := domain.ValidateQuestions(quiz.Questions); err != nil {
			return 0, fmt.Errorf("quiz %d (%s): %w", i+1, quiz.Title, err)
		}
	}
	written := 0
	for _, quiz := range quizzes {
		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		quiz.OwnerEmail = owner
		if err := l.insert(ctx, quiz); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (l *QuizLibrary) insert(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quizzes (id, owner_email, title, topic, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			owner_email = EXCLUDED.owner_email,
			title = EXCLUDED.title,
			topic = EXCLUDED.topic,
			data = EXCLUDED.data`,
		quiz.ID, quiz.OwnerEmail, quiz.Title, quiz.Topic, data)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}
