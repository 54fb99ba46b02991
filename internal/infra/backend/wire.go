package backend

import (
	"time"

	"quizzer/internal/domain"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Msg string `json:"msg"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type quizDTO struct {
	ID        string            `json:"_id,omitempty"`
	Email     string            `json:"email"`
	Title     string            `json:"title"`
	Topic     string            `json:"topic"`
	Questions []domain.Question `json:"testApis"`
}

func (q quizDTO) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:         q.ID,
		Title:      q.Title,
		Topic:      q.Topic,
		OwnerEmail: q.Email,
		Questions:  q.Questions,
	}
}

type quizListResponse struct {
	Quizzes []quizDTO `json:"quizzes"`
}

type scoreDTO struct {
	ID          string `json:"_id"`
	Topic       string `json:"topic"`
	Email       string `json:"email"`
	Score       int    `json:"score"`
	CreatedAt   string `json:"createdAt"`
	CreatedAtSn string `json:"created_at"`
	Date        string `json:"date"`
	AttemptedAt string `json:"attemptedAt"`
}

// Date-only values parse as UTC midnight.
var timestampLayouts = []string{time.RFC3339Nano, time.DateOnly}

// timestamp picks the first parseable timestamp field, falling back to now.
func (s scoreDTO) timestamp(now time.Time) time.Time {
	for _, raw := range []string{s.CreatedAt, s.CreatedAtSn, s.Date, s.AttemptedAt} {
		if raw == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return now
}

type scoreListResponse struct {
	Data []scoreDTO `json:"data"`
}
