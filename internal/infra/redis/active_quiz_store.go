package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizzer/internal/domain"
)

// ActiveQuizStore keeps the quiz being played in Redis so any client instance sharing the
// same Redis can resume it. Entries expire after ttl.
type ActiveQuizStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewActiveQuizStore(client *redis.Client, ttl time.Duration) *ActiveQuizStore {
	return &ActiveQuizStore{client: client, ttl: ttl}
}

func (s *ActiveQuizStore) Put(ctx context.Context, owner string, quiz domain.ActiveQuiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal active quiz: %w", err)
	}
	return s.client.Set(ctx, s.key(owner), data, s.ttl).Err()
}

func (s *ActiveQuizStore) Get(ctx context.Context, owner string) (domain.ActiveQuiz, error) {
	data, err := s.client.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ActiveQuiz{}, domain.ErrNoActiveQuiz
	}
	if err != nil {
		return domain.ActiveQuiz{}, err
	}
	var quiz domain.ActiveQuiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.ActiveQuiz{}, fmt.Errorf("unmarshal active quiz: %w", err)
	}
	return quiz, nil
}

func (s *ActiveQuizStore) Delete(ctx context.Context, owner string) error {
	return s.client.Del(ctx, s.key(owner)).Err()
}

func (s *ActiveQuizStore) key(owner string) string {
	return "quizzer:active:" + owner
}
