package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizzer/internal/domain"
)

// QuizLoader fetches a user's quizzes from a backing source (REST backend, Postgres library).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error)
}

// QuizRepository caches catalogs in Redis and falls back to a loader on cache miss.
// Catalogs are stored as JSON: SET quizzer:catalog:{email} [...quizzes] EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error) {
	key := r.catalogKey(session.User.Email)

	if quizzes, ok := r.cached(ctx, key); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quizzes, ok := r.cached(ctx, key); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadQuizzes(ctx, session)
		if err != nil {
			return nil, err
		}

		// A non-positive ttl disables caching; Set with 0 would never expire.
		if ttl := r.ttlWithJitter(); ttl > 0 {
			if data, err := json.Marshal(quizzes); err == nil {
				// best-effort fill
				_ = r.client.Set(ctx, key, data, ttl).Err()
			}
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached catalog of owner.
func (r *QuizRepository) Invalidate(ctx context.Context, owner string) {
	_ = r.client.Del(ctx, r.catalogKey(owner)).Err()
}

func (r *QuizRepository) cached(ctx context.Context, key string) ([]domain.Quiz, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, false
	}
	return quizzes, true
}

func (r *QuizRepository) catalogKey(owner string) string {
	return "quizzer:catalog:" + owner
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
