package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizzer/internal/domain"
)

// QuizLoader fetches a user's quizzes from a backing source (REST backend, Postgres library).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error)
}

// QuizRepository caches per-user catalogs with TTL to avoid repeated backend calls.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	quizzes   []domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error) {
	owner := session.User.Email
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[owner]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quizzes, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(owner, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[owner]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quizzes, nil
		}
		r.mu.RUnlock()

		quizzes, err := r.loader.LoadQuizzes(ctx, session)
		if err != nil {
			return nil, err
		}

		if ttl := r.ttlWithJitter(); ttl > 0 {
			r.mu.Lock()
			r.cache[owner] = cachedCatalog{
				quizzes:   quizzes,
				expiresAt: now.Add(ttl),
			}
			r.mu.Unlock()
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached catalog of owner so the next read reloads it.
func (r *QuizRepository) Invalidate(_ context.Context, owner string) {
	r.mu.Lock()
	delete(r.cache, owner)
	r.mu.Unlock()
}

// StaticQuizLoader serves the same quizzes to every user (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes []domain.Quiz
}

func NewStaticQuizLoader(quizzes []domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuizzes(_ context.Context, _ domain.Session) ([]domain.Quiz, error) {
	out := make([]domain.Quiz, len(l.quizzes))
	copy(out, l.quizzes)
	return out, nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
