package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzer/internal/domain"
	"quizzer/internal/infra/memory"
)

// fakeLibrary stores imported quizzes per owner and serves them as a catalog loader.
type fakeLibrary struct {
	mu      sync.Mutex
	quizzes map[string][]domain.Quiz
	err     error
}

func (l *fakeLibrary) Import(_ context.Context, owner string, quizzes []domain.Quiz) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quizzes == nil {
		l.quizzes = make(map[string][]domain.Quiz)
	}
	l.quizzes[owner] = append(l.quizzes[owner], quizzes...)
	return len(quizzes), nil
}

func (l *fakeLibrary) LoadQuizzes(_ context.Context, session domain.Session) ([]domain.Quiz, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Quiz(nil), l.quizzes[session.User.Email]...), nil
}

func TestImportQuizzesRefreshesCatalog(t *testing.T) {
	ctx := context.Background()
	lib := &fakeLibrary{}
	catalog := memory.NewQuizRepository(lib, time.Hour)
	session := domain.Session{User: domain.User{Name: "Alice", Email: "alice@example.com"}, Token: "tok"}

	before, err := catalog.ListQuizzes(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, before)

	written, err := importQuizzes(ctx, lib, catalog, "alice@example.com", sampleQuizzes())
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	after, err := catalog.ListQuizzes(ctx, session)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestImportQuizzesKeepsCatalogOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	seed := &fakeLibrary{}
	_, _ = seed.Import(ctx, "alice@example.com", sampleQuizzes()[:1])
	catalog := memory.NewQuizRepository(seed, time.Hour)
	session := domain.Session{User: domain.User{Email: "alice@example.com"}}

	_, err := catalog.ListQuizzes(ctx, session)
	require.NoError(t, err)

	seed.err = boom
	_, err = importQuizzes(ctx, seed, catalog, "alice@example.com", sampleQuizzes())
	require.ErrorIs(t, err, boom)

	// cached entry survives: nothing new was written
	cached, err := catalog.ListQuizzes(ctx, session)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}
