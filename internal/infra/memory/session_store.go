package memory

import (
	"context"
	"sync"

	"quizzer/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu      sync.RWMutex
	session *domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Load(_ context.Context) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.Session{}, domain.ErrNotLoggedIn
	}
	return *s.session, nil
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// ActiveQuizStore is an in-memory implementation of app.ActiveQuizStore.
type ActiveQuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.ActiveQuiz
}

func NewActiveQuizStore() *ActiveQuizStore {
	return &ActiveQuizStore{
		quizzes: make(map[string]domain.ActiveQuiz),
	}
}

func (s *ActiveQuizStore) Put(_ context.Context, owner string, quiz domain.ActiveQuiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[owner] = quiz
	return nil
}

func (s *ActiveQuizStore) Get(_ context.Context, owner string) (domain.ActiveQuiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[owner]
	if !ok {
		return domain.ActiveQuiz{}, domain.ErrNoActiveQuiz
	}
	return quiz, nil
}

func (s *ActiveQuizStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, owner)
	return nil
}
