package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quizzer/internal/domain"
)

// SessionStore persists the logged-in user and bearer token (local storage, sqlite, memory).
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// ActiveQuizStore caches the quiz a user is currently playing, keyed by owner email.
type ActiveQuizStore interface {
	Put(ctx context.Context, owner string, quiz domain.ActiveQuiz) error
	Get(ctx context.Context, owner string) (domain.ActiveQuiz, error)
	Delete(ctx context.Context, owner string) error
}

// QuizRepository returns a user's quiz catalog (from cache/backing source).
type QuizRepository interface {
	ListQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error)
	Invalidate(ctx context.Context, owner string)
}

// QuizWriter creates and deletes quizzes in the backing source.
type QuizWriter interface {
	CreateQuiz(ctx context.Context, session domain.Session, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, session domain.Session, quizID string) error
}

// Accounts covers signup and login against the backend.
type Accounts interface {
	Signup(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (domain.Session, error)
}

// ScoreService reads score history and appends new attempt scores.
type ScoreService interface {
	FetchScores(ctx context.Context, session domain.Session) ([]domain.ScoreRecord, error)
	PostAttemptScore(ctx context.Context, session domain.Session, submission domain.ScoreSubmission) error
}

const defaultSaveTimeout = 10 * time.Second

// Deps bundles the collaborators of QuizService.
type Deps struct {
	Sessions    SessionStore
	Active      ActiveQuizStore
	Quizzes     QuizRepository
	Writer      QuizWriter
	Accounts    Accounts
	Scores      ScoreService
	Analytics   *Analytics
	Logger      *slog.Logger
	SaveTimeout time.Duration
	Now         func() time.Time
}

// QuizService contains the client use cases: account, catalog, play and analytics.
type QuizService struct {
	sessions    SessionStore
	active      ActiveQuizStore
	quizzes     QuizRepository
	writer      QuizWriter
	accounts    Accounts
	scores      ScoreService
	analytics   *Analytics
	logger      *slog.Logger
	saveTimeout time.Duration
	now         func() time.Time
}

func NewQuizService(deps Deps) *QuizService {
	s := &QuizService{
		sessions:    deps.Sessions,
		active:      deps.Active,
		quizzes:     deps.Quizzes,
		writer:      deps.Writer,
		accounts:    deps.Accounts,
		scores:      deps.Scores,
		analytics:   deps.Analytics,
		logger:      deps.Logger,
		saveTimeout: deps.SaveTimeout,
		now:         deps.Now,
	}
	if s.analytics == nil {
		s.analytics = NewAnalytics(AnalyticsOptions{})
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = defaultSaveTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SignupInput is the signup form.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Signup registers a new account. It does not log the user in.
func (s *QuizService) Signup(ctx context.Context, in SignupInput) error {
	if in.Password != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := domain.Validate(in); err != nil {
		return err
	}
	if err := s.accounts.Signup(ctx, strings.TrimSpace(in.Name), in.Email, in.Password); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	s.logger.InfoContext(ctx, "account created", "email", in.Email)
	return nil
}

// Login authenticates and stores the session locally.
func (s *QuizService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	session, err := s.accounts.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	s.logger.InfoContext(ctx, "logged in", "email", session.User.Email)
	return session, nil
}

// Logout drops the cached quiz and the stored session.
func (s *QuizService) Logout(ctx context.Context) error {
	session, err := s.sessions.Load(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.active.Delete(ctx, session.User.Email); err != nil {
		s.logger.WarnContext(ctx, "clear active quiz failed", "error", err)
	}
	return s.sessions.Clear(ctx)
}

// CurrentSession returns the stored session, rejecting tokens that are past their exp claim.
func (s *QuizService) CurrentSession(ctx context.Context) (domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if session.User.Email == "" || session.Token == "" {
		return domain.Session{}, domain.ErrNotLoggedIn
	}
	if tokenExpired(session.Token, s.now()) {
		return domain.Session{}, domain.ErrSessionExpired
	}
	return session, nil
}

// ListQuizzes returns the user's quizzes whose title contains search (case-insensitive).
func (s *QuizService) ListQuizzes(ctx context.Context, search string) ([]domain.Quiz, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListQuizzes(ctx, session)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return quizzes, nil
	}
	filtered := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if strings.Contains(strings.ToLower(q.Title), needle) {
			filtered = append(filtered, q)
		}
	}
	return filtered, nil
}

// NewQuizInput is the add-quiz form. Questions holds the raw JSON (possibly fenced) text.
type NewQuizInput struct {
	Title     string `json:"title" validate:"required"`
	Topic     string `json:"topic" validate:"required"`
	Questions string `json:"questions" validate:"required"`
}

// AddQuiz parses, validates and stores a new quiz for the session user.
func (s *QuizService) AddQuiz(ctx context.Context, in NewQuizInput) (domain.Quiz, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	in.Title, in.Topic = strings.TrimSpace(in.Title), strings.TrimSpace(in.Topic)
	if err := domain.Validate(in); err != nil {
		return domain.Quiz{}, err
	}
	questions, err := domain.ExtractQuestions(in.Questions)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuestionSet, err)
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		Title:      in.Title,
		Topic:      in.Topic,
		OwnerEmail: session.User.Email,
		Questions:  questions,
	}
	if err := s.writer.CreateQuiz(ctx, session, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	s.quizzes.Invalidate(ctx, session.User.Email)
	s.logger.InfoContext(ctx, "quiz added", "title", quiz.Title, "topic", quiz.Topic, "questions", len(questions))
	return quiz, nil
}

// DeleteQuiz removes a quiz and forgets it locally.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if err := s.writer.DeleteQuiz(ctx, session, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.quizzes.Invalidate(ctx, session.User.Email)

	if active, err := s.active.Get(ctx, session.User.Email); err == nil && active.QuizID == quizID {
		if err := s.active.Delete(ctx, session.User.Email); err != nil {
			s.logger.WarnContext(ctx, "clear active quiz failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "quiz deleted", "quiz_id", quizID)
	return nil
}

// Play is one running attempt together with the quiz it came from.
type Play struct {
	Quiz    domain.ActiveQuiz
	Attempt *Attempt
}

// StartQuiz loads a quiz from the catalog, starts an attempt and caches the quiz for resume.
func (s *QuizService) StartQuiz(ctx context.Context, quizID string) (*Play, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListQuizzes(ctx, session)
	if err != nil {
		return nil, err
	}
	var quiz *domain.Quiz
	for i := range quizzes {
		if quizzes[i].ID == quizID {
			quiz = &quizzes[i]
			break
		}
	}
	if quiz == nil {
		return nil, domain.ErrQuizNotFound
	}

	attempt, err := StartAttempt(quiz.Questions)
	if err != nil {
		return nil, err
	}
	active := domain.ActiveQuiz{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		Topic:     quiz.Topic,
		Questions: quiz.Questions,
		CachedAt:  s.now(),
	}
	if err := s.active.Put(ctx, session.User.Email, active); err != nil {
		// non-fatal: only resume depends on it
		s.logger.WarnContext(ctx, "cache active quiz failed", "error", err)
	}
	return &Play{Quiz: active, Attempt: attempt}, nil
}

// ResumeQuiz starts a fresh attempt on the locally cached quiz.
func (s *QuizService) ResumeQuiz(ctx context.Context) (*Play, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.active.Get(ctx, session.User.Email)
	if err != nil {
		return nil, err
	}
	attempt, err := StartAttempt(active.Questions)
	if err != nil {
		return nil, err
	}
	return &Play{Quiz: active, Attempt: attempt}, nil
}

// Result is the outcome of a finished attempt. Score is authoritative even when Saved is
// false; Warning then explains why the score was not persisted.
type Result struct {
	Score   int
	Total   int
	Saved   bool
	Warning error
}

// Finish submits the attempt and saves the score on a best-effort basis.
func (s *QuizService) Finish(ctx context.Context, play *Play) (Result, error) {
	score, err := play.Attempt.Submit()
	res := Result{Score: score, Total: play.Attempt.Total()}
	if err != nil {
		return res, err
	}
	logger := s.logger.With("quiz_id", play.Quiz.QuizID, "topic", play.Quiz.Topic, "score", score)

	session, err := s.CurrentSession(ctx)
	if err != nil {
		res.Warning = err
		logger.WarnContext(ctx, "score not saved", "reason", err)
		return res, nil
	}

	// detached: a caller disconnect must not abort the save
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()
	submission := domain.ScoreSubmission{
		Topic: play.Quiz.Topic,
		Email: session.User.Email,
		Score: score,
	}
	if err := s.scores.PostAttemptScore(saveCtx, session, submission); err != nil {
		res.Warning = fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		logger.WarnContext(ctx, "score save failed", "error", err)
		return res, nil
	}
	res.Saved = true
	logger.InfoContext(ctx, "score saved")
	return res, nil
}

// Dashboard fetches the score history and aggregates it.
func (s *QuizService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	records, err := s.scores.FetchScores(ctx, session)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("fetch scores: %w", err)
	}
	return s.analytics.Dashboard(records), nil
}

// Analytics exposes the aggregator so presentation code can reuse its options.
func (s *QuizService) Analytics() *Analytics {
	return s.analytics
}
