package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"quizzer/internal/domain"
)

const DefaultBaseURL = "https://quizzer-backend-three.vercel.app"

// Client talks to the quizzer REST backend. It carries no auth state: every
// authenticated call takes the session explicitly.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{http: httpClient, logger: logger, now: time.Now}
}

func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	var out signupResponse
	req := c.http.R().
		SetContext(ctx).
		SetBody(signupRequest{Name: name, Email: email, Password: password}).
		SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/user/signup"); err != nil {
		return err
	}
	if out.Msg == "" {
		return &APIError{StatusCode: 200, Message: "signup failed"}
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	var out loginResponse
	req := c.http.R().
		SetContext(ctx).
		SetBody(loginRequest{Email: email, Password: password}).
		SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/user/login"); err != nil {
		return domain.Session{}, err
	}
	if out.Token == "" {
		return domain.Session{}, &APIError{StatusCode: 200, Message: "login response carried no token"}
	}
	if out.User.Email == "" {
		out.User.Email = email
	}
	return domain.Session{User: out.User, Token: out.Token}, nil
}

// LoadQuizzes lists the quizzes owned by the session user.
func (c *Client) LoadQuizzes(ctx context.Context, session domain.Session) ([]domain.Quiz, error) {
	var out quizListResponse
	req := c.authed(ctx, session).
		SetQueryParam("email", session.User.Email).
		SetResult(&out)
	if err := c.do(req, resty.MethodGet, "/quiz/"); err != nil {
		return nil, err
	}
	quizzes := make([]domain.Quiz, 0, len(out.Quizzes))
	for _, q := range out.Quizzes {
		quizzes = append(quizzes, q.toDomain())
	}
	return quizzes, nil
}

func (c *Client) CreateQuiz(ctx context.Context, session domain.Session, quiz domain.Quiz) error {
	body := quizDTO{
		Email:     session.User.Email,
		Title:     quiz.Title,
		Topic:     quiz.Topic,
		Questions: quiz.Questions,
	}
	return c.do(c.authed(ctx, session).SetBody(body), resty.MethodPost, "/quiz")
}

func (c *Client) DeleteQuiz(ctx context.Context, session domain.Session, quizID string) error {
	return c.do(c.authed(ctx, session), resty.MethodDelete, "/quiz/"+url.PathEscape(quizID))
}

func (c *Client) FetchScores(ctx context.Context, session domain.Session) ([]domain.ScoreRecord, error) {
	var out scoreListResponse
	req := c.authed(ctx, session).
		SetQueryParam("email", session.User.Email).
		SetResult(&out)
	if err := c.do(req, resty.MethodGet, "/score/"); err != nil {
		return nil, err
	}
	now := c.now()
	records := make([]domain.ScoreRecord, 0, len(out.Data))
	for _, s := range out.Data {
		records = append(records, domain.ScoreRecord{
			ID:        s.ID,
			Topic:     s.Topic,
			Email:     s.Email,
			Score:     s.Score,
			CreatedAt: s.timestamp(now),
		})
	}
	return records, nil
}

func (c *Client) PostAttemptScore(ctx context.Context, session domain.Session, submission domain.ScoreSubmission) error {
	return c.do(c.authed(ctx, session).SetBody(submission), resty.MethodPost, "/score")
}

func (c *Client) authed(ctx context.Context, session domain.Session) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if session.Token != "" {
		req.SetAuthToken(session.Token)
	}
	return req
}

func (c *Client) do(req *resty.Request, method, path string) error {
	req.SetError(&errorBody{})
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("backend request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	if resp.IsError() {
		body, _ := resp.Error().(*errorBody)
		c.logger.Debug("backend error response", "method", method, "path", path, "status", resp.StatusCode())
		return &APIError{StatusCode: resp.StatusCode(), Message: body.text()}
	}
	return nil
}
