package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizzer/internal/app"
	"quizzer/internal/domain"
	"quizzer/internal/infra/memory"
)

type stubBackend struct {
	posted  []domain.ScoreSubmission
	postErr error
}

func (b *stubBackend) Signup(context.Context, string, string, string) error { return nil }

func (b *stubBackend) Login(_ context.Context, email, _ string) (domain.Session, error) {
	return domain.Session{User: domain.User{Name: "Alice", Email: email}, Token: "token"}, nil
}

func (b *stubBackend) CreateQuiz(context.Context, domain.Session, domain.Quiz) error { return nil }

func (b *stubBackend) DeleteQuiz(context.Context, domain.Session, string) error { return nil }

func (b *stubBackend) FetchScores(context.Context, domain.Session) ([]domain.ScoreRecord, error) {
	return []domain.ScoreRecord{
		{ID: "s1", Topic: "Math", Score: 20, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, nil
}

func (b *stubBackend) PostAttemptScore(_ context.Context, _ domain.Session, sub domain.ScoreSubmission) error {
	if b.postErr != nil {
		return b.postErr
	}
	b.posted = append(b.posted, sub)
	return nil
}

func newTestServer(t *testing.T, backend *stubBackend, login bool) *httptest.Server {
	t.Helper()
	service := app.NewQuizService(app.Deps{
		Sessions: memory.NewSessionStore(),
		Active:   memory.NewActiveQuizStore(),
		Quizzes:  memory.NewQuizRepository(memory.NewStaticQuizLoader([]domain.Quiz{sampleQuiz()}), time.Minute),
		Writer:   backend,
		Accounts: backend,
		Scores:   backend,
	})
	if login {
		if _, err := service.Login(context.Background(), "alice@example.com", "pw"); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	server := httptest.NewServer(NewRouter(service, nil))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/play?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketPlayFlow(t *testing.T) {
	backend := &stubBackend{}
	server := newTestServer(t, backend, true)
	conn := dial(t, server, "quizId=quiz-1")

	_, started := readNext(conn, t, "started")
	if started["quizId"] != "quiz-1" || started["attemptId"] == "" {
		t.Fatalf("unexpected started payload %+v", started)
	}
	_, state := readNext(conn, t, "state")
	if state["index"].(float64) != 0 || state["total"].(float64) != 2 {
		t.Fatalf("unexpected initial state %+v", state)
	}

	send(t, conn, "select", map[string]any{"option": "4"})
	_, state = readNext(conn, t, "state")
	if state["selected"] != "4" || state["attempted"].(float64) != 1 {
		t.Fatalf("unexpected state after select %+v", state)
	}

	send(t, conn, "next", nil)
	_, state = readNext(conn, t, "state")
	if state["index"].(float64) != 1 {
		t.Fatalf("expected index 1, got %+v", state)
	}
	send(t, conn, "next", nil)
	_, state = readNext(conn, t, "state")
	if state["index"].(float64) != 1 {
		t.Fatalf("next at last question must be a no-op, got %+v", state)
	}

	send(t, conn, "submit", nil)
	_, result := readNext(conn, t, "result")
	if result["score"].(float64) != 1 || result["total"].(float64) != 2 || result["saved"] != true {
		t.Fatalf("unexpected result %+v", result)
	}
	_, state = readNext(conn, t, "state")
	if state["submitted"] != true {
		t.Fatalf("expected submitted state, got %+v", state)
	}

	send(t, conn, "submit", nil)
	_, errPayload := readNext(conn, t, "error")
	if !strings.Contains(errPayload["message"].(string), "submitted") {
		t.Fatalf("expected already submitted error, got %+v", errPayload)
	}
	send(t, conn, "select", map[string]any{"option": "9"})
	readNext(conn, t, "error")

	if len(backend.posted) != 1 || backend.posted[0].Score != 1 || backend.posted[0].Topic != "Math" {
		t.Fatalf("expected one posted score, got %+v", backend.posted)
	}
}

func TestWebSocketResultCarriesWarning(t *testing.T) {
	backend := &stubBackend{postErr: errors.New("backend down")}
	server := newTestServer(t, backend, true)
	conn := dial(t, server, "quizId=quiz-1")
	readNext(conn, t, "started")
	readNext(conn, t, "state")

	send(t, conn, "submit", nil)
	_, result := readNext(conn, t, "result")
	if result["saved"] != false || result["score"].(float64) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if warning, _ := result["warning"].(string); !strings.Contains(warning, "save score") {
		t.Fatalf("expected persistence warning, got %q", warning)
	}
}

func TestWebSocketResume(t *testing.T) {
	server := newTestServer(t, &stubBackend{}, true)

	first := dial(t, server, "quizId=quiz-1")
	readNext(first, t, "started")
	first.Close()

	conn := dial(t, server, "resume=true")
	_, started := readNext(conn, t, "started")
	if started["quizId"] != "quiz-1" {
		t.Fatalf("expected resumed quiz-1, got %+v", started)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	server := newTestServer(t, &stubBackend{}, false)
	conn := dial(t, server, "quizId=quiz-1")

	_, payload := readNext(conn, t, "error")
	if !strings.Contains(payload["message"].(string), "not logged in") {
		t.Fatalf("expected login error, got %+v", payload)
	}
}

func TestWebSocketRejectsMissingQuiz(t *testing.T) {
	server := newTestServer(t, &stubBackend{}, true)

	resp, err := http.Get(server.URL + "/ws/play")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	server := newTestServer(t, &stubBackend{}, true)

	resp, err := http.Get(server.URL + "/api/dashboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var dash domain.Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.Empty || dash.Overall.Total != 1 || len(dash.Topics) != 1 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
}

func TestDashboardEndpointUnauthorized(t *testing.T) {
	server := newTestServer(t, &stubBackend{}, false)

	resp, err := http.Get(server.URL + "/api/dashboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Topic: "Math",
		Questions: []domain.Question{
			{Question: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
			{Question: "What is 3 * 3?", Options: []string{"6", "9", "12", "33"}, Answer: "9"},
		},
	}
}
