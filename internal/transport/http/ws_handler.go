package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

// PlayService is the part of app.QuizService the gateway drives.
type PlayService interface {
	StartQuiz(ctx context.Context, quizID string) (*app.Play, error)
	ResumeQuiz(ctx context.Context) (*app.Play, error)
	Finish(ctx context.Context, play *app.Play) (app.Result, error)
	Dashboard(ctx context.Context) (domain.Dashboard, error)
}

type WSHandler struct {
	service  PlayService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service PlayService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type startedPayload struct {
	AttemptID string `json:"attemptId"`
	QuizID    string `json:"quizId"`
	Title     string `json:"title"`
	Topic     string `json:"topic"`
}

type resultPayload struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Saved   bool   `json:"saved"`
	Warning string `json:"warning,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one attempt over the connection. The quiz is
// picked by ?quizId=, or the cached active quiz is resumed when ?resume=true.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	resume := r.URL.Query().Get("resume") == "true"
	if quizID == "" && !resume {
		http.Error(w, "missing quizId or resume", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var play *app.Play
	if resume {
		play, err = h.service.ResumeQuiz(r.Context())
	} else {
		play, err = h.service.StartQuiz(r.Context(), quizID)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	attemptID := uuid.NewString()
	logger := h.logger.With("attempt_id", attemptID, "quiz_id", play.Quiz.QuizID)
	logger.Info("attempt started", "questions", play.Attempt.Total())

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		AttemptID: attemptID,
		QuizID:    play.Quiz.QuizID,
		Title:     play.Quiz.Title,
		Topic:     play.Quiz.Topic,
	}}
	send <- outboundMessage[any]{Type: "state", Payload: play.Attempt.View()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid select payload")
				continue
			}
			if err := play.Attempt.Select(payload.Option); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "state", Payload: play.Attempt.View()}
		case "next":
			play.Attempt.Advance()
			send <- outboundMessage[any]{Type: "state", Payload: play.Attempt.View()}
		case "prev":
			play.Attempt.Retreat()
			send <- outboundMessage[any]{Type: "state", Payload: play.Attempt.View()}
		case "submit":
			res, err := h.service.Finish(r.Context(), play)
			if errors.Is(err, domain.ErrAttemptSubmitted) {
				send <- errorMessage(err.Error())
				continue
			}
			if err != nil {
				logger.Error("finish failed", "error", err)
				send <- errorMessage(err.Error())
				continue
			}
			payload := resultPayload{Score: res.Score, Total: res.Total, Saved: res.Saved}
			if res.Warning != nil {
				payload.Warning = res.Warning.Error()
			}
			send <- outboundMessage[any]{Type: "result", Payload: payload}
			send <- outboundMessage[any]{Type: "state", Payload: play.Attempt.View()}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	if !play.Attempt.Submitted() {
		logger.Info("attempt abandoned")
	}
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
