package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quizzer/internal/domain"
)

// NewRouter mounts the gateway endpoints.
func NewRouter(service PlayService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ws := NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/dashboard", dashboardHandler(service, logger))
	mux.HandleFunc("GET /ws/play", ws.ServeWS)
	return mux
}

func dashboardHandler(service PlayService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := service.Dashboard(r.Context())
		switch {
		case errors.Is(err, domain.ErrNotLoggedIn), errors.Is(err, domain.ErrSessionExpired):
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: err.Error()})
			return
		case err != nil:
			logger.Warn("dashboard failed", "error", err)
			writeJSON(w, http.StatusBadGateway, errorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
