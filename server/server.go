// Package server exposes the conversational agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/mousaid/car-sales-agent/agent/contract"
)

const greetingMessage = "👋 Hello! My name is **Mousa3id**, your car recommendation assistant. How can I help you find your perfect car today? "

type Config struct {
	Addr           string   `envconfig:"ADDR" split_words:"true" default:":8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" split_words:"true" default:"http://localhost:3000,http://127.0.0.1:3000"`
}

// TurnHandler is the orchestrator surface the HTTP layer depends on.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error)
}

// NewRouter wires the chat and greeting endpoints behind recovery and CORS.
func NewRouter(cfg Config, turns TurnHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Post("/chat", handleChat(turns))
	r.Get("/api/greeting", handleGreeting)
	r.Get("/health", handleHealth)

	return r
}

func handleChat(turns TurnHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contractx.TurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "Invalid request body"})
			return
		}

		resp, err := turns.HandleTurn(r.Context(), req)
		if err != nil {
			log.Error().Err(err).Str("session_id", resp.SessionID).Msg("turn failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Database error"})
			return
		}

		writeJSON(w, statusCode(resp.Status), resp)
	}
}

func handleGreeting(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": greetingMessage})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusCode maps the degraded-reply statuses onto the wire. The body still
// carries the fixed reply text so clients can render it.
func statusCode(s contractx.TurnStatus) int {
	switch s {
	case contractx.StatusRateLimited:
		return http.StatusTooManyRequests
	case contractx.StatusError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}
