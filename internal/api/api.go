// Package api exposes the assistant over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"meeple-cli/internal/agent"
	"meeple-cli/internal/engine"
	"meeple-cli/internal/logger"
)

// RunnerFactory builds a fresh agent loop for one request. Runners are
// single-use, so the server asks for a new one per question.
type RunnerFactory func() *engine.Runner

// Handler serves the ask and health endpoints.
type Handler struct {
	newRunner RunnerFactory
	log       *logger.LogEntry
}

func NewHandler(newRunner RunnerFactory) *Handler {
	return &Handler{
		newRunner: newRunner,
		log:       logger.Named("api"),
	}
}

// Router assembles the HTTP routes with standard middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Post("/ask", h.handleAsk)
	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type askRequest struct {
	Question            string          `json:"question"`
	ConversationHistory []agent.Message `json:"conversation_history"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		Error(w, http.StatusBadRequest, "question is required")
		return
	}

	id := uuid.NewString()
	log := h.log.WithField("request_id", id)
	log.WithField("question", req.Question).Info("ask received")

	runner := h.newRunner()
	answer, err := runner.Run(r.Context(), req.Question, req.ConversationHistory)
	if err != nil {
		log.WithError(err).Warn("ask aborted")
		Error(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	JSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
