package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/convo"
	"github.com/tgienger/double/internal/engine"
	"github.com/tgienger/double/internal/models"
)

// Handler serves the conversation API
type Handler struct {
	engine *engine.Engine
	log    zerolog.Logger
}

// New creates the API handler
func New(e *engine.Engine, log zerolog.Logger) *Handler {
	return &Handler{engine: e, log: log}
}

// RegisterRoutes registers the API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleMessage)
	r.Get("/session", h.handleSession)
	r.Get("/stats", h.handleStats)
	r.Get("/tasks", h.handleTasks)
	r.Post("/tasks/{id}/complete", h.handleComplete)
	r.Post("/mode/toggle", h.handleToggleMode)
}

type tasksResponse struct {
	Active    []models.Task `json:"active"`
	Completed []models.Task `json:"completed"`
}

type modeResponse struct {
	Mode models.Mode `json:"mode"`
}

// handleMessage runs one conversation turn
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	res, ok := h.engine.Send(r.Context(), payload.Text)
	if !ok {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleSession returns the full session snapshot
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// handleStats returns task statistics
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}

// handleTasks lists active and completed tasks
func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	respondJSON(w, http.StatusOK, tasksResponse{Active: s.ActiveTasks, Completed: s.CompletedTasks})
}

// handleComplete completes an active task
func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.engine.CompleteTask(r.Context(), id)
	if errors.Is(err, engine.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("task", id).Msg("complete task")
		respondError(w, http.StatusInternalServerError, "complete failed")
		return
	}

	res.Messages = append(res.Messages, h.engine.Emit(r.Context(), res.FollowUps)...)
	respondJSON(w, http.StatusOK, res)
}

// handleToggleMode flips between normal and task-adding
func (h *Handler) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	mode, err := h.engine.ToggleMode(r.Context())
	if errors.Is(err, convo.ErrSetupPending) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, modeResponse{Mode: mode})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
