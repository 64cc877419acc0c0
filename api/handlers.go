// Package api serves the JSON API surface. The envelopes here are a stable
// contract: successful responses carry success:true, failures carry an error
// string, and guarded routes answer 401 {"error":"Unauthorized"} without a
// session.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/taskman-go/auth"
	"github.com/user/taskman-go/session"
	"github.com/user/taskman-go/tasks"
)

// Handlers serves the /api routes.
type Handlers struct {
	authService *auth.Service
	taskService *tasks.Service
	environment string
	backend     string
	logger      *zap.Logger
}

// NewHandlers creates the API handlers. environment and backend feed the
// /api/info descriptor.
func NewHandlers(authService *auth.Service, taskService *tasks.Service, environment, backend string, logger *zap.Logger) *Handlers {
	return &Handlers{
		authService: authService,
		taskService: taskService,
		environment: environment,
		backend:     backend,
		logger:      logger,
	}
}

// userResponse is the envelope for GET /api/user.
type userResponse struct {
	Success bool               `json:"success"`
	User    *session.Principal `json:"user"`
}

// infoResponse is the static descriptor returned by GET /api/info.
type infoResponse struct {
	App         string   `json:"app"`
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	Database    string   `json:"database"`
	Features    []string `json:"features"`
}

// statsPayload is the stats block of GET /api/stats.
type statsPayload struct {
	TotalUsers int64 `json:"totalUsers"`
	tasks.Stats
}

// statsResponse is the envelope for GET /api/stats.
type statsResponse struct {
	Success bool         `json:"success"`
	Stats   statsPayload `json:"stats"`
}

// statsError is the failure envelope for GET /api/stats.
type statsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleUser returns the authenticated principal.
func (h *Handlers) HandleUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.UnauthorizedJSON(w, r)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Success: true, User: principal})
	}
}

// HandleInfo returns the application descriptor. This route is public.
func (h *Handlers) HandleInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, infoResponse{
			App:         "Task Manager Application",
			Version:     "1.0.0",
			Environment: h.environment,
			Database:    h.backend,
			Features: []string{
				"User Authentication",
				"Task Management",
				"CRUD Operations",
				"Session Management",
			},
		})
	}
}

// HandleStats returns the caller's task counts plus the global user count.
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.UnauthorizedJSON(w, r)
			return
		}

		taskStats, err := h.taskService.Stats(r.Context(), principal.UserID)
		if err != nil {
			h.logger.Error("failed to fetch task stats", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, statsError{Success: false, Error: "Failed to fetch statistics"})
			return
		}

		totalUsers, err := h.authService.CountUsers(r.Context())
		if err != nil {
			h.logger.Error("failed to count users", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, statsError{Success: false, Error: "Failed to fetch statistics"})
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			Success: true,
			Stats:   statsPayload{TotalUsers: totalUsers, Stats: *taskStats},
		})
	}
}

// writeJSON serializes data with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}
