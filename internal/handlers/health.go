package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 5 * time.Second

// Pinger checks that the relational store answers a trivial query
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: healthTimeout,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ServeHTTP handles GET /api/healthchecker
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.logger.Error("database health check timed out", "timeout", h.timeout)
			WriteError(w, http.StatusInternalServerError, "Timeout error: Database is not responding", h.logger)
			return
		}
		h.logger.Error("database health check failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Error connecting to the database", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "Database connection is healthy",
	}, h.logger)
}
