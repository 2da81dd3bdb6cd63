package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/telhawk-systems/tradelog/internal/httputil"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/models"
)

// StatusReporter reads working-tree state for the /status probe.
type StatusReporter interface {
	Status(ctx context.Context) (clean bool, status, lastCommit string, err error)
}

// ProbeHandler serves the read-only health and status endpoints shared
// by both listeners. Neither endpoint has side effects.
type ProbeHandler struct {
	repo    StatusReporter
	logsDir string
	logger  *logging.Logger
}

// NewProbeHandler returns a ProbeHandler.
func NewProbeHandler(repo StatusReporter, logsDir string, logger *logging.Logger) *ProbeHandler {
	return &ProbeHandler{
		repo:    repo,
		logsDir: logsDir,
		logger:  logger,
	}
}

// Health is the liveness probe: a static configuration echo.
func (h *ProbeHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		LogsDir:   h.logsDir,
	})
}

// Status additionally reports working-tree cleanliness and the last
// commit, read synchronously with bounded-time git calls.
func (h *ProbeHandler) Status(w http.ResponseWriter, r *http.Request) {
	clean, status, lastCommit, err := h.repo.Status(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "status introspection failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.StatusResponse{
		Status:     "ok",
		GitClean:   clean,
		GitStatus:  status,
		LastCommit: lastCommit,
		LogsDir:    h.logsDir,
	})
}
