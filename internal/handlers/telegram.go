package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/telhawk-systems/tradelog/internal/httputil"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/ratelimit"
	"github.com/telhawk-systems/tradelog/internal/service"
)

// TelegramIngestor is the service surface the message handler drives.
type TelegramIngestor interface {
	IngestTelegramUpdate(ctx context.Context, body []byte) (*service.MessageResult, error)
}

// TelegramHandler serves the message listener webhook endpoint.
type TelegramHandler struct {
	service TelegramIngestor
	limiter ratelimit.RateLimiter
	logger  *logging.Logger
}

// NewTelegramHandler returns a TelegramHandler. limiter may be a NoOp.
func NewTelegramHandler(service TelegramIngestor, limiter ratelimit.RateLimiter, logger *logging.Logger) *TelegramHandler {
	return &TelegramHandler{
		service: service,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleWebhook processes one Telegram update envelope. Discarded
// updates still get a 200: the bot API retries anything else, and a
// retry cannot change the outcome.
func (h *TelegramHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()

	if allowed, err := h.limiter.Allow(ctx, "telegram"); err == nil && !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read body", logging.Listener("telegram"), logging.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	if _, err := h.service.IngestTelegramUpdate(ctx, body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
