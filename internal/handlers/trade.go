// Package handlers exposes the listener HTTP surfaces: the two webhook
// endpoints plus the health and status probes.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/telhawk-systems/tradelog/internal/httputil"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/models"
	"github.com/telhawk-systems/tradelog/internal/ratelimit"
	"github.com/telhawk-systems/tradelog/internal/service"
)

// maxBodySize caps webhook payloads.
const maxBodySize = 1 << 20

// TradeIngestor is the service surface the trade handler drives.
type TradeIngestor interface {
	IngestTrade(ctx context.Context, body []byte, signatureHeader string) (*service.TradeResult, error)
}

// TradeHandler serves the trade listener webhook endpoint.
type TradeHandler struct {
	service TradeIngestor
	limiter ratelimit.RateLimiter
	logger  *logging.Logger
}

// NewTradeHandler returns a TradeHandler. limiter may be a NoOp.
func NewTradeHandler(service TradeIngestor, limiter ratelimit.RateLimiter, logger *logging.Logger) *TradeHandler {
	return &TradeHandler{
		service: service,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleWebhook processes one trade notification POST.
func (h *TradeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	ctx := r.Context()

	if !h.allow(ctx, "trade") {
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read body", logging.Listener("trade"), logging.Error(err))
		httputil.WriteJSON(w, http.StatusInternalServerError, models.TradeResponse{OK: false, Error: err.Error()})
		return
	}
	defer r.Body.Close()

	result, err := h.service.IngestTrade(ctx, body, r.Header.Get("X-Webhook-Signature"))
	if err == service.ErrBadSignature {
		// Plain text, matching what signing senders expect.
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Invalid signature"))
		return
	}
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, models.TradeResponse{OK: false, Error: err.Error()})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.TradeResponse{
		OK:               true,
		Timestamp:        result.Timestamp.Format(time.RFC3339),
		LogFile:          result.LogFile,
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

// allow consults the rate limiter. Limiter errors fail open.
func (h *TradeHandler) allow(ctx context.Context, key string) bool {
	allowed, err := h.limiter.Allow(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", logging.Error(err))
		return true
	}
	return allowed
}
