package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/tradelog/internal/handlers"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/middleware"
)

// NewTradeRouter constructs the trade listener mux: the webhook
// endpoint at the root plus the probe and metrics endpoints.
func NewTradeRouter(trade *handlers.TradeHandler, probes *handlers.ProbeHandler, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", trade.HandleWebhook)
	mux.HandleFunc("/health", probes.Health)
	mux.HandleFunc("/status", probes.Status)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(accessLog("trade", logger, mux))
}

// NewTelegramRouter constructs the message listener mux.
func NewTelegramRouter(telegram *handlers.TelegramHandler, probes *handlers.ProbeHandler, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", telegram.HandleWebhook)
	mux.HandleFunc("/health", probes.Health)
	mux.HandleFunc("/status", probes.Status)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(accessLog("telegram", logger, mux))
}
