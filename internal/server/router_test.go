package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/tradelog/internal/handlers"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/logstore"
	"github.com/telhawk-systems/tradelog/internal/models"
	"github.com/telhawk-systems/tradelog/internal/ratelimit"
	"github.com/telhawk-systems/tradelog/internal/service"
	"github.com/telhawk-systems/tradelog/internal/signature"
	"github.com/telhawk-systems/tradelog/internal/syncer"
)

type recordingSyncer struct {
	requests int
}

func (r *recordingSyncer) RequestSync() syncer.Outcome {
	r.requests++
	return syncer.Triggered
}

type stubStatus struct{}

func (stubStatus) Status(ctx context.Context) (bool, string, string, error) {
	return true, "clean", "abc1234 initial", nil
}

type env struct {
	trade    http.Handler
	telegram http.Handler
	sync     *recordingSyncer
	logsDir  string
}

func newEnv(t *testing.T, secret string) *env {
	logger := logging.New(logging.ParseLevel("error"), "text")
	logsDir := t.TempDir()
	sync := &recordingSyncer{}

	svc := service.NewIngestService(
		signature.New(secret),
		logstore.NewWriter(logsDir),
		sync,
		"-1001234",
		logger,
	)

	limiter := &ratelimit.NoOpRateLimiter{}
	probes := handlers.NewProbeHandler(stubStatus{}, logsDir, logger)

	return &env{
		trade:    NewTradeRouter(handlers.NewTradeHandler(svc, limiter, logger), probes, logger),
		telegram: NewTelegramRouter(handlers.NewTelegramHandler(svc, limiter, logger), probes, logger),
		sync:     sync,
		logsDir:  logsDir,
	}
}

func (e *env) partitionContents(t *testing.T) string {
	entries, err := os.ReadDir(e.logsDir)
	require.NoError(t, err)
	if len(entries) == 0 {
		return ""
	}
	require.Len(t, entries, 1)
	data, err := os.ReadFile(e.logsDir + "/" + entries[0].Name())
	require.NoError(t, err)
	return string(data)
}

func TestTradeFlow_UnsignedAccepted(t *testing.T) {
	e := newEnv(t, "")

	body := []byte(`{"action":"buy","symbol":"BTCUSD","price":65000,"quantity":0.1,"order_id":"abc123"}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e.trade.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.TradeResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.LogFile)
	assert.NotEmpty(t, resp.Timestamp)

	contents := e.partitionContents(t)
	assert.Contains(t, contents, "BUY BTCUSD @ 65000 qty: 0.1 order_id: abc123")
	assert.Contains(t, contents, "# Raw: "+string(body))

	assert.Equal(t, 1, e.sync.requests)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestTradeFlow_SignatureMismatchRejected(t *testing.T) {
	e := newEnv(t, "topsecret")

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"action":"buy"}`)))
	req.Header.Set("X-Webhook-Signature", "0000000000000000000000000000000000000000000000000000000000000000")
	rr := httptest.NewRecorder()

	e.trade.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid signature", rr.Body.String())
	assert.Empty(t, e.partitionContents(t), "no file may be written on auth failure")
	assert.Zero(t, e.sync.requests, "no sync may be triggered on auth failure")
}

func TestTradeFlow_SignedBodyAccepted(t *testing.T) {
	e := newEnv(t, "topsecret")

	body := []byte(`{"action":"sell","symbol":"ETHUSD","price":"3200.5"}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", signature.New("topsecret").Sign(body))
	rr := httptest.NewRecorder()

	e.trade.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, e.partitionContents(t), "SELL ETHUSD @ 3200.5")
}

func TestTelegramFlow_WrongChatAcknowledgedNotLogged(t *testing.T) {
	e := newEnv(t, "")

	body := []byte(`{"message":{"chat":{"id":42},"text":"spam","date":1773571200}}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e.telegram.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, e.partitionContents(t), "mismatched chat must not be written")
	assert.Zero(t, e.sync.requests)
}

func TestTelegramFlow_TargetChatLogged(t *testing.T) {
	e := newEnv(t, "")

	body := []byte(`{"message":{"chat":{"id":-1001234},"text":"closed BTC long","date":1773571200}}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e.telegram.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, e.partitionContents(t), "TELEGRAM closed BTC long")
	assert.Equal(t, 1, e.sync.requests)
}

func TestProbeEndpoints(t *testing.T) {
	e := newEnv(t, "")

	for _, path := range []string{"/health", "/status", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		e.trade.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "GET %s", path)
	}
}

func TestUnknownPath(t *testing.T) {
	e := newEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/nope", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	e.trade.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
