// Package service implements the ingestion flow shared by both
// listeners: verify, normalize, append, trigger sync, respond.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/metrics"
	"github.com/telhawk-systems/tradelog/internal/models"
	"github.com/telhawk-systems/tradelog/internal/normalizer"
	"github.com/telhawk-systems/tradelog/internal/signature"
	"github.com/telhawk-systems/tradelog/internal/syncer"
)

// ErrBadSignature marks a request whose signature header did not match
// the computed digest. Such requests are discarded before any append.
var ErrBadSignature = errors.New("invalid signature")

// Appender is the durable-append surface of the log store.
type Appender interface {
	Append(record *models.EventRecord) (string, error)
}

// SyncRequester is the non-blocking sync trigger.
type SyncRequester interface {
	RequestSync() syncer.Outcome
}

// TradeResult reports a completed trade append.
type TradeResult struct {
	LogFile   string
	Timestamp time.Time
}

// MessageResult reports a handled Telegram update. Discarded updates
// are still acknowledged upstream with 200.
type MessageResult struct {
	Discarded bool
	Reason    string
	LogFile   string
}

// IngestService executes the dispatcher state machine for both
// listeners. Sync outcomes never influence the returned result: the
// response reflects the local-append outcome only.
type IngestService struct {
	verifier *signature.Verifier
	writer   Appender
	syncer   SyncRequester
	chatID   string
	logger   *logging.Logger

	stats      models.IngestionStats
	statsMutex sync.RWMutex
}

// NewIngestService wires the dispatcher. chatID is the only Telegram
// chat whose messages are logged; empty accepts none.
func NewIngestService(verifier *signature.Verifier, writer Appender, sync SyncRequester, chatID string, logger *logging.Logger) *IngestService {
	return &IngestService{
		verifier: verifier,
		writer:   writer,
		syncer:   sync,
		chatID:   chatID,
		logger:   logger,
	}
}

// IngestTrade handles one trade webhook body: verify the signature,
// normalize the payload, append, then fire the sync trigger.
func (s *IngestService) IngestTrade(ctx context.Context, body []byte, signatureHeader string) (*TradeResult, error) {
	metrics.EventBytesTotal.Add(float64(len(body)))

	if !s.verifier.Verify(body, signatureHeader) {
		s.logger.WarnContext(ctx, "signature verification failed", logging.Listener("trade"))
		metrics.EventsTotal.WithLabelValues("trade", "auth_error").Inc()
		s.updateStats(len(body), false, false)
		return nil, ErrBadSignature
	}

	payload, raw := normalizer.ParseTrade(body)
	record := &models.EventRecord{
		Source: models.SourceTrade,
		Fields: normalizer.NormalizeTrade(payload),
		Raw:    raw,
	}

	path, err := s.writer.Append(record)
	if err != nil {
		s.logger.ErrorContext(ctx, "append failed", logging.Listener("trade"), logging.Error(err))
		metrics.EventsTotal.WithLabelValues("trade", "write_error").Inc()
		s.updateStats(len(body), false, false)
		return nil, fmt.Errorf("write log entry: %w", err)
	}

	// Fire and continue; the response never waits on replication.
	outcome := s.syncer.RequestSync()
	s.logger.DebugContext(ctx, "sync requested", logging.Outcome(string(outcome)))

	metrics.EventsTotal.WithLabelValues("trade", "ok").Inc()
	s.updateStats(len(body), true, false)
	s.logger.InfoContext(ctx, "trade event logged", logging.Listener("trade"), logging.LogFile(path))

	return &TradeResult{LogFile: path, Timestamp: record.Timestamp}, nil
}

// telegramUpdate is the inbound Telegram bot API envelope, reduced to
// the parts this service reads.
type telegramUpdate struct {
	Message *struct {
		Chat struct {
			ID interface{} `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
		Date int64  `json:"date"`
	} `json:"message"`
}

// IngestTelegramUpdate handles one Telegram update envelope. Updates
// without a text body, or from a chat other than the configured
// target, are discarded but still acknowledged: the upstream sender
// expects a 200 regardless, and retrying would not change the outcome.
func (s *IngestService) IngestTelegramUpdate(ctx context.Context, body []byte) (*MessageResult, error) {
	metrics.EventBytesTotal.Add(float64(len(body)))

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var update telegramUpdate
	if err := dec.Decode(&update); err != nil {
		metrics.EventsTotal.WithLabelValues("telegram", "parse_error").Inc()
		s.updateStats(len(body), false, false)
		return nil, fmt.Errorf("parse update: %w", err)
	}

	if update.Message == nil {
		return s.discard(ctx, len(body), "no message in update")
	}
	if update.Message.Text == "" {
		return s.discard(ctx, len(body), "empty message text")
	}

	// String-compare both sides so a numeric chat id matches its
	// quoted form. Preserved permissive behavior.
	chatID := stringifyChatID(update.Message.Chat.ID)
	if chatID != s.chatID {
		s.logger.WarnContext(ctx, "chat id mismatch", logging.ChatID(chatID))
		return s.discard(ctx, len(body), "chat id mismatch")
	}

	record := &models.EventRecord{
		Source: models.SourceMessage,
		Raw:    update.Message.Text,
	}
	if update.Message.Date > 0 {
		// Message events carry the sender's clock.
		record.Timestamp = time.Unix(update.Message.Date, 0)
	}

	path, err := s.writer.Append(record)
	if err != nil {
		s.logger.ErrorContext(ctx, "append failed", logging.Listener("telegram"), logging.Error(err))
		metrics.EventsTotal.WithLabelValues("telegram", "write_error").Inc()
		s.updateStats(len(body), false, false)
		return nil, fmt.Errorf("write log entry: %w", err)
	}

	outcome := s.syncer.RequestSync()
	s.logger.DebugContext(ctx, "sync requested", logging.Outcome(string(outcome)))

	metrics.EventsTotal.WithLabelValues("telegram", "ok").Inc()
	s.updateStats(len(body), true, false)
	s.logger.InfoContext(ctx, "telegram message logged", logging.Listener("telegram"), logging.LogFile(path))

	return &MessageResult{LogFile: path}, nil
}

func (s *IngestService) discard(ctx context.Context, size int, reason string) (*MessageResult, error) {
	s.logger.InfoContext(ctx, "update discarded", logging.Listener("telegram"), "reason", reason)
	metrics.EventsTotal.WithLabelValues("telegram", "discarded").Inc()
	s.updateStats(size, false, true)
	return &MessageResult{Discarded: true, Reason: reason}, nil
}

// Stats returns a snapshot of cumulative ingestion counters.
func (s *IngestService) Stats() models.IngestionStats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}

func (s *IngestService) updateStats(size int, success, discarded bool) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	s.stats.TotalEvents++
	s.stats.TotalBytes += int64(size)
	s.stats.LastEvent = time.Now()
	switch {
	case discarded:
		s.stats.DiscardedEvents++
	case success:
		s.stats.SuccessfulEvents++
	default:
		s.stats.FailedEvents++
	}
}

func stringifyChatID(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}
