package models

import (
	"strings"
	"time"
)

// SourceType identifies which listener produced a record.
type SourceType string

const (
	SourceTrade   SourceType = "TRADE"
	SourceMessage SourceType = "MESSAGE"
)

// Field is one canonical key/value pair. Fields keep their insertion
// order so rendered records are stable across runs.
type Field struct {
	Key   string
	Value string
}

// Canonical field keys produced by normalization.
const (
	FieldAction   = "action"
	FieldSymbol   = "symbol"
	FieldSide     = "side"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
	FieldOrderID  = "order_id"
	FieldPNL      = "pnl"
)

// EventRecord is one logged occurrence. Created at request-handling
// time, appended once, immutable thereafter.
type EventRecord struct {
	Timestamp time.Time
	Source    SourceType
	Fields    []Field
	Raw       string
}

// Render produces the text form of the record: a summary line built
// from the canonical fields, then the verbatim payload for audit and
// replay. Absent fields are omitted, never written as placeholders.
func (r *EventRecord) Render() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(r.Timestamp.Format(time.RFC3339))
	b.WriteString("] ")

	if r.Source == SourceMessage {
		b.WriteString("TELEGRAM ")
		b.WriteString(r.Raw)
		return b.String()
	}

	action := "UNKNOWN"
	for _, f := range r.Fields {
		if f.Key == FieldAction {
			action = strings.ToUpper(f.Value)
		}
	}
	b.WriteString(action)

	for _, f := range r.Fields {
		switch f.Key {
		case FieldAction:
			// already first on the line
		case FieldSymbol:
			b.WriteString(" " + f.Value)
		case FieldSide:
			b.WriteString(" " + strings.ToUpper(f.Value))
		case FieldPrice:
			b.WriteString(" @ " + f.Value)
		case FieldQuantity:
			b.WriteString(" qty: " + f.Value)
		case FieldOrderID:
			b.WriteString(" order_id: " + f.Value)
		case FieldPNL:
			b.WriteString(" pnl: " + f.Value)
		}
	}

	b.WriteString("\n# Raw: ")
	b.WriteString(r.Raw)
	return b.String()
}

// Get returns the value of the named canonical field, or "" when absent.
func (r *EventRecord) Get(key string) string {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// TradeResponse is the webhook response body for the trade listener.
type TradeResponse struct {
	OK               bool    `json:"ok"`
	Timestamp        string  `json:"timestamp,omitempty"`
	LogFile          string  `json:"log_file,omitempty"`
	ProcessingTimeMS float64 `json:"processing_time_ms,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// HealthResponse is the static configuration echo for /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	LogsDir   string `json:"logs_dir"`
}

// StatusResponse reports working-tree cleanliness for /status.
type StatusResponse struct {
	Status     string `json:"status"`
	GitClean   bool   `json:"git_clean"`
	GitStatus  string `json:"git_status"`
	LastCommit string `json:"last_commit"`
	LogsDir    string `json:"logs_dir"`
}

// IngestionStats tracks cumulative listener activity.
type IngestionStats struct {
	TotalEvents      int64     `json:"total_events"`
	TotalBytes       int64     `json:"total_bytes"`
	SuccessfulEvents int64     `json:"successful_events"`
	DiscardedEvents  int64     `json:"discarded_events"`
	FailedEvents     int64     `json:"failed_events"`
	LastEvent        time.Time `json:"last_event"`
}
