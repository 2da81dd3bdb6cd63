package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRender_TradeAllFields(t *testing.T) {
	record := &EventRecord{
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Source:    SourceTrade,
		Fields: []Field{
			{Key: FieldAction, Value: "buy"},
			{Key: FieldSymbol, Value: "BTCUSD"},
			{Key: FieldSide, Value: "long"},
			{Key: FieldPrice, Value: "65000"},
			{Key: FieldQuantity, Value: "0.1"},
			{Key: FieldOrderID, Value: "abc123"},
			{Key: FieldPNL, Value: "12.5"},
		},
		Raw: `{"action":"buy"}`,
	}

	rendered := record.Render()

	assert.Equal(t,
		"[2026-03-15T10:00:00Z] BUY BTCUSD LONG @ 65000 qty: 0.1 order_id: abc123 pnl: 12.5\n# Raw: {\"action\":\"buy\"}",
		rendered)
}

func TestRender_TradeAbsentFieldsOmitted(t *testing.T) {
	record := &EventRecord{
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Source:    SourceTrade,
		Fields:    []Field{{Key: FieldSymbol, Value: "ETHUSD"}},
		Raw:       `{"symbol":"ETHUSD"}`,
	}

	rendered := record.Render()

	assert.Contains(t, rendered, "UNKNOWN ETHUSD\n")
	assert.NotContains(t, rendered, "qty:")
	assert.NotContains(t, rendered, "order_id:")
	assert.NotContains(t, rendered, "null")
}

func TestRender_Message(t *testing.T) {
	record := &EventRecord{
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Source:    SourceMessage,
		Raw:       "closed BTC long at 65000",
	}

	assert.Equal(t, "[2026-03-15T10:00:00Z] TELEGRAM closed BTC long at 65000", record.Render())
}

func TestGet(t *testing.T) {
	record := &EventRecord{
		Fields: []Field{{Key: FieldSymbol, Value: "BTCUSD"}},
	}

	assert.Equal(t, "BTCUSD", record.Get(FieldSymbol))
	assert.Empty(t, record.Get(FieldPrice))
}
