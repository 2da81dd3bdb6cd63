// Package normalizer maps heterogeneous webhook payload shapes into the
// canonical field set used for rendering log records.
package normalizer

import (
	"bytes"
	"encoding/json"

	"github.com/telhawk-systems/tradelog/internal/models"
)

// synonyms lists, per canonical key, the payload keys that may carry
// the value. The first present key wins.
var synonyms = []struct {
	canonical string
	keys      []string
}{
	{models.FieldAction, []string{"action", "type"}},
	{models.FieldSymbol, []string{"symbol", "pair", "instrument"}},
	{models.FieldSide, []string{"side", "direction", "type"}},
	{models.FieldPrice, []string{"price", "entry_price", "fill_price"}},
	{models.FieldQuantity, []string{"quantity", "qty", "size"}},
	{models.FieldOrderID, []string{"order_id", "id", "trade_id"}},
	{models.FieldPNL, []string{"pnl", "profit_loss"}},
}

// ParseTrade decodes a trade webhook body. Non-JSON bodies are not an
// error: they degrade to a {"raw": <text>} wrapper so the event is
// still logged. The whole body must be a single JSON value; trailing
// content after it also takes the wrapper path. The returned raw
// string is the exact body for valid JSON and the wrapper for
// everything else.
func ParseTrade(body []byte) (payload map[string]interface{}, raw string) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(&payload); err != nil || payload == nil || dec.More() {
		wrapper := map[string]interface{}{"raw": string(body)}
		wrapped, _ := json.Marshal(wrapper)
		return wrapper, string(wrapped)
	}
	return payload, string(body)
}

// NormalizeTrade extracts the canonical ordered field set from a parsed
// payload. Absent fields are omitted entirely; numbers keep their JSON
// literal form.
func NormalizeTrade(payload map[string]interface{}) []models.Field {
	var fields []models.Field
	for _, s := range synonyms {
		for _, key := range s.keys {
			v, ok := payload[key]
			if !ok {
				continue
			}
			str := stringify(v)
			if str == "" {
				continue
			}
			fields = append(fields, models.Field{Key: s.canonical, Value: str})
			break
		}
	}
	return fields
}

func stringify(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
