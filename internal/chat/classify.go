// Package chat implements the assistant response protocol: classification of raw backend
// replies into the closed payload set, rendering to view models and the persisted log.
package chat

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// Replies shown when the backend answer cannot be used.
const (
	FallbackReply = "Sorry, I could not process that request."
	FailureReply  = "Sorry, an error occurred."
)

var legacyUserColumns = []string{"id", "name", "email", "role"}

// Classify turns a raw backend reply into a payload. It never fails: replies that match
// no known shape become a text fallback.
func Classify(raw []byte) models.Payload {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return models.TextPayload{Text: FallbackReply}
	}
	return ClassifyValue(value)
}

// ClassifyValue classifies an already decoded reply. An explicit type discriminator wins;
// field sniffing is only used when it is absent or unknown.
func ClassifyValue(value interface{}) models.Payload {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return models.TextPayload{Text: v}
		}
	case []interface{}:
		if rows, ok := legacyUserRows(v); ok {
			return models.TablePayload{Columns: legacyUserColumns, Rows: rows}
		}
	case map[string]interface{}:
		if payload, ok := byDiscriminator(v); ok {
			return payload
		}
		if payload, ok := sniff(v); ok {
			return payload
		}
	}
	return models.TextPayload{Text: FallbackReply}
}

func byDiscriminator(v map[string]interface{}) (models.Payload, bool) {
	kind, _ := v["type"].(string)
	switch models.MessageKind(strings.ToLower(strings.TrimSpace(kind))) {
	case models.KindText:
		return models.TextPayload{Text: firstString(v, "text", "message", "response", "content")}, true
	case models.KindTable:
		return tableFrom(v), true
	case models.KindYesNo:
		return models.YesNoPayload{Answer: stringOf(v["answer"]), Explanation: stringOf(v["explanation"])}, true
	case models.KindDataType:
		return models.DataTypePayload{Information: stringOf(v["information"]), Explanation: stringOf(v["explanation"])}, true
	case models.KindGeneral:
		return models.GeneralPayload{Answer: stringOf(v["answer"]), Explanation: stringOf(v["explanation"])}, true
	}
	return nil, false
}

func sniff(v map[string]interface{}) (models.Payload, bool) {
	_, hasColumns := v["columns"]
	_, hasRows := v["rows"]
	switch {
	case hasColumns && hasRows:
		return tableFrom(v), true
	case v["information"] != nil:
		return models.DataTypePayload{Information: stringOf(v["information"]), Explanation: stringOf(v["explanation"])}, true
	case v["answer"] != nil:
		answer := stringOf(v["answer"])
		if AnswerVariant(answer) != VariantOther {
			return models.YesNoPayload{Answer: answer, Explanation: stringOf(v["explanation"])}, true
		}
		return models.GeneralPayload{Answer: answer, Explanation: stringOf(v["explanation"])}, true
	}

	if row, ok := legacyUserRow(v); ok {
		return models.TablePayload{Columns: legacyUserColumns, Rows: [][]interface{}{row}}, true
	}
	if nested, ok := v["response"]; ok {
		switch nested.(type) {
		case map[string]interface{}, []interface{}:
			return ClassifyValue(nested), true
		}
	}
	if text := firstString(v, "response", "message", "text", "error"); text != "" {
		return models.TextPayload{Text: text}, true
	}
	return nil, false
}

func tableFrom(v map[string]interface{}) models.TablePayload {
	return models.TablePayload{
		Columns:     stringList(v["columns"]),
		Rows:        rowsOf(v["rows"]),
		Explanation: stringOf(v["explanation"]),
	}
}

// rowsOf keeps rows only when they form a list of lists; anything else yields nil.
func rowsOf(raw interface{}) [][]interface{} {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	rows := make([][]interface{}, 0, len(list))
	for _, item := range list {
		row, ok := item.([]interface{})
		if !ok {
			return nil
		}
		rows = append(rows, row)
	}
	return rows
}

func legacyUserRow(v map[string]interface{}) ([]interface{}, bool) {
	row := make([]interface{}, 0, len(legacyUserColumns))
	for _, column := range legacyUserColumns {
		value, ok := v[column]
		if !ok || value == nil || stringOf(value) == "" {
			return nil, false
		}
		row = append(row, value)
	}
	return row, true
}

func legacyUserRows(list []interface{}) ([][]interface{}, bool) {
	if len(list) == 0 {
		return nil, false
	}
	rows := make([][]interface{}, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		row, ok := legacyUserRow(obj)
		if !ok {
			return nil, false
		}
		rows = append(rows, row)
	}
	return rows, true
}

func stringList(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringOf(item))
	}
	return out
}

func firstString(v map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// stringOf formats a decoded JSON scalar for display.
func stringOf(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
