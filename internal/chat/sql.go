package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// SQLFailureReply is recorded when the SQL assistant cannot answer.
const SQLFailureReply = "Failed to get response. Please try again."

type sqlReply struct {
	Query string          `json:"query"`
	SQL   string          `json:"sql"`
	Data  json.RawMessage `json:"data"`
}

// DecodeSQLReply parses the SQL assistant reply {query, sql, data}. Column order follows
// the keys of the first data row; a data value that is not an array yields no rows.
func DecodeSQLReply(raw []byte) (models.SQLExchange, error) {
	var reply sqlReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return models.SQLExchange{}, fmt.Errorf("decode sql reply: %w", err)
	}

	exchange := models.SQLExchange{
		Query:   reply.Query,
		SQL:     reply.SQL,
		Columns: []string{},
		Data:    []map[string]interface{}{},
	}

	data := bytes.TrimSpace(reply.Data)
	if len(data) == 0 || data[0] != '[' {
		return exchange, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return exchange, nil
	}
	for _, row := range rows {
		var values map[string]interface{}
		if err := json.Unmarshal(row, &values); err != nil || values == nil {
			continue
		}
		if len(exchange.Data) == 0 {
			columns, err := objectKeys(row)
			if err == nil {
				exchange.Columns = columns
			}
		}
		exchange.Data = append(exchange.Data, values)
	}
	return exchange, nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("not an object")
	}

	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("unexpected object key")
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
