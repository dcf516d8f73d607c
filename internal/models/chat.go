package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// MessageKind is the discriminator of a chat payload.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindTable    MessageKind = "table"
	KindYesNo    MessageKind = "yes_no"
	KindDataType MessageKind = "data_type"
	KindGeneral  MessageKind = "general"
)

// PayloadVisitor must handle every payload variant. Adding a variant without
// extending this interface fails to compile wherever Accept is implemented.
type PayloadVisitor interface {
	VisitText(TextPayload)
	VisitTable(TablePayload)
	VisitYesNo(YesNoPayload)
	VisitDataType(DataTypePayload)
	VisitGeneral(GeneralPayload)
}

// Payload is the closed union of chat message bodies.
type Payload interface {
	Kind() MessageKind
	Accept(PayloadVisitor)
}

// TextPayload is plain text rendered verbatim.
type TextPayload struct {
	Text string `json:"text"`
}

// TablePayload is a tabular answer.
type TablePayload struct {
	Columns     []string        `json:"columns"`
	Rows        [][]interface{} `json:"rows"`
	Explanation string          `json:"explanation,omitempty"`
}

// YesNoPayload is a yes/no answer. Answer may hold values other than yes or no.
type YesNoPayload struct {
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// DataTypePayload is a typed informational answer.
type DataTypePayload struct {
	Information string `json:"information"`
	Explanation string `json:"explanation,omitempty"`
}

// GeneralPayload is a free-text answer with optional explanation.
type GeneralPayload struct {
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

func (TextPayload) Kind() MessageKind     { return KindText }
func (TablePayload) Kind() MessageKind    { return KindTable }
func (YesNoPayload) Kind() MessageKind    { return KindYesNo }
func (DataTypePayload) Kind() MessageKind { return KindDataType }
func (GeneralPayload) Kind() MessageKind  { return KindGeneral }

func (p TextPayload) Accept(v PayloadVisitor)     { v.VisitText(p) }
func (p TablePayload) Accept(v PayloadVisitor)    { v.VisitTable(p) }
func (p YesNoPayload) Accept(v PayloadVisitor)    { v.VisitYesNo(p) }
func (p DataTypePayload) Accept(v PayloadVisitor) { v.VisitDataType(p) }
func (p GeneralPayload) Accept(v PayloadVisitor)  { v.VisitGeneral(p) }

// ChatMessage is one immutable entry of a conversation log.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Payload   Payload
	CreatedAt time.Time
}

// Kind returns the payload discriminator.
func (m ChatMessage) Kind() MessageKind {
	if m.Payload == nil {
		return KindText
	}
	return m.Payload.Kind()
}

type chatMessageWire struct {
	ID        string          `json:"id"`
	Role      ChatRole        `json:"role"`
	Kind      MessageKind     `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// MarshalJSON writes the message with an explicit kind discriminator.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	payload := m.Payload
	if payload == nil {
		payload = TextPayload{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", payload.Kind(), err)
	}
	return json.Marshal(chatMessageWire{
		ID:        m.ID,
		Role:      m.Role,
		Kind:      payload.Kind(),
		Payload:   body,
		CreatedAt: m.CreatedAt,
	})
}

// UnmarshalJSON decodes a stored message, rejecting unknown kinds and roles.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var wire chatMessageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Role != ChatRoleUser && wire.Role != ChatRoleAssistant {
		return fmt.Errorf("unknown chat role %q", wire.Role)
	}

	var payload Payload
	var err error
	switch wire.Kind {
	case KindText:
		payload, err = decodePayload[TextPayload](wire.Payload)
	case KindTable:
		payload, err = decodePayload[TablePayload](wire.Payload)
	case KindYesNo:
		payload, err = decodePayload[YesNoPayload](wire.Payload)
	case KindDataType:
		payload, err = decodePayload[DataTypePayload](wire.Payload)
	case KindGeneral:
		payload, err = decodePayload[GeneralPayload](wire.Payload)
	default:
		return fmt.Errorf("unknown chat message kind %q", wire.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", wire.Kind, err)
	}

	*m = ChatMessage{ID: wire.ID, Role: wire.Role, Payload: payload, CreatedAt: wire.CreatedAt}
	return nil
}

func decodePayload[T Payload](raw json.RawMessage) (Payload, error) {
	var payload T
	if len(raw) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SQLExchange is one round of the SQL-oriented assistant.
type SQLExchange struct {
	ID        string                   `json:"id"`
	Query     string                   `json:"query"`
	SQL       string                   `json:"sql"`
	Columns   []string                 `json:"columns"`
	Data      []map[string]interface{} `json:"data"`
	Error     string                   `json:"error,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}
