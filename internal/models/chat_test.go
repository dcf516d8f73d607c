package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindCollector struct{ kinds []MessageKind }

func (k *kindCollector) VisitText(TextPayload)         { k.kinds = append(k.kinds, KindText) }
func (k *kindCollector) VisitTable(TablePayload)       { k.kinds = append(k.kinds, KindTable) }
func (k *kindCollector) VisitYesNo(YesNoPayload)       { k.kinds = append(k.kinds, KindYesNo) }
func (k *kindCollector) VisitDataType(DataTypePayload) { k.kinds = append(k.kinds, KindDataType) }
func (k *kindCollector) VisitGeneral(GeneralPayload)   { k.kinds = append(k.kinds, KindGeneral) }

func TestPayloadAcceptDispatchesByKind(t *testing.T) {
	payloads := []Payload{TextPayload{}, TablePayload{}, YesNoPayload{}, DataTypePayload{}, GeneralPayload{}}
	collector := &kindCollector{}
	for _, p := range payloads {
		p.Accept(collector)
	}
	for i, p := range payloads {
		assert.Equal(t, p.Kind(), collector.kinds[i])
	}
}

func TestChatMessageJSONShape(t *testing.T) {
	msg := ChatMessage{
		ID:        "abc",
		Role:      ChatRoleAssistant,
		Payload:   YesNoPayload{Answer: "yes", Explanation: "x"},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	encoded, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","role":"assistant","kind":"yes_no","payload":{"answer":"yes","explanation":"x"},"created_at":"2024-05-01T00:00:00Z"}`, string(encoded))

	var decoded ChatMessage
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, msg, decoded)
}

func TestChatMessageRejectsUnknownKindAndRole(t *testing.T) {
	var msg ChatMessage
	assert.Error(t, json.Unmarshal([]byte(`{"id":"1","role":"user","kind":"video","payload":{}}`), &msg))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"1","role":"robot","kind":"text","payload":{}}`), &msg))
}

func TestChatMessageNilPayloadEncodesAsText(t *testing.T) {
	encoded, err := json.Marshal(ChatMessage{ID: "1", Role: ChatRoleUser})
	require.NoError(t, err)

	var decoded ChatMessage
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, KindText, decoded.Kind())
}
