package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type mapStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	removed []string
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
		s.removed = append(s.removed, key)
	}
	return nil
}

func sampleLog() []models.ChatMessage {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.ChatMessage{
		{ID: "1", Role: models.ChatRoleUser, Payload: models.TextPayload{Text: "who topped C1?"}, CreatedAt: at},
		{ID: "2", Role: models.ChatRoleAssistant, Payload: models.TablePayload{Columns: []string{"name", "score"}, Rows: [][]interface{}{{"a", 9.5}}, Explanation: "top"}, CreatedAt: at},
		{ID: "3", Role: models.ChatRoleAssistant, Payload: models.YesNoPayload{Answer: "no"}, CreatedAt: at},
		{ID: "4", Role: models.ChatRoleAssistant, Payload: models.DataTypePayload{Information: "i", Explanation: "e"}, CreatedAt: at},
		{ID: "5", Role: models.ChatRoleAssistant, Payload: models.GeneralPayload{Answer: "g"}, CreatedAt: at},
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	history := NewHistory(newMapStore(), time.Hour, nil)

	require.NoError(t, history.Save(ctx, "user-1", sampleLog()))
	restored, err := history.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, sampleLog(), restored)
}

func TestHistoryLoadMissingIsEmpty(t *testing.T) {
	restored, err := NewHistory(newMapStore(), 0, nil).Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, restored)
	assert.NotNil(t, restored)
}

func TestHistoryCorruptValueRemoved(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`{not json`, `{"id":"1"}`, `null`, `"text"`, `[{"id":"1","role":"user","kind":"hologram","payload":{}}]`} {
		store := newMapStore()
		key := HistoryKey(ChannelChat, "user-1")
		store.data[key] = []byte(raw)

		restored, err := NewHistory(store, 0, nil).Load(ctx, "user-1")
		require.NoError(t, err, raw)
		assert.Empty(t, restored, raw)
		_, present := store.data[key]
		assert.False(t, present, raw)
	}
}

func TestHistoryAppendAndNamespacing(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	history := NewHistory(store, 0, nil)
	log := sampleLog()

	_, err := history.Append(ctx, "alice", log[0])
	require.NoError(t, err)
	all, err := history.Append(ctx, "alice", log[1], log[2])
	require.NoError(t, err)
	assert.Len(t, all, 3)

	other, err := history.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.NotEqual(t, HistoryKey(ChannelChat, "alice"), HistoryKey(ChannelChat, "bob"))
	assert.NotEqual(t, HistoryKey(ChannelChat, "alice"), HistoryKey(ChannelSQL, "alice"))
	assert.True(t, strings.HasPrefix(HistoryKey(ChannelSQL, "alice"), "chat:history:sql:"))
	assert.NotContains(t, HistoryKey(ChannelChat, "alice@example.com"), "alice")
}

func TestClearAllRemovesEveryChannel(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	require.NoError(t, NewHistory(store, 0, nil).Save(ctx, "alice", sampleLog()))
	require.NoError(t, NewSQLHistory(store, 0, nil).Save(ctx, "alice", []models.SQLExchange{{Query: "q"}}))
	require.NoError(t, NewHistory(store, 0, nil).Save(ctx, "bob", sampleLog()))

	require.NoError(t, ClearAll(ctx, store, "alice"))
	assert.Len(t, store.data, 1)
	_, ok := store.data[HistoryKey(ChannelChat, "bob")]
	assert.True(t, ok)
}
