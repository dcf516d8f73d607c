package chat

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

// Channel separates the logs of the two assistants.
type Channel string

const (
	ChannelChat Channel = "chat"
	ChannelSQL  Channel = "sql"
)

// Channels lists every persisted channel.
var Channels = []Channel{ChannelChat, ChannelSQL}

// Store is the key-value persistence behind chat logs. Get returns
// appErrors.ErrNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}

// HistoryKey namespaces a channel's log by a digest of the user identity.
func HistoryKey(channel Channel, identity string) string {
	sum := blake2b.Sum256([]byte(identity))
	return fmt.Sprintf("chat:history:%s:%s", channel, hex.EncodeToString(sum[:16]))
}

// Log is an ordered, persisted sequence of entries for one channel.
type Log[T any] struct {
	store   Store
	channel Channel
	ttl     time.Duration
	logger  *zap.Logger
}

// NewLog constructs a log bound to channel. A zero ttl keeps entries until cleared.
func NewLog[T any](store Store, channel Channel, ttl time.Duration, logger *zap.Logger) *Log[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log[T]{store: store, channel: channel, ttl: ttl, logger: logger}
}

// Load restores the user's log. A corrupt or non-array value is removed from the store
// and an empty log returned.
func (l *Log[T]) Load(ctx context.Context, identity string) ([]T, error) {
	key := HistoryKey(l.channel, identity)
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s history: %w", l.channel, err)
	}

	entries, err := decodeLog[T](raw)
	if err != nil {
		l.logger.Warn("discarding corrupt chat history",
			zap.String("channel", string(l.channel)),
			zap.String("key", key),
			zap.Error(err),
		)
		if rmErr := l.store.Remove(ctx, key); rmErr != nil {
			return nil, fmt.Errorf("remove corrupt %s history: %w", l.channel, rmErr)
		}
		return []T{}, nil
	}
	return entries, nil
}

// Save replaces the user's log.
func (l *Log[T]) Save(ctx context.Context, identity string, entries []T) error {
	if entries == nil {
		entries = []T{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s history: %w", l.channel, err)
	}
	if err := l.store.Set(ctx, HistoryKey(l.channel, identity), payload, l.ttl); err != nil {
		return fmt.Errorf("save %s history: %w", l.channel, err)
	}
	return nil
}

// Append adds entries to the end of the user's log and returns the full log.
func (l *Log[T]) Append(ctx context.Context, identity string, entries ...T) ([]T, error) {
	current, err := l.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	current = append(current, entries...)
	if err := l.Save(ctx, identity, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Clear deletes the user's log for this channel.
func (l *Log[T]) Clear(ctx context.Context, identity string) error {
	return l.store.Remove(ctx, HistoryKey(l.channel, identity))
}

// ClearAll deletes every channel's log for the user.
func ClearAll(ctx context.Context, store Store, identity string) error {
	keys := make([]string, 0, len(Channels))
	for _, channel := range Channels {
		keys = append(keys, HistoryKey(channel, identity))
	}
	return store.Remove(ctx, keys...)
}

// NewHistory returns the log of the conversational assistant.
func NewHistory(store Store, ttl time.Duration, logger *zap.Logger) *Log[models.ChatMessage] {
	return NewLog[models.ChatMessage](store, ChannelChat, ttl, logger)
}

// NewSQLHistory returns the log of the SQL assistant.
func NewSQLHistory(store Store, ttl time.Duration, logger *zap.Logger) *Log[models.SQLExchange] {
	return NewLog[models.SQLExchange](store, ChannelSQL, ttl, logger)
}

func decodeLog[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("stored history is not an array")
	}
	var entries []T
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}
