package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/chat"
	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/models"
	"github.com/noah-isme/course-progress-api/internal/repository"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type fakeChatGateway struct {
	reply   []byte
	err     error
	started chan struct{}
	release chan struct{}
	sqlErr  error
	sql     []byte
}

func (f *fakeChatGateway) Chat(ctx context.Context, _ string) ([]byte, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.reply, f.err
}

func (f *fakeChatGateway) GenerateSQL(context.Context, string) ([]byte, error) {
	return f.sql, f.sqlErr
}

func newTestChatService(gateway *fakeChatGateway, store chat.Store, metrics *MetricsService) *ChatService {
	svc := NewChatService(ChatServiceParams{
		Gateway: gateway,
		History: chat.NewHistory(store, time.Hour, zap.NewNop()),
		Metrics: metrics,
		Logger:  zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestChatSendClassifiesReply(t *testing.T) {
	store := repository.NewMemoryStore()
	gateway := &fakeChatGateway{reply: []byte(`{"type":"yes_no","answer":"Yes","explanation":"  all done "}`)}
	svc := newTestChatService(gateway, store, nil)

	resp, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "  did everyone submit?  "})
	require.NoError(t, err)
	assert.False(t, resp.Failed)
	assert.Equal(t, chat.ViewText, resp.Question.Kind)
	assert.Equal(t, "did everyone submit?", resp.Question.Text)
	assert.Equal(t, chat.ViewYesNo, resp.Reply.Kind)
	assert.Equal(t, chat.VariantYes, resp.Reply.Variant)
	assert.Equal(t, "all done", resp.Reply.Explanation)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ChatRoleUser, history[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, history[1].Role)
	assert.NotEmpty(t, history[1].ID)
}

func TestChatSendGatewayFailureAppendsNotice(t *testing.T) {
	store := repository.NewMemoryStore()
	metrics := NewMetricsService()
	gateway := &fakeChatGateway{err: appErrors.ErrUpstream}
	svc := newTestChatService(gateway, store, metrics)

	resp, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, resp.Failed)
	assert.Equal(t, chat.ViewText, resp.Reply.Kind)
	assert.Equal(t, chat.FailureReply, resp.Reply.Text)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.ChatSubmissions)
	assert.Equal(t, uint64(1), snapshot.ChatFailures)

	// The guard is released after a failure.
	gateway.err = nil
	gateway.reply = []byte(`"plain answer"`)
	resp, err = svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "again"})
	require.NoError(t, err)
	assert.Equal(t, "plain answer", resp.Reply.Text)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestChatSendRejectsEmptyMessage(t *testing.T) {
	svc := newTestChatService(&fakeChatGateway{}, repository.NewMemoryStore(), nil)

	_, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestChatSendRejectsConcurrentSubmission(t *testing.T) {
	gateway := &fakeChatGateway{
		reply:   []byte(`{"response":"ok"}`),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestChatService(gateway, repository.NewMemoryStore(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "first"})
		done <- err
	}()
	<-gateway.started

	_, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "second"})
	assert.True(t, errors.Is(err, appErrors.ErrChatBusy))

	close(gateway.release)
	require.NoError(t, <-done)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "ok", history[1].Text)
}

func TestChatSendPersistsAfterCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gateway := &fakeChatGateway{err: context.Canceled}
	cancel()
	store := repository.NewMemoryStore()
	svc := newTestChatService(gateway, store, nil)

	resp, err := svc.Send(ctx, "u1", dto.ChatRequest{Message: "late"})
	require.NoError(t, err)
	assert.True(t, resp.Failed)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestChatClearIsPerUser(t *testing.T) {
	store := repository.NewMemoryStore()
	gateway := &fakeChatGateway{reply: []byte(`"hi"`)}
	svc := newTestChatService(gateway, store, nil)

	_, err := svc.Send(context.Background(), "u1", dto.ChatRequest{Message: "a"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "u2", dto.ChatRequest{Message: "b"})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "u1"))

	first, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, first)
	second, err := svc.History(context.Background(), "u2")
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestSQLChatGenerate(t *testing.T) {
	store := repository.NewMemoryStore()
	gateway := &fakeChatGateway{sql: []byte(`{"query":"top students","sql":"SELECT name, score FROM s","data":[{"name":"a","score":9},{"name":"b","score":7}]}`)}
	svc := NewSQLChatService(SQLChatServiceParams{Gateway: gateway, History: chat.NewSQLHistory(store, time.Hour, nil)})

	exchange, err := svc.Generate(context.Background(), "u1", dto.ChatRequest{Message: "who scored best?"})
	require.NoError(t, err)
	assert.Equal(t, "top students", exchange.Query)
	assert.Equal(t, []string{"name", "score"}, exchange.Columns)
	assert.Len(t, exchange.Data, 2)
	assert.Empty(t, exchange.Error)
	assert.NotEmpty(t, exchange.ID)

	gateway.sql = nil
	gateway.sqlErr = appErrors.ErrUpstream
	failed, err := svc.Generate(context.Background(), "u1", dto.ChatRequest{Message: "and now?"})
	require.NoError(t, err)
	assert.Equal(t, chat.SQLFailureReply, failed.Error)
	assert.Equal(t, "and now?", failed.Query)
	assert.Empty(t, failed.Data)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "top students", history[0].Query)

	chatHistory := chat.NewHistory(store, time.Hour, nil)
	messages, err := chatHistory.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}
