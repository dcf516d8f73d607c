package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/chat"
	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type chatGateway interface {
	Chat(ctx context.Context, message string) ([]byte, error)
}

// ChatService relays free-form questions to the assistant and keeps a per-user history.
// A user has at most one pending question at a time.
type ChatService struct {
	gateway   chatGateway
	history   *chat.Log[models.ChatMessage]
	guard     *InFlightGuard
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// ChatServiceParams groups constructor dependencies.
type ChatServiceParams struct {
	Gateway   chatGateway
	History   *chat.Log[models.ChatMessage]
	Guard     *InFlightGuard
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(params ChatServiceParams) *ChatService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := params.Guard
	if guard == nil {
		guard = NewInFlightGuard()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &ChatService{
		gateway:   params.Gateway,
		history:   params.History,
		guard:     guard,
		validator: validate,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Send submits a question. The user's message is appended before the backend is asked;
// the reply, or a failure notice, is appended afterwards even if the caller went away.
func (s *ChatService) Send(ctx context.Context, identity string, req dto.ChatRequest) (*dto.ChatExchangeResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "message is required")
	}
	if !s.guard.TryAcquire(identity) {
		return nil, appErrors.ErrChatBusy
	}
	defer s.guard.Release(identity)

	persistCtx := context.WithoutCancel(ctx)
	question := s.message(models.ChatRoleUser, models.TextPayload{Text: req.Message})
	if _, err := s.history.Append(persistCtx, identity, question); err != nil {
		return nil, err
	}

	raw, err := s.gateway.Chat(ctx, req.Message)
	var reply models.ChatMessage
	if err != nil {
		s.logger.Warn("chat request failed", zap.String("identity", identity), zap.Error(err))
		s.metrics.RecordChatSubmission(string(chat.ChannelChat), true)
		reply = s.message(models.ChatRoleAssistant, models.TextPayload{Text: chat.FailureReply})
	} else {
		s.metrics.RecordChatSubmission(string(chat.ChannelChat), false)
		reply = s.message(models.ChatRoleAssistant, chat.Classify(raw))
	}

	if _, appendErr := s.history.Append(persistCtx, identity, reply); appendErr != nil {
		return nil, appendErr
	}
	return &dto.ChatExchangeResponse{
		Question: chat.Render(question),
		Reply:    chat.Render(reply),
		Failed:   err != nil,
	}, nil
}

// History returns the user's rendered chat log, oldest first.
func (s *ChatService) History(ctx context.Context, identity string) ([]chat.View, error) {
	log, err := s.history.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	return chat.RenderAll(log), nil
}

// Clear drops the user's chat log.
func (s *ChatService) Clear(ctx context.Context, identity string) error {
	return s.history.Clear(ctx, identity)
}

func (s *ChatService) message(role models.ChatRole, payload models.Payload) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
}
