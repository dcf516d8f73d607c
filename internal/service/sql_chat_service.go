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

type sqlGateway interface {
	GenerateSQL(ctx context.Context, message string) ([]byte, error)
}

// SQLChatService turns natural-language questions into SQL through the backend and keeps
// the exchanges per user.
type SQLChatService struct {
	gateway   sqlGateway
	history   *chat.Log[models.SQLExchange]
	guard     *InFlightGuard
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// SQLChatServiceParams groups constructor dependencies.
type SQLChatServiceParams struct {
	Gateway   sqlGateway
	History   *chat.Log[models.SQLExchange]
	Guard     *InFlightGuard
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewSQLChatService constructs a SQLChatService.
func NewSQLChatService(params SQLChatServiceParams) *SQLChatService {
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
	return &SQLChatService{
		gateway:   params.Gateway,
		history:   params.History,
		guard:     guard,
		validator: validate,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate asks the backend for SQL answering the question. Failures are recorded as an
// exchange carrying an error message rather than returned.
func (s *SQLChatService) Generate(ctx context.Context, identity string, req dto.ChatRequest) (*models.SQLExchange, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "message is required")
	}
	key := string(chat.ChannelSQL) + ":" + identity
	if !s.guard.TryAcquire(key) {
		return nil, appErrors.ErrChatBusy
	}
	defer s.guard.Release(key)

	exchange := s.exchange(ctx, identity, req.Message)
	exchange.ID = uuid.NewString()
	if exchange.Query == "" {
		exchange.Query = req.Message
	}
	exchange.CreatedAt = s.now().UTC()

	if _, err := s.history.Append(context.WithoutCancel(ctx), identity, exchange); err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (s *SQLChatService) exchange(ctx context.Context, identity, message string) models.SQLExchange {
	raw, err := s.gateway.GenerateSQL(ctx, message)
	if err == nil {
		var exchange models.SQLExchange
		exchange, err = chat.DecodeSQLReply(raw)
		if err == nil {
			s.metrics.RecordChatSubmission(string(chat.ChannelSQL), false)
			return exchange
		}
	}
	s.logger.Warn("sql generation failed", zap.String("identity", identity), zap.Error(err))
	s.metrics.RecordChatSubmission(string(chat.ChannelSQL), true)
	return models.SQLExchange{
		Columns: []string{},
		Data:    []map[string]interface{}{},
		Error:   chat.SQLFailureReply,
	}
}

// History returns the user's SQL exchanges, oldest first.
func (s *SQLChatService) History(ctx context.Context, identity string) ([]models.SQLExchange, error) {
	return s.history.Load(ctx, identity)
}

// Clear drops the user's SQL exchanges.
func (s *SQLChatService) Clear(ctx context.Context, identity string) error {
	return s.history.Clear(ctx, identity)
}
