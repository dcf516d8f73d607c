package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/chat"
	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/response"
)

type chatService interface {
	Send(ctx context.Context, identity string, req dto.ChatRequest) (*dto.ChatExchangeResponse, error)
	History(ctx context.Context, identity string) ([]chat.View, error)
	Clear(ctx context.Context, identity string) error
}

type sqlChatService interface {
	Generate(ctx context.Context, identity string, req dto.ChatRequest) (*models.SQLExchange, error)
	History(ctx context.Context, identity string) ([]models.SQLExchange, error)
	Clear(ctx context.Context, identity string) error
}

// ChatHandler serves both assistants. Histories are keyed by the caller's identity.
type ChatHandler struct {
	chat chatService
	sql  sqlChatService
}

// NewChatHandler constructs the handler.
func NewChatHandler(chat chatService, sql sqlChatService) *ChatHandler {
	return &ChatHandler{chat: chat, sql: sql}
}

func bindChatRequest(c *gin.Context) (dto.ChatRequest, bool) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return req, false
	}
	return req, true
}

// Send godoc
// @Summary Ask the assistant
// @Description Stores the question, relays it and stores the classified reply
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Question"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}
	exchange, err := h.chat.Send(c.Request.Context(), claims.Identity(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exchange, nil)
}

// History godoc
// @Summary Chat history
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/history [get]
func (h *ChatHandler) History(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	views, err := h.chat.History(c.Request.Context(), claims.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Clear godoc
// @Summary Clear chat history
// @Tags Chat
// @Success 204 {object} response.Envelope
// @Router /chat/history [delete]
func (h *ChatHandler) Clear(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.chat.Clear(c.Request.Context(), claims.Identity()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GenerateSQL godoc
// @Summary Ask the SQL assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Question"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /newChatBot/generate [post]
func (h *ChatHandler) GenerateSQL(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}
	exchange, err := h.sql.Generate(c.Request.Context(), claims.Identity(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exchange, nil)
}

// SQLHistory godoc
// @Summary SQL assistant history
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /newChatBot/history [get]
func (h *ChatHandler) SQLHistory(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	exchanges, err := h.sql.History(c.Request.Context(), claims.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exchanges, nil)
}

// ClearSQL godoc
// @Summary Clear SQL assistant history
// @Tags Chat
// @Success 204 {object} response.Envelope
// @Router /newChatBot/history [delete]
func (h *ChatHandler) ClearSQL(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.sql.Clear(c.Request.Context(), claims.Identity()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
