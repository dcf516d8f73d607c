package dto

import "github.com/noah-isme/course-progress-api/internal/chat"

// ChatRequest is a question submitted to either assistant.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatExchangeResponse pairs the stored question with the assistant reply, both rendered.
type ChatExchangeResponse struct {
	Question chat.View `json:"question"`
	Reply    chat.View `json:"reply"`
	Failed   bool      `json:"failed"`
}
