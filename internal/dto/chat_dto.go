package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	VaultId         string     `json:"vault_id" validate:"required"`
	ConversationId  *uuid.UUID `json:"conversation_id,omitempty"`
	Message         string     `json:"message" validate:"required,min=1,max=8000"`
	RetrievalMode   string     `json:"retrieval_mode,omitempty" validate:"omitempty,oneof=NONE RAG WEB HYBRID"`
	CurrentNotePath string     `json:"current_note_path,omitempty"`
	Platform        string     `json:"platform,omitempty" validate:"omitempty,oneof=desktop mobile"`
}

type SendMessageResponse struct {
	ConversationId uuid.UUID       `json:"conversation_id"`
	Reply          string          `json:"reply"`
	Handled        string          `json:"handled"` // "agent" | "chat"
	Result         *AgentResultDTO `json:"result,omitempty"`
}

type ConversationSummaryResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ConversationMessageResponse struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
