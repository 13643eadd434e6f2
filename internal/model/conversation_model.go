package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	VaultId   string    `gorm:"index"`
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type ConversationMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;index"`
	Role           string
	Text           string `gorm:"type:text"`
	CreatedAt      time.Time
}
