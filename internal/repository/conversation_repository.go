package repository

import (
	"context"
	"errors"
	"time"

	"vault-copilot-be/internal/model"
	"vault-copilot-be/pkg/memory"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IConversationRepository interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	FindById(ctx context.Context, id uuid.UUID) (*model.Conversation, error)
	ListByVault(ctx context.Context, vaultId string) ([]model.Conversation, error)
	AppendMessages(ctx context.Context, messages []*model.ConversationMessage) error
	TurnsNewestFirst(ctx context.Context, conversationId uuid.UUID) ([]memory.Turn, error)
}

type ConversationRepositoryImpl struct {
	db *gorm.DB
}

// The repository doubles as the turn source for context windowing.
var _ memory.TurnSource = &ConversationRepositoryImpl{}

func NewConversationRepository(db *gorm.DB) IConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *model.Conversation) error {
	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *ConversationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) ListByVault(ctx context.Context, vaultId string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultId).
		Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *ConversationRepositoryImpl) AppendMessages(ctx context.Context, messages []*model.ConversationMessage) error {
	if len(messages) == 0 {
		return nil
	}
	now := time.Now()
	for _, m := range messages {
		if m.Id == uuid.Nil {
			m.Id = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range messages {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", messages[0].ConversationId).
			Update("updated_at", now).Error
	})
}

func (r *ConversationRepositoryImpl) TurnsNewestFirst(ctx context.Context, conversationId uuid.UUID) ([]memory.Turn, error) {
	var rows []model.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	turns := make([]memory.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, memory.Turn{
			Role:      memory.Role(row.Role),
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
		})
	}
	return turns, nil
}
