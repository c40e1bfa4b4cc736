package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"gorm.io/gorm"
)

// MessageRepository handles message persistence
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID. Soft-deleted messages are not returned.
func (r *MessageRepository) GetByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.WithContext(ctx).First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

// ListByConversation returns messages for a conversation, newest first, paged
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64, page, limit int) ([]domain.Message, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// SoftDelete marks a message as deleted
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID int64) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Message{}, messageID).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
