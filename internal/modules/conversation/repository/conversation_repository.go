package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"gorm.io/gorm"
)

// ConversationRepository handles conversation and membership persistence
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a conversation and its initial members in one transaction
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation, memberIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}

		members := make([]domain.Member, 0, len(memberIDs))
		for _, userID := range memberIDs {
			members = append(members, domain.Member{
				ConversationID: conv.ID,
				UserID:         userID,
			})
		}
		if err := tx.Create(&members).Error; err != nil {
			return fmt.Errorf("failed to create members: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, conversationID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// ListForUser returns the conversations the user is an active member of, paged
func (r *ConversationRepository) ListForUser(ctx context.Context, userID int64, page, limit int) ([]domain.Conversation, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN members ON members.conversation_id = conversations.id").
		Where("members.user_id = ? AND members.removed_at IS NULL", userID).
		Order("conversations.id").
		Offset(offset).
		Limit(limit).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// GetMember returns the active membership row for a user in a conversation
func (r *ConversationRepository) GetMember(ctx context.Context, conversationID, userID int64) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ? AND removed_at IS NULL", conversationID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// AddMember inserts a membership row
func (r *ConversationRepository) AddMember(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user is already a member")
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateLastRead updates the member's last-read message id
func (r *ConversationRepository) UpdateLastRead(ctx context.Context, conversationID, userID, messageID int64) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("conversation_id = ? AND user_id = ? AND removed_at IS NULL", conversationID, userID).
		Update("last_read_msg_id", messageID).Error
	if err != nil {
		return fmt.Errorf("failed to update last read: %w", err)
	}
	return nil
}
