package domain

import (
	"context"
	"errors"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Conversation represents a chat conversation
type Conversation struct {
	ID        int64     `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name"`
	IsGroup   bool      `json:"is_group" gorm:"column:is_group"`
	CreatedBy int64     `json:"created_by" gorm:"column:created_by;index"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// Member represents a user's membership in a conversation
type Member struct {
	ID             int64      `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	ConversationID int64      `json:"conversation_id" gorm:"column:conversation_id;index:idx_conv_user,unique"`
	UserID         int64      `json:"user_id" gorm:"column:user_id;index:idx_conv_user,unique"`
	JoinedAt       time.Time  `json:"joined_at" gorm:"column:joined_at;autoCreateTime"`
	RemovedAt      *time.Time `json:"removed_at,omitempty" gorm:"column:removed_at"`
	LastReadMsgID  *int64     `json:"last_read_msg_id,omitempty" gorm:"column:last_read_msg_id"`
}

// IsActive reports whether the membership is still in effect
func (m *Member) IsActive() bool {
	return m.RemovedAt == nil
}

var (
	// ErrConversationNotFound is returned when no conversation matches the lookup
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNotMember is returned when the user is not an active member of the conversation
	ErrNotMember = errors.New("you are not a member of this conversation")
)

// ConversationUseCase defines the interface for conversation business logic
type ConversationUseCase interface {
	Create(ctx context.Context, creatorID int64, name string, isGroup bool, memberIDs []int64) (*service.Conversation, error)
	ListForUser(ctx context.Context, userID int64, page, limit int) ([]service.Conversation, error)
	FindOneForUser(ctx context.Context, conversationID, userID int64) (*service.Conversation, error)
	VerifyMembership(ctx context.Context, conversationID, userID int64) error
	AddMember(ctx context.Context, conversationID, requesterID, userID int64) error
	MarkRead(ctx context.Context, conversationID, userID, messageID int64) error
}
