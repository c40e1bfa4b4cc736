package domain

import (
	"context"
	"errors"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"gorm.io/gorm"
)

// Message represents a stored chat message
type Message struct {
	ID             int64          `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	ConversationID int64          `json:"conversation_id" gorm:"column:conversation_id;index"`
	SenderID       int64          `json:"sender_id" gorm:"column:sender_id;index"`
	Content        string         `json:"content" gorm:"column:content"`
	ReplyToID      *int64         `json:"reply_to_id,omitempty" gorm:"column:reply_to_id"`
	CreatedAt      time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

var (
	// ErrMessageNotFound is returned when no message matches the lookup
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotOwner is returned when a user tries to delete someone else's message
	ErrNotOwner = errors.New("you are not the owner of this message")
	// ErrEmptyMessage is returned when a message has neither content nor attachments
	ErrEmptyMessage = errors.New("message must have content or attachments")
)

// MessageUseCase defines the interface for message business logic
type MessageUseCase interface {
	Send(ctx context.Context, senderID int64, in service.SendMessageInput) (*service.Message, error)
	ListByConversation(ctx context.Context, userID, conversationID int64, page, limit int) ([]service.Message, error)
	Delete(ctx context.Context, userID, messageID int64) error
}
