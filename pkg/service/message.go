package service

import (
	"context"
	"time"
)

// SendMessageInput is the payload for creating a message.
type SendMessageInput struct {
	ConversationID int64   `json:"conversation_id"`
	Content        string  `json:"content"`
	ReplyToID      *int64  `json:"reply_to_id,omitempty"`
	AttachmentIDs  []int64 `json:"attachment_ids,omitempty"`
}

// Message is a fully hydrated stored message, ready for broadcast.
type Message struct {
	ID             int64        `json:"id"`
	ConversationID int64        `json:"conversation_id"`
	SenderID       int64        `json:"sender_id"`
	SenderName     string       `json:"sender_name"`
	SenderAvatar   string       `json:"sender_avatar"`
	Content        string       `json:"content"`
	ReplyToID      *int64       `json:"reply_to_id,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// MessageService defines the message persistence operations exposed to the gateway.
type MessageService interface {
	// Send validates membership, persists the message and returns the
	// hydrated record. The caller must not broadcast before Send returns.
	Send(ctx context.Context, senderID int64, in SendMessageInput) (*Message, error)
}
