package service

import (
	"context"
	"time"
)

// Conversation is the cross-module view of a conversation.
type Conversation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsGroup   bool      `json:"is_group"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationService defines the membership operations exposed to other modules.
// FindOneForUser and VerifyMembership fail with the conversation module's
// domain errors when the user is not an active member.
type ConversationService interface {
	// ListForUser returns the user's conversations, paged (page starts at 1)
	ListForUser(ctx context.Context, userID int64, page, limit int) ([]Conversation, error)
	// FindOneForUser returns a conversation iff the user is a member of it
	FindOneForUser(ctx context.Context, conversationID, userID int64) (*Conversation, error)
	// VerifyMembership returns nil iff the user is an active member
	VerifyMembership(ctx context.Context, conversationID, userID int64) error
}
