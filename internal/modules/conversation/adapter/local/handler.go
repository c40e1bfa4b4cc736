package local

import (
	"context"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Handler is the in-process adapter for the conversation module.
// It implements service.ConversationService.
type Handler struct {
	convUC *usecase.ConversationUseCase
}

// NewHandler creates a new local conversation handler
func NewHandler(convUC *usecase.ConversationUseCase) *Handler {
	return &Handler{convUC: convUC}
}

// ListForUser returns the user's conversations, paged
func (h *Handler) ListForUser(ctx context.Context, userID int64, page, limit int) ([]service.Conversation, error) {
	return h.convUC.ListForUser(ctx, userID, page, limit)
}

// FindOneForUser returns a conversation iff the user is a member of it
func (h *Handler) FindOneForUser(ctx context.Context, conversationID, userID int64) (*service.Conversation, error) {
	return h.convUC.FindOneForUser(ctx, conversationID, userID)
}

// VerifyMembership returns nil iff the user is an active member
func (h *Handler) VerifyMembership(ctx context.Context, conversationID, userID int64) error {
	return h.convUC.VerifyMembership(ctx, conversationID, userID)
}
