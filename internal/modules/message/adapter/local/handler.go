package local

import (
	"context"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Handler is the in-process adapter for the message module.
// It implements service.MessageService.
type Handler struct {
	msgUC *usecase.MessageUseCase
}

// NewHandler creates a new local message handler
func NewHandler(msgUC *usecase.MessageUseCase) *Handler {
	return &Handler{msgUC: msgUC}
}

// Send persists a message and returns the hydrated record
func (h *Handler) Send(ctx context.Context, senderID int64, in service.SendMessageInput) (*service.Message, error) {
	return h.msgUC.Send(ctx, senderID, in)
}
