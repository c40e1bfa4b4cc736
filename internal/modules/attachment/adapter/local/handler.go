package local

import (
	"context"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Handler is the in-process adapter for the attachment module.
// It implements service.AttachmentService.
type Handler struct {
	attUC *usecase.AttachmentUseCase
}

// NewHandler creates a new local attachment handler
func NewHandler(attUC *usecase.AttachmentUseCase) *Handler {
	return &Handler{attUC: attUC}
}

// Claim binds previously uploaded attachments to a message
func (h *Handler) Claim(ctx context.Context, uploaderID, messageID int64, ids []int64) ([]service.Attachment, error) {
	return h.attUC.Claim(ctx, uploaderID, messageID, ids)
}
