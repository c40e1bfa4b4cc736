package local

import (
	"context"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Handler is the in-process adapter for the user module.
// It implements service.UserService.
type Handler struct {
	userUC *usecase.UserUseCase
}

// NewHandler creates a new local user handler
func NewHandler(userUC *usecase.UserUseCase) *Handler {
	return &Handler{
		userUC: userUC,
	}
}

// ValidateToken validates a token and returns its identity payload
func (h *Handler) ValidateToken(ctx context.Context, token string) (*service.Identity, error) {
	ident, err := h.userUC.ValidateToken(ctx, token)
	if err != nil {
		logger.Debug(ctx).Err(err).Msg("Token validation failed")
		return nil, err
	}

	logger.Debug(ctx).
		Int64("user_id", ident.UserID).
		Msg("Token validated")

	return ident, nil
}

// GetProfile returns the public profile for a user
func (h *Handler) GetProfile(ctx context.Context, userID int64) (*service.Profile, error) {
	return h.userUC.GetProfile(ctx, userID)
}
