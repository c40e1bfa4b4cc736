package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/middleware"
	convdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the message module
type Handler struct {
	svc domain.MessageUseCase
}

// NewHandler creates a new HTTP handler
func NewHandler(svc domain.MessageUseCase) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the message routes; all require authentication.
// List/history lives under the conversation resource; delete is top-level.
func (h *Handler) RegisterRoutes(conversations, messages *gin.RouterGroup) {
	conversations.GET("/:id/messages", h.List)
	messages.DELETE("/:id", h.Delete)
}

// List returns a page of a conversation's messages, newest first
func (h *Handler) List(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	msgs, err := h.svc.ListByConversation(c.Request.Context(), middleware.UserID(c), conversationID, page, limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs, "page": page, "limit": limit})
}

// Delete soft-deletes one of the caller's own messages
func (h *Handler) Delete(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := middleware.UserID(c)
	if err := h.svc.Delete(c.Request.Context(), userID, messageID); err != nil {
		logger.Warn(c.Request.Context()).Err(err).Int64("user_id", userID).Int64("message_id", messageID).Msg("DeleteMessage: failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMessageNotFound), errors.Is(err, convdomain.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, convdomain.ErrNotMember):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
