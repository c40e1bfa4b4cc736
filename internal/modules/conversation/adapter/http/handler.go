package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/middleware"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the conversation module
type Handler struct {
	svc domain.ConversationUseCase
}

// NewHandler creates a new HTTP handler
func NewHandler(svc domain.ConversationUseCase) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all conversation routes; all require authentication
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", h.Create)
	router.GET("", h.List)
	router.GET("/:id", h.Get)
	router.POST("/:id/members", h.AddMember)
	router.POST("/:id/read", h.MarkRead)
}

type createRequest struct {
	Name      string  `json:"name"`
	IsGroup   bool    `json:"is_group"`
	MemberIDs []int64 `json:"member_ids" binding:"required,min=1"`
}

type addMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type markReadRequest struct {
	MessageID int64 `json:"message_id" binding:"required"`
}

// Create creates a conversation
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	conv, err := h.svc.Create(c.Request.Context(), userID, req.Name, req.IsGroup, req.MemberIDs)
	if err != nil {
		logger.Error(c.Request.Context()).Err(err).Int64("user_id", userID).Msg("CreateConversation: failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// List returns the authenticated user's conversations, paged
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	convs, err := h.svc.ListForUser(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": convs, "page": page, "limit": limit})
}

// Get returns a single conversation the user is a member of
func (h *Handler) Get(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.svc.FindOneForUser(c.Request.Context(), conversationID, middleware.UserID(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// AddMember adds a user to a group conversation
func (h *Handler) AddMember(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.AddMember(c.Request.Context(), conversationID, middleware.UserID(c), req.UserID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkRead persists the member's read position
func (h *Handler) MarkRead(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), conversationID, middleware.UserID(c), req.MessageID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
