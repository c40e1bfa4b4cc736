package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/middleware"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the attachment module
type Handler struct {
	svc domain.AttachmentUseCase
}

// NewHandler creates a new HTTP handler
func NewHandler(svc domain.AttachmentUseCase) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the attachment routes; all require authentication
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", h.Upload)
	router.GET("/:id", h.Get)
	router.GET("/:id/download", h.Download)
}

// Upload stores a multipart file and returns its metadata
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	userID := middleware.UserID(c)
	att, err := h.svc.Upload(
		c.Request.Context(),
		userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		logger.Warn(c.Request.Context()).Err(err).Int64("user_id", userID).Msg("Upload: failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, att)
}

// Get returns attachment metadata
func (h *Handler) Get(c *gin.Context) {
	attachmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	att, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), attachmentID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, att)
}

// Download streams the attachment bytes
func (h *Handler) Download(c *gin.Context) {
	attachmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	path, fileName, err := h.svc.Open(c.Request.Context(), middleware.UserID(c), attachmentID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.FileAttachment(path, fileName)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotUploader), errors.Is(err, domain.ErrAttachmentClaimed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
