package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// Attachment represents an uploaded file's metadata. The bytes live on
// disk under the configured attachment directory; only metadata is stored.
type Attachment struct {
	ID          int64     `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	UploaderID  int64     `json:"uploader_id" gorm:"column:uploader_id;index"`
	MessageID   *int64    `json:"message_id,omitempty" gorm:"column:message_id;index"`
	FileName    string    `json:"file_name" gorm:"column:file_name;not null"`
	MimeType    string    `json:"mime_type" gorm:"column:mime_type"`
	SizeBytes   int64     `json:"size_bytes" gorm:"column:size_bytes"`
	StorageName string    `json:"-" gorm:"column:storage_name;unique;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

var (
	// ErrAttachmentNotFound is returned when no attachment matches the lookup
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrAttachmentClaimed is returned when an attachment is already bound to a message
	ErrAttachmentClaimed = errors.New("attachment already belongs to a message")
	// ErrNotUploader is returned when a user references someone else's upload
	ErrNotUploader = errors.New("attachment was uploaded by another user")
	// ErrTooLarge is returned when an upload exceeds the size cap
	ErrTooLarge = errors.New("attachment exceeds the maximum allowed size")
)

// AttachmentUseCase defines the interface for attachment business logic
type AttachmentUseCase interface {
	Upload(ctx context.Context, uploaderID int64, fileName, mimeType string, size int64, r io.Reader) (*service.Attachment, error)
	Get(ctx context.Context, userID, attachmentID int64) (*service.Attachment, error)
	// Open resolves the on-disk path and original file name for download
	Open(ctx context.Context, userID, attachmentID int64) (path, fileName string, err error)
	Claim(ctx context.Context, uploaderID, messageID int64, ids []int64) ([]service.Attachment, error)
}
