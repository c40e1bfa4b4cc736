// Package usecase implements the business logic for the attachment module.
package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// AttachmentUseCase handles upload metadata and message binding
type AttachmentUseCase struct {
	attRepo *repository.AttachmentRepository
	dir     string
	maxSize int64
}

// NewAttachmentUseCase creates a new attachment use case
func NewAttachmentUseCase(attRepo *repository.AttachmentRepository, dir string, maxSize int64) *AttachmentUseCase {
	once.Do(initSnowflake)
	return &AttachmentUseCase{
		attRepo: attRepo,
		dir:     dir,
		maxSize: maxSize,
	}
}

// Upload stores the file bytes on disk and persists the metadata
func (uc *AttachmentUseCase) Upload(ctx context.Context, uploaderID int64, fileName, mimeType string, size int64, r io.Reader) (*service.Attachment, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if size <= 0 || size > uc.maxSize {
		return nil, domain.ErrTooLarge
	}

	if err := os.MkdirAll(uc.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare attachment dir: %w", err)
	}

	storageName := node.Generate().String() + filepath.Ext(fileName)
	dst, err := os.Create(filepath.Join(uc.dir, storageName))
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer dst.Close()

	// Refuse writes past the declared size rather than trusting the client
	written, err := io.Copy(dst, io.LimitReader(r, uc.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	if written > uc.maxSize {
		_ = os.Remove(filepath.Join(uc.dir, storageName))
		return nil, domain.ErrTooLarge
	}

	att := &domain.Attachment{
		UploaderID:  uploaderID,
		FileName:    fileName,
		MimeType:    mimeType,
		SizeBytes:   written,
		StorageName: storageName,
	}
	if err := uc.attRepo.Create(ctx, att); err != nil {
		_ = os.Remove(filepath.Join(uc.dir, storageName))
		return nil, err
	}

	return toService(att), nil
}

// Get returns attachment metadata
func (uc *AttachmentUseCase) Get(ctx context.Context, userID, attachmentID int64) (*service.Attachment, error) {
	att, err := uc.attRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	// Unclaimed uploads are visible to their uploader only
	if att.MessageID == nil && att.UploaderID != userID {
		return nil, domain.ErrAttachmentNotFound
	}
	return toService(att), nil
}

// Open resolves the on-disk path and original file name for download
func (uc *AttachmentUseCase) Open(ctx context.Context, userID, attachmentID int64) (string, string, error) {
	att, err := uc.attRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return "", "", err
	}
	if att.MessageID == nil && att.UploaderID != userID {
		return "", "", domain.ErrAttachmentNotFound
	}
	return filepath.Join(uc.dir, att.StorageName), att.FileName, nil
}

// Claim binds uploaded attachments to a message
func (uc *AttachmentUseCase) Claim(ctx context.Context, uploaderID, messageID int64, ids []int64) ([]service.Attachment, error) {
	if err := uc.attRepo.BindToMessage(ctx, uploaderID, messageID, ids); err != nil {
		return nil, err
	}

	atts, err := uc.attRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]service.Attachment, 0, len(atts))
	for i := range atts {
		out = append(out, *toService(&atts[i]))
	}
	return out, nil
}

func toService(att *domain.Attachment) *service.Attachment {
	return &service.Attachment{
		ID:        att.ID,
		FileName:  att.FileName,
		MimeType:  att.MimeType,
		SizeBytes: att.SizeBytes,
		URL:       fmt.Sprintf("/api/attachments/%d/download", att.ID),
	}
}
