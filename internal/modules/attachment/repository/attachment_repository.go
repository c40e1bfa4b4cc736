package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/domain"
	"gorm.io/gorm"
)

// AttachmentRepository handles attachment metadata persistence
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create persists attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	if err := r.db.WithContext(ctx).Create(att).Error; err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

// GetByID retrieves an attachment by ID
func (r *AttachmentRepository) GetByID(ctx context.Context, attachmentID int64) (*domain.Attachment, error) {
	var att domain.Attachment
	if err := r.db.WithContext(ctx).First(&att, attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &att, nil
}

// GetByIDs retrieves a set of attachments by ID
func (r *AttachmentRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Attachment, error) {
	var atts []domain.Attachment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&atts).Error; err != nil {
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}
	return atts, nil
}

// BindToMessage binds the given attachments to a message in one transaction.
// It fails if any attachment is missing, claimed, or not owned by uploaderID.
func (r *AttachmentRepository) BindToMessage(ctx context.Context, uploaderID, messageID int64, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var atts []domain.Attachment
		if err := tx.Where("id IN ?", ids).Find(&atts).Error; err != nil {
			return fmt.Errorf("failed to load attachments: %w", err)
		}
		if len(atts) != len(ids) {
			return domain.ErrAttachmentNotFound
		}

		for i := range atts {
			if atts[i].UploaderID != uploaderID {
				return domain.ErrNotUploader
			}
			if atts[i].MessageID != nil {
				return domain.ErrAttachmentClaimed
			}
		}

		if err := tx.Model(&domain.Attachment{}).
			Where("id IN ?", ids).
			Update("message_id", messageID).Error; err != nil {
			return fmt.Errorf("failed to bind attachments: %w", err)
		}
		return nil
	})
}
