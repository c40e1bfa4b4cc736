package service

import "context"

// Attachment is the cross-module view of an uploaded file.
type Attachment struct {
	ID        int64  `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
}

// AttachmentService defines the attachment operations exposed to the message module.
type AttachmentService interface {
	// Claim binds previously uploaded attachments to a message. It fails if
	// any id is unknown, already claimed, or not uploaded by uploaderID.
	Claim(ctx context.Context, uploaderID, messageID int64, ids []int64) ([]Attachment, error)
}
