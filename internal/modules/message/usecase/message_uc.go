// Package usecase implements the business logic for the message module.
package usecase

import (
	"context"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// MessageUseCase handles message persistence logic
type MessageUseCase struct {
	msgRepo *repository.MessageRepository
	convSvc service.ConversationService
	userSvc service.UserService
	attSvc  service.AttachmentService
}

// NewMessageUseCase creates a new message use case
func NewMessageUseCase(
	msgRepo *repository.MessageRepository,
	convSvc service.ConversationService,
	userSvc service.UserService,
	attSvc service.AttachmentService,
) *MessageUseCase {
	return &MessageUseCase{
		msgRepo: msgRepo,
		convSvc: convSvc,
		userSvc: userSvc,
		attSvc:  attSvc,
	}
}

// Send persists a message and returns the hydrated record. Membership is
// re-verified here even when the caller already checked it: a stale room
// join must never allow a write into a conversation the sender left.
func (uc *MessageUseCase) Send(ctx context.Context, senderID int64, in service.SendMessageInput) (*service.Message, error) {
	if in.Content == "" && len(in.AttachmentIDs) == 0 {
		return nil, domain.ErrEmptyMessage
	}

	if err := uc.convSvc.VerifyMembership(ctx, in.ConversationID, senderID); err != nil {
		return nil, err
	}

	if in.ReplyToID != nil {
		parent, err := uc.msgRepo.GetByID(ctx, *in.ReplyToID)
		if err != nil {
			return nil, err
		}
		if parent.ConversationID != in.ConversationID {
			return nil, fmt.Errorf("reply target belongs to another conversation")
		}
	}

	msg := &domain.Message{
		ConversationID: in.ConversationID,
		SenderID:       senderID,
		Content:        in.Content,
		ReplyToID:      in.ReplyToID,
	}
	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	var attachments []service.Attachment
	if len(in.AttachmentIDs) > 0 {
		var err error
		attachments, err = uc.attSvc.Claim(ctx, senderID, msg.ID, in.AttachmentIDs)
		if err != nil {
			// The message row exists; drop it rather than ship a message
			// pointing at attachments it does not own
			_ = uc.msgRepo.SoftDelete(ctx, msg.ID)
			return nil, fmt.Errorf("failed to claim attachments: %w", err)
		}
	}

	return uc.hydrate(ctx, msg, attachments), nil
}

// ListByConversation returns a page of messages for a member of the conversation
func (uc *MessageUseCase) ListByConversation(ctx context.Context, userID, conversationID int64, page, limit int) ([]service.Message, error) {
	if err := uc.convSvc.VerifyMembership(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	msgs, err := uc.msgRepo.ListByConversation(ctx, conversationID, page, limit)
	if err != nil {
		return nil, err
	}

	out := make([]service.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, *uc.hydrate(ctx, &msgs[i], nil))
	}
	return out, nil
}

// Delete soft-deletes a message. Only the sender may delete it.
func (uc *MessageUseCase) Delete(ctx context.Context, userID, messageID int64) error {
	msg, err := uc.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return domain.ErrNotOwner
	}
	return uc.msgRepo.SoftDelete(ctx, messageID)
}

// hydrate resolves the sender profile onto the stored row. Profile lookup
// failures degrade to an unnamed sender rather than failing the message.
func (uc *MessageUseCase) hydrate(ctx context.Context, msg *domain.Message, attachments []service.Attachment) *service.Message {
	out := &service.Message{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		ReplyToID:      msg.ReplyToID,
		Attachments:    attachments,
		CreatedAt:      msg.CreatedAt,
	}

	profile, err := uc.userSvc.GetProfile(ctx, msg.SenderID)
	if err != nil {
		logger.Warn(ctx).Err(err).Int64("sender_id", msg.SenderID).Msg("Message hydration: sender profile lookup failed")
		return out
	}

	name := profile.FirstName
	if profile.LastName != "" {
		if name != "" {
			name += " "
		}
		name += profile.LastName
	}
	out.SenderName = name
	out.SenderAvatar = profile.Avatar
	return out
}
