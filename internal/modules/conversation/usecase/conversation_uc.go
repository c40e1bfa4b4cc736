// Package usecase implements the business logic for the conversation module.
package usecase

import (
	"context"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// ConversationUseCase handles conversation and membership logic
type ConversationUseCase struct {
	convRepo *repository.ConversationRepository
}

// NewConversationUseCase creates a new conversation use case
func NewConversationUseCase(convRepo *repository.ConversationRepository) *ConversationUseCase {
	return &ConversationUseCase{convRepo: convRepo}
}

// Create creates a conversation. The creator always becomes a member.
func (uc *ConversationUseCase) Create(ctx context.Context, creatorID int64, name string, isGroup bool, memberIDs []int64) (*service.Conversation, error) {
	if isGroup && name == "" {
		return nil, fmt.Errorf("group conversations require a name")
	}

	// De-duplicate and force the creator into the member list
	seen := map[int64]bool{creatorID: true}
	members := []int64{creatorID}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			members = append(members, id)
		}
	}

	if !isGroup && len(members) != 2 {
		return nil, fmt.Errorf("direct conversations require exactly one other member")
	}

	conv := &domain.Conversation{
		Name:      name,
		IsGroup:   isGroup,
		CreatedBy: creatorID,
	}
	if err := uc.convRepo.Create(ctx, conv, members); err != nil {
		return nil, err
	}

	return toService(conv), nil
}

// ListForUser returns the user's conversations, paged
func (uc *ConversationUseCase) ListForUser(ctx context.Context, userID int64, page, limit int) ([]service.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	convs, err := uc.convRepo.ListForUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	out := make([]service.Conversation, 0, len(convs))
	for i := range convs {
		out = append(out, *toService(&convs[i]))
	}
	return out, nil
}

// FindOneForUser returns the conversation iff the user is an active member
func (uc *ConversationUseCase) FindOneForUser(ctx context.Context, conversationID, userID int64) (*service.Conversation, error) {
	if _, err := uc.convRepo.GetMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return toService(conv), nil
}

// VerifyMembership returns nil iff the user is an active member
func (uc *ConversationUseCase) VerifyMembership(ctx context.Context, conversationID, userID int64) error {
	_, err := uc.convRepo.GetMember(ctx, conversationID, userID)
	return err
}

// AddMember adds a user to a conversation. The requester must be a member.
func (uc *ConversationUseCase) AddMember(ctx context.Context, conversationID, requesterID, userID int64) error {
	if err := uc.VerifyMembership(ctx, conversationID, requesterID); err != nil {
		return err
	}

	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return fmt.Errorf("cannot add members to a direct conversation")
	}

	return uc.convRepo.AddMember(ctx, &domain.Member{
		ConversationID: conversationID,
		UserID:         userID,
	})
}

// MarkRead persists the member's read position
func (uc *ConversationUseCase) MarkRead(ctx context.Context, conversationID, userID, messageID int64) error {
	if err := uc.VerifyMembership(ctx, conversationID, userID); err != nil {
		return err
	}
	return uc.convRepo.UpdateLastRead(ctx, conversationID, userID, messageID)
}

func toService(conv *domain.Conversation) *service.Conversation {
	return &service.Conversation{
		ID:        conv.ID,
		Name:      conv.Name,
		IsGroup:   conv.IsGroup,
		CreatedBy: conv.CreatedBy,
		CreatedAt: conv.CreatedAt,
	}
}
