package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	convlocal "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/adapter/local"
	convdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	convrepo "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/repository"
	convusecase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubUserService struct{}

func (s *stubUserService) ValidateToken(ctx context.Context, token string) (*service.Identity, error) {
	return nil, errors.New("not used")
}

func (s *stubUserService) GetProfile(ctx context.Context, userID int64) (*service.Profile, error) {
	return &service.Profile{
		UserID:    userID,
		FirstName: "User",
		LastName:  fmt.Sprintf("%d", userID),
	}, nil
}

type stubAttachmentService struct {
	claimErr error
	claimed  [][]int64
}

func (s *stubAttachmentService) Claim(ctx context.Context, uploaderID, messageID int64, ids []int64) ([]service.Attachment, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	s.claimed = append(s.claimed, ids)
	out := make([]service.Attachment, 0, len(ids))
	for _, id := range ids {
		out = append(out, service.Attachment{ID: id, FileName: "file.bin"})
	}
	return out, nil
}

type msgFixture struct {
	uc      *usecase.MessageUseCase
	convUC  *convusecase.ConversationUseCase
	attSvc  *stubAttachmentService
	convID  int64
	ctx     context.Context
	msgRepo *repository.MessageRepository
}

// newMsgFixture builds a message use case backed by sqlite, with users
// 1 and 2 sharing one conversation.
func newMsgFixture(t *testing.T) *msgFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&convdomain.Conversation{}, &convdomain.Member{}, &domain.Message{}))

	convUC := convusecase.NewConversationUseCase(convrepo.NewConversationRepository(db))
	attSvc := &stubAttachmentService{}
	msgRepo := repository.NewMessageRepository(db)
	uc := usecase.NewMessageUseCase(msgRepo, convlocal.NewHandler(convUC), &stubUserService{}, attSvc)

	ctx := context.Background()
	conv, err := convUC.Create(ctx, 1, "room", true, []int64{2})
	require.NoError(t, err)

	return &msgFixture{uc: uc, convUC: convUC, attSvc: attSvc, convID: conv.ID, ctx: ctx, msgRepo: msgRepo}
}

func TestSendHydratesSender(t *testing.T) {
	f := newMsgFixture(t)

	msg, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "hello",
	})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.Equal(t, "User 1", msg.SenderName)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestSendRejectsNonMember(t *testing.T) {
	f := newMsgFixture(t)

	_, err := f.uc.Send(f.ctx, 7, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "let me in",
	})
	require.ErrorIs(t, err, convdomain.ErrNotMember)

	msgs, err := f.uc.ListByConversation(f.ctx, 1, f.convID, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs, "a rejected send must not persist anything")
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	f := newMsgFixture(t)

	_, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{ConversationID: f.convID})
	require.ErrorIs(t, err, domain.ErrEmptyMessage)
}

func TestSendWithAttachmentsOnly(t *testing.T) {
	f := newMsgFixture(t)

	msg, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: f.convID,
		AttachmentIDs:  []int64{101, 102},
	})
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 2)
	require.Len(t, f.attSvc.claimed, 1)
}

func TestSendRollsBackOnClaimFailure(t *testing.T) {
	f := newMsgFixture(t)
	f.attSvc.claimErr = errors.New("attachment already claimed")

	_, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "with file",
		AttachmentIDs:  []int64{101},
	})
	require.Error(t, err)

	msgs, err := f.uc.ListByConversation(f.ctx, 1, f.convID, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs, "the message row must be dropped when the claim fails")
}

func TestSendReplyMustStayInConversation(t *testing.T) {
	f := newMsgFixture(t)

	parent, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "parent",
	})
	require.NoError(t, err)

	reply, err := f.uc.Send(f.ctx, 2, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "reply",
		ReplyToID:      &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyToID)
	assert.Equal(t, parent.ID, *reply.ReplyToID)

	other, err := f.convUC.Create(f.ctx, 1, "other room", true, []int64{2})
	require.NoError(t, err)

	_, err = f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: other.ID,
		Content:        "cross reply",
		ReplyToID:      &parent.ID,
	})
	require.Error(t, err, "replies may not cross conversations")
}

func TestListByConversationNewestFirst(t *testing.T) {
	f := newMsgFixture(t)

	for i := 1; i <= 3; i++ {
		_, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
			ConversationID: f.convID,
			Content:        fmt.Sprintf("msg %d", i),
		})
		require.NoError(t, err)
	}

	msgs, err := f.uc.ListByConversation(f.ctx, 2, f.convID, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg 3", msgs[0].Content)
	assert.Equal(t, "msg 2", msgs[1].Content)

	_, err = f.uc.ListByConversation(f.ctx, 7, f.convID, 1, 50)
	require.ErrorIs(t, err, convdomain.ErrNotMember)
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newMsgFixture(t)

	msg, err := f.uc.Send(f.ctx, 1, service.SendMessageInput{
		ConversationID: f.convID,
		Content:        "to be deleted",
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.uc.Delete(f.ctx, 2, msg.ID), domain.ErrNotOwner)
	require.NoError(t, f.uc.Delete(f.ctx, 1, msg.ID))

	msgs, err := f.uc.ListByConversation(f.ctx, 1, f.convID, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.ErrorIs(t, f.uc.Delete(f.ctx, 1, 9999), domain.ErrMessageNotFound)
}
