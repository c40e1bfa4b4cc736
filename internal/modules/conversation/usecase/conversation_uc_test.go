package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newConversationUseCase(t *testing.T) *usecase.ConversationUseCase {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Member{}))

	return usecase.NewConversationUseCase(repository.NewConversationRepository(db))
}

func TestCreateGroupConversation(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	conv, err := uc.Create(ctx, 1, "team chat", true, []int64{2, 3, 2, 1}) // duplicates and creator in the list
	require.NoError(t, err)
	assert.Equal(t, "team chat", conv.Name)
	assert.True(t, conv.IsGroup)
	assert.Equal(t, int64(1), conv.CreatedBy)

	for _, userID := range []int64{1, 2, 3} {
		assert.NoError(t, uc.VerifyMembership(ctx, conv.ID, userID))
	}
	assert.ErrorIs(t, uc.VerifyMembership(ctx, conv.ID, 4), domain.ErrNotMember)
}

func TestCreateGroupRequiresName(t *testing.T) {
	uc := newConversationUseCase(t)

	_, err := uc.Create(context.Background(), 1, "", true, []int64{2})
	require.Error(t, err)
}

func TestCreateDirectConversation(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	conv, err := uc.Create(ctx, 1, "", false, []int64{2})
	require.NoError(t, err)
	assert.False(t, conv.IsGroup)

	_, err = uc.Create(ctx, 1, "", false, []int64{2, 3})
	require.Error(t, err, "direct conversations allow exactly one other member")

	_, err = uc.Create(ctx, 1, "", false, nil)
	require.Error(t, err)
}

func TestListForUserPaged(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := uc.Create(ctx, 1, "room", true, []int64{2})
		require.NoError(t, err)
	}
	_, err := uc.Create(ctx, 3, "other", true, []int64{4})
	require.NoError(t, err)

	page1, err := uc.ListForUser(ctx, 1, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := uc.ListForUser(ctx, 1, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)

	none, err := uc.ListForUser(ctx, 99, 1, 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestFindOneForUser(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	conv, err := uc.Create(ctx, 1, "room", true, []int64{2})
	require.NoError(t, err)

	found, err := uc.FindOneForUser(ctx, conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	_, err = uc.FindOneForUser(ctx, conv.ID, 5)
	require.ErrorIs(t, err, domain.ErrNotMember)

	_, err = uc.FindOneForUser(ctx, 9999, 1)
	require.ErrorIs(t, err, domain.ErrNotMember)
}

func TestAddMember(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	group, err := uc.Create(ctx, 1, "room", true, []int64{2})
	require.NoError(t, err)

	require.NoError(t, uc.AddMember(ctx, group.ID, 1, 3))
	assert.NoError(t, uc.VerifyMembership(ctx, group.ID, 3))

	err = uc.AddMember(ctx, group.ID, 99, 4)
	require.ErrorIs(t, err, domain.ErrNotMember, "only members may invite")

	direct, err := uc.Create(ctx, 1, "", false, []int64{2})
	require.NoError(t, err)
	err = uc.AddMember(ctx, direct.ID, 1, 3)
	require.Error(t, err, "direct conversations are closed")
}

func TestMarkRead(t *testing.T) {
	uc := newConversationUseCase(t)
	ctx := context.Background()

	conv, err := uc.Create(ctx, 1, "room", true, []int64{2})
	require.NoError(t, err)

	require.NoError(t, uc.MarkRead(ctx, conv.ID, 2, 17))
	require.ErrorIs(t, uc.MarkRead(ctx, conv.ID, 5, 17), domain.ErrNotMember)
}
