package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/config"
	convdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/ws"
	msgdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockUserService struct{}

func (m *mockUserService) ValidateToken(ctx context.Context, token string) (*service.Identity, error) {
	return nil, errors.New("not used")
}

func (m *mockUserService) GetProfile(ctx context.Context, userID int64) (*service.Profile, error) {
	return &service.Profile{UserID: userID, FirstName: "Test", LastName: "User"}, nil
}

type mockConversationService struct {
	// membership[userID] lists the conversations the user belongs to
	membership map[int64][]service.Conversation
	listErr    error
}

func (m *mockConversationService) ListForUser(ctx context.Context, userID int64, page, limit int) ([]service.Conversation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	convs := m.membership[userID]
	start := (page - 1) * limit
	if start >= len(convs) {
		return nil, nil
	}
	end := start + limit
	if end > len(convs) {
		end = len(convs)
	}
	return convs[start:end], nil
}

func (m *mockConversationService) FindOneForUser(ctx context.Context, conversationID, userID int64) (*service.Conversation, error) {
	for _, conv := range m.membership[userID] {
		if conv.ID == conversationID {
			return &conv, nil
		}
	}
	return nil, convdomain.ErrNotMember
}

func (m *mockConversationService) VerifyMembership(ctx context.Context, conversationID, userID int64) error {
	for _, conv := range m.membership[userID] {
		if conv.ID == conversationID {
			return nil
		}
	}
	return convdomain.ErrNotMember
}

type mockMessageService struct {
	convSvc *mockConversationService
	nextID  int64
	sendErr error
	sent    []service.SendMessageInput
}

func (m *mockMessageService) Send(ctx context.Context, senderID int64, in service.SendMessageInput) (*service.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	if err := m.convSvc.VerifyMembership(ctx, in.ConversationID, senderID); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	m.nextID++
	m.sent = append(m.sent, in)
	return &service.Message{
		ID:             m.nextID,
		ConversationID: in.ConversationID,
		SenderID:       senderID,
		Content:        in.Content,
		CreatedAt:      time.Now(),
	}, nil
}

type presenceEvent struct {
	userID int64
	online bool
}

type mockPresenceStore struct {
	events []presenceEvent
	err    error
}

func (m *mockPresenceStore) SetOnline(ctx context.Context, userID int64) error {
	m.events = append(m.events, presenceEvent{userID, true})
	return m.err
}

func (m *mockPresenceStore) SetOffline(ctx context.Context, userID int64) error {
	m.events = append(m.events, presenceEvent{userID, false})
	return m.err
}

func (m *mockPresenceStore) Get(ctx context.Context, userID int64) (*service.Presence, error) {
	return &service.Presence{UserID: userID}, nil
}

// --- Fixture ---

type fixture struct {
	manager  *ws.Manager
	convSvc  *mockConversationService
	msgSvc   *mockMessageService
	presence *mockPresenceStore
	uc       *usecase.GatewayUseCase
}

func newFixture(membership map[int64][]service.Conversation) *fixture {
	manager := ws.NewManager(config.WebSocketConfig{
		PingInterval:   54 * time.Second,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 32,
	})
	convSvc := &mockConversationService{membership: membership}
	msgSvc := &mockMessageService{convSvc: convSvc}
	presence := &mockPresenceStore{}

	uc := usecase.NewGatewayUseCase(manager, &mockUserService{}, convSvc, msgSvc, presence, config.GatewayConfig{
		ConversationPageLimit: 2,
		PresenceTTL:           time.Hour,
	})

	return &fixture{manager: manager, convSvc: convSvc, msgSvc: msgSvc, presence: presence, uc: uc}
}

func (f *fixture) connect(t *testing.T, userID int64) *ws.Connection {
	t.Helper()
	c, first := f.manager.Register(nil, &service.Identity{UserID: userID})
	require.NoError(t, f.uc.HandleConnect(context.Background(), c, first))
	return c
}

func conv(id int64) service.Conversation {
	return service.Conversation{ID: id, IsGroup: true}
}

func recvEnvelope(t *testing.T, c *ws.Connection) *domain.Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		env, err := domain.Decode(raw)
		require.NoError(t, err)
		return env
	default:
		t.Fatal("expected a frame but the send buffer is empty")
		return nil
	}
}

func requireSilent(t *testing.T, c *ws.Connection) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("expected no frame, got: %s", raw)
	default:
	}
}

func frame(t *testing.T, kind domain.EventKind, payload interface{}) []byte {
	t.Helper()
	raw, err := domain.Encode(kind, payload)
	require.NoError(t, err)
	return raw
}

// --- Connect / disconnect ---

func TestConnectJoinsConversationRooms(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10), conv(11), conv(12)}, // three conversations across two pages
	})

	c := f.connect(t, 1)

	assert.True(t, f.manager.InRoom(c, "conversation:10"))
	assert.True(t, f.manager.InRoom(c, "conversation:11"))
	assert.True(t, f.manager.InRoom(c, "conversation:12"))
	assert.True(t, f.manager.InRoom(c, "user:1"))
}

func TestConnectAnnouncesOnlineToMembersOnly(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
		3: {conv(99)},
	})

	peer := f.connect(t, 2)
	stranger := f.connect(t, 3)
	drain(peer)
	drain(stranger)

	f.connect(t, 1)

	env := recvEnvelope(t, peer)
	require.Equal(t, domain.EventUserOnline, env.Event)
	var payload domain.PresenceBroadcast
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, int64(1), payload.AccountID)
	assert.Equal(t, int64(10), payload.ConversationID)

	requireSilent(t, stranger)
}

func TestSecondSocketDoesNotReannounceOnline(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
	})

	peer := f.connect(t, 2)
	f.connect(t, 1)
	drain(peer)

	f.connect(t, 1) // same user, second tab
	requireSilent(t, peer)

	require.Len(t, f.presence.events, 2) // one per user, none for the second socket
}

func TestDisconnectAnnouncesOfflineOnLastSocketOnly(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
	})

	peer := f.connect(t, 2)
	c1 := f.connect(t, 1)
	c2 := f.connect(t, 1)
	drain(peer)

	f.uc.HandleDisconnect(context.Background(), c1)
	requireSilent(t, peer)

	f.uc.HandleDisconnect(context.Background(), c2)
	env := recvEnvelope(t, peer)
	require.Equal(t, domain.EventUserOffline, env.Event)

	var payload domain.PresenceBroadcast
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, int64(1), payload.AccountID)
}

func TestConnectFailureReturnsError(t *testing.T) {
	f := newFixture(nil)
	f.convSvc.listErr = errors.New("db down")

	c, first := f.manager.Register(nil, &service.Identity{UserID: 1})
	err := f.uc.HandleConnect(context.Background(), c, first)
	require.Error(t, err)
}

// --- message:send ---

func TestSendMessagePersistsThenBroadcasts(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
	})

	sender := f.connect(t, 1)
	peer := f.connect(t, 2)
	drain(sender)
	drain(peer)

	f.uc.HandleFrame(context.Background(), sender, frame(t, domain.EventMessageSend, domain.SendMessagePayload{
		ConversationID: 10,
		Content:        "hello there",
	}))

	require.Len(t, f.msgSvc.sent, 1, "the message must be persisted")

	env := recvEnvelope(t, peer)
	require.Equal(t, domain.EventMessageReceive, env.Event)
	var receive domain.ReceivePayload
	require.NoError(t, json.Unmarshal(env.Data, &receive))
	assert.Equal(t, "hello there", receive.Message.Content)
	assert.Equal(t, int64(10), receive.ConversationID)

	// The sender is a room member too: first the room broadcast, then the ack.
	echo := recvEnvelope(t, sender)
	require.Equal(t, domain.EventMessageReceive, echo.Event)
	var echoPayload domain.ReceivePayload
	require.NoError(t, json.Unmarshal(echo.Data, &echoPayload))
	assert.Equal(t, receive.Message.ID, echoPayload.Message.ID)

	ack := recvEnvelope(t, sender)
	require.Equal(t, domain.EventMessageAck, ack.Event)
	var ackPayload domain.AckPayload
	require.NoError(t, json.Unmarshal(ack.Data, &ackPayload))
	assert.True(t, ackPayload.Success)
	assert.Equal(t, receive.Message.ID, ackPayload.Message.ID)

	requireSilent(t, sender)
	requireSilent(t, peer) // the ack goes to the sending socket only
}

func TestSendMessageReachesAllSenderSockets(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})

	tabOne := f.connect(t, 1)
	tabTwo := f.connect(t, 1)
	drain(tabOne)
	drain(tabTwo)

	f.uc.HandleFrame(context.Background(), tabOne, frame(t, domain.EventMessageSend, domain.SendMessagePayload{
		ConversationID: 10,
		Content:        "from tab one",
	}))

	env := recvEnvelope(t, tabTwo)
	require.Equal(t, domain.EventMessageReceive, env.Event)
	requireSilent(t, tabTwo)

	first := recvEnvelope(t, tabOne)
	require.Equal(t, domain.EventMessageReceive, first.Event)
	second := recvEnvelope(t, tabOne)
	require.Equal(t, domain.EventMessageAck, second.Event)
}

func TestSendMessageToForeignConversationRejected(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(20)},
	})

	intruder := f.connect(t, 1)
	victim := f.connect(t, 2)
	drain(intruder)
	drain(victim)

	f.uc.HandleFrame(context.Background(), intruder, frame(t, domain.EventMessageSend, domain.SendMessagePayload{
		ConversationID: 20,
		Content:        "let me in",
	}))

	env := recvEnvelope(t, intruder)
	require.Equal(t, domain.EventError, env.Event)
	var payload domain.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Contains(t, payload.Message, "not a member")

	requireSilent(t, victim)
	require.Empty(t, f.msgSvc.sent, "nothing may be persisted for a rejected send")
}

func TestSendMessageInternalErrorIsMasked(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})
	f.msgSvc.sendErr = errors.New("pq: connection refused")

	sender := f.connect(t, 1)
	drain(sender)

	f.uc.HandleFrame(context.Background(), sender, frame(t, domain.EventMessageSend, domain.SendMessagePayload{
		ConversationID: 10,
		Content:        "hi",
	}))

	env := recvEnvelope(t, sender)
	require.Equal(t, domain.EventError, env.Event)
	var payload domain.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "Internal server error", payload.Message)
	assert.NotContains(t, payload.Message, "pq:")
}

func TestEmptyMessageRejectedWithReason(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})
	f.msgSvc.sendErr = fmt.Errorf("failed to send message: %w", msgdomain.ErrEmptyMessage)

	sender := f.connect(t, 1)
	drain(sender)

	f.uc.HandleFrame(context.Background(), sender, frame(t, domain.EventMessageSend, domain.SendMessagePayload{
		ConversationID: 10,
	}))

	env := recvEnvelope(t, sender)
	require.Equal(t, domain.EventError, env.Event)
	var payload domain.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Contains(t, payload.Message, msgdomain.ErrEmptyMessage.Error())
}

// --- Malformed frames ---

func TestMalformedFrameAnswersWithError(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})

	c := f.connect(t, 1)
	drain(c)

	f.uc.HandleFrame(context.Background(), c, []byte("{not json"))

	env := recvEnvelope(t, c)
	require.Equal(t, domain.EventError, env.Event)
}

func TestUnknownEventAnswersWithError(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})

	c := f.connect(t, 1)
	drain(c)

	f.uc.HandleFrame(context.Background(), c, []byte(`{"event":"message:sned","data":{}}`))

	env := recvEnvelope(t, c)
	require.Equal(t, domain.EventError, env.Event)
	var payload domain.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Contains(t, payload.Message, "unknown event")
}

// --- Typing and read receipts ---

func TestTypingRelayedToOtherMembers(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
	})

	typist := f.connect(t, 1)
	peer := f.connect(t, 2)
	drain(typist)
	drain(peer)

	f.uc.HandleFrame(context.Background(), typist, frame(t, domain.EventTypingStart, domain.TypingPayload{ConversationID: 10}))

	env := recvEnvelope(t, peer)
	require.Equal(t, domain.EventTypingStart, env.Event)
	var payload domain.TypingBroadcast
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, int64(1), payload.AccountID)

	requireSilent(t, typist)

	f.uc.HandleFrame(context.Background(), typist, frame(t, domain.EventTypingStop, domain.TypingPayload{ConversationID: 10}))
	env = recvEnvelope(t, peer)
	require.Equal(t, domain.EventTypingStop, env.Event)
}

func TestTypingInForeignConversationRejected(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(20)},
	})

	typist := f.connect(t, 1)
	victim := f.connect(t, 2)
	drain(typist)
	drain(victim)

	f.uc.HandleFrame(context.Background(), typist, frame(t, domain.EventTypingStart, domain.TypingPayload{ConversationID: 20}))

	env := recvEnvelope(t, typist)
	require.Equal(t, domain.EventError, env.Event)
	requireSilent(t, victim)
}

func TestReadReceiptRelayed(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{
		1: {conv(10)},
		2: {conv(10)},
	})

	reader := f.connect(t, 1)
	peer := f.connect(t, 2)
	drain(reader)
	drain(peer)

	f.uc.HandleFrame(context.Background(), reader, frame(t, domain.EventMessageRead, domain.ReadPayload{
		ConversationID: 10,
		MessageID:      42,
	}))

	env := recvEnvelope(t, peer)
	require.Equal(t, domain.EventMessageRead, env.Event)
	var payload domain.ReadBroadcast
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, int64(42), payload.MessageID)
	assert.Equal(t, int64(1), payload.AccountID)
}

// --- conversation:join ---

func TestJoinNewConversation(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})

	c := f.connect(t, 1)
	drain(c)

	// Conversation created after the socket connected
	f.convSvc.membership[1] = append(f.convSvc.membership[1], conv(11))

	f.uc.HandleFrame(context.Background(), c, frame(t, domain.EventConversationJoin, domain.JoinPayload{ConversationID: 11}))

	require.True(t, f.manager.InRoom(c, "conversation:11"))
	requireSilent(t, c)
}

func TestJoinForeignConversationRejected(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})

	c := f.connect(t, 1)
	drain(c)

	f.uc.HandleFrame(context.Background(), c, frame(t, domain.EventConversationJoin, domain.JoinPayload{ConversationID: 99}))

	require.False(t, f.manager.InRoom(c, "conversation:99"))
	env := recvEnvelope(t, c)
	require.Equal(t, domain.EventError, env.Event)
}

// --- Presence mirror ---

func TestPresenceMirrorFailureDoesNotBreakConnect(t *testing.T) {
	f := newFixture(map[int64][]service.Conversation{1: {conv(10)}})
	f.presence.err = errors.New("redis down")

	c, first := f.manager.Register(nil, &service.Identity{UserID: 1})
	require.NoError(t, f.uc.HandleConnect(context.Background(), c, first))
	require.True(t, f.manager.InRoom(c, "conversation:10"))
}

func drain(c *ws.Connection) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}
