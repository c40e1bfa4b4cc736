// Package usecase implements the business logic for the gateway module.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/config"
	attdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/domain"
	convdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/ws"
	msgdomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/rs/zerolog"
)

// ErrInvalidPayload is returned when a frame's data does not match the
// shape its event kind requires
var ErrInvalidPayload = errors.New("invalid payload")

// clientErrors are surfaced to the offending socket with their real
// message. Anything outside this list is an internal failure and the
// client sees a generic message instead.
var clientErrors = []error{
	ErrInvalidPayload,
	convdomain.ErrNotMember,
	convdomain.ErrConversationNotFound,
	msgdomain.ErrMessageNotFound,
	msgdomain.ErrNotOwner,
	msgdomain.ErrEmptyMessage,
	attdomain.ErrAttachmentNotFound,
	attdomain.ErrAttachmentClaimed,
	attdomain.ErrNotUploader,
}

// GatewayUseCase coordinates the realtime side of the chat: presence,
// room membership, and the persist-then-broadcast message flow.
type GatewayUseCase struct {
	manager  *ws.Manager
	userSvc  service.UserService
	convSvc  service.ConversationService
	msgSvc   service.MessageService
	presence service.PresenceStore
	cfg      config.GatewayConfig
}

// NewGatewayUseCase creates a new gateway use case
func NewGatewayUseCase(
	manager *ws.Manager,
	userSvc service.UserService,
	convSvc service.ConversationService,
	msgSvc service.MessageService,
	presence service.PresenceStore,
	cfg config.GatewayConfig,
) *GatewayUseCase {
	return &GatewayUseCase{
		manager:  manager,
		userSvc:  userSvc,
		convSvc:  convSvc,
		msgSvc:   msgSvc,
		presence: presence,
		cfg:      cfg,
	}
}

// HandleConnect wires a freshly registered socket into its rooms and,
// when it is the user's first socket, announces the user online to
// every conversation it belongs to.
func (uc *GatewayUseCase) HandleConnect(ctx context.Context, c *ws.Connection, first bool) error {
	userID := c.UserID()

	uc.manager.JoinRoom(c, domain.UserRoom(userID))

	convs, err := uc.listAllConversations(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load conversations for user %d: %w", userID, err)
	}

	for _, conv := range convs {
		uc.manager.JoinRoom(c, domain.ConversationRoom(conv.ID))
	}

	if first {
		for _, conv := range convs {
			frame, err := domain.Encode(domain.EventUserOnline, domain.PresenceBroadcast{
				AccountID:      userID,
				ConversationID: conv.ID,
			})
			if err != nil {
				logger.Error(ctx).Err(err).Msg("failed to encode user:online")
				continue
			}
			uc.manager.BroadcastRoom(domain.ConversationRoom(conv.ID), frame, c.ID)
		}

		if err := uc.presence.SetOnline(ctx, userID); err != nil {
			logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("failed to mirror online presence")
		}
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("conn_id", c.ID).
		Int("conversations", len(convs)).
		Bool("first_socket", first).
		Msg("ws client connected")

	return nil
}

// HandleDisconnect tears down a socket. When it was the user's last
// socket the user is announced offline in every conversation room the
// socket had joined. Errors here are logged, never propagated; the
// socket is already gone.
func (uc *GatewayUseCase) HandleDisconnect(ctx context.Context, c *ws.Connection) {
	userID := c.UserID()

	last, rooms := uc.manager.Unregister(c)
	if !last {
		logger.Info(ctx).Int64("user_id", userID).Str("conn_id", c.ID).Msg("ws client disconnected")
		return
	}

	for _, room := range rooms {
		convID, ok := parseConversationRoom(room)
		if !ok {
			continue
		}
		frame, err := domain.Encode(domain.EventUserOffline, domain.PresenceBroadcast{
			AccountID:      userID,
			ConversationID: convID,
		})
		if err != nil {
			logger.Error(ctx).Err(err).Msg("failed to encode user:offline")
			continue
		}
		uc.manager.BroadcastRoom(room, frame, c.ID)
	}

	if err := uc.presence.SetOffline(ctx, userID); err != nil {
		logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("failed to mirror offline presence")
	}

	logger.Info(ctx).Int64("user_id", userID).Str("conn_id", c.ID).Msg("ws client disconnected, user offline")
}

// HandleFrame dispatches one inbound frame. Every handler error flows
// through a single filter that decides what the client may see.
func (uc *GatewayUseCase) HandleFrame(ctx context.Context, c *ws.Connection, raw []byte) {
	env, err := domain.Decode(raw)
	if err != nil {
		uc.sendError(ctx, c, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err))
		return
	}

	switch env.Event {
	case domain.EventMessageSend:
		err = uc.handleSendMessage(ctx, c, env.Data)
	case domain.EventTypingStart, domain.EventTypingStop:
		err = uc.handleTyping(ctx, c, env.Event, env.Data)
	case domain.EventMessageRead:
		err = uc.handleRead(ctx, c, env.Data)
	case domain.EventConversationJoin:
		err = uc.handleJoin(ctx, c, env.Data)
	default:
		err = fmt.Errorf("%w: unknown event %q", ErrInvalidPayload, env.Event)
	}

	if err != nil {
		uc.sendError(ctx, c, env.Event, err)
	}
}

// handleSendMessage persists the message, then fans it out. The write
// happens strictly first; a message no room member received can still
// be fetched over REST, but a broadcast message is always durable.
func (uc *GatewayUseCase) handleSendMessage(ctx context.Context, c *ws.Connection, data json.RawMessage) error {
	var payload domain.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	msg, err := uc.msgSvc.Send(ctx, c.UserID(), service.SendMessageInput{
		ConversationID: payload.ConversationID,
		Content:        payload.Content,
		ReplyToID:      payload.ReplyToID,
		AttachmentIDs:  payload.AttachmentIDs,
	})
	if err != nil {
		return err
	}

	receive, err := domain.Encode(domain.EventMessageReceive, domain.ReceivePayload{
		Message:        msg,
		ConversationID: msg.ConversationID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message:receive: %w", err)
	}
	// No exclusion: the sender's sockets receive the stored message too.
	uc.manager.BroadcastRoom(domain.ConversationRoom(msg.ConversationID), receive, "")

	ack, err := domain.Encode(domain.EventMessageAck, domain.AckPayload{Success: true, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode message:ack: %w", err)
	}
	uc.manager.SendTo(c, ack)

	return nil
}

func (uc *GatewayUseCase) handleTyping(ctx context.Context, c *ws.Connection, kind domain.EventKind, data json.RawMessage) error {
	var payload domain.TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := uc.requireRoom(ctx, c, payload.ConversationID); err != nil {
		return err
	}

	frame, err := domain.Encode(kind, domain.TypingBroadcast{
		AccountID:      c.UserID(),
		ConversationID: payload.ConversationID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	uc.manager.BroadcastRoom(domain.ConversationRoom(payload.ConversationID), frame, c.ID)

	return nil
}

func (uc *GatewayUseCase) handleRead(ctx context.Context, c *ws.Connection, data json.RawMessage) error {
	var payload domain.ReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := uc.requireRoom(ctx, c, payload.ConversationID); err != nil {
		return err
	}

	frame, err := domain.Encode(domain.EventMessageRead, domain.ReadBroadcast{
		AccountID:      c.UserID(),
		ConversationID: payload.ConversationID,
		MessageID:      payload.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message:read: %w", err)
	}
	uc.manager.BroadcastRoom(domain.ConversationRoom(payload.ConversationID), frame, c.ID)

	return nil
}

// handleJoin subscribes the socket to a conversation created after it
// connected. Membership is checked before the room join.
func (uc *GatewayUseCase) handleJoin(ctx context.Context, c *ws.Connection, data json.RawMessage) error {
	var payload domain.JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := uc.convSvc.VerifyMembership(ctx, payload.ConversationID, c.UserID()); err != nil {
		return err
	}
	uc.manager.JoinRoom(c, domain.ConversationRoom(payload.ConversationID))

	return nil
}

// requireRoom ensures the socket may speak in a conversation room.
// Sockets normally join at connect time; anything not yet in the room
// is re-checked against membership and joined on success.
func (uc *GatewayUseCase) requireRoom(ctx context.Context, c *ws.Connection, conversationID int64) error {
	room := domain.ConversationRoom(conversationID)
	if uc.manager.InRoom(c, room) {
		return nil
	}
	if err := uc.convSvc.VerifyMembership(ctx, conversationID, c.UserID()); err != nil {
		return err
	}
	uc.manager.JoinRoom(c, room)
	return nil
}

// sendError emits an error event to the offending socket only. Known
// client faults keep their message; everything else is masked.
func (uc *GatewayUseCase) sendError(ctx context.Context, c *ws.Connection, kind domain.EventKind, err error) {
	msg := "Internal server error"
	client := false
	for _, sentinel := range clientErrors {
		if errors.Is(err, sentinel) {
			msg = err.Error()
			client = true
			break
		}
	}

	var evt *zerolog.Event
	if client {
		evt = logger.Warn(ctx)
	} else {
		evt = logger.Error(ctx)
	}
	evt.Err(err).
		Int64("user_id", c.UserID()).
		Str("conn_id", c.ID).
		Str("event", string(kind)).
		Msg("ws event failed")

	frame, encErr := domain.Encode(domain.EventError, domain.ErrorPayload{Message: msg})
	if encErr != nil {
		logger.Error(ctx).Err(encErr).Msg("failed to encode error event")
		return
	}
	uc.manager.SendTo(c, frame)
}

// listAllConversations pages through the user's conversations
func (uc *GatewayUseCase) listAllConversations(ctx context.Context, userID int64) ([]service.Conversation, error) {
	var all []service.Conversation
	limit := uc.cfg.ConversationPageLimit
	for page := 1; ; page++ {
		convs, err := uc.convSvc.ListForUser(ctx, userID, page, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, convs...)
		if len(convs) < limit {
			return all, nil
		}
	}
}

func parseConversationRoom(room string) (int64, bool) {
	const prefix = "conversation:"
	if len(room) <= len(prefix) || room[:len(prefix)] != prefix {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(room[len(prefix):], "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
