// Package domain defines the realtime wire protocol: the closed set of
// event kinds, their payload shapes, and room naming.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// EventKind identifies a realtime event. The set is closed; dispatch
// switches over these constants instead of free-form strings.
type EventKind string

const (
	// client -> server
	EventMessageSend      EventKind = "message:send"
	EventTypingStart      EventKind = "typing:start"
	EventTypingStop       EventKind = "typing:stop"
	EventMessageRead      EventKind = "message:read"
	EventConversationJoin EventKind = "conversation:join"

	// server -> client
	EventMessageReceive EventKind = "message:receive"
	EventMessageAck     EventKind = "message:ack"
	EventUserOnline     EventKind = "user:online"
	EventUserOffline    EventKind = "user:offline"
	EventError          EventKind = "error"
)

// Envelope is the frame format on the wire: {"event": ..., "data": ...}
type Envelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the client payload for message:send
type SendMessagePayload struct {
	ConversationID int64   `json:"conversationId"`
	Content        string  `json:"content,omitempty"`
	ReplyToID      *int64  `json:"replyToId,omitempty"`
	AttachmentIDs  []int64 `json:"attachmentIds,omitempty"`
}

// TypingPayload is the client payload for typing:start / typing:stop
type TypingPayload struct {
	ConversationID int64 `json:"conversationId"`
}

// ReadPayload is the client payload for message:read
type ReadPayload struct {
	ConversationID int64 `json:"conversationId"`
	MessageID      int64 `json:"messageId"`
}

// JoinPayload is the client payload for conversation:join
type JoinPayload struct {
	ConversationID int64 `json:"conversationId"`
}

// ReceivePayload is broadcast to a conversation room on message:receive
type ReceivePayload struct {
	Message        *service.Message `json:"message"`
	ConversationID int64            `json:"conversationId"`
}

// AckPayload acknowledges a successful message:send to the sender only
type AckPayload struct {
	Success bool             `json:"success"`
	Message *service.Message `json:"message"`
}

// TypingBroadcast is relayed to other room members on typing events
type TypingBroadcast struct {
	AccountID      int64 `json:"accountId"`
	ConversationID int64 `json:"conversationId"`
}

// ReadBroadcast is relayed to other room members on message:read
type ReadBroadcast struct {
	AccountID      int64 `json:"accountId"`
	ConversationID int64 `json:"conversationId"`
	MessageID      int64 `json:"messageId"`
}

// PresenceBroadcast announces user:online / user:offline per affected room
type PresenceBroadcast struct {
	AccountID      int64 `json:"accountId"`
	ConversationID int64 `json:"conversationId"`
}

// ErrorPayload is emitted to the offending client only
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode marshals an envelope with the given payload
func Encode(kind EventKind, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return json.Marshal(Envelope{Event: kind, Data: data})
}

// Decode unmarshals a raw frame into an envelope
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("invalid frame: missing event")
	}
	return &env, nil
}

// ConversationRoom is the broadcast group for a conversation's members
func ConversationRoom(conversationID int64) string {
	return "conversation:" + strconv.FormatInt(conversationID, 10)
}

// UserRoom is the per-user room, reserved for direct-to-user messaging
func UserRoom(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
