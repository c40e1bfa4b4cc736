package domain_test

import (
	"testing"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsFrameWithoutEvent(t *testing.T) {
	_, err := domain.Decode([]byte(`{"data":{"conversationId":1}}`))
	require.Error(t, err)

	_, err = domain.Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := domain.Encode(domain.EventTypingStart, domain.TypingPayload{ConversationID: 7})
	require.NoError(t, err)

	env, err := domain.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypingStart, env.Event)
	assert.JSONEq(t, `{"conversationId":7}`, string(env.Data))
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "conversation:42", domain.ConversationRoom(42))
	assert.Equal(t, "user:7", domain.UserRoom(7))
}
