// Package redis mirrors presence transitions into Redis so REST
// consumers (and, later, other gateway instances) can read last-seen
// state without touching the in-memory registry.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "chat:presence:"

type presenceRecord struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceStore implements service.PresenceStore on Redis
type PresenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresenceStore creates a presence store. Entries expire after ttl
// so stale rows from crashed instances age out on their own.
func NewPresenceStore(client *redis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{client: client, ttl: ttl}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, userID)
}

func (s *PresenceStore) set(ctx context.Context, userID int64, online bool) error {
	data, err := json.Marshal(presenceRecord{Online: online, LastSeen: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal presence record: %w", err)
	}
	if err := s.client.Set(ctx, presenceKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write presence for user %d: %w", userID, err)
	}
	return nil
}

// SetOnline records that the user has at least one live socket
func (s *PresenceStore) SetOnline(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, true)
}

// SetOffline records that the user's last socket closed
func (s *PresenceStore) SetOffline(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, false)
}

// Get returns the mirrored presence. A missing key reads as offline
// with a zero last-seen time.
func (s *PresenceStore) Get(ctx context.Context, userID int64) (*service.Presence, error) {
	data, err := s.client.Get(ctx, presenceKey(userID)).Bytes()
	if err == redis.Nil {
		return &service.Presence{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read presence for user %d: %w", userID, err)
	}

	var rec presenceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence for user %d: %w", userID, err)
	}

	return &service.Presence{UserID: userID, Online: rec.Online, LastSeen: rec.LastSeen}, nil
}
