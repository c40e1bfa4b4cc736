package service

import (
	"context"
	"time"
)

// Presence is the user-level online state mirrored outside the registry.
type Presence struct {
	UserID   int64     `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceStore mirrors presence transitions for REST consumers. The
// in-memory connection registry stays the source of truth for fanout;
// store writes are best-effort.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*Presence, error)
}
