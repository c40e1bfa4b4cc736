package service

import "context"

// Identity is the decoded token payload attached to an authenticated
// connection or request. It is immutable for the connection's lifetime.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// Profile is the public view of a user account.
type Profile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// UserService defines the user-related operations exposed to other modules
type UserService interface {
	// ValidateToken verifies a bearer credential and returns its identity payload
	ValidateToken(ctx context.Context, token string) (*Identity, error)
	// GetProfile returns the public profile for a user
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
}
