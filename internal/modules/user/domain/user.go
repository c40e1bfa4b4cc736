package domain

import (
	"context"
	"errors"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
)

// User represents an account in the system
type User struct {
	UserID       int64      `json:"user_id" gorm:"primaryKey;column:user_id;autoIncrement"`
	Email        string     `json:"email" gorm:"column:email;unique;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string     `json:"first_name" gorm:"column:first_name"`
	LastName     string     `json:"last_name" gorm:"column:last_name"`
	Avatar       string     `json:"avatar" gorm:"column:avatar"`
	Status       int        `json:"status" gorm:"column:status;default:1"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
}

// Session represents a refresh-token session
type Session struct {
	SessionID string    `json:"session_id" gorm:"primaryKey;column:session_id"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;index"`
	Token     string    `json:"token" gorm:"column:token;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at;index"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// User status constants
const (
	UserStatusActive    = 1
	UserStatusSuspended = 2
	UserStatusBanned    = 3
)

// IsActive checks if the user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// DisplayName is the name shown to other members
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserUseCase defines the interface for user business logic.
// This interface is used by internal adapters (HTTP, Local).
type UserUseCase interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (int64, error)
	Login(ctx context.Context, email, password string) (int64, string, string, time.Time, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*service.Identity, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error)
	GetProfile(ctx context.Context, userID int64) (*service.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, firstName, lastName, avatar string) error
}
