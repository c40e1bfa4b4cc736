// Package usecase implements the business logic for the user module.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/domain"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/repository"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCase handles registration, authentication and sessions
type UserUseCase struct {
	userRepo      *repository.UserRepository
	sessionRepo   *repository.SessionRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	jwtSecret string,
	tokenDuration time.Duration,
) *UserUseCase {
	return &UserUseCase{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// Register registers a new user
func (uc *UserUseCase) Register(ctx context.Context, email, password, firstName, lastName string) (int64, error) {
	if email == "" || password == "" {
		return 0, fmt.Errorf("email and password are required")
	}

	if len(password) < 6 {
		return 0, fmt.Errorf("password must be at least 6 characters")
	}

	exists, err := uc.userRepo.EmailExists(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		Status:       domain.UserStatusActive,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return user.UserID, nil
}

// Login authenticates a user and returns access + refresh tokens
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (int64, string, string, time.Time, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return 0, "", "", time.Time{}, domain.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return 0, "", "", time.Time{}, fmt.Errorf("user account is not active")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, "", "", time.Time{}, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.generateToken(user)
	if err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken, err := uc.generateRefreshToken()
	if err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		SessionID: refreshToken,
		UserID:    user.UserID,
		Token:     token,
		ExpiresAt: expiresAt.Add(24 * time.Hour * 7), // Refresh token valid for 7 days
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	_ = uc.userRepo.UpdateLastLogin(ctx, user.UserID)

	return user.UserID, token, refreshToken, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the identity claims
func (uc *UserUseCase) ValidateToken(ctx context.Context, tokenString string) (*service.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	ident := &service.Identity{UserID: int64(userID)}
	if v, ok := claims["email"].(string); ok {
		ident.Email = v
	}
	if v, ok := claims["first_name"].(string); ok {
		ident.FirstName = v
	}
	if v, ok := claims["last_name"].(string); ok {
		ident.LastName = v
	}
	if v, ok := claims["avatar"].(string); ok {
		ident.Avatar = v
	}

	return ident, nil
}

// Logout deletes the sessions backing a token
func (uc *UserUseCase) Logout(ctx context.Context, token string) error {
	return uc.sessionRepo.DeleteByToken(ctx, token)
}

// RefreshToken generates a new access token using a refresh token
func (uc *UserUseCase) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	session, err := uc.sessionRepo.GetBySessionID(ctx, refreshToken)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid refresh token")
	}

	if time.Now().After(session.ExpiresAt) {
		_ = uc.sessionRepo.Delete(ctx, session.SessionID)
		return "", "", time.Time{}, fmt.Errorf("refresh token expired")
	}

	user, err := uc.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("user not found")
	}

	if !user.IsActive() {
		return "", "", time.Time{}, fmt.Errorf("user account is not active")
	}

	newToken, expiresAt, err := uc.generateToken(user)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	session.Token = newToken
	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to update session: %w", err)
	}

	return newToken, refreshToken, expiresAt, nil
}

// GetProfile returns the public profile for a user
func (uc *UserUseCase) GetProfile(ctx context.Context, userID int64) (*service.Profile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &service.Profile{
		UserID:    user.UserID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Avatar:    user.Avatar,
	}, nil
}

// UpdateProfile updates the user's profile fields
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, avatar string) error {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return uc.userRepo.UpdateProfile(ctx, userID, firstName, lastName, avatar)
}

// generateToken generates a JWT token carrying the identity payload
func (uc *UserUseCase) generateToken(user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(uc.tokenDuration)

	claims := jwt.MapClaims{
		"user_id":    user.UserID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"avatar":     user.Avatar,
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// generateRefreshToken generates a random refresh token
func (uc *UserUseCase) generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
