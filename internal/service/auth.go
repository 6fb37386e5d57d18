package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ispure/ispure-go/internal/crypto"
	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/repository"
	"github.com/ispure/ispure-go/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserNotFound       = errors.New("user not found")
)

// ErrInvalidPassword is returned by Login when the email exists but the
// password does not match. It satisfies errors.Is(err, ErrInvalidCredentials).
var ErrInvalidPassword error = credentialError("invalid password")

type credentialError string

func (e credentialError) Error() string { return string(e) }

func (e credentialError) Is(target error) bool { return target == ErrInvalidCredentials }

// UserStore is the user persistence the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionStore is the session persistence the auth service depends on.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthService handles authentication business logic.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   *crypto.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, tokens *crypto.TokenService) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Register creates a new user account, opens a session for it and returns a
// token pair.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest, userAgent string) (model.AuthResult, error) {
	if err := validate.Struct(req); err != nil {
		return model.AuthResult{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.AuthResult{}, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, crypto.MaxPasswordBytes)
		}
		return model.AuthResult{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResult{}, ErrEmailTaken
		}
		return model.AuthResult{}, err
	}

	return s.startSession(ctx, user, userAgent)
}

// Login authenticates a user and opens a new session. Every login creates
// its own session, so concurrent devices stay logged in independently.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, userAgent string) (model.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !match {
		return model.AuthResult{}, ErrInvalidPassword
	}

	return s.startSession(ctx, user, userAgent)
}

func (s *AuthService) startSession(ctx context.Context, user *model.User, userAgent string) (model.AuthResult, error) {
	session := &model.Session{
		UserID:    user.ID,
		UserAgent: userAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return model.AuthResult{}, err
	}

	userID, sessionID := user.ID.Hex(), session.ID.Hex()

	access, err := s.tokens.IssueAccessToken(userID, sessionID, user.Email)
	if err != nil {
		return model.AuthResult{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(sessionID)
	if err != nil {
		return model.AuthResult{}, err
	}

	return model.AuthResult{
		User:         model.NewUserResponse(user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The session and
// its user must both still exist. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, ok := s.tokens.VerifyRefreshToken(refreshToken)
	if !ok {
		return "", ErrInvalidToken
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}

	user, err := s.users.GetByID(ctx, session.UserID.Hex())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.tokens.IssueAccessToken(user.ID.Hex(), session.ID.Hex(), user.Email)
}

// Logout ends the session referenced by the access token. It never fails: a
// missing or invalid token leaves the session store untouched, and an
// already deleted session or a store error still leaves the caller logged out.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	claims, ok := s.tokens.VerifyAccessToken(accessToken)
	if !ok {
		return
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		slog.Error("failed to delete session", "session_id", claims.SessionID, "error", err)
	}
}
