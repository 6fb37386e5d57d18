package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ispure/ispure-go/internal/middleware"
	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/service"
)

// Authenticator is the account logic behind the auth endpoints.
type Authenticator interface {
	Register(ctx context.Context, req model.CreateUserRequest, userAgent string) (model.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest, userAgent string) (model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service Authenticator
	cookies CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc Authenticator, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), req, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			serverError(w, r, err)
		}
		return
	}

	h.cookies.setAccess(w, res.AccessToken)
	h.cookies.setRefresh(w, res.RefreshToken)
	writeJSON(w, http.StatusCreated, res.User)
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req, r.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		serverError(w, r, err)
		return
	}

	h.cookies.setAccess(w, res.AccessToken)
	h.cookies.setRefresh(w, res.RefreshToken)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Login successful"})
}

// HandleLogout handles POST /api/auth/logout requests. It always succeeds.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), cookieValue(r, middleware.AccessTokenCookie))

	h.cookies.clear(w)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logout successful"})
}

// HandleMe handles GET /api/auth/me requests. The identity comes from the
// verified access token alone.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("No token provided"))
		return
	}

	writeJSON(w, http.StatusOK, model.MeResponse{Email: claims.Email, UserID: claims.UserID})
}

// HandleRefresh handles POST /api/auth/refresh requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := cookieValue(r, middleware.RefreshTokenCookie)
	if refresh == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Missing refresh token"))
		return
	}

	access, err := h.service.Refresh(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrSessionNotFound),
			errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		default:
			serverError(w, r, err)
		}
		return
	}

	h.cookies.setAccess(w, access)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Access token refreshed"})
}
