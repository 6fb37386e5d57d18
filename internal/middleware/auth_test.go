package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ispure/ispure-go/internal/crypto"
)

func protected(tokens *crypto.TokenService) http.Handler {
	return RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(claims.UserID))
	}))
}

func TestRequireAuth(t *testing.T) {
	tokens := crypto.NewTokenService("test-secret")
	access, err := tokens.IssueAccessToken("user-1", "session-1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	refresh, err := tokens.IssueRefreshToken("session-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{"no cookie", nil, http.StatusUnauthorized, "No token provided"},
		{"empty cookie", &http.Cookie{Name: AccessTokenCookie, Value: ""}, http.StatusUnauthorized, "No token provided"},
		{"garbage", &http.Cookie{Name: AccessTokenCookie, Value: "garbage"}, http.StatusUnauthorized, "Invalid or expired token"},
		{"refresh token as access", &http.Cookie{Name: AccessTokenCookie, Value: refresh}, http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", &http.Cookie{Name: AccessTokenCookie, Value: access}, http.StatusOK, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			protected(tokens).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ClaimsFromContext(req.Context()); ok {
		t.Fatal("expected no claims in a bare context")
	}
}
