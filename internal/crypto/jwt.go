package crypto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL is the lifetime of access tokens and their cookie.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL is the lifetime of refresh tokens and their cookie.
	RefreshTokenTTL = 7 * 24 * time.Hour

	Issuer          = "ispure"
	AccessAudience  = "ispure-access"
	RefreshAudience = "ispure-refresh"
)

// Claims is the payload of both token kinds. Refresh tokens carry only the
// session ID; the user is re-derived from the session on refresh.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email,omitempty"`
}

// TokenService signs and verifies tokens with a server secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	return &TokenService{secret: s.secret, now: now}
}

// Issue signs claims for audience with an expiry of ttl from now.
func (s *TokenService) Issue(claims Claims, audience string, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses tokenString and returns its claims. Any failure (bad
// signature, malformed token, expiry, wrong issuer or audience) yields
// nil, false; callers treat it as unauthenticated.
func (s *TokenService) Verify(tokenString, audience string) (*Claims, bool) {
	if tokenString == "" {
		return nil, false
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, false
	}
	return claims, true
}

// IssueAccessToken mints a 15 minute access token.
func (s *TokenService) IssueAccessToken(userID, sessionID, email string) (string, error) {
	return s.Issue(Claims{UserID: userID, SessionID: sessionID, Email: email}, AccessAudience, AccessTokenTTL)
}

// IssueRefreshToken mints a 7 day refresh token bound to a session.
func (s *TokenService) IssueRefreshToken(sessionID string) (string, error) {
	return s.Issue(Claims{SessionID: sessionID}, RefreshAudience, RefreshTokenTTL)
}

// VerifyAccessToken verifies an access token.
func (s *TokenService) VerifyAccessToken(token string) (*Claims, bool) {
	return s.Verify(token, AccessAudience)
}

// VerifyRefreshToken verifies a refresh token.
func (s *TokenService) VerifyRefreshToken(token string) (*Claims, bool) {
	return s.Verify(token, RefreshAudience)
}
