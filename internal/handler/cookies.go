package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ispure/ispure-go/internal/crypto"
	"github.com/ispure/ispure-go/internal/middleware"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps "none", "lax" or "strict" to its http.SameSite value.
// Anything else yields SameSite=None, which cross-site dashboards need.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		// Browsers reject SameSite=None cookies without Secure.
		Secure:   c.Secure || c.SameSite == http.SameSiteNoneMode,
		SameSite: c.SameSite,
	}
}

func (c CookieConfig) setAccess(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, token, int(crypto.AccessTokenTTL/time.Second)))
}

func (c CookieConfig) setRefresh(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, token, int(crypto.RefreshTokenTTL/time.Second)))
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, "", -1))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
