package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

const logoutCookieTTL = 10 * time.Second

func sessionCookie(cfg Config, token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(cfg.cookieTTL()),
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: http.SameSiteLaxMode,
	}
}

func logoutCookie(cfg Config, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "none",
		Path:     "/",
		Expires:  now.Add(logoutCookieTTL),
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: http.SameSiteLaxMode,
	}
}

// tokenFromRequest prefers a bearer header over the cookie. The logout
// placeholder is treated as absent.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "none" {
		return c.Value
	}
	return ""
}
