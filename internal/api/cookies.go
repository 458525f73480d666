package api

import (
	"net/http"
	"time"

	"noteserver/internal/config"
)

const tokenCookieName = "token"

// cookieWriter centralizes the session cookie contract: HttpOnly, path /,
// Secure in production, SameSite per deployment (lax same-site, none for a
// cross-site frontend).
type cookieWriter struct {
	secure   bool
	sameSite http.SameSite
	maxAge   time.Duration
}

func newCookieWriter(cfg *config.Config) *cookieWriter {
	sameSite := http.SameSiteLaxMode
	if cfg.Auth.CookieSameSite == "none" {
		sameSite = http.SameSiteNoneMode
	}

	return &cookieWriter{
		secure:   cfg.Server.Production,
		sameSite: sameSite,
		maxAge:   cfg.Auth.TokenTTL,
	}
}

func (c *cookieWriter) setToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func (c *cookieWriter) clearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
