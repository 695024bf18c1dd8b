package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the login session id.
// The same id keys the session's staged list.
const SessionCookieName = "session_id"

// GenerateSessionID returns a random UUID string
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSecureRequest reports whether the client used HTTPS, directly or through
// a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// Cookie builds an HttpOnly, SameSite=Lax, site-wide cookie. It is a
// browser-session cookie unless the caller sets Expires.
func Cookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionCookie carries sessionID until expires
func SessionCookie(r *http.Request, sessionID string, expires time.Time) *http.Cookie {
	c := Cookie(r, SessionCookieName, sessionID)
	c.Expires = expires
	return c
}

// ClearCookie tells the browser to drop name
func ClearCookie(r *http.Request, name string) *http.Cookie {
	c := Cookie(r, name, "")
	c.MaxAge = -1
	return c
}
