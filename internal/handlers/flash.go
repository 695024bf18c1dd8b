package handlers

import (
	"encoding/base64"
	"net/http"

	"todolists/internal/security"
)

// setFlash stores a one-shot message shown on the next rendered page
func setFlash(w http.ResponseWriter, r *http.Request, message string) {
	http.SetCookie(w, security.Cookie(r, FlashCookieName, base64.RawURLEncoding.EncodeToString([]byte(message))))
}

// popFlash returns the pending flash message, if any, and clears it
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, security.ClearCookie(r, FlashCookieName))

	message, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(message)
}

// redirectWithFlash sets a flash message and redirects with 303
func redirectWithFlash(w http.ResponseWriter, r *http.Request, url, message string) {
	setFlash(w, r, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
