package handlers

import (
	"errors"
	"net/http"

	"todolists/internal/logger"
	"todolists/internal/security"
	"todolists/internal/service"
	"todolists/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	renderer    Renderer
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, renderer Renderer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		renderer:    renderer,
		log:         log.WithComponent("auth"),
	}
}

// loggedIn reports whether the request carries a live session
func (h *AuthHandler) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return false
	}
	_, err = h.authService.ValidateSession(r.Context(), cookie.Value)
	return err == nil
}

func (h *AuthHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
	}
}

// Home sends visitors to their lists or to the login page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/lists", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/lists", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "login.tmpl", LoginViewData{
		Title:   "Log in - To-Do Lists",
		Success: popFlash(w, r),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	form := validation.LoginForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	data := LoginViewData{Title: "Log in - To-Do Lists", Email: form.Email}

	if err := validation.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.render(w, http.StatusBadRequest, "login.tmpl", data)
		return
	}

	session, user, err := h.authService.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "login failed", err)
			return
		}
		h.log.LogSecurityEvent("login_failed", security.GetClientIP(r), map[string]interface{}{"email": form.Email})
		data.Error = "Invalid email or password"
		h.render(w, http.StatusUnauthorized, "login.tmpl", data)
		return
	}

	http.SetCookie(w, security.SessionCookie(r, session.ID, session.ExpiresAt))
	h.log.LogUserAction(user.ID, "login", nil)
	http.Redirect(w, r, "/lists", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/lists", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "register.tmpl", RegisterViewData{Title: "Sign up - To-Do Lists"})
}

// Register handles registration form submission and logs the new user in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	form := validation.RegisterForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm"),
	}
	data := RegisterViewData{Title: "Sign up - To-Do Lists", Email: form.Email}

	if err := validation.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.render(w, http.StatusBadRequest, "register.tmpl", data)
		return
	}

	user, err := h.authService.Register(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			data.Error = "An account with that email already exists"
			h.render(w, http.StatusConflict, "register.tmpl", data)
			return
		}
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "registration failed", err)
		return
	}

	session, err := h.authService.StartSession(r.Context(), user.ID)
	if err != nil {
		// Registration succeeded but login failed - send them to log in
		h.log.WithError(err).Warnw("auto login after registration failed", "user_id", user.ID)
		redirectWithFlash(w, r, "/login", "Account created. Please log in.")
		return
	}

	http.SetCookie(w, security.SessionCookie(r, session.ID, session.ExpiresAt))
	h.log.LogUserAction(user.ID, "register", nil)
	http.Redirect(w, r, "/lists", http.StatusSeeOther)
}

// Logout ends the session and discards any unsaved edits
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			h.log.WithError(err).Warn("logout failed")
		}
	}

	http.SetCookie(w, security.ClearCookie(r, security.SessionCookieName))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// validationMessage extracts the user-facing part of a validation failure
func validationMessage(err error) string {
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ErrInvalidFormData
}
