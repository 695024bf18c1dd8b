package handlers

import "net/http"

// Routes collects the handlers served by the application. Metrics is
// mounted at /metrics when set.
type Routes struct {
	Auth       *AuthHandler
	Lists      *ListHandler
	Health     *HealthHandler
	Middleware *Middleware
	Metrics    http.Handler
	StaticPath string
}

// Handler builds the request multiplexer wrapped in request observation
func (rt Routes) Handler() http.Handler {
	mux := http.NewServeMux()
	m := rt.Middleware
	auth := m.RequireAuth
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(m.CSRFProtect(h))
	}

	if rt.StaticPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticPath))))
	}
	mux.HandleFunc("GET /healthz", rt.Health.Healthz)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Auth routes
	mux.HandleFunc("GET /{$}", rt.Auth.Home)
	mux.HandleFunc("GET /login", rt.Auth.ShowLogin)
	mux.HandleFunc("POST /login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /register", rt.Auth.ShowRegister)
	mux.HandleFunc("POST /register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /logout", rt.Auth.Logout)

	// Lists
	mux.HandleFunc("GET /lists", auth(rt.Lists.ShowLists))
	mux.HandleFunc("POST /lists/new", protected(rt.Lists.CreateList))
	mux.HandleFunc("GET /lists/{handle}", auth(rt.Lists.OpenList))
	mux.HandleFunc("POST /lists/{handle}/delete", protected(rt.Lists.DeleteList))
	mux.HandleFunc("POST /lists/{handle}/share", protected(rt.Lists.ShareList))
	mux.HandleFunc("GET /share/{token}", auth(rt.Lists.AcceptShare))

	// Edit stage
	mux.HandleFunc("GET /edit", auth(rt.Lists.ShowEdit))
	mux.HandleFunc("POST /edit/items", protected(rt.Lists.AppendItem))
	mux.HandleFunc("POST /edit/items/{position}/delete", protected(rt.Lists.DeleteItem))
	mux.HandleFunc("POST /edit/items/{position}/important", protected(rt.Lists.ToggleImportant))
	mux.HandleFunc("POST /edit/items/{position}/done", protected(rt.Lists.ToggleDone))
	mux.HandleFunc("POST /edit/reorder", protected(rt.Lists.Reorder))
	mux.HandleFunc("POST /edit/name", protected(rt.Lists.Rename))
	mux.HandleFunc("POST /edit/discard", protected(rt.Lists.Discard))
	mux.HandleFunc("POST /edit/save", protected(rt.Lists.Save))

	return m.Observe(mux)
}
