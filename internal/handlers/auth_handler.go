package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexbto/stonks/internal/middleware"
	"github.com/alexbto/stonks/internal/services"
	"github.com/alexbto/stonks/internal/session"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	auth     services.AuthService
	sessions session.Store
	render   *Renderer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth services.AuthService, sessions session.Store, render *Renderer) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		render:   render,
	}
}

// RegisterRoutes registers the public authentication routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/login", h.LoginForm).Methods("GET")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("GET")
	router.HandleFunc("/register", h.RegisterForm).Methods("GET")
	router.HandleFunc("/register", h.Register).Methods("POST")
}

// LoginForm shows the login page
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login.html", nil)
}

// Login verifies the submitted credentials and starts a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Forget any existing session before issuing a new one
	h.revokeSession(r)

	user, err := h.auth.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout revokes the session and redirects to the login flow
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.revokeSession(r)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm shows the registration page
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "register.html", nil)
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	_, err := h.auth.Register(
		r.Context(),
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("confirm_password"),
	)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// revokeSession deletes the session named by the request cookie, if any.
func (h *AuthHandler) revokeSession(r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		h.sessions.Delete(r.Context(), cookie.Value)
	}
}
