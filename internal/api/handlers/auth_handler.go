package handlers

import (
	"net/http"

	"github.com/bhamfamilies/directory/internal/api/middleware"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	"github.com/bhamfamilies/directory/pkg/config"
)

// AuthHandler handles the thin slice of auth this service owns: exposing
// the session user and redirecting to the external identity provider.
type AuthHandler struct {
	sessions providers.SessionStore
	cfg      *config.AuthConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions providers.SessionStore, cfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cfg:      cfg,
	}
}

// GetCurrentUser handles GET /api/auth/user
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// Login handles GET /api/login by redirecting to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.LoginURL, http.StatusFound)
}

// Logout handles GET /api/logout. The local session is revoked and the
// cookie cleared before handing off to the provider's logout flow.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil && cookie.Value != "" && h.sessions != nil {
		// Revocation failure is not fatal; the cookie is gone either way.
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, h.cfg.LogoutURL, http.StatusFound)
}
