// internal/server/auth.go
package server

import (
	"encoding/json"
	"net/http"
	"time"

	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates against the backend, then mints the console's
// own session cookie for the returned identity.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, commonerrors.NewSessionInvalidError("invalid login body"))
		return
	}

	identity, err := s.backend.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := s.sessions.Create(r.Context(), session.Session{
		Role:      identity.Role,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"email": sess.Email,
		"role":  sess.Role,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.cfg.Session.CookieName)
	if err == nil {
		_ = s.sessions.Destroy(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// requireAdmin gates the console views behind a valid admin session. The
// guard decision comes out as JSON: the caller follows redirect_to.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session

		if cookie, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			sess, _ = s.sessions.Get(r.Context(), cookie.Value)
		}

		decision := session.Guard(sess, session.RoleAdmin, time.Now())
		if !decision.Allow {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"message":     commonerrors.UserMessage(commonerrors.NewSessionInvalidError("login required")),
				"redirect_to": decision.RedirectTo,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
