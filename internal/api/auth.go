package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/munisearch/lienportal-core/internal/session"
)

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// handleLogin authenticates against the upstream and opens a session.
//
// Failed logins are a 200 with {success:false, message}: the frontend
// shows the message inline, and credential failures are not transport
// errors.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	result := s.sessions.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if s.metrics != nil {
		s.metrics.RecordLogin(result.Success)
	}

	writeJSON(w, http.StatusOK, result)
}

// handleLogout destroys the caller's session. Always succeeds: logging
// out an expired or unknown session is a no-op, not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.Logout(r.Context(), token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshResponse is the POST /auth/refresh reply. Token carries the
// rotated handle when the refresh succeeded.
type refreshResponse struct {
	Refreshed bool   `json:"refreshed"`
	Token     string `json:"token,omitempty"`
}

// handleRefresh extends the caller's session expiry and rotates the
// session token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	newToken, refreshed, err := s.sessions.Refresh(r.Context(), token)
	if err != nil {
		s.logger.Error("session refresh failed", "error", err)
		writeInternalError(w, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Refreshed: refreshed, Token: newToken})
}

// expiringSoonThreshold is the remaining-lifetime window below which
// the session report flags itself for a refresh prompt.
const expiringSoonThreshold = 30 * time.Minute

// sessionResponse is the GET /auth/session reply: the session plus
// derived timings so the frontend does no clock arithmetic itself.
type sessionResponse struct {
	*session.Session
	AgeMillis      int64 `json:"ageMillis"`
	TimeToExpiryMs int64 `json:"timeToExpiryMillis"`
	ExpiringSoon   bool  `json:"expiringSoon"`
}

// handleCurrentSession returns the authenticated caller's session.
// The frontend polls this on load to restore state.
func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		writeUnauthorized(w, "no session")
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, sessionResponse{
		Session:        sess,
		AgeMillis:      sess.Age(now).Milliseconds(),
		TimeToExpiryMs: sess.TimeUntilExpiry(now).Milliseconds(),
		ExpiringSoon:   sess.ExpiringSoon(now, expiringSoonThreshold),
	})
}
