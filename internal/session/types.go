package session

import "time"

// Session is the server-side record of one login.
//
// LoginTime and ExpiresAt are epoch milliseconds, matching the wire
// format clients consume. Invariant: ExpiresAt > LoginTime; a session
// is valid only while ExpiresAt > now.
type Session struct {
	ID               string `json:"id"`
	UserID           string `json:"userId"`
	OrganizationID   int    `json:"organizationId"`
	OrganizationName string `json:"organizationName,omitempty"`

	// RoleID, RoleName and UserTimeZone carry whatever the upstream
	// sent; their types are not stable across upstream versions.
	RoleID       any `json:"roleId,omitempty"`
	RoleName     any `json:"roleName,omitempty"`
	UserTimeZone any `json:"userTimeZone,omitempty"`

	Email      string `json:"email"`
	RememberMe bool   `json:"rememberMe"`

	LoginTime int64 `json:"loginTime"`
	ExpiresAt int64 `json:"expiresAt"`
}

// Age returns how long ago the session was created.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.LoginTime))
}

// TimeUntilExpiry returns the remaining validity. Negative once expired.
func (s *Session) TimeUntilExpiry(now time.Time) time.Duration {
	return time.UnixMilli(s.ExpiresAt).Sub(now)
}

// Expired reports whether the session's expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return s.TimeUntilExpiry(now) <= 0
}

// ExpiringSoon reports whether the session is still valid but has less
// than threshold remaining. Expired sessions are not "expiring soon".
func (s *Session) ExpiringSoon(now time.Time, threshold time.Duration) bool {
	remaining := s.TimeUntilExpiry(now)
	return remaining > 0 && remaining < threshold
}

// LoginResult is the outcome of a login attempt. Failures are data,
// not errors: Success is false and Message carries the reason.
type LoginResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token,omitempty"`
	Session *Session `json:"session,omitempty"`
}
