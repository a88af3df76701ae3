package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/munisearch/lienportal-core/internal/govmetric"
	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

// Session lifetimes by storage scope.
const (
	// rememberTTL is the lifetime of a remember-me session.
	rememberTTL = 7 * 24 * time.Hour

	// ephemeralTTL is the lifetime of a session without remember-me.
	ephemeralTTL = 24 * time.Hour

	// defaultLoginTimeout bounds the upstream credential check.
	defaultLoginTimeout = 30 * time.Second
)

// loginFailedMessage is the generic failure shown when the upstream
// gave no structured error.
const loginFailedMessage = "Login failed. Please check your email and password."

// Authenticator validates credentials against the upstream.
// Satisfied by *govmetric.Client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*govmetric.LoginResponse, error)
}

// Manager owns the session lifecycle: it is the only writer of session
// state. Remember-me sessions go to the durable store, others to the
// ephemeral store; reads consult both.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Concurrent logins for
//     the same email are coalesced into a single upstream call.
type Manager struct {
	durable   Store
	ephemeral Store
	upstream  Authenticator

	jwtSecret    []byte
	loginTimeout time.Duration

	loginGroup singleflight.Group
	log        *logging.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// ManagerConfig contains session manager configuration.
type ManagerConfig struct {
	// JWTSecret signs session token handles.
	JWTSecret string

	// LoginTimeout bounds the upstream credential check.
	// Zero means the 30-second default.
	LoginTimeout time.Duration
}

// ManagerDeps contains the manager's dependencies.
type ManagerDeps struct {
	// Durable holds remember-me sessions across restarts.
	Durable Store

	// Ephemeral holds sessions that should not survive a restart.
	Ephemeral Store

	// Upstream validates credentials.
	Upstream Authenticator

	// Log is the parent logger.
	Log *logging.Logger
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig, deps ManagerDeps) *Manager {
	timeout := cfg.LoginTimeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	return &Manager{
		durable:      deps.Durable,
		ephemeral:    deps.Ephemeral,
		upstream:     deps.Upstream,
		jwtSecret:    []byte(cfg.JWTSecret),
		loginTimeout: timeout,
		log:          deps.Log.With("component", "session"),
		now:          time.Now,
	}
}

// Login authenticates against the upstream and creates a session.
//
// Failures are results, not errors: bad credentials, upstream outages
// and timeouts all come back as {Success: false, Message}. The first
// structured upstream error message is surfaced when present.
//
// Concurrent logins presenting identical credentials share one
// upstream call and one session, so a double-submitted form cannot
// race itself. Callers with different passwords never coalesce: a
// mismatched credential must not ride along on someone else's result.
//
// Parameters:
//   - ctx: Context for cancellation (a login timeout is applied on top)
//   - email: Account email
//   - password: Account password
//   - rememberMe: Selects the durable storage scope and the longer TTL
//
// Returns:
//   - *LoginResult: Outcome with token and session on success
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) *LoginResult {
	result, _, _ := m.loginGroup.Do(loginKey(email, password, rememberMe), func() (any, error) {
		// The shared call outlives any single caller's request context;
		// doLogin applies its own timeout.
		return m.doLogin(context.WithoutCancel(ctx), email, password, rememberMe), nil
	})
	return result.(*LoginResult)
}

// loginKey coalesces only callers presenting identical credentials.
// The password goes into the key hashed, never in clear.
func loginKey(email, password string, rememberMe bool) string {
	sum := sha256.Sum256([]byte(email + "\x00" + password))
	return fmt.Sprintf("%x|%t", sum, rememberMe)
}

func (m *Manager) doLogin(ctx context.Context, email, password string, rememberMe bool) *LoginResult {
	ctx, cancel := context.WithTimeout(ctx, m.loginTimeout)
	defer cancel()

	resp, err := m.upstream.Login(ctx, email, password)
	if err != nil {
		m.log.Warn("upstream login failed", "email", email, "error", err)
		return &LoginResult{Success: false, Message: loginFailedMessage}
	}

	if !resp.LoginIsValid {
		message := resp.FirstErrorMessage()
		if message == "" {
			message = loginFailedMessage
		}
		m.log.Info("login rejected", "email", email)
		return &LoginResult{Success: false, Message: message}
	}

	// A valid login without an identity is unusable downstream.
	if resp.UserID == "" || resp.OrganizationID == 0 {
		m.log.Warn("upstream login response incomplete",
			"email", email,
			"user_id", resp.UserID,
			"organization_id", resp.OrganizationID,
		)
		return &LoginResult{Success: false, Message: loginFailedMessage}
	}

	now := m.now()
	ttl := ephemeralTTL
	if rememberMe {
		ttl = rememberTTL
	}

	sess := &Session{
		ID:               uuid.NewString(),
		UserID:           resp.UserID,
		OrganizationID:   resp.OrganizationID,
		OrganizationName: resp.OrganizationName,
		RoleID:           resp.RoleID,
		RoleName:         resp.RoleName,
		UserTimeZone:     resp.UserTimeZone,
		Email:            email,
		RememberMe:       rememberMe,
		LoginTime:        now.UnixMilli(),
		ExpiresAt:        now.Add(ttl).UnixMilli(),
	}

	if err := m.storeFor(sess).Put(ctx, sess); err != nil {
		m.log.Error("storing session failed", "email", email, "error", err)
		return &LoginResult{Success: false, Message: loginFailedMessage}
	}

	token, err := generateToken(sess, m.jwtSecret)
	if err != nil {
		m.log.Error("generating session token failed", "email", email, "error", err)
		_ = m.storeFor(sess).Delete(ctx, sess.ID) //nolint:errcheck // Best effort undo
		return &LoginResult{Success: false, Message: loginFailedMessage}
	}

	m.log.Info("login succeeded",
		"user_id", sess.UserID,
		"organization_id", sess.OrganizationID,
		"remember_me", rememberMe,
	)
	return &LoginResult{Success: true, Token: token, Session: sess}
}

// Validate resolves a bearer token to its live session.
//
// Expired sessions are cleared on sight and read as ErrSessionExpired;
// unknown or corrupt sessions read as ErrSessionNotFound.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	claims, err := parseToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}

	sess, err := m.lookup(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	if sess.Expired(m.now()) {
		// Normal lifecycle event, not an error condition worth a warn.
		m.log.Info("session expired", "session_id", sess.ID, "user_id", sess.UserID)
		m.deleteEverywhere(ctx, sess.ID)
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Refresh extends a session's expiry by its scope's full TTL and
// rotates the token, since the old token's own expiry still dates
// from login. Returns ok=false when the session is unknown, already
// expired, or the token is invalid.
func (m *Manager) Refresh(ctx context.Context, token string) (newToken string, ok bool, err error) {
	sess, err := m.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrInvalidToken) {
			return "", false, nil
		}
		return "", false, err
	}

	ttl := ephemeralTTL
	if sess.RememberMe {
		ttl = rememberTTL
	}
	sess.ExpiresAt = m.now().Add(ttl).UnixMilli()

	if err := m.storeFor(sess).Put(ctx, sess); err != nil {
		return "", false, fmt.Errorf("refreshing session %s: %w", sess.ID, err)
	}

	newToken, err = generateToken(sess, m.jwtSecret)
	if err != nil {
		return "", false, fmt.Errorf("rotating token for session %s: %w", sess.ID, err)
	}

	m.log.Debug("session refreshed", "session_id", sess.ID, "user_id", sess.UserID)
	return newToken, true, nil
}

// Logout destroys a session. Unknown and already-expired tokens are
// handled the same as live ones: logout is idempotent and never fails
// the caller over a missing session.
func (m *Manager) Logout(ctx context.Context, token string) {
	claims, err := parseToken(token, m.jwtSecret)
	if err != nil {
		return
	}
	m.deleteEverywhere(ctx, claims.SessionID)
	m.log.Info("logout", "session_id", claims.SessionID)
}

// CurrentUserID returns the user ID behind a token, or an error when
// no live session exists.
func (m *Manager) CurrentUserID(ctx context.Context, token string) (string, error) {
	sess, err := m.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	return sess.UserID, nil
}

// CurrentOrganizationID returns the organization behind a token.
func (m *Manager) CurrentOrganizationID(ctx context.Context, token string) (int, error) {
	sess, err := m.Validate(ctx, token)
	if err != nil {
		return 0, err
	}
	return sess.OrganizationID, nil
}

// Sweep removes expired sessions from both stores and returns the
// count. Store failures are logged, not propagated: the next sweep
// retries anyway.
func (m *Manager) Sweep(ctx context.Context) int64 {
	nowMillis := m.now().UnixMilli()
	var total int64

	for _, store := range []Store{m.durable, m.ephemeral} {
		removed, err := store.DeleteExpired(ctx, nowMillis)
		if err != nil {
			m.log.Warn("sweep failed", "error", err)
			continue
		}
		total += removed
	}

	if total > 0 {
		m.log.Info("swept expired sessions", "count", total)
	}
	return total
}

// SweepLoop runs Sweep on a fixed interval until ctx is cancelled.
// Run it in its own goroutine.
func (m *Manager) SweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// lookup finds a session in either store. The durable store is checked
// first: remember-me sessions outnumber ephemeral ones in practice.
func (m *Manager) lookup(ctx context.Context, id string) (*Session, error) {
	sess, err := m.durable.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return m.ephemeral.Get(ctx, id)
}

// storeFor selects the storage scope for a session.
func (m *Manager) storeFor(sess *Session) Store {
	if sess.RememberMe {
		return m.durable
	}
	return m.ephemeral
}

// deleteEverywhere removes a session ID from both stores.
func (m *Manager) deleteEverywhere(ctx context.Context, id string) {
	if err := m.durable.Delete(ctx, id); err != nil {
		m.log.Warn("deleting durable session failed", "session_id", id, "error", err)
	}
	if err := m.ephemeral.Delete(ctx, id); err != nil {
		m.log.Warn("deleting ephemeral session failed", "session_id", id, "error", err)
	}
}
