package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

// SQLiteStore is the durable Store backing remember-me sessions.
// Rows survive restarts; the role fields are stored as JSON because
// their upstream types are not stable.
type SQLiteStore struct {
	db  *sql.DB
	log *logging.Logger
}

// NewSQLiteStore creates a SQLite-backed session store.
func NewSQLiteStore(db *sql.DB, log *logging.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With("component", "session_store"),
	}
}

// Put inserts or replaces a session row.
func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	roleID, err := json.Marshal(sess.RoleID)
	if err != nil {
		return fmt.Errorf("encoding role id: %w", err)
	}
	roleName, err := json.Marshal(sess.RoleName)
	if err != nil {
		return fmt.Errorf("encoding role name: %w", err)
	}
	timeZone, err := json.Marshal(sess.UserTimeZone)
	if err != nil {
		return fmt.Errorf("encoding time zone: %w", err)
	}

	const query = `INSERT OR REPLACE INTO sessions
		(id, user_id, organization_id, organization_name, email,
		 role_id, role_name, user_time_zone, remember_me, login_time, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.UserID, sess.OrganizationID, sess.OrganizationName, sess.Email,
		string(roleID), string(roleName), string(timeZone),
		sess.RememberMe, sess.LoginTime, sess.ExpiresAt); err != nil {
		return fmt.Errorf("inserting session %s: %w", sess.ID, err)
	}
	return nil
}

// Get returns the session for an ID.
//
// A row whose JSON fields fail to decode is treated as absent: the row
// is deleted, the corruption is logged, and ErrSessionNotFound is
// returned.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	const query = `SELECT id, user_id, organization_id, organization_name, email,
		role_id, role_name, user_time_zone, remember_me, login_time, expires_at
		FROM sessions WHERE id = ?`

	var sess Session
	var roleID, roleName, timeZone string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID, &sess.UserID, &sess.OrganizationID, &sess.OrganizationName, &sess.Email,
		&roleID, &roleName, &timeZone,
		&sess.RememberMe, &sess.LoginTime, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}

	decodeErr := decodeAny(roleID, &sess.RoleID)
	if decodeErr == nil {
		decodeErr = decodeAny(roleName, &sess.RoleName)
	}
	if decodeErr == nil {
		decodeErr = decodeAny(timeZone, &sess.UserTimeZone)
	}
	if decodeErr != nil {
		s.log.Warn("clearing corrupt session record", "session_id", id, "error", decodeErr)
		_ = s.Delete(ctx, id) //nolint:errcheck // Best effort clear
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

// Delete removes a session row. Absent IDs are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired removes sessions expired at nowMillis.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, nowMillis int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, nowMillis)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting expired sessions: %w", err)
	}
	return removed, nil
}

// decodeAny unmarshals a stored JSON field into an any slot.
// Empty strings read as nil for rows written before the field existed.
func decodeAny(raw string, dst *any) error {
	if raw == "" || raw == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
