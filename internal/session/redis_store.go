package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

// keyPrefix namespaces session keys in a shared Redis instance.
const keyPrefix = "lienportal:session:"

// RedisStore is an ephemeral Store backed by Redis, for deployments
// that run more than one portal instance. Keys carry a TTL matching
// the session expiry, so Redis prunes most expired sessions itself.
type RedisStore struct {
	client *redis.Client
	log    *logging.Logger
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, log *logging.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		log:    log.With("component", "session_store"),
	}
}

// Put stores the session under its key with a TTL equal to the
// remaining validity. Already-expired sessions are not stored.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	ttl := time.Until(time.UnixMilli(sess.ExpiresAt))
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.ID, err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("storing session %s: %w", sess.ID, err)
	}
	return nil
}

// Get returns the session for an ID. Corrupt payloads are cleared and
// read as absent.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("fetching session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		s.log.Warn("clearing corrupt session record", "session_id", id, "error", err)
		_ = s.Delete(ctx, id) //nolint:errcheck // Best effort clear
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session key. Absent keys are a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis TTLs expire keys server-side.
func (s *RedisStore) DeleteExpired(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}
