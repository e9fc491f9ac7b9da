package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the targeted session identity does not exist
// or its TTL has lapsed.
var ErrNotFound = errors.New("session not found")

// ErrInvalidState is returned when a write would persist a session whose
// expiry is not in the future.
var ErrInvalidState = errors.New("session expiry must be in the future")

// ErrRedisUnavailable wraps transient Redis transport failures so callers
// can distinguish infrastructure faults from the store's contract errors.
var ErrRedisUnavailable = errors.New("redis unavailable")

// rotateScript implements the atomic rotation unit: the old record must
// still exist, then the new record is written, the identity index is
// repointed, and the old record is deleted, all in one uninterruptible
// script. A concurrent rotation of the same identity sees EXISTS == 0 and
// loses cleanly.
const rotateScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
redis.call("SET", KEYS[3], ARGV[3], "PX", ARGV[2])
redis.call("DEL", KEYS[1])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// Store is the Redis-backed session store. The authoritative record lives
// under the session identity; a derived identity-lookup index maps the
// (user, IP, User-Agent) triple to that identity with the same TTL.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace ("session" when empty).
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "session"
	}
	return &Store{redis: rdb, prefix: prefix, now: time.Now}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// identityKey derives the index key from a one-way hash of the identity
// triple so the key space is bounded and the tuple never appears in
// storage.
func (s *Store) identityKey(userID, ip, userAgent string) string {
	sum := sha256.Sum256([]byte(userID + ":" + ip + ":" + userAgent))
	return s.prefix + ":user:" + hex.EncodeToString(sum[:])
}

func (s *Store) ttlFor(sess *Session, now time.Time) (time.Duration, error) {
	ttl := sess.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, ErrInvalidState
	}
	return ttl, nil
}

// Create persists a new session under a freshly generated identity and
// writes the identity-lookup index entry with matching TTL. Both writes
// happen in one MULTI/EXEC batch.
func (s *Store) Create(ctx context.Context, sess *Session) (*Session, error) {
	now := s.now()

	created := sess.Clone()
	created.ID = uuid.NewString()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	ttl, err := s.ttlFor(created, now)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(created)
	if err != nil {
		return nil, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(created.ID), data, ttl)
		pipe.Set(ctx, s.identityKey(created.UserID, created.IPAddress, created.UserAgent), created.ID, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return created, nil
}

// GetByID returns the session stored under id, or [ErrNotFound] once its
// TTL has lapsed.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// An undecodable record is unusable; report it as absent so the
		// caller fails closed instead of trusting a corrupt blob.
		return nil, ErrNotFound
	}

	return &sess, nil
}

// GetByIdentity resolves the (user, IP, User-Agent) triple through the
// identity-lookup index and dereferences the authoritative record. A miss
// on either hop reports [ErrNotFound].
func (s *Store) GetByIdentity(ctx context.Context, userID, ip, userAgent string) (*Session, error) {
	id, err := s.redis.Get(ctx, s.identityKey(userID, ip, userAgent)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.GetByID(ctx, id)
}

// Update rewrites an existing session and its index entry with a TTL
// recomputed from the caller-supplied expiry. The session must already
// exist.
func (s *Store) Update(ctx context.Context, sess *Session) (*Session, error) {
	if sess.ID == "" {
		return nil, ErrNotFound
	}
	if _, err := s.GetByID(ctx, sess.ID); err != nil {
		return nil, err
	}

	now := s.now()
	updated := sess.Clone()
	updated.UpdatedAt = now

	ttl, err := s.ttlFor(updated, now)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(updated.ID), data, ttl)
		pipe.Set(ctx, s.identityKey(updated.UserID, updated.IPAddress, updated.UserAgent), updated.ID, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return updated, nil
}

// Rotate replaces the session's identity: the caller passes the session
// under its old ID with the new expiry already set, and receives it back
// under a freshly generated ID with the original creation time preserved.
// The old identity is invalidated in the same atomic unit, so a refresh
// token referencing it can never succeed again.
//
// Exactly one of any set of concurrent rotations for the same identity
// succeeds; the rest fail with [ErrNotFound].
func (s *Store) Rotate(ctx context.Context, sess *Session) (*Session, error) {
	if sess.ID == "" {
		return nil, ErrNotFound
	}
	existing, err := s.GetByID(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rotated := sess.Clone()
	oldID := sess.ID
	rotated.ID = uuid.NewString()
	rotated.CreatedAt = existing.CreatedAt
	rotated.UpdatedAt = now

	ttl, err := s.ttlFor(rotated, now)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rotated)
	if err != nil {
		return nil, err
	}

	keys := []string{
		s.key(oldID),
		s.key(rotated.ID),
		s.identityKey(rotated.UserID, rotated.IPAddress, rotated.UserAgent),
	}
	res, err := rotateLua.Run(ctx, s.redis, keys, data, ttl.Milliseconds(), rotated.ID).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return nil, ErrNotFound
	}

	return rotated, nil
}

// Delete removes the authoritative record and, when resolvable, its index
// entry. It reports whether the authoritative record existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.Del(ctx, s.identityKey(sess.UserID, sess.IPAddress, sess.UserAgent))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return true, nil
}

// DeleteExpired exists for stores without native TTL. Redis expires both
// the authoritative record and the index entry itself, so there is nothing
// to reap.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := s.now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
