package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sevenbarberclub/booking/internal/booking"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

const (
	defaultTTL     = 2 * time.Hour
	defaultLockTTL = 30 * time.Second
)

// releaseLock deletes the lock only if this holder still owns it.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendLock pushes the lock expiry out only if this holder still owns it.
var extendLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisStore keeps sessions as JSON blobs with a TTL.
type RedisStore struct {
	redis   *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time
	logger  *logging.Logger
}

// NewRedisStore creates a Redis-backed store. ttl <= 0 uses two hours.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisStore {
	if client == nil {
		panic("sessions: redis client required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{redis: client, ttl: ttl, lockTTL: defaultLockTTL, now: time.Now, logger: logger}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}

func (s *RedisStore) lockKey(id string) string {
	return fmt.Sprintf("booking:session:%s:lock", id)
}

// Create stores a new idle session.
func (s *RedisStore) Create(ctx context.Context) (*booking.Session, error) {
	sess := booking.NewSession(NewID())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session, returning ErrNotFound once it expired.
func (s *RedisStore) Get(ctx context.Context, id string) (*booking.Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessions: get: %w", err)
	}

	var sess booking.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("sessions: unmarshal: %w", err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *booking.Session) error {
	sess.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("sessions: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("sessions: set: %w", err)
	}
	return nil
}

// Lock takes a short-lived lock on the session. The lock is renewed every
// third of its TTL until the returned func runs, so a slow calendar insert
// cannot outlive it.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	key := s.lockKey(id)
	ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("sessions: lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}

	done := make(chan struct{})
	go s.keepLock(id, token, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			// Release even if the request context was cancelled.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseLock.Run(releaseCtx, s.redis, []string{key}, token).Err(); err != nil {
				s.logger.Warn("sessions: release lock failed", "session_id", id, "error", err)
			}
		})
	}, nil
}

func (s *RedisStore) keepLock(id, token string, done <-chan struct{}) {
	ticker := time.NewTicker(s.lockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			n, err := extendLock.Run(ctx, s.redis, []string{s.lockKey(id)}, token, s.lockTTL.Milliseconds()).Int()
			cancel()
			if err != nil {
				s.logger.Warn("sessions: renew lock failed", "session_id", id, "error", err)
				continue
			}
			if n == 0 {
				s.logger.Warn("sessions: lock lost", "session_id", id)
				return
			}
		}
	}
}
