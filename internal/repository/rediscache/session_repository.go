package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-chatbot-be/pkg/rag/session"
	"ai-chatbot-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "chatbot:session:"
	lockPrefix = "chatbot:session-turn:"

	maxUpdateAttempts = 10

	// DefaultTurnLockTTL outlasts the longest turn the backend timeouts allow.
	DefaultTurnLockTTL   = 3 * time.Minute
	turnLockPollInterval = 50 * time.Millisecond
)

var (
	// ErrUpdateConflict is returned when a session kept changing under an update.
	ErrUpdateConflict = errors.New("session update conflict")
	// ErrTurnLockTimeout is returned when another process held the turn for too long.
	ErrTurnLockTimeout = errors.New("session turn lock timeout")
)

// releaseLock deletes the lock only while it still carries our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionRepository stores sessions as JSON under a sliding TTL so several
// API instances can share conversation state.
type SessionRepository struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

var (
	_ session.AtomicRepository = (*SessionRepository)(nil)
	_ session.TurnLocker       = (*SessionRepository)(nil)
)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl, lockTTL: DefaultTurnLockTTL}
}

// WithTurnLockTTL changes how long an abandoned turn lock survives.
func (r *SessionRepository) WithTurnLockTTL(ttl time.Duration) *SessionRepository {
	if ttl > 0 {
		r.lockTTL = ttl
	}
	return r
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	return r.get(ctx, r.rdb, sessionID)
}

// Update runs fn inside WATCH/MULTI so concurrent writers from other
// processes cannot overwrite each other. It retries when the key changed.
func (r *SessionRepository) Update(ctx context.Context, sessionID string, fn func(current *store.Session) (*store.Session, error)) error {
	key := keyPrefix + sessionID

	txf := func(tx *redis.Tx) error {
		current, found, err := r.get(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !found {
			current = nil
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update session %s: %w", sessionID, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUpdateConflict, sessionID)
}

// LockTurn takes a SET NX PX lock for the session, waiting while another
// process holds it. The returned func releases the lock if it is still ours.
func (r *SessionRepository) LockTurn(ctx context.Context, sessionID string) (func(), error) {
	key := lockPrefix + sessionID
	token := uuid.NewString()
	deadline := time.Now().Add(r.lockTTL)

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock session %s: %w", sessionID, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrTurnLockTimeout, sessionID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(turnLockPollInterval):
		}
	}

	return func() {
		// The turn may have outlived ctx; release on a fresh context.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, r.rdb, []string{key}, token).Err()
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, keyPrefix+sessionID).Err()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *SessionRepository) get(ctx context.Context, c getter, sessionID string) (*store.Session, bool, error) {
	data, err := c.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get session %s: %w", sessionID, err)
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	if session.Counters == nil {
		session.Counters = map[string]int{}
	}
	return &session, true, nil
}
