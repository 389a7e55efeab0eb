package session

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/store"
)

// Repository is the backing store for session state.
type Repository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, bool, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// AtomicRepository is implemented by stores shared between processes.
// Update loads the session (nil when absent), passes it to fn and saves what
// fn returns in one atomic step; fn may run more than once on contention.
// A nil result from fn skips the write.
type AtomicRepository interface {
	Repository
	Update(ctx context.Context, sessionID string, fn func(current *store.Session) (*store.Session, error)) error
}

// TurnLocker serializes whole conversation turns of one session across processes.
type TurnLocker interface {
	LockTurn(ctx context.Context, sessionID string) (unlock func(), err error)
}

// Manager serializes read-modify-write of each session behind a per-session lock.
type Manager struct {
	repo   Repository
	locks  *KeyedMutex
	turns  *KeyedMutex
	now    func() time.Time
	logger logger.ILogger
}

// NewManager creates a new session manager
func NewManager(repo Repository, log logger.ILogger) *Manager {
	return &Manager{
		repo:   repo,
		locks:  NewKeyedMutex(),
		turns:  NewKeyedMutex(),
		now:    time.Now,
		logger: log,
	}
}

// LockTurn holds the session for one question/answer turn. The lock is
// process-local, extended to the backing store when it is a TurnLocker.
// If the shared lock cannot be taken the turn proceeds under the local lock.
func (m *Manager) LockTurn(ctx context.Context, sessionID string) func() {
	unlockLocal := m.turns.Lock(sessionID)

	locker, ok := m.repo.(TurnLocker)
	if !ok {
		return unlockLocal
	}

	unlockShared, err := locker.LockTurn(ctx, sessionID)
	if err != nil {
		m.logger.Warn("SESSION", "Shared turn lock unavailable, using local lock only", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return unlockLocal
	}

	return func() {
		unlockShared()
		unlockLocal()
	}
}

// GetOrCreate returns a snapshot of the session, creating it on first reference.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*store.Session, error) {
	return m.update(ctx, sessionID, nil)
}

// Append adds a history line.
func (m *Manager) Append(ctx context.Context, sessionID, line string) (*store.Session, error) {
	return m.update(ctx, sessionID, func(s *store.Session) {
		s.History = append(s.History, line)
	})
}

// Touch records activity now.
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	_, err := m.update(ctx, sessionID, func(s *store.Session) {
		s.LastActivity = m.now()
	})
	return err
}

// Incr bumps a named counter.
func (m *Manager) Incr(ctx context.Context, sessionID, counter string) error {
	_, err := m.update(ctx, sessionID, func(s *store.Session) {
		s.Counters[counter]++
	})
	return err
}

// Snapshot returns a copy of the session without creating it.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	session, found, err := m.repo.Get(ctx, sessionID)
	if err != nil || !found {
		return nil, found, err
	}
	return session.Clone(), true, nil
}

func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	unlock := m.locks.Lock(sessionID)
	defer unlock()
	return m.repo.Delete(ctx, sessionID)
}

func (m *Manager) update(ctx context.Context, sessionID string, mutate func(*store.Session)) (*store.Session, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	if atomic, ok := m.repo.(AtomicRepository); ok {
		return m.updateAtomic(ctx, atomic, sessionID, mutate)
	}

	session, found, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !found {
		session = m.create(sessionID)
		if mutate == nil {
			if err := m.repo.Save(ctx, session); err != nil {
				return nil, fmt.Errorf("save session %s: %w", sessionID, err)
			}
			return session.Clone(), nil
		}
	}

	if mutate == nil {
		return session, nil
	}

	mutate(session)
	if err := m.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return session.Clone(), nil
}

func (m *Manager) updateAtomic(ctx context.Context, repo AtomicRepository, sessionID string, mutate func(*store.Session)) (*store.Session, error) {
	var result *store.Session
	err := repo.Update(ctx, sessionID, func(current *store.Session) (*store.Session, error) {
		if current == nil {
			current = m.create(sessionID)
		} else if mutate == nil {
			result = current.Clone()
			return nil, nil
		}
		if mutate != nil {
			mutate(current)
		}
		result = current.Clone()
		return current, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update session %s: %w", sessionID, err)
	}
	return result, nil
}

func (m *Manager) create(sessionID string) *store.Session {
	m.logger.Debug("SESSION", "Session created", map[string]interface{}{
		"session_id": sessionID,
	})
	return store.NewSession(sessionID, m.now())
}
