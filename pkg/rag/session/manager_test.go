package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(memory.NewSessionRepository(time.Hour, time.Minute), logger.NewNopLogger())
}

func TestGetOrCreateInitializesState(t *testing.T) {
	m := newTestManager()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	s, err := m.GetOrCreate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.ID)
	assert.Equal(t, fixed, s.CreatedAt)
	assert.Equal(t, fixed, s.LastActivity)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Counters)

	_, err = m.Append(context.Background(), "s-1", "Q: hello")
	require.NoError(t, err)

	again, err := m.GetOrCreate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q: hello"}, again.History)
}

func TestTouchAndIncr(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.GetOrCreate(ctx, "s")
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	require.NoError(t, m.Touch(ctx, "s"))
	require.NoError(t, m.Incr(ctx, "s", "questions"))
	require.NoError(t, m.Incr(ctx, "s", "questions"))

	s, err := m.GetOrCreate(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, now, s.LastActivity)
	assert.Equal(t, 2, s.Counters["questions"])
}

func TestSnapshotsAreIndependent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	s, err := m.Append(ctx, "s", "Q: one")
	require.NoError(t, err)
	s.History[0] = "tampered"

	fresh, err := m.GetOrCreate(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q: one"}, fresh.History)
}

func TestConcurrentAppendsOnSameSessionAreNotLost(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Append(ctx, "shared", fmt.Sprintf("Q: %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, err := m.GetOrCreate(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, s.History, 100)
	assert.Equal(t, 0, m.locks.size())
}

func TestDifferentSessionsDoNotCrossContaminate(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := m.Append(ctx, id, "Q: "+id)
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"alpha", "beta"} {
		s, err := m.GetOrCreate(ctx, id)
		require.NoError(t, err)
		require.Len(t, s.History, 20)
		for _, line := range s.History {
			assert.Equal(t, "Q: "+id, line)
		}
	}
}

func TestKeyedMutexDoesNotBlockOtherKeys(t *testing.T) {
	k := NewKeyedMutex()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

// sharedRepository stands in for a store shared by several processes: the
// managers in a test share it but not their in-process locks.
type sharedRepository struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
	updates  int

	turnMu  sync.Mutex
	lockErr error
}

func newSharedRepository() *sharedRepository {
	return &sharedRepository{sessions: make(map[string]*store.Session)}
}

func (r *sharedRepository) Get(_ context.Context, id string) (*store.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s.Clone(), ok, nil
}

func (r *sharedRepository) Save(_ context.Context, s *store.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *sharedRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *sharedRepository) Update(_ context.Context, id string, fn func(*store.Session) (*store.Session, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	next, err := fn(r.sessions[id].Clone())
	if err != nil || next == nil {
		return err
	}
	r.sessions[id] = next.Clone()
	return nil
}

func (r *sharedRepository) LockTurn(_ context.Context, _ string) (func(), error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	r.turnMu.Lock()
	return r.turnMu.Unlock, nil
}

func TestManagersSharingAStoreDoNotLoseAppends(t *testing.T) {
	repo := newSharedRepository()
	a := NewManager(repo, logger.NewNopLogger())
	b := NewManager(repo, logger.NewNopLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := a
			if i%2 == 1 {
				m = b
			}
			_, err := m.Append(ctx, "shared", fmt.Sprintf("Q: %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, found, err := a.Snapshot(ctx, "shared")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, s.History, 100)
	assert.Equal(t, 100, repo.updates)
}

func TestTurnLockKeepsAlternationAcrossManagers(t *testing.T) {
	repo := newSharedRepository()
	managers := []*Manager{
		NewManager(repo, logger.NewNopLogger()),
		NewManager(repo, logger.NewNopLogger()),
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := managers[i%2]
			unlock := m.LockTurn(ctx, "turns")
			defer unlock()

			_, err := m.Append(ctx, "turns", fmt.Sprintf("Q: %d", i))
			assert.NoError(t, err)
			time.Sleep(time.Millisecond)
			_, err = m.Append(ctx, "turns", fmt.Sprintf("A: %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, _, err := managers[0].Snapshot(ctx, "turns")
	require.NoError(t, err)
	require.Len(t, s.History, 40)
	for i := 0; i < len(s.History); i += 2 {
		q, a := s.History[i], s.History[i+1]
		require.True(t, strings.HasPrefix(q, "Q: "), q)
		assert.Equal(t, "A: "+strings.TrimPrefix(q, "Q: "), a)
	}
}

func TestTurnLockFallsBackToLocalLock(t *testing.T) {
	repo := newSharedRepository()
	repo.lockErr = errors.New("redis down")
	m := NewManager(repo, logger.NewNopLogger())

	unlock := m.LockTurn(context.Background(), "s")

	acquired := make(chan struct{})
	go func() {
		release := m.LockTurn(context.Background(), "s")
		release()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second turn ran while the first held the local lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second turn never acquired the lock")
	}
}
