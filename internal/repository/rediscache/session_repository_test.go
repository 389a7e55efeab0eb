package rediscache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/rag/session"
	"ai-chatbot-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis session tests")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisSessionRoundTrip(t *testing.T) {
	repo := NewSessionRepository(newTestClient(t), time.Minute)
	ctx := context.Background()
	id := uuid.NewString()

	_, found, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	s := store.NewSession(id, time.Now().UTC().Truncate(time.Second))
	s.History = []string{"Q: hi", "A: hello"}
	s.Counters["questions"] = 1
	require.NoError(t, repo.Save(ctx, s))

	got, found, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s.History, got.History)
	assert.Equal(t, 1, got.Counters["questions"])
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, id))
	_, found, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisConcurrentAppendsFromTwoManagers(t *testing.T) {
	rdb := newTestClient(t)
	repo := NewSessionRepository(rdb, time.Minute)
	managers := []*session.Manager{
		session.NewManager(repo, logger.NewNopLogger()),
		session.NewManager(NewSessionRepository(rdb, time.Minute), logger.NewNopLogger()),
	}
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := managers[i%2].Append(ctx, id, fmt.Sprintf("Q: %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, found, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got.History, 40)
}

func TestRedisTurnLockAlternatesAcrossManagers(t *testing.T) {
	rdb := newTestClient(t)
	repo := NewSessionRepository(rdb, time.Minute)
	managers := []*session.Manager{
		session.NewManager(repo, logger.NewNopLogger()),
		session.NewManager(NewSessionRepository(rdb, time.Minute), logger.NewNopLogger()),
	}
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := managers[i%2]
			unlock := m.LockTurn(ctx, id)
			defer unlock()

			_, err := m.Append(ctx, id, fmt.Sprintf("Q: %d", i))
			assert.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
			_, err = m.Append(ctx, id, fmt.Sprintf("A: %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, _, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.History, 20)
	for i := 0; i < len(got.History); i += 2 {
		q := got.History[i]
		require.True(t, strings.HasPrefix(q, "Q: "), q)
		assert.Equal(t, "A: "+strings.TrimPrefix(q, "Q: "), got.History[i+1])
	}
}

func TestRedisTurnLockReleaseKeepsForeignLock(t *testing.T) {
	rdb := newTestClient(t)
	repo := NewSessionRepository(rdb, time.Minute).WithTurnLockTTL(100 * time.Millisecond)
	ctx := context.Background()
	id := uuid.NewString()

	unlock, err := repo.LockTurn(ctx, id)
	require.NoError(t, err)

	// The first holder's lock expires and another process takes over.
	time.Sleep(150 * time.Millisecond)
	unlockOther, err := repo.LockTurn(ctx, id)
	require.NoError(t, err)

	unlock()
	exists, err := rdb.Exists(ctx, lockPrefix+id).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	unlockOther()
	exists, err = rdb.Exists(ctx, lockPrefix+id).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
