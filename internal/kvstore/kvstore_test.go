package kvstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/hooky/internal/kvstore"
	"github.com/simplesurance/hooky/internal/kvstore/kvtest"
)

// backend creates a store and returns it together with a function that
// lets keys with a ttl <= d expire.
type backend struct {
	name string
	new  func(t *testing.T) (kvstore.Store, func(d time.Duration))
}

var backends = []backend{
	{
		name: "redis",
		new: func(t *testing.T) (kvstore.Store, func(time.Duration)) {
			store, srv := kvtest.NewRedis(t)
			return store, srv.FastForward
		},
	},
	{
		name: "nats",
		new: func(t *testing.T) (kvstore.Store, func(time.Duration)) {
			return kvtest.NewNATS(t), time.Sleep
		},
	},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, store kvstore.Store, expire func(time.Duration))) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))
			store, expire := b.new(t)
			fn(t, store, expire)
		})
	}
}

func TestIncrStartsAtOne(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, _ func(time.Duration)) {
		ctx := context.Background()

		for i := int64(1); i <= 5; i++ {
			val, err := store.Incr(ctx, "reviewer:org/repo")
			require.NoError(t, err)
			assert.Equal(t, i, val)
		}

		val, err := store.Incr(ctx, "assignee:org/repo")
		require.NoError(t, err)
		assert.Equal(t, int64(1), val)
	})
}

func TestIncrAfterSet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, _ func(time.Duration)) {
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "reviewer:org/repo", []byte("4294967295")))

		val, err := store.Incr(ctx, "reviewer:org/repo")
		require.NoError(t, err)
		assert.Equal(t, int64(4294967296), val)

		raw, err := store.Get(ctx, "reviewer:org/repo")
		require.NoError(t, err)
		assert.Equal(t, "4294967296", string(raw))
	})
}

func TestConcurrentIncrReturnsDistinctValues(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, _ func(time.Duration)) {
		const workers = 8
		const perWorker = 10

		var mu sync.Mutex
		seen := map[int64]struct{}{}

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for j := 0; j < perWorker; j++ {
					val, err := store.Incr(context.Background(), "counter")
					if !assert.NoError(t, err) {
						return
					}

					mu.Lock()
					seen[val] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, workers*perWorker)
	})
}

func TestGetNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, _ func(time.Duration)) {
		_, err := store.Get(context.Background(), "config_org/repo")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)

		exists, err := store.Exists(context.Background(), "config_org/repo")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestSetExExpires(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, expire func(time.Duration)) {
		ctx := context.Background()
		const ttl = 200 * time.Millisecond

		require.NoError(t, store.SetEx(ctx, "config_org/repo", []byte(`{"reviewers":["a"]}`), ttl))

		val, err := store.Get(ctx, "config_org/repo")
		require.NoError(t, err)
		assert.Equal(t, `{"reviewers":["a"]}`, string(val))

		exists, err := store.Exists(ctx, "config_org/repo")
		require.NoError(t, err)
		assert.True(t, exists)

		expire(ttl + 50*time.Millisecond)

		_, err = store.Get(ctx, "config_org/repo")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)

		exists, err = store.Exists(ctx, "config_org/repo")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestSetExRejectsNonPositiveTTL(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store kvstore.Store, _ func(time.Duration)) {
		err := store.SetEx(context.Background(), "k", []byte("v"), 0)
		assert.Error(t, err)
	})
}
