package usercopy

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/labhub/config"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "labhub_usercode:web:greeting", Key("", "web", "greeting"))
	assert.Equal(t, "p:a%3Ab:c", Key("p", "a:b", "c"))

	// The naive underscore join would collide on these pairs.
	assert.NotEqual(t, Key("p", "a_b", "c"), Key("p", "a", "b_c"))
	assert.NotEqual(t, Key("p", "a:b", "c"), Key("p", "a", "b:c"))

	prefix, subject, program, err := ParseKey(Key("p", "a:b c", "d/e"))
	require.NoError(t, err)
	assert.Equal(t, "p", prefix)
	assert.Equal(t, "a:b c", subject)
	assert.Equal(t, "d/e", program)

	_, _, _, err = ParseKey("missing-separators")
	assert.Error(t, err)
}

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	server := miniredis.RunT(t)
	redisStore, err := ConnectRedis(ctx, "redis://"+server.Addr()+"/0", "test")
	require.NoError(t, err)

	sqliteStore, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "labhub.db"), "test")
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore("test"),
		"redis":  redisStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, store.Backend())

			_, ok, err := store.Load(ctx, "web", "greeting")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Save(ctx, "web", "greeting", "<p>mine</p>\n"))
			code, ok, err := store.Load(ctx, "web", "greeting")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "<p>mine</p>\n", code)

			require.NoError(t, store.Save(ctx, "web", "greeting", "second"))
			code, ok, err = store.Load(ctx, "web", "greeting")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "second", code)

			// An empty copy is still a saved copy.
			require.NoError(t, store.Save(ctx, "web", "blank", ""))
			code, ok, err = store.Load(ctx, "web", "blank")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, code)

			_, ok, err = store.Load(ctx, "web", "other")
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = store.Load(ctx, "web_greeting", "")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, "s", "p", "code")
		}()
	}
	wg.Wait()

	code, ok, err := store.Load(ctx, "s", "p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "code", code)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore("")
	require.NoError(t, store.Close())

	_, _, err := store.Load(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Save(context.Background(), "s", "p", "x"), ErrClosed)
}

func TestRedisStoreUsesPrefixedKeys(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewRedisStore(client, "labhub_usercode")
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), "web", "greeting", "code"))

	got, err := server.Get("labhub_usercode:web:greeting")
	require.NoError(t, err)
	assert.Equal(t, "code", got)
}

func TestConnectRedisFailures(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "", "p")
	require.Error(t, err)

	_, err = ConnectRedis(context.Background(), "not-a-url", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse redis url")

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = ConnectRedis(context.Background(), "redis://"+addr+"/0", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to connect to redis")
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "labhub.db")

	store, err := OpenSQLite(ctx, path, "p")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "ds", "stack", "int main(void) { return 0; }"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path, "p")
	require.NoError(t, err)
	defer reopened.Close()

	code, ok, err := reopened.Load(ctx, "ds", "stack")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "int main(void) { return 0; }", code)
}

func TestOpenFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{Store: config.StoreConfig{Backend: "memory"}})
		require.NoError(t, err)
		assert.Equal(t, "memory", store.Backend())
	})

	t.Run("SQLite", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{Store: config.StoreConfig{
			Backend:    "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "x.db"),
		}})
		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, "sqlite", store.Backend())
	})

	t.Run("Redis", func(t *testing.T) {
		server := miniredis.RunT(t)
		store, err := Open(ctx, &config.Config{Store: config.StoreConfig{
			Backend:  "redis",
			RedisURL: "redis://" + server.Addr(),
		}})
		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, "redis", store.Backend())
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{Store: config.StoreConfig{Backend: "etcd"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported store backend")
	})
}

func TestNewFromConfigClosesOnStop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{Store: config.StoreConfig{Backend: "memory", KeyPrefix: "p"}}

	store, err := NewFromConfig(lc, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	lc.RequireStart()
	require.NoError(t, store.Save(context.Background(), "s", "p", "x"))
	lc.RequireStop()

	_, _, err = store.Load(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ErrClosed)
}
