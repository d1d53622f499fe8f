package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type backendFixture struct {
	backend Backend
	advance func(time.Duration)
}

func backendFixtures(t *testing.T) map[string]func(t *testing.T) backendFixture {
	return map[string]func(t *testing.T) backendFixture{
		"memory": func(t *testing.T) backendFixture {
			clock := &fakeClock{now: time.UnixMilli(1700000000000)}
			b := NewMemoryBackend(WithClock(clock.Now))
			return backendFixture{backend: b, advance: clock.Advance}
		},
		"bolt": func(t *testing.T) backendFixture {
			clock := &fakeClock{now: time.UnixMilli(1700000000000)}
			b, err := NewBoltBackend(filepath.Join(t.TempDir(), "rfq.db"), 0)
			require.NoError(t, err)
			b.now = clock.Now
			return backendFixture{backend: b, advance: clock.Advance}
		},
		"redis": func(t *testing.T) backendFixture {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			return backendFixture{backend: NewRedisBackend(client), advance: mr.FastForward}
		},
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, newFixture := range backendFixtures(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("set get", func(t *testing.T) {
				f := newFixture(t)
				defer f.backend.Close()

				require.NoError(t, f.backend.Set(ctx, "k", []byte("v"), time.Minute))
				got, err := f.backend.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, []byte("v"), got)

				_, err = f.backend.Get(ctx, "missing")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("expiry", func(t *testing.T) {
				f := newFixture(t)
				defer f.backend.Close()

				require.NoError(t, f.backend.Set(ctx, "k", []byte("v"), 10*time.Second))
				f.advance(9 * time.Second)
				_, err := f.backend.Get(ctx, "k")
				require.NoError(t, err)

				f.advance(2 * time.Second)
				_, err = f.backend.Get(ctx, "k")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("mget keeps positions", func(t *testing.T) {
				f := newFixture(t)
				defer f.backend.Close()

				require.NoError(t, f.backend.Set(ctx, "a", []byte("1"), time.Minute))
				require.NoError(t, f.backend.Set(ctx, "c", []byte("3"), time.Minute))

				got, err := f.backend.MGet(ctx, []string{"a", "b", "c"})
				require.NoError(t, err)
				require.Len(t, got, 3)
				assert.Equal(t, []byte("1"), got[0])
				assert.Nil(t, got[1])
				assert.Equal(t, []byte("3"), got[2])
			})

			t.Run("list most recent first", func(t *testing.T) {
				f := newFixture(t)
				defer f.backend.Close()

				for _, v := range []string{"first", "second", "third"} {
					require.NoError(t, f.backend.PushFront(ctx, "l", []byte(v), time.Minute))
				}
				got, err := f.backend.Range(ctx, "l")
				require.NoError(t, err)
				assert.Equal(t, [][]byte{[]byte("third"), []byte("second"), []byte("first")}, got)

				empty, err := f.backend.Range(ctx, "none")
				require.NoError(t, err)
				assert.Empty(t, empty)
			})

			t.Run("list expiry", func(t *testing.T) {
				f := newFixture(t)
				defer f.backend.Close()

				require.NoError(t, f.backend.PushFront(ctx, "l", []byte("x"), 5*time.Second))
				f.advance(6 * time.Second)
				got, err := f.backend.Range(ctx, "l")
				require.NoError(t, err)
				assert.Empty(t, got)
			})
		})
	}
}

func TestMemoryBackendSweep(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(0)}
	b := NewMemoryBackend(WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, b.Set(ctx, "long", []byte("2"), time.Hour))
	clock.Advance(2 * time.Second)

	b.sweep(clock.Now())
	assert.Equal(t, 1, b.Len())
}

func TestBoltBackendSweep(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(0)}
	b, err := NewBoltBackend(filepath.Join(t.TempDir(), "sweep.db"), 0)
	require.NoError(t, err)
	defer b.Close()
	b.now = clock.Now
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, b.PushFront(ctx, "list", []byte("x"), time.Second))
	require.NoError(t, b.Set(ctx, "long", []byte("2"), time.Hour))
	clock.Advance(2 * time.Second)
	b.sweep(clock.Now())

	// entries are gone even when read with the original clock
	b.now = func() time.Time { return time.UnixMilli(0) }
	_, err = b.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := b.Range(ctx, "list")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = b.Get(ctx, "long")
	assert.NoError(t, err)
}
