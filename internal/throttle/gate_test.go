package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(cfg Config) (*Gate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	gate := NewGate(store, cfg)
	gate.now = clock.Now
	return gate, clock
}

func countingFetch(calls *int) FetchFunc {
	return func(context.Context) ([]byte, error) {
		*calls++
		return []byte{byte(*calls)}, nil
	}
}

func TestGate_RefreshesAfterCounterExceeded(t *testing.T) {
	gate, _ := newTestGate(Config{Every: 15})
	ctx := context.Background()
	calls := 0

	payload, fresh, err := gate.Do(ctx, "raleigh", countingFetch(&calls))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, []byte{1}, payload)

	// 16 cached reads: the counter goes 0 → 16 before it exceeds the limit.
	for i := 0; i < 16; i++ {
		payload, fresh, err = gate.Do(ctx, "raleigh", countingFetch(&calls))
		require.NoError(t, err)
		assert.False(t, fresh, "read %d should be served from cache", i+1)
		assert.Equal(t, []byte{1}, payload)
	}
	assert.Equal(t, 1, calls)

	payload, fresh, err = gate.Do(ctx, "raleigh", countingFetch(&calls))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, []byte{2}, payload)
	assert.Equal(t, 2, calls)
}

func TestGate_RefreshesAfterTTL(t *testing.T) {
	gate, clock := newTestGate(Config{Every: 100, TTL: 10 * time.Minute})
	ctx := context.Background()
	calls := 0

	_, _, err := gate.Do(ctx, "k", countingFetch(&calls))
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, fresh, err := gate.Do(ctx, "k", countingFetch(&calls))
	require.NoError(t, err)
	assert.False(t, fresh)

	clock.Advance(2 * time.Minute)
	_, fresh, err = gate.Do(ctx, "k", countingFetch(&calls))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 2, calls)
}

func TestGate_KeysAreIndependent(t *testing.T) {
	gate, _ := newTestGate(Config{Every: 15})
	ctx := context.Background()
	calls := 0

	_, _, _ = gate.Do(ctx, "a", countingFetch(&calls))
	_, fresh, err := gate.Do(ctx, "b", countingFetch(&calls))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 2, calls)
}

func TestGate_FetchErrorIsNotCached(t *testing.T) {
	gate, _ := newTestGate(Config{Every: 15})
	ctx := context.Background()
	upstream := errors.New("upstream down")

	_, _, err := gate.Do(ctx, "k", func(context.Context) ([]byte, error) { return nil, upstream })
	assert.ErrorIs(t, err, upstream)

	calls := 0
	_, fresh, err := gate.Do(ctx, "k", countingFetch(&calls))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 1, calls)
}

func TestGate_ZeroEveryUsesTTLOnly(t *testing.T) {
	gate, _ := newTestGate(Config{TTL: time.Hour})
	ctx := context.Background()
	calls := 0

	for i := 0; i < 50; i++ {
		_, _, err := gate.Do(ctx, "k", countingFetch(&calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", &State{Count: 3}, time.Minute))
	st, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 3, st.Count)

	clock.Advance(time.Minute)
	st, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	prefix := "test:throttle:"
	defer client.Del(ctx, prefix+"k")

	store := NewRedisStore(client, prefix)

	st, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, st)

	require.NoError(t, store.Save(ctx, "k", &State{Count: 2, Payload: []byte(`{"a":1}`)}, time.Minute))
	st, err = store.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 2, st.Count)
	assert.JSONEq(t, `{"a":1}`, string(st.Payload))
}
