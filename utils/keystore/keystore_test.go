package keystore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := m.SetNX(ctx, "a", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := m.SetNX(ctx, "a", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	v, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "b", "x", 0))
	now = now.Add(24 * time.Hour)
	v, ok, _ = m.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

type fakeRedis struct {
	values map[string]string
	err    error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{values: map[string]string{}}
	r := NewRedis(fake, "cashfree:")

	_, ok, err := r.Get(ctx, "link")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "link", "https://x", time.Hour))
	assert.Equal(t, "https://x", fake.values["cashfree:link"])

	first, err := r.SetNX(ctx, "evt", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)
	first, err = r.SetNX(ctx, "evt", "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, r.Delete(ctx, "evt"))
	first, err = r.SetNX(ctx, "evt", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	fake.err = errors.New("connection refused")
	_, _, err = r.Get(ctx, "link")
	assert.Error(t, err)
}
