package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/cache"
	"resume-match-go/internal/config"
)

// fakeCmdable 只实现缓存用到的命令，其余方法调用会 panic
type fakeCmdable struct {
	redis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	failing error
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failing != nil {
		return redis.NewStringResult("", f.failing)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.failing)
}

var _ cache.Store = (*RedisStore)(nil)

func TestRedisStore_GetSet(t *testing.T) {
	fake := newFakeCmdable()
	store := newRedisStoreWithCmdable(fake, "app:test:")
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	assert.Equal(t, "v", fake.data["app:test:k"])
	assert.Equal(t, time.Minute, fake.ttls["app:test:k"])

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
}

func TestRedisStore_Errors(t *testing.T) {
	fake := newFakeCmdable()
	fake.failing = errors.New("connection refused")
	store := newRedisStoreWithCmdable(fake, "")

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, fake.failing)
	assert.NotErrorIs(t, err, cache.ErrMiss)
	assert.ErrorIs(t, store.Set(context.Background(), "k", "v", 0), fake.failing)
}

func TestRedisStore_MemoizerFallsThroughToRemote(t *testing.T) {
	fake := newFakeCmdable()
	store := newRedisStoreWithCmdable(fake, "p:")
	memo := cache.NewMemoizer(cache.New[string, string](8, time.Minute), time.Minute, cache.WithRemoteStore(store))

	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "result", nil
	}
	_, _, err := memo.Do(context.Background(), "key", load)
	require.NoError(t, err)
	assert.Equal(t, "result", fake.data["p:key"])

	// 新的 Memoizer 没有本地缓存，命中 Redis
	memo2 := cache.NewMemoizer(cache.New[string, string](8, time.Minute), time.Minute, cache.WithRemoteStore(store))
	got, hit, err := memo2.Do(context.Background(), "key", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "result", got)
	assert.Equal(t, 1, calls)
}

func TestNewRedisStore_Validation(t *testing.T) {
	_, err := NewRedisStore(nil, "")
	assert.Error(t, err)
	_, err = NewRedisStore(&config.RedisConfig{}, "")
	assert.Error(t, err)
}
