package cache

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrMiss 远端存储中不存在该键
var ErrMiss = errors.New("cache: key not found")

// Store 二级缓存存储（如Redis）
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// Memoizer 为外部调用提供结果记忆：L1 内存缓存 + 可选 L2 存储，
// 同一键的并发调用通过 singleflight 合并为一次。只缓存成功结果。
type Memoizer struct {
	local  *Cache[string, string]
	remote Store
	ttl    time.Duration
	group  singleflight.Group
	logger *log.Logger
}

// MemoizerOption 配置 Memoizer
type MemoizerOption func(*Memoizer)

// WithRemoteStore 设置二级存储
func WithRemoteStore(store Store) MemoizerOption {
	return func(m *Memoizer) {
		m.remote = store
	}
}

// WithMemoizerLogger 设置日志记录器
func WithMemoizerLogger(logger *log.Logger) MemoizerOption {
	return func(m *Memoizer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemoizer 创建 Memoizer，ttl 同时用于二级存储的过期时间
func NewMemoizer(local *Cache[string, string], ttl time.Duration, opts ...MemoizerOption) *Memoizer {
	m := &Memoizer{
		local:  local,
		ttl:    ttl,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do 返回 key 对应的缓存结果，未命中时调用 load 并缓存成功结果。
// 第二个返回值表示是否命中缓存。
func (m *Memoizer) Do(ctx context.Context, key string, load func(ctx context.Context) (string, error)) (string, bool, error) {
	if m == nil {
		v, err := load(ctx)
		return v, false, err
	}
	if v, ok := m.local.Get(key); ok {
		m.logger.Printf("缓存命中(L1): %s", key)
		return v, true, nil
	}

	type result struct {
		value string
		hit   bool
	}
	res, err, _ := m.group.Do(key, func() (interface{}, error) {
		if v, ok := m.local.Get(key); ok {
			return result{value: v, hit: true}, nil
		}
		if m.remote != nil {
			v, err := m.remote.Get(ctx, key)
			switch {
			case err == nil:
				m.local.Set(key, v)
				m.logger.Printf("缓存命中(L2): %s", key)
				return result{value: v, hit: true}, nil
			case !errors.Is(err, ErrMiss):
				m.logger.Printf("读取二级缓存失败，继续调用: key=%s err=%v", key, err)
			}
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		m.local.Set(key, v)
		if m.remote != nil {
			if err := m.remote.Set(ctx, key, v, m.ttl); err != nil {
				m.logger.Printf("写入二级缓存失败: key=%s err=%v", key, err)
			}
		}
		return result{value: v}, nil
	})
	if err != nil {
		return "", false, err
	}
	r := res.(result)
	return r.value, r.hit, nil
}
