package cache

import (
	"container/list"
	"sync"
	"time"
)

// Clock 返回当前时间，测试中可替换以确定性地控制过期
type Clock func() time.Time

// Option 配置 Cache
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock 注入时钟
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示永不过期
}

// Cache 是并发安全的内存缓存，支持TTL过期和按插入顺序淘汰。
// 容量满时优先清理过期条目，仍不足则淘汰最早插入的条目；
// 对已存在的key再次 Set 视为重新插入，会移动到队尾。
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	clock    Clock
	items    map[K]*list.Element
	order    *list.List // 队首为最早插入
}

// New 创建缓存。capacity<=0 表示不限容量，ttl<=0 表示条目不过期。
func New[K comparable, V any](capacity int, ttl time.Duration, opts ...Option) *Cache[K, V] {
	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return &Cache[K, V]{
		ttl:      ttl,
		capacity: capacity,
		clock:    o.clock,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get 返回未过期的值；过期条目在读取时被移除
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e, c.clock()) {
		c.removeElement(el)
		return zero, false
	}
	return e.value, true
}

// Set 写入或覆盖一个条目
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	if c.capacity > 0 && c.order.Len() >= c.capacity {
		c.purgeExpiredLocked(now)
		for c.order.Len() >= c.capacity {
			c.removeElement(c.order.Front())
		}
	}

	e := &entry[K, V]{key: key, value: value}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.items[key] = c.order.PushBack(e)
}

// Update 在锁内读取-修改-写回一个条目，返回写入后的值。
// fn 的 exists 参数表示旧值是否存在且未过期。
func (c *Cache[K, V]) Update(key K, fn func(old V, exists bool) V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	var old V
	exists := false
	var expiresAt time.Time
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		if c.expired(e, now) {
			c.removeElement(el)
		} else {
			old, exists, expiresAt = e.value, true, e.expiresAt
			c.removeElement(el)
		}
	}
	if !exists && c.capacity > 0 && c.order.Len() >= c.capacity {
		c.purgeExpiredLocked(now)
		for c.order.Len() >= c.capacity {
			c.removeElement(c.order.Front())
		}
	}

	value := fn(old, exists)
	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
	if !exists && c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.items[key] = c.order.PushBack(e)
	return value
}

// Delete 删除条目
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len 返回当前条目数（可能包含尚未被清理的过期条目）
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// PurgeExpired 清理所有过期条目，返回清理数量
func (c *Cache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeExpiredLocked(c.clock())
}

func (c *Cache[K, V]) purgeExpiredLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if c.expired(el.Value.(*entry[K, V]), now) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

func (c *Cache[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
}
