package retry

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"time"

	"resume-match-go/internal/cache"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 8 * time.Second
	// 超过 resetFactor 倍基础延迟未再尝试时，重置该操作的尝试计数
	resetFactor = 10
	// 记录尝试状态的操作键上限
	defaultStateCapacity = 1024
)

// JitterFunc 根据本次退避时长返回额外的随机延迟
type JitterFunc func(backoff time.Duration) time.Duration

// SleepFunc 等待指定时长，ctx 取消时提前返回
type SleepFunc func(ctx context.Context, d time.Duration) error

type attemptState struct {
	attempts int
	last     time.Time
}

// Policy 按操作键记录尝试次数的指数退避重试策略，可被多个 goroutine 共享
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	jitter      JitterFunc
	sleep       SleepFunc
	now         func() time.Time
	retryable   func(error) bool
	logger      *log.Logger
	states      *cache.Cache[string, attemptState]
}

// Option 配置 Policy
type Option func(*Policy)

// WithMaxAttempts 设置最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBaseDelay 设置基础退避时长
func WithBaseDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.baseDelay = d
		}
	}
}

// WithMaxDelay 设置单次退避上限
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.maxDelay = d
		}
	}
}

// WithJitter 设置抖动函数
func WithJitter(fn JitterFunc) Option {
	return func(p *Policy) {
		if fn != nil {
			p.jitter = fn
		}
	}
}

// WithSleeper 替换等待实现，测试中可注入零延迟实现
func WithSleeper(fn SleepFunc) Option {
	return func(p *Policy) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRetryable 设置错误是否可重试的判断函数
func WithRetryable(fn func(error) bool) Option {
	return func(p *Policy) {
		if fn != nil {
			p.retryable = fn
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPolicy 创建重试策略，默认3次尝试、指数退避、最多50%的随机抖动
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		jitter:      HalfJitter,
		sleep:       sleepContext,
		now:         time.Now,
		retryable:   defaultRetryable,
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.states = cache.New[string, attemptState](defaultStateCapacity, 0, cache.WithClock(p.now))
	return p
}

// MaxAttempts 返回最大尝试次数
func (p *Policy) MaxAttempts() int { return p.maxAttempts }

// Do 执行 fn，失败时按指数退避重试。重试耗尽返回 *ExhaustedError；
// 不可重试的错误（如 ctx 取消）和 Permanent 包装的错误直接返回，且不计入尝试次数。
func Do[T any](ctx context.Context, p *Policy, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	attemptsThisCall := 0

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		st, suppressed := p.begin(key)
		if suppressed {
			if lastErr == nil {
				lastErr = ErrSuppressed
			}
			p.logger.Printf("操作 %s 处于重试抑制窗口内，跳过调用", key)
			return zero, &ExhaustedError{Key: key, Attempts: attemptsThisCall, Last: lastErr}
		}
		attemptsThisCall++

		result, err := fn(ctx)
		if err == nil {
			p.states.Delete(key)
			return result, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			p.release(key)
			return zero, perm.err
		}
		if !p.retryable(err) {
			p.release(key)
			return zero, err
		}
		if st.attempts >= p.maxAttempts {
			p.logger.Printf("操作 %s 重试耗尽 (%d/%d): %v", key, st.attempts, p.maxAttempts, err)
			return zero, &ExhaustedError{Key: key, Attempts: attemptsThisCall, Last: err}
		}

		wait := p.Backoff(st.attempts)
		p.logger.Printf("操作 %s 第 %d 次尝试失败，%v 后重试: %v", key, st.attempts, wait, err)
		if err := p.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

// begin 登记一次尝试；距上次尝试超过 resetFactor 倍基础延迟时计数归零。
// 计数已达上限时返回 suppressed=true 且不刷新时间戳。
func (p *Policy) begin(key string) (attemptState, bool) {
	now := p.now()
	suppressed := false
	st := p.states.Update(key, func(old attemptState, exists bool) attemptState {
		if !exists || now.Sub(old.last) > resetFactor*p.baseDelay {
			old = attemptState{}
		}
		if old.attempts >= p.maxAttempts {
			suppressed = true
			return old
		}
		old.attempts++
		old.last = now
		return old
	})
	return st, suppressed
}

// release 撤销 begin 登记的一次尝试。调用被取消或结果不需要重试时，不应占用抑制窗口的名额。
func (p *Policy) release(key string) {
	p.states.Update(key, func(old attemptState, exists bool) attemptState {
		if exists && old.attempts > 0 {
			old.attempts--
		}
		return old
	})
}

// Backoff 返回第 attempt 次失败后的等待时长（含抖动）
func (p *Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.baseDelay
	for i := 1; i < attempt && d < p.maxDelay; i++ {
		d *= 2
	}
	if d > p.maxDelay {
		d = p.maxDelay
	}
	return d + p.jitter(d)
}

// HalfJitter 返回 [0, d/2) 的随机抖动
func HalfJitter(d time.Duration) time.Duration {
	if d <= 1 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d / 2)))
}

// NoJitter 不加抖动
func NoJitter(time.Duration) time.Duration { return 0 }

func defaultRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
