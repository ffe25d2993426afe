package agent

import (
	"time"

	"github.com/cloudwego/eino/components/model"
)

// timingOptions 单次调用的节流提示
type timingOptions struct {
	skipDelay   bool
	forceDelay  bool
	customDelay time.Duration
}

// WithSkipDelay 本次调用不等待节流间隔
func WithSkipDelay() model.Option {
	return model.WrapImplSpecificOptFn(func(o *timingOptions) {
		o.skipDelay = true
	})
}

// WithForcedDelay 本次调用前总是等待完整的节流间隔，即使距上次请求已足够久
func WithForcedDelay() model.Option {
	return model.WrapImplSpecificOptFn(func(o *timingOptions) {
		o.forceDelay = true
	})
}

// WithCustomDelayMs 本次调用前固定等待 ms 毫秒，优先于其它节流提示
func WithCustomDelayMs(ms int) model.Option {
	return model.WrapImplSpecificOptFn(func(o *timingOptions) {
		if ms > 0 {
			o.customDelay = time.Duration(ms) * time.Millisecond
		}
	})
}

// PacingOptions 按配置组合节流提示，未设置任何提示时返回 nil
func PacingOptions(skipDelay, forcedDelay bool, customDelayMs int) []model.Option {
	var opts []model.Option
	if skipDelay {
		opts = append(opts, WithSkipDelay())
	}
	if forcedDelay {
		opts = append(opts, WithForcedDelay())
	}
	if customDelayMs > 0 {
		opts = append(opts, WithCustomDelayMs(customDelayMs))
	}
	return opts
}

// delayBefore 根据节流提示计算发送请求前需要等待的时长
func delayBefore(opts *timingOptions, minInterval, sinceLast time.Duration) time.Duration {
	switch {
	case opts.customDelay > 0:
		return opts.customDelay
	case opts.skipDelay:
		return 0
	case opts.forceDelay:
		return minInterval
	case sinceLast < minInterval:
		return minInterval - sinceLast
	default:
		return 0
	}
}
