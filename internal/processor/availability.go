package processor

import (
	"sync"
	"time"
)

// availabilityGate 记录外部抽取能力的冷却期。失败后在 cooldown 内直接走启发式解析，
// 避免对一个已知不可用的服务反复发起注定失败的调用。
type availabilityGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	until    time.Time
	now      func() time.Time
}

// check 冷却期内返回 ErrCapabilityCooling
func (g *availabilityGate) check() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if now := g.now(); now.Before(g.until) {
		return NewCoolingError("剩余 " + g.until.Sub(now).Round(time.Second).String())
	}
	return nil
}

// trip 进入冷却期，返回冷却结束时间
func (g *availabilityGate) trip() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cooldown > 0 {
		g.until = g.now().Add(g.cooldown)
	}
	return g.until
}

// coolingUntil 冷却结束时间，不在冷却期时返回零值
func (g *availabilityGate) coolingUntil() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.now().Before(g.until) {
		return g.until
	}
	return time.Time{}
}
