package faucet

import (
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("faucet")

// 按连续失败次数分级的本地冷却时间
const (
	cooldownTier0 = 2 * time.Minute  // 无失败
	cooldownTier1 = 5 * time.Minute  // 1 次连续失败
	cooldownTier2 = 10 * time.Minute // >=2 次连续失败

	// entryHorizon 超过该时长无活动的条目被回收
	entryHorizon = 24 * time.Hour

	// gcInterval 每记录 N 次结果触发一次机会式清理
	gcInterval = 64
)

// entry 单个地址的限流状态
type entry struct {
	lastRequest         time.Time // 最近一次请求时间
	lastSuccess         time.Time // 最近一次成功时间
	consecutiveFailures int       // 连续失败次数
	totalRequests       int       // 累计请求次数
	retryUntil          time.Time // 远端显式指定的重试时刻
}

// Limiter 水龙头请求的按地址限流器
// 所有状态变更都在同一把锁内完成，锁内不做任何 I/O
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	ops     int

	// now 可替换的时钟，便于测试
	now func() time.Time
}

// NewLimiter 创建限流器
func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// cooldownFor 按连续失败次数返回分级冷却时间
func cooldownFor(failures int) time.Duration {
	switch {
	case failures <= 0:
		return cooldownTier0
	case failures == 1:
		return cooldownTier1
	default:
		return cooldownTier2
	}
}

// remainingLocked 计算剩余冷却时间，调用方必须持锁
// 远端显式指定的 retry-after 优先于本地分级冷却
func (l *Limiter) remainingLocked(e *entry, now time.Time) time.Duration {
	deadline := e.lastRequest.Add(cooldownFor(e.consecutiveFailures))
	if e.retryUntil.After(deadline) {
		deadline = e.retryUntil
	}
	if remaining := deadline.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// IsRateLimited 返回地址当前是否处于冷却期
// 从未请求过的地址永远不受限
func (l *Limiter) IsRateLimited(address string) bool {
	return l.RemainingCooldown(address) > 0
}

// RemainingCooldown 返回地址的剩余冷却时间，未受限时为 0
func (l *Limiter) RemainingCooldown(address string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[address]
	if !ok {
		return 0
	}
	return l.remainingLocked(e, l.now())
}

// RecordOutcome 记录一次水龙头请求的结果
// success 重置连续失败计数；失败递增计数并抬高冷却档位；
// externalRetryAfter > 0 时记录远端指定的重试时刻，覆盖本地分级冷却。
func (l *Limiter) RecordOutcome(address string, success bool, externalRetryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[address]
	if !ok {
		e = &entry{}
		l.entries[address] = e
	}

	e.lastRequest = now
	e.totalRequests++

	if success {
		e.lastSuccess = now
		e.consecutiveFailures = 0
		e.retryUntil = time.Time{}
	} else {
		e.consecutiveFailures++
		if externalRetryAfter > 0 {
			e.retryUntil = now.Add(externalRetryAfter)
			log.Debugf("RecordOutcome: %s throttled by faucet for %s", address, externalRetryAfter)
		}
	}

	log.Debugf("RecordOutcome: %s success=%v failures=%d total=%d",
		address, success, e.consecutiveFailures, e.totalRequests)

	// 机会式清理过期条目，与正常流量共用同一把锁
	l.ops++
	if l.ops%gcInterval == 0 {
		l.gcLocked(now)
	}
}

// gcLocked 回收超过 24 小时无活动的条目，调用方必须持锁
func (l *Limiter) gcLocked(now time.Time) {
	removed := 0
	for addr, e := range l.entries {
		if now.Sub(e.lastRequest) > entryHorizon {
			delete(l.entries, addr)
			removed++
		}
	}
	if removed > 0 {
		log.Debugf("gcLocked: purged %d stale rate-limit entries", removed)
	}
}
