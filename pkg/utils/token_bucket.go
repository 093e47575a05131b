package utils

import (
	"sync"
	"time"
)

// TokenBucket 令牌桶限流器
// 按固定速率补充令牌，容量封顶，用于平滑突发流量
type TokenBucket struct {
	mu       sync.Mutex
	capacity int64
	tokens   int64
	rate     int64 // 每秒补充的令牌数
	lastFill time.Time
}

// NewTokenBucket 创建令牌桶，初始为满
func NewTokenBucket(capacity, rate int64) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if rate <= 0 {
		rate = 1
	}
	return &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		rate:     rate,
		lastFill: time.Now(),
	}
}

// AllowN 尝试取 n 个令牌，不足时立即返回 false
func (b *TokenBucket) AllowN(n int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fill(time.Now())
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

// Allow 尝试取一个令牌
func (b *TokenBucket) Allow() bool {
	return b.AllowN(1)
}

// WaitN 在 timeout 内等待 n 个令牌，超时返回 false
func (b *TokenBucket) WaitN(n int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if b.AllowN(n) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		// 按补充速率估算下一个令牌到达的时间，避免忙等
		sleep := time.Second / time.Duration(b.rate)
		if sleep > 10*time.Millisecond {
			sleep = 10 * time.Millisecond
		}
		time.Sleep(sleep)
	}
}

// fill 按经过的时间补充令牌，调用方需持锁
func (b *TokenBucket) fill(now time.Time) {
	elapsed := now.Sub(b.lastFill)
	if elapsed <= 0 {
		return
	}
	refill := int64(elapsed.Seconds() * float64(b.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.lastFill = now
	}
}
