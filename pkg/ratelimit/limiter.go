// Package ratelimit 按分钟和小时两个固定窗口限制请求频率
package ratelimit

import (
	"sync"
	"time"
)

// 默认限制
const (
	DefaultPerMinute = 30
	DefaultPerHour   = 500
)

// Quota 剩余配额
type Quota struct {
	PerMinute     int           `json:"perMinute"`
	PerHour       int           `json:"perHour"`
	MinuteResetIn time.Duration `json:"minuteResetIn"`
	HourResetIn   time.Duration `json:"hourResetIn"`
}

// window 单个固定窗口
type window struct {
	count     int
	resetTime time.Time
	size      time.Duration
	limit     int
}

func (w *window) roll(now time.Time) {
	if now.After(w.resetTime) {
		w.count = 0
		w.resetTime = now.Add(w.size)
	}
}

func (w *window) remaining() int {
	return max(0, w.limit-w.count)
}

func (w *window) resetIn(now time.Time) time.Duration {
	return max(0, w.resetTime.Sub(now))
}

// Limiter 进程内的双窗口限流器，可并发使用
type Limiter struct {
	mu     sync.Mutex
	minute window
	hour   window
	now    func() time.Time
}

// Option 限流器选项
type Option func(*Limiter)

// WithLimits 设置每分钟和每小时的最大请求数
func WithLimits(perMinute, perHour int) Option {
	return func(l *Limiter) {
		if perMinute > 0 {
			l.minute.limit = perMinute
		}
		if perHour > 0 {
			l.hour.limit = perHour
		}
	}
}

// WithClock 替换时钟，用于测试
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New 创建限流器
func New(opts ...Option) *Limiter {
	l := &Limiter{
		minute: window{size: time.Minute, limit: DefaultPerMinute},
		hour:   window{size: time.Hour, limit: DefaultPerHour},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.resetLocked(l.now())
	return l
}

// TryAdmit 检查是否允许本次请求，允许时两个窗口计数都加一。
// 拒绝不计数，也不会等待。
func (l *Limiter) TryAdmit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.roll(now)
	l.hour.roll(now)

	if l.minute.count >= l.minute.limit || l.hour.count >= l.hour.limit {
		return false
	}

	l.minute.count++
	l.hour.count++
	return true
}

// Remaining 返回剩余配额
func (l *Limiter) Remaining() Quota {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	return Quota{
		PerMinute:     l.minute.remaining(),
		PerHour:       l.hour.remaining(),
		MinuteResetIn: l.minute.resetIn(now),
		HourResetIn:   l.hour.resetIn(now),
	}
}

// Limits 返回每分钟和每小时的上限
func (l *Limiter) Limits() (perMinute, perHour int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minute.limit, l.hour.limit
}

// Reset 清零所有计数器
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked(l.now())
}

func (l *Limiter) resetLocked(now time.Time) {
	l.minute.count = 0
	l.minute.resetTime = now.Add(l.minute.size)
	l.hour.count = 0
	l.hour.resetTime = now.Add(l.hour.size)
}
