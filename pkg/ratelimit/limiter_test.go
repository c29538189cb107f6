package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMinuteWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	for i := 0; i < DefaultPerMinute; i++ {
		require.True(t, l.TryAdmit(), "request %d", i+1)
	}
	assert.False(t, l.TryAdmit(), "31st request in the same minute")
	assert.False(t, l.TryAdmit())

	q := l.Remaining()
	assert.Equal(t, 0, q.PerMinute)
	assert.Equal(t, DefaultPerHour-DefaultPerMinute, q.PerHour)

	// 窗口结束后恢复
	clock.Advance(time.Minute + time.Millisecond)
	assert.True(t, l.TryAdmit())
	assert.Equal(t, DefaultPerMinute-1, l.Remaining().PerMinute)
}

func TestRejectionDoesNotCount(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now), WithLimits(2, 100))

	assert.True(t, l.TryAdmit())
	assert.True(t, l.TryAdmit())
	for i := 0; i < 5; i++ {
		assert.False(t, l.TryAdmit())
	}
	assert.Equal(t, 98, l.Remaining().PerHour)
}

func TestHourWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now), WithLimits(5, 8))

	for i := 0; i < 5; i++ {
		require.True(t, l.TryAdmit())
	}
	clock.Advance(61 * time.Second)
	for i := 0; i < 3; i++ {
		require.True(t, l.TryAdmit())
	}
	assert.False(t, l.TryAdmit(), "hour limit reached")
	assert.Equal(t, 2, l.Remaining().PerMinute)
	assert.Equal(t, 0, l.Remaining().PerHour)

	clock.Advance(time.Hour)
	assert.True(t, l.TryAdmit())
}

func TestResetAtDeadlineIsExclusive(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now), WithLimits(1, 10))

	require.True(t, l.TryAdmit())
	clock.Advance(time.Minute)
	assert.False(t, l.TryAdmit(), "now == resetTime keeps the window")
	clock.Advance(time.Millisecond)
	assert.True(t, l.TryAdmit())
}

func TestRemainingNeverNegative(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now), WithLimits(1, 1))
	l.TryAdmit()
	l.TryAdmit()

	clock.Advance(2 * time.Hour)
	q := l.Remaining()
	assert.GreaterOrEqual(t, q.PerMinute, 0)
	assert.GreaterOrEqual(t, q.PerHour, 0)
	assert.Equal(t, time.Duration(0), q.MinuteResetIn)
	assert.Equal(t, time.Duration(0), q.HourResetIn)
}

func TestReset(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))
	for i := 0; i < DefaultPerMinute; i++ {
		l.TryAdmit()
	}
	l.Reset()

	q := l.Remaining()
	assert.Equal(t, DefaultPerMinute, q.PerMinute)
	assert.Equal(t, DefaultPerHour, q.PerHour)
	assert.Equal(t, time.Minute, q.MinuteResetIn)
	assert.Equal(t, time.Hour, q.HourResetIn)
}

func TestConcurrentAdmission(t *testing.T) {
	l := New(WithLimits(50, 1000))

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAdmit() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}

func TestLimits(t *testing.T) {
	perMinute, perHour := New().Limits()
	assert.Equal(t, DefaultPerMinute, perMinute)
	assert.Equal(t, DefaultPerHour, perHour)

	// 非正数保留默认值
	perMinute, perHour = New(WithLimits(5, 0)).Limits()
	assert.Equal(t, 5, perMinute)
	assert.Equal(t, DefaultPerHour, perHour)
}
