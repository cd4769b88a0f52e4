package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual 手动推进的时钟。Advance 按到期顺序触发定时器,
// 通道容量为 1,和 time 包一样在接收方未就绪时丢弃多余的 tick。
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManual 创建起始于 start 的手动时钟
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	clock   *Manual
	when    time.Time
	period  time.Duration
	ch      chan time.Time
	stopped bool
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) NewTimer(d time.Duration) Timer {
	return m.add(d, 0)
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	return manualTicker{m.add(d, d)}
}

func (m *Manual) add(d, period time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, when: m.now.Add(d), period: period, ch: make(chan time.Time, 1)}
	m.timers = append(m.timers, t)
	return t
}

// Advance 把时间向前推进 d,并触发所有到期的定时器。
// 零延迟的定时器也要等到下一次 Advance(0) 才会触发。
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.fireLocked()
}

func (m *Manual) fireLocked() {
	sort.SliceStable(m.timers, func(i, j int) bool {
		return m.timers[i].when.Before(m.timers[j].when)
	})
	kept := m.timers[:0]
	for _, t := range m.timers {
		if t.stopped {
			continue
		}
		if !t.when.After(m.now) {
			select {
			case t.ch <- t.when:
			default:
			}
			if t.period == 0 {
				t.stopped = true
				continue
			}
			for !t.when.After(m.now) {
				t.when = t.when.Add(t.period)
			}
		}
		kept = append(kept, t)
	}
	m.timers = kept
}

// Pending 返回尚未触发且未停止的一次性定时器数量
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && t.period == 0 {
			n++
		}
	}
	return n
}

// NextTimer 返回最早到期的一次性定时器距现在的时长
func (m *Manual) NextTimer() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		next  time.Duration
		found bool
	)
	for _, t := range m.timers {
		if t.stopped || t.period != 0 {
			continue
		}
		d := t.when.Sub(m.now)
		if !found || d < next {
			next, found = d, true
		}
	}
	return next, found
}

func (t *manualTimer) C() <-chan time.Time {
	return t.ch
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped
	t.stopped = true
	return active
}

type manualTicker struct{ *manualTimer }

func (t manualTicker) Stop() {
	t.manualTimer.Stop()
}
