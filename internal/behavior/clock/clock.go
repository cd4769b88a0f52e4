// Package clock 抽象定时器,引擎在生产环境使用真实时间,测试中使用手动时钟。
package clock

import "time"

// Timer 一次性定时器
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Ticker 周期定时器,消费不及时的 tick 会被丢弃
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock 定时器工厂
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Real 返回基于 time 包的时钟
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) NewTimer(d time.Duration) Timer {
	return realTimer{time.NewTimer(d)}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
