package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fired(c <-chan time.Time) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

func TestManualTimerFiresOnce(t *testing.T) {
	m := NewManual(epoch)
	timer := m.NewTimer(50 * time.Millisecond)
	assert.Equal(t, 1, m.Pending())

	m.Advance(49 * time.Millisecond)
	assert.False(t, fired(timer.C()))

	m.Advance(time.Millisecond)
	assert.True(t, fired(timer.C()))
	assert.Equal(t, 0, m.Pending())

	m.Advance(time.Second)
	assert.False(t, fired(timer.C()))
	assert.False(t, timer.Stop())
}

func TestManualZeroTimerWaitsForAdvance(t *testing.T) {
	m := NewManual(epoch)
	timer := m.NewTimer(0)
	assert.False(t, fired(timer.C()))
	assert.Equal(t, 1, m.Pending())

	m.Advance(0)
	assert.True(t, fired(timer.C()))
}

func TestManualStoppedTimerNeverFires(t *testing.T) {
	m := NewManual(epoch)
	timer := m.NewTimer(10 * time.Millisecond)
	assert.True(t, timer.Stop())
	m.Advance(time.Second)
	assert.False(t, fired(timer.C()))
	assert.Equal(t, 0, m.Pending())
}

func TestManualTickerDropsMissedTicks(t *testing.T) {
	m := NewManual(epoch)
	ticker := m.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	m.Advance(time.Second)
	assert.True(t, fired(ticker.C()))
	assert.False(t, fired(ticker.C()))

	m.Advance(200 * time.Millisecond)
	assert.True(t, fired(ticker.C()))
	assert.Equal(t, 0, m.Pending(), "tickers are not counted as pending timers")
}

func TestManualNextTimer(t *testing.T) {
	m := NewManual(epoch)
	_, ok := m.NextTimer()
	require.False(t, ok)

	m.NewTimer(500 * time.Millisecond)
	m.NewTimer(50 * time.Millisecond)
	next, ok := m.NextTimer()
	require.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, next)
	assert.Equal(t, epoch, m.Now())
}

func TestRealClock(t *testing.T) {
	c := Real()
	timer := c.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
	ticker := c.NewTicker(time.Millisecond)
	<-ticker.C()
	ticker.Stop()
	assert.False(t, c.Now().IsZero())
}
