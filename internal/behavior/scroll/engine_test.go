package scroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/clock"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom/domtest"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
)

func TestPlan(t *testing.T) {
	boxes := []dom.ScrollBox{
		{Index: 0, ScrollHeight: 2000, ScrollTop: 0, ClientHeight: 400},
		{Index: 1, ScrollHeight: 800, ScrollTop: 400, ClientHeight: 400}, // 已到底
		{Index: 2, ScrollHeight: 500, ScrollTop: 0, ClientHeight: 0},
		{Index: 3, ScrollHeight: 900, ScrollTop: 450, ClientHeight: 300},
	}
	dy, steps := Plan(dom.Viewport{InnerHeight: 1000}, boxes)
	assert.Equal(t, 500.0, dy)
	assert.Equal(t, []dom.ScrollStep{{Index: 0, Delta: 200}, {Index: 3, Delta: 150}}, steps)

	dy, steps = Plan(dom.Viewport{InnerHeight: 0}, nil)
	assert.Zero(t, dy)
	assert.Empty(t, steps)
}

func TestTickScrollsViewportAndBoxes(t *testing.T) {
	page := domtest.NewPage("example.com")
	page.SetScroll(800, dom.ScrollBox{Index: 2, ScrollHeight: 3000, ClientHeight: 600})
	rec := &event.Recorder{}
	e := New(page, WithReporter(rec), WithClock(clock.NewManual(time.Unix(0, 0))))

	require.True(t, e.Tick(context.Background()))
	require.True(t, e.Tick(context.Background()))

	assert.Equal(t, []float64{400, 400}, page.ViewportDeltas())
	assert.Equal(t, [][]dom.ScrollStep{{{Index: 2, Delta: 300}}, {{Index: 2, Delta: 300}}}, page.ScrollSteps())
	assert.Equal(t, 2, rec.Count(event.KindScroll))
	assert.Equal(t, Stats{Ticks: 2, Scrolls: 2, BoxScrolls: 2}, e.Stats())
}

func TestTickWithoutBoxesSkipsElementScroll(t *testing.T) {
	page := domtest.NewPage("example.com")
	page.SetScroll(600)
	e := New(page)

	require.True(t, e.Tick(context.Background()))
	viewport, boxes := page.ScrollCalls()
	assert.Equal(t, 1, viewport)
	assert.Equal(t, 0, boxes)
	assert.Empty(t, page.ScrollSteps())
}

func TestTickScrollsMeasuredBoxesAfterDOMChange(t *testing.T) {
	page := domtest.NewPage("example.com")
	feed := dom.ScrollBox{Index: 0, ScrollHeight: 3000, ClientHeight: 600}
	footer := dom.ScrollBox{Index: 1, ScrollHeight: 500, ClientHeight: 500}
	page.SetScroll(800, feed, footer)
	// 测量之后页面插入了新节点,原来的顺序整体后移
	page.OnMeasured(func() {
		page.SetScroll(800,
			dom.ScrollBox{Index: 0, ScrollHeight: 500, ClientHeight: 500},
			dom.ScrollBox{Index: 1, ScrollHeight: 3000, ClientHeight: 600},
		)
	})
	e := New(page)

	require.True(t, e.Tick(context.Background()))
	assert.Equal(t, []dom.ScrollBox{feed}, page.ScrolledBoxes())
}

func TestStopMakesLaterTicksNoops(t *testing.T) {
	ctx := context.Background()
	page := domtest.NewPage("example.com")
	page.SetScroll(800, dom.ScrollBox{Index: 0, ScrollHeight: 3000, ClientHeight: 600})
	rec := &event.Recorder{}
	e := New(page, WithReporter(rec))

	require.True(t, e.Tick(ctx))
	assert.Equal(t, Running, e.State())

	e.Stop()
	e.Stop()
	assert.Equal(t, Stopped, e.State())
	for i := 0; i < 5; i++ {
		assert.False(t, e.Tick(ctx))
	}

	viewport, boxes := page.ScrollCalls()
	assert.Equal(t, 1, viewport)
	assert.Equal(t, 1, boxes)
	assert.Equal(t, 1, rec.Count(event.KindScrollStop))
	assert.Equal(t, 6, e.Stats().Ticks)
}

func TestStopBeforeFirstTick(t *testing.T) {
	page := domtest.NewPage("example.com")
	page.SetScroll(800)
	e := New(page)
	e.Stop()

	assert.False(t, e.Tick(context.Background()))
	viewport, _ := page.ScrollCalls()
	assert.Zero(t, viewport)
}

func TestTickDriverErrorFailsOpen(t *testing.T) {
	page := domtest.NewPage("example.com")
	page.SetScroll(800)
	page.FailScroll(domtest.ErrDriver)
	e := New(page)

	assert.False(t, e.Tick(context.Background()))
	assert.Equal(t, 1, e.Stats().Failed)

	page.FailScroll(nil)
	assert.True(t, e.Tick(context.Background()))
}

func TestRunScrollsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	page := domtest.NewPage("example.com")
	page.SetScroll(800)
	e := New(page, WithInterval(2*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	assert.Eventually(t, func() bool {
		viewport, _ := page.ScrollCalls()
		return viewport >= 3
	}, 2*time.Second, 2*time.Millisecond)

	e.Stop()
	// 停止之后最多还有一次正在进行的 tick
	time.Sleep(10 * time.Millisecond)
	after, _ := page.ScrollCalls()
	time.Sleep(20 * time.Millisecond)
	still, _ := page.ScrollCalls()
	assert.Equal(t, after, still)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, Stopped, e.State())
}

func TestRunStartsAfterLoadFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	page := domtest.NewPage("example.com")
	page.SetScroll(800)
	page.FailLoad(errors.New("load event timed out"))
	e := New(page, WithInterval(2*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	assert.Eventually(t, func() bool {
		viewport, _ := page.ScrollCalls()
		return viewport >= 1
	}, 2*time.Second, 2*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
}
