// Package scroll 周期性滚动视口以及页面内所有还有剩余内容的可滚动元素,
// 直到外部设置停止标记。
package scroll

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/clock"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
)

// DefaultInterval 两次滚动之间的间隔
const DefaultInterval = 200 * time.Millisecond

// State 滚动引擎状态,只能从 Running 变为 Stopped
type State int

const (
	// Running 每次 tick 都会滚动
	Running State = iota
	// Stopped 已设置停止标记,tick 不再滚动
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// Stats 引擎计数
type Stats struct {
	Ticks      int
	Scrolls    int
	BoxScrolls int
	Failed     int
}

// Engine 滚动引擎
type Engine struct {
	page     dom.Scroller
	clock    clock.Clock
	logger   *zap.Logger
	reporter event.Reporter
	interval time.Duration

	stopped      atomic.Bool
	stopReported bool
	stats        Stats
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 替换时钟
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithReporter 设置事件接收方
func WithReporter(r event.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithInterval 覆盖滚动间隔
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// New 创建滚动引擎
func New(page dom.Scroller, opts ...Option) *Engine {
	e := &Engine{
		page:     page,
		clock:    clock.Real(),
		logger:   zap.NewNop(),
		reporter: event.Nop(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stop 设置停止标记,可以从任意 goroutine 调用,重复调用无副作用。
// 之后的每次 tick 都不再滚动,但 tick 本身会继续触发直到 Run 返回。
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// State 当前状态
func (e *Engine) State() State {
	if e.stopped.Load() {
		return Stopped
	}
	return Running
}

// Stats 返回计数快照,只应在 Run 返回后或 Run 所在的 goroutine 中调用
func (e *Engine) Stats() Stats {
	return e.stats
}

// Plan 计算一次滚动:视口滚动半屏,每个还有剩余内容的元素滚动自身可视高度的一半。
// 可视高度为 0 的元素被跳过。
func Plan(view dom.Viewport, boxes []dom.ScrollBox) (float64, []dom.ScrollStep) {
	var steps []dom.ScrollStep
	for _, b := range boxes {
		if b.ClientHeight <= 0 {
			continue
		}
		if b.ScrollHeight-b.ScrollTop > b.ClientHeight {
			steps = append(steps, dom.ScrollStep{Index: b.Index, Delta: b.ClientHeight / 2})
		}
	}
	return view.InnerHeight / 2, steps
}

// Tick 执行一次滚动,返回是否实际滚动。停止后为空操作。
func (e *Engine) Tick(ctx context.Context) bool {
	e.stats.Ticks++
	if e.stopped.Load() {
		if !e.stopReported {
			e.stopReported = true
			e.logger.Info("滚动已停止", zap.Int("scrolls", e.stats.Scrolls))
			e.reporter.Report(event.New(event.KindScrollStop, e.clock.Now()))
		}
		return false
	}

	view, err := e.page.Viewport(ctx)
	if err != nil {
		e.fail("读取视口失败", err)
		return false
	}
	boxes, err := e.page.ScrollBoxes(ctx)
	if err != nil {
		e.fail("读取可滚动元素失败", err)
		return false
	}
	dy, steps := Plan(view, boxes)
	if err := e.page.ScrollViewport(ctx, dy); err != nil {
		e.fail("滚动视口失败", err)
		return false
	}
	if len(steps) > 0 {
		if err := e.page.ScrollBoxesBy(ctx, steps); err != nil {
			e.fail("滚动元素失败", err)
			return false
		}
	}

	e.stats.Scrolls++
	e.stats.BoxScrolls += len(steps)
	ev := event.New(event.KindScroll, e.clock.Now())
	ev.Count = len(steps)
	e.reporter.Report(ev)
	return true
}

func (e *Engine) fail(msg string, err error) {
	e.stats.Failed++
	e.logger.Debug(msg, zap.Error(err))
}

// Run 等待页面加载完成后按间隔滚动,直到 ctx 结束。
// 加载等待失败只记录日志,仍然开始滚动。
func (e *Engine) Run(ctx context.Context) error {
	if err := e.page.WaitLoad(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		e.logger.Warn("等待页面加载失败,直接开始滚动", zap.Error(err))
	}
	e.logger.Info("滚动引擎启动", zap.Duration("interval", e.interval))

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("滚动引擎退出", zap.Int("ticks", e.stats.Ticks), zap.Int("scrolls", e.stats.Scrolls))
			return nil
		case <-ticker.C():
			e.Tick(ctx)
		}
	}
}
