// Package click 按站点规则发现可点击元素,并以节流的方式逐个派发点击。
//
// 引擎是单线程的:队列、已见集合、状态和派发定时器只在 Run 所在的
// goroutine 中读写。Run 之外的调用方只能在 Run 返回后读取 State、Stats。
package click

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/clock"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/sites"
)

const (
	// DefaultThrottle 规则未指定节流间隔时,两次点击之间的默认间隔
	DefaultThrottle = 50 * time.Millisecond
	// DefaultDiscoverInterval 两次发现扫描之间的间隔
	DefaultDiscoverInterval = time.Second
)

// State 点击管线的状态
type State int

const (
	// Idle 队列为空,没有派发定时器
	Idle State = iota
	// Draining 派发定时器已设置,正在逐个消费队列
	Draining
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// Stats 引擎计数
type Stats struct {
	Ticks      int
	Enqueued   int
	Dispatched int
	Failed     int
	Seen       int
}

type entry struct {
	el   dom.Element
	rule sites.SelectorRule
}

// Engine 发现循环 + 点击队列 + 派发器
type Engine struct {
	doc      dom.Document
	rules    []sites.SelectorRule
	clock    clock.Clock
	logger   *zap.Logger
	reporter event.Reporter
	throttle time.Duration
	interval time.Duration

	queue []entry
	seen  map[dom.NodeID]struct{}
	state State
	timer clock.Timer
	stats Stats
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

// WithThrottle 覆盖默认节流间隔
func WithThrottle(d time.Duration) Option {
	return func(e *Engine) { e.throttle = d }
}

// WithDiscoverInterval 覆盖发现间隔
func WithDiscoverInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// New 创建点击引擎。rules 为当前页面主机名匹配到的选择器规则,可以为空。
func New(doc dom.Document, rules []sites.SelectorRule, opts ...Option) *Engine {
	e := &Engine{
		doc:      doc,
		rules:    rules,
		clock:    clock.Real(),
		logger:   zap.NewNop(),
		reporter: event.Nop(),
		throttle: DefaultThrottle,
		interval: DefaultDiscoverInterval,
		seen:     make(map[dom.NodeID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State 当前状态
func (e *Engine) State() State {
	return e.state
}

// QueueLen 待点击的元素数量
func (e *Engine) QueueLen() int {
	return len(e.queue)
}

// Stats 返回计数快照
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Seen = len(e.seen)
	return s
}

// Rules 生效的选择器规则
func (e *Engine) Rules() []sites.SelectorRule {
	return e.rules
}

// Discover 执行一次发现扫描,返回本次入队的数量。
// 扫描结束后如果队列非空且处于 Idle,立即设置零延迟的派发定时器。
func (e *Engine) Discover(ctx context.Context) int {
	e.stats.Ticks++
	added := 0
	for _, rule := range e.rules {
		// 点击可能在扫描期间改变 DOM,每条规则都重新查询
		elements, err := e.doc.QueryAll(ctx, rule.Selector)
		if err != nil {
			if ctx.Err() != nil {
				return added
			}
			e.logger.Warn("查询选择器失败,跳过该规则",
				zap.String("selector", rule.Selector), zap.Error(err))
			continue
		}
		for _, el := range elements {
			if _, ok := e.seen[el.ID()]; ok && !rule.Multi() {
				continue
			}
			clickable, err := IsClickable(ctx, el)
			if err != nil {
				e.logger.Debug("判断可点击性失败",
					zap.String("selector", rule.Selector), zap.Int64("node", int64(el.ID())), zap.Error(err))
				continue
			}
			if !clickable {
				continue
			}
			e.queue = append(e.queue, entry{el: el, rule: rule})
			if !rule.Multi() {
				e.seen[el.ID()] = struct{}{}
			}
			added++
		}
	}
	e.stats.Enqueued += added

	if added > 0 {
		ev := event.New(event.KindDiscover, e.clock.Now())
		ev.Count = added
		e.reporter.Report(ev)
	}
	if len(e.queue) > 0 {
		e.ScheduleDispatch(0)
	}
	return added
}

// ScheduleDispatch 设置派发定时器。已有定时器时什么也不做并返回 false,
// 保证任何时刻最多只有一个派发定时器。
func (e *Engine) ScheduleDispatch(d time.Duration) bool {
	if e.state == Draining {
		return false
	}
	e.state = Draining
	e.timer = e.clock.NewTimer(d)
	return true
}

// Dispatch 取出队首并派发点击。队列仍非空时按该条目的节流间隔重新设置定时器,
// 返回该间隔和 true;否则回到 Idle。
func (e *Engine) Dispatch(ctx context.Context) (time.Duration, bool) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if len(e.queue) == 0 {
		e.state = Idle
		return 0, false
	}

	head := e.queue[0]
	e.queue[0] = entry{}
	e.queue = e.queue[1:]

	ev := event.New(event.KindClick, e.clock.Now())
	ev.Selector = head.rule.Selector
	ev.Node = int64(head.el.ID())
	// 已从文档移除的节点上派发事件是空操作,出错也只记录
	if err := head.el.Click(ctx); err != nil {
		e.stats.Failed++
		ev.Err = err.Error()
		e.logger.Debug("派发点击失败",
			zap.String("selector", head.rule.Selector), zap.Int64("node", ev.Node), zap.Error(err))
	} else {
		e.stats.Dispatched++
	}

	if len(e.queue) == 0 {
		e.state = Idle
		e.reporter.Report(ev)
		return 0, false
	}
	delay := head.rule.ThrottleOr(e.throttle)
	e.timer = e.clock.NewTimer(delay)
	ev.Delay = delay
	e.reporter.Report(ev)
	return delay, true
}

func (e *Engine) dispatchC() <-chan time.Time {
	if e.timer == nil {
		return nil
	}
	return e.timer.C()
}

// Run 周期性发现并派发,直到 ctx 结束。没有匹配规则时保持空闲。
func (e *Engine) Run(ctx context.Context) error {
	if len(e.rules) == 0 {
		e.logger.Info("没有匹配的站点规则,点击引擎保持空闲")
		<-ctx.Done()
		return nil
	}
	e.logger.Info("点击引擎启动", zap.Int("rules", len(e.rules)), zap.Duration("interval", e.interval))

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()
	defer func() {
		if e.timer != nil {
			e.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("点击引擎停止",
				zap.Int("dispatched", e.stats.Dispatched), zap.Int("queued", len(e.queue)))
			return nil
		case <-ticker.C():
			e.Discover(ctx)
		case <-e.dispatchC():
			e.Dispatch(ctx)
		}
	}
}
