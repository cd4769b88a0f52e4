package behavior

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/click"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/scroll"
	"github.com/LouYuanbo1/pagebehavior/param"
)

// BehaviorService 在真实页面上运行点击与滚动引擎
type BehaviorService interface {
	Run(ctx context.Context, job *param.PageJob) (*Report, error)
	RunAll(ctx context.Context, jobs []*param.PageJob, workers int) ([]*Report, error)
}

// Report 单个页面的运行结果
type Report struct {
	Session  string        `json:"session"`
	Url      string        `json:"url"`
	Hostname string        `json:"hostname"`
	Rules    int           `json:"rules"`
	Click    *click.Stats  `json:"click,omitempty"`
	Scroll   *scroll.Stats `json:"scroll,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Flusher 在每个页面结束后写出缓存的事件
type Flusher interface {
	Flush(ctx context.Context) error
}

type Option func(*behaviorService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *behaviorService) { s.logger = logger }
}

// WithReporter 事件接收方,会在所有页面之间共享,必须并发安全
func WithReporter(r event.Reporter) Option {
	return func(s *behaviorService) { s.reporter = r }
}

func WithFlusher(f Flusher) Option {
	return func(s *behaviorService) { s.flusher = f }
}

func WithClickOptions(opts ...click.Option) Option {
	return func(s *behaviorService) { s.clickOpts = append(s.clickOpts, opts...) }
}

func WithScrollOptions(opts ...scroll.Option) Option {
	return func(s *behaviorService) { s.scrollOpts = append(s.scrollOpts, opts...) }
}

const flushTimeout = 30 * time.Second
