package behavior

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/click"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/scroll"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/sites"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/parallel"
	"github.com/LouYuanbo1/pagebehavior/param"
)

// ErrInvalidJob 任务参数不合法
var ErrInvalidJob = errors.New("无效的页面任务")

type behaviorService struct {
	crawler    chrome.ChromeCrawler
	table      sites.Table
	logger     *zap.Logger
	reporter   event.Reporter
	flusher    Flusher
	clickOpts  []click.Option
	scrollOpts []scroll.Option
}

func InitBehaviorService(crawler chrome.ChromeCrawler, table sites.Table, opts ...Option) BehaviorService {
	s := &behaviorService{
		crawler:  crawler,
		table:    table,
		logger:   zap.NewNop(),
		reporter: event.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *behaviorService) Run(ctx context.Context, job *param.PageJob) (*Report, error) {
	if !job.IsValid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidJob, job)
	}
	start := time.Now()
	session := uuid.NewString()
	logger := s.logger.With(zap.String("session", session), zap.String("url", job.Url))

	tab, err := s.crawler.OpenPage(ctx, job.Url)
	if err != nil {
		return nil, fmt.Errorf("打开页面失败: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			logger.Debug("关闭页面失败", zap.Error(err))
		}
	}()

	host, err := tab.Hostname(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取主机名失败: %w", err)
	}
	rules := s.table.Match(host)
	logger.Info("开始运行页面行为",
		zap.String("hostname", host), zap.Int("rules", len(rules)),
		zap.Duration("duration", job.Duration), zap.Duration("scroll_for", job.ScrollFor))

	reporter := event.WithSession(event.Multi(s.reporter, event.NewZapReporter(logger)), session, host)
	report := &Report{Session: session, Url: job.Url, Hostname: host, Rules: len(rules)}

	runCtx, cancel := context.WithTimeout(ctx, job.Duration)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	var clicker *click.Engine
	if job.Click {
		opts := append([]click.Option{click.WithLogger(logger), click.WithReporter(reporter)}, s.clickOpts...)
		clicker = click.New(tab, rules, opts...)
		g.Go(func() error { return clicker.Run(gctx) })
	}
	var scroller *scroll.Engine
	if job.Scroll {
		opts := append([]scroll.Option{scroll.WithLogger(logger), scroll.WithReporter(reporter)}, s.scrollOpts...)
		scroller = scroll.New(tab, opts...)
		g.Go(func() error { return scroller.Run(gctx) })
		if job.ScrollFor > 0 && job.ScrollFor < job.Duration {
			stop := time.AfterFunc(job.ScrollFor, scroller.Stop)
			defer stop.Stop()
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("运行页面行为失败: %w", err)
	}

	if clicker != nil {
		stats := clicker.Stats()
		report.Click = &stats
	}
	if scroller != nil {
		stats := scroller.Stats()
		report.Scroll = &stats
	}
	report.Elapsed = time.Since(start)
	s.flush(ctx, logger)
	logger.Info("页面行为结束", zap.Duration("elapsed", report.Elapsed))

	// 外部取消时仍返回已收集的结果
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *behaviorService) flush(ctx context.Context, logger *zap.Logger) {
	if s.flusher == nil {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := s.flusher.Flush(flushCtx); err != nil {
		logger.Warn("写出行为事件失败", zap.Error(err))
	}
}

type indexedJob struct {
	index int
	job   *param.PageJob
}

// RunAll 用 workers 个并发处理所有合法任务,结果与 jobs 一一对应,失败或跳过的位置为 nil
func (s *behaviorService) RunAll(ctx context.Context, jobs []*param.PageJob, workers int) ([]*Report, error) {
	reports := make([]*Report, len(jobs))
	valid := make([]indexedJob, 0, len(jobs))
	for i, job := range jobs {
		if job.IsValid() {
			valid = append(valid, indexedJob{index: i, job: job})
		} else {
			s.logger.Warn("无效的任务参数,已经跳过", zap.Any("job", job))
		}
	}

	var mu sync.Mutex
	err := parallel.Run(ctx, s.logger, valid, workers, func(ctx context.Context, workerID int, item indexedJob) error {
		s.logger.Debug("worker 处理页面", zap.Int("worker", workerID), zap.String("url", item.job.Url))
		report, err := s.Run(ctx, item.job)
		if report != nil {
			mu.Lock()
			reports[item.index] = report
			mu.Unlock()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", item.job.Url, err)
		}
		return nil
	})
	return reports, err
}
