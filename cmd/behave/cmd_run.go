package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/persistence/es"
	"github.com/LouYuanbo1/pagebehavior/internal/service/behavior"
	"github.com/LouYuanbo1/pagebehavior/param"
)

type runFlags struct {
	driver    string
	duration  time.Duration
	scrollFor time.Duration
	parallel  int
	noClick   bool
	noScroll  bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <url...>",
		Short: "Open each URL in a browser and run the click and scroll engines",
		Example: `  behave run https://disqus.com/embed/comments/?f=example
  behave run --driver chromedp --duration 2m --scroll-for 30s https://www.reddit.com/r/golang/comments/abc/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args)
		},
	}
	cmd.Flags().StringVar(&f.driver, "driver", "", "Browser driver: rod or chromedp (default from config)")
	cmd.Flags().DurationVar(&f.duration, "duration", 0, "How long to run the engines on each page (default from config)")
	cmd.Flags().DurationVar(&f.scrollFor, "scroll-for", 0, "Stop scrolling after this long (default: whole run)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "Number of pages processed at once (default from config)")
	cmd.Flags().BoolVar(&f.noClick, "no-click", false, "Disable the click engine")
	cmd.Flags().BoolVar(&f.noScroll, "no-scroll", false, "Disable the scroll engine")
	return cmd
}

func (a *app) jobs(f *runFlags, urls []string) []*param.PageJob {
	duration := f.duration
	if duration <= 0 {
		duration = time.Duration(a.cfg.Behavior.Duration) * time.Second
	}
	scrollFor := f.scrollFor
	if scrollFor <= 0 {
		scrollFor = time.Duration(a.cfg.Behavior.ScrollFor) * time.Second
	}
	jobs := make([]*param.PageJob, 0, len(urls))
	for _, u := range urls {
		job := &param.PageJob{
			Url:       u,
			Duration:  duration,
			ScrollFor: scrollFor,
			Click:     a.cfg.Behavior.Click && !f.noClick,
			Scroll:    a.cfg.Behavior.Scroll && !f.noScroll,
		}
		job.Normalize()
		jobs = append(jobs, job)
	}
	return jobs
}

func (a *app) openCrawler(ctx context.Context, driver string) (chrome.ChromeCrawler, error) {
	switch driver {
	case "rod":
		return chrome.InitRodCrawler(a.cfg, a.logger)
	case "chromedp":
		return chrome.InitChromedpCrawler(ctx, a.cfg, a.logger)
	default:
		return nil, fmt.Errorf("未知的浏览器驱动: %q", driver)
	}
}

func (a *app) eventSink(ctx context.Context) (*es.EventSink, error) {
	client, err := es.InitTypedEsClient[*model.BehaviorEventDoc](a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	if err := client.CreateIndexWithMapping(ctx); err != nil {
		return nil, err
	}
	return es.NewEventSink(client, a.logger), nil
}

func (a *app) run(cmd *cobra.Command, f *runFlags, urls []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	parallelism := f.parallel
	if parallelism <= 0 {
		parallelism = a.cfg.Behavior.Parallelism
	}
	a.cfg.Rod.PagePoolSize = max(a.cfg.Rod.PagePoolSize, parallelism)
	driver := f.driver
	if driver == "" {
		driver = a.cfg.Behavior.Driver
	}

	opts := []behavior.Option{behavior.WithLogger(a.logger)}
	if a.cfg.Elasticsearch.Enabled {
		sink, err := a.eventSink(ctx)
		if err != nil {
			return fmt.Errorf("初始化事件存储失败: %w", err)
		}
		opts = append(opts, behavior.WithReporter(sink), behavior.WithFlusher(sink))
	}

	crawler, err := a.openCrawler(ctx, driver)
	if err != nil {
		return err
	}
	defer crawler.Close()

	svc := behavior.InitBehaviorService(crawler, a.table, opts...)
	reports, runErr := svc.RunAll(ctx, a.jobs(f, urls), parallelism)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, report := range reports {
		if report == nil {
			continue
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	if runErr != nil {
		a.logger.Error("部分页面运行失败", zap.Error(runErr))
		return runErr
	}
	return nil
}
