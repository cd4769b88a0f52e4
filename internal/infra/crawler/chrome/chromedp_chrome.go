package chrome

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/config"
)

const (
	defaultQueryTimeout = 3 * time.Second
	loadPollInterval    = 100 * time.Millisecond
)

type chromedpCrawler struct {
	allocCtxFuc   context.CancelFunc
	browserCtx    context.Context
	browserCtxFuc context.CancelFunc
	timeoutCtxFuc context.CancelFunc
	queryTimeout  time.Duration
	logger        *zap.Logger
}

func InitChromedpCrawler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ChromeCrawler, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Chromedp.Headless),
		chromedp.Flag("incognito", cfg.Chromedp.Incognito),
		chromedp.Flag("disable-dev-shm-usage", cfg.Chromedp.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", cfg.Chromedp.NoSandbox),
	)
	if cfg.Chromedp.DisableBlinkFeatures != "" {
		opts = append(opts, chromedp.Flag("disable-blink-features", cfg.Chromedp.DisableBlinkFeatures))
	}
	if cfg.Chromedp.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.Chromedp.UserDataDir))
	}
	if cfg.Chromedp.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Chromedp.UserAgent))
	}

	cancelTimeout := context.CancelFunc(func() {})
	if cfg.Chromedp.LifeTime > 0 {
		ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(cfg.Chromedp.LifeTime)*time.Second)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)
	// 第一次 Run 启动浏览器
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		cancelTimeout()
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	queryTimeout := time.Duration(cfg.Chromedp.QueryTimeout) * time.Second
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	logger.Info("chromedp 浏览器已启动", zap.Bool("headless", cfg.Chromedp.Headless))
	return &chromedpCrawler{
		allocCtxFuc:   cancelAlloc,
		browserCtx:    browserCtx,
		browserCtxFuc: cancelBrowser,
		timeoutCtxFuc: cancelTimeout,
		queryTimeout:  queryTimeout,
		logger:        logger,
	}, nil
}

func (cc *chromedpCrawler) OpenPage(ctx context.Context, url string) (Tab, error) {
	tabCtx, cancelTab := chromedp.NewContext(cc.browserCtx)
	// 新标签页必须在不带超时的 context 上创建
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		return nil, fmt.Errorf("创建标签页失败: %w", err)
	}
	tab := &chromedpTab{ctx: tabCtx, cancel: cancelTab, url: url, queryTimeout: cc.queryTimeout}
	if err := tab.run(ctx, chromedp.Navigate(url)); err != nil {
		cancelTab()
		return nil, fmt.Errorf("导航到 %s 失败: %w", url, err)
	}
	cc.logger.Debug("页面已打开", zap.String("url", url))
	return tab, nil
}

func (cc *chromedpCrawler) Close() {
	cc.browserCtxFuc()
	cc.allocCtxFuc()
	cc.timeoutCtxFuc()
}
