package chrome

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/config"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/options"
)

type rodCrawler struct {
	browser  *rod.Browser
	pagePool rod.Pool[rod.Page]
	create   func() (*rod.Page, error)
	logger   *zap.Logger
}

func InitRodCrawler(cfg *config.Config, logger *zap.Logger) (ChromeCrawler, error) {
	l := options.CreateLauncher(cfg.Rod.UserMode,
		options.WithBin(cfg.Rod.Bin),
		options.WithUserDataDir(cfg.Rod.UserDataDir),
		options.WithHeadless(cfg.Rod.Headless),
		options.WithDisableBlinkFeatures(cfg.Rod.DisableBlinkFeatures),
		options.WithIncognito(cfg.Rod.Incognito),
		options.WithDisableDevShmUsage(cfg.Rod.DisableDevShmUsage),
		options.WithNoSandbox(cfg.Rod.NoSandbox),
		options.WithUserAgent(cfg.Rod.UserAgent),
		options.WithLeakless(cfg.Rod.Leakless),
		options.WithDisableBackgroundNetworking(cfg.Rod.DisableBackgroundNetworking),
		options.WithDisableBackgroundTimerThrottling(cfg.Rod.DisableBackgroundTimerThrottling),
		options.WithRemoteDebuggingPort(cfg.Rod.RemoteDebuggingPort),
	)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	logger.Info("浏览器已启动", zap.String("control_url", controlURL))

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	useStealth := cfg.Rod.Stealth
	create := func() (*rod.Page, error) {
		if useStealth {
			return stealth.Page(browser)
		}
		return browser.Page(proto.TargetCreateTarget{})
	}
	return &rodCrawler{
		browser:  browser,
		pagePool: rod.NewPagePool(cfg.Rod.PagePoolSize),
		create:   create,
		logger:   logger,
	}, nil
}

func (rc *rodCrawler) OpenPage(ctx context.Context, url string) (Tab, error) {
	page, err := rc.pagePool.Get(rc.create)
	if err != nil {
		// 创建失败时归还空槽位,否则池容量会永久减少
		rc.pagePool.Put(nil)
		return nil, fmt.Errorf("获取页面失败: %w", err)
	}
	if err := page.Context(ctx).Navigate(url); err != nil {
		rc.release(page)
		return nil, fmt.Errorf("导航到 %s 失败: %w", url, err)
	}
	rc.logger.Debug("页面已打开", zap.String("url", url))
	return &rodTab{page: page, url: url, release: rc.release}, nil
}

// release 清空页面后放回池中
func (rc *rodCrawler) release(page *rod.Page) {
	if err := page.Navigate("about:blank"); err != nil {
		rc.logger.Debug("重置页面失败,关闭该页面", zap.Error(err))
		_ = page.Close()
		rc.pagePool.Put(nil)
		return
	}
	rc.pagePool.Put(page)
}

func (rc *rodCrawler) Close() {
	rc.pagePool.Cleanup(func(p *rod.Page) {
		if p != nil {
			_ = p.Close()
		}
	})
	if err := rc.browser.Close(); err != nil {
		rc.logger.Warn("关闭浏览器失败", zap.Error(err))
	}
}
