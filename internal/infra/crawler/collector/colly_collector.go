package collector

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/config"
)

type collyCrawler struct {
	colly  *colly.Collector
	logger *zap.Logger
}

func InitCollyCrawler(cfg *config.Config, logger *zap.Logger) (CollyCrawler, error) {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
	}
	if cfg.Colly.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.Colly.UserAgent))
	}
	if len(cfg.Colly.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(cfg.Colly.AllowedDomains...))
	}
	if cfg.Colly.IgnoreRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	c := colly.NewCollector(opts...)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       time.Duration(cfg.Colly.Delay) * time.Second,
		RandomDelay: time.Duration(cfg.Colly.RandomDelay) * time.Second,
	}); err != nil {
		return nil, fmt.Errorf("设置抓取限速失败: %w", err)
	}
	if cfg.Colly.RequestTimeout > 0 {
		c.SetRequestTimeout(time.Duration(cfg.Colly.RequestTimeout) * time.Second)
	}
	if cfg.Colly.EnableCookieJar {
		jar, err := cookiejar.New(cfg.Colly.CookieJarOptions)
		if err != nil {
			return nil, fmt.Errorf("创建 cookie jar 失败: %w", err)
		}
		c.SetCookieJar(jar)
	}
	logger.Debug("colly 抓取器已初始化",
		zap.Int("delay", cfg.Colly.Delay), zap.Int("random_delay", cfg.Colly.RandomDelay))
	return &collyCrawler{colly: c, logger: logger}, nil
}

func (c *collyCrawler) FetchHTML(ctx context.Context, url string) ([]byte, error) {
	// 每次抓取用独立的回调,配置沿用原抓取器
	col := c.colly.Clone()
	col.Context = ctx

	var (
		body     []byte
		fetchErr error
	)
	col.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	col.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("状态码 %d: %w", r.StatusCode, err)
	})
	if err := col.Visit(url); err != nil {
		return nil, fmt.Errorf("访问URL失败: %w", err)
	}
	col.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("抓取 %s 失败: %w", url, fetchErr)
	}
	c.logger.Debug("页面已抓取", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}
