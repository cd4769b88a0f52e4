package behavior

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/click"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/sites"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/static"
)

// Plan 不启动浏览器时一次发现扫描的结果
type Plan struct {
	Url      string               `json:"url"`
	Hostname string               `json:"hostname"`
	Rules    []sites.SelectorRule `json:"rules"`
	Clicks   []static.Click       `json:"clicks"`
}

// PlanPage 抓取静态 HTML,执行一次发现并立即派发队列中的所有点击,
// 返回会被点击的元素。页面上的脚本不会执行。
func PlanPage(ctx context.Context, fetcher collector.CollyCrawler, table sites.Table, url string, logger *zap.Logger) (*Plan, error) {
	body, err := fetcher.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}
	page, err := static.Parse(bytes.NewReader(body), url)
	if err != nil {
		return nil, err
	}
	host, err := page.Hostname(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取主机名失败: %w", err)
	}
	rules := table.Match(host)

	engine := click.New(page, rules, click.WithLogger(logger))
	found := engine.Discover(ctx)
	for {
		if _, more := engine.Dispatch(ctx); !more {
			break
		}
	}
	logger.Info("静态预演完成", zap.String("hostname", host), zap.Int("rules", len(rules)), zap.Int("found", found))
	return &Plan{Url: url, Hostname: host, Rules: rules, Clicks: page.Clicks()}, nil
}
