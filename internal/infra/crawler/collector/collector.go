package collector

import "context"

// CollyCrawler 抓取页面原始 HTML,用于不启动浏览器的静态预演
type CollyCrawler interface {
	FetchHTML(ctx context.Context, url string) ([]byte, error)
}
