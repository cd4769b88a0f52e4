// Package sites 站点规则表:按主机名选出需要点击的 CSS 选择器。
package sites

import (
	"regexp"
	"time"
)

// Flag 选择器规则的行为标记
type Flag uint8

const (
	// Multi 匹配到的元素不进入已见集合,每次发现都可以重新入队
	Multi Flag = 1 << iota
)

// Has 判断是否包含指定标记
func (f Flag) Has(x Flag) bool {
	return f&x != 0
}

func (f Flag) String() string {
	if f.Has(Multi) {
		return "multi"
	}
	return "once"
}

// SelectorRule 单条选择器规则
type SelectorRule struct {
	Selector string
	Flags    Flag
	// Throttle 为 0 时使用全局默认节流间隔
	Throttle time.Duration
}

// Multi 是否允许重复点击
func (r SelectorRule) Multi() bool {
	return r.Flags.Has(Multi)
}

// ThrottleOr 返回规则自身的节流间隔,未设置时返回 def
func (r SelectorRule) ThrottleOr(def time.Duration) time.Duration {
	if r.Throttle > 0 {
		return r.Throttle
	}
	return def
}

// SiteRule 主机名模式与其选择器列表
type SiteRule struct {
	Hostname  *regexp.Regexp
	Selectors []SelectorRule
}

// Table 有序的站点规则表,创建后不再修改
type Table []SiteRule

// Match 返回所有匹配 hostname 的规则的选择器,按规则顺序拼接。
// 只比较主机名,不看路径;锚定由每条规则自己的模式决定。
func (t Table) Match(hostname string) []SelectorRule {
	var selectors []SelectorRule
	for _, site := range t {
		if site.Hostname.MatchString(hostname) {
			selectors = append(selectors, site.Selectors...)
		}
	}
	return selectors
}

// Extend 返回追加了 other 的新表,原表不变
func (t Table) Extend(other Table) Table {
	merged := make(Table, 0, len(t)+len(other))
	merged = append(merged, t...)
	return append(merged, other...)
}
