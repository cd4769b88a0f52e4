package param

import (
	"net/url"
	"time"
)

// DefaultDuration 未指定时每个页面的运行时长
const DefaultDuration = 60 * time.Second

// PageJob 对单个页面运行点击与滚动引擎
type PageJob struct {
	Url      string        `json:"url"`
	Duration time.Duration `json:"duration"`
	// ScrollFor 滚动引擎在多久后停止,为 0 时与 Duration 相同
	ScrollFor time.Duration `json:"scroll_for"`
	Click     bool          `json:"click"`
	Scroll    bool          `json:"scroll"`
}

// Normalize 填充默认值
func (pj *PageJob) Normalize() {
	if pj.Duration <= 0 {
		pj.Duration = DefaultDuration
	}
	if pj.ScrollFor <= 0 {
		pj.ScrollFor = pj.Duration
	}
}

func (pj *PageJob) IsValid() bool {
	if pj == nil || pj.Url == "" || pj.Duration <= 0 {
		return false
	}
	if pj.ScrollFor < 0 || pj.ScrollFor > pj.Duration {
		return false
	}
	if !pj.Click && !pj.Scroll {
		return false
	}
	u, err := url.Parse(pj.Url)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
