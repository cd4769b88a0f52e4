// Package event 记录点击与滚动引擎的行为事件
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind 事件类型
type Kind string

const (
	KindDiscover   Kind = "discover"
	KindClick      Kind = "click"
	KindScroll     Kind = "scroll"
	KindScrollStop Kind = "scroll_stop"
)

// Event 一次行为事件
type Event struct {
	ID       string        `json:"id"`
	Session  string        `json:"session,omitempty"`
	Kind     Kind          `json:"kind"`
	Hostname string        `json:"hostname,omitempty"`
	Selector string        `json:"selector,omitempty"`
	Node     int64         `json:"node,omitempty"`
	Count    int           `json:"count,omitempty"`
	Delay    time.Duration `json:"delay,omitempty"`
	Err      string        `json:"error,omitempty"`
	At       time.Time     `json:"at"`
}

// New 创建带唯一 ID 的事件
func New(kind Kind, at time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, At: at}
}

// Reporter 接收事件。实现不得阻塞调用方。
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc 函数适配器
type ReporterFunc func(ev Event)

func (f ReporterFunc) Report(ev Event) {
	f(ev)
}

// Nop 丢弃所有事件
func Nop() Reporter {
	return ReporterFunc(func(Event) {})
}

// Multi 将事件依次转发给多个 Reporter
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(ev Event) {
		for _, r := range reporters {
			if r != nil {
				r.Report(ev)
			}
		}
	})
}

// WithSession 为事件补上会话 ID 与主机名
func WithSession(r Reporter, session, hostname string) Reporter {
	return ReporterFunc(func(ev Event) {
		if ev.Session == "" {
			ev.Session = session
		}
		if ev.Hostname == "" {
			ev.Hostname = hostname
		}
		r.Report(ev)
	})
}

// NewZapReporter 以 Debug 级别记录每个事件
func NewZapReporter(logger *zap.Logger) Reporter {
	return ReporterFunc(func(ev Event) {
		fields := []zap.Field{
			zap.String("kind", string(ev.Kind)),
			zap.String("session", ev.Session),
			zap.String("hostname", ev.Hostname),
		}
		if ev.Selector != "" {
			fields = append(fields, zap.String("selector", ev.Selector))
		}
		if ev.Node != 0 {
			fields = append(fields, zap.Int64("node", ev.Node))
		}
		if ev.Count != 0 {
			fields = append(fields, zap.Int("count", ev.Count))
		}
		if ev.Delay != 0 {
			fields = append(fields, zap.Duration("delay", ev.Delay))
		}
		if ev.Err != "" {
			fields = append(fields, zap.String("error", ev.Err))
		}
		logger.Debug("行为事件", fields...)
	})
}

// Recorder 在内存中保存事件,用于测试和汇总
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count 统计某类事件的数量
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
