package model

import (
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
)

// BehaviorEventIndex 行为事件索引名
const BehaviorEventIndex = "page_behavior_events"

// BehaviorEventDoc 行为事件在 ES 中的文档
type BehaviorEventDoc struct {
	ID       string    `json:"id"`
	Session  string    `json:"session"`
	Kind     string    `json:"kind"`
	Hostname string    `json:"hostname"`
	Selector string    `json:"selector,omitempty"`
	Node     int64     `json:"node,omitempty"`
	Count    int       `json:"count,omitempty"`
	DelayMs  int64     `json:"delay_ms,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// NewBehaviorEventDoc 由行为事件构建文档
func NewBehaviorEventDoc(ev event.Event) *BehaviorEventDoc {
	return &BehaviorEventDoc{
		ID:       ev.ID,
		Session:  ev.Session,
		Kind:     string(ev.Kind),
		Hostname: ev.Hostname,
		Selector: ev.Selector,
		Node:     ev.Node,
		Count:    ev.Count,
		DelayMs:  ev.Delay.Milliseconds(),
		Error:    ev.Err,
		At:       ev.At,
	}
}

func (d *BehaviorEventDoc) GetID() string {
	return d.ID
}

func (d *BehaviorEventDoc) GetIndex() string {
	return BehaviorEventIndex
}

func (d *BehaviorEventDoc) GetTypeMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"id":       types.NewKeywordProperty(),
			"session":  types.NewKeywordProperty(),
			"kind":     types.NewKeywordProperty(),
			"hostname": types.NewKeywordProperty(),
			"selector": types.NewTextProperty(),
			"node":     types.NewLongNumberProperty(),
			"count":    types.NewIntegerNumberProperty(),
			"delay_ms": types.NewLongNumberProperty(),
			"error":    types.NewTextProperty(),
			"at":       types.NewDateProperty(),
		},
	}
}
