package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
)

func TestNewBehaviorEventDoc(t *testing.T) {
	ev := event.New(event.KindClick, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	ev.Session = "s"
	ev.Hostname = "www.reddit.com"
	ev.Selector = "span.morecomments a"
	ev.Delay = 500 * time.Millisecond

	doc := NewBehaviorEventDoc(ev)
	assert.Equal(t, ev.ID, doc.GetID())
	assert.Equal(t, "click", doc.Kind)
	assert.Equal(t, int64(500), doc.DelayMs)
}

func TestNilDocExposesIndexAndMapping(t *testing.T) {
	var doc *BehaviorEventDoc
	assert.Equal(t, BehaviorEventIndex, doc.GetIndex())
	mapping := doc.GetTypeMapping()
	assert.Contains(t, mapping.Properties, "session")
	assert.Contains(t, mapping.Properties, "at")
}
