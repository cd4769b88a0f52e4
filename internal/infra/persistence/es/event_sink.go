package es

import (
	"context"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/sortorder"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
)

// EventSink 缓存行为事件,在 Flush 时批量写入 ES。Report 不会阻塞引擎。
type EventSink struct {
	client TypedEsClient[*model.BehaviorEventDoc]
	logger *zap.Logger

	mu  sync.Mutex
	buf []*model.BehaviorEventDoc
}

var _ event.Reporter = (*EventSink)(nil)

func NewEventSink(client TypedEsClient[*model.BehaviorEventDoc], logger *zap.Logger) *EventSink {
	return &EventSink{client: client, logger: logger}
}

func (s *EventSink) Report(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, model.NewBehaviorEventDoc(ev))
}

// Pending 尚未写入的事件数量
func (s *EventSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Flush 写入已缓存的事件。写入失败时事件放回缓存,下次 Flush 重试。
func (s *EventSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	docs := s.buf
	s.buf = nil
	s.mu.Unlock()
	if len(docs) == 0 {
		return nil
	}

	if err := s.client.BulkIndexDocsWithID(ctx, docs); err != nil {
		s.mu.Lock()
		s.buf = append(docs, s.buf...)
		s.mu.Unlock()
		return fmt.Errorf("写入 %d 个行为事件失败: %w", len(docs), err)
	}
	s.logger.Debug("行为事件已写入", zap.Int("count", len(docs)))
	return nil
}

// SessionEvents 按时间顺序返回某次运行最早的 size 个事件,排序在服务端完成
func SessionEvents(ctx context.Context, client TypedEsClient[*model.BehaviorEventDoc], session string, size int) ([]*model.BehaviorEventDoc, error) {
	query := &types.Query{
		Term: map[string]types.TermQuery{
			"session": {Value: session},
		},
	}
	docs, _, err := client.SearchDoc(ctx, query, 0, size, byTime())
	if err != nil {
		return nil, fmt.Errorf("查询会话 %s 的事件失败: %w", session, err)
	}
	return docs, nil
}

func byTime() *types.SortOptions {
	return &types.SortOptions{
		SortOptions: map[string]types.FieldSort{
			"at": {Order: &sortorder.Asc},
		},
	}
}
