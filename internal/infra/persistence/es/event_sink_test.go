package es

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/sortorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/event"
	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
)

type fakeClient struct {
	mu      sync.Mutex
	failing bool
	indexed []*model.BehaviorEventDoc
	query   *types.Query
	sort    []types.SortCombinationsVariant
	size    int
}

func (f *fakeClient) CreateIndexWithMapping(ctx context.Context) error { return nil }

func (f *fakeClient) BulkIndexDocsWithID(ctx context.Context, docs []*model.BehaviorEventDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("es unavailable")
	}
	f.indexed = append(f.indexed, docs...)
	return nil
}

func (f *fakeClient) CountDocs(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.indexed)), nil
}

func (f *fakeClient) SearchDoc(ctx context.Context, query *types.Query, from, size int, sort ...types.SortCombinationsVariant) ([]*model.BehaviorEventDoc, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = query
	f.sort = sort
	f.size = size
	out := append([]*model.BehaviorEventDoc(nil), f.indexed...)
	if len(sort) > 0 {
		slices.SortStableFunc(out, func(a, b *model.BehaviorEventDoc) int {
			return a.At.Compare(b.At)
		})
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, int64(len(f.indexed)), nil
}

func TestEventSinkFlush(t *testing.T) {
	client := &fakeClient{}
	sink := NewEventSink(client, zap.NewNop())

	now := time.Now()
	sink.Report(event.New(event.KindDiscover, now))
	sink.Report(event.New(event.KindClick, now.Add(time.Millisecond)))
	assert.Equal(t, 2, sink.Pending())

	require.NoError(t, sink.Flush(context.Background()))
	assert.Equal(t, 0, sink.Pending())
	n, err := client.CountDocs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, sink.Flush(context.Background()), "empty flush is a no-op")
}

func TestEventSinkKeepsEventsOnFailure(t *testing.T) {
	client := &fakeClient{failing: true}
	sink := NewEventSink(client, zap.NewNop())
	sink.Report(event.New(event.KindScroll, time.Now()))

	require.Error(t, sink.Flush(context.Background()))
	assert.Equal(t, 1, sink.Pending())

	client.failing = false
	require.NoError(t, sink.Flush(context.Background()))
	assert.Len(t, client.indexed, 1)
}

func TestSessionEventsSortsByTimeOnServer(t *testing.T) {
	client := &fakeClient{}
	sink := NewEventSink(client, zap.NewNop())
	start := time.Now()
	// 写入顺序与时间顺序相反
	for i := 3; i >= 0; i-- {
		ev := event.New(event.KindScroll, start.Add(time.Duration(i)*time.Second))
		ev.Session = "run-1"
		sink.Report(ev)
	}
	require.NoError(t, sink.Flush(context.Background()))

	docs, err := SessionEvents(context.Background(), client, "run-1", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[0].At.Equal(start))
	assert.True(t, docs[1].At.Equal(start.Add(time.Second)))
	assert.Equal(t, "run-1", client.query.Term["session"].Value)
	assert.Equal(t, 2, client.size)

	require.Len(t, client.sort, 1)
	opts, ok := client.sort[0].(*types.SortOptions)
	require.True(t, ok)
	require.Contains(t, opts.SortOptions, "at")
	require.NotNil(t, opts.SortOptions["at"].Order)
	assert.Equal(t, sortorder.Asc, *opts.SortOptions["at"].Order)

	body, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":{"order":"asc"}}`, string(body))
}
