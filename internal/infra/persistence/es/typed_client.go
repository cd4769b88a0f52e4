package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LouYuanbo1/pagebehavior/internal/config"
	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"go.uber.org/zap"
)

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	logger *zap.Logger
	// 零值实例,只用于读取索引名和映射
	schemaDoc D
}

func InitTypedEsClient[D model.Document](cfg *config.Config, logger *zap.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Addresses: []string{
			cfg.Elasticsearch.Address,
		},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.Elasticsearch.InsecureSkipVerify},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Elasticsearch 客户端失败: %w", err)
	}
	return &typedEsClient[D]{client: typedClient, logger: logger}, nil
}

func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	exists, err := tec.client.Indices.Exists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("检查索引 %s 是否存在失败: %w", index, err)
	}
	if exists {
		tec.logger.Debug("索引已存在,跳过创建", zap.String("index", index))
		return nil
	}

	mapping := tec.schemaDoc.GetTypeMapping()
	if mapping == nil {
		_, err = tec.client.Indices.Create(index).Do(ctx)
	} else {
		_, err = tec.client.Indices.Create(index).Mappings(mapping).Do(ctx)
	}
	if err != nil {
		return fmt.Errorf("创建索引 %s 失败: %w", index, err)
	}
	tec.logger.Info("已创建索引", zap.String("index", index))
	return nil
}

func (tec *typedEsClient[D]) BulkIndexDocsWithID(ctx context.Context, docs []D) error {
	if len(docs) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.schemaDoc.GetIndex(),
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.logger.Warn("批量写入出错", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("创建批量写入器失败: %w", err)
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			tec.logger.Warn("序列化文档失败,跳过", zap.String("id", doc.GetID()), zap.Error(err))
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.GetID(),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					tec.logger.Warn("写入文档失败", zap.String("id", item.DocumentID), zap.Error(err))
				} else {
					tec.logger.Warn("写入文档失败", zap.String("id", item.DocumentID), zap.String("reason", res.Error.Reason))
				}
			},
		})
		if err != nil {
			tec.logger.Warn("添加批量写入条目失败", zap.String("id", doc.GetID()), zap.Error(err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("关闭批量写入器失败: %w", err)
	}
	stats := bi.Stats()
	tec.logger.Info("批量写入完成",
		zap.Uint64("indexed", stats.NumIndexed), zap.Uint64("failed", stats.NumFailed))
	if stats.NumFailed > 0 {
		return fmt.Errorf("批量写入有 %d 个文档失败", stats.NumFailed)
	}
	return nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.schemaDoc.GetIndex()).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计文档数量失败: %w", err)
	}
	return resp.Count, nil
}

func (tec *typedEsClient[D]) SearchDoc(ctx context.Context, query *types.Query, from, size int, sort ...types.SortCombinationsVariant) ([]D, int64, error) {
	req := tec.client.Search().
		Index(tec.schemaDoc.GetIndex()).
		Query(query).
		From(from).
		Size(size)
	if len(sort) > 0 {
		req = req.Sort(sort...)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("搜索失败: %w", err)
	}

	results := make([]D, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc D
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			tec.logger.Debug("解析搜索结果失败", zap.Error(err))
			continue
		}
		results = append(results, doc)
	}
	var total int64
	if resp.Hits.Total != nil {
		total = resp.Hits.Total.Value
	}
	return results, total, nil
}
