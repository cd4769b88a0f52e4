package es

import (
	"context"

	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// TypedEsClient 面向单个文档类型的 ES 客户端,索引名与映射由文档类型决定
type TypedEsClient[D model.Document] interface {
	CreateIndexWithMapping(ctx context.Context) error
	BulkIndexDocsWithID(ctx context.Context, docs []D) error
	CountDocs(ctx context.Context) (int64, error)
	SearchDoc(ctx context.Context, query *types.Query, from, size int, sort ...types.SortCombinationsVariant) ([]D, int64, error)
}
