package model

import (
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// Document 可以写入 Elasticsearch 的文档。
// 索引名与映射在 nil 指针上也必须可用,客户端用零值实例读取它们。
type Document interface {
	*BehaviorEventDoc
	GetID() string
	GetIndex() string
	GetTypeMapping() *types.TypeMapping
}
