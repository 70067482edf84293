package search

import (
	"context"
	"time"

	"slanglab-api/internal/domain/entity"
)

// 搜索模式
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

// Input 搜索请求
type Input struct {
	Query           string
	Limit           int
	SemanticEnabled bool
	UserID          string
}

// Result 单条搜索结果。关键词命中没有相似度。
type Result struct {
	Term       *entity.SlangTerm `json:"term"`
	Similarity *float64          `json:"similarity,omitempty"`
}

// Output 搜索结果及所采用的检索模式
type Output struct {
	Results []*Result `json:"results"`
	Mode    string    `json:"mode"`
}

// TrendingItem 热榜条目
type TrendingItem struct {
	Term  *entity.SlangTerm `json:"term"`
	Score int64             `json:"score"`
}

// Cache 热榜与榜单结果的读穿缓存，由 redis.Cache 满足
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}
