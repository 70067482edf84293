package repository

import (
	"context"
	"time"

	"slanglab-api/internal/domain/entity"
)

// QueryCount 查询词与出现次数
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// SearchHistoryRepository 搜索历史仓储接口
type SearchHistoryRepository interface {
	Create(ctx context.Context, history *entity.SearchHistory) error
	// RecentQueryCounts 按查询词聚合 since 之后的搜索次数，按次数降序取前 limit 个
	RecentQueryCounts(ctx context.Context, since time.Time, limit int) ([]QueryCount, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.SearchHistory, error)
	DeleteByUser(ctx context.Context, userID string) error
}
