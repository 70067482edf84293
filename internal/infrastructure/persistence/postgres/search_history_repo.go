package postgres

import (
	"context"
	"fmt"
	"time"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
)

// SearchHistoryRepository 搜索历史仓储实现
type SearchHistoryRepository struct {
	client *Client
}

// NewSearchHistoryRepository 创建搜索历史仓储
func NewSearchHistoryRepository(client *Client) *SearchHistoryRepository {
	return &SearchHistoryRepository{client: client}
}

// Create 写入一条搜索记录
func (r *SearchHistoryRepository) Create(ctx context.Context, history *entity.SearchHistory) error {
	ctx, span := tracer.Start(ctx, "postgres.SearchHistoryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(history).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create search history: %w", err)
	}
	return nil
}

// RecentQueryCounts 按查询词聚合窗口内的搜索次数
func (r *SearchHistoryRepository) RecentQueryCounts(ctx context.Context, since time.Time, limit int) ([]repository.QueryCount, error) {
	ctx, span := tracer.Start(ctx, "postgres.SearchHistoryRepository.RecentQueryCounts")
	defer span.End()

	var rows []repository.QueryCount
	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.SearchHistory{}).
		Select("query, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("query").
		Order("count DESC, query ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate recent queries: %w", err)
	}
	return rows, nil
}

// ListByUser 用户最近的搜索记录，最新在前
func (r *SearchHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.SearchHistory, error) {
	ctx, span := tracer.Start(ctx, "postgres.SearchHistoryRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var records []*entity.SearchHistory
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	return records, nil
}

// DeleteByUser 删除用户的全部搜索记录
func (r *SearchHistoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.SearchHistoryRepository.DeleteByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("user_id = ?", userID).Delete(&entity.SearchHistory{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete search history: %w", err)
	}
	return nil
}
