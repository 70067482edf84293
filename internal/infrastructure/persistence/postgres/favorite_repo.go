package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
)

// FavoriteRepository 用户收藏仓储实现
type FavoriteRepository struct {
	client *Client
}

// NewFavoriteRepository 创建收藏仓储
func NewFavoriteRepository(client *Client) *FavoriteRepository {
	return &FavoriteRepository{client: client}
}

// Add 添加收藏，重复添加幂等
func (r *FavoriteRepository) Add(ctx context.Context, userID string, slangID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.FavoriteRepository.Add")
	defer span.End()

	db := getDB(ctx, r.client.db)
	favorite := &entity.Favorite{UserID: userID, SlangID: slangID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(favorite).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove 取消收藏
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, slangID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.FavoriteRepository.Remove")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Where("user_id = ? AND slang_id = ?", userID, slangID).
		Delete(&entity.Favorite{}).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// Exists 检查是否已收藏
func (r *FavoriteRepository) Exists(ctx context.Context, userID string, slangID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.FavoriteRepository.Exists")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	err := db.Model(&entity.Favorite{}).
		Where("user_id = ? AND slang_id = ?", userID, slangID).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// DeleteByTerm 删除词条的全部收藏
func (r *FavoriteRepository) DeleteByTerm(ctx context.Context, slangID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.FavoriteRepository.DeleteByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("slang_id = ?", slangID).Delete(&entity.Favorite{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete favorites by term: %w", err)
	}
	return nil
}

// ListTerms 分页列出用户收藏的词条，按收藏时间倒序
func (r *FavoriteRepository) ListTerms(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	ctx, span := tracer.Start(ctx, "postgres.FavoriteRepository.ListTerms")
	defer span.End()

	db := getDB(ctx, r.client.db)

	base := db.Model(&entity.Favorite{}).Where("user_favorites.user_id = ?", userID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}

	var terms []*entity.SlangTerm
	err := db.Model(&entity.SlangTerm{}).
		Joins("JOIN user_favorites ON user_favorites.slang_id = slang_terms.id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&terms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list favorite terms: %w", err)
	}
	return repository.NewPagedResult(terms, total, pagination), nil
}
