package repository

import (
	"context"

	"slanglab-api/internal/domain/entity"
)

// FavoriteRepository 用户收藏仓储接口
type FavoriteRepository interface {
	Add(ctx context.Context, userID string, slangID int64) error
	Remove(ctx context.Context, userID string, slangID int64) error
	Exists(ctx context.Context, userID string, slangID int64) (bool, error)
	// DeleteByTerm 删除词条的全部收藏（词条删除时级联）
	DeleteByTerm(ctx context.Context, slangID int64) error
	// ListTerms 返回用户收藏的词条，按收藏时间倒序
	ListTerms(ctx context.Context, userID string, page Pagination) (*PagedResult[*entity.SlangTerm], error)
}
