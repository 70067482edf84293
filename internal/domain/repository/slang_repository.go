package repository

import (
	"context"
	"time"

	"slanglab-api/internal/domain/entity"
)

// TermCounts 词条数量统计
type TermCounts struct {
	Total    int64 `json:"total"`
	Verified int64 `json:"verified"`
	Pending  int64 `json:"pending"`
}

// TermSummary 词条摘要（热榜匹配用，避免加载整行）
type TermSummary struct {
	ID   int64  `json:"id"`
	Term string `json:"term"`
}

// SlangRepository 俚语词条仓储接口
type SlangRepository interface {
	Create(ctx context.Context, term *entity.SlangTerm) error
	GetByID(ctx context.Context, id int64) (*entity.SlangTerm, error)
	// GetByIDs 按标识集合查询，返回顺序由存储决定，调用方自行排序
	GetByIDs(ctx context.Context, ids []int64, verifiedOnly bool) ([]*entity.SlangTerm, error)
	// GetByTerm 按词条文本（不区分大小写）精确查询
	GetByTerm(ctx context.Context, term string) (*entity.SlangTerm, error)
	Update(ctx context.Context, term *entity.SlangTerm) error
	// UpdateEmbedding 仅写回向量缓存与内容指纹
	UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error
	Delete(ctx context.Context, id int64) error

	// ListVerified 返回全部已审核词条（含向量缓存），用于索引重建
	ListVerified(ctx context.Context) ([]*entity.SlangTerm, error)
	// ListVerifiedSummaries 返回已审核词条的 (id, term) 摘要
	ListVerifiedSummaries(ctx context.Context) ([]TermSummary, error)
	List(ctx context.Context, verifiedOnly bool, pagination Pagination) (*PagedResult[*entity.SlangTerm], error)
	ListPending(ctx context.Context, pagination Pagination) (*PagedResult[*entity.SlangTerm], error)
	ListRecentVerified(ctx context.Context, limit int) ([]*entity.SlangTerm, error)

	// KeywordSearch 在 term 与 meaning 上做不区分大小写的子串匹配，仅已审核词条
	KeywordSearch(ctx context.Context, query string, limit int) ([]*entity.SlangTerm, error)

	CountSubmittedSince(ctx context.Context, userID string, since time.Time) (int64, error)
	Counts(ctx context.Context) (*TermCounts, error)
}
