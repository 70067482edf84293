// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
)

// SlangRepository 俚语词条仓储实现
type SlangRepository struct {
	client *Client
}

// NewSlangRepository 创建词条仓储
func NewSlangRepository(client *Client) *SlangRepository {
	return &SlangRepository{client: client}
}

// Create 创建词条
func (r *SlangRepository) Create(ctx context.Context, term *entity.SlangTerm) error {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(term).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create slang term: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取词条
func (r *SlangRepository) GetByID(ctx context.Context, id int64) (*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var term entity.SlangTerm
	if err := db.First(&term, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTermNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get slang term: %w", err)
	}
	return &term, nil
}

// GetByIDs 根据标识集合获取词条
func (r *SlangRepository) GetByIDs(ctx context.Context, ids []int64, verifiedOnly bool) ([]*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []*entity.SlangTerm{}, nil
	}

	db := getDB(ctx, r.client.db).Where("id IN ?", ids)
	if verifiedOnly {
		db = db.Where("is_verified = ?", true)
	}
	var terms []*entity.SlangTerm
	if err := db.Find(&terms).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get slang terms by ids: %w", err)
	}
	return terms, nil
}

// GetByTerm 根据词条文本获取词条（不区分大小写）
func (r *SlangRepository) GetByTerm(ctx context.Context, term string) (*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.GetByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var out entity.SlangTerm
	if err := db.First(&out, "LOWER(term) = LOWER(?)", term).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTermNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get slang term by text: %w", err)
	}
	return &out, nil
}

// Update 更新词条
func (r *SlangRepository) Update(ctx context.Context, term *entity.SlangTerm) error {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(term).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update slang term: %w", err)
	}
	return nil
}

// UpdateEmbedding 仅写回向量缓存与内容指纹
func (r *SlangRepository) UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.UpdateEmbedding")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.SlangTerm{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding":   vec,
			"vector_hash": hash,
		}).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// Delete 删除词条
func (r *SlangRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.SlangTerm{}, id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete slang term: %w", err)
	}
	return nil
}

// ListVerified 返回全部已审核词条，按 ID 升序
func (r *SlangRepository) ListVerified(ctx context.Context) ([]*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.ListVerified")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var terms []*entity.SlangTerm
	if err := db.Where("is_verified = ?", true).Order("id ASC").Find(&terms).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list verified terms: %w", err)
	}
	return terms, nil
}

// ListVerifiedSummaries 返回已审核词条的 (id, term) 摘要
func (r *SlangRepository) ListVerifiedSummaries(ctx context.Context) ([]repository.TermSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.ListVerifiedSummaries")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summaries []repository.TermSummary
	err := db.Model(&entity.SlangTerm{}).
		Select("id", "term").
		Where("is_verified = ?", true).
		Order("id ASC").
		Scan(&summaries).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list term summaries: %w", err)
	}
	return summaries, nil
}

// List 分页列出词条，最新提交在前
func (r *SlangRepository) List(ctx context.Context, verifiedOnly bool, pagination repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.SlangTerm{})
	if verifiedOnly {
		db = db.Where("is_verified = ?", true)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count slang terms: %w", err)
	}

	var terms []*entity.SlangTerm
	err := db.Order("created_at DESC, id DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&terms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list slang terms: %w", err)
	}
	return repository.NewPagedResult(terms, total, pagination), nil
}

// ListPending 分页列出待审词条，最新提交在前
func (r *SlangRepository) ListPending(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.ListPending")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.SlangTerm{}).Where("is_verified = ?", false)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count pending terms: %w", err)
	}

	var terms []*entity.SlangTerm
	err := db.Order("created_at DESC, id DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&terms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list pending terms: %w", err)
	}
	return repository.NewPagedResult(terms, total, pagination), nil
}

// ListRecentVerified 返回最近过审的词条
func (r *SlangRepository) ListRecentVerified(ctx context.Context, limit int) ([]*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.ListRecentVerified")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var terms []*entity.SlangTerm
	err := db.Where("is_verified = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recent terms: %w", err)
	}
	return terms, nil
}

// KeywordSearch 在 term 与 meaning 上做不区分大小写的子串匹配
func (r *SlangRepository) KeywordSearch(ctx context.Context, query string, limit int) ([]*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.KeywordSearch")
	defer span.End()

	pattern := "%" + query + "%"
	db := getDB(ctx, r.client.db)
	var terms []*entity.SlangTerm
	err := db.Where("is_verified = ?", true).
		Where("term ILIKE ? OR meaning ILIKE ?", pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to keyword search: %w", err)
	}
	return terms, nil
}

// CountSubmittedSince 统计用户在给定时间之后的提交数
func (r *SlangRepository) CountSubmittedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.CountSubmittedSince")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	err := db.Model(&entity.SlangTerm{}).
		Where("submitted_by = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// Counts 词条数量统计
func (r *SlangRepository) Counts(ctx context.Context) (*repository.TermCounts, error) {
	ctx, span := tracer.Start(ctx, "postgres.SlangRepository.Counts")
	defer span.End()

	db := getDB(ctx, r.client.db)
	counts := &repository.TermCounts{}
	if err := db.Model(&entity.SlangTerm{}).Count(&counts.Total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count terms: %w", err)
	}
	if err := db.Model(&entity.SlangTerm{}).Where("is_verified = ?", true).Count(&counts.Verified).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count verified terms: %w", err)
	}
	counts.Pending = counts.Total - counts.Verified
	return counts, nil
}
