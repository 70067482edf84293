package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"slanglab-api/internal/domain/entity"
	apperrors "slanglab-api/pkg/errors"
)

// TranslationRepository 词条译文仓储实现
type TranslationRepository struct {
	client *Client
}

// NewTranslationRepository 创建译文仓储
func NewTranslationRepository(client *Client) *TranslationRepository {
	return &TranslationRepository{client: client}
}

// Upsert 写入译文，同一词条同一语言覆盖更新
func (r *TranslationRepository) Upsert(ctx context.Context, translation *entity.SlangTranslation) error {
	ctx, span := tracer.Start(ctx, "postgres.TranslationRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slang_id"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{"translation", "notes", "examples"}),
	}).Create(translation).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert translation: %w", err)
	}
	return nil
}

// GetByTermAndLanguage 查询词条在指定语言下的译文
func (r *TranslationRepository) GetByTermAndLanguage(ctx context.Context, slangID int64, language string) (*entity.SlangTranslation, error) {
	ctx, span := tracer.Start(ctx, "postgres.TranslationRepository.GetByTermAndLanguage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var translation entity.SlangTranslation
	if err := db.First(&translation, "slang_id = ? AND language = ?", slangID, language).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeTranslationNotFound, "translation not found")
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get translation: %w", err)
	}
	return &translation, nil
}

// ListByTerm 列出词条的全部译文
func (r *TranslationRepository) ListByTerm(ctx context.Context, slangID int64) ([]*entity.SlangTranslation, error) {
	ctx, span := tracer.Start(ctx, "postgres.TranslationRepository.ListByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var translations []*entity.SlangTranslation
	if err := db.Where("slang_id = ?", slangID).Order("language ASC").Find(&translations).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return translations, nil
}

// DeleteByTerm 删除词条的全部译文
func (r *TranslationRepository) DeleteByTerm(ctx context.Context, slangID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.TranslationRepository.DeleteByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("slang_id = ?", slangID).Delete(&entity.SlangTranslation{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	return nil
}
