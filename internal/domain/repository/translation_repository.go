package repository

import (
	"context"

	"slanglab-api/internal/domain/entity"
)

// TranslationRepository 词条译文仓储接口
type TranslationRepository interface {
	// Upsert 同一词条同一语言仅保留一条译文
	Upsert(ctx context.Context, translation *entity.SlangTranslation) error
	GetByTermAndLanguage(ctx context.Context, slangID int64, language string) (*entity.SlangTranslation, error)
	ListByTerm(ctx context.Context, slangID int64) ([]*entity.SlangTranslation, error)
	DeleteByTerm(ctx context.Context, slangID int64) error
}
