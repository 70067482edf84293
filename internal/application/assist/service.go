// Package assist 实现基于聊天模型的词条释义与翻译生成
package assist

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	"slanglab-api/internal/infrastructure/llm"
	apperrors "slanglab-api/pkg/errors"
)

var tracer = otel.Tracer("assist")

// Service AI 辅助服务
type Service struct {
	client          *llm.AssistClient
	slangRepo       repository.SlangRepository
	translationRepo repository.TranslationRepository
}

// NewService 创建 AI 辅助服务
func NewService(client *llm.AssistClient, slangRepo repository.SlangRepository, translationRepo repository.TranslationRepository) *Service {
	return &Service{
		client:          client,
		slangRepo:       slangRepo,
		translationRepo: translationRepo,
	}
}

// Enabled 检查聊天模型是否已配置
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil
}

// GenerateExplanation 为给定词条文本生成释义草稿，不落库
func (s *Service) GenerateExplanation(ctx context.Context, term, usageContext string) (*llm.Explanation, error) {
	ctx, span := tracer.Start(ctx, "assist.Service.GenerateExplanation")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "term is required")
	}
	if !s.Enabled() {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "assist model not configured")
	}
	span.SetAttributes(attribute.String("assist.term", term))

	out, err := s.client.GenerateExplanation(ctx, term, usageContext)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// GenerateTranslation 为已有词条生成目标语言译文并持久化，
// 同一词条同一语言的译文会被覆盖。
func (s *Service) GenerateTranslation(ctx context.Context, slangID int64, language string) (*entity.SlangTranslation, error) {
	ctx, span := tracer.Start(ctx, "assist.Service.GenerateTranslation")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("slang.id", slangID),
		attribute.String("assist.language", language),
	)

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "target language is required")
	}
	if !s.Enabled() {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "assist model not configured")
	}

	slang, err := s.slangRepo.GetByID(ctx, slangID)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GenerateTranslation(ctx, slang.Term, slang.Meaning, language)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	translation := &entity.SlangTranslation{
		SlangID:     slang.ID,
		Language:    language,
		Translation: out.Translation,
		Notes:       out.Notes,
	}
	if err := s.translationRepo.Upsert(ctx, translation); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "save translation")
	}
	return translation, nil
}

// ListTranslations 列出词条的全部译文
func (s *Service) ListTranslations(ctx context.Context, slangID int64) ([]*entity.SlangTranslation, error) {
	if _, err := s.slangRepo.GetByID(ctx, slangID); err != nil {
		return nil, err
	}
	translations, err := s.translationRepo.ListByTerm(ctx, slangID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list translations")
	}
	return translations, nil
}
