// Package user 实现用户资料与收藏管理
package user

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
)

var tracer = otel.Tracer("user")

// ProfileUpdate 资料更新请求，nil 字段表示不修改
type ProfileUpdate struct {
	Username          *string
	NativeLanguage    *string
	LearningLanguages []string
}

// Service 用户服务
type Service struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
	slangRepo    repository.SlangRepository
}

// NewService 创建用户服务
func NewService(userRepo repository.UserRepository, favoriteRepo repository.FavoriteRepository, slangRepo repository.SlangRepository) *Service {
	return &Service{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		slangRepo:    slangRepo,
	}
}

// GetProfile 查询用户资料
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile 更新用户资料，用户名需全局唯一
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "user.Service.UpdateProfile")
	defer span.End()

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username != "" && username != u.Username {
			taken, err := s.userRepo.ExistsByUsername(ctx, username)
			if err != nil {
				span.RecordError(err)
				return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "check username")
			}
			if taken {
				return nil, apperrors.New(apperrors.CodeConflict, "username already taken")
			}
			u.Username = username
		}
	}
	if in.NativeLanguage != nil {
		u.NativeLanguage = strings.ToLower(strings.TrimSpace(*in.NativeLanguage))
	}
	if in.LearningLanguages != nil {
		u.LearningLanguages = in.LearningLanguages
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "update profile")
	}
	return u, nil
}

// ListFavorites 分页列出用户收藏的词条
func (s *Service) ListFavorites(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	page, err := s.favoriteRepo.ListTerms(ctx, userID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list favorites")
	}
	return page, nil
}

// ToggleFavorite 切换收藏状态，返回切换后是否已收藏
func (s *Service) ToggleFavorite(ctx context.Context, userID string, slangID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "user.Service.ToggleFavorite")
	defer span.End()
	span.SetAttributes(attribute.Int64("slang.id", slangID))

	slang, err := s.slangRepo.GetByID(ctx, slangID)
	if err != nil {
		return false, err
	}
	if !slang.IsVerified {
		return false, apperrors.New(apperrors.CodeInvalidParam, "cannot favorite unverified terms")
	}

	exists, err := s.favoriteRepo.Exists(ctx, userID, slangID)
	if err != nil {
		span.RecordError(err)
		return false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "check favorite")
	}
	if exists {
		if err := s.favoriteRepo.Remove(ctx, userID, slangID); err != nil {
			span.RecordError(err)
			return false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "remove favorite")
		}
		return false, nil
	}
	if err := s.favoriteRepo.Add(ctx, userID, slangID); err != nil {
		span.RecordError(err)
		return false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "add favorite")
	}
	return true, nil
}
