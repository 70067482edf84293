// Package slang 实现词条的提交、查询、编辑与审核
package slang

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	"slanglab-api/internal/index"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/logger"
)

var tracer = otel.Tracer("slang")

// CreateInput 词条提交请求
type CreateInput struct {
	Term                 string
	Meaning              string
	Origin               string
	Context              string
	PartOfSpeech         string
	Pronunciation        string
	AlternativeSpellings []string
	Examples             []string
}

// UpdateInput 词条编辑请求，nil 字段表示不修改
type UpdateInput struct {
	Meaning              *string
	Origin               *string
	Context              *string
	PartOfSpeech         *string
	Pronunciation        *string
	AlternativeSpellings []string
	Examples             []string
}

// TermWithVotes 词条及其净得票
type TermWithVotes struct {
	*entity.SlangTerm
	Votes int64 `json:"votes"`
}

// StatsCache 词条集合变更后需要失效的社区缓存，由 redis.Cache 满足
type StatsCache interface {
	InvalidateCommunityStats(ctx context.Context) error
	InvalidateTrending(ctx context.Context) error
}

// Service 词条服务
type Service struct {
	slangRepo       repository.SlangRepository
	voteRepo        repository.VoteRepository
	translationRepo repository.TranslationRepository
	favoriteRepo    repository.FavoriteRepository
	transactor      repository.Transactor
	manager         *index.Manager
	statsCache      StatsCache

	maxSubmissionsPerDay int
}

// NewService 创建词条服务
func NewService(
	slangRepo repository.SlangRepository,
	voteRepo repository.VoteRepository,
	translationRepo repository.TranslationRepository,
	favoriteRepo repository.FavoriteRepository,
	transactor repository.Transactor,
	manager *index.Manager,
	statsCache StatsCache,
	maxSubmissionsPerDay int,
) *Service {
	if maxSubmissionsPerDay <= 0 {
		maxSubmissionsPerDay = 5
	}
	return &Service{
		slangRepo:            slangRepo,
		voteRepo:             voteRepo,
		translationRepo:      translationRepo,
		favoriteRepo:         favoriteRepo,
		transactor:           transactor,
		manager:              manager,
		statsCache:           statsCache,
		maxSubmissionsPerDay: maxSubmissionsPerDay,
	}
}

// Create 提交新词条。审核员提交的词条直接过审并触发重建，
// 普通用户受每日提交上限约束，词条进入待审队列。
func (s *Service) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "slang.Service.Create")
	defer span.End()

	term := strings.TrimSpace(in.Term)
	meaning := strings.TrimSpace(in.Meaning)
	if term == "" || meaning == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "term and meaning are required")
	}

	if !actor.IsModerator() {
		since := time.Now().AddDate(0, 0, -1)
		count, err := s.slangRepo.CountSubmittedSince(ctx, actor.UserID, since)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "count daily submissions")
		}
		if count >= int64(s.maxSubmissionsPerDay) {
			return nil, apperrors.ErrSubmissionLimit
		}
	}

	if existing, err := s.slangRepo.GetByTerm(ctx, term); err == nil && existing != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "slang term already exists")
	}

	slang := &entity.SlangTerm{
		Term:                 term,
		Meaning:              meaning,
		Origin:               strings.TrimSpace(in.Origin),
		Context:              strings.TrimSpace(in.Context),
		PartOfSpeech:         strings.TrimSpace(in.PartOfSpeech),
		Pronunciation:        strings.TrimSpace(in.Pronunciation),
		AlternativeSpellings: in.AlternativeSpellings,
		Examples:             in.Examples,
		IsVerified:           actor.IsModerator(),
		SubmittedBy:          actor.UserID,
	}

	err := s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.slangRepo.Create(ctx, slang); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create slang term")
		}
		// 提交者默认给自己的词条投一票赞成
		vote := &entity.SlangVote{SlangID: slang.ID, UserID: actor.UserID, Vote: entity.VoteUp}
		if err := s.voteRepo.Create(ctx, vote); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create submitter vote")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("slang.id", slang.ID),
		attribute.Bool("slang.verified", slang.IsVerified),
	)
	if slang.IsVerified {
		s.rebuildAfterChange(ctx, "create")
	}
	s.invalidateStatsCaches(ctx)
	return slang, nil
}

// Get 查询单个词条。未过审的词条仅提交者和审核员可见。
func (s *Service) Get(ctx context.Context, actor entity.Actor, id int64) (*TermWithVotes, error) {
	slang, err := s.slangRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slang.IsVerified && !actor.IsModerator() && slang.SubmittedBy != actor.UserID {
		// 对无权限者不暴露未过审词条的存在
		return nil, apperrors.ErrTermNotFound
	}
	votes, err := s.voteRepo.SumByTerm(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "sum votes")
	}
	return &TermWithVotes{SlangTerm: slang, Votes: votes}, nil
}

// List 分页列出已审核词条及净得票
func (s *Service) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*TermWithVotes], error) {
	page, err := s.slangRepo.List(ctx, true, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list slang terms")
	}
	items, err := s.attachVotes(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	return &repository.PagedResult[*TermWithVotes]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

func (s *Service) attachVotes(ctx context.Context, terms []*entity.SlangTerm) ([]*TermWithVotes, error) {
	ids := make([]int64, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	sums, err := s.voteRepo.SumByTerms(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "sum votes")
	}
	items := make([]*TermWithVotes, len(terms))
	for i, t := range terms {
		items[i] = &TermWithVotes{SlangTerm: t, Votes: sums[t.ID]}
	}
	return items, nil
}

// Update 编辑词条。提交者或审核员可编辑；普通用户的编辑会使词条回到待审状态。
// 内容字段变更会使向量缓存失效，已审核词条随后触发索引刷新。
func (s *Service) Update(ctx context.Context, actor entity.Actor, id int64, in UpdateInput) (*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "slang.Service.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("slang.id", id))

	slang, err := s.slangRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsModerator() && slang.SubmittedBy != actor.UserID {
		return nil, apperrors.ErrForbidden
	}

	wasVerified := slang.IsVerified
	contentChanged := false

	if in.Meaning != nil && *in.Meaning != slang.Meaning {
		slang.Meaning = *in.Meaning
		contentChanged = true
	}
	if in.Examples != nil {
		slang.Examples = in.Examples
		contentChanged = true
	}
	if in.Origin != nil {
		slang.Origin = *in.Origin
	}
	if in.Context != nil {
		slang.Context = *in.Context
	}
	if in.PartOfSpeech != nil {
		slang.PartOfSpeech = *in.PartOfSpeech
	}
	if in.Pronunciation != nil {
		slang.Pronunciation = *in.Pronunciation
	}
	if in.AlternativeSpellings != nil {
		slang.AlternativeSpellings = in.AlternativeSpellings
	}

	if contentChanged {
		slang.InvalidateEmbedding()
	}
	if !actor.IsModerator() {
		slang.IsVerified = false
	}

	if err := s.slangRepo.Update(ctx, slang); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "update slang term")
	}

	switch {
	case wasVerified && !slang.IsVerified:
		// 词条撤出索引
		s.rebuildAfterChange(ctx, "unverify")
	case slang.IsVerified && contentChanged:
		s.refreshAfterChange(ctx, []int64{id})
	}
	if wasVerified != slang.IsVerified {
		s.invalidateStatsCaches(ctx)
	}
	return slang, nil
}

// Delete 删除词条并级联删除投票、译文与收藏
func (s *Service) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	ctx, span := tracer.Start(ctx, "slang.Service.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("slang.id", id))

	slang, err := s.slangRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsModerator() && slang.SubmittedBy != actor.UserID {
		return apperrors.ErrForbidden
	}

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.voteRepo.DeleteByTerm(ctx, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete votes")
		}
		if err := s.translationRepo.DeleteByTerm(ctx, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete translations")
		}
		if err := s.favoriteRepo.DeleteByTerm(ctx, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete favorites")
		}
		if err := s.slangRepo.Delete(ctx, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete slang term")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if slang.IsVerified {
		s.rebuildAfterChange(ctx, "delete")
	}
	s.invalidateStatsCaches(ctx)
	return nil
}

// ListPending 审核队列，未过审词条按提交时间倒序
func (s *Service) ListPending(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	page, err := s.slangRepo.ListPending(ctx, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list pending terms")
	}
	return page, nil
}

// Approve 审核通过词条并触发索引重建
func (s *Service) Approve(ctx context.Context, id int64) (*entity.SlangTerm, error) {
	ctx, span := tracer.Start(ctx, "slang.Service.Approve")
	defer span.End()
	span.SetAttributes(attribute.Int64("slang.id", id))

	slang, err := s.slangRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slang.IsVerified {
		return slang, nil
	}
	slang.IsVerified = true
	if err := s.slangRepo.Update(ctx, slang); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "approve slang term")
	}
	s.rebuildAfterChange(ctx, "approve")
	s.invalidateStatsCaches(ctx)
	return slang, nil
}

// Reject 驳回词条，等同删除
func (s *Service) Reject(ctx context.Context, id int64) error {
	return s.Delete(ctx, entity.Actor{Role: entity.UserRoleAdmin}, id)
}

// Counts 词条数量统计
func (s *Service) Counts(ctx context.Context) (*repository.TermCounts, error) {
	counts, err := s.slangRepo.Counts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "count terms")
	}
	return counts, nil
}

// invalidateStatsCaches 词条数量或过审状态变更后使社区统计与热榜缓存失效。
// 失败只告警，缓存由 TTL 兜底；内容编辑不主动失效。
func (s *Service) invalidateStatsCaches(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.InvalidateCommunityStats(ctx); err != nil {
		logger.Warn(ctx, "invalidate community stats cache failed", "error", err.Error())
	}
	if err := s.statsCache.InvalidateTrending(ctx); err != nil {
		logger.Warn(ctx, "invalidate trending cache failed", "error", err.Error())
	}
}

// rebuildAfterChange 成员变更后重建索引，失败只告警，下一次变更或手动重建可恢复
func (s *Service) rebuildAfterChange(ctx context.Context, reason string) {
	if s.manager == nil {
		return
	}
	if err := s.manager.Rebuild(ctx); err != nil {
		logger.Warn(ctx, "index rebuild after change failed", "reason", reason, "error", err.Error())
	}
}

// refreshAfterChange 内容变更后强制重算指定词条向量并重建
func (s *Service) refreshAfterChange(ctx context.Context, ids []int64) {
	if s.manager == nil {
		return
	}
	if err := s.manager.Refresh(ctx, ids); err != nil {
		logger.Warn(ctx, "index refresh after change failed", "error", err.Error())
	}
}
