// Package community 实现词条投票与社区统计
package community

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/logger"
)

var tracer = otel.Tracer("community")

// Stats 社区统计
type Stats struct {
	TotalTerms    int64               `json:"total_terms"`
	VerifiedTerms int64               `json:"verified_terms"`
	PendingTerms  int64               `json:"pending_terms"`
	Recent        []*entity.SlangTerm `json:"recent"`
	Popular       []*PopularTerm      `json:"popular"`
}

// PopularTerm 人气词条
type PopularTerm struct {
	Term  *entity.SlangTerm `json:"term"`
	Votes int64             `json:"votes"`
}

// Cache 统计结果的读穿缓存与投票后的主动失效，由 redis.Cache 满足
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateCommunityStats(ctx context.Context) error
	InvalidateTrending(ctx context.Context) error
}

// Service 社区服务
type Service struct {
	slangRepo repository.SlangRepository
	voteRepo  repository.VoteRepository
	cache     Cache
	statsTTL  time.Duration
}

// NewService 创建社区服务
func NewService(slangRepo repository.SlangRepository, voteRepo repository.VoteRepository, cache Cache, statsTTL time.Duration) *Service {
	return &Service{
		slangRepo: slangRepo,
		voteRepo:  voteRepo,
		cache:     cache,
		statsTTL:  statsTTL,
	}
}

// Vote 对已审核词条投票。value 取 1 赞成、-1 反对、0 撤销。
// 每个用户对每个词条至多一票，重复投票原地更新。
func (s *Service) Vote(ctx context.Context, actor entity.Actor, slangID int64, value int) (int64, error) {
	ctx, span := tracer.Start(ctx, "community.Service.Vote")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("slang.id", slangID),
		attribute.Int("vote.value", value),
	)

	if !entity.IsValidVote(value) {
		return 0, apperrors.New(apperrors.CodeInvalidParam, "vote must be 1, -1 or 0")
	}

	slang, err := s.slangRepo.GetByID(ctx, slangID)
	if err != nil {
		return 0, err
	}
	if !slang.IsVerified {
		return 0, apperrors.New(apperrors.CodeInvalidParam, "cannot vote on unverified terms")
	}

	existing, err := s.voteRepo.GetByUserAndTerm(ctx, actor.UserID, slangID)
	if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
		span.RecordError(err)
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "load existing vote")
	}
	switch {
	case err == nil && existing != nil:
		if value == entity.VoteRemove {
			if err := s.voteRepo.Delete(ctx, existing.ID); err != nil {
				span.RecordError(err)
				return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "remove vote")
			}
		} else if existing.Vote != value {
			existing.Vote = value
			if err := s.voteRepo.Update(ctx, existing); err != nil {
				span.RecordError(err)
				return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "update vote")
			}
		}
	default:
		if value != entity.VoteRemove {
			vote := &entity.SlangVote{SlangID: slangID, UserID: actor.UserID, Vote: value}
			if err := s.voteRepo.Create(ctx, vote); err != nil {
				span.RecordError(err)
				return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "create vote")
			}
		}
	}

	sum, err := s.voteRepo.SumByTerm(ctx, slangID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "sum votes")
	}

	// 投票改变统计与热榜，主动失效缓存，失败交给 TTL 兜底
	if s.cache != nil {
		if err := s.cache.InvalidateCommunityStats(ctx); err != nil {
			logger.Warn(ctx, "invalidate community stats cache failed", "error", err.Error())
		}
		if err := s.cache.InvalidateTrending(ctx); err != nil {
			logger.Warn(ctx, "invalidate trending cache failed", "error", err.Error())
		}
	}
	return sum, nil
}

// MyVotes 返回用户的投票表，键为词条标识
func (s *Service) MyVotes(ctx context.Context, actor entity.Actor) (map[int64]int, error) {
	votes, err := s.voteRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list user votes")
	}
	out := make(map[int64]int, len(votes))
	for _, v := range votes {
		out[v.SlangID] = v.Vote
	}
	return out, nil
}

// GetStats 社区统计，结果短暂缓存
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "community.Service.GetStats")
	defer span.End()

	if s.cache != nil && s.statsTTL > 0 {
		data, err := s.cache.GetOrLoadSafe(ctx, "community:stats", s.statsTTL, func() (interface{}, error) {
			return s.computeStats(ctx)
		})
		if err == nil {
			var stats Stats
			if jsonErr := json.Unmarshal(data, &stats); jsonErr == nil {
				return &stats, nil
			}
		}
	}
	return s.computeStats(ctx)
}

func (s *Service) computeStats(ctx context.Context) (*Stats, error) {
	counts, err := s.slangRepo.Counts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "count terms")
	}
	recent, err := s.slangRepo.ListRecentVerified(ctx, 5)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list recent terms")
	}
	top, err := s.voteRepo.TopBySum(ctx, 5)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "load top voted terms")
	}

	popular := make([]*PopularTerm, 0, len(top))
	if len(top) > 0 {
		ids := make([]int64, len(top))
		for i, tv := range top {
			ids[i] = tv.SlangID
		}
		terms, err := s.slangRepo.GetByIDs(ctx, ids, true)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "hydrate popular terms")
		}
		byID := make(map[int64]*entity.SlangTerm, len(terms))
		for _, t := range terms {
			byID[t.ID] = t
		}
		for _, tv := range top {
			if term, ok := byID[tv.SlangID]; ok {
				popular = append(popular, &PopularTerm{Term: term, Votes: tv.Count})
			}
		}
	}

	return &Stats{
		TotalTerms:    counts.Total,
		VerifiedTerms: counts.Verified,
		PendingTerms:  counts.Pending,
		Recent:        recent,
		Popular:       popular,
	}, nil
}
