package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/logger"
	"slanglab-api/pkg/metrics"
)

// Ranker 热榜与人气榜
type Ranker struct {
	slangRepo   repository.SlangRepository
	voteRepo    repository.VoteRepository
	historyRepo repository.SearchHistoryRepository
	cache       Cache

	defaultWindowDays int
	maxWindowDays     int
	recentQueryLimit  int
	cacheTTL          time.Duration
}

// NewRanker 创建热榜排序器
func NewRanker(
	slangRepo repository.SlangRepository,
	voteRepo repository.VoteRepository,
	historyRepo repository.SearchHistoryRepository,
	cache Cache,
	defaultWindowDays, maxWindowDays, recentQueryLimit int,
	cacheTTL time.Duration,
) *Ranker {
	if defaultWindowDays <= 0 {
		defaultWindowDays = 7
	}
	if maxWindowDays < defaultWindowDays {
		maxWindowDays = defaultWindowDays
	}
	if recentQueryLimit <= 0 {
		recentQueryLimit = 100
	}
	return &Ranker{
		slangRepo:         slangRepo,
		voteRepo:          voteRepo,
		historyRepo:       historyRepo,
		cache:             cache,
		defaultWindowDays: defaultWindowDays,
		maxWindowDays:     maxWindowDays,
		recentQueryLimit:  recentQueryLimit,
		cacheTTL:          cacheTTL,
	}
}

// Trending 返回窗口内的热门词条。
// 得分 = 2 × 窗口内投票数 + 窗口内与词条文本互为子串的搜索次数。
func (r *Ranker) Trending(ctx context.Context, windowDays, limit int) ([]*TrendingItem, error) {
	ctx, span := tracer.Start(ctx, "search.Ranker.Trending")
	defer span.End()

	if windowDays <= 0 {
		windowDays = r.defaultWindowDays
	}
	if windowDays > r.maxWindowDays {
		windowDays = r.maxWindowDays
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	span.SetAttributes(
		attribute.Int("trending.window_days", windowDays),
		attribute.Int("trending.limit", limit),
	)

	if r.cache != nil && r.cacheTTL > 0 {
		key := fmt.Sprintf("trending:%dd:%d", windowDays, limit)
		data, err := r.cache.GetOrLoadSafe(ctx, key, r.cacheTTL, func() (interface{}, error) {
			return r.computeTrending(ctx, windowDays, limit)
		})
		if err == nil {
			var items []*TrendingItem
			if jsonErr := json.Unmarshal(data, &items); jsonErr == nil {
				return items, nil
			}
		}
		// 缓存异常时降级为直接计算
		logger.Warn(ctx, "trending cache unavailable, computing directly", "error", err)
	}
	return r.computeTrending(ctx, windowDays, limit)
}

func (r *Ranker) computeTrending(ctx context.Context, windowDays, limit int) ([]*TrendingItem, error) {
	start := time.Now()
	defer func() {
		metrics.TrendingDuration.Observe(time.Since(start).Seconds())
	}()

	since := time.Now().AddDate(0, 0, -windowDays)

	candidates, err := r.slangRepo.ListVerifiedSummaries(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list verified terms")
	}
	votes, err := r.voteRepo.CountSince(ctx, since)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "count votes in window")
	}
	queries, err := r.historyRepo.RecentQueryCounts(ctx, since, r.recentQueryLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "count recent queries")
	}

	scored := rank(candidates, votes, queries)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	if len(scored) == 0 {
		return []*TrendingItem{}, nil
	}

	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}
	terms, err := r.slangRepo.GetByIDs(ctx, ids, true)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "hydrate trending terms")
	}
	byID := make(map[int64]*entity.SlangTerm, len(terms))
	for _, t := range terms {
		byID[t.ID] = t
	}

	items := make([]*TrendingItem, 0, len(scored))
	for _, s := range scored {
		if term, ok := byID[s.id]; ok {
			items = append(items, &TrendingItem{Term: term, Score: s.score})
		}
	}
	return items, nil
}

type scoredTerm struct {
	id    int64
	score int64
}

// rank 纯排序计算：得分降序，同分按标识升序，零分剔除
func rank(candidates []repository.TermSummary, votes map[int64]int64, queries []repository.QueryCount) []scoredTerm {
	scored := make([]scoredTerm, 0, len(candidates))
	for _, c := range candidates {
		score := 2 * votes[c.ID]
		term := strings.ToLower(c.Term)
		for _, q := range queries {
			query := strings.ToLower(q.Query)
			if strings.Contains(query, term) || strings.Contains(term, query) {
				score += q.Count
			}
		}
		if score > 0 {
			scored = append(scored, scoredTerm{id: c.ID, score: score})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})
	return scored
}

// Popular 按累计净得票返回人气词条
func (r *Ranker) Popular(ctx context.Context, limit int) ([]*TrendingItem, error) {
	ctx, span := tracer.Start(ctx, "search.Ranker.Popular")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	top, err := r.voteRepo.TopBySum(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "load top voted terms")
	}
	if len(top) == 0 {
		return []*TrendingItem{}, nil
	}

	ids := make([]int64, len(top))
	for i, tv := range top {
		ids[i] = tv.SlangID
	}
	terms, err := r.slangRepo.GetByIDs(ctx, ids, true)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "hydrate popular terms")
	}
	byID := make(map[int64]*entity.SlangTerm, len(terms))
	for _, t := range terms {
		byID[t.ID] = t
	}

	items := make([]*TrendingItem, 0, len(top))
	for _, tv := range top {
		if term, ok := byID[tv.SlangID]; ok {
			items = append(items, &TrendingItem{Term: term, Score: tv.Count})
		}
	}
	return items, nil
}

// History 返回用户最近的搜索历史
func (r *Ranker) History(ctx context.Context, userID string, limit int) ([]*entity.SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	records, err := r.historyRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list search history")
	}
	return records, nil
}

// ClearHistory 清空用户的搜索历史
func (r *Ranker) ClearHistory(ctx context.Context, userID string) error {
	if err := r.historyRepo.DeleteByUser(ctx, userID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "clear search history")
	}
	return nil
}
