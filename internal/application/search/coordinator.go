// Package search 实现语义检索、关键词回退与热榜排序
package search

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
	"slanglab-api/pkg/metrics"
)

var tracer = otel.Tracer("search")

// Coordinator 搜索协调器。语义路径为空时整体回退到关键词匹配，
// 两种结果在一次调用内不混合。
type Coordinator struct {
	idx         *index.VectorIndex
	embedder    index.Embedder
	slangRepo   repository.SlangRepository
	historyRepo repository.SearchHistoryRepository

	threshold    float64
	defaultLimit int
	maxLimit     int
}

// NewCoordinator 创建搜索协调器
func NewCoordinator(
	idx *index.VectorIndex,
	embedder index.Embedder,
	slangRepo repository.SlangRepository,
	historyRepo repository.SearchHistoryRepository,
	threshold float64,
	defaultLimit, maxLimit int,
) *Coordinator {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &Coordinator{
		idx:          idx,
		embedder:     embedder,
		slangRepo:    slangRepo,
		historyRepo:  historyRepo,
		threshold:    threshold,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search 执行一次检索。空白查询返回 ErrInvalidQuery。
func (c *Coordinator) Search(ctx context.Context, in Input) (*Output, error) {
	ctx, span := tracer.Start(ctx, "search.Coordinator.Search")
	defer span.End()

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, apperrors.ErrInvalidQuery
	}
	limit := in.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}
	if limit > c.maxLimit {
		limit = c.maxLimit
	}
	span.SetAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.limit", limit),
		attribute.Bool("search.semantic", in.SemanticEnabled),
	)

	start := time.Now()
	var results []*Result
	mode := ModeKeyword

	if in.SemanticEnabled {
		semantic, err := c.semanticSearch(ctx, query, limit)
		if err != nil {
			span.RecordError(err)
			metrics.SearchTotal.WithLabelValues(ModeSemantic, "error").Inc()
			return nil, err
		}
		if len(semantic) > 0 {
			results = semantic
			mode = ModeSemantic
		}
	}

	// 语义结果为空或语义路径关闭时整体回退到关键词匹配
	if len(results) == 0 {
		keyword, err := c.keywordSearch(ctx, query, limit)
		if err != nil {
			span.RecordError(err)
			metrics.SearchTotal.WithLabelValues(ModeKeyword, "error").Inc()
			return nil, err
		}
		results = keyword
	}

	c.recordHistory(ctx, in.UserID, query, len(results))

	span.SetAttributes(
		attribute.String("search.mode", mode),
		attribute.Int("search.results", len(results)),
	)
	metrics.SearchTotal.WithLabelValues(mode, "success").Inc()
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return &Output{Results: results, Mode: mode}, nil
}

// semanticSearch 向量化查询文本、查询索引、过阈值并按语义排名水合词条
func (c *Coordinator) semanticSearch(ctx context.Context, query string, limit int) ([]*Result, error) {
	ctx, span := tracer.Start(ctx, "search.Coordinator.semanticSearch")
	defer span.End()

	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embed search query")
	}

	hits, err := c.idx.Query(vec, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 阈值为包含边界：相似度恰好等于阈值的结果保留
	type scored struct {
		id         int64
		similarity float64
	}
	kept := make([]scored, 0, len(hits))
	for _, h := range hits {
		if sim := h.Similarity(); sim >= c.threshold {
			kept = append(kept, scored{id: h.ID, similarity: sim})
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(kept))
	for i, s := range kept {
		ids[i] = s.id
	}
	terms, err := c.slangRepo.GetByIDs(ctx, ids, true)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "hydrate semantic results")
	}

	// 存储按主键返回不保证顺序，必须按语义排名重排
	byID := make(map[int64]*entity.SlangTerm, len(terms))
	for _, t := range terms {
		byID[t.ID] = t
	}
	results := make([]*Result, 0, len(kept))
	for _, s := range kept {
		term, ok := byID[s.id]
		if !ok {
			// 索引与存储之间的短暂不一致（词条刚被删除或撤审）
			continue
		}
		sim := s.similarity
		results = append(results, &Result{Term: term, Similarity: &sim})
	}
	return results, nil
}

// keywordSearch 不区分大小写的子串匹配，按存储默认顺序返回
func (c *Coordinator) keywordSearch(ctx context.Context, query string, limit int) ([]*Result, error) {
	terms, err := c.slangRepo.KeywordSearch(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "keyword search")
	}
	results := make([]*Result, len(terms))
	for i, t := range terms {
		results[i] = &Result{Term: t}
	}
	return results, nil
}

// recordHistory 记录搜索历史，失败只告警不影响搜索结果。
// 匿名搜索不落历史：无主的记录既无法被用户清除，也会污染热榜统计。
func (c *Coordinator) recordHistory(ctx context.Context, userID, query string, resultCount int) {
	if c.historyRepo == nil || userID == "" {
		return
	}
	history := &entity.SearchHistory{
		UserID:      userID,
		Query:       query,
		ResultCount: resultCount,
	}
	if err := c.historyRepo.Create(ctx, history); err != nil {
		logger.Warn(ctx, "record search history failed", "query", query, "error", err.Error())
	}
}
