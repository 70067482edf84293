package index

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"slanglab-api/internal/domain/entity"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/logger"
	"slanglab-api/pkg/metrics"
)

var tracer = otel.Tracer("index")

// Embedder 文本向量化能力。实现须保证返回向量维度恒定。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TermSource 索引重建所需的最小存储能力，由 repository.SlangRepository 满足
type TermSource interface {
	ListVerified(ctx context.Context) ([]*entity.SlangTerm, error)
	GetByIDs(ctx context.Context, ids []int64, verifiedOnly bool) ([]*entity.SlangTerm, error)
	UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error
}

// Manager 负责索引的重建与向量缓存的写透维护。
// 重建流程：加载已审核词条，缓存新鲜的直接复用，失效的重新向量化并写回存储，
// 最后将完整的 (id, vector) 列表交给 VectorIndex 整体替换。
type Manager struct {
	index        *VectorIndex
	slangRepo    TermSource
	embedder     Embedder
	concurrency  int
	embedTimeout time.Duration
	group        singleflight.Group
}

// NewManager 创建索引管理器
func NewManager(idx *VectorIndex, slangRepo TermSource, embedder Embedder, concurrency int, embedTimeout time.Duration) *Manager {
	if concurrency <= 0 {
		concurrency = 4
	}
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	return &Manager{
		index:        idx,
		slangRepo:    slangRepo,
		embedder:     embedder,
		concurrency:  concurrency,
		embedTimeout: embedTimeout,
	}
}

// Index 返回受管的向量索引
func (m *Manager) Index() *VectorIndex {
	return m.index
}

// Rebuild 全量重建索引。并发触发的重建会合并为一次执行。
// 单个词条向量化失败只会使其缺席本轮索引，不会中断整体重建。
func (m *Manager) Rebuild(ctx context.Context) error {
	_, err, _ := m.group.Do("rebuild", func() (interface{}, error) {
		return nil, m.rebuild(ctx)
	})
	return err
}

func (m *Manager) rebuild(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "index.Manager.Rebuild")
	defer span.End()

	start := time.Now()
	terms, err := m.slangRepo.ListVerified(ctx)
	if err != nil {
		span.RecordError(err)
		metrics.IndexRebuildTotal.WithLabelValues("error").Inc()
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "load verified terms for rebuild")
	}

	// 缓存维度与配置不一致说明模型配置发生漂移，缓存不可信，整体失败。
	for _, t := range terms {
		if len(t.Embedding) > 0 && len(t.Embedding) != m.index.Dimension() {
			err := apperrors.New(apperrors.CodeDimensionMismatch, "cached vector dimension differs from configured dimension")
			span.RecordError(err)
			metrics.IndexRebuildTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	vectors, embedded, failed := m.collectVectors(ctx, terms)

	ids := make([]int64, 0, len(vectors))
	vecs := make([][]float32, 0, len(vectors))
	for _, v := range vectors {
		ids = append(ids, v.id)
		vecs = append(vecs, v.vector)
	}

	if err := m.index.Build(ids, vecs); err != nil {
		span.RecordError(err)
		metrics.IndexRebuildTotal.WithLabelValues("error").Inc()
		return err
	}

	span.SetAttributes(
		attribute.Int("index.size", len(ids)),
		attribute.Int("index.embedded", embedded),
		attribute.Int("index.failed", failed),
	)
	metrics.IndexRebuildTotal.WithLabelValues("success").Inc()
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	logger.Info(ctx, "index rebuilt",
		"size", len(ids),
		"embedded", embedded,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Refresh 强制重算指定词条的向量缓存，随后执行全量重建。
// 索引不支持局部更新，任何向量变更后都必须整体重建。
func (m *Manager) Refresh(ctx context.Context, ids []int64) error {
	ctx, span := tracer.Start(ctx, "index.Manager.Refresh")
	defer span.End()
	span.SetAttributes(attribute.Int("refresh.count", len(ids)))

	if len(ids) > 0 {
		terms, err := m.slangRepo.GetByIDs(ctx, ids, false)
		if err != nil {
			span.RecordError(err)
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "load terms for refresh")
		}
		for _, t := range terms {
			t.InvalidateEmbedding()
		}
		m.collectVectors(ctx, terms)
	}
	// 不并入刷新前已在执行的重建，否则刚写回的向量会缺席发布的索引
	m.group.Forget("rebuild")
	return m.Rebuild(ctx)
}

type idVector struct {
	id     int64
	vector []float32
}

// collectVectors 为词条列表准备向量：缓存新鲜的直接取用，其余并发向量化并写回。
// 返回值保持输入顺序，向量化失败的词条被剔除。
func (m *Manager) collectVectors(ctx context.Context, terms []*entity.SlangTerm) (vectors []idVector, embedded int, failed int) {
	results := make([]*idVector, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	counts := make(chan bool, len(terms))

	for i, term := range terms {
		if term.HasFreshEmbedding() {
			results[i] = &idVector{id: term.ID, vector: term.Embedding}
			metrics.EmbeddingCalls.WithLabelValues("cache", "success").Inc()
			continue
		}
		i, term := i, term
		g.Go(func() error {
			vec, err := m.embedTerm(gctx, term)
			if err != nil {
				logger.Warn(gctx, "embedding failed, term excluded from index",
					"slang_id", term.ID, "term", term.Term, "error", err.Error())
				metrics.EmbeddingCalls.WithLabelValues("model", "error").Inc()
				counts <- false
				return nil
			}
			results[i] = &idVector{id: term.ID, vector: vec}
			metrics.EmbeddingCalls.WithLabelValues("model", "success").Inc()
			counts <- true
			return nil
		})
	}
	_ = g.Wait()
	close(counts)
	for ok := range counts {
		if ok {
			embedded++
		} else {
			failed++
		}
	}

	vectors = make([]idVector, 0, len(results))
	for _, r := range results {
		if r != nil {
			vectors = append(vectors, *r)
		}
	}
	return vectors, embedded, failed
}

// embedTerm 向量化单个词条并写透缓存
func (m *Manager) embedTerm(ctx context.Context, term *entity.SlangTerm) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, m.embedTimeout)
	defer cancel()

	start := time.Now()
	vec, err := m.embedder.Embed(ctx, term.EmbeddingText())
	metrics.EmbeddingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embed term text")
	}
	if len(vec) != m.index.Dimension() {
		return nil, apperrors.New(apperrors.CodeDimensionMismatch, "embedder returned unexpected dimension")
	}

	term.SetEmbedding(vec)
	if err := m.slangRepo.UpdateEmbedding(ctx, term.ID, term.Embedding, term.VectorHash); err != nil {
		// 写回失败不致命，下次重建会重新计算
		logger.Warn(ctx, "embedding cache write-through failed", "slang_id", term.ID, "error", err.Error())
	}
	return vec, nil
}
