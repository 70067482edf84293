package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slanglab-api/internal/domain/entity"
	apperrors "slanglab-api/pkg/errors"
)

type fakeTermSource struct {
	mu    sync.Mutex
	terms map[int64]*entity.SlangTerm

	embeddingWrites int
}

func newFakeTermSource(terms ...*entity.SlangTerm) *fakeTermSource {
	s := &fakeTermSource{terms: make(map[int64]*entity.SlangTerm)}
	for _, t := range terms {
		s.terms[t.ID] = t
	}
	return s
}

func (s *fakeTermSource) ListVerified(ctx context.Context) ([]*entity.SlangTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.SlangTerm
	for _, t := range s.terms {
		if t.IsVerified {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTermSource) GetByIDs(ctx context.Context, ids []int64, verifiedOnly bool) ([]*entity.SlangTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.SlangTerm
	for _, id := range ids {
		if t, ok := s.terms[id]; ok {
			if verifiedOnly && !t.IsVerified {
				continue
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTermSource) UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddingWrites++
	if t, ok := s.terms[id]; ok {
		t.Embedding = vec
		t.VectorHash = hash
	}
	return nil
}

// fakeEmbedder 确定性向量化器，记录调用次数
type fakeEmbedder struct {
	mu        sync.Mutex
	dimension int
	calls     int
	failTexts map[string]bool
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failTexts[text] {
		return nil, errors.New("model unavailable")
	}
	vec := make([]float32, e.dimension)
	for i, c := range []byte(text) {
		vec[i%e.dimension] += float32(c) / 255
	}
	return vec, nil
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func verifiedTerm(id int64, term, meaning string) *entity.SlangTerm {
	return &entity.SlangTerm{ID: id, Term: term, Meaning: meaning, IsVerified: true}
}

func TestManagerRebuildEmbedsMissingVectors(t *testing.T) {
	source := newFakeTermSource(
		verifiedTerm(1, "lit", "very good"),
		verifiedTerm(2, "ghost", "to disappear"),
	)
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	assert.Equal(t, 2, mgr.Index().Size())
	assert.Equal(t, 2, embedder.callCount())
	assert.Equal(t, 2, source.embeddingWrites)

	// 缓存命中后第二次重建不再调用模型
	require.NoError(t, mgr.Rebuild(context.Background()))
	assert.Equal(t, 2, embedder.callCount())
}

func TestManagerRebuildIdempotent(t *testing.T) {
	source := newFakeTermSource(
		verifiedTerm(1, "lit", "very good"),
		verifiedTerm(2, "salty", "annoyed"),
		verifiedTerm(3, "ghost", "to disappear"),
	)
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	query := []float32{0.5, 0.5, 0.5, 0.5}
	first, err := mgr.Index().Query(query, 10)
	require.NoError(t, err)

	require.NoError(t, mgr.Rebuild(context.Background()))
	second, err := mgr.Index().Query(query, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestManagerRebuildExcludesFailedEntry(t *testing.T) {
	bad := verifiedTerm(2, "ghost", "to disappear")
	source := newFakeTermSource(verifiedTerm(1, "lit", "very good"), bad)
	embedder := &fakeEmbedder{
		dimension: 4,
		failTexts: map[string]bool{bad.EmbeddingText(): true},
	}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	assert.Equal(t, 1, mgr.Index().Size())

	results, err := mgr.Index().Query(make([]float32, 4), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ID)
}

func TestManagerRebuildSkipsUnverified(t *testing.T) {
	pending := verifiedTerm(2, "mid", "mediocre")
	pending.IsVerified = false
	source := newFakeTermSource(verifiedTerm(1, "lit", "very good"), pending)
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	assert.Equal(t, 1, mgr.Index().Size())
}

func TestManagerRefreshRecomputesSubset(t *testing.T) {
	term := verifiedTerm(1, "lit", "very good")
	source := newFakeTermSource(term, verifiedTerm(2, "ghost", "to disappear"))
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	require.Equal(t, 2, embedder.callCount())

	// 内容变更后 Refresh 只重算指定词条
	term.Meaning = "exciting, excellent"
	require.NoError(t, mgr.Refresh(context.Background(), []int64{1}))
	assert.Equal(t, 3, embedder.callCount())
	assert.Equal(t, 2, mgr.Index().Size())
	assert.True(t, term.HasFreshEmbedding())
}

func TestManagerRebuildStaleCacheReembeds(t *testing.T) {
	term := verifiedTerm(1, "lit", "very good")
	term.SetEmbedding([]float32{1, 0, 0, 0})
	// 内容在缓存之后被修改，指纹不再匹配
	term.Meaning = "changed meaning"
	source := newFakeTermSource(term)
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	require.NoError(t, mgr.Rebuild(context.Background()))
	assert.Equal(t, 1, embedder.callCount())
	assert.True(t, term.HasFreshEmbedding())
}

func TestManagerRebuildDimensionDrift(t *testing.T) {
	term := verifiedTerm(1, "lit", "very good")
	term.SetEmbedding([]float32{1, 0}) // 与配置维度 4 不符
	source := newFakeTermSource(term)
	embedder := &fakeEmbedder{dimension: 4}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	err := mgr.Rebuild(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDimensionMismatch, apperrors.AsAppError(err).Code)
}

// gateEmbedder 首次调用阻塞直到放行，其余调用直接委托
type gateEmbedder struct {
	inner   *fakeEmbedder
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *gateEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var first bool
	e.once.Do(func() { first = true })
	if first {
		close(e.entered)
		<-e.release
	}
	return e.inner.Embed(ctx, text)
}

func TestRefreshDoesNotCoalesceIntoInFlightRebuild(t *testing.T) {
	source := newFakeTermSource(verifiedTerm(1, "ghost", "to disappear"))
	embedder := &gateEmbedder{
		inner:   &fakeEmbedder{dimension: 4},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	mgr := NewManager(NewVectorIndex(4), source, embedder, 2, time.Second)

	rebuildDone := make(chan error, 1)
	go func() { rebuildDone <- mgr.Rebuild(context.Background()) }()
	// 首次重建停在向量化阶段
	<-embedder.entered

	// 刷新必须独立重建，不能并入已在执行的旧重建
	refreshDone := make(chan error, 1)
	go func() { refreshDone <- mgr.Refresh(context.Background(), []int64{1}) }()

	select {
	case err := <-refreshDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh joined the stalled rebuild instead of starting its own")
	}
	assert.Equal(t, 1, mgr.Index().Size())

	close(embedder.release)
	require.NoError(t, <-rebuildDone)
}
