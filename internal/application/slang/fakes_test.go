package slang

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
)

// fakeTransactor 直接执行回调，不提供回滚语义
type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeSlangRepo 内存词条仓储，Create 时分配自增主键
type fakeSlangRepo struct {
	mu     sync.Mutex
	nextID int64
	terms  map[int64]*entity.SlangTerm
}

func newFakeSlangRepo(terms ...*entity.SlangTerm) *fakeSlangRepo {
	r := &fakeSlangRepo{terms: make(map[int64]*entity.SlangTerm)}
	for _, t := range terms {
		r.terms[t.ID] = t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *fakeSlangRepo) sorted() []*entity.SlangTerm {
	out := make([]*entity.SlangTerm, 0, len(r.terms))
	for _, t := range r.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeSlangRepo) Create(ctx context.Context, term *entity.SlangTerm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	term.ID = r.nextID
	if term.CreatedAt.IsZero() {
		term.CreatedAt = time.Now()
	}
	r.terms[term.ID] = term
	return nil
}

func (r *fakeSlangRepo) GetByID(ctx context.Context, id int64) (*entity.SlangTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.terms[id]; ok {
		return t, nil
	}
	return nil, apperrors.ErrTermNotFound
}

func (r *fakeSlangRepo) GetByIDs(ctx context.Context, ids []int64, verifiedOnly bool) ([]*entity.SlangTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.SlangTerm
	for _, t := range r.sorted() {
		if !want[t.ID] {
			continue
		}
		if verifiedOnly && !t.IsVerified {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeSlangRepo) GetByTerm(ctx context.Context, term string) (*entity.SlangTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.sorted() {
		if strings.EqualFold(t.Term, term) {
			return t, nil
		}
	}
	return nil, apperrors.ErrTermNotFound
}

func (r *fakeSlangRepo) Update(ctx context.Context, term *entity.SlangTerm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms[term.ID] = term
	return nil
}

func (r *fakeSlangRepo) UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.terms[id]; ok {
		t.Embedding = vec
		t.VectorHash = hash
	}
	return nil
}

func (r *fakeSlangRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.terms, id)
	return nil
}

func (r *fakeSlangRepo) ListVerified(ctx context.Context) ([]*entity.SlangTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SlangTerm
	for _, t := range r.sorted() {
		if t.IsVerified {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeSlangRepo) ListVerifiedSummaries(ctx context.Context) ([]repository.TermSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.TermSummary
	for _, t := range r.sorted() {
		if t.IsVerified {
			out = append(out, repository.TermSummary{ID: t.ID, Term: t.Term})
		}
	}
	return out, nil
}

func (r *fakeSlangRepo) List(ctx context.Context, verifiedOnly bool, p repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SlangTerm
	for _, t := range r.sorted() {
		if verifiedOnly && !t.IsVerified {
			continue
		}
		out = append(out, t)
	}
	return &repository.PagedResult[*entity.SlangTerm]{Items: out, Total: int64(len(out))}, nil
}

func (r *fakeSlangRepo) ListPending(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SlangTerm
	for _, t := range r.sorted() {
		if !t.IsVerified {
			out = append(out, t)
		}
	}
	return &repository.PagedResult[*entity.SlangTerm]{Items: out, Total: int64(len(out))}, nil
}

func (r *fakeSlangRepo) ListRecentVerified(ctx context.Context, limit int) ([]*entity.SlangTerm, error) {
	out, _ := r.ListVerified(ctx)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSlangRepo) KeywordSearch(ctx context.Context, query string, limit int) ([]*entity.SlangTerm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []*entity.SlangTerm
	for _, t := range r.sorted() {
		if !t.IsVerified {
			continue
		}
		if strings.Contains(strings.ToLower(t.Term), q) || strings.Contains(strings.ToLower(t.Meaning), q) {
			out = append(out, t)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSlangRepo) CountSubmittedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.terms {
		if t.SubmittedBy == userID && !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlangRepo) Counts(ctx context.Context) (*repository.TermCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := &repository.TermCounts{}
	for _, t := range r.terms {
		counts.Total++
		if t.IsVerified {
			counts.Verified++
		} else {
			counts.Pending++
		}
	}
	return counts, nil
}

// fakeStatsCache 记录统计与热榜缓存的失效调用
type fakeStatsCache struct {
	mu                    sync.Mutex
	statsInvalidations    int
	trendingInvalidations int
}

func (c *fakeStatsCache) InvalidateCommunityStats(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statsInvalidations++
	return nil
}

func (c *fakeStatsCache) InvalidateTrending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trendingInvalidations++
	return nil
}

// fakeVoteRepo 内存投票仓储
type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []*entity.SlangVote
}

func (r *fakeVoteRepo) Create(ctx context.Context, v *entity.SlangVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.ID = int64(len(r.votes) + 1)
	r.votes = append(r.votes, v)
	return nil
}

func (r *fakeVoteRepo) Update(ctx context.Context, v *entity.SlangVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.votes {
		if existing.ID == v.ID {
			r.votes[i] = v
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeVoteRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.votes {
		if v.ID == id {
			r.votes = append(r.votes[:i], r.votes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeVoteRepo) DeleteByTerm(ctx context.Context, slangID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.SlangVote
	for _, v := range r.votes {
		if v.SlangID != slangID {
			kept = append(kept, v)
		}
	}
	r.votes = kept
	return nil
}

func (r *fakeVoteRepo) GetByUserAndTerm(ctx context.Context, userID string, slangID int64) (*entity.SlangVote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.UserID == userID && v.SlangID == slangID {
			return v, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeVoteRepo) ListByUser(ctx context.Context, userID string) ([]*entity.SlangVote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SlangVote
	for _, v := range r.votes {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) SumByTerm(ctx context.Context, slangID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, v := range r.votes {
		if v.SlangID == slangID {
			sum += int64(v.Vote)
		}
	}
	return sum, nil
}

func (r *fakeVoteRepo) SumByTerms(ctx context.Context, slangIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, id := range slangIDs {
		sum, _ := r.SumByTerm(ctx, id)
		out[id] = sum
	}
	return out, nil
}

func (r *fakeVoteRepo) CountSince(ctx context.Context, since time.Time) (map[int64]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]int64)
	for _, v := range r.votes {
		if !v.CreatedAt.Before(since) {
			out[v.SlangID]++
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) TopBySum(ctx context.Context, limit int) ([]repository.TermVotes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[int64]int64)
	for _, v := range r.votes {
		sums[v.SlangID] += int64(v.Vote)
	}
	out := make([]repository.TermVotes, 0, len(sums))
	for id, sum := range sums {
		out = append(out, repository.TermVotes{SlangID: id, Count: sum})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SlangID < out[j].SlangID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeTranslationRepo 内存译文仓储，(slang_id, language) 唯一
type fakeTranslationRepo struct {
	mu           sync.Mutex
	translations []*entity.SlangTranslation
}

func (r *fakeTranslationRepo) Upsert(ctx context.Context, tr *entity.SlangTranslation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.translations {
		if existing.SlangID == tr.SlangID && existing.Language == tr.Language {
			r.translations[i] = tr
			return nil
		}
	}
	r.translations = append(r.translations, tr)
	return nil
}

func (r *fakeTranslationRepo) GetByTermAndLanguage(ctx context.Context, slangID int64, language string) (*entity.SlangTranslation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tr := range r.translations {
		if tr.SlangID == slangID && tr.Language == language {
			return tr, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTranslationRepo) ListByTerm(ctx context.Context, slangID int64) ([]*entity.SlangTranslation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SlangTranslation
	for _, tr := range r.translations {
		if tr.SlangID == slangID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (r *fakeTranslationRepo) DeleteByTerm(ctx context.Context, slangID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.SlangTranslation
	for _, tr := range r.translations {
		if tr.SlangID != slangID {
			kept = append(kept, tr)
		}
	}
	r.translations = kept
	return nil
}

// fakeFavoriteRepo 内存收藏仓储
type fakeFavoriteRepo struct {
	mu        sync.Mutex
	favorites map[string]map[int64]bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{favorites: make(map[string]map[int64]bool)}
}

func (r *fakeFavoriteRepo) Add(ctx context.Context, userID string, slangID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.favorites[userID] == nil {
		r.favorites[userID] = make(map[int64]bool)
	}
	r.favorites[userID][slangID] = true
	return nil
}

func (r *fakeFavoriteRepo) Remove(ctx context.Context, userID string, slangID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.favorites[userID], slangID)
	return nil
}

func (r *fakeFavoriteRepo) Exists(ctx context.Context, userID string, slangID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.favorites[userID][slangID], nil
}

func (r *fakeFavoriteRepo) DeleteByTerm(ctx context.Context, slangID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, terms := range r.favorites {
		delete(terms, slangID)
	}
	return nil
}

func (r *fakeFavoriteRepo) ListTerms(ctx context.Context, userID string, page repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	return &repository.PagedResult[*entity.SlangTerm]{}, nil
}
