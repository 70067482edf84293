package community

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
)

// fakeSlangRepo 内存词条仓储，只实现统计与投票路径所需的读操作
type fakeSlangRepo struct {
	mu    sync.Mutex
	terms map[int64]*entity.SlangTerm
}

func newFakeSlangRepo(terms ...*entity.SlangTerm) *fakeSlangRepo {
	r := &fakeSlangRepo{terms: make(map[int64]*entity.SlangTerm)}
	for _, t := range terms {
		r.terms[t.ID] = t
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
	return r.Create(ctx, term)
}

func (r *fakeSlangRepo) UpdateEmbedding(ctx context.Context, id int64, vec entity.Vector, hash string) error {
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
	return nil, nil
}

func (r *fakeSlangRepo) List(ctx context.Context, verifiedOnly bool, p repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	return &repository.PagedResult[*entity.SlangTerm]{}, nil
}

func (r *fakeSlangRepo) ListPending(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.SlangTerm], error) {
	return &repository.PagedResult[*entity.SlangTerm]{}, nil
}

func (r *fakeSlangRepo) ListRecentVerified(ctx context.Context, limit int) ([]*entity.SlangTerm, error) {
	out, _ := r.ListVerified(ctx)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSlangRepo) KeywordSearch(ctx context.Context, query string, limit int) ([]*entity.SlangTerm, error) {
	return nil, nil
}

func (r *fakeSlangRepo) CountSubmittedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return 0, nil
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
	return map[int64]int64{}, nil
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

// fakeCache 记录加载与失效次数的内存缓存，TTL 不过期
type fakeCache struct {
	mu                    sync.Mutex
	entries               map[string][]byte
	loads                 int
	statsInvalidations    int
	trendingInvalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.entries[key]; ok {
		return data, nil
	}
	c.loads++
	value, err := loader()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	c.entries[key] = data
	return data, nil
}

func (c *fakeCache) InvalidateCommunityStats(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, "community:stats")
	c.statsInvalidations++
	return nil
}

func (c *fakeCache) InvalidateTrending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, "trending:") {
			delete(c.entries, k)
		}
	}
	c.trendingInvalidations++
	return nil
}
