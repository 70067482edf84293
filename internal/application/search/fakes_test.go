package search

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

// fakeSlangRepo 内存词条仓储，按 ID 升序作为存储默认顺序
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
	// 刻意按主键升序返回，模拟存储不保序的行为
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

// fakeHistoryRepo 内存搜索历史仓储
type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.SearchHistory
}

func (r *fakeHistoryRepo) Create(ctx context.Context, h *entity.SearchHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	r.records = append(r.records, h)
	return nil
}

func (r *fakeHistoryRepo) RecentQueryCounts(ctx context.Context, since time.Time, limit int) ([]repository.QueryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, rec := range r.records {
		if rec.CreatedAt.Before(since) {
			continue
		}
		counts[rec.Query]++
	}
	out := make([]repository.QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, repository.QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.SearchHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SearchHistory
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.SearchHistory
	for _, rec := range r.records {
		if rec.UserID != userID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
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

// fakeEmbedder 把文本映射到预置向量，未知文本返回零向量
type fakeEmbedder struct {
	dimension int
	vectors   map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return make([]float32, e.dimension), nil
}
