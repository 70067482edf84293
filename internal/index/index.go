// Package index 提供进程内的向量索引与索引管理
package index

import (
	"sort"
	"sync/atomic"

	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/metrics"
)

// QueryResult 单条最近邻查询结果
type QueryResult struct {
	ID       int64
	Distance float64
}

// Similarity 将距离换算为 [0,1] 相似度。
// 该换算假设向量大致为单位尺度，是项目约定而非余弦相似度，不可替换。
func (r QueryResult) Similarity() float64 {
	return 1 - r.Distance/2
}

// snapshot 一次构建产出的不可变索引内容。
// ids 与 vectors 等长同序，查询结果第 i 位对应 ids[i]。
type snapshot struct {
	ids     []int64
	vectors [][]float32
}

// VectorIndex 扁平向量索引。整体替换式更新：构建在旁路完成后
// 一次指针交换发布，查询永远不会读到半成品。
type VectorIndex struct {
	dimension int
	snap      atomic.Pointer[snapshot]
}

// NewVectorIndex 创建指定维度的空索引
func NewVectorIndex(dimension int) *VectorIndex {
	idx := &VectorIndex{dimension: dimension}
	idx.snap.Store(&snapshot{})
	return idx
}

// Dimension 返回索引配置的向量维度
func (x *VectorIndex) Dimension() int {
	return x.dimension
}

// Size 返回当前索引中的向量数量
func (x *VectorIndex) Size() int {
	return len(x.snap.Load().ids)
}

// Build 以给定的 (id, vector) 列表整体替换索引内容。
// 空输入产生可查询但恒为空的合法索引。维度不符返回 ErrDimensionMismatch。
func (x *VectorIndex) Build(ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return apperrors.New(apperrors.CodeInternalError, "id list and vector list length mismatch")
	}
	for _, vec := range vectors {
		if len(vec) != x.dimension {
			return apperrors.ErrDimensionMismatch
		}
	}

	next := &snapshot{
		ids:     make([]int64, len(ids)),
		vectors: make([][]float32, len(vectors)),
	}
	copy(next.ids, ids)
	copy(next.vectors, vectors)

	x.snap.Store(next)
	metrics.IndexSize.Set(float64(len(next.ids)))
	return nil
}

// Query 返回至多 k 个按欧氏距离平方升序排列的最近邻。
// 空索引返回空结果，查询向量维度不符返回 ErrDimensionMismatch。
func (x *VectorIndex) Query(vector []float32, k int) ([]QueryResult, error) {
	if len(vector) != x.dimension {
		return nil, apperrors.ErrDimensionMismatch
	}
	snap := x.snap.Load()
	if len(snap.ids) == 0 || k <= 0 {
		return []QueryResult{}, nil
	}

	results := make([]QueryResult, len(snap.ids))
	for i, vec := range snap.vectors {
		results[i] = QueryResult{ID: snap.ids[i], Distance: squaredDistance(vector, vec)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// squaredDistance 欧氏距离平方，调用方保证两向量等长
func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
