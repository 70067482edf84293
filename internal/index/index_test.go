package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slanglab-api/pkg/errors"
)

func TestVectorIndexEmptyQuery(t *testing.T) {
	idx := NewVectorIndex(3)

	results, err := idx.Query([]float32{0, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, idx.Size())
}

func TestVectorIndexBuildEmptyIsValid(t *testing.T) {
	idx := NewVectorIndex(3)
	require.NoError(t, idx.Build([]int64{1}, [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Build(nil, nil))

	results, err := idx.Query([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndexQueryOrdering(t *testing.T) {
	idx := NewVectorIndex(2)
	require.NoError(t, idx.Build(
		[]int64{10, 20, 30},
		[][]float32{
			{1, 0},
			{0, 1},
			{0.9, 0.1},
		},
	))

	results, err := idx.Query([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(10), results[0].ID)
	assert.Equal(t, int64(30), results[1].ID)
	assert.Equal(t, int64(20), results[2].ID)
	// 升序距离
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.LessOrEqual(t, results[1].Distance, results[2].Distance)
}

func TestVectorIndexQueryLimit(t *testing.T) {
	idx := NewVectorIndex(2)
	require.NoError(t, idx.Build(
		[]int64{1, 2, 3, 4},
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {0, 0}},
	))

	results, err := idx.Query([]float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int64(4), results[0].ID)
}

func TestVectorIndexDimensionMismatch(t *testing.T) {
	idx := NewVectorIndex(3)

	_, err := idx.Query([]float32{1, 0}, 5)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeDimensionMismatch, appErr.Code)

	err = idx.Build([]int64{1}, [][]float32{{1, 0}})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDimensionMismatch, apperrors.AsAppError(err).Code)
}

func TestSimilarityConversion(t *testing.T) {
	// similarity = 1 - distance/2，距离为 0 时相似度为 1
	assert.InDelta(t, 1.0, QueryResult{Distance: 0}.Similarity(), 1e-9)
	assert.InDelta(t, 0.75, QueryResult{Distance: 0.5}.Similarity(), 1e-9)
	assert.InDelta(t, 0.0, QueryResult{Distance: 2}.Similarity(), 1e-9)
}

func TestVectorIndexBuildReplacesWholesale(t *testing.T) {
	idx := NewVectorIndex(2)
	require.NoError(t, idx.Build([]int64{1, 2}, [][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, idx.Build([]int64{3}, [][]float32{{0.5, 0.5}}))

	results, err := idx.Query([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].ID)
}
