package vecindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksBySimilarity(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add(
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
		[]float32{0.9, 0.1, 0},
	))
	require.Equal(t, 3, ix.Len())

	hits := ix.Search([]float32{1, 0, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Ordinal)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
	assert.Equal(t, 2, hits[1].Ordinal)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchClampsK(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1, 2}, []float32{2, 1}))

	assert.Len(t, ix.Search([]float32{1, 1}, 10), 2)
	assert.Nil(t, ix.Search([]float32{1, 1}, 0))
	assert.Nil(t, ix.Search([]float32{1, 1}, -1))
}

func TestSearchEmptyIndex(t *testing.T) {
	assert.Nil(t, New().Search([]float32{1, 0}, 5))
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1, 2, 3}))
	assert.Error(t, ix.Add([]float32{1, 2}))
	assert.Error(t, ix.Add(nil))
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(out[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(out[1]), 1e-6)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
