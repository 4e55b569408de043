// Package vecindex provides an exact in-memory nearest-neighbor index over
// inner product. Vectors are L2-normalized on insert, so inner product
// equals cosine similarity.
package vecindex

import (
	"fmt"
	"math"
	"sort"
)

// Index holds normalized vectors in insertion order. It is built once per
// ingested document set and queried read-only afterwards; it is not safe
// for concurrent mutation.
type Index struct {
	dim     int
	vectors [][]float32
}

// New creates an empty index. The dimension is fixed by the first added
// vector.
func New() *Index {
	return &Index{}
}

// Len reports the number of indexed vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Add normalizes and appends vectors. All vectors must share one dimension.
func (ix *Index) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("empty vector at position %d", len(ix.vectors))
		}
		if ix.dim == 0 {
			ix.dim = len(v)
		}
		if len(v) != ix.dim {
			return fmt.Errorf("dimension mismatch: index has %d, vector has %d", ix.dim, len(v))
		}
		ix.vectors = append(ix.vectors, Normalize(v))
	}
	return nil
}

// Hit is one nearest-neighbor result.
type Hit struct {
	Ordinal int
	Score   float32
}

// Search returns up to k hits ordered by descending inner product with the
// query. An empty index returns no hits, not an error.
func (ix *Index) Search(query []float32, k int) []Hit {
	if len(ix.vectors) == 0 || k <= 0 {
		return nil
	}
	q := Normalize(query)

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Ordinal: i, Score: dot(q, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// Normalize returns the L2-normalized copy of v. A zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
