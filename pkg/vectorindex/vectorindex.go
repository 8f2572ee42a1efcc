// Package vectorindex provides an exact, in-memory nearest-neighbor index
// over embedding vectors. Vectors are L2-normalized at build time so the
// inner product of any pair equals their cosine similarity, and search is
// a brute-force scan over all vectors. Exact scan is the deliberate policy
// at the intended scale (tens of thousands of chunks): results are fully
// reproducible and there is no recall loss from approximation.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
)

// Hit is a single search result: the position of a vector in the build
// order and its cosine similarity to the query.
type Hit struct {
	Position int
	Score    float32
}

// Index is an immutable flat index over unit-normalized vectors. The
// position of a vector in the slice passed to Build is its identity;
// callers map positions back to their own records. Safe for concurrent
// searches once built.
type Index struct {
	dim     int
	vectors [][]float32
}

// Build constructs an index from embeddings. All vectors must be non-empty
// and share one dimensionality. Each vector is copied and normalized to
// unit L2 norm; the caller's slices are not modified. Zero vectors are kept
// as-is and score zero against every query.
func Build(embeddings [][]float32) (*Index, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("vectorindex: no vectors to index")
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("vectorindex: vector 0 has zero dimension")
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		if len(emb) != dim {
			return nil, fmt.Errorf("vectorindex: vector %d has dimension %d, want %d", i, len(emb), dim)
		}
		v := make([]float32, dim)
		copy(v, emb)
		normalize(v)
		vectors[i] = v
	}

	return &Index{dim: dim, vectors: vectors}, nil
}

// Search returns the topK vectors with the highest cosine similarity to
// query, in descending score order. Ties resolve to the lowest position.
// topK must be in [1, Len()]; callers clamp before searching. The query is
// normalized on a copy and never modified.
func (x *Index) Search(query []float32, topK int) ([]Hit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("vectorindex: top_k must be >= 1, got %d", topK)
	}
	if topK > len(x.vectors) {
		return nil, fmt.Errorf("vectorindex: top_k %d exceeds indexed vectors %d", topK, len(x.vectors))
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("vectorindex: query has dimension %d, want %d", len(query), x.dim)
	}

	q := make([]float32, x.dim)
	copy(q, query)
	normalize(q)

	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Position: i, Score: dot(q, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	return hits[:topK], nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	return len(x.vectors)
}

// Dim returns the dimensionality of the indexed vectors.
func (x *Index) Dim() int {
	return x.dim
}

// normalize scales v to unit L2 norm in place. Zero vectors are left
// untouched.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
