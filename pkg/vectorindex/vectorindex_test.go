package vectorindex

import (
	"math"
	"testing"
)

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name       string
		embeddings [][]float32
	}{
		{"empty set", nil},
		{"zero dimension", [][]float32{{}}},
		{"inconsistent dimensions", [][]float32{{1, 0}, {1, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.embeddings); err == nil {
				t.Error("Build() = nil error, want error")
			}
		})
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	emb := [][]float32{{3, 4}}

	if _, err := Build(emb); err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if emb[0][0] != 3 || emb[0][1] != 4 {
		t.Errorf("input vector mutated: %v", emb[0])
	}
}

func TestSearch_SelfSimilarity(t *testing.T) {
	// An indexed vector queried with itself must come back first with a
	// score of 1 up to floating-point error.
	emb := [][]float32{{0.2, 0.8, 0.1}}
	idx, err := Build(emb)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	hits, err := idx.Search([]float32{0.2, 0.8, 0.1}, 1)
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Position != 0 {
		t.Errorf("Position = %d, want 0", hits[0].Position)
	}
	if math.Abs(float64(hits[0].Score)-1.0) > 1e-5 {
		t.Errorf("Score = %v, want ~1.0", hits[0].Score)
	}
}

func TestSearch_RankingOrder(t *testing.T) {
	// Vectors at increasing angles from the query axis (1, 0): scores must
	// come back strictly descending regardless of insertion order.
	emb := [][]float32{
		{0, 1},         // orthogonal, score 0
		{1, 0},         // identical direction, score 1
		{1, 1},         // 45 degrees, score ~0.707
		{0.95, 0.3122}, // ~18 degrees, score ~0.95
	}
	idx, err := Build(emb)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	hits, err := idx.Search([]float32{1, 0}, 4)
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	wantOrder := []int{1, 3, 2, 0}
	for i, want := range wantOrder {
		if hits[i].Position != want {
			t.Errorf("hits[%d].Position = %d, want %d", i, hits[i].Position, want)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score >= hits[i-1].Score {
			t.Errorf("scores not strictly descending: hits[%d]=%v, hits[%d]=%v",
				i-1, hits[i-1].Score, i, hits[i].Score)
		}
	}
}

func TestSearch_TiesBreakByLowestPosition(t *testing.T) {
	// Identical vectors all score the same; order must be by position.
	emb := [][]float32{
		{2, 0},
		{5, 0},
		{0, 1},
		{1, 0},
	}
	idx, err := Build(emb)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	hits, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	wantOrder := []int{0, 1, 3}
	for i, want := range wantOrder {
		if hits[i].Position != want {
			t.Errorf("hits[%d].Position = %d, want %d", i, hits[i].Position, want)
		}
	}
}

func TestSearch_Errors(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	tests := []struct {
		name  string
		query []float32
		topK  int
	}{
		{"top_k zero", []float32{1, 0}, 0},
		{"top_k negative", []float32{1, 0}, -1},
		{"top_k beyond size", []float32{1, 0}, 3},
		{"dimension mismatch", []float32{1, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := idx.Search(tt.query, tt.topK); err == nil {
				t.Error("Search() = nil error, want error")
			}
		})
	}
}

func TestSearch_DoesNotMutateQuery(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	query := []float32{3, 4}
	if _, err := idx.Search(query, 1); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if query[0] != 3 || query[1] != 4 {
		t.Errorf("query mutated: %v", query)
	}
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	idx, err := Build([][]float32{{0, 0}, {1, 0}})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	hits, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if hits[0].Position != 1 {
		t.Errorf("hits[0].Position = %d, want 1", hits[0].Position)
	}
	if hits[1].Score != 0 {
		t.Errorf("zero vector score = %v, want 0", hits[1].Score)
	}
}

func TestLenAndDim(t *testing.T) {
	idx, err := Build([][]float32{{1, 0, 0}, {0, 1, 0}})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if got := idx.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := idx.Dim(); got != 3 {
		t.Errorf("Dim() = %d, want 3", got)
	}
}
