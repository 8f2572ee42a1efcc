package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rhuss/auskunft/pkg/api"
	"github.com/rhuss/auskunft/pkg/chunker"
	"github.com/rhuss/auskunft/pkg/extract"
	"github.com/rhuss/auskunft/pkg/provider"
)

// passthroughExtractor treats the document bytes as the extracted text.
type passthroughExtractor struct{}

func (passthroughExtractor) Text(data []byte, filename string) string {
	return string(data)
}

// splitChunker chunks on '|' so tests control chunk boundaries exactly.
type splitChunker struct{}

func (splitChunker) Chunk(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "|") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fakeEmbedder returns fixed vectors per text and records every call.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{1, 0}
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }

// mismatchEmbedder returns the wrong number of vectors.
type mismatchEmbedder struct{}

func (mismatchEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1, 0}}, nil
}

func (mismatchEmbedder) Dimensions() int { return 2 }

// fakeGenerator returns a fixed answer and records every prompt.
type fakeGenerator struct {
	answer  string
	err     error
	prompts [][]provider.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, msgs []provider.Message) (string, error) {
	f.prompts = append(f.prompts, msgs)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestPipeline(t *testing.T, emb provider.Embedder, gen provider.Generator) *Pipeline {
	t.Helper()
	p, err := New(passthroughExtractor{}, splitChunker{}, emb, gen, Config{})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	return p
}

// directionVectors gives each chunk text a fixed direction so cosine
// ranking against an "east" question is known in advance.
func directionVectors() map[string][]float32 {
	return map[string][]float32{
		"north":              {0, 1},
		"east":               {1, 0},
		"northeast":          {1, 1},
		"mostly east":        {0.95, 0.3122},
		"which way is east?": {1, 0},
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}

	tests := []struct {
		name      string
		extractor TextExtractor
		chunker   Chunker
		embedder  provider.Embedder
		generator provider.Generator
	}{
		{"nil extractor", nil, splitChunker{}, emb, gen},
		{"nil chunker", passthroughExtractor{}, nil, emb, gen},
		{"nil embedder", passthroughExtractor{}, splitChunker{}, nil, gen},
		{"nil generator", passthroughExtractor{}, splitChunker{}, emb, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.extractor, tt.chunker, tt.embedder, tt.generator, Config{}); err == nil {
				t.Error("expected error for missing collaborator")
			}
		})
	}
}

func TestIngest_CountsAndSkips(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeGenerator{})

	resp, err := p.Ingest(context.Background(), []api.Document{
		{Name: "a.txt", Data: []byte("alpha|beta")},
		{Name: "empty.txt", Data: []byte("   ")},
		{Name: "b.txt", Data: []byte("gamma")},
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if resp.Status != api.StatusOK {
		t.Errorf("expected status %q, got %q", api.StatusOK, resp.Status)
	}
	if resp.Files != 3 {
		t.Errorf("expected files 3, got %d", resp.Files)
	}
	if resp.ChunksAdded != 3 {
		t.Errorf("expected 3 chunks added, got %d", resp.ChunksAdded)
	}
	if resp.TotalChunks != 3 {
		t.Errorf("expected 3 total chunks, got %d", resp.TotalChunks)
	}

	// Re-ingesting the same content appends again; there is no deduplication.
	resp, err = p.Ingest(context.Background(), []api.Document{
		{Name: "b.txt", Data: []byte("gamma")},
	})
	if err != nil {
		t.Fatalf("second Ingest failed: %v", err)
	}
	if resp.ChunksAdded != 1 || resp.TotalChunks != 4 {
		t.Errorf("expected 1 added / 4 total, got %d / %d", resp.ChunksAdded, resp.TotalChunks)
	}
}

func TestBuild_EmptyStore(t *testing.T) {
	emb := &fakeEmbedder{}
	p := newTestPipeline(t, emb, &fakeGenerator{answer: "unused"})

	resp, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if resp.Chunks != 0 {
		t.Errorf("expected 0 chunks, got %d", resp.Chunks)
	}
	if resp.Message == "" {
		t.Error("expected explanatory message for empty build")
	}
	if len(emb.calls) != 0 {
		t.Errorf("expected no embed calls, got %d", len(emb.calls))
	}

	// No index was created, so asking yields the insufficient-information answer.
	ask, err := p.Ask(context.Background(), "anything?", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if ask.Answer != insufficientAnswer {
		t.Errorf("expected insufficient-information answer, got %q", ask.Answer)
	}
}

func TestBuild_EmbedsInStoreOrder(t *testing.T) {
	emb := &fakeEmbedder{}
	p := newTestPipeline(t, emb, &fakeGenerator{})

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "a.txt", Data: []byte("one|two")},
		{Name: "b.txt", Data: []byte("three")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if resp.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", resp.Chunks)
	}

	if len(emb.calls) != 1 {
		t.Fatalf("expected 1 embed call, got %d", len(emb.calls))
	}
	want := []string{"one", "two", "three"}
	got := emb.calls[0]
	if len(got) != len(want) {
		t.Fatalf("expected %d texts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("embed text %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuild_EmbedderFailureKeepsPriorIndex(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "East. [1]"}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Grow the corpus, then fail the rebuild.
	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "more.txt", Data: []byte("north")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	emb.err = errors.New("backend down")
	if _, err := p.Build(context.Background()); err == nil {
		t.Fatal("expected Build to fail")
	}
	emb.err = nil

	// The pre-failure index still serves questions over the old corpus.
	resp, err := p.Ask(context.Background(), "which way is east?", 10)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source from prior index, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Preview != "east" {
		t.Errorf("expected source preview %q, got %q", "east", resp.Sources[0].Preview)
	}
}

func TestBuild_EmbeddingCountMismatch(t *testing.T) {
	p, err := New(passthroughExtractor{}, splitChunker{}, mismatchEmbedder{}, &fakeGenerator{}, Config{})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "a.txt", Data: []byte("one|two")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	_, err = p.Build(context.Background())
	if err == nil {
		t.Fatal("expected Build to fail on count mismatch")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Type != api.ErrorTypeModelError {
		t.Errorf("expected type %q, got %q", api.ErrorTypeModelError, apiErr.Type)
	}
}

func TestAsk_InsufficientBeforeBuild(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{answer: "unused"}
	p := newTestPipeline(t, emb, gen)

	// A populated store without a built index is still insufficient.
	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "a.txt", Data: []byte("alpha")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := p.Ask(context.Background(), "anything?", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Status != api.StatusOK {
		t.Errorf("expected status %q, got %q", api.StatusOK, resp.Status)
	}
	if resp.Answer != insufficientAnswer {
		t.Errorf("expected insufficient-information answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(resp.Sources))
	}
	if len(emb.calls) != 0 || len(gen.prompts) != 0 {
		t.Error("expected no provider calls for insufficient state")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "unused"}
	p := newTestPipeline(t, emb, gen)

	// Before any index exists, the state check wins over the question check.
	resp, err := p.Ask(context.Background(), "   ", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != insufficientAnswer {
		t.Errorf("expected insufficient-information answer, got %q", resp.Answer)
	}

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	embedCalls := len(emb.calls)

	resp, err = p.Ask(context.Background(), "   ", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Status != api.StatusNoQuestion {
		t.Errorf("expected status %q, got %q", api.StatusNoQuestion, resp.Status)
	}
	if len(emb.calls) != embedCalls || len(gen.prompts) != 0 {
		t.Error("expected no provider calls for empty question")
	}
}

func TestAsk_RanksAndClamps(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "East. [1]"}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("north|east|northeast|mostly east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	resp, err := p.Ask(context.Background(), "which way is east?", 3)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != "East. [1]" {
		t.Errorf("expected generated answer, got %q", resp.Answer)
	}

	wantPreviews := []string{"east", "mostly east", "northeast"}
	if len(resp.Sources) != len(wantPreviews) {
		t.Fatalf("expected %d sources, got %d", len(wantPreviews), len(resp.Sources))
	}
	for i, want := range wantPreviews {
		src := resp.Sources[i]
		if src.ID != i+1 {
			t.Errorf("source %d ID = %d, want %d", i, src.ID, i+1)
		}
		if src.Source != "dirs.txt" {
			t.Errorf("source %d file = %q, want %q", i, src.Source, "dirs.txt")
		}
		if src.Preview != want {
			t.Errorf("source %d preview = %q, want %q", i, src.Preview, want)
		}
	}

	// topK beyond the corpus clamps to the corpus size.
	resp, err = p.Ask(context.Background(), "which way is east?", 100)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Sources) != 4 {
		t.Errorf("expected 4 sources for clamped topK, got %d", len(resp.Sources))
	}

	// topK 0 selects the default (6), then clamps to the corpus size.
	resp, err = p.Ask(context.Background(), "which way is east?", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Sources) != 4 {
		t.Errorf("expected 4 sources for default topK, got %d", len(resp.Sources))
	}
}

func TestAsk_EndToEndWithRealCollaborators(t *testing.T) {
	const text = "A cat sat. A dog ran."

	chk, err := chunker.New(chunker.Config{Tokens: 400, Overlap: 60, Encoding: "cl100k_base"})
	if err != nil {
		t.Fatalf("failed to create chunker: %v", err)
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		text:        {1, 0},
		"What sat?": {1, 0},
	}}
	gen := &fakeGenerator{answer: "A cat sat. [1]"}

	p, err := New(extract.DefaultRegistry(), chk, emb, gen, Config{})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "pets.txt", Data: []byte(text)},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	build, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if build.Chunks != 1 {
		t.Fatalf("expected 1 chunk for a short document, got %d", build.Chunks)
	}

	resp, err := p.Ask(context.Background(), "What sat?", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer == "" {
		t.Error("expected a non-empty answer")
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Source != "pets.txt" {
		t.Errorf("expected source %q, got %q", "pets.txt", resp.Sources[0].Source)
	}
	if resp.Sources[0].Preview != text {
		t.Errorf("expected preview %q, got %q", text, resp.Sources[0].Preview)
	}
}

func TestAsk_EmbedsQuestionOnce(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	p := newTestPipeline(t, emb, &fakeGenerator{answer: "ok"})

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east|north")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	embedCalls := len(emb.calls)

	if _, err := p.Ask(context.Background(), "which way is east?", 1); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if len(emb.calls) != embedCalls+1 {
		t.Fatalf("expected exactly one embed call for the question, got %d", len(emb.calls)-embedCalls)
	}
	call := emb.calls[len(emb.calls)-1]
	if len(call) != 1 || call[0] != "which way is east?" {
		t.Errorf("expected question embed call, got %v", call)
	}
}

func TestAsk_PromptContainsContext(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "East. [1]"}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east|north")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := p.Ask(context.Background(), "which way is east?", 1); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 generate call, got %d", len(gen.prompts))
	}
	msgs := gen.prompts[0]
	if len(msgs) != 2 {
		t.Fatalf("expected 2 prompt messages, got %d", len(msgs))
	}

	if msgs[0].Role != provider.RoleSystem {
		t.Errorf("expected first message role system, got %q", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "ONLY the provided context") {
		t.Errorf("system prompt missing grounding instruction: %q", msgs[0].Content)
	}

	user := msgs[1]
	if user.Role != provider.RoleUser {
		t.Errorf("expected second message role user, got %q", user.Role)
	}
	for _, want := range []string{
		"Question:\nwhich way is east?",
		"[1] (dirs.txt)\neast",
		"cite like [1][3]",
	} {
		if !strings.Contains(user.Content, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user.Content)
		}
	}
}

func TestAsk_PreviewBoundsLongChunks(t *testing.T) {
	long := strings.Repeat("ü", 400)
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{answer: "ok"}

	p, err := New(passthroughExtractor{}, splitChunker{}, emb, gen, Config{})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "long.txt", Data: []byte(long)},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	resp, err := p.Ask(context.Background(), "what does it say?", 1)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}

	want := strings.Repeat("ü", 300)
	if resp.Sources[0].Preview != want {
		t.Errorf("expected preview of 300 runes, got %d runes", len([]rune(resp.Sources[0].Preview)))
	}
}

func TestAsk_GeneratorFailurePropagates(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{err: api.NewModelError("model overloaded")}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err := p.Ask(context.Background(), "which way is east?", 1)
	if err == nil {
		t.Fatal("expected Ask to fail")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Type != api.ErrorTypeModelError {
		t.Errorf("expected type %q, got %q", api.ErrorTypeModelError, apiErr.Type)
	}
}

func TestAsk_StaleIndexServesIndexedCorpus(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "East. [1]"}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// New chunks are stored but not indexed until the next build.
	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "more.txt", Data: []byte("north|northeast")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := p.Ask(context.Background(), "which way is east?", 5)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source from the stale index, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Source != "dirs.txt" {
		t.Errorf("expected source %q, got %q", "dirs.txt", resp.Sources[0].Source)
	}
}

func TestRetrieve(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "unused"}
	p := newTestPipeline(t, emb, gen)

	// Without an index, retrieval is empty rather than an error.
	chunks, err := p.Retrieve(context.Background(), "which way is east?", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks before build, got %d", len(chunks))
	}

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("north|east|northeast")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	chunks, err = p.Retrieve(context.Background(), "which way is east?", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "east" || chunks[0].Position != 1 {
		t.Errorf("expected top chunk east at position 1, got %q at %d", chunks[0].Text, chunks[0].Position)
	}
	if chunks[0].Score <= chunks[1].Score {
		t.Errorf("expected descending scores, got %f then %f", chunks[0].Score, chunks[1].Score)
	}
	if chunks[0].Source != "dirs.txt" {
		t.Errorf("expected source dirs.txt, got %q", chunks[0].Source)
	}

	// Generation is never involved in retrieval.
	if len(gen.prompts) != 0 {
		t.Errorf("expected no generate calls, got %d", len(gen.prompts))
	}

	// An empty query is an empty result.
	chunks, err = p.Retrieve(context.Background(), "  ", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty query, got %d", len(chunks))
	}
}

func TestReset_ClearsStoreAndIndex(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "East. [1]"}
	p := newTestPipeline(t, emb, gen)

	if _, err := p.Ingest(context.Background(), []api.Document{
		{Name: "dirs.txt", Data: []byte("east")},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	reset, err := p.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if reset.Status != api.StatusOK {
		t.Errorf("expected status %q, got %q", api.StatusOK, reset.Status)
	}

	// Ask after reset is the insufficient-information response.
	resp, err := p.Ask(context.Background(), "which way is east?", 1)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != insufficientAnswer {
		t.Errorf("expected insufficient-information answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected no sources after reset, got %d", len(resp.Sources))
	}

	// The pipeline remains usable for a fresh corpus.
	ingest, err := p.Ingest(context.Background(), []api.Document{
		{Name: "fresh.txt", Data: []byte("north")},
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if ingest.TotalChunks != 1 {
		t.Errorf("expected fresh store with 1 chunk, got %d", ingest.TotalChunks)
	}
}

func TestConcurrentOperations(t *testing.T) {
	emb := &fakeEmbedder{vectors: directionVectors()}
	gen := &fakeGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, gen)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				switch i % 4 {
				case 0:
					doc := api.Document{Name: fmt.Sprintf("d%d.txt", g), Data: []byte("east|north")}
					if _, err := p.Ingest(context.Background(), []api.Document{doc}); err != nil {
						t.Errorf("Ingest failed: %v", err)
					}
				case 1:
					if _, err := p.Build(context.Background()); err != nil {
						t.Errorf("Build failed: %v", err)
					}
				case 2:
					if _, err := p.Ask(context.Background(), "which way is east?", 2); err != nil {
						t.Errorf("Ask failed: %v", err)
					}
				case 3:
					if _, err := p.Reset(context.Background()); err != nil {
						t.Errorf("Reset failed: %v", err)
					}
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"shorter than limit", "short", 10, "short"},
		{"exactly limit", "12345", 5, "12345"},
		{"truncated", "1234567890", 4, "1234"},
		{"multibyte runes", "üüüüü", 3, "üüü"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preview(tt.text, tt.limit); got != tt.want {
				t.Errorf("preview(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}
