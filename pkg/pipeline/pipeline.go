// Package pipeline implements the retrieval pipeline: document ingestion,
// index building, retrieval-augmented question answering, and reset. A
// Pipeline owns the document store and the vector index and serializes
// all operations behind one exclusive lock, so positional chunk identity
// holds from build to ask.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rhuss/auskunft/pkg/api"
	"github.com/rhuss/auskunft/pkg/debug"
	"github.com/rhuss/auskunft/pkg/docstore"
	"github.com/rhuss/auskunft/pkg/observability"
	"github.com/rhuss/auskunft/pkg/provider"
	"github.com/rhuss/auskunft/pkg/vectorindex"
)

// TextExtractor converts raw document bytes into plain text. Implementations
// return "" for anything they cannot handle; the pipeline skips such
// documents without error.
type TextExtractor interface {
	Text(data []byte, filename string) string
}

// Chunker splits plain text into retrievable chunks.
type Chunker interface {
	Chunk(text string) []string
}

// Config holds tuning knobs for the retrieval pipeline.
type Config struct {
	// TopKDefault is the number of chunks retrieved when a question does
	// not specify top_k. Zero or negative means the default of 6.
	TopKDefault int

	// PreviewChars bounds the length of source previews in characters.
	// Zero or negative means the default of 300.
	PreviewChars int
}

// topK returns the effective default top_k value.
func (c Config) topK() int {
	if c.TopKDefault <= 0 {
		return 6
	}
	return c.TopKDefault
}

// previewChars returns the effective preview bound.
func (c Config) previewChars() int {
	if c.PreviewChars <= 0 {
		return 300
	}
	return c.PreviewChars
}

// ScoredChunk is one retrieved chunk with its similarity score. Position
// is the chunk's 0-based index in the document store.
type ScoredChunk struct {
	Position int
	Source   string
	Text     string
	Score    float32
}

// Pipeline orchestrates extraction, chunking, embedding, indexing, and
// answering. All exported operations are safe for concurrent use; they
// run one at a time.
type Pipeline struct {
	extractor TextExtractor
	chunker   Chunker
	embedder  provider.Embedder
	generator provider.Generator
	cfg       Config

	mu    sync.Mutex
	store *docstore.Store
	index *vectorindex.Index
}

// New creates a Pipeline. All collaborators are required.
func New(extractor TextExtractor, chunker Chunker, embedder provider.Embedder, generator provider.Generator, cfg Config) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("pipeline: extractor must not be nil")
	}
	if chunker == nil {
		return nil, fmt.Errorf("pipeline: chunker must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("pipeline: embedder must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("pipeline: generator must not be nil")
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
		store:     docstore.New(),
	}, nil
}

// Ingest extracts text from the given documents, chunks it, and appends
// the chunks to the document store. Documents that yield no text are
// skipped silently. The index is not touched; an existing index keeps
// serving the corpus it was built from until the next Build.
func (p *Pipeline) Ingest(ctx context.Context, docs []api.Document) (*api.IngestResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for _, doc := range docs {
		text := p.extractor.Text(doc.Data, doc.Name)
		if strings.TrimSpace(text) == "" {
			debug.Log("pipeline", "document yielded no text", "name", doc.Name)
			continue
		}
		chunks := p.chunker.Chunk(text)
		for _, chunk := range chunks {
			p.store.Append(doc.Name, chunk)
		}
		added += len(chunks)
		debug.Log("pipeline", "document ingested", "name", doc.Name, "chunks", len(chunks))
	}

	observability.DocumentsIngestedTotal.Add(float64(len(docs)))
	observability.ChunksIngestedTotal.Add(float64(added))
	observability.ChunksTotal.Set(float64(p.store.Len()))

	return &api.IngestResponse{
		Status:      api.StatusOK,
		Files:       len(docs),
		ChunksAdded: added,
		TotalChunks: p.store.Len(),
	}, nil
}

// Build embeds every stored chunk in order and replaces the vector index.
// An empty store succeeds with Chunks 0 and leaves no index. On any
// embedding failure the previous index stays in place.
func (p *Pipeline) Build(ctx context.Context) (*api.BuildResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	texts := p.store.Texts()
	if len(texts) == 0 {
		return &api.BuildResponse{
			Status:  api.StatusOK,
			Chunks:  0,
			Message: "No documents to index. Please upload files and try again.",
		}, nil
	}

	start := time.Now()
	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		observability.IndexBuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(embeddings) != len(texts) {
		observability.IndexBuildsTotal.WithLabelValues("error").Inc()
		return nil, api.NewModelError(fmt.Sprintf(
			"embedder returned %d vectors for %d chunks", len(embeddings), len(texts)))
	}

	index, err := vectorindex.Build(embeddings)
	if err != nil {
		observability.IndexBuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// Replace the prior index only now that the whole build succeeded.
	p.index = index

	observability.IndexBuildsTotal.WithLabelValues("success").Inc()
	observability.IndexBuildDuration.Observe(time.Since(start).Seconds())
	debug.Log("pipeline", "index built", "chunks", len(texts), "dimensions", index.Dim())

	return &api.BuildResponse{Status: api.StatusOK, Chunks: len(texts)}, nil
}

// Ask answers a question from the indexed corpus. Without an index (or
// with an empty store) it returns the fixed insufficient-information
// answer; an empty question returns the no-question status. Both early
// outs happen before any provider call, state checked first as in the
// upload/build/ask flow the API mirrors.
func (p *Pipeline) Ask(ctx context.Context, question string, topK int) (*api.AskResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index == nil || p.store.Len() == 0 {
		observability.QuestionsTotal.WithLabelValues("insufficient").Inc()
		return &api.AskResponse{
			Status:  api.StatusOK,
			Answer:  insufficientAnswer,
			Sources: []api.Source{},
		}, nil
	}

	if strings.TrimSpace(question) == "" {
		observability.QuestionsTotal.WithLabelValues(api.StatusNoQuestion).Inc()
		return &api.AskResponse{Status: api.StatusNoQuestion, Sources: []api.Source{}}, nil
	}

	chunks, err := p.retrieveLocked(ctx, question, topK)
	if err != nil {
		observability.QuestionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	answer, err := p.generator.Generate(ctx, buildPrompt(question, chunks))
	if err != nil {
		observability.QuestionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	sources := make([]api.Source, len(chunks))
	for i, c := range chunks {
		sources[i] = api.Source{
			ID:      i + 1,
			Source:  c.Source,
			Preview: preview(c.Text, p.cfg.previewChars()),
		}
	}

	observability.QuestionsTotal.WithLabelValues(api.StatusOK).Inc()
	return &api.AskResponse{Status: api.StatusOK, Answer: answer, Sources: sources}, nil
}

// Retrieve runs the retrieval half of Ask: embed the question, search,
// and map positions back to chunks, without generation. A missing index,
// empty store, or empty question yields an empty result.
func (p *Pipeline) Retrieve(ctx context.Context, question string, topK int) ([]ScoredChunk, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index == nil || p.store.Len() == 0 {
		return nil, nil
	}
	if strings.TrimSpace(question) == "" {
		return nil, nil
	}
	return p.retrieveLocked(ctx, question, topK)
}

// retrieveLocked embeds the question and searches the index. The caller
// must hold p.mu and have checked that an index exists.
func (p *Pipeline) retrieveLocked(ctx context.Context, question string, topK int) ([]ScoredChunk, error) {
	vecs, err := p.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, api.NewModelError(fmt.Sprintf(
			"embedder returned %d vectors for one question", len(vecs)))
	}

	// Clamp top_k into [1, corpus size], defaulting when unspecified.
	k := topK
	if k <= 0 {
		k = p.cfg.topK()
	}
	if k > p.index.Len() {
		k = p.index.Len()
	}
	if k < 1 {
		k = 1
	}

	hits, err := p.index.Search(vecs[0], k)
	if err != nil {
		return nil, err
	}

	chunks := p.store.All()
	out := make([]ScoredChunk, len(hits))
	for i, h := range hits {
		c := chunks[h.Position]
		out[i] = ScoredChunk{
			Position: h.Position,
			Source:   c.Source,
			Text:     c.Text,
			Score:    h.Score,
		}
	}

	debug.Log("pipeline", "retrieved chunks", "question_len", len(question), "top_k", k, "hits", len(out))
	return out, nil
}

// Reset clears the document store and discards the index.
func (p *Pipeline) Reset(ctx context.Context) (*api.ResetResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.Clear()
	p.index = nil
	observability.ChunksTotal.Set(0)
	debug.Log("pipeline", "pipeline reset")

	return &api.ResetResponse{Status: api.StatusOK}, nil
}
