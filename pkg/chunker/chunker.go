// Package chunker splits raw document text into overlapping, token-bounded
// segments suitable for embedding. Windows are measured in model tokens
// (tiktoken cl100k_base by default), not characters, so chunk boundaries
// line up with what the embedding model actually sees.
package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Config holds the chunking parameters.
type Config struct {
	// Tokens is the window size in tokens.
	Tokens int
	// Overlap is how many tokens consecutive windows share.
	Overlap int
	// Encoding is the tiktoken encoding name.
	Encoding string
}

// DefaultConfig returns the default chunking parameters: 400-token windows
// with a 60-token overlap under the cl100k_base encoding.
func DefaultConfig() Config {
	return Config{
		Tokens:   400,
		Overlap:  60,
		Encoding: "cl100k_base",
	}
}

// Chunker tokenizes text and produces overlapping windows. A Chunker is
// deterministic: the same input always yields the same chunk sequence.
// Safe for concurrent use.
type Chunker struct {
	enc     *tiktoken.Tiktoken
	tokens  int
	overlap int
}

// New creates a Chunker for the given config. Zero or negative Tokens and
// a negative Overlap are rejected; Overlap >= Tokens is allowed and floors
// the stride at one token.
func New(cfg Config) (*Chunker, error) {
	if cfg.Tokens <= 0 {
		return nil, fmt.Errorf("chunker: tokens must be > 0, got %d", cfg.Tokens)
	}
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must be >= 0, got %d", cfg.Overlap)
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = DefaultConfig().Encoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("chunker: loading encoding %q: %w", encoding, err)
	}

	return &Chunker{
		enc:     enc,
		tokens:  cfg.Tokens,
		overlap: cfg.Overlap,
	}, nil
}

// Chunk splits text into overlapping token windows, decodes each window
// back to text, and trims surrounding whitespace. Windows that are empty
// after trimming are dropped. Empty or whitespace-only input yields nil.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	toks := c.enc.Encode(text, nil, nil)
	if len(toks) == 0 {
		return nil
	}

	stride := c.tokens - c.overlap
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for i := 0; i < len(toks); i += stride {
		end := i + c.tokens
		if end > len(toks) {
			end = len(toks)
		}
		window := strings.TrimSpace(c.enc.Decode(toks[i:end]))
		if window != "" {
			chunks = append(chunks, window)
		}
	}
	return chunks
}

// CountTokens returns the number of tokens text encodes to. Used for
// logging and capacity decisions, not for chunk arithmetic.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
