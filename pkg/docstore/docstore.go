// Package docstore provides the in-memory corpus of retrievable chunks.
// Chunks are stored in insertion order and addressed by position: a chunk's
// index in the store is its retrieval key, matched one-to-one against the
// vector index built from the same snapshot. Contents are lost when the
// process restarts.
package docstore

import "sync"

// Chunk is one retrievable unit of text: an overlapping segment of a source
// document. Source is the file name the text was extracted from. Chunks are
// immutable once appended and carry no ID of their own; identity is the
// position in the store.
type Chunk struct {
	Source string
	Text   string
}

// Store is an append-only, position-addressed collection of chunks.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	chunks []Chunk
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append adds a chunk to the end of the store.
func (s *Store) Append(source, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, Chunk{Source: source, Text: text})
}

// All returns a snapshot of the chunks in insertion order. The returned
// slice is a copy; later appends or a clear do not affect it.
func (s *Store) All() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Texts returns a snapshot of the chunk texts in insertion order. Position
// i of the result corresponds to position i of the store.
func (s *Store) Texts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = c.Text
	}
	return out
}

// Len returns the number of chunks in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear removes all chunks in one step.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}
