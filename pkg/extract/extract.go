// Package extract turns uploaded document bytes into plain text.
//
// Each supported format has its own Extractor; a Registry picks the
// extractor by file extension. Extraction is best-effort: an unsupported
// format or a failed extraction resolves to an empty string at the
// Registry level, so a single broken document never fails an ingest
// batch. Failures are visible through debug logging only.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/rhuss/auskunft/pkg/debug"
)

// Extractor converts one document format into plain text.
type Extractor interface {
	// Extensions returns the lowercase file extensions (including the
	// leading dot) this extractor handles.
	Extensions() []string

	// Extract returns the plain text contained in data. An error means
	// the document yields no usable text.
	Extract(data []byte) (string, error)
}

// Registry resolves documents to extractors by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a Registry serving the given extractors. Later
// extractors win when extensions collide.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// DefaultRegistry returns a Registry with all built-in extractors: plain
// text (.txt, .md), PDF (.pdf), and Word (.docx). Legacy .doc files have
// no extractor and resolve to the empty marker like any unknown format.
func DefaultRegistry() *Registry {
	return NewRegistry(PlainText{}, PDF{}, Docx{})
}

// Text extracts the plain text of a document, best-effort. Unsupported
// extensions and extraction failures return the empty string; callers
// treat that as "no extractable text" and skip the document.
func (r *Registry) Text(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		debug.Log("extract", "no extractor for file", "file", filename, "ext", ext)
		return ""
	}

	text, err := e.Extract(data)
	if err != nil {
		debug.Log("extract", "extraction failed", "file", filename, "error", err.Error())
		return ""
	}
	return text
}

// Supports reports whether the registry has an extractor for the given
// file name's extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}
