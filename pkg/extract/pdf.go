package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rhuss/auskunft/pkg/debug"
)

// PDF extracts text from PDF files page by page. A page that cannot be
// read contributes nothing; only a document that cannot be opened at all
// is an error. The pdf reader panics on some malformed inputs, so both
// the document and per-page paths convert panics into errors.
type PDF struct{}

var _ Extractor = PDF{}

// Extensions returns the extensions handled by PDF.
func (PDF) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the concatenated plain text of all readable pages,
// separated by blank lines.
func (PDF) Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		pageText, pageErr := extractPage(r, i)
		if pageErr != nil {
			debug.Log("extract", "skipping unreadable pdf page", "page", i, "error", pageErr.Error())
			continue
		}
		if pageText != "" {
			pages = append(pages, pageText)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

// extractPage reads the plain text of a single page, converting reader
// panics into errors so one bad page cannot abort the document.
func extractPage(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
