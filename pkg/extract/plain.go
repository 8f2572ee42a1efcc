package extract

import "strings"

// PlainText extracts .txt and .md files. Bytes are interpreted as UTF-8;
// invalid sequences are dropped rather than replaced, mirroring a decode
// with errors ignored.
type PlainText struct{}

var _ Extractor = PlainText{}

// Extensions returns the extensions handled by PlainText.
func (PlainText) Extensions() []string {
	return []string{".txt", ".md"}
}

// Extract returns the file content as valid UTF-8 text.
func (PlainText) Extract(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
