package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Docx extracts text from Word .docx files. A .docx is a zip archive whose
// word/document.xml holds the body: paragraphs become lines, table rows
// become lines of tab-separated cell text. Formatting, headers, and
// embedded objects are ignored.
type Docx struct{}

var _ Extractor = Docx{}

// Extensions returns the extensions handled by Docx.
func (Docx) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the document body text, one line per paragraph or
// table row.
func (Docx) Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	return walkDocumentXML(rc)
}

// walkDocumentXML streams through the WordprocessingML body and collects
// visible text. Element names are matched by local name only, so the
// walker is independent of the namespace prefixes a producer chose.
func walkDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines      []string
		para       strings.Builder // current top-level paragraph
		cell       strings.Builder // current table cell
		rowCells   []string
		inText     bool
		tableDepth int
	)

	buf := func() *strings.Builder {
		if tableDepth > 0 {
			return &cell
		}
		return &para
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf().WriteByte('\t')
			case "br", "cr":
				buf().WriteByte('\n')
			case "tbl":
				tableDepth++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth > 0 {
					// Paragraph breaks inside a cell stay inside the cell.
					cell.WriteByte('\n')
				} else {
					lines = append(lines, para.String())
					para.Reset()
				}
			case "tc":
				rowCells = append(rowCells, strings.TrimSpace(cell.String()))
				cell.Reset()
			case "tr":
				lines = append(lines, strings.Join(rowCells, "\t"))
				rowCells = nil
			case "tbl":
				tableDepth--
			}
		case xml.CharData:
			if inText {
				buf().Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
