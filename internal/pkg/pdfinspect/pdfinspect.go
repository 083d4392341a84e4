package pdfinspect

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("file is not a readable PDF")

var pdfMagic = []byte("%PDF-")

// PageCount parses b as a PDF and returns its number of pages. Scanned
// papers carry no text layer, so only the document structure is checked.
func PageCount(b []byte) (n int, err error) {
	if len(b) == 0 || !bytes.HasPrefix(b, pdfMagic) {
		return 0, ErrNotPDF
	}
	// the parser panics on some truncated xref tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	pages := reader.NumPage()
	if pages <= 0 {
		return 0, ErrNotPDF
	}
	return pages, nil
}
