package pdftext

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PathResolver maps a storage key to an on-disk path. The PDF parser
// needs a seekable file, not a stream.
type PathResolver interface {
	Path(key string) string
}

// Reader pulls the text layer out of stored PDF files page by page.
// Scanned PDFs without a text layer produce empty page strings; they are
// not routed through vision OCR.
type Reader struct {
	paths PathResolver
}

func NewReader(paths PathResolver) *Reader {
	return &Reader{paths: paths}
}

func (r *Reader) ReadPages(key string) ([]string, error) {
	file, doc, err := pdf.Open(r.paths.Path(key))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	total := doc.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
