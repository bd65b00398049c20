package media

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// CountPDFPages returns the page count, or 0 when the PDF cannot be parsed.
// An unreadable PDF is still stored: the extraction model may cope with it.
func CountPDFPages(data []byte) (pages int) {
	// The parser panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if reader.Page(i).V.IsNull() {
			continue
		}
		pages++
	}

	return pages
}
