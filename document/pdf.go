package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader reads PDF questionnaires. Each non-empty line of page text
// becomes a TextBlock; PDFs carry no usable style hints or tables here.
type PDFReader struct{}

func (r *PDFReader) SupportedFormats() []string { return []string{"pdf"} }

func (r *PDFReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening PDF: %v", ErrUnreadable, err)
	}
	defer f.Close()

	var blocks []Block
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract.
			continue
		}

		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				blocks = append(blocks, TextBlock{Text: line})
			}
		}
	}

	if len(blocks) == 0 {
		return nil, ErrEmpty
	}
	return &Document{Blocks: blocks}, nil
}
