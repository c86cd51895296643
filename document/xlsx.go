package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads spreadsheet questionnaires. Runs of multi-cell rows
// become TableBlocks (option grids); rows with a single populated cell
// become TextBlocks.
type XLSXReader struct{}

func (r *XLSXReader) SupportedFormats() []string { return []string{"xlsx"} }

func (r *XLSXReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening XLSX: %v", ErrUnreadable, err)
	}
	defer f.Close()

	var blocks []Block

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		var table [][]string
		flush := func() {
			if len(table) > 0 {
				blocks = append(blocks, TableBlock{Rows: table})
				table = nil
			}
		}

		for _, row := range rows {
			// Interior empty cells keep their positions so grid columns
			// stay aligned; only trailing empties are dropped.
			cells := make([]string, len(row))
			populated := 0
			last := -1
			lone := ""
			for i, c := range row {
				t := strings.TrimSpace(c)
				cells[i] = t
				if t != "" {
					populated++
					last = i
					lone = t
				}
			}
			cells = cells[:last+1]
			switch populated {
			case 0:
				// Blank row ends an option grid.
				flush()
			case 1:
				flush()
				blocks = append(blocks, TextBlock{Text: lone})
			default:
				table = append(table, cells)
			}
		}
		flush()
	}

	if len(blocks) == 0 {
		return nil, ErrEmpty
	}

	title, _ := f.GetDocProps()
	doc := &Document{Blocks: blocks}
	if title != nil {
		doc.Title = strings.TrimSpace(title.Title)
	}
	return doc, nil
}
