package document

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextReader handles plain text (.txt) questionnaires, one block per line.
type TextReader struct{}

func (r *TextReader) SupportedFormats() []string { return []string{"txt"} }

func (r *TextReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading text file: %v", ErrUnreadable, err)
	}

	var blocks []Block
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line != "" {
			blocks = append(blocks, TextBlock{Text: line})
		}
	}

	if len(blocks) == 0 {
		return nil, ErrEmpty
	}
	return &Document{Blocks: blocks}, nil
}
