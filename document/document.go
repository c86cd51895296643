package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnreadable is returned when a document container cannot be opened
	// or decoded (corrupt file, wrong format).
	ErrUnreadable = errors.New("docsurvey: unreadable document")

	// ErrEmpty is returned when a document yields zero blocks.
	ErrEmpty = errors.New("docsurvey: document has no content")

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("docsurvey: unsupported document format")
)

// Block is one element of a document in reading order: either a paragraph
// of text or a table. It is a closed set; the parser switches on the
// concrete type.
type Block interface {
	isBlock()
}

// StyleHints carries the formatting cues a reader could recover for a
// paragraph. Readers that cannot recover a cue leave it zero.
type StyleHints struct {
	Style   string // paragraph style name ("Heading1", "Title", "Normal", ...)
	Heading bool   // style name indicates a heading or title
	Bold    bool   // all text runs in the paragraph are bold
}

// TextBlock is a single paragraph of text.
type TextBlock struct {
	Text  string
	Style StyleHints
}

// TableBlock is a table flattened to cell text, row-major.
type TableBlock struct {
	Rows [][]string
}

func (TextBlock) isBlock()  {}
func (TableBlock) isBlock() {}

// Document is the ordered block sequence produced by a Reader. It is
// transient: the parser consumes it once and discards it.
type Document struct {
	Title  string // container metadata title, may be empty
	Blocks []Block
}

// Reader opens a document container and yields its blocks in document
// order. Read drains the whole container and releases the file handle
// before returning, on all paths.
type Reader interface {
	Read(ctx context.Context, path string) (*Document, error)
	SupportedFormats() []string
}

// Registry maps file formats to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry returns a registry with the built-in readers registered.
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Reader)}

	docx := &DOCXReader{}
	legacy := &DOCReader{}
	xlsx := &XLSXReader{}
	pdf := &PDFReader{}
	text := &TextReader{}

	for _, rd := range []Reader{docx, legacy, xlsx, pdf, text} {
		for _, f := range rd.SupportedFormats() {
			r.readers[f] = rd
		}
	}
	return r
}

// Get returns the reader for a format.
func (r *Registry) Get(format string) (Reader, error) {
	rd, ok := r.readers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return rd, nil
}

// ForPath returns the reader for a file path, keyed on its extension.
func (r *Registry) ForPath(path string) (Reader, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return r.Get(format)
}

// Register adds or replaces the reader for a format.
func (r *Registry) Register(format string, rd Reader) {
	r.readers[format] = rd
}
