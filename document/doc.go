package document

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DOCReader reads legacy binary Word documents (OLE2 compound files).
// Text is recovered from the WordDocument stream via the FIB and piece
// table; character formatting beyond the text itself is not available, so
// blocks carry no style hints.
type DOCReader struct{}

func (r *DOCReader) SupportedFormats() []string { return []string{"doc"} }

func (r *DOCReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening DOC: %v", ErrUnreadable, err)
	}
	defer f.Close()

	cfb, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: not an OLE2 compound file: %v", ErrUnreadable, err)
	}

	var wordStream, table0, table1 []byte
	title := ""

	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		name := strings.TrimPrefix(entry.Name, "\x05")
		switch name {
		case "WordDocument":
			wordStream = readStream(entry, entry.Size)
		case "0Table":
			table0 = readStream(entry, entry.Size)
		case "1Table":
			table1 = readStream(entry, entry.Size)
		case "SummaryInformation":
			title = summaryTitle(entry)
		}
	}

	if wordStream == nil {
		return nil, fmt.Errorf("%w: WordDocument stream not found", ErrUnreadable)
	}

	text, err := extractDocText(wordStream, table0, table1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	blocks := splitDocText(text)
	if len(blocks) == 0 {
		return nil, ErrEmpty
	}

	return &Document{Title: title, Blocks: blocks}, nil
}

func readStream(r io.Reader, size int64) []byte {
	buf := make([]byte, size)
	n, _ := io.ReadFull(r, buf)
	return buf[:n]
}

// summaryTitle reads the Title property from the SummaryInformation
// property set. Failure just means no title.
func summaryTitle(r io.Reader) string {
	ps := msoleps.New()
	if err := ps.Reset(r); err != nil {
		return ""
	}
	for _, prop := range ps.Property {
		if prop.Name == "Title" {
			return strings.TrimSpace(prop.String())
		}
	}
	return ""
}

const (
	fibIdent    = 0xA5EC
	fibFlagsOff = 0x000A
	fcClxOff    = 0x01A2
	lcbClxOff   = 0x01A6

	fWhichTblStm = 0x0200
	fcCompressed = 0x40000000
)

// extractDocText walks the FIB and CLX piece table and decodes each text
// piece. Pieces flagged compressed hold Windows-1252 bytes at fc/2;
// everything else is UTF-16LE at fc.
func extractDocText(word, table0, table1 []byte) (string, error) {
	if len(word) < lcbClxOff+4 {
		return "", fmt.Errorf("WordDocument stream truncated (%d bytes)", len(word))
	}
	if binary.LittleEndian.Uint16(word[0:2]) != fibIdent {
		return "", fmt.Errorf("not a Word binary file (wIdent %#x)", binary.LittleEndian.Uint16(word[0:2]))
	}

	tableStream := table0
	if binary.LittleEndian.Uint16(word[fibFlagsOff:])&fWhichTblStm != 0 {
		tableStream = table1
	}
	if tableStream == nil {
		return "", fmt.Errorf("table stream not found")
	}

	fcClx := binary.LittleEndian.Uint32(word[fcClxOff:])
	lcbClx := binary.LittleEndian.Uint32(word[lcbClxOff:])
	if lcbClx == 0 || int(fcClx)+int(lcbClx) > len(tableStream) {
		return "", fmt.Errorf("piece table out of range (fc=%d lcb=%d stream=%d)", fcClx, lcbClx, len(tableStream))
	}

	plc, err := findPieceTable(tableStream[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	pieces, err := parsePieceTable(plc)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range pieces {
		runEnd := p.offset + p.byteLen
		if p.offset > len(word) || runEnd > len(word) {
			return "", fmt.Errorf("text piece out of range (off=%d len=%d)", p.offset, p.byteLen)
		}
		decoded, derr := decodePiece(word[p.offset:runEnd], p.compressed)
		if derr != nil {
			return "", fmt.Errorf("decoding text piece: %v", derr)
		}
		b.WriteString(decoded)
	}
	return b.String(), nil
}

// findPieceTable skips the Prc property blocks (clxt=1) at the start of a
// CLX and returns the PlcPcd payload of the Pcdt block (clxt=2).
func findPieceTable(clx []byte) ([]byte, error) {
	pos := 0
	for pos < len(clx) && clx[pos] == 0x01 {
		if pos+3 > len(clx) {
			return nil, fmt.Errorf("malformed CLX (truncated Prc)")
		}
		cb := int(binary.LittleEndian.Uint16(clx[pos+1:]))
		pos += 3 + cb
	}
	if pos >= len(clx) || clx[pos] != 0x02 {
		return nil, fmt.Errorf("malformed CLX (no Pcdt)")
	}
	if pos+5 > len(clx) {
		return nil, fmt.Errorf("malformed CLX (truncated Pcdt)")
	}
	lcb := int(binary.LittleEndian.Uint32(clx[pos+1:]))
	pos += 5
	if pos+lcb > len(clx) {
		return nil, fmt.Errorf("malformed CLX (Pcdt overruns)")
	}
	return clx[pos : pos+lcb], nil
}

type textPiece struct {
	offset     int // byte offset into the WordDocument stream
	byteLen    int
	compressed bool // Windows-1252 instead of UTF-16LE
}

// parsePieceTable decodes a PlcPcd: n+1 character positions followed by
// n piece descriptors of 8 bytes each.
func parsePieceTable(plc []byte) ([]textPiece, error) {
	if (len(plc)-4)%12 != 0 {
		return nil, fmt.Errorf("malformed PlcPcd (%d bytes)", len(plc))
	}
	n := (len(plc) - 4) / 12
	if n == 0 {
		return nil, fmt.Errorf("empty piece table")
	}

	cps := make([]uint32, n+1)
	for i := range cps {
		cps[i] = binary.LittleEndian.Uint32(plc[i*4:])
	}

	pieces := make([]textPiece, 0, n)
	pcdBase := (n + 1) * 4
	for i := 0; i < n; i++ {
		fc := binary.LittleEndian.Uint32(plc[pcdBase+i*8+2:])
		chars := int(cps[i+1] - cps[i])

		if fc&fcCompressed != 0 {
			pieces = append(pieces, textPiece{
				offset:     int(fc&^fcCompressed) / 2,
				byteLen:    chars,
				compressed: true,
			})
		} else {
			pieces = append(pieces, textPiece{
				offset:  int(fc),
				byteLen: chars * 2,
			})
		}
	}
	return pieces, nil
}

func decodePiece(data []byte, compressed bool) (string, error) {
	if compressed {
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// splitDocText turns raw Word text into blocks. Paragraphs end with \r;
// table cells end with 0x07, and a lone 0x07 after the last cell closes
// the row. Field and object control characters are dropped.
func splitDocText(text string) []Block {
	var blocks []Block
	var cur strings.Builder
	var row []string
	var rows [][]string

	flushTable := func() {
		if len(rows) > 0 {
			blocks = append(blocks, TableBlock{Rows: rows})
			rows = nil
		}
	}
	flushPara := func() {
		t := strings.TrimSpace(cur.String())
		cur.Reset()
		if t != "" {
			flushTable()
			blocks = append(blocks, TextBlock{Text: t})
		}
	}

	for _, r := range text {
		switch r {
		case '\x07':
			cellText := strings.TrimSpace(cur.String())
			cur.Reset()
			if cellText == "" && len(row) > 0 {
				// Row mark immediately after the last cell mark.
				rows = append(rows, row)
				row = nil
			} else {
				row = append(row, cellText)
			}
		case '\r', '\x0b', '\x0c':
			if len(row) > 0 {
				// Paragraph break inside a table cell.
				if cur.Len() > 0 {
					cur.WriteByte(' ')
				}
			} else {
				flushPara()
			}
		case '\t':
			cur.WriteByte(' ')
		case '\x13', '\x14', '\x15', '\x01', '\x02', '\x05', '\x08', '\x00':
			// Field marks, embedded objects, annotation refs.
		default:
			if r >= 0x20 || r == '\n' {
				cur.WriteRune(r)
			}
		}
	}

	// Leftover cells belong to an unterminated row.
	if t := strings.TrimSpace(cur.String()); t != "" && len(row) > 0 {
		row = append(row, t)
		cur.Reset()
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	flushPara()
	flushTable()

	return blocks
}
