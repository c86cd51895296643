package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCXReader reads zipped-XML Word documents (WordprocessingML).
type DOCXReader struct{}

func (r *DOCXReader) SupportedFormats() []string { return []string{"docx"} }

func (r *DOCXReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening DOCX: %v", ErrUnreadable, err)
	}
	defer zr.Close()

	fileIndex := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		fileIndex[f.Name] = f
	}

	docFile := fileIndex["word/document.xml"]
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found", ErrUnreadable)
	}

	data, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document.xml: %v", ErrUnreadable, err)
	}

	blocks, err := walkDocxBody(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing DOCX XML: %v", ErrUnreadable, err)
	}
	if len(blocks) == 0 {
		return nil, ErrEmpty
	}

	return &Document{
		Title:  readCoreTitle(fileIndex),
		Blocks: blocks,
	}, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// readCoreTitle pulls dc:title from docProps/core.xml. Missing or broken
// core properties are not an error; the title is simply absent.
func readCoreTitle(fileIndex map[string]*zip.File) string {
	cf := fileIndex["docProps/core.xml"]
	if cf == nil {
		return ""
	}
	data, err := readZipFile(cf)
	if err != nil {
		return ""
	}
	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return ""
	}
	return strings.TrimSpace(props.Title)
}

// walkDocxBody walks document.xml as a token stream so paragraphs and
// tables come out interleaved in true document order, which struct
// unmarshalling would lose. Paragraph style and run boldness are kept as
// hints; everything else about formatting is discarded.
func walkDocxBody(docXML []byte) ([]Block, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var blocks []Block

	// Paragraph state (outside tables).
	var para strings.Builder
	var style string
	inPara := false
	inPPr := false
	textRuns := 0
	boldRuns := 0

	// Run state.
	inRPr := false
	runBold := false
	inText := false

	// Table state. Only depth-1 rows become TableBlock rows; text inside
	// nested tables flows into the enclosing cell.
	tblDepth := 0
	var rows [][]string
	var row []string
	var cell strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					rows = nil
				}
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell.Reset()
				}
			case "p":
				if tblDepth == 0 {
					inPara = true
					para.Reset()
					style = ""
					textRuns = 0
					boldRuns = 0
				}
			case "pPr":
				inPPr = true
			case "pStyle":
				if inPPr && tblDepth == 0 {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							style = attr.Value
						}
					}
				}
			case "r":
				// A run with no rPr of its own is not bold; without the
				// reset it would inherit the previous run's state.
				runBold = false
			case "rPr":
				inRPr = true
				runBold = false
			case "b":
				if inRPr {
					runBold = boolAttr(t.Attr)
				}
			case "t":
				inText = true
			case "tab":
				if tblDepth > 0 {
					cell.WriteByte(' ')
				} else if inPara {
					para.WriteByte(' ')
				}
			}

		case xml.CharData:
			if !inText {
				continue
			}
			if tblDepth > 0 {
				cell.Write(t)
			} else if inPara {
				para.Write(t)
				textRuns++
				if runBold {
					boldRuns++
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRPr = false
			case "pPr":
				inPPr = false
			case "p":
				if tblDepth > 0 {
					// Paragraph break inside a cell.
					if cell.Len() > 0 {
						cell.WriteByte(' ')
					}
					continue
				}
				if !inPara {
					continue
				}
				inPara = false
				text := strings.TrimSpace(para.String())
				if text == "" {
					continue
				}
				blocks = append(blocks, TextBlock{
					Text: text,
					Style: StyleHints{
						Style:   style,
						Heading: isHeadingStyle(style),
						Bold:    textRuns > 0 && boldRuns == textRuns,
					},
				})
			case "tc":
				if tblDepth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
					cell.Reset()
				}
			case "tr":
				if tblDepth == 1 && len(row) > 0 {
					rows = append(rows, row)
					row = nil
				}
			case "tbl":
				tblDepth--
				if tblDepth == 0 && len(rows) > 0 {
					blocks = append(blocks, TableBlock{Rows: rows})
					rows = nil
				}
			}
		}
	}

	return blocks, nil
}

// boolAttr interprets a WordprocessingML on/off attribute. An element like
// <b/> with no val attribute means "on".
func boolAttr(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local == "val" {
			return a.Value != "false" && a.Value != "0" && a.Value != "off"
		}
	}
	return true
}

func isHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	return strings.HasPrefix(lower, "heading") || strings.HasPrefix(lower, "title")
}
