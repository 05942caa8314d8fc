package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads the WordprocessingML body of a .docx archive. Body
// paragraphs come first, then table content row by row with cells separated
// by single spaces, which mirrors how the documents read to a human.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docparse: open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docparse: docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docparse: read docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, rows, err := walkDocumentXML(rc)
	if err != nil {
		return "", fmt.Errorf("docparse: parse docx body: %w", err)
	}

	var sb strings.Builder
	for _, p := range paragraphs {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	for _, r := range rows {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}

// walkDocumentXML streams the document tokens once, routing run text (w:t)
// either into the current body paragraph or into the current table cell.
// Paragraphs nested inside tables belong to their cell, not the body.
func walkDocumentXML(r io.Reader) (paragraphs, rows []string, err error) {
	dec := xml.NewDecoder(r)

	var (
		para       strings.Builder
		cell       strings.Builder
		rowCells   []string
		tableDepth int
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					rowCells = rowCells[:0]
				}
			case "tc":
				if tableDepth > 0 {
					cell.Reset()
				}
			case "p":
				if tableDepth > 0 {
					if cell.Len() > 0 {
						cell.WriteByte('\n')
					}
				} else {
					inPara = true
					para.Reset()
				}
			case "t":
				inText = true
			case "tab":
				writeRunText(tableDepth > 0, &cell, inPara, &para, "\t")
			case "br":
				writeRunText(tableDepth > 0, &cell, inPara, &para, "\n")
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "tr":
				if tableDepth > 0 {
					rows = append(rows, strings.Join(rowCells, " "))
				}
			case "tc":
				if tableDepth > 0 {
					rowCells = append(rowCells, cell.String())
				}
			case "p":
				if tableDepth == 0 && inPara {
					paragraphs = append(paragraphs, para.String())
					inPara = false
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText {
				writeRunText(tableDepth > 0, &cell, inPara, &para, string(t))
			}
		}
	}

	return paragraphs, rows, nil
}

func writeRunText(inTable bool, cell *strings.Builder, inPara bool, para *strings.Builder, s string) {
	switch {
	case inTable:
		cell.WriteString(s)
	case inPara:
		para.WriteString(s)
	}
}
