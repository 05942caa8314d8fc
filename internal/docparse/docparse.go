// Package docparse extracts plain text from uploaded product documents.
//
// Supported formats are PDF, DOCX, and plain text (.txt, .md). Dispatch is
// by filename extension, with content sniffing as a fallback when the name
// carries no usable extension. All extractors return UTF-8 text with
// normalized newlines and surrounding whitespace trimmed.
package docparse

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedType reports an upload in a format no extractor handles.
	ErrUnsupportedType = errors.New("docparse: unsupported file type")

	// ErrEmptyDocument reports a document that parsed but yielded no text.
	ErrEmptyDocument = errors.New("docparse: no readable content")
)

// Formats lists the upload formats Parse understands, for capability
// reporting.
func Formats() []string {
	return []string{"PDF", "DOCX", "TXT", "MD"}
}

// Parse extracts the plain text of an uploaded document. The filename picks
// the extractor; when it has no extension the content type is sniffed
// instead.
func Parse(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = sniffExtension(data)
	}

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md", ".markdown":
		text, err = extractText(data)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(normalizeNewlines(text))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// sniffExtension maps a detected MIME type onto one of the extensions Parse
// dispatches on. Unknown content yields "" and falls through to
// ErrUnsupportedType.
func sniffExtension(data []byte) string {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return ".pdf"
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return ".docx"
	case strings.HasPrefix(mt.String(), "text/"):
		return ".txt"
	}
	return ""
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
