package docparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls text out of a PDF page by page. Pages whose content
// stream cannot be decoded are skipped so one broken page does not sink an
// otherwise readable document.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docparse: open pdf: %w", err)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pdfPageText(reader, i, fonts)
		if err != nil || text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("docparse: pdf: %w", ErrEmptyDocument)
	}
	return out, nil
}

// pdfPageText extracts one page. The underlying parser panics on some
// malformed content streams, so the panic is converted to an error here.
func pdfPageText(r *pdf.Reader, num int, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("docparse: pdf page %d: %v", num, rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := page.Font(name)
			fonts[name] = &f
		}
	}
	return page.GetPlainText(fonts)
}
