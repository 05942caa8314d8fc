package docparse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a one-page PDF showing text with the built-in
// Helvetica font. Object offsets are computed while writing so the xref
// table is exact.
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 6)
	buf.WriteString("%PDF-1.4\n")

	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	obj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	obj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", xref)
	return buf.Bytes()
}

// buildDOCX zips the given WordprocessingML body into a minimal .docx.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_PlainText(t *testing.T) {
	text, err := Parse("notes.txt", []byte("line one\r\nline two\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestParse_Markdown(t *testing.T) {
	text, err := Parse("PRD.md", []byte("# Checkout\n\nUsers pay by card.\n"))
	require.NoError(t, err)
	assert.Equal(t, "# Checkout\n\nUsers pay by card.", text)
}

func TestParse_TextCharsetFallback(t *testing.T) {
	// "café requirements" exported as latin-1; 0xe9 is invalid UTF-8 here.
	data := []byte("caf\xe9 requirements")
	text, err := Parse("legacy.txt", data)
	require.NoError(t, err)
	assert.Equal(t, "café requirements", text)
}

func TestParse_DOCX(t *testing.T) {
	doc := buildDOCX(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Product Requirements</w:t></w:r></w:p>
<w:p><w:r><w:t>Users sign up and </w:t></w:r><w:r><w:t>create projects.</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Feature</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Priority</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Checkout</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>P0</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body>
</w:document>`)

	text, err := Parse("prd.docx", doc)
	require.NoError(t, err)
	assert.Equal(t, "Product Requirements\nUsers sign up and create projects.\nFeature Priority\nCheckout P0", text)
}

func TestParse_DOCXWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Parse("broken.docx", buf.Bytes())
	assert.ErrorContains(t, err, "word/document.xml")
}

func TestParse_PDF(t *testing.T) {
	pdfBytes := buildPDF(t, "Checkout flow requirements")
	text, err := Parse("flow.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Contains(t, text, "Checkout flow requirements")
}

func TestParse_CorruptPDF(t *testing.T) {
	_, err := Parse("broken.pdf", []byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestParse_UnsupportedType(t *testing.T) {
	_, err := Parse("report.exe", []byte{0x4d, 0x5a, 0x00, 0x01})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse("blank.txt", []byte("   \n\t  \n"))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestParse_SniffsMissingExtension(t *testing.T) {
	// No extension on the name; content sniffing routes it to the text path.
	text, err := Parse("README", []byte("Plain words, no extension."))
	require.NoError(t, err)
	assert.Equal(t, "Plain words, no extension.", text)

	// PDF magic wins over the bare name too.
	pdfBytes := buildPDF(t, "Sniffed document")
	text, err = Parse("upload", pdfBytes)
	require.NoError(t, err)
	assert.Contains(t, text, "Sniffed document")
}
