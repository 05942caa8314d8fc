package docparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// extractText decodes a plain text or markdown upload. Valid UTF-8 passes
// through untouched; anything else goes through charset detection, which
// covers the latin-1 and cp1252 exports older authoring tools still produce.
func extractText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, name, _ := charset.DetermineEncoding(data, "text/plain")
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("docparse: transcode from %s: %w", name, err)
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("docparse: could not decode text file")
	}
	return string(decoded), nil
}
