package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParsePDF extracts plain text from a PDF document. Pages that fail to
// decode are skipped; a document yielding no text at all is an error.
func ParsePDF(content []byte) (string, error) {
	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return "", &ParseError{Format: ".pdf", Reason: "missing PDF header"}
	}

	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &ParseError{Format: ".pdf", Reason: fmt.Sprintf("failed to parse: %v", err)}
	}

	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &ParseError{Format: ".pdf", Reason: "no extractable text"}
	}
	return text, nil
}
