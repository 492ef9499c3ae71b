package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ParseDOCX extracts plain text from a Word document
func ParseDOCX(content []byte) (string, error) {
	// DOCX files are ZIP containers
	if len(content) < 4 || content[0] != 0x50 || content[1] != 0x4B {
		return "", &ParseError{Format: ".docx", Reason: "missing ZIP signature"}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &ParseError{Format: ".docx", Reason: fmt.Sprintf("failed to parse: %v", err)}
	}
	defer doc.Close()

	text := doc.Editable().GetContent()
	text = stripXMLTags(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", &ParseError{Format: ".docx", Reason: "no extractable text"}
	}
	return text, nil
}

// stripXMLTags drops markup from document.xml content, inserting line
// breaks at paragraph boundaries
func stripXMLTags(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
