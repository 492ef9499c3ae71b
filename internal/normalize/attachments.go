package normalize

import (
	"fmt"
	"path"
	"strings"
)

// ParseError is a non-retryable attachment parsing failure. It carries the
// format and reason so quarantined files keep a usable failure record.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse failed: %s", e.Format, e.Reason)
}

// AttachmentFailureMarker is stitched into page text where an attachment
// could not be parsed, so downstream validation can spot and reject the
// record without reparsing anything.
const AttachmentFailureMarker = "--- attachment extraction failed:"

// AttachmentParser extracts plain text from one document format
type AttachmentParser func(content []byte) (string, error)

// parsers maps lowercase file extensions to their parser. HWP has an
// entry so the extension is recognised as an attachment; the parser
// itself always fails since no pure-Go HWP reader exists.
var parsers = map[string]AttachmentParser{
	".pdf":  ParsePDF,
	".docx": ParseDOCX,
	".xlsx": ParseExcel,
	".xls":  ParseExcel,
	".pptx": ParsePPTX,
	".hwp":  parseHWP,
}

// IsAttachmentURL reports whether a URL points at a parseable document
func IsAttachmentURL(rawURL string) bool {
	_, ok := parsers[attachmentExt(rawURL)]
	return ok
}

// ParseAttachment dispatches to the parser for the URL's file extension.
// Unknown extensions, parser failures, and parser panics all come back as
// a *ParseError; malformed documents must never take the caller down.
func ParseAttachment(rawURL string, content []byte) (text string, err error) {
	ext := attachmentExt(rawURL)
	parser, ok := parsers[ext]
	if !ok {
		return "", &ParseError{Format: ext, Reason: "unsupported file type"}
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ParseError{Format: ext, Reason: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	raw, err := parser(content)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return "", pe
		}
		return "", &ParseError{Format: ext, Reason: err.Error()}
	}
	return CleanText(raw), nil
}

func attachmentExt(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}

// parseHWP always fails with a typed error. The format is proprietary
// and has no workable Go parser, but the files still get fetched and
// quarantined so their path patterns accumulate failure counts.
func parseHWP(content []byte) (string, error) {
	return "", &ParseError{Format: ".hwp", Reason: "hwp extraction not supported"}
}
