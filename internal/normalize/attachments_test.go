package normalize

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAttachmentURL(t *testing.T) {
	assert.True(t, IsAttachmentURL("https://example.com/files/report.pdf"))
	assert.True(t, IsAttachmentURL("https://example.com/files/data.XLSX"))
	assert.True(t, IsAttachmentURL("https://example.com/files/doc.hwp?download=1"))
	assert.False(t, IsAttachmentURL("https://example.com/board/view?id=3"))
	assert.False(t, IsAttachmentURL("https://example.com/image.png"))
}

func TestParseAttachmentUnsupported(t *testing.T) {
	_, err := ParseAttachment("https://example.com/file.zip", []byte("data"))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "unsupported file type", parseErr.Reason)
}

func TestParseHWPAlwaysFails(t *testing.T) {
	_, err := ParseAttachment("https://example.com/doc.hwp", []byte("HWP Document File"))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, ".hwp", parseErr.Format)
}

func TestParseAttachmentContainsParserPanics(t *testing.T) {
	original := parsers[".pdf"]
	parsers[".pdf"] = func(content []byte) (string, error) {
		panic("loading {3 0}: found {4 0}")
	}
	defer func() { parsers[".pdf"] = original }()

	text, err := ParseAttachment("https://example.com/broken.pdf", []byte("%PDF-1.4 garbage"))
	require.Error(t, err)
	assert.Empty(t, text)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, ".pdf", parseErr.Format)
	assert.Contains(t, parseErr.Reason, "parser panic")
	assert.Contains(t, parseErr.Reason, "loading {3 0}")
}

func TestParsePDFRejectsGarbage(t *testing.T) {
	_, err := ParsePDF([]byte("not a pdf at all"))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, ".pdf", parseErr.Format)
}

func TestParseDOCXRejectsGarbage(t *testing.T) {
	_, err := ParseDOCX([]byte("plainly not a zip"))
	require.Error(t, err)
}

func TestParsePPTX(t *testing.T) {
	slide := `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <a:p><a:r><a:t>Slide title here</a:t></a:r></a:p>
  <a:p><a:r><a:t>Bullet point content</a:t></a:r></a:p>
</p:sld>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("ppt/slides/slide1.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(slide))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := ParsePPTX(buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "Slide title here")
	assert.Contains(t, text, "Bullet point content")
}

func TestParsePPTXEmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())

	_, err := ParsePPTX(buf.Bytes())
	require.Error(t, err)
}
