package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// noiseMarkers flag boilerplate lines common on the civic sites this
// crawler targets: download/viewer chrome, list navigation, footers.
var noiseMarkers = []string{
	"다운로드", "뷰어", "첨부파일", "목록으로", "이전글", "다음글", "맨위로",
	"Copyright", "All rights reserved", "찾아오시는 길", "개인정보처리방침",
}

// metadataLabelRe matches posting-metadata lines (author, date, view count)
var metadataLabelRe = regexp.MustCompile(`^\s*(작성자|등록일|조회수|담당부서|키워드|분류)\s*[:\s]`)

// CleanText removes noise lines and collapses whitespace in extracted text.
// Short lines with no letters or digits, boilerplate markers, and posting
// metadata labels are dropped; surviving lines are trimmed and rejoined.
func CleanText(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if len([]rune(stripped)) < 10 && !hasTextContent(stripped) {
			continue
		}
		if isNoiseLine(stripped) {
			continue
		}
		if metadataLabelRe.MatchString(stripped) {
			continue
		}
		cleaned = append(cleaned, collapseSpaces(stripped))
	}
	return strings.Join(cleaned, "\n")
}

func hasTextContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isNoiseLine(s string) bool {
	for _, marker := range noiseMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

func collapseSpaces(s string) string {
	return multiSpaceRe.ReplaceAllString(s, " ")
}
