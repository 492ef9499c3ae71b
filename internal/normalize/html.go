// Package normalize turns raw fetched bytes into clean text: HTML body
// extraction, text cleanup, quality scoring, and attachment parsing.
package normalize

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
)

// removalSelectors are stripped from the document before any text extraction
var removalSelectors = []string{
	"script", "style", "noscript", "header", "footer", "nav", "aside", "form", "button",
}

// candidateSelectors are probed in order for the main content region. The
// first match yielding at least minRegionRunes of text wins; "body" is the
// terminal fallback.
var candidateSelectors = []string{
	"main", "article", "[role=main]", "#content", ".content", "#main", "#bodyContent", "body",
}

const minRegionRunes = 200

// ExtractedPage is the result of normalizing one HTML document
type ExtractedPage struct {
	Title    string
	BodyText string
	Links    []models.Link
}

// ExtractHTML parses an HTML document, strips chrome elements, locates the
// main content region, and collects same-domain links.
func ExtractHTML(pageURL string, body []byte) (*ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	// Links are collected before chrome removal so navigation areas still
	// contribute to frontier discovery.
	links := extractLinks(doc, pageURL)

	for _, sel := range removalSelectors {
		doc.Find(sel).Remove()
	}

	text := selectContentRegion(doc)

	return &ExtractedPage{
		Title:    title,
		BodyText: CleanText(text),
		Links:    links,
	}, nil
}

func selectContentRegion(doc *goquery.Document) string {
	for _, sel := range candidateSelectors {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		text := region.Text()
		if len([]rune(strings.TrimSpace(text))) >= minRegionRunes {
			return text
		}
		if sel == "body" {
			return text
		}
	}
	return doc.Text()
}

func extractLinks(doc *goquery.Document, pageURL string) []models.Link {
	var links []models.Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved := common.ResolveLink(pageURL, href)
		if resolved == "" || !common.SameDomain(pageURL, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, models.Link{
			URL:        resolved,
			AnchorText: strings.TrimSpace(s.Text()),
		})
	})

	return links
}
