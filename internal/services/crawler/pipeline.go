package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/normalize"
)

// Pipeline turns frontier URLs into page records. Chunks of a batch run
// concurrently; within a chunk all fetches complete before parses are
// dispatched to the worker pool, so network wait and CPU-bound HTML
// parsing overlap across the batch.
type Pipeline struct {
	fetcher    *Fetcher
	quarantine *Quarantine
	knowledge  interfaces.KnowledgeService
	logger     arbor.ILogger

	chunkSize    int
	parseWorkers int
}

// BatchResult aggregates the outcome counters of one extracted batch
type BatchResult struct {
	Pages    []*models.PageRecord
	Failures int
	Skipped  int
}

// NewPipeline creates the fetch/extract pipeline
func NewPipeline(cfg *common.CrawlerConfig, fetcher *Fetcher, quarantine *Quarantine, knowledge interfaces.KnowledgeService, logger arbor.ILogger) *Pipeline {
	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}
	parseWorkers := cfg.ParseWorkers
	if parseWorkers < 1 {
		parseWorkers = 1
	}
	return &Pipeline{
		fetcher:      fetcher,
		quarantine:   quarantine,
		knowledge:    knowledge,
		logger:       logger,
		chunkSize:    chunkSize,
		parseWorkers: parseWorkers,
	}
}

// ExtractBatch processes a batch of URLs for one target. All chunks run
// concurrently; the fetch semaphore bounds actual request concurrency.
// Fetch or parse failures drop the page into the failure count, responses
// excluded by the content-type allowlist into the skipped count.
func (p *Pipeline) ExtractBatch(ctx context.Context, target *models.CrawlTarget, urls []string) *BatchResult {
	result := &BatchResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for start := 0; start < len(urls); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(urls) {
			end = len(urls)
		}
		chunk := urls[start:end]

		wg.Add(1)
		common.SafeGo(p.logger, "extract-chunk", func() {
			defer wg.Done()
			pages, failures, skipped := p.processChunk(ctx, target, chunk)
			mu.Lock()
			result.Pages = append(result.Pages, pages...)
			result.Failures += failures
			result.Skipped += skipped
			mu.Unlock()
		})
	}
	wg.Wait()

	return result
}

func (p *Pipeline) processChunk(ctx context.Context, target *models.CrawlTarget, urls []string) ([]*models.PageRecord, int, int) {
	// Fetch phase
	results := make([]*FetchResult, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		i, u := i, u
		wg.Add(1)
		common.SafeGo(p.logger, "fetch", func() {
			defer wg.Done()
			results[i] = p.fetcher.Fetch(ctx, u, target.CrawlDelay, true)
		})
	}
	wg.Wait()

	// Parse phase
	work := make(chan *FetchResult)
	pageCh := make(chan *models.PageRecord, len(urls))
	failCh := make(chan struct{}, len(urls))
	skipCh := make(chan struct{}, len(urls))

	var parseWG sync.WaitGroup
	for w := 0; w < p.parseWorkers; w++ {
		parseWG.Add(1)
		common.SafeGo(p.logger, "parse-worker", func() {
			defer parseWG.Done()
			for result := range work {
				if result == nil {
					failCh <- struct{}{}
					continue
				}
				if errors.Is(result.Err, ErrDisallowedContentType) {
					p.logger.Debug().Str("url", result.URL).Msg("Content type excluded from parsing")
					skipCh <- struct{}{}
					continue
				}
				page := p.parsePage(ctx, target, result)
				if page != nil {
					pageCh <- page
				} else {
					failCh <- struct{}{}
				}
			}
		})
	}

	for _, result := range results {
		work <- result
	}
	close(work)
	parseWG.Wait()
	close(pageCh)
	close(failCh)
	close(skipCh)

	var pages []*models.PageRecord
	for page := range pageCh {
		pages = append(pages, page)
	}
	return pages, len(failCh), len(skipCh)
}

// parsePage never lets a parser panic escape: malformed documents from
// hostile or broken sites must fail only the page they came from.
func (p *Pipeline) parsePage(ctx context.Context, target *models.CrawlTarget, result *FetchResult) (page *models.PageRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn().
				Str("url", result.URL).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Page parsing panicked")
			page = nil
		}
	}()

	if result.Err != nil {
		p.logger.Debug().Err(result.Err).Str("url", result.URL).Msg("Fetch failed")
		return nil
	}

	extracted, err := normalize.ExtractHTML(result.URL, result.Body)
	if err != nil {
		p.logger.Warn().Err(err).Str("url", result.URL).Msg("HTML extraction failed")
		return nil
	}

	page = &models.PageRecord{
		URL:       result.URL,
		Title:     extracted.Title,
		BodyText:  extracted.BodyText,
		Links:     extracted.Links,
		FetchedAt: time.Now().UTC(),
	}

	p.processAttachments(ctx, target, page)

	// Attachment text contributes to the page body and its score. Failed
	// attachments leave a marker the validator rejects on later.
	for _, att := range page.Attachments {
		if att.Failed() {
			page.BodyText += "\n\n" + normalize.AttachmentFailureMarker + " " + att.FileName + " ---"
		} else if att.ExtractedText != "" {
			page.BodyText += "\n\n" + att.ExtractedText
		}
	}
	page.QualityScore = normalize.QualityScore(page.BodyText)

	return page
}

// processAttachments fetches and parses document links found on the page.
// Viewer-wrapped URLs are unwrapped first; parse failures quarantine the
// raw bytes and feed the pattern failure counter.
func (p *Pipeline) processAttachments(ctx context.Context, target *models.CrawlTarget, page *models.PageRecord) {
	for _, link := range page.Links {
		docURL := common.UnwrapViewerURL(link.URL)
		if !normalize.IsAttachmentURL(docURL) {
			continue
		}

		record := models.AttachmentRecord{
			FileName:    fileNameFromURL(docURL),
			OriginalURL: docURL,
		}

		result := p.fetcher.Fetch(ctx, docURL, target.CrawlDelay, false)
		if result.Err != nil {
			p.logger.Debug().Err(result.Err).Str("url", docURL).Msg("Attachment fetch failed")
			continue
		}
		record.MimeType = result.ContentType

		text, err := normalize.ParseAttachment(docURL, result.Body)
		if err != nil {
			record.FailureReason = err.Error()
			record.LocalPath = p.quarantine.Save(target.SiteIdentifier, docURL, result.Body, err.Error())
			if kbErr := p.knowledge.RecordFailure(ctx, target.BaseDomain, docURL); kbErr != nil {
				p.logger.Debug().Err(kbErr).Str("url", docURL).Msg("Failed to record attachment failure")
			}
		} else {
			record.ExtractedText = text
		}

		page.Attachments = append(page.Attachments, record)
	}
}
