// Package crawler implements the bounded crawl session: a breadth-first
// frontier, a batched fetch/extract pipeline, and the skip logic driven
// by the knowledge base and content ledger.
package crawler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/services/pagestore"
)

// Service implements interfaces.CrawlService
type Service struct {
	config    *common.CrawlerConfig
	pipeline  *Pipeline
	knowledge interfaces.KnowledgeService
	ledger    interfaces.LedgerService
	store     *pagestore.Store
	logger    arbor.ILogger
}

// NewService creates a crawl service
func NewService(cfg *common.CrawlerConfig, pipeline *Pipeline, knowledge interfaces.KnowledgeService, ledger interfaces.LedgerService, store *pagestore.Store, logger arbor.ILogger) *Service {
	return &Service{
		config:    cfg,
		pipeline:  pipeline,
		knowledge: knowledge,
		ledger:    ledger,
		store:     store,
		logger:    logger,
	}
}

// Crawl runs one bounded session for a target: seeds the frontier with
// the base URL and processes batches breadth-first until the page budget
// is spent or the frontier drains.
func (s *Service) Crawl(ctx context.Context, target *models.CrawlTarget) (*models.CrawlStats, error) {
	if err := target.Resolve(); err != nil {
		return nil, err
	}
	if err := s.store.EnsureSiteDirs(target.SiteIdentifier); err != nil {
		return nil, err
	}

	start := time.Now()
	stats := &models.CrawlStats{}
	frontier := NewFrontier(s.config.QueueLimit)
	frontier.Push(target.BaseURL)

	s.logger.Info().
		Str("site", target.SiteIdentifier).
		Str("base_url", target.BaseURL).
		Int("max_pages", target.MaxPages).
		Msg("Crawl session started")

	for stats.PagesProcessed < target.MaxPages && frontier.Len() > 0 {
		if ctx.Err() != nil {
			s.logger.Warn().Str("site", target.SiteIdentifier).Msg("Crawl session cancelled")
			break
		}

		batch := s.collectBatch(ctx, target, frontier, stats)
		if len(batch) == 0 {
			continue
		}

		result := s.pipeline.ExtractBatch(ctx, target, batch)
		stats.PagesProcessed += len(batch)
		stats.PagesFailed += result.Failures
		stats.PagesSkippedContentType += result.Skipped

		for _, page := range result.Pages {
			s.handlePage(ctx, target, frontier, page, stats)
		}

		// Inter-batch pause scales with the per-request delay so large
		// batches do not hammer the site back-to-back
		pause := target.CrawlDelay * time.Duration(len(batch)) / 10
		if pause > 0 && frontier.Len() > 0 && stats.PagesProcessed < target.MaxPages {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}

	stats.PagesDiscovered = frontier.SeenCount()
	stats.Finish(time.Since(start))
	s.emitStats(target, stats)

	return stats, nil
}

// collectBatch pops frontier URLs up to the batch size, dropping any the
// knowledge base says to avoid. Skipped URLs do not consume page budget.
func (s *Service) collectBatch(ctx context.Context, target *models.CrawlTarget, frontier *Frontier, stats *models.CrawlStats) []string {
	limit := s.config.BatchSize
	if remaining := target.MaxPages - stats.PagesProcessed; limit > remaining {
		limit = remaining
	}

	var batch []string
	for len(batch) < limit && frontier.Len() > 0 {
		popped := frontier.Pop(limit - len(batch))
		for _, u := range popped {
			if s.knowledge.ShouldIgnore(ctx, target.BaseDomain, u) {
				stats.PagesSkippedByKB++
				continue
			}
			if s.knowledge.IsProblematic(ctx, target.BaseDomain, u) {
				stats.PagesSkippedProblematic++
				continue
			}
			batch = append(batch, u)
		}
	}
	return batch
}

func (s *Service) handlePage(ctx context.Context, target *models.CrawlTarget, frontier *Frontier, page *models.PageRecord, stats *models.CrawlStats) {
	stats.PagesSucceeded++
	stats.LinksFound += len(page.Links)

	for _, link := range page.Links {
		frontier.Push(link.URL)
	}

	changed, err := s.ledger.HasChanged(ctx, page.URL, page.BodyText)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", page.URL).Msg("Ledger lookup failed, treating as changed")
	}
	if !changed {
		stats.PagesSkippedUnchanged++
		return
	}

	record := &models.StoredRecord{
		SourceInfo: *target,
		CrawledContent: models.StoredContent{
			URL:           page.URL,
			Title:         page.Title,
			ExtractedText: page.BodyText,
		},
		Metadata: models.StoredMeta{
			CrawlTimestamp:  page.FetchedAt,
			ProcessingOrder: stats.RecordsSaved,
			QualityScore:    page.QualityScore,
		},
	}
	if _, err := s.store.SaveRecord(target.SiteIdentifier, record); err != nil {
		s.logger.Error().Err(err).Str("url", page.URL).Msg("Failed to save page record")
		return
	}
	stats.RecordsSaved++
}

// emitStats logs the final counters and writes the snapshot JSON next to
// the site's outbound packets
func (s *Service) emitStats(target *models.CrawlTarget, stats *models.CrawlStats) {
	snapshot, err := json.Marshal(stats)
	if err != nil {
		snapshot = []byte("{}")
	}
	s.logger.Info().
		Str("site", target.SiteIdentifier).
		Str("stats", string(snapshot)).
		Msg("Crawl session finished")

	if _, err := s.store.WriteStats(target.SiteIdentifier, stats); err != nil {
		s.logger.Warn().Err(err).Str("site", target.SiteIdentifier).Msg("Failed to write stats snapshot")
	}
}
