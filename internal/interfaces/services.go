package interfaces

import (
	"context"

	"github.com/ternarybob/venari/internal/models"
)

// KnowledgeService - adaptive avoidance of low-value URL path patterns
type KnowledgeService interface {
	ShouldIgnore(ctx context.Context, domain, rawURL string) bool
	IsProblematic(ctx context.Context, domain, rawURL string) bool
	RecordScore(ctx context.Context, domain, rawURL string, score float64) error
	RecordFailure(ctx context.Context, domain, rawURL string) error
	PatternReport(ctx context.Context) ([]*models.PatternStats, error)
}

// LedgerService - content-change detection via content hashing
type LedgerService interface {
	HasChanged(ctx context.Context, url, text string) (bool, error)
	Record(ctx context.Context, url, text string) error
}

// LLMService - relevance gatekeeping and content enrichment
type LLMService interface {
	IsRelevant(ctx context.Context, instruction, text string) bool
	Enrich(ctx context.Context, instruction, text string) *models.Enrichment
	ProviderName() string
}

// CrawlService - runs a bounded crawl session for one target
type CrawlService interface {
	Crawl(ctx context.Context, target *models.CrawlTarget) (*models.CrawlStats, error)
}

// ValidationService - the staged post-crawl processing pipeline
type ValidationService interface {
	ProcessPending(ctx context.Context) error
	Start(ctx context.Context) error
	Stop()
}
