// Package knowledge implements adaptive avoidance: quality scores and
// parse failures are accumulated per URL path pattern, and patterns that
// prove consistently low-value get skipped on later sessions.
package knowledge

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

const (
	ignoreThreshold  = 0.4
	minSamples       = 3
	failureThreshold = 3
)

// Service implements interfaces.KnowledgeService backed by Badger with a
// write-through in-memory cache. The cache keeps hot-path checks off the
// database during a crawl session.
type Service struct {
	storage interfaces.KnowledgeStorage
	logger  arbor.ILogger

	mu    sync.Mutex
	cache map[string]*models.PatternStats
}

// NewService creates a knowledge service, loading existing stats into the cache
func NewService(ctx context.Context, storage interfaces.KnowledgeStorage, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		storage: storage,
		logger:  logger,
		cache:   make(map[string]*models.PatternStats),
	}

	existing, err := storage.GetAllPatterns(ctx)
	if err != nil {
		return nil, err
	}
	for _, stats := range existing {
		s.cache[stats.Key] = stats
	}

	logger.Debug().Int("patterns", len(s.cache)).Msg("Knowledge base loaded")
	return s, nil
}

func patternKey(domain, pattern string) string {
	return domain + "|" + pattern
}

// ShouldIgnore reports whether a URL's path pattern has enough samples and
// a low enough average score to be skipped outright.
func (s *Service) ShouldIgnore(ctx context.Context, domain, rawURL string) bool {
	stats := s.lookup(domain, rawURL)
	if stats == nil {
		return false
	}
	return stats.SampleCount >= minSamples && stats.AverageScore < ignoreThreshold
}

// IsProblematic reports whether a pattern has accumulated enough hard
// failures (parse errors, unsupported formats) to be skipped.
func (s *Service) IsProblematic(ctx context.Context, domain, rawURL string) bool {
	stats := s.lookup(domain, rawURL)
	if stats == nil {
		return false
	}
	return stats.FailureCount >= failureThreshold
}

// RecordScore folds a quality observation into the pattern's running average
func (s *Service) RecordScore(ctx context.Context, domain, rawURL string, score float64) error {
	return s.update(ctx, domain, rawURL, func(stats *models.PatternStats) {
		stats.TotalScore += score
		stats.SampleCount++
		stats.AverageScore = stats.TotalScore / float64(stats.SampleCount)
	})
}

// RecordFailure increments the pattern's hard-failure counter
func (s *Service) RecordFailure(ctx context.Context, domain, rawURL string) error {
	return s.update(ctx, domain, rawURL, func(stats *models.PatternStats) {
		stats.FailureCount++
	})
}

// PatternReport returns all learned patterns for diagnostics
func (s *Service) PatternReport(ctx context.Context) ([]*models.PatternStats, error) {
	return s.storage.GetAllPatterns(ctx)
}

func (s *Service) lookup(domain, rawURL string) *models.PatternStats {
	key := patternKey(domain, common.PathPattern(rawURL))
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[key]
}

func (s *Service) update(ctx context.Context, domain, rawURL string, apply func(*models.PatternStats)) error {
	pattern := common.PathPattern(rawURL)
	key := patternKey(domain, pattern)
	now := time.Now().UTC()

	s.mu.Lock()
	stats, ok := s.cache[key]
	if !ok {
		stats = &models.PatternStats{
			Key:       key,
			Domain:    domain,
			Pattern:   pattern,
			FirstSeen: now,
		}
		s.cache[key] = stats
	}
	apply(stats)
	stats.UpdatedAt = now
	snapshot := *stats
	s.mu.Unlock()

	if err := s.storage.UpsertPattern(ctx, &snapshot); err != nil {
		s.logger.Warn().Err(err).Str("pattern", pattern).Msg("Failed to persist pattern stats")
		return err
	}
	return nil
}
