package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// KnowledgeStorage persists PatternStats records in Badger
type KnowledgeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKnowledgeStorage creates a new knowledge storage instance
func NewKnowledgeStorage(db *BadgerDB, logger arbor.ILogger) *KnowledgeStorage {
	return &KnowledgeStorage{db: db, logger: logger}
}

// GetPattern retrieves pattern stats by key, nil when unseen
func (s *KnowledgeStorage) GetPattern(ctx context.Context, key string) (*models.PatternStats, error) {
	var stats models.PatternStats
	err := s.db.Store().Get(key, &stats)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern stats: %w", err)
	}
	return &stats, nil
}

// UpsertPattern inserts or updates pattern stats
func (s *KnowledgeStorage) UpsertPattern(ctx context.Context, stats *models.PatternStats) error {
	if err := s.db.Store().Upsert(stats.Key, stats); err != nil {
		return fmt.Errorf("failed to upsert pattern stats: %w", err)
	}
	return nil
}

// GetAllPatterns returns every learned pattern, most recently updated first
func (s *KnowledgeStorage) GetAllPatterns(ctx context.Context) ([]*models.PatternStats, error) {
	var all []*models.PatternStats
	err := s.db.Store().Find(&all, badgerhold.Where("Key").Ne("").SortBy("UpdatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list pattern stats: %w", err)
	}
	return all, nil
}

// ClearAll removes all pattern stats
func (s *KnowledgeStorage) ClearAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.PatternStats{}, nil); err != nil {
		return fmt.Errorf("failed to clear pattern stats: %w", err)
	}
	return nil
}
