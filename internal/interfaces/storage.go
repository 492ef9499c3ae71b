package interfaces

import (
	"context"

	"github.com/ternarybob/venari/internal/models"
)

// KnowledgeStorage - persistence for learned URL pattern statistics
type KnowledgeStorage interface {
	GetPattern(ctx context.Context, key string) (*models.PatternStats, error)
	UpsertPattern(ctx context.Context, stats *models.PatternStats) error
	GetAllPatterns(ctx context.Context) ([]*models.PatternStats, error)
	ClearAll(ctx context.Context) error
}

// LedgerStorage - persistence for the content-change ledger
type LedgerStorage interface {
	GetEntry(ctx context.Context, url string) (*models.LedgerEntry, error)
	UpsertEntry(ctx context.Context, entry *models.LedgerEntry) error
	CountEntries(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error
}

// StorageManager - manages storage lifecycle and access
type StorageManager interface {
	Knowledge() KnowledgeStorage
	Ledger() LedgerStorage
	Close() error
}
