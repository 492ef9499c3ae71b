package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// LedgerStorage persists content-hash ledger entries in Badger
type LedgerStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLedgerStorage creates a new ledger storage instance
func NewLedgerStorage(db *BadgerDB, logger arbor.ILogger) *LedgerStorage {
	return &LedgerStorage{db: db, logger: logger}
}

// GetEntry retrieves a ledger entry by URL, nil when never recorded
func (s *LedgerStorage) GetEntry(ctx context.Context, url string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := s.db.Store().Get(url, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

// UpsertEntry inserts or updates a ledger entry
func (s *LedgerStorage) UpsertEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := s.db.Store().Upsert(entry.URL, entry); err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return nil
}

// CountEntries returns the number of tracked URLs
func (s *LedgerStorage) CountEntries(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.LedgerEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return int(count), nil
}

// ClearAll removes all ledger entries
func (s *LedgerStorage) ClearAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.LedgerEntry{}, nil); err != nil {
		return fmt.Errorf("failed to clear ledger entries: %w", err)
	}
	return nil
}
