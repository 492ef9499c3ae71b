// Package ledger tracks a SHA-256 hash per crawled URL so unchanged
// content is skipped on revisit.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Service implements interfaces.LedgerService
type Service struct {
	storage interfaces.LedgerStorage
	logger  arbor.ILogger
}

// NewService creates a ledger service
func NewService(storage interfaces.LedgerStorage, logger arbor.ILogger) *Service {
	return &Service{storage: storage, logger: logger}
}

// HashText returns the hex SHA-256 of normalized text
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// HasChanged reports whether the text differs from the last recorded hash
// for this URL. Unseen URLs always count as changed.
func (s *Service) HasChanged(ctx context.Context, url, text string) (bool, error) {
	entry, err := s.storage.GetEntry(ctx, url)
	if err != nil {
		return true, err
	}
	if entry == nil {
		return true, nil
	}
	return entry.Hash != HashText(text), nil
}

// Record stores the current content hash for a URL
func (s *Service) Record(ctx context.Context, url, text string) error {
	entry := &models.LedgerEntry{
		URL:       url,
		Hash:      HashText(text),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.storage.UpsertEntry(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to record ledger entry")
		return err
	}
	return nil
}
