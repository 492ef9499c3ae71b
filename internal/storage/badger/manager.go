package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	knowledge interfaces.KnowledgeStorage
	ledger    interfaces.LedgerStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		knowledge: NewKnowledgeStorage(db, logger),
		ledger:    NewLedgerStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// Knowledge returns the pattern stats storage interface
func (m *Manager) Knowledge() interfaces.KnowledgeStorage {
	return m.knowledge
}

// Ledger returns the content ledger storage interface
func (m *Manager) Ledger() interfaces.LedgerStorage {
	return m.ledger
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
