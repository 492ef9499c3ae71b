// Package pagestore manages the on-disk staging areas for crawled page
// records: a pending directory per site where the crawler drops JSON
// records, processed/ and rejected/ subdirectories the validator moves
// them into, and a packet output directory for accepted content.
package pagestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
)

const (
	processedDirName = "processed"
	rejectedDirName  = "rejected"
)

// Store handles record and packet files for all sites
type Store struct {
	dataDir   string
	outputDir string
	logger    arbor.ILogger
	seq       int64
}

// NewStore creates a page store rooted at the configured directories
func NewStore(dataDir, outputDir string, logger arbor.ILogger) *Store {
	return &Store{dataDir: dataDir, outputDir: outputDir, logger: logger}
}

// PendingFile is one record awaiting validation
type PendingFile struct {
	Path string
	Site string
}

func (s *Store) siteDir(site string) string {
	return filepath.Join(s.dataDir, site)
}

// DataDir returns the root of the staging areas
func (s *Store) DataDir() string {
	return s.dataDir
}

// EnsureSiteDirs creates the staging directories for a site
func (s *Store) EnsureSiteDirs(site string) error {
	for _, dir := range []string{
		s.siteDir(site),
		filepath.Join(s.siteDir(site), processedDirName),
		filepath.Join(s.siteDir(site), rejectedDirName),
		filepath.Join(s.outputDir, site),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveRecord writes a crawled page record into the site's pending area.
// Filenames are millisecond timestamps plus a sequence number so listing
// order follows crawl order.
func (s *Store) SaveRecord(site string, record *models.StoredRecord) (string, error) {
	if err := s.EnsureSiteDirs(site); err != nil {
		return "", err
	}

	n := atomic.AddInt64(&s.seq, 1)
	name := fmt.Sprintf("%d_%d.json", time.Now().UnixMilli(), n)
	path := filepath.Join(s.siteDir(site), name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	return path, nil
}

// ListPending returns all pending record files across sites, oldest first
func (s *Store) ListPending() ([]PendingFile, error) {
	sites, err := os.ReadDir(s.dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var pending []PendingFile
	for _, siteEntry := range sites {
		if !siteEntry.IsDir() {
			continue
		}
		site := siteEntry.Name()
		entries, err := os.ReadDir(s.siteDir(site))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			pending = append(pending, PendingFile{
				Path: filepath.Join(s.siteDir(site), entry.Name()),
				Site: site,
			})
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].Path < pending[j].Path })
	return pending, nil
}

// ReadRecord loads a stored record from disk
func (s *Store) ReadRecord(path string) (*models.StoredRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	var record models.StoredRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", path, err)
	}
	return &record, nil
}

// MoveToProcessed relocates an accepted record out of the pending area
func (s *Store) MoveToProcessed(file PendingFile) error {
	return s.moveTo(file, processedDirName)
}

// MoveToRejected relocates a rejected record out of the pending area
func (s *Store) MoveToRejected(file PendingFile) error {
	return s.moveTo(file, rejectedDirName)
}

func (s *Store) moveTo(file PendingFile, subdir string) error {
	dest := filepath.Join(s.siteDir(file.Site), subdir, filepath.Base(file.Path))
	if err := os.Rename(file.Path, dest); err != nil {
		s.logger.Error().Err(err).Str("src", file.Path).Str("dest", dest).Msg("Failed to move record")
		return fmt.Errorf("failed to move record: %w", err)
	}
	return nil
}

// WritePacket persists an outbound data packet for an accepted record.
// The packet filename carries the source record's stem for traceability.
func (s *Store) WritePacket(site string, sourcePath string, packet *models.Packet) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), ".json")
	name := fmt.Sprintf("%d_%s.json", time.Now().UnixMilli(), stem)
	path := filepath.Join(s.outputDir, site, name)

	data, err := json.MarshalIndent(packet, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal packet: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write packet: %w", err)
	}
	return path, nil
}

// WriteStats writes a session's final counters into the site's output
// directory, replacing any snapshot from an earlier run
func (s *Store) WriteStats(site string, stats *models.CrawlStats) (string, error) {
	dir := filepath.Join(s.outputDir, site)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "crawl_stats.json")

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write stats: %w", err)
	}
	return path, nil
}
