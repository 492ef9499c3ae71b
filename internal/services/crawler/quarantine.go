package crawler

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
)

// Quarantine preserves attachment bytes that failed to parse so they can
// be inspected or reprocessed later. Each saved file gets a sidecar
// .meta.json recording where it came from and why it failed.
type Quarantine struct {
	baseDir string
	logger  arbor.ILogger
}

type quarantineMeta struct {
	OriginalURL   string `json:"original_url"`
	SavedPath     string `json:"saved_path"`
	FailureReason string `json:"failure_reason"`
	Timestamp     string `json:"timestamp"`
}

// NewQuarantine creates a quarantine rooted at baseDir
func NewQuarantine(baseDir string, logger arbor.ILogger) *Quarantine {
	return &Quarantine{baseDir: baseDir, logger: logger}
}

// Save writes the failed attachment and its metadata sidecar under the
// site's quarantine directory. Errors are logged, not returned; losing a
// quarantine copy never fails the crawl.
func (q *Quarantine) Save(site, originalURL string, content []byte, failureReason string) string {
	dir := filepath.Join(q.baseDir, site)
	if err := os.MkdirAll(dir, 0755); err != nil {
		q.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to create quarantine directory")
		return ""
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), fileNameFromURL(originalURL))
	savedPath := filepath.Join(dir, name)

	if err := os.WriteFile(savedPath, content, 0644); err != nil {
		q.logger.Warn().Err(err).Str("path", savedPath).Msg("Failed to write quarantined file")
		return ""
	}

	meta := quarantineMeta{
		OriginalURL:   originalURL,
		SavedPath:     savedPath,
		FailureReason: failureReason,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		if err := os.WriteFile(savedPath+".meta.json", metaBytes, 0644); err != nil {
			q.logger.Warn().Err(err).Str("path", savedPath).Msg("Failed to write quarantine metadata")
		}
	}

	q.logger.Info().
		Str("url", originalURL).
		Str("path", savedPath).
		Str("reason", failureReason).
		Msg("Attachment quarantined")

	return savedPath
}

func fileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return "attachment"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "attachment"
	}
	return name
}
