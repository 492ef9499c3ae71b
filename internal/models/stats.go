package models

import "time"

// CrawlStats accumulates per-session counters. Only the session goroutine
// mutates it; a snapshot is emitted when the session ends.
type CrawlStats struct {
	PagesDiscovered         int           `json:"pages_discovered"`
	PagesProcessed          int           `json:"pages_processed"`
	PagesSucceeded          int           `json:"pages_succeeded"`
	PagesFailed             int           `json:"pages_failed"`
	PagesSkippedUnchanged   int           `json:"pages_skipped_unchanged"`
	PagesSkippedByKB        int           `json:"pages_skipped_by_kb"`
	PagesSkippedProblematic int           `json:"pages_skipped_problematic"`
	PagesSkippedContentType int           `json:"pages_skipped_content_type"`
	RecordsSaved            int           `json:"records_saved"`
	LinksFound              int           `json:"links_found"`
	ProcessingTime          time.Duration `json:"processing_time"`
	AvgPagesPerSecond       float64       `json:"avg_pages_per_second"`
}

// SuccessRate returns the percentage of processed pages that yielded a record.
func (s *CrawlStats) SuccessRate() float64 {
	if s.PagesProcessed == 0 {
		return 0
	}
	return float64(s.PagesSucceeded) / float64(s.PagesProcessed) * 100
}

// Finish computes the derived fields from the elapsed wall time.
func (s *CrawlStats) Finish(elapsed time.Duration) {
	s.ProcessingTime = elapsed
	if secs := elapsed.Seconds(); secs > 0 {
		s.AvgPagesPerSecond = float64(s.PagesProcessed) / secs
	}
}
