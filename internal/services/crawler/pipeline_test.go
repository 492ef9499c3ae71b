package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
)

func newTestPipeline(t *testing.T, cfg *common.CrawlerConfig) *Pipeline {
	t.Helper()
	logger := arbor.NewLogger()
	fetcher := NewFetcher(cfg, logger)
	quarantine := NewQuarantine(filepath.Join(t.TempDir(), "quarantine"), logger)
	return NewPipeline(cfg, fetcher, quarantine, newStubKnowledge(), logger)
}

func TestExtractBatchRunsChunksConcurrently(t *testing.T) {
	const perRequestDelay = 150 * time.Millisecond

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(perRequestDelay)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, pageHTML("Slow"))
	}))
	defer server.Close()

	cfg := &common.CrawlerConfig{
		UserAgent:           "venari-test",
		MaxConcurrency:      8,
		RequestTimeout:      5 * time.Second,
		MaxBodySize:         1 << 20,
		ChunkSize:           1,
		ParseWorkers:        2,
		RetryAttempts:       1,
		AllowedContentTypes: []string{"text/html"},
	}
	pipeline := newTestPipeline(t, cfg)
	target := testTarget(server.URL, 10)

	urls := []string{
		server.URL + "/p1",
		server.URL + "/p2",
		server.URL + "/p3",
		server.URL + "/p4",
	}

	start := time.Now()
	result := pipeline.ExtractBatch(context.Background(), target, urls)
	elapsed := time.Since(start)

	require.Len(t, result.Pages, 4)
	assert.Zero(t, result.Failures)

	// Sequential chunks would need at least 4x the per-request delay
	assert.Less(t, elapsed, 3*perRequestDelay,
		"chunks ran sequentially: %v elapsed", elapsed)
}

func TestExtractBatchCountsDisallowedSeparately(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed.json" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{}`)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, pageHTML("Page"))
	}))
	defer server.Close()

	cfg := &common.CrawlerConfig{
		UserAgent:           "venari-test",
		MaxConcurrency:      4,
		RequestTimeout:      5 * time.Second,
		MaxBodySize:         1 << 20,
		ChunkSize:           3,
		ParseWorkers:        2,
		RetryAttempts:       1,
		AllowedContentTypes: []string{"text/html"},
	}
	pipeline := newTestPipeline(t, cfg)
	target := testTarget(server.URL, 10)

	result := pipeline.ExtractBatch(context.Background(), target, []string{
		server.URL + "/page",
		server.URL + "/feed.json",
	})

	require.Len(t, result.Pages, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failures)
}
