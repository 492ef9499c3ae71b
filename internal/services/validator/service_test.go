package validator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/normalize"
	"github.com/ternarybob/venari/internal/services/pagestore"
)

// stubLLM drives gatekeeper and enrichment outcomes per test
type stubLLM struct {
	relevant   bool
	enrichment *models.Enrichment
	calls      struct {
		relevance int
		enrich    int
	}
}

func (s *stubLLM) IsRelevant(ctx context.Context, instruction, text string) bool {
	s.calls.relevance++
	return s.relevant
}

func (s *stubLLM) Enrich(ctx context.Context, instruction, text string) *models.Enrichment {
	s.calls.enrich++
	if s.enrichment != nil {
		return s.enrichment
	}
	return &models.Enrichment{Summary: "s", Keywords: []string{}, RelevanceScore: 0, Failed: true}
}

func (s *stubLLM) ProviderName() string { return "stub" }

type stubKnowledge struct {
	mu       sync.Mutex
	scores   []float64
	failures int
}

func (s *stubKnowledge) ShouldIgnore(ctx context.Context, domain, rawURL string) bool  { return false }
func (s *stubKnowledge) IsProblematic(ctx context.Context, domain, rawURL string) bool { return false }

func (s *stubKnowledge) RecordScore(ctx context.Context, domain, rawURL string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, score)
	return nil
}

func (s *stubKnowledge) RecordFailure(ctx context.Context, domain, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return nil
}

func (s *stubKnowledge) PatternReport(ctx context.Context) ([]*models.PatternStats, error) {
	return nil, nil
}

type stubLedger struct {
	mu       sync.Mutex
	recorded []string
}

func (s *stubLedger) HasChanged(ctx context.Context, url, text string) (bool, error) {
	return true, nil
}

func (s *stubLedger) Record(ctx context.Context, url, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, url)
	return nil
}

type fixture struct {
	service   *Service
	store     *pagestore.Store
	llm       *stubLLM
	knowledge *stubKnowledge
	ledger    *stubLedger
	outputDir string
}

func newFixture(t *testing.T, llm *stubLLM) *fixture {
	t.Helper()
	base := t.TempDir()
	logger := arbor.NewLogger()
	outputDir := filepath.Join(base, "packets")
	store := pagestore.NewStore(filepath.Join(base, "crawled"), outputDir, logger)

	cfg := &common.ProcessingConfig{
		Enabled:            true,
		Schedule:           "@every 1h",
		Concurrency:        2,
		RelevanceThreshold: 0.6,
		AgentID:            "test-worker",
	}

	knowledge := &stubKnowledge{}
	ledger := &stubLedger{}

	return &fixture{
		service:   NewService(cfg, store, knowledge, ledger, llm, logger),
		store:     store,
		llm:       llm,
		knowledge: knowledge,
		ledger:    ledger,
		outputDir: outputDir,
	}
}

func goodText() string {
	return strings.Repeat("This paragraph describes the city development strategy in full detail. ", 10)
}

func listText() string {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "2024-01-15 notice item"
	}
	return strings.Join(lines, "\n")
}

func saveRecord(t *testing.T, store *pagestore.Store, text string) {
	t.Helper()
	_, err := store.SaveRecord("test-site", &models.StoredRecord{
		SourceInfo: models.CrawlTarget{
			SiteIdentifier:    "test-site",
			BaseURL:           "https://example.com",
			InstructionPrompt: "find development policy",
		},
		CrawledContent: models.StoredContent{
			URL:           "https://example.com/page",
			Title:         "Page",
			ExtractedText: text,
		},
	})
	require.NoError(t, err)
}

func rejectedCount(t *testing.T, fx *fixture) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(fx.store.DataDir(), "test-site", "rejected"))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestStageZeroRejectsAttachmentFailures(t *testing.T) {
	llm := &stubLLM{relevant: true}
	fx := newFixture(t, llm)

	saveRecord(t, fx.store, goodText()+"\n\n"+normalize.AttachmentFailureMarker+" report.hwp ---")
	require.NoError(t, fx.service.ProcessPending(context.Background()))

	assert.Equal(t, 1, fx.knowledge.failures)
	assert.Zero(t, llm.calls.relevance, "no LLM spend on parse failures")
	assert.Equal(t, 1, rejectedCount(t, fx))
}

func TestStageOneRejectsListStyleContent(t *testing.T) {
	llm := &stubLLM{relevant: true}
	fx := newFixture(t, llm)

	saveRecord(t, fx.store, listText())
	require.NoError(t, fx.service.ProcessPending(context.Background()))

	require.Len(t, fx.knowledge.scores, 1)
	assert.Zero(t, fx.knowledge.scores[0])
	assert.Zero(t, llm.calls.relevance)
	assert.Equal(t, 1, rejectedCount(t, fx))
}

func TestStageTwoGatekeeperRejection(t *testing.T) {
	llm := &stubLLM{relevant: false}
	fx := newFixture(t, llm)

	saveRecord(t, fx.store, goodText())
	require.NoError(t, fx.service.ProcessPending(context.Background()))

	assert.Equal(t, 1, llm.calls.relevance)
	assert.Zero(t, llm.calls.enrich, "gatekeeper rejection skips enrichment")
	require.Len(t, fx.knowledge.scores, 1)
	assert.Zero(t, fx.knowledge.scores[0])
	assert.Equal(t, 1, rejectedCount(t, fx))
}

func TestStageThreeAcceptsAboveThreshold(t *testing.T) {
	llm := &stubLLM{
		relevant: true,
		enrichment: &models.Enrichment{
			Summary:        "summary",
			Keywords:       []string{"policy"},
			RelevanceScore: 0.9,
			Language:       "en",
		},
	}
	fx := newFixture(t, llm)

	saveRecord(t, fx.store, goodText())
	require.NoError(t, fx.service.ProcessPending(context.Background()))

	// Packet written
	packets, err := os.ReadDir(filepath.Join(fx.outputDir, "test-site"))
	require.NoError(t, err)
	require.Len(t, packets, 1)

	// Ledger records the acceptance
	assert.Equal(t, []string{"https://example.com/page"}, fx.ledger.recorded)

	// Enrichment score is learned
	require.Len(t, fx.knowledge.scores, 1)
	assert.InDelta(t, 0.9, fx.knowledge.scores[0], 0.001)

	// Pending area drained
	pending, err := fx.store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Zero(t, rejectedCount(t, fx))
}

func TestStageThreeRejectsBelowThreshold(t *testing.T) {
	llm := &stubLLM{
		relevant: true,
		enrichment: &models.Enrichment{
			Summary:        "summary",
			Keywords:       []string{},
			RelevanceScore: 0.3,
			Language:       "en",
		},
	}
	fx := newFixture(t, llm)

	saveRecord(t, fx.store, goodText())
	require.NoError(t, fx.service.ProcessPending(context.Background()))

	assert.Equal(t, 1, rejectedCount(t, fx))
	assert.Empty(t, fx.ledger.recorded, "rejected pages stay eligible for reprocessing")

	// No packet for rejected content
	packets, err := os.ReadDir(filepath.Join(fx.outputDir, "test-site"))
	if err == nil {
		assert.Empty(t, packets)
	}
}

func TestIsLowQualityText(t *testing.T) {
	assert.True(t, isLowQualityText(listText()))
	assert.False(t, isLowQualityText(goodText()))
	assert.False(t, isLowQualityText("one\ntwo\nthree"), "short texts pass through")
}
