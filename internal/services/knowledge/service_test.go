package knowledge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
)

// memoryStorage is an in-memory KnowledgeStorage for tests
type memoryStorage struct {
	mu       sync.Mutex
	patterns map[string]models.PatternStats
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{patterns: make(map[string]models.PatternStats)}
}

func (m *memoryStorage) GetPattern(ctx context.Context, key string) (*models.PatternStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.patterns[key]; ok {
		copied := stats
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryStorage) UpsertPattern(ctx context.Context, stats *models.PatternStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[stats.Key] = *stats
	return nil
}

func (m *memoryStorage) GetAllPatterns(ctx context.Context) ([]*models.PatternStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.PatternStats
	for _, stats := range m.patterns {
		copied := stats
		all = append(all, &copied)
	}
	return all, nil
}

func (m *memoryStorage) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = make(map[string]models.PatternStats)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryStorage) {
	t.Helper()
	storage := newMemoryStorage()
	svc, err := NewService(context.Background(), storage, arbor.NewLogger())
	require.NoError(t, err)
	return svc, storage
}

func TestShouldIgnoreNeedsMinimumSamples(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	url := "https://example.com/board/list"

	// Two low scores are not enough evidence
	require.NoError(t, svc.RecordScore(ctx, "example.com", url, 0.1))
	require.NoError(t, svc.RecordScore(ctx, "example.com", url, 0.1))
	assert.False(t, svc.ShouldIgnore(ctx, "example.com", url))

	// Third sample crosses the minimum
	require.NoError(t, svc.RecordScore(ctx, "example.com", url, 0.1))
	assert.True(t, svc.ShouldIgnore(ctx, "example.com", url))
}

func TestShouldIgnoreRespectsAverage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	url := "https://example.com/articles/detail"

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordScore(ctx, "example.com", url, 0.8))
	}
	assert.False(t, svc.ShouldIgnore(ctx, "example.com", url))
}

func TestFileURLsShareDirectoryPattern(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Three different files in the same directory accumulate together
	require.NoError(t, svc.RecordScore(ctx, "example.com", "https://example.com/files/a.pdf", 0.1))
	require.NoError(t, svc.RecordScore(ctx, "example.com", "https://example.com/files/b.pdf", 0.1))
	require.NoError(t, svc.RecordScore(ctx, "example.com", "https://example.com/files/c.pdf", 0.1))

	assert.True(t, svc.ShouldIgnore(ctx, "example.com", "https://example.com/files/d.pdf"))
}

func TestIsProblematic(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	url := "https://example.com/files/broken.hwp"

	require.NoError(t, svc.RecordFailure(ctx, "example.com", url))
	require.NoError(t, svc.RecordFailure(ctx, "example.com", url))
	assert.False(t, svc.IsProblematic(ctx, "example.com", url))

	require.NoError(t, svc.RecordFailure(ctx, "example.com", url))
	assert.True(t, svc.IsProblematic(ctx, "example.com", url))
}

func TestDomainsLearnIndependently(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordScore(ctx, "a.com", "https://a.com/list", 0.1))
	}
	assert.True(t, svc.ShouldIgnore(ctx, "a.com", "https://a.com/list"))
	assert.False(t, svc.ShouldIgnore(ctx, "b.com", "https://b.com/list"))
}

func TestKnowledgeSurvivesRestart(t *testing.T) {
	storage := newMemoryStorage()
	ctx := context.Background()

	svc, err := NewService(ctx, storage, arbor.NewLogger())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordScore(ctx, "example.com", "https://example.com/junk", 0.05))
	}

	// A fresh service over the same storage keeps the learned avoidance
	reloaded, err := NewService(ctx, storage, arbor.NewLogger())
	require.NoError(t, err)
	assert.True(t, reloaded.ShouldIgnore(ctx, "example.com", "https://example.com/junk"))
}
