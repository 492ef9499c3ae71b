package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

// stubProvider returns canned responses for gatekeeper/enrichment tests
type stubProvider struct {
	response string
	err      error
	requests []*ContentRequest
}

func (s *stubProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return nil, s.err
	}
	return &ContentResponse{Text: s.response, Provider: ProviderGemini, Model: "stub"}, nil
}

func (s *stubProvider) GetProviderType() ProviderType { return ProviderGemini }
func (s *stubProvider) Close() error                  { return nil }

func TestIsRelevantYes(t *testing.T) {
	svc := NewService(&stubProvider{response: "YES"}, arbor.NewLogger())
	assert.True(t, svc.IsRelevant(context.Background(), "find policy news", "some article text"))
}

func TestIsRelevantNo(t *testing.T) {
	svc := NewService(&stubProvider{response: "NO"}, arbor.NewLogger())
	assert.False(t, svc.IsRelevant(context.Background(), "find policy news", "some article text"))
}

func TestIsRelevantToleratesVerboseAnswer(t *testing.T) {
	svc := NewService(&stubProvider{response: "Yes, this is relevant."}, arbor.NewLogger())
	assert.True(t, svc.IsRelevant(context.Background(), "goal", "text"))
}

func TestIsRelevantFailsClosed(t *testing.T) {
	svc := NewService(&stubProvider{err: errors.New("api down")}, arbor.NewLogger())
	assert.False(t, svc.IsRelevant(context.Background(), "goal", "text"))
}

func TestIsRelevantTruncatesSnippet(t *testing.T) {
	provider := &stubProvider{response: "NO"}
	svc := NewService(provider, arbor.NewLogger())

	long := make([]rune, 5000)
	for i := range long {
		long[i] = 'a'
	}
	svc.IsRelevant(context.Background(), "goal", string(long))

	// Prompt carries at most the snippet plus template text
	assert.Less(t, len([]rune(provider.requests[0].Prompt)), 2000)
}

func TestEnrichParsesJSON(t *testing.T) {
	svc := NewService(&stubProvider{
		response: `{"summary": "three sentences", "keywords": ["a", "b"], "relevance_score": 0.85, "language": "ko"}`,
	}, arbor.NewLogger())

	enrichment := svc.Enrich(context.Background(), "goal", "text")
	assert.False(t, enrichment.Failed)
	assert.Equal(t, "three sentences", enrichment.Summary)
	assert.Equal(t, []string{"a", "b"}, enrichment.Keywords)
	assert.InDelta(t, 0.85, enrichment.RelevanceScore, 0.001)
	assert.Equal(t, "ko", enrichment.Language)
}

func TestEnrichToleratesMarkdownFences(t *testing.T) {
	svc := NewService(&stubProvider{
		response: "```json\n{\"summary\": \"s\", \"keywords\": [], \"relevance_score\": 0.5}\n```",
	}, arbor.NewLogger())

	enrichment := svc.Enrich(context.Background(), "goal", "text")
	assert.False(t, enrichment.Failed)
	assert.InDelta(t, 0.5, enrichment.RelevanceScore, 0.001)
	assert.Equal(t, "unknown", enrichment.Language)
}

func TestEnrichFailureYieldsZeroScore(t *testing.T) {
	svc := NewService(&stubProvider{err: errors.New("api down")}, arbor.NewLogger())

	enrichment := svc.Enrich(context.Background(), "goal", "text")
	assert.True(t, enrichment.Failed)
	assert.Zero(t, enrichment.RelevanceScore)
	assert.NotEmpty(t, enrichment.Summary)
}

func TestEnrichBadJSONYieldsZeroScore(t *testing.T) {
	svc := NewService(&stubProvider{response: "I cannot analyze this."}, arbor.NewLogger())

	enrichment := svc.Enrich(context.Background(), "goal", "text")
	assert.True(t, enrichment.Failed)
	assert.Zero(t, enrichment.RelevanceScore)
}

func TestEnrichClampsScore(t *testing.T) {
	svc := NewService(&stubProvider{
		response: `{"summary": "s", "keywords": [], "relevance_score": 1.7}`,
	}, arbor.NewLogger())

	enrichment := svc.Enrich(context.Background(), "goal", "text")
	assert.Equal(t, 1.0, enrichment.RelevanceScore)
}
