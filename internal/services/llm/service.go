// Package llm implements the relevance gatekeeper and content enrichment
// on top of pluggable cloud providers.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
)

// enrichmentTextRunes caps the text sent for deep analysis
const enrichmentTextRunes = 8000

// Service implements interfaces.LLMService
type Service struct {
	provider Provider
	logger   arbor.ILogger
}

// NewService creates the LLM service around a provider
func NewService(provider Provider, logger arbor.ILogger) *Service {
	return &Service{provider: provider, logger: logger}
}

// IsRelevant runs the cheap gatekeeper check on a content snippet. Any
// provider failure counts as not relevant so a flaky API never drives
// enrichment spend.
func (s *Service) IsRelevant(ctx context.Context, instruction, text string) bool {
	snippet := truncateRunes(text, relevanceSnippetRunes)

	resp, err := s.provider.GenerateContent(ctx, &ContentRequest{
		Prompt: relevancePrompt(instruction, snippet),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Relevance check failed, treating as not relevant")
		return false
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Text))
	return strings.Contains(answer, "YES")
}

// Enrich performs deep analysis on gatekeeper-approved content. On any
// failure it returns a marker result with a zero relevance score rather
// than an error, so callers treat it as a rejection.
func (s *Service) Enrich(ctx context.Context, instruction, text string) *models.Enrichment {
	resp, err := s.provider.GenerateContent(ctx, &ContentRequest{
		Prompt:            enrichmentPrompt(instruction, truncateRunes(text, enrichmentTextRunes)),
		SystemInstruction: enrichmentSystemInstruction,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Content enrichment failed")
		return failedEnrichment()
	}

	enrichment, err := parseEnrichment(resp.Text)
	if err != nil {
		s.logger.Error().Err(err).Str("response", truncateRunes(resp.Text, 200)).Msg("Failed to parse enrichment response")
		return failedEnrichment()
	}
	return enrichment
}

// ProviderName returns the active provider identifier
func (s *Service) ProviderName() string {
	return string(s.provider.GetProviderType())
}

// Close shuts down the underlying provider
func (s *Service) Close() error {
	return s.provider.Close()
}

// parseEnrichment decodes the analysis JSON, tolerating markdown fences
// and missing optional fields
func parseEnrichment(raw string) (*models.Enrichment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var enrichment models.Enrichment
	if err := json.Unmarshal([]byte(cleaned), &enrichment); err != nil {
		return nil, err
	}

	if enrichment.Summary == "" {
		enrichment.Summary = "summary unavailable"
	}
	if enrichment.Keywords == nil {
		enrichment.Keywords = []string{}
	}
	if enrichment.Language == "" {
		enrichment.Language = "unknown"
	}
	if enrichment.RelevanceScore < 0 {
		enrichment.RelevanceScore = 0
	}
	if enrichment.RelevanceScore > 1 {
		enrichment.RelevanceScore = 1
	}
	return &enrichment, nil
}

func failedEnrichment() *models.Enrichment {
	return &models.Enrichment{
		Summary:        "content analysis failed",
		Keywords:       []string{},
		RelevanceScore: 0.0,
		Language:       "unknown",
		Failed:         true,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
