package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDerivesDomainAndDefaults(t *testing.T) {
	target := &CrawlTarget{
		SiteIdentifier:    "city",
		BaseURL:           "https://www.example.go.kr/board",
		InstructionPrompt: "find notices",
	}

	require.NoError(t, target.Resolve())
	assert.Equal(t, "www.example.go.kr", target.BaseDomain)
	assert.Equal(t, 50, target.MaxPages)
	assert.Equal(t, time.Second, target.CrawlDelay)
}

func TestResolveCrawlDelaySeconds(t *testing.T) {
	target := &CrawlTarget{
		SiteIdentifier:    "city",
		BaseURL:           "https://example.com",
		InstructionPrompt: "p",
		CrawlDelaySeconds: 0.5,
	}

	require.NoError(t, target.Resolve())
	assert.Equal(t, 500*time.Millisecond, target.CrawlDelay)
}

func TestResolveRejectsBadURLs(t *testing.T) {
	for _, badURL := range []string{"ftp://example.com", "https://", "not a url at all \x7f"} {
		target := &CrawlTarget{SiteIdentifier: "x", BaseURL: badURL, InstructionPrompt: "p"}
		assert.Error(t, target.Resolve(), badURL)
	}
}
