package models

import (
	"fmt"
	"net/url"
	"time"
)

// CrawlTarget describes one site to crawl. Targets are loaded from TOML files
// and are immutable for the lifetime of a crawl session.
type CrawlTarget struct {
	SiteIdentifier    string  `toml:"site_identifier" json:"site_identifier" validate:"required"`
	SiteName          string  `toml:"site_name" json:"site_name"`
	BaseURL           string  `toml:"base_url" json:"base_url" validate:"required,url"`
	InstructionPrompt string  `toml:"instruction_prompt" json:"instruction_prompt" validate:"required"`
	MaxPages          int     `toml:"max_pages" json:"max_pages"`
	CrawlDelaySeconds float64 `toml:"crawl_delay_seconds" json:"crawl_delay_seconds"`

	// Derived at load time.
	BaseDomain string        `toml:"-" json:"base_domain"`
	CrawlDelay time.Duration `toml:"-" json:"-"`
}

// Resolve derives BaseDomain and applies defaults. It fails on an
// unparseable base URL so a bad target file is rejected before a session
// starts.
func (t *CrawlTarget) Resolve() error {
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", t.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must be http or https", t.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q has no host", t.BaseURL)
	}
	t.BaseDomain = u.Host

	if t.MaxPages <= 0 {
		t.MaxPages = 50
	}
	if t.CrawlDelay <= 0 {
		if t.CrawlDelaySeconds > 0 {
			t.CrawlDelay = time.Duration(t.CrawlDelaySeconds * float64(time.Second))
		} else {
			t.CrawlDelay = time.Second
		}
	}
	return nil
}
