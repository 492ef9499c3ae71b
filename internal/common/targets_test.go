package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTarget(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "city.toml", `
site_identifier = "city-site"
site_name = "City Site"
base_url = "https://www.example.go.kr"
instruction_prompt = "find policy announcements"
max_pages = 30
crawl_delay_seconds = 0.5
`)
	writeTarget(t, dir, "library.toml", `
site_identifier = "library"
base_url = "https://lib.example.org/news"
instruction_prompt = "find library events"
`)
	writeTarget(t, dir, "notes.txt", "not a target")

	targets, err := LoadTargets(dir)
	require.NoError(t, err)
	require.Len(t, targets, 2)

	byID := map[string]bool{}
	for _, target := range targets {
		byID[target.SiteIdentifier] = true
	}
	assert.True(t, byID["city-site"])
	assert.True(t, byID["library"])

	for _, target := range targets {
		if target.SiteIdentifier == "city-site" {
			assert.Equal(t, "www.example.go.kr", target.BaseDomain)
			assert.Equal(t, 30, target.MaxPages)
			assert.Equal(t, 500*time.Millisecond, target.CrawlDelay)
		} else {
			assert.Equal(t, 50, target.MaxPages, "defaults applied")
		}
	}
}

func TestLoadTargetsRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "broken.toml", `site_identifier = "x"`)

	_, err := LoadTargets(dir)
	assert.Error(t, err)
}

func TestLoadTargetsEmptyDir(t *testing.T) {
	_, err := LoadTargets(t.TempDir())
	assert.Error(t, err)
}
