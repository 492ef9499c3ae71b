package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/venari/internal/models"
)

// LoadTargets reads every *.toml file in dir as a crawl target definition
func LoadTargets(dir string) ([]*models.CrawlTarget, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets directory %s: %w", dir, err)
	}

	validate := validator.New()
	var targets []*models.CrawlTarget

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read target file %s: %w", path, err)
		}

		var target models.CrawlTarget
		if err := toml.Unmarshal(data, &target); err != nil {
			return nil, fmt.Errorf("failed to parse target file %s: %w", path, err)
		}
		if err := validate.Struct(&target); err != nil {
			return nil, fmt.Errorf("invalid target file %s: %w", path, err)
		}
		if err := target.Resolve(); err != nil {
			return nil, fmt.Errorf("invalid target file %s: %w", path, err)
		}

		targets = append(targets, &target)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no target definitions found in %s", dir)
	}
	return targets, nil
}
