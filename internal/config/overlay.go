// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RegionsFile is an optional side file that overrides the built-in
// region list without touching the main config.
type RegionsFile struct {
	Regions []Region `yaml:"regions"`
}

func OverlayRegions(cfg *Config, regionsPath string) error {
	b, err := os.ReadFile(regionsPath)
	if err != nil {
		// Missing regions file should not kill startup
		return nil
	}

	var rf RegionsFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return err
	}

	if len(rf.Regions) > 0 {
		cfg.Scrape.Regions = rf.Regions
	}
	return nil
}
