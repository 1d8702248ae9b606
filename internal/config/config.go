// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Region maps a human-facing region name to the marketplace base URL
// searches run against.
type Region struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		Region                string   `yaml:"region"`
		MaxResults            int      `yaml:"max_results"`
		RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
		PaceMillis            int      `yaml:"pace_millis"`
		BulkConcurrency       int      `yaml:"bulk_concurrency"`
		Regions               []Region `yaml:"regions"`
	} `yaml:"scrape"`

	Tracker struct {
		SiteURL    string `yaml:"site_url"`
		Email      string `yaml:"email"`
		DefaultJQL string `yaml:"default_jql"`
	} `yaml:"tracker"`

	Uploads struct {
		MaxFileMB         int      `yaml:"max_file_mb"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"uploads"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// RegionBaseURLs flattens the configured regions into the name -> URL
// map the scraper consumes.
func (c Config) RegionBaseURLs() map[string]string {
	out := make(map[string]string, len(c.Scrape.Regions))
	for _, r := range c.Scrape.Regions {
		if r.Name == "" || r.BaseURL == "" {
			continue
		}
		out[r.Name] = r.BaseURL
	}
	return out
}
