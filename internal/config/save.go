package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if cfg.Scrape.MaxResults < 0 {
		errs = append(errs, "scrape.max_results must be >= 0")
	}
	if cfg.Scrape.PaceMillis < 0 {
		errs = append(errs, "scrape.pace_millis must be >= 0")
	}
	if cfg.Uploads.MaxFileMB < 0 {
		errs = append(errs, "uploads.max_file_mb must be >= 0")
	}

	for i, r := range cfg.Scrape.Regions {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("scrape.regions[%d].name is required", i))
		}
		if r.BaseURL == "" {
			errs = append(errs, fmt.Sprintf("scrape.regions[%d].base_url is required", i))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

func joinLines(lines []string) string {
	out := ""
	for i, s := range lines {
		if i > 0 {
			out += "\n-"
		}
		out += s
	}
	return out
}
