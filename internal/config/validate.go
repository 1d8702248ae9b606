package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything the
// config editor should surface before a save is accepted.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, key)
		}
		return ys
	}

	out.Uploads.AllowedExtensions = trimList(out.Uploads.AllowedExtensions)
	out.Scrape.Region = strings.ToLower(strings.TrimSpace(out.Scrape.Region))

	// ---- Validation rules ----

	if out.Scrape.MaxResults <= 0 {
		res.addErr("scrape.max_results must be > 0")
	} else if out.Scrape.MaxResults > 100 {
		res.addWarn("scrape.max_results is very high (%d); detail fetches make each result a full page load.", out.Scrape.MaxResults)
	}

	if out.Scrape.PaceMillis <= 0 {
		res.addWarn("scrape.pace_millis is 0; requests will not be paced.")
	} else if out.Scrape.PaceMillis < 500 {
		res.addWarn("scrape.pace_millis is very low (%d) and may cause rate limits.", out.Scrape.PaceMillis)
	}

	if out.Scrape.BulkConcurrency < 0 {
		res.addErr("scrape.bulk_concurrency must be >= 0")
	} else if out.Scrape.BulkConcurrency > 8 {
		res.addWarn("scrape.bulk_concurrency is high (%d); the per-host pacer serializes requests anyway.", out.Scrape.BulkConcurrency)
	}

	names := map[string]bool{}
	for i, r := range out.Scrape.Regions {
		name := strings.ToLower(strings.TrimSpace(r.Name))
		out.Scrape.Regions[i].Name = name
		if name == "" {
			res.addErr("scrape.regions[%d].name is required", i)
			continue
		}
		if names[name] {
			res.addWarn("region defined more than once: %q", name)
		}
		names[name] = true
		if u, err := url.Parse(r.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("scrape.regions[%d].base_url must be an absolute URL", i)
		}
	}
	if out.Scrape.Region != "" && len(names) > 0 && !names[out.Scrape.Region] {
		res.addErr("scrape.region %q is not in scrape.regions", out.Scrape.Region)
	}

	// tracker fields are optional as a set, required together
	trackerSite := strings.TrimSpace(out.Tracker.SiteURL)
	trackerEmail := strings.TrimSpace(out.Tracker.Email)
	if (trackerSite == "") != (trackerEmail == "") {
		res.addErr("tracker.site_url and tracker.email must be set together")
	}

	if out.Uploads.MaxFileMB <= 0 {
		res.addWarn("uploads.max_file_mb is 0; uploads will be rejected.")
	}
	for _, ext := range out.Uploads.AllowedExtensions {
		if strings.ContainsAny(ext, "./\\") {
			res.addWarn("uploads.allowed_extensions entry %q should be a bare extension like \"png\"", ext)
		}
	}

	return out, res
}
