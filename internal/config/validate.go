package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownSources = map[string]bool{
	"careers": true,
	"boards":  true,
}

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.App.DataDir) == "" {
		errs = append(errs, "app.data_dir must not be empty")
	}
	if cfg.Polling.IntervalSeconds <= 0 {
		errs = append(errs, "polling.interval_seconds must be > 0")
	}
	if cfg.Fetch.HostReqPerSec <= 0 {
		errs = append(errs, "fetch.host_req_per_sec must be > 0")
	}
	if cfg.Fetch.HostBurst <= 0 {
		errs = append(errs, "fetch.host_burst must be > 0")
	}

	if len(cfg.Targets) == 0 {
		errs = append(errs, "targets must have at least 1 entry")
	}

	seen := map[string]bool{}
	for i, t := range cfg.Targets {
		if t.Name == "" {
			errs = append(errs, fmt.Sprintf("targets[%d].name is required", i))
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Sprintf("targets[%d].name %q is duplicated", i, t.Name))
		}
		seen[t.Name] = true
		if !knownSources[t.Source] {
			errs = append(errs, fmt.Sprintf("targets[%d].source must be \"careers\" or \"boards\", got %q", i, t.Source))
		}
		if !strings.HasPrefix(t.URL, "http://") && !strings.HasPrefix(t.URL, "https://") {
			errs = append(errs, fmt.Sprintf("targets[%d].url must be an http(s) URL", i))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
