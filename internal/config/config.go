package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Target is one listings endpoint to ingest. Source selects the adapter:
// "careers" scrapes an HTML careers site, "boards" reads a JSON board API.
type Target struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	URL    string `yaml:"url"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir" env:"ALPHATRACK_DATA_DIR"`
	} `yaml:"app"`

	Polling struct {
		IntervalSeconds int `yaml:"interval_seconds" env:"ALPHATRACK_POLL_SECONDS"`
	} `yaml:"polling"`

	Fetch struct {
		HostReqPerSec float64 `yaml:"host_req_per_sec"`
		HostBurst     int     `yaml:"host_burst"`
	} `yaml:"fetch"`

	Raw struct {
		Enabled bool `yaml:"enabled" env:"ALPHATRACK_RAW"`
	} `yaml:"raw"`

	Targets []Target `yaml:"targets"`
}

// Load reads path as YAML, then lets ALPHATRACK_* environment variables
// override individual fields.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.DataDir == "" {
		c.App.DataDir = "data"
	}
	if c.Polling.IntervalSeconds == 0 {
		c.Polling.IntervalSeconds = 3600
	}
	if c.Fetch.HostReqPerSec == 0 {
		c.Fetch.HostReqPerSec = 1
	}
	if c.Fetch.HostBurst == 0 {
		c.Fetch.HostBurst = 2
	}
}
