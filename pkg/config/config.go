// Package config loads and validates the engine's YAML configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// Duration wraps time.Duration so intervals can be written as "60s" or "5m"
// in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML renders the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full engine configuration.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Proxies struct {
		TestURL     string       `yaml:"test_url"`
		RotateEvery Duration     `yaml:"rotate_every"`
		Entries     []core.Proxy `yaml:"entries"`
	} `yaml:"proxies"`

	Jobs struct {
		PollEvery Duration              `yaml:"poll_every"`
		Platforms []core.PlatformConfig `yaml:"platforms"`
	} `yaml:"jobs"`

	Stats struct {
		Interval Duration `yaml:"interval"`
	} `yaml:"stats"`
}

// Default returns a configuration with every interval and path at its
// default value and no proxies or platforms configured.
func Default() Config {
	var cfg Config
	cfg.withDefaults()
	return cfg
}

func (c *Config) withDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/mmo.db"
	}
	if c.Proxies.TestURL == "" {
		c.Proxies.TestURL = "https://httpbin.org/ip"
	}
	if c.Proxies.RotateEvery == 0 {
		c.Proxies.RotateEvery = Duration(5 * time.Minute)
	}
	if c.Jobs.PollEvery == 0 {
		c.Jobs.PollEvery = Duration(60 * time.Second)
	}
	if c.Stats.Interval == 0 {
		c.Stats.Interval = Duration(time.Second)
	}
}

// Load reads and validates the YAML file at path. Failures are fatal
// configuration errors; an empty proxy or platform list is not a failure.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, core.NewConfigError("config", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, core.NewConfigError("config", err)
	}
	cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks structural constraints: proxy ports in range, platform
// URLs parseable, platform names unique, reward bounds sane.
func (c *Config) Validate() error {
	for _, p := range c.Proxies.Entries {
		if p.Host == "" {
			return core.NewConfigError("proxies", fmt.Errorf("entry with empty host"))
		}
		if p.Port <= 0 || p.Port > 65535 {
			return core.NewConfigError("proxies", fmt.Errorf("%s: port %d out of range", p.Host, p.Port))
		}
	}

	seen := make(map[string]bool, len(c.Jobs.Platforms))
	for _, pc := range c.Jobs.Platforms {
		if pc.Name == "" {
			return core.NewConfigError("jobs", fmt.Errorf("platform with empty name"))
		}
		if seen[pc.Name] {
			return core.NewConfigError("jobs", fmt.Errorf("duplicate platform %q", pc.Name))
		}
		seen[pc.Name] = true
		u, err := url.Parse(pc.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return core.NewConfigError("jobs", fmt.Errorf("platform %q: invalid base_url %q", pc.Name, pc.BaseURL))
		}
		if pc.MinReward < 0 || pc.MaxReward < 0 {
			return core.NewConfigError("jobs", fmt.Errorf("platform %q: negative reward bound", pc.Name))
		}
		if pc.MaxReward > 0 && pc.MinReward > pc.MaxReward {
			return core.NewConfigError("jobs", fmt.Errorf("platform %q: min_reward exceeds max_reward", pc.Name))
		}
	}
	return nil
}
