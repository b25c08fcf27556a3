// Package config loads the server configuration from a YAML file with
// environment-variable overrides for deployment-sensitive values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration fields are declared in milliseconds because YAML has no native
// duration type and the values are small enough to read at a glance.
type Config struct {
	// Endpoint is the base URL of the search service, e.g.
	// https://example.search.windows.net. Required.
	Endpoint string `yaml:"endpoint"`
	// APIKey is the admin key for the search service.
	APIKey string `yaml:"api_key"`
	// SummarizerModel overrides the model used for response summarization.
	SummarizerModel string `yaml:"summarizer_model"`

	// Budget controls response governance thresholds.
	Budget BudgetConfig `yaml:"budget"`

	// PollIntervalMS is the delay between verification polls.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// PollTimeoutMS bounds a whole polling loop.
	PollTimeoutMS int `yaml:"poll_timeout_ms"`
	// ElicitTimeoutMS bounds how long a tool call waits for the client to
	// answer an elicitation prompt.
	ElicitTimeoutMS int `yaml:"elicit_timeout_ms"`
}

type BudgetConfig struct {
	MaxRawBytes        int `yaml:"max_raw_bytes"`
	MaxChars           int `yaml:"max_chars"`
	MaxListItems       int `yaml:"max_list_items"`
	SummarizeTimeoutMS int `yaml:"summarize_timeout_ms"`
}

// Load reads the config file at path, then applies environment overrides
// and validates. An empty path skips the file and builds the config from
// the environment alone.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SEARCHGUARD_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("SEARCHGUARD_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("SEARCHGUARD_SUMMARIZER_MODEL"); v != "" {
		c.SummarizerModel = v
	}
}

// Validate checks required fields. Zero-valued thresholds stay zero here;
// the packages that consume them apply their own defaults.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint is required (set endpoint in the config file or SEARCHGUARD_ENDPOINT)")
	}
	if c.PollIntervalMS < 0 || c.PollTimeoutMS < 0 || c.ElicitTimeoutMS < 0 {
		return errors.New("config: timeouts must not be negative")
	}
	return nil
}

// PollInterval returns the configured poll interval, or zero when unset so
// the verifier falls back to its default.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

func (c *Config) ElicitTimeout() time.Duration {
	return time.Duration(c.ElicitTimeoutMS) * time.Millisecond
}

func (c *Config) SummarizeTimeout() time.Duration {
	return time.Duration(c.Budget.SummarizeTimeoutMS) * time.Millisecond
}
