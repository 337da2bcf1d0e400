package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level         string        `yaml:"level"`
		Format        string        `yaml:"format"`
		Output        string        `yaml:"output"`
		BufferSize    int           `yaml:"buffer_size"`
		FlushInterval time.Duration `yaml:"flush_interval"`
		MaxEntries    int           `yaml:"max_entries"`
	} `yaml:"log"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory, redis, layered
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Quote struct {
		BaseURL    string        `yaml:"base_url"`
		ListURL    string        `yaml:"list_url"`
		Timeout    time.Duration `yaml:"timeout"`
		RatePerSec float64       `yaml:"rate_per_sec"`
		Burst      float64       `yaml:"burst"`
	} `yaml:"quote"`
	Indicator struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"indicator"`
	AI struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"ai"`
	Agents struct {
		RunOnStart    bool          `yaml:"run_on_start"`
		SuggestionTTL time.Duration `yaml:"suggestion_ttl"`
		HistoryKeep   int           `yaml:"history_keep"`
	} `yaml:"agents"`
	Update struct {
		Enabled  bool          `yaml:"enabled"`
		Repo     string        `yaml:"repo"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"update"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PANWATCH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("PANWATCH_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("PANWATCH_AI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("PANWATCH_AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("PANWATCH_AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.BufferSize == 0 {
		c.Log.BufferSize = 50
	}
	if c.Log.FlushInterval == 0 {
		c.Log.FlushInterval = 2 * time.Second
	}
	if c.Log.MaxEntries == 0 {
		c.Log.MaxEntries = 10000
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Quote.Timeout == 0 {
		c.Quote.Timeout = 10 * time.Second
	}
	if c.Quote.RatePerSec == 0 {
		c.Quote.RatePerSec = 5
	}
	if c.Quote.Burst == 0 {
		c.Quote.Burst = 10
	}
	if c.Indicator.Timeout == 0 {
		c.Indicator.Timeout = 15 * time.Second
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 2 * time.Minute
	}
	if c.Agents.SuggestionTTL == 0 {
		c.Agents.SuggestionTTL = 24 * time.Hour
	}
	if c.Agents.HistoryKeep == 0 {
		c.Agents.HistoryKeep = 500
	}
	if c.Update.CacheTTL == 0 {
		c.Update.CacheTTL = time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Cache.Backend != "memory" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for backend '%s'", c.Cache.Backend)
	}
	if c.Quote.BaseURL == "" {
		return fmt.Errorf("quote.base_url is required")
	}
	if c.Indicator.BaseURL == "" {
		return fmt.Errorf("indicator.base_url is required")
	}
	return nil
}
