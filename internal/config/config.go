package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Quality choices offered during the flow. The resolver API only serves these
// two renditions.
const (
	Quality480 = "480"
	Quality720 = "720"
)

// Limits applied to user input
const (
	MaxBatchNameLength = 64
)

// Config holds the environment driven configuration for the bot process.
type Config struct {
	// Service Configuration
	ServiceName string `env:"SERVICE_NAME" envDefault:"leech-bot"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram
	BotToken string `env:"BOT_TOKEN,notEmpty"`

	// Resolver endpoint for video links; the original URL and the user token
	// are appended as query parameters
	ResolverEndpoint string        `env:"RESOLVER_ENDPOINT" envDefault:"https://anonymouspwplayer-25261acd1521.herokuapp.com/pw"`
	ResolverTimeout  time.Duration `env:"RESOLVER_TIMEOUT" envDefault:"15s"`

	// Downloads
	DownloadDir  string        `env:"DOWNLOAD_DIR" envDefault:"/tmp/leech-bot"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"60s"`
	ToolRetries  int           `env:"TOOL_RETRIES" envDefault:"3"`

	// Session lifecycle
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// Health/metrics HTTP endpoint (PaaS keepalive probes hit this)
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.ResolverEndpoint = strings.TrimSpace(cfg.ResolverEndpoint)
	if cfg.ResolverEndpoint == "" {
		return nil, fmt.Errorf("RESOLVER_ENDPOINT must not be empty")
	}
	if cfg.IdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

// Addr returns the listen address of the health endpoint.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ValidQuality reports whether the given text is one of the accepted quality
// choices.
func ValidQuality(text string) bool {
	return text == Quality480 || text == Quality720
}

// QualityChoices returns the accepted quality inputs for error prompts.
func QualityChoices() []string {
	return []string{Quality480, Quality720}
}
