package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Embedding provider
	ProviderType string `envconfig:"PROVIDER_TYPE" default:"insight"`
	InsightURL   string `envconfig:"INSIGHT_URL" default:"http://localhost:18081"`

	// Recognition defaults (runtime-tunable via Settings)
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.6"`
	DedupWindow         time.Duration `envconfig:"DEDUP_WINDOW" default:"30m"`

	// Camera defaults (runtime-tunable via Settings)
	DisplayInterval time.Duration `envconfig:"DISPLAY_INTERVAL" default:"500ms"`
	FrameSkip       int           `envconfig:"FRAME_SKIP" default:"5"`
	MaxFrameWidth   int           `envconfig:"MAX_FRAME_WIDTH" default:"1920"`
	JPEGQuality     int           `envconfig:"JPEG_QUALITY" default:"90"`
	ProbeTimeout    time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
