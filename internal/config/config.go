// Package config loads runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Addr   string `env:"SLIMEPOND_ADDR" envDefault:":8080"`
	DBPath string `env:"SLIMEPOND_DB" envDefault:"slimepond.db"`

	// Anthropic API settings. An empty key runs the pond fully offline
	// with canned phrases.
	AnthropicKey string  `env:"ANTHROPIC_API_KEY"`
	Model        string  `env:"SLIMEPOND_MODEL" envDefault:"claude-3-5-haiku-latest"`
	Endpoint     string  `env:"SLIMEPOND_LLM_ENDPOINT"`
	MaxTokens    int     `env:"SLIMEPOND_MAX_TOKENS" envDefault:"300"`
	Temperature  float64 `env:"SLIMEPOND_TEMPERATURE" envDefault:"0.9"`

	JWTSecret string `env:"SLIMEPOND_JWT_SECRET"`

	// Optional OpenWeatherMap integration. Empty key keeps the
	// noise-driven sky.
	WeatherKey      string `env:"OPENWEATHER_API_KEY"`
	WeatherLocation string `env:"SLIMEPOND_WEATHER_LOCATION"`

	SceneWidth  float64  `env:"SLIMEPOND_SCENE_WIDTH" envDefault:"800"`
	Seed        int64    `env:"SLIMEPOND_SEED" envDefault:"0"`
	CORSOrigins []string `env:"SLIMEPOND_CORS_ORIGINS" envSeparator:","`

	ChatPerMin int `env:"SLIMEPOND_CHAT_PER_MIN" envDefault:"20"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SceneWidth < 200 {
		return Config{}, fmt.Errorf("scene width %v too small", cfg.SceneWidth)
	}
	if cfg.JWTSecret == "" {
		// Accounts stay usable on a dev box without extra setup. Tokens
		// will not survive a restart.
		cfg.JWTSecret = "dev-only-secret"
	}
	return cfg, nil
}
