package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Questions QuestionsConfig `yaml:"questions"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Judge     JudgeConfig     `yaml:"judge"`
	Game      GameConfig      `yaml:"game"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	TTL      string `yaml:"ttl" env:"REDIS_TTL"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"POSTGRES_URL"`
}

type QuestionsConfig struct {
	File     string `yaml:"file" env:"QUESTIONS_FILE"`
	TTL      string `yaml:"ttl" env:"QUESTIONS_TTL"`
	TimeZone string `yaml:"timeZone" env:"QUESTIONS_TIME_ZONE"`
	// Variant is "single" or "multi" and caps the served set at 1 or 3
	// questions. Empty serves whatever the source holds for the date.
	Variant string `yaml:"variant" env:"QUESTIONS_VARIANT"`
}

type MatcherConfig struct {
	Tiers []string `yaml:"tiers" env:"MATCHER_TIERS" envSeparator:","`
}

type JudgeConfig struct {
	APIKey  string `yaml:"apiKey" env:"ANTHROPIC_API_KEY"`
	Model   string `yaml:"model" env:"JUDGE_MODEL"`
	BaseURL string `yaml:"baseURL" env:"JUDGE_BASE_URL"`
	Timeout string `yaml:"timeout" env:"JUDGE_TIMEOUT"`
}

type GameConfig struct {
	TimerSeconds     int `yaml:"timerSeconds" env:"GAME_TIMER_SECONDS"`
	SingleWagerFloor int `yaml:"singleWagerFloor" env:"GAME_SINGLE_WAGER_FLOOR"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load reads YAML config from path, then overlays environment variables
// (optionally sourced from a local .env file). A missing file is not an
// error so the service can run from the environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logrus.Infof("config file %s not found, using environment only", path)
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config from environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late at startup.
func (c Config) Validate() error {
	if c.Game.TimerSeconds < 0 {
		return fmt.Errorf("game.timerSeconds must be non-negative, got %d", c.Game.TimerSeconds)
	}
	if c.Game.SingleWagerFloor < 0 {
		return fmt.Errorf("game.singleWagerFloor must be non-negative, got %d", c.Game.SingleWagerFloor)
	}
	switch strings.ToLower(c.Questions.Variant) {
	case "", "single", "multi":
	default:
		return fmt.Errorf("questions.variant must be single or multi, got %q", c.Questions.Variant)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
