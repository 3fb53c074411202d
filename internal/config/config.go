// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultProvider string `yaml:"default_provider"` // openai | gemini
	PlannerModel    string `yaml:"planner_model"`
	SearchModel     string `yaml:"search_model"`
	WriterModel     string `yaml:"writer_model"`
	GuardModel      string `yaml:"guard_model"`      // classifier + auditor
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls process-wide
}

type MailConfig struct {
	SendGridKey string `yaml:"sendgrid_key"`
	FromEmail   string `yaml:"from_email"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables the search cache
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type PipelineConfig struct {
	HowManySearches int           `yaml:"how_many_searches"` // tasks the planner must produce
	MaxConcurrency  int           `yaml:"max_concurrency"`   // fan-out admission gate width
	StageTimeout    time.Duration `yaml:"stage_timeout"`     // per external call
	DrainTimeout    time.Duration `yaml:"drain_timeout"`     // shutdown wait for in-flight jobs
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	Mail     MailConfig     `yaml:"mail"`
	Redis    RedisConfig    `yaml:"redis"`
	Pipeline PipelineConfig `yaml:"pipeline"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultProvider == "" {
		cfg.AI.DefaultProvider = "openai"
	}
	if cfg.AI.PlannerModel == "" {
		cfg.AI.PlannerModel = "gpt-4o-mini"
	}
	if cfg.AI.SearchModel == "" {
		cfg.AI.SearchModel = "gpt-4o-mini"
	}
	if cfg.AI.WriterModel == "" {
		cfg.AI.WriterModel = "gpt-4o"
	}
	if cfg.AI.GuardModel == "" {
		cfg.AI.GuardModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Pipeline.HowManySearches <= 0 {
		cfg.Pipeline.HowManySearches = 3
	}
	if cfg.Pipeline.MaxConcurrency <= 0 {
		cfg.Pipeline.MaxConcurrency = 5
	}
	if cfg.Pipeline.StageTimeout <= 0 {
		cfg.Pipeline.StageTimeout = 30 * time.Second
	}
	if cfg.Pipeline.DrainTimeout <= 0 {
		cfg.Pipeline.DrainTimeout = 20 * time.Second
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation; keys may be absent in dev mode where the noop
	// adapters are wired instead.
	if !dev {
		if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
			return nil, errors.New("ai: at least one provider key is required")
		}
		if cfg.Mail.SendGridKey == "" {
			return nil, errors.New("mail.sendgrid_key is required")
		}
		if cfg.Mail.FromEmail == "" {
			return nil, errors.New("mail.from_email is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
