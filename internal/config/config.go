// Package config loads infoprobe settings from flags, INFOPROBE_* environment
// variables, an optional .env file, an optional YAML file and defaults, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/selimozcann/infoprobe/internal/job"
	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. INFOPROBE_PROBE_TIMEOUT.
const EnvPrefix = "INFOPROBE"

// Job store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	Scan     ScanConfig      `mapstructure:"scan"`
	Probe    ProbeConfig     `mapstructure:"probe"`
	Webhook  WebhookConfig   `mapstructure:"webhook"`
	Server   ServerConfig    `mapstructure:"server"`
	Jobs     JobsConfig      `mapstructure:"jobs"`
	Redis    job.RedisConfig `mapstructure:"redis"`
	Schedule ScheduleConfig  `mapstructure:"schedule"`
	Logger   logger.Config   `mapstructure:"logger"`
}

// ScanConfig holds the per-scan switches.
type ScanConfig struct {
	File            string `mapstructure:"file"`
	SubdomainsFile  string `mapstructure:"subdomains_file"`
	IgnoreSSL       bool   `mapstructure:"ignore_ssl"`
	FollowRedirects bool   `mapstructure:"follow_redirects"`
	CheckSubdomains bool   `mapstructure:"check_subdomains"`
	WebhookURL      string `mapstructure:"webhook_url"`
}

// ProbeConfig holds engine settings shared by all scans.
type ProbeConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	RateLimit   int           `mapstructure:"rate_limit"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type JobsConfig struct {
	Store string `mapstructure:"store"`
}

type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scan.file", "domains.txt")
	v.SetDefault("scan.subdomains_file", "sub-domains.txt")
	v.SetDefault("scan.ignore_ssl", false)
	v.SetDefault("scan.follow_redirects", false)
	v.SetDefault("scan.check_subdomains", false)
	v.SetDefault("scan.webhook_url", "")

	v.SetDefault("probe.path", "/info.php")
	v.SetDefault("probe.timeout", 5*time.Second)
	v.SetDefault("probe.concurrency", 10)
	v.SetDefault("probe.rate_limit", 0)
	v.SetDefault("probe.user_agent", "infoprobe/1.0")

	v.SetDefault("webhook.timeout", 10*time.Second)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("jobs.store", StoreMemory)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("schedule.cron", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", false)
	v.SetDefault("logger.output_paths", []string{"stderr"})
}

// Load reads .env and the config file into v, then decodes and validates.
// An explicit file must exist; the default infoprobe.yaml is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("infoprobe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Probe.Concurrency <= 0:
		return fmt.Errorf("%w: probe.concurrency must be greater than zero (got %d)", ErrInvalid, c.Probe.Concurrency)
	case c.Probe.Timeout <= 0:
		return fmt.Errorf("%w: probe.timeout must be > 0 (got %s)", ErrInvalid, c.Probe.Timeout)
	case c.Probe.RateLimit < 0:
		return fmt.Errorf("%w: probe.rate_limit must be >= 0 (got %d)", ErrInvalid, c.Probe.RateLimit)
	case c.Webhook.Timeout <= 0:
		return fmt.Errorf("%w: webhook.timeout must be > 0 (got %s)", ErrInvalid, c.Webhook.Timeout)
	case c.Jobs.Store != StoreMemory && c.Jobs.Store != StoreRedis:
		return fmt.Errorf("%w: jobs.store must be %q or %q (got %q)", ErrInvalid, StoreMemory, StoreRedis, c.Jobs.Store)
	case c.Scan.File == "":
		return fmt.Errorf("%w: scan.file is required", ErrInvalid)
	}
	return nil
}

// ScanConfig returns the per-scan values as the engine expects them.
func (c *Config) ScanConfig() model.ScanConfig {
	return model.ScanConfig{
		DomainFile:      c.Scan.File,
		SubdomainFile:   c.Scan.SubdomainsFile,
		IgnoreSSL:       c.Scan.IgnoreSSL,
		FollowRedirects: c.Scan.FollowRedirects,
		CheckSubdomains: c.Scan.CheckSubdomains,
		WebhookURL:      c.Scan.WebhookURL,
	}
}
