package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// apiKeyPlaceholder ships in example configs and never enables the client.
const apiKeyPlaceholder = "your-openai-api-key-here"

// OpenAIConfig holds settings for the OpenAI-backed generation client.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api-key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max-tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Configured reports whether the OpenAI client can make calls.
func (c OpenAIConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != apiKeyPlaceholder
}

// LoadOpenAIConfig loads OpenAI settings from the YAML config file.
func LoadOpenAIConfig(configPath string) (OpenAIConfig, error) {
	// fileConfig maps the YAML fields needed for OpenAI settings.
	type fileConfig struct {
		OpenAI OpenAIConfig `yaml:"openai"`
	}

	result := OpenAIConfig{
		Model:       "gpt-4o-mini",
		MaxTokens:   1500,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
				result.APIKey = strings.TrimSpace(cfg.OpenAI.APIKey)
			}
			if strings.TrimSpace(cfg.OpenAI.Model) != "" {
				result.Model = strings.TrimSpace(cfg.OpenAI.Model)
			}
			if cfg.OpenAI.MaxTokens > 0 {
				result.MaxTokens = cfg.OpenAI.MaxTokens
			}
			if cfg.OpenAI.Temperature > 0 {
				result.Temperature = cfg.OpenAI.Temperature
			}
			if cfg.OpenAI.Timeout > 0 {
				result.Timeout = cfg.OpenAI.Timeout
			}
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)); key != "" {
		result.APIKey = key
	}
	return result, nil
}

// GenerationConfig holds blog generation limits and targets.
type GenerationConfig struct {
	DailyMax           int `yaml:"daily-max"`
	ContentLength      int `yaml:"content-length"`
	TitleLength        int `yaml:"title-length"`
	MetaLength         int `yaml:"meta-length"`
	RateLimitPerSec    int `yaml:"rate-limit-per-sec"`
	UsageRetentionDays int `yaml:"usage-retention-days"`
}

// LoadGenerationConfig loads generation settings from the YAML config file.
func LoadGenerationConfig(configPath string) (GenerationConfig, error) {
	// fileConfig maps the YAML fields needed for generation settings.
	type fileConfig struct {
		Generation GenerationConfig `yaml:"generation"`
	}

	result := GenerationConfig{
		DailyMax:           4,
		ContentLength:      800,
		TitleLength:        60,
		MetaLength:         160,
		UsageRetentionDays: 30,
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if cfg.Generation.DailyMax > 0 {
				result.DailyMax = cfg.Generation.DailyMax
			}
			if cfg.Generation.ContentLength > 0 {
				result.ContentLength = cfg.Generation.ContentLength
			}
			if cfg.Generation.TitleLength > 0 {
				result.TitleLength = cfg.Generation.TitleLength
			}
			if cfg.Generation.MetaLength > 0 {
				result.MetaLength = cfg.Generation.MetaLength
			}
			if cfg.Generation.RateLimitPerSec > 0 {
				result.RateLimitPerSec = cfg.Generation.RateLimitPerSec
			}
			if cfg.Generation.UsageRetentionDays > 0 {
				result.UsageRetentionDays = cfg.Generation.UsageRetentionDays
			}
		}
	}
	return result, nil
}

// ImageConfig holds settings for downloaded blog images.
type ImageConfig struct {
	Dir             string        `yaml:"dir"`
	DownloadTimeout time.Duration `yaml:"download-timeout"`
}

// LoadImageConfig loads image storage settings from the YAML config file.
func LoadImageConfig(configPath string) (ImageConfig, error) {
	// fileConfig maps the YAML fields needed for image settings.
	type fileConfig struct {
		Images ImageConfig `yaml:"images"`
	}

	result := ImageConfig{
		Dir:             "./blog_images",
		DownloadTimeout: 30 * time.Second,
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if strings.TrimSpace(cfg.Images.Dir) != "" {
				result.Dir = strings.TrimSpace(cfg.Images.Dir)
			}
			if cfg.Images.DownloadTimeout > 0 {
				result.DownloadTimeout = cfg.Images.DownloadTimeout
			}
		}
	}
	return result, nil
}

// SMTPConfig holds settings for verification email delivery.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	From        string `yaml:"from"`
	FrontendURL string `yaml:"frontend-url"`
}

// Configured reports whether email delivery can be attempted.
func (c SMTPConfig) Configured() bool {
	return strings.TrimSpace(c.Host) != "" && c.Port > 0
}

// LoadSMTPConfig loads SMTP settings from the YAML config file.
func LoadSMTPConfig(configPath string) (SMTPConfig, error) {
	// fileConfig maps the YAML fields needed for SMTP settings.
	type fileConfig struct {
		SMTP SMTPConfig `yaml:"smtp"`
	}

	result := SMTPConfig{
		Port:        587,
		FrontendURL: "http://localhost:3000",
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if strings.TrimSpace(cfg.SMTP.Host) != "" {
				result.Host = strings.TrimSpace(cfg.SMTP.Host)
			}
			if cfg.SMTP.Port > 0 {
				result.Port = cfg.SMTP.Port
			}
			result.Username = strings.TrimSpace(cfg.SMTP.Username)
			result.Password = cfg.SMTP.Password
			if strings.TrimSpace(cfg.SMTP.From) != "" {
				result.From = strings.TrimSpace(cfg.SMTP.From)
			}
			if strings.TrimSpace(cfg.SMTP.FrontendURL) != "" {
				result.FrontendURL = strings.TrimSpace(cfg.SMTP.FrontendURL)
			}
		}
	}

	if result.From == "" {
		result.From = result.Username
	}
	return result, nil
}

// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
const DefaultRateLimitRedisPrefix = "ppress:rl"

// RateLimitConfig holds rate limiter backend settings.
type RateLimitConfig struct {
	RedisEnabled  bool   `yaml:"redis-enabled"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// LoadRateLimitConfig loads rate limiter settings from the YAML config file.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	// fileConfig maps the YAML fields needed for rate limiter settings.
	type fileConfig struct {
		RateLimit RateLimitConfig `yaml:"rate-limit"`
	}

	result := RateLimitConfig{RedisPrefix: DefaultRateLimitRedisPrefix}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.RateLimit
		}
	}

	result.RedisAddr = strings.TrimSpace(result.RedisAddr)
	result.RedisPrefix = strings.TrimSpace(result.RedisPrefix)
	if result.RedisPrefix == "" {
		result.RedisPrefix = DefaultRateLimitRedisPrefix
	}
	if result.RedisDB < 0 {
		result.RedisDB = 0
	}
	return result, nil
}
