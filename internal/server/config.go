package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/loan-quote/internal/cache"
	"github.com/iwvelando/loan-quote/internal/config"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize string               `yaml:"maxBodySize"`
	QuoteConfig string               `yaml:"quoteConfig"` // optional loan-quote config for rates and policy
	Policy      string               `yaml:"policy" validate:"omitempty,oneof=strict permissive"`
	Logging     config.LoggingConfig `yaml:"logging"`
	Cache       CacheConfig          `yaml:"cache"`

	bodySizeBytes int64
	cacheTTL      time.Duration
}

// CacheConfig selects where quote responses are cached.
type CacheConfig struct {
	Backend  string `yaml:"backend" validate:"omitempty,oneof=none memory redis"`
	Addr     string `yaml:"addr" validate:"required_if=Backend redis"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	TTL      string `yaml:"ttl"`
	Prefix   string `yaml:"prefix"`
}

// Environment variables that override the file, typically set through .env.
const (
	envAddress       = constants.EnvPrefix + "_SERVER_ADDRESS"
	envPolicy        = constants.EnvPrefix + "_SERVER_POLICY"
	envCacheBackend  = constants.EnvPrefix + "_CACHE_BACKEND"
	envCacheAddr     = constants.EnvPrefix + "_CACHE_ADDR"
	envCachePassword = constants.EnvPrefix + "_CACHE_PASSWORD"
)

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:       constants.DefaultServerAddress,
		MaxBodySize:   fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		Logging:       config.LoggingConfig{},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		envAddress:       &c.Address,
		envPolicy:        &c.Policy,
		envCacheBackend:  &c.Cache.Backend,
		envCacheAddr:     &c.Cache.Addr,
		envCachePassword: &c.Cache.Password,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*target = value
		}
	}
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// CacheTTL returns how long cached quote responses live.
func (c *Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

// CacheOptions converts the cache section for cache.New.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Addr:     c.Cache.Addr,
		Password: c.Cache.Password,
		DB:       c.Cache.DB,
		Prefix:   c.Cache.Prefix,
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	c.Policy = strings.ToLower(strings.TrimSpace(c.Policy))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = constants.CacheBackendNone
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = constants.DefaultCachePrefix
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	c.cacheTTL = time.Duration(constants.DefaultCacheTTLSeconds) * time.Second
	if ttl := strings.TrimSpace(c.Cache.TTL); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
		c.cacheTTL = parsed
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "64K", "1M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
