// Package cache stores rendered quote responses keyed by request. Each
// server owns its cache instance; nothing here is package-global.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/loan-quote/pkg/constants"
	"go.uber.org/zap"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A non-positive ttl keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Addr     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// New builds the cache named by opts.Backend. An empty backend disables
// caching.
func New(logger *zap.Logger, opts Options) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Backend {
	case "", constants.CacheBackendNone:
		return Nop{}, nil
	case constants.CacheBackendMemory:
		return NewMemoryCache(), nil
	case constants.CacheBackendRedis:
		c, err := NewRedisCache(context.Background(), opts)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to redis",
			zap.String("op", "cache.New"),
			zap.String("addr", opts.Addr),
			zap.Int("db", opts.DB),
		)
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards value.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
