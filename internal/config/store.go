package config

import (
	"fmt"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
	StoreBackendBolt   = "bolt"
)

type StoreConfig struct {
	// Backend is one of redis, memory, bolt.
	// Default: redis
	Backend string

	RedisURL string

	// BoltPath is the bolt file used by the bolt backend.
	// Default: "./data/rfq-engine.db"
	BoltPath string

	// ReapInterval is how often the memory and bolt backends sweep expired keys.
	// Default: 30 s
	ReapInterval time.Duration
}

func (c *StoreConfig) Key() string {
	return STORE_CONFIG_KEY
}

func (c *StoreConfig) Load() error {
	c.Backend = common.GetEnvOrDefault("STORE_BACKEND", StoreBackendRedis)
	c.RedisURL = common.GetEnvOrDefault("REDIS_URL", "redis://localhost:6379/0")
	c.BoltPath = common.GetEnvOrDefault("BOLT_DB_PATH", "./data/rfq-engine.db")
	c.ReapInterval = time.Duration(common.GetEnvOrDefaultInt("STORE_REAP_INTERVAL_SECONDS", 30)) * time.Second
	return c.Validate()
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case StoreBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("invalid store config: REDIS_URL required for %s", c.Backend)
		}
	case StoreBackendMemory:
	case StoreBackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("invalid store config: BOLT_DB_PATH required for %s", c.Backend)
		}
	default:
		return fmt.Errorf("invalid store config: unknown backend %q", c.Backend)
	}
	return nil
}
