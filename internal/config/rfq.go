package config

import (
	"errors"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"

	"github.com/hxuan190/rfq-engine/internal/domain"
)

type RFQConfig struct {
	// CollectionWindow is how long a quote request waits for offers.
	// Default: 3000 ms
	CollectionWindow time.Duration

	// QuoteTTL is the lifetime of a stored quote.
	// Default: 300 s
	QuoteTTL time.Duration

	// Assets is the closed set a quote may reference. RFQ_ASSETS is a comma
	// separated list; empty means domain.DefaultAssets.
	Assets domain.AssetSet

	// RateLimit and RateBurst bound quote requests per client IP.
	RateLimit int
	RateBurst int
}

func (c *RFQConfig) Key() string {
	return RFQ_CONFIG_KEY
}

func (c *RFQConfig) Load() error {
	c.CollectionWindow = time.Duration(common.GetEnvOrDefaultInt("RFQ_COLLECTION_WINDOW_MS", 3000)) * time.Millisecond
	c.QuoteTTL = time.Duration(common.GetEnvOrDefaultInt("RFQ_QUOTE_TTL_SECONDS", 300)) * time.Second

	if raw := common.GetEnvOrDefault("RFQ_ASSETS", ""); raw != "" {
		c.Assets = domain.ParseAssetSet(raw)
	} else {
		c.Assets = domain.NewAssetSet(domain.DefaultAssets...)
	}

	c.RateLimit = common.GetEnvOrDefaultInt("RFQ_RATE_LIMIT", 10)
	c.RateBurst = common.GetEnvOrDefaultInt("RFQ_RATE_BURST", 20)
	return c.Validate()
}

func (c *RFQConfig) Validate() error {
	if c.CollectionWindow <= 0 || c.QuoteTTL <= 0 {
		return errors.New("invalid rfq config: window and ttl must be positive")
	}
	if c.QuoteTTL <= c.CollectionWindow {
		return errors.New("invalid rfq config: quote ttl must outlast the collection window")
	}
	if len(c.Assets) < 2 {
		return errors.New("invalid rfq config: at least two assets required")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("invalid rfq config: rate limit and burst must be positive")
	}
	return nil
}
