package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/rfq-engine/internal/domain"
)

func TestRFQConfigDefaults(t *testing.T) {
	t.Setenv("RFQ_ASSETS", "")
	c := &RFQConfig{}
	require.NoError(t, c.Load())

	assert.Equal(t, 3000*time.Millisecond, c.CollectionWindow)
	assert.Equal(t, 300*time.Second, c.QuoteTTL)
	assert.Len(t, c.Assets, len(domain.DefaultAssets))
	assert.True(t, c.Assets.Contains("eip155:1:usdc"))
}

func TestRFQConfigAssetsFromEnv(t *testing.T) {
	t.Setenv("RFQ_ASSETS", "a:x, b:y ,,c:z")
	c := &RFQConfig{}
	require.NoError(t, c.Load())

	assert.Len(t, c.Assets, 3)
	assert.True(t, c.Assets.Contains("b:y"))
	assert.False(t, c.Assets.Contains("eip155:1:usdc"))
}

func TestRFQConfigValidate(t *testing.T) {
	base := func() *RFQConfig {
		return &RFQConfig{
			CollectionWindow: time.Second,
			QuoteTTL:         time.Minute,
			Assets:           domain.NewAssetSet("a", "b"),
			RateLimit:        1,
			RateBurst:        1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *RFQConfig)
		ok     bool
	}{
		{"valid", func(c *RFQConfig) {}, true},
		{"zero window", func(c *RFQConfig) { c.CollectionWindow = 0 }, false},
		{"ttl shorter than window", func(c *RFQConfig) { c.QuoteTTL = time.Millisecond }, false},
		{"single asset", func(c *RFQConfig) { c.Assets = domain.NewAssetSet("a") }, false},
		{"no rate", func(c *RFQConfig) { c.RateLimit = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestStoreConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		conf StoreConfig
		ok   bool
	}{
		{"redis", StoreConfig{Backend: StoreBackendRedis, RedisURL: "redis://localhost:6379"}, true},
		{"redis without url", StoreConfig{Backend: StoreBackendRedis}, false},
		{"memory", StoreConfig{Backend: StoreBackendMemory}, true},
		{"bolt", StoreConfig{Backend: StoreBackendBolt, BoltPath: "x.db"}, true},
		{"bolt without path", StoreConfig{Backend: StoreBackendBolt}, false},
		{"unknown", StoreConfig{Backend: "etcd"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSuiConfigRequiresSettlementTarget(t *testing.T) {
	t.Setenv("SUINTENTS_PACKAGE_ID", "")
	c := &SuiConfig{}
	assert.Error(t, c.Load())

	t.Setenv("SUINTENTS_PACKAGE_ID", "0x2")
	t.Setenv("SUINTENTS_STATE_OBJECT_ID", "0x3")
	t.Setenv("RELAYER_PRIVATE_KEY", "key")
	require.NoError(t, c.Load())
	assert.Equal(t, "suintents", c.Module)
	assert.Equal(t, uint64(50_000_000), c.GasBudget)
}
