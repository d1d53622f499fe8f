package config

import (
	"errors"
	"slices"

	"github.com/andrew-solarstorm/go-packages/common"
)

type SuiConfig struct {
	RPCUrl string

	// PackageID, Module and StateObjectID locate the execute_intents entry
	// point and its shared state object.
	PackageID     string
	Module        string
	StateObjectID string

	GasBudget uint64

	// RelayerPrivateKey is the base58 ed25519 key that signs and pays for
	// settlement transactions.
	RelayerPrivateKey string
}

func (c *SuiConfig) Key() string {
	return SUI_CONFIG_KEY
}

func (c *SuiConfig) Load() error {
	c.RPCUrl = common.GetEnvOrDefault("SUI_RPC_URL", "https://fullnode.mainnet.sui.io:443")
	c.PackageID = common.GetEnvOrDefault("SUINTENTS_PACKAGE_ID", "")
	c.Module = common.GetEnvOrDefault("SUINTENTS_MODULE", "suintents")
	c.StateObjectID = common.GetEnvOrDefault("SUINTENTS_STATE_OBJECT_ID", "")
	c.GasBudget = uint64(common.GetEnvOrDefaultInt("SUI_GAS_BUDGET", 50_000_000))
	c.RelayerPrivateKey = common.GetEnvOrDefault("RELAYER_PRIVATE_KEY", "")
	return c.Validate()
}

func (c *SuiConfig) Validate() error {
	if slices.Contains([]string{c.RPCUrl, c.PackageID, c.Module, c.StateObjectID, c.RelayerPrivateKey}, "") {
		return errors.New("invalid sui config")
	}
	if c.GasBudget == 0 {
		return errors.New("invalid sui config: gas budget must be positive")
	}
	return nil
}
