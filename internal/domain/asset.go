package domain

import "strings"

// DefaultAssets is the asset set served when none is configured.
var DefaultAssets = []Asset{
	"bip122:000000000019d6689c085ae165831e93:btc",
	"eip155:1:eth",
	"eip155:1:usdt",
	"eip155:1:usdc",
	"eip155:8453:eth",
	"eip155:8453:usdc",
	"eip155:42161:eth",
	"eip155:42161:usdc",
	"sui:mainnet:sui",
	"sui:mainnet:usdc",
	"solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp:sol",
	"solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp:usdc",
}

// AssetSet is the closed set of assets a quote may reference.
type AssetSet map[Asset]struct{}

func NewAssetSet(assets ...Asset) AssetSet {
	set := make(AssetSet, len(assets))
	for _, a := range assets {
		set[a] = struct{}{}
	}
	return set
}

// ParseAssetSet builds a set from a comma separated list.
func ParseAssetSet(raw string) AssetSet {
	var assets []Asset
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			assets = append(assets, Asset(p))
		}
	}
	return NewAssetSet(assets...)
}

func (s AssetSet) Contains(a Asset) bool {
	_, ok := s[a]
	return ok
}
