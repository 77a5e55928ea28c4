package config

import (
	"strings"

	"aptoslend/crypto"
)

// Profile is a named deployment target: the fullnode to talk to and the
// package addresses of the protocol published on that network.
type Profile struct {
	Name      string
	NodeURL   string
	FaucetURL string
	ChainID   uint8
	Registry  Registry
}

const (
	ProfileLocal   = "local"
	ProfileTestnet = "testnet"
	ProfileMainnet = "mainnet"
)

// localPackage is the address the local deploy scripts publish the pool
// package (pool, configurator, data provider, rate strategy, incentives) to.
var localPackage = crypto.MustParseAddress("0x20")

var profiles = map[string]Profile{
	ProfileLocal: {
		Name:      ProfileLocal,
		NodeURL:   "http://127.0.0.1:8080",
		FaucetURL: "http://127.0.0.1:8081",
		ChainID:   4,
		Registry: Registry{
			DomainACL:        crypto.MustParseAddress("0x10"),
			DomainPool:       localPackage,
			DomainConfig:     localPackage,
			DomainData:       localPackage,
			DomainRate:       localPackage,
			DomainIncentives: localPackage,
			DomainOracle:     crypto.MustParseAddress("0x30"),
			DomainTokens:     crypto.MustParseAddress("0x40"),
		},
	},
	// Published package addresses for shared networks come from the
	// [addresses] table of the config file.
	ProfileTestnet: {
		Name:     ProfileTestnet,
		NodeURL:  "https://fullnode.testnet.aptoslabs.com",
		ChainID:  2,
		Registry: Registry{},
	},
	ProfileMainnet: {
		Name:     ProfileMainnet,
		NodeURL:  "https://fullnode.mainnet.aptoslabs.com",
		ChainID:  1,
		Registry: Registry{},
	},
}

// LookupProfile returns a copy of the built-in profile for name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, false
	}
	p.Registry = p.Registry.Clone()
	return p, true
}

// ProfileNames lists the built-in profiles.
func ProfileNames() []string {
	return []string{ProfileLocal, ProfileTestnet, ProfileMainnet}
}
