package config

import (
	"sort"
	"strings"

	"aptoslend/crypto"
)

// Domain names a logical group of on-chain modules published under one
// package address.
type Domain string

const (
	DomainPool       Domain = "pool"
	DomainOracle     Domain = "oracle"
	DomainTokens     Domain = "tokens"
	DomainConfig     Domain = "config"
	DomainData       Domain = "data"
	DomainRate       Domain = "rate"
	DomainACL        Domain = "acl"
	DomainIncentives Domain = "incentives"
	// DomainFramework is the Aptos framework at 0x1. It is never configurable.
	DomainFramework Domain = "framework"
)

// FrameworkAddress is the address of the Aptos framework modules.
var FrameworkAddress = crypto.MustParseAddress("0x1")

// Domains lists the configurable domains in a stable order.
func Domains() []Domain {
	return []Domain{
		DomainPool,
		DomainOracle,
		DomainTokens,
		DomainConfig,
		DomainData,
		DomainRate,
		DomainACL,
		DomainIncentives,
	}
}

// ParseDomain accepts a case-insensitive domain name.
func ParseDomain(value string) (Domain, bool) {
	candidate := Domain(strings.ToLower(strings.TrimSpace(value)))
	if candidate == DomainFramework {
		return candidate, true
	}
	for _, d := range Domains() {
		if d == candidate {
			return d, true
		}
	}
	return "", false
}

// Registry maps each domain to the package address of a deployment.
type Registry map[Domain]crypto.Address

// Address resolves the package address for domain.
func (r Registry) Address(domain Domain) (crypto.Address, error) {
	if domain == DomainFramework {
		return FrameworkAddress, nil
	}
	addr, ok := r[domain]
	if !ok || addr.IsZero() {
		return crypto.Address{}, configErrorf("addresses."+string(domain), "no module address configured")
	}
	return addr, nil
}

// Missing returns the configurable domains without an address, sorted.
func (r Registry) Missing() []Domain {
	var missing []Domain
	for _, d := range Domains() {
		if addr, ok := r[d]; !ok || addr.IsZero() {
			missing = append(missing, d)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// Clone returns an independent copy.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
