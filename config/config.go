package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"aptoslend/crypto"

	"github.com/BurntSushi/toml"
)

const (
	envNetwork   = "AAVE_NETWORK"
	envNodeURL   = "AAVE_NODE_URL"
	envAPIKey    = "AAVE_API_KEY"
	envConfig    = "AAVE_CONFIG"
	envRateLimit = "AAVE_REQUESTS_PER_SECOND"

	defaultTimeoutSeconds = 30
	defaultMaxGasAmount   = 200_000
	defaultGasUnitPrice   = 100
	defaultExpirySeconds  = 60
)

// Config is the resolved connection configuration for one deployment.
type Config struct {
	Network           string            `toml:"network"`
	NodeURL           string            `toml:"node_url"`
	APIKey            string            `toml:"api_key"`
	ChainID           uint8             `toml:"chain_id"`
	TimeoutSeconds    int               `toml:"timeout_seconds"`
	RequestsPerSecond float64           `toml:"requests_per_second"`
	MaxGasAmount      uint64            `toml:"max_gas_amount"`
	GasUnitPrice      uint64            `toml:"gas_unit_price"`
	ExpirySeconds     int               `toml:"expiry_seconds"`
	Addresses         map[string]string `toml:"addresses"`

	registry Registry
}

// ConfigPath returns the config file named by AAVE_CONFIG, if any.
func ConfigPath() string {
	return strings.TrimSpace(os.Getenv(envConfig))
}

// Load resolves the configuration for network. The built-in profile is the
// base; the optional TOML file at path overrides it and environment variables
// override both. An empty network falls back to AAVE_NETWORK, then the
// file's network key, then local.
func Load(path, network string) (*Config, error) {
	var file Config
	if strings.TrimSpace(path) != "" {
		meta, err := toml.DecodeFile(path, &file)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, configErrorf(undecoded[0].String(), "unknown key in %s", path)
		}
	}

	network = strings.TrimSpace(network)
	if network == "" {
		network = stringFromEnv(envNetwork, strings.TrimSpace(file.Network))
	}
	if network == "" {
		network = ProfileLocal
	}

	profile, ok := LookupProfile(network)
	if !ok {
		return nil, configErrorf("network", "unknown profile %q (expected one of %s)", network, strings.Join(ProfileNames(), ", "))
	}

	cfg := &Config{
		Network:  profile.Name,
		NodeURL:  profile.NodeURL,
		ChainID:  profile.ChainID,
		registry: profile.Registry,
	}
	if err := cfg.merge(file); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) merge(file Config) error {
	if v := strings.TrimSpace(file.NodeURL); v != "" {
		cfg.NodeURL = v
	}
	if v := strings.TrimSpace(file.APIKey); v != "" {
		cfg.APIKey = v
	}
	if file.ChainID != 0 {
		cfg.ChainID = file.ChainID
	}
	if file.TimeoutSeconds != 0 {
		cfg.TimeoutSeconds = file.TimeoutSeconds
	}
	if file.RequestsPerSecond != 0 {
		cfg.RequestsPerSecond = file.RequestsPerSecond
	}
	if file.MaxGasAmount != 0 {
		cfg.MaxGasAmount = file.MaxGasAmount
	}
	if file.GasUnitPrice != 0 {
		cfg.GasUnitPrice = file.GasUnitPrice
	}
	if file.ExpirySeconds != 0 {
		cfg.ExpirySeconds = file.ExpirySeconds
	}
	for key, value := range file.Addresses {
		domain, ok := ParseDomain(key)
		if !ok || domain == DomainFramework {
			return configErrorf("addresses."+key, "unknown domain")
		}
		addr, err := crypto.ParseAddress(value)
		if err != nil {
			return configErrorf("addresses."+key, "%v", err)
		}
		cfg.registry[domain] = addr
	}
	return nil
}

func (cfg *Config) applyEnv() {
	cfg.NodeURL = stringFromEnv(envNodeURL, cfg.NodeURL)
	cfg.APIKey = stringFromEnv(envAPIKey, cfg.APIKey)
	if raw := strings.TrimSpace(os.Getenv(envRateLimit)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.RequestsPerSecond = parsed
		}
	}
}

func (cfg *Config) normalize() {
	cfg.NodeURL = strings.TrimRight(strings.TrimSpace(cfg.NodeURL), "/")
	cfg.NodeURL = strings.TrimSuffix(cfg.NodeURL, "/v1")
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.MaxGasAmount == 0 {
		cfg.MaxGasAmount = defaultMaxGasAmount
	}
	if cfg.GasUnitPrice == 0 {
		cfg.GasUnitPrice = defaultGasUnitPrice
	}
	if cfg.ExpirySeconds == 0 {
		cfg.ExpirySeconds = defaultExpirySeconds
	}
	cfg.Addresses = make(map[string]string, len(cfg.registry))
	for domain, addr := range cfg.registry {
		cfg.Addresses[string(domain)] = addr.String()
	}
}

func (cfg *Config) validate() error {
	if cfg.NodeURL == "" {
		return configErrorf("node_url", "required")
	}
	if !strings.HasPrefix(cfg.NodeURL, "http://") && !strings.HasPrefix(cfg.NodeURL, "https://") {
		return configErrorf("node_url", "must be an http(s) url, got %q", cfg.NodeURL)
	}
	if cfg.TimeoutSeconds < 0 {
		return configErrorf("timeout_seconds", "must be non-negative")
	}
	if cfg.RequestsPerSecond < 0 {
		return configErrorf("requests_per_second", "must be non-negative")
	}
	if cfg.ExpirySeconds < 0 {
		return configErrorf("expiry_seconds", "must be non-negative")
	}
	return nil
}

// Registry returns the module address table for the resolved profile.
func (cfg *Config) Registry() Registry {
	return cfg.registry.Clone()
}

// RequireAddresses fails when any of domains has no module address.
func (cfg *Config) RequireAddresses(domains ...Domain) error {
	for _, d := range domains {
		if _, err := cfg.registry.Address(d); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

func (cfg *Config) Expiry() time.Duration {
	return time.Duration(cfg.ExpirySeconds) * time.Second
}

// Sanitized returns a copy safe for logging.
func (cfg Config) Sanitized() Config {
	clone := cfg
	if clone.APIKey != "" {
		clone.APIKey = "***"
	}
	clone.registry = nil
	return clone
}

func stringFromEnv(key, fallback string) string {
	trimmed := strings.TrimSpace(os.Getenv(key))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
