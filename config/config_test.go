package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aptoslend/crypto"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLocalDefaults(t *testing.T) {
	t.Setenv(envNetwork, "")
	t.Setenv(envNodeURL, "")
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != ProfileLocal {
		t.Fatalf("expected local profile, got %q", cfg.Network)
	}
	if cfg.NodeURL != "http://127.0.0.1:8080" {
		t.Fatalf("unexpected node url %q", cfg.NodeURL)
	}
	if cfg.MaxGasAmount != defaultMaxGasAmount || cfg.GasUnitPrice != defaultGasUnitPrice {
		t.Fatalf("gas defaults not applied: %+v", cfg)
	}
	if missing := cfg.Registry().Missing(); len(missing) != 0 {
		t.Fatalf("local profile should be complete, missing %v", missing)
	}
}

func TestLoadFileOverridesProfile(t *testing.T) {
	t.Setenv(envNetwork, "")
	t.Setenv(envNodeURL, "")
	path := writeConfig(t, `
network = "testnet"
node_url = " https://example.invalid/v1/ "
requests_per_second = 4.5

[addresses]
pool = "0xabc"
Oracle = "def"
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != ProfileTestnet {
		t.Fatalf("expected testnet from file, got %q", cfg.Network)
	}
	if cfg.NodeURL != "https://example.invalid" {
		t.Fatalf("node url not normalized: %q", cfg.NodeURL)
	}
	if cfg.RequestsPerSecond != 4.5 {
		t.Fatalf("unexpected rate %v", cfg.RequestsPerSecond)
	}
	reg := cfg.Registry()
	pool, err := reg.Address(DomainPool)
	if err != nil {
		t.Fatalf("pool address: %v", err)
	}
	if pool != crypto.MustParseAddress("0xabc") {
		t.Fatalf("unexpected pool address %s", pool)
	}
	_, err = reg.Address(DomainACL)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for missing acl address, got %v", err)
	}
	if err := cfg.RequireAddresses(DomainPool, DomainOracle); err != nil {
		t.Fatalf("require addresses: %v", err)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	t.Setenv(envNetwork, "mainnet")
	t.Setenv(envNodeURL, "https://node.example")
	path := writeConfig(t, `network = "testnet"`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != ProfileMainnet || cfg.NodeURL != "https://node.example" {
		t.Fatalf("env did not win: %+v", cfg.Sanitized())
	}
}

func TestLoadRejectsUnknownKeysAndDomains(t *testing.T) {
	t.Setenv(envNetwork, "")
	path := writeConfig(t, `nodeurl = "http://x"`)
	if _, err := Load(path, ""); err == nil {
		t.Fatal("expected unknown key error")
	}
	path = writeConfig(t, "[addresses]\nvault = \"0x1\"\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatal("expected unknown domain error")
	}
	if _, err := Load("", "devnet-42"); err == nil {
		t.Fatal("expected unknown profile error")
	}
}

func TestFrameworkDomainAlwaysResolves(t *testing.T) {
	addr, err := Registry{}.Address(DomainFramework)
	if err != nil {
		t.Fatalf("framework address: %v", err)
	}
	if addr != FrameworkAddress {
		t.Fatalf("unexpected framework address %s", addr)
	}
}

func TestRoleKeyPrefersExplicitThenEnv(t *testing.T) {
	t.Setenv(RoleOracle.EnvVar(), "  0xfeed ")
	key, err := RoleKey(RoleOracle, "0xbeef")
	if err != nil || key != "0xbeef" {
		t.Fatalf("explicit key ignored: %q %v", key, err)
	}
	key, err = RoleKey(RoleOracle, "")
	if err != nil || key != "0xfeed" {
		t.Fatalf("env key not used: %q %v", key, err)
	}
}

func TestRoleKeyMissingIsConfigError(t *testing.T) {
	t.Setenv(RolePoolAdmin.EnvVar(), "")
	_, err := RoleKey(RolePoolAdmin, " ")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Key != "AAVE_POOL_ADMIN_PRIVATE_KEY" {
		t.Fatalf("unexpected key %q", cfgErr.Key)
	}
}
