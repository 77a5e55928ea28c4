package config

import (
	"os"
	"strings"
)

// Role identifies an administrative or user identity whose signing key is
// read from the environment when not passed explicitly.
type Role string

const (
	RolePoolAdmin        Role = "pool_admin"
	RoleOracle           Role = "oracle"
	RoleUnderlyingTokens Role = "underlying_tokens"
	RoleAccount          Role = "account"
)

var roleEnv = map[Role]string{
	RolePoolAdmin:        "AAVE_POOL_ADMIN_PRIVATE_KEY",
	RoleOracle:           "AAVE_ORACLE_PRIVATE_KEY",
	RoleUnderlyingTokens: "AAVE_UNDERLYING_TOKENS_PRIVATE_KEY",
	RoleAccount:          "AAVE_ACCOUNT_PRIVATE_KEY",
}

// EnvVar returns the environment variable holding the role's key.
func (r Role) EnvVar() string {
	return roleEnv[r]
}

// RoleKey returns the explicit key when set, otherwise the role's environment
// variable. A missing key is a ConfigError naming the variable to set.
func RoleKey(role Role, explicit string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}
	env, ok := roleEnv[role]
	if !ok {
		return "", configErrorf(string(role), "unknown role")
	}
	value := strings.TrimSpace(os.Getenv(env))
	if value == "" {
		return "", configErrorf(env, "%s signing key is not set; pass it as a flag or export %s", strings.ReplaceAll(string(role), "_", " "), env)
	}
	return value, nil
}
