package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

// Key fragments that mark an attribute as a secret wherever it is logged.
var secretMarkers = []string{
	"private_key",
	"privkey",
	"api_key",
	"apikey",
	"secret",
	"password",
	"passphrase",
	"seed",
	"mnemonic",
	"authorization",
}

// Keys whose values are public on chain or operational metadata.
var publicKeys = map[string]struct{}{
	"service":  {},
	"env":      {},
	"error":    {},
	"reason":   {},
	"address":  {},
	"sender":   {},
	"hash":     {},
	"function": {},
	"step":     {},
	"symbol":   {},
	"run_id":   {},
	"node_url": {},
}

func isSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range secretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// redactSecrets masks attributes whose key names a secret. Empty strings pass
// through so a missing value stays visible.
func redactSecrets(attr slog.Attr) slog.Attr {
	if !isSecretKey(attr.Key) {
		return attr
	}
	if attr.Value.Kind() == slog.KindString && strings.TrimSpace(attr.Value.String()) == "" {
		return attr
	}
	return slog.String(attr.Key, RedactedValue)
}

// MaskField redacts value unless key is known to be public.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" {
		return slog.String(key, value)
	}
	if _, ok := publicKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
