package lending

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// ParseAmount parses an unsigned base-10 amount. Values up to 2^256-1 are
// accepted so every on-chain u256 quantity can be expressed; the canonical
// form of the input (no sign, no leading zeros) round-trips through String.
func ParseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q is not an unsigned integer", ErrInvalidAmount, value)
		}
	}
	parsed, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if _, overflow := uint256.FromBig(parsed); overflow {
		return nil, fmt.Errorf("%w: %q exceeds 256 bits", ErrInvalidAmount, value)
	}
	return parsed, nil
}

// ParsePositiveAmount is ParseAmount rejecting zero.
func ParsePositiveAmount(label, value string) (*big.Int, error) {
	amount, err := ParseAmount(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("%s: %w: must be positive", label, ErrInvalidAmount)
	}
	return amount, nil
}

// ParseUint64Amount parses an amount for functions that take u64 (token
// mint/transfer, APT transfers).
func ParseUint64Amount(value string) (uint64, error) {
	amount, err := ParseAmount(value)
	if err != nil {
		return 0, err
	}
	if !amount.IsUint64() {
		return 0, fmt.Errorf("%w: %q exceeds 64 bits", ErrInvalidAmount, value)
	}
	return amount.Uint64(), nil
}

// MaxAmount is 2^256-1. The pool interprets it as "the whole balance" for
// withdraw and repay.
func MaxAmount() *big.Int {
	return new(uint256.Int).SetAllOne().ToBig()
}
