package configurator

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"aptoslend/crypto"
	"aptoslend/gateway"
)

// ReserveConfig is the desired state of one reserve. Address is filled in by
// the token step and is not read from plan files.
type ReserveConfig struct {
	Symbol     string
	Name       string
	Decimals   uint8
	MaxSupply  *big.Int
	IconURI    string
	ProjectURI string

	// Price source: a feed id wins over a custom price.
	FeedID      []byte
	CustomPrice *big.Int

	OptimalUsageRatio      *big.Int
	BaseVariableBorrowRate *big.Int
	VariableRateSlope1     *big.Int
	VariableRateSlope2     *big.Int

	LTV                  *big.Int
	LiquidationThreshold *big.Int
	LiquidationBonus     *big.Int
	ReserveFactor        *big.Int
	BorrowCap            *big.Int
	SupplyCap            *big.Int

	BorrowingEnabled      bool
	FlashLoanEnabled      bool
	BorrowableInIsolation bool
	Active                bool
	Paused                bool
	Frozen                bool

	EModeCategory uint8
	DebtCeiling   *big.Int

	ATokenName              string
	ATokenSymbol            string
	VariableDebtTokenName   string
	VariableDebtTokenSymbol string

	Address crypto.Address
}

// EModeConfig defines one efficiency mode category.
type EModeConfig struct {
	ID                   uint8
	LTV                  uint16
	LiquidationThreshold uint16
	LiquidationBonus     uint16
	Oracle               crypto.Address
	Label                string
}

// Signers carries the role keys. Each may be nil when the steps needing it
// are not run.
type Signers struct {
	PoolAdmin gateway.Signer
	Oracle    gateway.Signer
	Tokens    gateway.Signer
}

var errInvalidReserve = errors.New("configurator: invalid reserve")

func (r *ReserveConfig) aTokenName() string {
	if r.ATokenName != "" {
		return r.ATokenName
	}
	return "Aave " + r.Symbol
}

func (r *ReserveConfig) aTokenSymbol() string {
	if r.ATokenSymbol != "" {
		return r.ATokenSymbol
	}
	return "a" + r.Symbol
}

func (r *ReserveConfig) debtTokenName() string {
	if r.VariableDebtTokenName != "" {
		return r.VariableDebtTokenName
	}
	return "Aave Variable Debt " + r.Symbol
}

func (r *ReserveConfig) debtTokenSymbol() string {
	if r.VariableDebtTokenSymbol != "" {
		return r.VariableDebtTokenSymbol
	}
	return "variableDebt" + r.Symbol
}

// validate checks the fields every step needs, so a bad entry fails before
// any transaction is sent.
func (r *ReserveConfig) validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("%w: symbol required", errInvalidReserve)
	}
	if len(r.FeedID) == 0 && r.CustomPrice == nil {
		return fmt.Errorf("%w: %s: feed id or custom price required", errInvalidReserve, r.Symbol)
	}
	required := []struct {
		name  string
		value *big.Int
	}{
		{"optimal_usage_ratio", r.OptimalUsageRatio},
		{"base_variable_borrow_rate", r.BaseVariableBorrowRate},
		{"variable_rate_slope1", r.VariableRateSlope1},
		{"variable_rate_slope2", r.VariableRateSlope2},
		{"ltv", r.LTV},
		{"liquidation_threshold", r.LiquidationThreshold},
		{"liquidation_bonus", r.LiquidationBonus},
		{"reserve_factor", r.ReserveFactor},
		{"borrow_cap", r.BorrowCap},
		{"supply_cap", r.SupplyCap},
	}
	for _, field := range required {
		if field.value == nil {
			return fmt.Errorf("%w: %s: %s required", errInvalidReserve, r.Symbol, field.name)
		}
	}
	return nil
}
