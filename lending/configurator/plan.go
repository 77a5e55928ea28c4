package configurator

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"

	"aptoslend/crypto"
	"aptoslend/lending"
)

// Plan is a declarative deployment target loaded from YAML.
type Plan struct {
	Treasury crypto.Address
	Reserves []*ReserveConfig
	EModes   []EModeConfig
}

type planFile struct {
	Treasury string         `yaml:"treasury"`
	Reserves []reserveEntry `yaml:"reserves"`
	EModes   []emodeEntry   `yaml:"emodes"`
}

// Amounts are strings so values beyond 2^53 survive YAML decoding.
type reserveEntry struct {
	Symbol     string `yaml:"symbol"`
	Name       string `yaml:"name"`
	Decimals   uint8  `yaml:"decimals"`
	MaxSupply  string `yaml:"max_supply"`
	IconURI    string `yaml:"icon_uri"`
	ProjectURI string `yaml:"project_uri"`

	FeedID      string `yaml:"feed_id"`
	CustomPrice string `yaml:"custom_price"`

	OptimalUsageRatio      string `yaml:"optimal_usage_ratio"`
	BaseVariableBorrowRate string `yaml:"base_variable_borrow_rate"`
	VariableRateSlope1     string `yaml:"variable_rate_slope1"`
	VariableRateSlope2     string `yaml:"variable_rate_slope2"`

	LTV                  string `yaml:"ltv"`
	LiquidationThreshold string `yaml:"liquidation_threshold"`
	LiquidationBonus     string `yaml:"liquidation_bonus"`
	ReserveFactor        string `yaml:"reserve_factor"`
	BorrowCap            string `yaml:"borrow_cap"`
	SupplyCap            string `yaml:"supply_cap"`

	BorrowingEnabled      bool  `yaml:"borrowing_enabled"`
	FlashLoanEnabled      bool  `yaml:"flash_loan_enabled"`
	BorrowableInIsolation bool  `yaml:"borrowable_in_isolation"`
	Active                *bool `yaml:"active"`
	Paused                bool  `yaml:"paused"`
	Frozen                bool  `yaml:"frozen"`

	EModeCategory uint8  `yaml:"emode_category"`
	DebtCeiling   string `yaml:"debt_ceiling"`

	ATokenName              string `yaml:"a_token_name"`
	ATokenSymbol            string `yaml:"a_token_symbol"`
	VariableDebtTokenName   string `yaml:"variable_debt_token_name"`
	VariableDebtTokenSymbol string `yaml:"variable_debt_token_symbol"`
}

type emodeEntry struct {
	ID                   uint8  `yaml:"id"`
	LTV                  uint16 `yaml:"ltv"`
	LiquidationThreshold uint16 `yaml:"liquidation_threshold"`
	LiquidationBonus     uint16 `yaml:"liquidation_bonus"`
	Oracle               string `yaml:"oracle"`
	Label                string `yaml:"label"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("plan path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer file.Close()

	var raw planFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	plan, err := raw.toPlan()
	if err != nil {
		return nil, err
	}
	if err := validatePlan(plan.Reserves); err != nil {
		return nil, err
	}
	return plan, nil
}

func (f planFile) toPlan() (*Plan, error) {
	plan := &Plan{}
	if treasury := strings.TrimSpace(f.Treasury); treasury != "" {
		addr, err := crypto.ParseAddress(treasury)
		if err != nil {
			return nil, fmt.Errorf("treasury: %w", err)
		}
		plan.Treasury = addr
	}
	for i, entry := range f.Reserves {
		reserve, err := entry.toReserve()
		if err != nil {
			return nil, fmt.Errorf("reserves[%d]: %w", i, err)
		}
		plan.Reserves = append(plan.Reserves, reserve)
	}
	for i, entry := range f.EModes {
		e := EModeConfig{
			ID:                   entry.ID,
			LTV:                  entry.LTV,
			LiquidationThreshold: entry.LiquidationThreshold,
			LiquidationBonus:     entry.LiquidationBonus,
			Label:                strings.TrimSpace(entry.Label),
		}
		if oracle := strings.TrimSpace(entry.Oracle); oracle != "" {
			addr, err := crypto.ParseAddress(oracle)
			if err != nil {
				return nil, fmt.Errorf("emodes[%d].oracle: %w", i, err)
			}
			e.Oracle = addr
		}
		plan.EModes = append(plan.EModes, e)
	}
	return plan, nil
}

func (e reserveEntry) toReserve() (*ReserveConfig, error) {
	r := &ReserveConfig{
		Symbol:                  strings.TrimSpace(e.Symbol),
		Name:                    strings.TrimSpace(e.Name),
		Decimals:                e.Decimals,
		IconURI:                 strings.TrimSpace(e.IconURI),
		ProjectURI:              strings.TrimSpace(e.ProjectURI),
		BorrowingEnabled:        e.BorrowingEnabled,
		FlashLoanEnabled:        e.FlashLoanEnabled,
		BorrowableInIsolation:   e.BorrowableInIsolation,
		Active:                  true,
		Paused:                  e.Paused,
		Frozen:                  e.Frozen,
		EModeCategory:           e.EModeCategory,
		ATokenName:              strings.TrimSpace(e.ATokenName),
		ATokenSymbol:            strings.TrimSpace(e.ATokenSymbol),
		VariableDebtTokenName:   strings.TrimSpace(e.VariableDebtTokenName),
		VariableDebtTokenSymbol: strings.TrimSpace(e.VariableDebtTokenSymbol),
	}
	if e.Active != nil {
		r.Active = *e.Active
	}
	if r.Name == "" {
		r.Name = r.Symbol
	}
	if feed := strings.TrimSpace(e.FeedID); feed != "" {
		decoded, err := hexutil.Decode(feed)
		if err != nil {
			return nil, fmt.Errorf("feed_id: %w", err)
		}
		r.FeedID = decoded
	}
	amounts := []struct {
		name     string
		raw      string
		dst      **big.Int
		optional bool
	}{
		{"max_supply", e.MaxSupply, &r.MaxSupply, true},
		{"custom_price", e.CustomPrice, &r.CustomPrice, true},
		{"optimal_usage_ratio", e.OptimalUsageRatio, &r.OptimalUsageRatio, false},
		{"base_variable_borrow_rate", e.BaseVariableBorrowRate, &r.BaseVariableBorrowRate, false},
		{"variable_rate_slope1", e.VariableRateSlope1, &r.VariableRateSlope1, false},
		{"variable_rate_slope2", e.VariableRateSlope2, &r.VariableRateSlope2, false},
		{"ltv", e.LTV, &r.LTV, false},
		{"liquidation_threshold", e.LiquidationThreshold, &r.LiquidationThreshold, false},
		{"liquidation_bonus", e.LiquidationBonus, &r.LiquidationBonus, false},
		{"reserve_factor", e.ReserveFactor, &r.ReserveFactor, false},
		{"borrow_cap", e.BorrowCap, &r.BorrowCap, true},
		{"supply_cap", e.SupplyCap, &r.SupplyCap, true},
		{"debt_ceiling", e.DebtCeiling, &r.DebtCeiling, true},
	}
	for _, a := range amounts {
		if strings.TrimSpace(a.raw) == "" {
			if !a.optional {
				return nil, fmt.Errorf("%s: %s required", r.Symbol, a.name)
			}
			continue
		}
		value, err := lending.ParseAmount(a.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", r.Symbol, a.name, err)
		}
		*a.dst = value
	}
	// Zero caps mean uncapped on chain.
	if r.BorrowCap == nil {
		r.BorrowCap = new(big.Int)
	}
	if r.SupplyCap == nil {
		r.SupplyCap = new(big.Int)
	}
	return r, nil
}
