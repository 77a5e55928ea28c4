package main

import (
	"errors"
	"io"
	"strings"

	"aptoslend/lending"
)

func runReservesCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("reserves", "", stderr)
	var aTokens, asTable bool
	fs.BoolVar(&aTokens, "atokens", false, "list aTokens instead of underlying assets")
	fs.BoolVar(&asTable, "table", false, "print a table instead of JSON")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	data := lending.NewDataProviderClient(env.caller, env.registry())
	list := data.GetAllReservesTokens
	if aTokens {
		list = data.GetAllATokens
	}
	tokens, err := list(rootCtx)
	if err != nil {
		return printError(stderr, err)
	}
	if asTable {
		rows := make([][]string, 0, len(tokens))
		for _, token := range tokens {
			rows = append(rows, []string{token.Symbol, token.TokenAddress.String()})
		}
		return writeTable(stdout, []string{"Symbol", "Address"}, rows)
	}
	if tokens == nil {
		tokens = []lending.TokenData{}
	}
	return writeJSON(stdout, tokens)
}

type reserveDataView struct {
	Asset                    string `json:"asset"`
	ID                       uint16 `json:"id"`
	ATokenAddress            string `json:"a_token_address"`
	VariableDebtTokenAddress string `json:"variable_debt_token_address"`
	LiquidityIndex           string `json:"liquidity_index"`
	CurrentLiquidityRate     string `json:"current_liquidity_rate"`
	VariableBorrowIndex      string `json:"variable_borrow_index"`
	CurrentVariableRate      string `json:"current_variable_borrow_rate"`
	LastUpdateTimestamp      uint64 `json:"last_update_timestamp"`
	AccruedToTreasury        string `json:"accrued_to_treasury"`
	IsolationModeTotalDebt   string `json:"isolation_mode_total_debt"`

	Decimals             string `json:"decimals"`
	LTV                  string `json:"ltv"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	LiquidationBonus     string `json:"liquidation_bonus"`
	ReserveFactor        string `json:"reserve_factor"`
	CollateralEnabled    bool   `json:"usage_as_collateral_enabled"`
	BorrowingEnabled     bool   `json:"borrowing_enabled"`
	Active               bool   `json:"active"`
	Frozen               bool   `json:"frozen"`
	BorrowCap            string `json:"borrow_cap"`
	SupplyCap            string `json:"supply_cap"`
	DebtCeiling          string `json:"debt_ceiling"`

	OptimalUsageRatio      string `json:"optimal_usage_ratio"`
	BaseVariableBorrowRate string `json:"base_variable_borrow_rate"`
	VariableRateSlope1     string `json:"variable_rate_slope1"`
	VariableRateSlope2     string `json:"variable_rate_slope2"`
}

// runReserveDataCommand prints the pool resource, risk configuration, caps
// and rate curve of one reserve.
func runReserveDataCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("reserve-data", "--asset SYMBOL|ADDRESS", stderr)
	var asset string
	fs.StringVar(&asset, "asset", "", "reserve symbol or underlying asset address")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	ctx := rootCtx
	addr, err := env.reserveAsset(ctx, asset)
	if err != nil {
		return printError(stderr, err)
	}

	registry := env.registry()
	reserve, err := lending.NewPoolClient(env.caller, registry, nil).GetReserveData(ctx, addr)
	if err != nil {
		return printError(stderr, err)
	}
	data := lending.NewDataProviderClient(env.caller, registry)
	cfg, err := data.GetReserveConfigurationData(ctx, addr)
	if err != nil {
		return printError(stderr, err)
	}
	caps, err := data.GetReserveCaps(ctx, addr)
	if err != nil {
		return printError(stderr, err)
	}
	ceiling, err := data.GetDebtCeiling(ctx, addr)
	if err != nil {
		return printError(stderr, err)
	}
	strategy, err := lending.NewRateClient(env.caller, registry, nil).GetStrategy(ctx, addr)
	if err != nil {
		return printError(stderr, err)
	}

	return writeJSON(stdout, reserveDataView{
		Asset:                    addr.String(),
		ID:                       reserve.ID,
		ATokenAddress:            reserve.ATokenAddress.String(),
		VariableDebtTokenAddress: reserve.VariableDebtTokenAddress.String(),
		LiquidityIndex:           amountString(reserve.LiquidityIndex),
		CurrentLiquidityRate:     amountString(reserve.CurrentLiquidityRate),
		VariableBorrowIndex:      amountString(reserve.VariableBorrowIndex),
		CurrentVariableRate:      amountString(reserve.CurrentVariableBorrowRate),
		LastUpdateTimestamp:      reserve.LastUpdateTimestamp,
		AccruedToTreasury:        amountString(reserve.AccruedToTreasury),
		IsolationModeTotalDebt:   amountString(reserve.IsolationModeTotalDebt),

		Decimals:             amountString(cfg.Decimals),
		LTV:                  amountString(cfg.LTV),
		LiquidationThreshold: amountString(cfg.LiquidationThreshold),
		LiquidationBonus:     amountString(cfg.LiquidationBonus),
		ReserveFactor:        amountString(cfg.ReserveFactor),
		CollateralEnabled:    cfg.UsageAsCollateralEnabled,
		BorrowingEnabled:     cfg.BorrowingEnabled,
		Active:               cfg.IsActive,
		Frozen:               cfg.IsFrozen,
		BorrowCap:            amountString(caps.BorrowCap),
		SupplyCap:            amountString(caps.SupplyCap),
		DebtCeiling:          amountString(ceiling),

		OptimalUsageRatio:      amountString(strategy.OptimalUsageRatio),
		BaseVariableBorrowRate: amountString(strategy.BaseVariableBorrowRate),
		VariableRateSlope1:     amountString(strategy.VariableRateSlope1),
		VariableRateSlope2:     amountString(strategy.VariableRateSlope2),
	})
}

type priceView struct {
	Asset     string `json:"asset"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

func runPriceCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("price", "--asset SYMBOL|ADDRESS[,...]", stderr)
	var assets string
	fs.StringVar(&assets, "asset", "", "comma separated reserve symbols or asset addresses")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	oracle := lending.NewOracleClient(env.caller, env.registry(), nil)

	var refs []string
	for _, ref := range strings.Split(assets, ",") {
		if strings.TrimSpace(ref) != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return printError(stderr, errors.New("--asset is required"))
	}

	views := make([]priceView, 0, len(refs))
	for _, ref := range refs {
		addr, err := env.reserveAsset(rootCtx, ref)
		if err != nil {
			return printError(stderr, err)
		}
		price, err := oracle.GetAssetPriceAndTimestamp(rootCtx, addr)
		if err != nil {
			return printError(stderr, err)
		}
		views = append(views, priceView{
			Asset:     addr.String(),
			Price:     amountString(price.Price),
			Timestamp: amountString(price.Timestamp),
		})
	}
	if len(views) == 1 {
		return writeJSON(stdout, views[0])
	}
	return writeJSON(stdout, views)
}

type positionView struct {
	User                        string               `json:"user"`
	TotalCollateralBase         string               `json:"total_collateral_base"`
	TotalDebtBase               string               `json:"total_debt_base"`
	AvailableBorrowsBase        string               `json:"available_borrows_base"`
	CurrentLiquidationThreshold string               `json:"current_liquidation_threshold"`
	LTV                         string               `json:"ltv"`
	HealthFactor                string               `json:"health_factor"`
	EModeCategory               string               `json:"emode_category"`
	Reserve                     *userReserveDataView `json:"reserve,omitempty"`
}

type userReserveDataView struct {
	Asset                    string `json:"asset"`
	CurrentATokenBalance     string `json:"current_a_token_balance"`
	CurrentVariableDebt      string `json:"current_variable_debt"`
	ScaledVariableDebt       string `json:"scaled_variable_debt"`
	LiquidityRate            string `json:"liquidity_rate"`
	UsageAsCollateralEnabled bool   `json:"usage_as_collateral_enabled"`
}

// runPositionCommand prints a user's aggregate account data and, with
// --asset, their balances in that reserve.
func runPositionCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("position", "[--user ADDRESS] [--asset SYMBOL|ADDRESS]", stderr)
	var user, asset, key string
	fs.StringVar(&user, "user", "", "account to inspect (defaults to the key's address)")
	fs.StringVar(&asset, "asset", "", "also print the user's data for this reserve")
	fs.StringVar(&key, "key", "", "private key used only to derive the user")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	userAddr, err := ownerAddress(user, key)
	if err != nil {
		return printError(stderr, err)
	}
	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	ctx := rootCtx
	pool := lending.NewPoolClient(env.caller, env.registry(), nil)
	account, err := pool.GetUserAccountData(ctx, userAddr)
	if err != nil {
		return printError(stderr, err)
	}
	emode, err := pool.GetUserEMode(ctx, userAddr)
	if err != nil {
		return printError(stderr, err)
	}
	view := positionView{
		User:                        userAddr.String(),
		TotalCollateralBase:         amountString(account.TotalCollateralBase),
		TotalDebtBase:               amountString(account.TotalDebtBase),
		AvailableBorrowsBase:        amountString(account.AvailableBorrowsBase),
		CurrentLiquidationThreshold: amountString(account.CurrentLiquidationThreshold),
		LTV:                         amountString(account.LTV),
		HealthFactor:                amountString(account.HealthFactor),
		EModeCategory:               amountString(emode),
	}

	if strings.TrimSpace(asset) != "" {
		addr, err := env.reserveAsset(ctx, asset)
		if err != nil {
			return printError(stderr, err)
		}
		reserve, err := lending.NewDataProviderClient(env.caller, env.registry()).GetUserReserveData(ctx, addr, userAddr)
		if err != nil {
			return printError(stderr, err)
		}
		view.Reserve = &userReserveDataView{
			Asset:                    addr.String(),
			CurrentATokenBalance:     amountString(reserve.CurrentATokenBalance),
			CurrentVariableDebt:      amountString(reserve.CurrentVariableDebt),
			ScaledVariableDebt:       amountString(reserve.ScaledVariableDebt),
			LiquidityRate:            amountString(reserve.LiquidityRate),
			UsageAsCollateralEnabled: reserve.UsageAsCollateralEnabled,
		}
	}
	return writeJSON(stdout, view)
}
