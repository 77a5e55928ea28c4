package lending

import (
	"context"
	"math/big"
	"strings"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// DataProviderClient reads aggregated reserve and user data. It never
// submits transactions.
type DataProviderClient struct {
	base
}

func NewDataProviderClient(caller gateway.Caller, registry config.Registry) *DataProviderClient {
	return &DataProviderClient{base: newBase(caller, registry, nil)}
}

// GetAllReservesTokens lists the symbol and underlying asset of every reserve.
func (c *DataProviderClient) GetAllReservesTokens(ctx context.Context) ([]TokenData, error) {
	return c.tokenList(ctx, fnGetAllReservesTokens)
}

// GetAllATokens lists the symbol and address of every reserve's aToken.
func (c *DataProviderClient) GetAllATokens(ctx context.Context) ([]TokenData, error) {
	return c.tokenList(ctx, fnGetAllATokens)
}

func (c *DataProviderClient) tokenList(ctx context.Context, id functionID) ([]TokenData, error) {
	res, err := c.view(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []TokenData
	if err := res.Decode(0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReserveBySymbol finds a reserve by its underlying symbol,
// case-insensitively.
func (c *DataProviderClient) GetReserveBySymbol(ctx context.Context, symbol string) (TokenData, error) {
	tokens, err := c.GetAllReservesTokens(ctx)
	if err != nil {
		return TokenData{}, err
	}
	want := strings.TrimSpace(symbol)
	for _, token := range tokens {
		if strings.EqualFold(token.Symbol, want) {
			return token, nil
		}
	}
	return TokenData{}, &NotFoundError{Entity: "reserve", Key: symbol}
}

func (c *DataProviderClient) GetReserveConfigurationData(ctx context.Context, asset crypto.Address) (ReserveConfigurationData, error) {
	res, err := c.view(ctx, fnGetReserveConfiguration, gateway.Address(asset))
	if err != nil {
		return ReserveConfigurationData{}, err
	}
	var out ReserveConfigurationData
	if err := bigInts(res, &out.Decimals, &out.LTV, &out.LiquidationThreshold, &out.LiquidationBonus, &out.ReserveFactor); err != nil {
		return ReserveConfigurationData{}, err
	}
	flags := []*bool{&out.UsageAsCollateralEnabled, &out.BorrowingEnabled, &out.IsActive, &out.IsFrozen}
	for i, dst := range flags {
		if *dst, err = res.Bool(5 + i); err != nil {
			return ReserveConfigurationData{}, err
		}
	}
	return out, nil
}

func (c *DataProviderClient) GetReserveEModeCategory(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetReserveEModeCategory, gateway.Address(asset))
}

func (c *DataProviderClient) GetReserveCaps(ctx context.Context, asset crypto.Address) (ReserveCaps, error) {
	res, err := c.view(ctx, fnGetReserveCaps, gateway.Address(asset))
	if err != nil {
		return ReserveCaps{}, err
	}
	var out ReserveCaps
	err = bigInts(res, &out.BorrowCap, &out.SupplyCap)
	return out, err
}

func (c *DataProviderClient) GetPaused(ctx context.Context, asset crypto.Address) (bool, error) {
	return c.viewBool(ctx, fnGetPaused, gateway.Address(asset))
}

func (c *DataProviderClient) GetDebtCeiling(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetDebtCeiling, gateway.Address(asset))
}

func (c *DataProviderClient) GetDebtCeilingDecimals(ctx context.Context) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetDebtCeilingDecimals)
}

// GetReserveData returns the aggregate reserve snapshot from the data
// provider.
func (c *DataProviderClient) GetReserveData(ctx context.Context, asset crypto.Address) (ReserveData2, error) {
	res, err := c.view(ctx, fnGetReserveData2, gateway.Address(asset))
	if err != nil {
		return ReserveData2{}, err
	}
	var out ReserveData2
	err = bigInts(res,
		&out.Unbacked,
		&out.AccruedToTreasuryScaled,
		&out.TotalAToken,
		&out.TotalVariableDebt,
		&out.LiquidityRate,
		&out.VariableBorrowRate,
		&out.LiquidityIndex,
		&out.VariableBorrowIndex,
	)
	if err != nil {
		return ReserveData2{}, err
	}
	if out.LastUpdateTimestamp, err = res.Uint64(8); err != nil {
		return ReserveData2{}, err
	}
	return out, nil
}

func (c *DataProviderClient) GetUserReserveData(ctx context.Context, asset, user crypto.Address) (UserReserveData, error) {
	res, err := c.view(ctx, fnGetUserReserveData, gateway.Address(asset), gateway.Address(user))
	if err != nil {
		return UserReserveData{}, err
	}
	var out UserReserveData
	if err := bigInts(res, &out.CurrentATokenBalance, &out.CurrentVariableDebt, &out.ScaledVariableDebt, &out.LiquidityRate); err != nil {
		return UserReserveData{}, err
	}
	if out.UsageAsCollateralEnabled, err = res.Bool(4); err != nil {
		return UserReserveData{}, err
	}
	return out, nil
}

func (c *DataProviderClient) GetReserveTokensAddresses(ctx context.Context, asset crypto.Address) (ReserveTokens, error) {
	res, err := c.view(ctx, fnGetReserveTokensAddresses, gateway.Address(asset))
	if err != nil {
		return ReserveTokens{}, err
	}
	var out ReserveTokens
	if out.ATokenAddress, err = res.Address(0); err != nil {
		return ReserveTokens{}, err
	}
	if out.VariableDebtTokenAddress, err = res.Address(1); err != nil {
		return ReserveTokens{}, err
	}
	return out, nil
}

func (c *DataProviderClient) GetFlashLoanEnabled(ctx context.Context, asset crypto.Address) (bool, error) {
	return c.viewBool(ctx, fnGetFlashLoanEnabled, gateway.Address(asset))
}
