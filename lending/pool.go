package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// PoolClient covers user actions against the lending pool and its reserve
// queries.
type PoolClient struct {
	base
}

func NewPoolClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *PoolClient {
	return &PoolClient{base: newBase(caller, registry, signer)}
}

// Supply deposits amount of asset on behalf of onBehalfOf.
func (c *PoolClient) Supply(ctx context.Context, asset crypto.Address, amount *big.Int, onBehalfOf crypto.Address, referralCode uint16) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSupply, gateway.Address(asset), gateway.U256(amount), gateway.Address(onBehalfOf), gateway.U16(referralCode))
}

// Withdraw redeems aTokens for the underlying asset. MaxAmount withdraws the
// whole balance.
func (c *PoolClient) Withdraw(ctx context.Context, asset crypto.Address, amount *big.Int, to crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnWithdraw, gateway.Address(asset), gateway.U256(amount), gateway.Address(to))
}

func (c *PoolClient) Borrow(ctx context.Context, asset crypto.Address, amount *big.Int, interestRateMode uint8, referralCode uint16, onBehalfOf crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnBorrow, gateway.Address(asset), gateway.U256(amount), gateway.U8(interestRateMode), gateway.U16(referralCode), gateway.Address(onBehalfOf))
}

func (c *PoolClient) Repay(ctx context.Context, asset crypto.Address, amount *big.Int, interestRateMode uint8, onBehalfOf crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnRepay, gateway.Address(asset), gateway.U256(amount), gateway.U8(interestRateMode), gateway.Address(onBehalfOf))
}

func (c *PoolClient) RepayWithATokens(ctx context.Context, asset crypto.Address, amount *big.Int, interestRateMode uint8) (*gateway.Receipt, error) {
	return c.submit(ctx, fnRepayWithATokens, gateway.Address(asset), gateway.U256(amount), gateway.U8(interestRateMode))
}

func (c *PoolClient) SetUserUseReserveAsCollateral(ctx context.Context, asset crypto.Address, useAsCollateral bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetUserUseReserveAsCollat, gateway.Address(asset), gateway.Bool(useAsCollateral))
}

func (c *PoolClient) SetUserEMode(ctx context.Context, categoryID uint8) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetUserEMode, gateway.U8(categoryID))
}

func (c *PoolClient) GetUserEMode(ctx context.Context, user crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetUserEMode, gateway.Address(user))
}

// GetReservesList returns the underlying asset of every initialized reserve.
func (c *PoolClient) GetReservesList(ctx context.Context) ([]crypto.Address, error) {
	return c.viewAddressList(ctx, fnGetReservesList)
}

func (c *PoolClient) GetReservesCount(ctx context.Context) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetReservesCount)
}

func (c *PoolClient) GetUserAccountData(ctx context.Context, user crypto.Address) (UserAccountData, error) {
	res, err := c.view(ctx, fnGetUserAccountData, gateway.Address(user))
	if err != nil {
		return UserAccountData{}, err
	}
	var out UserAccountData
	err = bigInts(res,
		&out.TotalCollateralBase,
		&out.TotalDebtBase,
		&out.AvailableBorrowsBase,
		&out.CurrentLiquidationThreshold,
		&out.LTV,
		&out.HealthFactor,
	)
	return out, err
}

// GetReserveData resolves the reserve object of asset and then reads each
// field through its own getter. The result is only returned when every
// field was fetched.
func (c *PoolClient) GetReserveData(ctx context.Context, asset crypto.Address) (ReserveData, error) {
	res, err := c.view(ctx, fnGetReserveData, gateway.Address(asset))
	if err != nil {
		return ReserveData{}, err
	}
	handle, err := res.Object(0)
	if err != nil {
		return ReserveData{}, err
	}

	out := ReserveData{Handle: handle}
	obj := gateway.Object(handle)

	res, err = c.view(ctx, fnReserveConfiguration, obj)
	if err != nil {
		return ReserveData{}, err
	}
	var bitmap struct {
		Data string `json:"data"`
	}
	if err := res.Decode(0, &bitmap); err != nil {
		return ReserveData{}, err
	}
	if out.Configuration, err = ParseAmount(bitmap.Data); err != nil {
		return ReserveData{}, &gateway.DecodingError{Function: res.Function, Index: 0, Err: err}
	}

	bigFields := []struct {
		id  functionID
		dst **big.Int
	}{
		{fnReserveLiquidityIndex, &out.LiquidityIndex},
		{fnReserveLiquidityRate, &out.CurrentLiquidityRate},
		{fnReserveVariableIndex, &out.VariableBorrowIndex},
		{fnReserveVariableRate, &out.CurrentVariableBorrowRate},
		{fnReserveAccruedToTreasury, &out.AccruedToTreasury},
		{fnReserveIsolationDebt, &out.IsolationModeTotalDebt},
	}
	for _, f := range bigFields {
		if *f.dst, err = c.viewBigInt(ctx, f.id, obj); err != nil {
			return ReserveData{}, err
		}
	}

	res, err = c.view(ctx, fnReserveLastUpdate, obj)
	if err != nil {
		return ReserveData{}, err
	}
	if out.LastUpdateTimestamp, err = res.Uint64(0); err != nil {
		return ReserveData{}, err
	}

	res, err = c.view(ctx, fnReserveID, obj)
	if err != nil {
		return ReserveData{}, err
	}
	if out.ID, err = res.Uint16(0); err != nil {
		return ReserveData{}, err
	}

	if out.ATokenAddress, err = c.viewAddress(ctx, fnReserveATokenAddress, obj); err != nil {
		return ReserveData{}, err
	}
	if out.VariableDebtTokenAddress, err = c.viewAddress(ctx, fnReserveVariableDebtAddress, obj); err != nil {
		return ReserveData{}, err
	}
	return out, nil
}

func (c *PoolClient) GetReserveAddressByID(ctx context.Context, id uint16) (crypto.Address, error) {
	return c.viewAddress(ctx, fnGetReserveAddressByID, gateway.U16(id))
}

func (c *PoolClient) GetEModeCategoryData(ctx context.Context, id uint8) (EModeCategory, error) {
	res, err := c.view(ctx, fnGetEModeCategoryData, gateway.U8(id))
	if err != nil {
		return EModeCategory{}, err
	}
	out := EModeCategory{ID: id}
	for i, dst := range []*uint16{&out.LTV, &out.LiquidationThreshold, &out.LiquidationBonus} {
		if *dst, err = res.Uint16(i); err != nil {
			return EModeCategory{}, err
		}
	}
	if out.PriceSource, err = res.Address(3); err != nil {
		return EModeCategory{}, err
	}
	if out.Label, err = res.String(4); err != nil {
		return EModeCategory{}, err
	}
	return out, nil
}
