package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// RateClient manages the default interest rate strategy. Rates are in ray.
type RateClient struct {
	base
}

func NewRateClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *RateClient {
	return &RateClient{base: newBase(caller, registry, signer)}
}

func (c *RateClient) SetReserveInterestRateStrategy(ctx context.Context, asset crypto.Address, optimalUsageRatio, baseVariableBorrowRate, variableRateSlope1, variableRateSlope2 *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetRateStrategy,
		gateway.Address(asset),
		gateway.U256(optimalUsageRatio),
		gateway.U256(baseVariableBorrowRate),
		gateway.U256(variableRateSlope1),
		gateway.U256(variableRateSlope2),
	)
}

func (c *RateClient) GetOptimalUsageRatio(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetOptimalUsageRatio, gateway.Address(asset))
}

func (c *RateClient) GetBaseVariableBorrowRate(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetBaseVariableBorrowRate, gateway.Address(asset))
}

func (c *RateClient) GetVariableRateSlope1(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetVariableRateSlope1, gateway.Address(asset))
}

func (c *RateClient) GetVariableRateSlope2(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetVariableRateSlope2, gateway.Address(asset))
}

func (c *RateClient) GetMaxVariableBorrowRate(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetMaxVariableBorrowRate, gateway.Address(asset))
}

// GetStrategy reads the whole curve of asset, one getter per field.
func (c *RateClient) GetStrategy(ctx context.Context, asset crypto.Address) (InterestRateStrategy, error) {
	var out InterestRateStrategy
	fields := []struct {
		get func(context.Context, crypto.Address) (*big.Int, error)
		dst **big.Int
	}{
		{c.GetOptimalUsageRatio, &out.OptimalUsageRatio},
		{c.GetBaseVariableBorrowRate, &out.BaseVariableBorrowRate},
		{c.GetVariableRateSlope1, &out.VariableRateSlope1},
		{c.GetVariableRateSlope2, &out.VariableRateSlope2},
		{c.GetMaxVariableBorrowRate, &out.MaxVariableBorrowRate},
	}
	for _, f := range fields {
		value, err := f.get(ctx, asset)
		if err != nil {
			return InterestRateStrategy{}, err
		}
		*f.dst = value
	}
	return out, nil
}
