package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// ConfiguratorClient issues pool administration transactions. The bound
// signer must hold the pool or risk admin role.
type ConfiguratorClient struct {
	base
}

func NewConfiguratorClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *ConfiguratorClient {
	return &ConfiguratorClient{base: newBase(caller, registry, signer)}
}

// InitReserves initializes every input in one transaction. The vectors sent
// are parallel: entry i of each describes inputs[i].
func (c *ConfiguratorClient) InitReserves(ctx context.Context, inputs []InitReserveInput) (*gateway.Receipt, error) {
	var (
		underlying, treasury                     []gateway.Value
		aNames, aSymbols, debtNames, debtSymbols []gateway.Value
		optimal, baseRate, slope1, slope2        []gateway.Value
	)
	for _, in := range inputs {
		underlying = append(underlying, gateway.Address(in.UnderlyingAsset))
		treasury = append(treasury, gateway.Address(in.Treasury))
		aNames = append(aNames, gateway.String(in.ATokenName))
		aSymbols = append(aSymbols, gateway.String(in.ATokenSymbol))
		debtNames = append(debtNames, gateway.String(in.VariableDebtTokenName))
		debtSymbols = append(debtSymbols, gateway.String(in.VariableDebtTokenSymbol))
		optimal = append(optimal, gateway.U256(in.OptimalUsageRatio))
		baseRate = append(baseRate, gateway.U256(in.BaseVariableBorrowRate))
		slope1 = append(slope1, gateway.U256(in.VariableRateSlope1))
		slope2 = append(slope2, gateway.U256(in.VariableRateSlope2))
	}
	return c.submit(ctx, fnInitReserves,
		gateway.Vector(gateway.TypeAddress, underlying...),
		gateway.Vector(gateway.TypeAddress, treasury...),
		gateway.Vector(gateway.TypeString, aNames...),
		gateway.Vector(gateway.TypeString, aSymbols...),
		gateway.Vector(gateway.TypeString, debtNames...),
		gateway.Vector(gateway.TypeString, debtSymbols...),
		gateway.Vector(gateway.TypeU256, optimal...),
		gateway.Vector(gateway.TypeU256, baseRate...),
		gateway.Vector(gateway.TypeU256, slope1...),
		gateway.Vector(gateway.TypeU256, slope2...),
	)
}

// ConfigureReserveAsCollateral sets LTV, liquidation threshold and bonus in
// basis points.
func (c *ConfiguratorClient) ConfigureReserveAsCollateral(ctx context.Context, asset crypto.Address, ltv, liquidationThreshold, liquidationBonus *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnConfigureAsCollateral, gateway.Address(asset), gateway.U256(ltv), gateway.U256(liquidationThreshold), gateway.U256(liquidationBonus))
}

func (c *ConfiguratorClient) SetReserveBorrowing(ctx context.Context, asset crypto.Address, enabled bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReserveBorrowing, gateway.Address(asset), gateway.Bool(enabled))
}

func (c *ConfiguratorClient) SetReserveFlashLoaning(ctx context.Context, asset crypto.Address, enabled bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReserveFlashLoaning, gateway.Address(asset), gateway.Bool(enabled))
}

func (c *ConfiguratorClient) SetReserveFactor(ctx context.Context, asset crypto.Address, factor *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReserveFactor, gateway.Address(asset), gateway.U256(factor))
}

func (c *ConfiguratorClient) SetBorrowCap(ctx context.Context, asset crypto.Address, capacity *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetBorrowCap, gateway.Address(asset), gateway.U256(capacity))
}

func (c *ConfiguratorClient) SetSupplyCap(ctx context.Context, asset crypto.Address, capacity *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetSupplyCap, gateway.Address(asset), gateway.U256(capacity))
}

// SetEModeCategory creates or overwrites an efficiency mode category.
func (c *ConfiguratorClient) SetEModeCategory(ctx context.Context, category EModeCategory) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetEModeCategory,
		gateway.U8(category.ID),
		gateway.U16(category.LTV),
		gateway.U16(category.LiquidationThreshold),
		gateway.U16(category.LiquidationBonus),
		gateway.Address(category.PriceSource),
		gateway.String(category.Label),
	)
}

func (c *ConfiguratorClient) SetAssetEModeCategory(ctx context.Context, asset crypto.Address, categoryID uint8) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetAssetEModeCategory, gateway.Address(asset), gateway.U8(categoryID))
}

func (c *ConfiguratorClient) SetBorrowableInIsolation(ctx context.Context, asset crypto.Address, borrowable bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetBorrowableInIsolation, gateway.Address(asset), gateway.Bool(borrowable))
}

func (c *ConfiguratorClient) SetReserveActive(ctx context.Context, asset crypto.Address, active bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReserveActive, gateway.Address(asset), gateway.Bool(active))
}

func (c *ConfiguratorClient) SetReservePause(ctx context.Context, asset crypto.Address, paused bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReservePause, gateway.Address(asset), gateway.Bool(paused))
}

func (c *ConfiguratorClient) SetReserveFreeze(ctx context.Context, asset crypto.Address, frozen bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetReserveFreeze, gateway.Address(asset), gateway.Bool(frozen))
}

// SetDebtCeiling sets the isolation mode debt ceiling, expressed with
// GetDebtCeilingDecimals decimals.
func (c *ConfiguratorClient) SetDebtCeiling(ctx context.Context, asset crypto.Address, ceiling *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetDebtCeiling, gateway.Address(asset), gateway.U256(ceiling))
}

func (c *ConfiguratorClient) SetPoolPause(ctx context.Context, paused bool) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetPoolPause, gateway.Bool(paused))
}

func (c *ConfiguratorClient) DropReserve(ctx context.Context, asset crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnDropReserve, gateway.Address(asset))
}
