package lending

import (
	"math/big"

	"aptoslend/crypto"
)

// TokenData pairs a symbol with its fungible asset metadata address.
type TokenData struct {
	Symbol       string         `json:"symbol"`
	TokenAddress crypto.Address `json:"token_address"`
}

// UserAccountData aggregates a user's position across reserves in base
// currency units.
type UserAccountData struct {
	TotalCollateralBase         *big.Int
	TotalDebtBase               *big.Int
	AvailableBorrowsBase        *big.Int
	CurrentLiquidationThreshold *big.Int
	LTV                         *big.Int
	HealthFactor                *big.Int
}

// ReserveData is the pool's reserve resource, assembled field by field from
// the reserve object handle.
type ReserveData struct {
	Handle                    crypto.Address
	Configuration             *big.Int
	LiquidityIndex            *big.Int
	CurrentLiquidityRate      *big.Int
	VariableBorrowIndex       *big.Int
	CurrentVariableBorrowRate *big.Int
	LastUpdateTimestamp       uint64
	ID                        uint16
	ATokenAddress             crypto.Address
	VariableDebtTokenAddress  crypto.Address
	AccruedToTreasury         *big.Int
	IsolationModeTotalDebt    *big.Int
}

// ReserveData2 is the data provider's aggregate view of a reserve.
type ReserveData2 struct {
	Unbacked                *big.Int
	AccruedToTreasuryScaled *big.Int
	TotalAToken             *big.Int
	TotalVariableDebt       *big.Int
	LiquidityRate           *big.Int
	VariableBorrowRate      *big.Int
	LiquidityIndex          *big.Int
	VariableBorrowIndex     *big.Int
	LastUpdateTimestamp     uint64
}

// ReserveConfigurationData holds a reserve's risk parameters in basis points.
type ReserveConfigurationData struct {
	Decimals                 *big.Int
	LTV                      *big.Int
	LiquidationThreshold     *big.Int
	LiquidationBonus         *big.Int
	ReserveFactor            *big.Int
	UsageAsCollateralEnabled bool
	BorrowingEnabled         bool
	IsActive                 bool
	IsFrozen                 bool
}

type ReserveCaps struct {
	BorrowCap *big.Int
	SupplyCap *big.Int
}

type ReserveTokens struct {
	ATokenAddress            crypto.Address
	VariableDebtTokenAddress crypto.Address
}

// UserReserveData is one user's balances in one reserve.
type UserReserveData struct {
	CurrentATokenBalance     *big.Int
	CurrentVariableDebt      *big.Int
	ScaledVariableDebt       *big.Int
	LiquidityRate            *big.Int
	UsageAsCollateralEnabled bool
}

// EModeCategory is an efficiency mode risk override.
type EModeCategory struct {
	ID                   uint8
	LTV                  uint16
	LiquidationThreshold uint16
	LiquidationBonus     uint16
	PriceSource          crypto.Address
	Label                string
}

// TokenMetadata describes an underlying fungible asset. Maximum is nil for
// assets with unlimited supply.
type TokenMetadata struct {
	Address  crypto.Address
	Name     string
	Symbol   string
	Decimals uint8
	Maximum  *big.Int
	Supply   *big.Int
}

// InterestRateStrategy is the variable rate curve of a reserve, in ray.
type InterestRateStrategy struct {
	OptimalUsageRatio      *big.Int
	BaseVariableBorrowRate *big.Int
	VariableRateSlope1     *big.Int
	VariableRateSlope2     *big.Int
	MaxVariableBorrowRate  *big.Int
}

// PriceData is an oracle price with its publication time in seconds.
type PriceData struct {
	Price     *big.Int
	Timestamp *big.Int
}

// InitReserveInput is one entry of a batched reserve initialization.
type InitReserveInput struct {
	UnderlyingAsset         crypto.Address
	Treasury                crypto.Address
	ATokenName              string
	ATokenSymbol            string
	VariableDebtTokenName   string
	VariableDebtTokenSymbol string
	OptimalUsageRatio       *big.Int
	BaseVariableBorrowRate  *big.Int
	VariableRateSlope1      *big.Int
	VariableRateSlope2      *big.Int
}

// CreateTokenInput describes a mock underlying asset to publish.
type CreateTokenInput struct {
	MaximumSupply *big.Int
	Name          string
	Symbol        string
	Decimals      uint8
	IconURI       string
	ProjectURI    string
}
