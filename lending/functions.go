package lending

import (
	"aptoslend/config"
	"aptoslend/gateway"
)

// function describes one remote Move function. Methods never spell out
// module or function names; they look their descriptor up here.
type function struct {
	domain   config.Domain
	module   string
	name     string
	params   []gateway.TypeTag
	returns  int
	typeArgs []string
}

type functionID string

const (
	// pool
	fnSupply                     functionID = "pool.supply"
	fnWithdraw                   functionID = "pool.withdraw"
	fnBorrow                     functionID = "pool.borrow"
	fnRepay                      functionID = "pool.repay"
	fnRepayWithATokens           functionID = "pool.repay_with_a_tokens"
	fnSetUserUseReserveAsCollat  functionID = "pool.set_user_use_reserve_as_collateral"
	fnSetUserEMode               functionID = "pool.set_user_emode"
	fnGetUserEMode               functionID = "pool.get_user_emode"
	fnGetReservesList            functionID = "pool.get_reserves_list"
	fnGetReservesCount           functionID = "pool.get_reserves_count"
	fnGetUserAccountData         functionID = "pool.get_user_account_data"
	fnGetReserveData             functionID = "pool.get_reserve_data"
	fnGetReserveAddressByID      functionID = "pool.get_reserve_address_by_id"
	fnGetEModeCategoryData       functionID = "pool.get_emode_category_data"
	fnReserveConfiguration       functionID = "pool.get_reserve_configuration_by_reserve_data"
	fnReserveLiquidityIndex      functionID = "pool.get_reserve_liquidity_index"
	fnReserveLiquidityRate       functionID = "pool.get_reserve_current_liquidity_rate"
	fnReserveVariableIndex       functionID = "pool.get_reserve_variable_borrow_index"
	fnReserveVariableRate        functionID = "pool.get_reserve_current_variable_borrow_rate"
	fnReserveLastUpdate          functionID = "pool.get_reserve_last_update_timestamp"
	fnReserveID                  functionID = "pool.get_reserve_id"
	fnReserveATokenAddress       functionID = "pool.get_reserve_a_token_address"
	fnReserveVariableDebtAddress functionID = "pool.get_reserve_variable_debt_token_address"
	fnReserveAccruedToTreasury   functionID = "pool.get_reserve_accrued_to_treasury"
	fnReserveIsolationDebt       functionID = "pool.get_reserve_isolation_mode_total_debt"

	// configurator
	fnInitReserves             functionID = "config.init_reserves"
	fnConfigureAsCollateral    functionID = "config.configure_reserve_as_collateral"
	fnSetReserveBorrowing      functionID = "config.set_reserve_borrowing"
	fnSetReserveFlashLoaning   functionID = "config.set_reserve_flash_loaning"
	fnSetReserveFactor         functionID = "config.set_reserve_factor"
	fnSetBorrowCap             functionID = "config.set_borrow_cap"
	fnSetSupplyCap             functionID = "config.set_supply_cap"
	fnSetEModeCategory         functionID = "config.set_emode_category"
	fnSetAssetEModeCategory    functionID = "config.set_asset_emode_category"
	fnSetBorrowableInIsolation functionID = "config.set_borrowable_in_isolation"
	fnSetReserveActive         functionID = "config.set_reserve_active"
	fnSetReservePause          functionID = "config.set_reserve_pause"
	fnSetReserveFreeze         functionID = "config.set_reserve_freeze"
	fnSetDebtCeiling           functionID = "config.set_debt_ceiling"
	fnSetPoolPause             functionID = "config.set_pool_pause"
	fnDropReserve              functionID = "config.drop_reserve"

	// oracle
	fnGetAssetPrice             functionID = "oracle.get_asset_price"
	fnGetAssetPriceAndTimestamp functionID = "oracle.get_asset_price_and_timestamp"
	fnGetAssetsPrices           functionID = "oracle.get_assets_prices"
	fnSetAssetFeedID            functionID = "oracle.set_asset_feed_id"
	fnSetAssetCustomPrice       functionID = "oracle.set_asset_custom_price"
	fnRemoveAssetFeedID         functionID = "oracle.remove_asset_feed_id"
	fnGetBaseCurrencyUnit       functionID = "oracle.get_base_currency_unit"

	// underlying tokens
	fnCreateToken         functionID = "tokens.create_token"
	fnMint                functionID = "tokens.mint"
	fnTokenTransfer       functionID = "tokens.transfer"
	fnGetMetadataBySymbol functionID = "tokens.get_metadata_by_symbol"
	fnTokenName           functionID = "tokens.name"
	fnTokenSymbol         functionID = "tokens.symbol"
	fnTokenDecimals       functionID = "tokens.decimals"
	fnTokenMaximum        functionID = "tokens.maximum"
	fnTokenSupply         functionID = "tokens.supply"
	fnTokenBalanceOf      functionID = "tokens.balance_of"

	// interest rate strategy
	fnSetRateStrategy           functionID = "rate.set_reserve_interest_rate_strategy"
	fnGetOptimalUsageRatio      functionID = "rate.get_optimal_usage_ratio"
	fnGetBaseVariableBorrowRate functionID = "rate.get_base_variable_borrow_rate"
	fnGetVariableRateSlope1     functionID = "rate.get_variable_rate_slope1"
	fnGetVariableRateSlope2     functionID = "rate.get_variable_rate_slope2"
	fnGetMaxVariableBorrowRate  functionID = "rate.get_max_variable_borrow_rate"

	// data provider
	fnGetAllReservesTokens      functionID = "data.get_all_reserves_tokens"
	fnGetAllATokens             functionID = "data.get_all_a_tokens"
	fnGetReserveConfiguration   functionID = "data.get_reserve_configuration_data"
	fnGetReserveEModeCategory   functionID = "data.get_reserve_emode_category"
	fnGetReserveCaps            functionID = "data.get_reserve_caps"
	fnGetPaused                 functionID = "data.get_paused"
	fnGetDebtCeiling            functionID = "data.get_debt_ceiling"
	fnGetDebtCeilingDecimals    functionID = "data.get_debt_ceiling_decimals"
	fnGetReserveData2           functionID = "data.get_reserve_data"
	fnGetUserReserveData        functionID = "data.get_user_reserve_data"
	fnGetReserveTokensAddresses functionID = "data.get_reserve_tokens_addresses"
	fnGetFlashLoanEnabled       functionID = "data.get_flash_loan_enabled"

	// incentives
	fnGetRewardsList    functionID = "incentives.get_rewards_list"
	fnGetRewardsByAsset functionID = "incentives.get_rewards_by_asset"
	fnGetUserRewards    functionID = "incentives.get_user_rewards"
	fnClaimRewards      functionID = "incentives.claim_rewards"
	fnClaimAllRewards   functionID = "incentives.claim_all_rewards"

	// acl
	fnAddPoolAdmin         functionID = "acl.add_pool_admin"
	fnAddRiskAdmin         functionID = "acl.add_risk_admin"
	fnAddAssetListingAdmin functionID = "acl.add_asset_listing_admin"
	fnIsPoolAdmin          functionID = "acl.is_pool_admin"
	fnIsRiskAdmin          functionID = "acl.is_risk_admin"
	fnIsAssetListingAdmin  functionID = "acl.is_asset_listing_admin"

	// framework
	fnCoinTransfer functionID = "framework.aptos_account_transfer"
	fnCoinBalance  functionID = "framework.coin_balance"
)

// AptosCoinType is the framework type of the native gas coin.
const AptosCoinType = "0x1::aptos_coin::AptosCoin"

// InterestRateModeVariable is the only borrow mode the pool supports.
const InterestRateModeVariable uint8 = 2

var (
	tAddr   = gateway.TypeAddress
	tBool   = gateway.TypeBool
	tU8     = gateway.TypeU8
	tU16    = gateway.TypeU16
	tU64    = gateway.TypeU64
	tU128   = gateway.TypeU128
	tU256   = gateway.TypeU256
	tString = gateway.TypeString
	tBytes  = gateway.TypeBytes
	tObject = gateway.TypeObject

	tAddrs   = gateway.VectorOf(gateway.TypeAddress)
	tStrings = gateway.VectorOf(gateway.TypeString)
	tU256s   = gateway.VectorOf(gateway.TypeU256)
)

func p(tags ...gateway.TypeTag) []gateway.TypeTag { return tags }

func fn(domain config.Domain, module, name string, params []gateway.TypeTag, returns int) function {
	return function{domain: domain, module: module, name: name, params: params, returns: returns}
}

var functions = map[functionID]function{
	fnSupply:                     fn(config.DomainPool, "supply_logic", "supply", p(tAddr, tU256, tAddr, tU16), 0),
	fnWithdraw:                   fn(config.DomainPool, "supply_logic", "withdraw", p(tAddr, tU256, tAddr), 0),
	fnBorrow:                     fn(config.DomainPool, "borrow_logic", "borrow", p(tAddr, tU256, tU8, tU16, tAddr), 0),
	fnRepay:                      fn(config.DomainPool, "borrow_logic", "repay", p(tAddr, tU256, tU8, tAddr), 0),
	fnRepayWithATokens:           fn(config.DomainPool, "borrow_logic", "repay_with_a_tokens", p(tAddr, tU256, tU8), 0),
	fnSetUserUseReserveAsCollat:  fn(config.DomainPool, "supply_logic", "set_user_use_reserve_as_collateral", p(tAddr, tBool), 0),
	fnSetUserEMode:               fn(config.DomainPool, "emode_logic", "set_user_emode", p(tU8), 0),
	fnGetUserEMode:               fn(config.DomainPool, "emode_logic", "get_user_emode", p(tAddr), 1),
	fnGetReservesList:            fn(config.DomainPool, "pool", "get_reserves_list", p(), 1),
	fnGetReservesCount:           fn(config.DomainPool, "pool", "get_reserves_count", p(), 1),
	fnGetUserAccountData:         fn(config.DomainPool, "user_logic", "get_user_account_data", p(tAddr), 6),
	fnGetReserveData:             fn(config.DomainPool, "pool", "get_reserve_data", p(tAddr), 1),
	fnGetReserveAddressByID:      fn(config.DomainPool, "pool", "get_reserve_address_by_id", p(tU16), 1),
	fnGetEModeCategoryData:       fn(config.DomainPool, "emode_logic", "get_emode_category_data", p(tU8), 5),
	fnReserveConfiguration:       fn(config.DomainPool, "pool", "get_reserve_configuration_by_reserve_data", p(tObject), 1),
	fnReserveLiquidityIndex:      fn(config.DomainPool, "pool", "get_reserve_liquidity_index", p(tObject), 1),
	fnReserveLiquidityRate:       fn(config.DomainPool, "pool", "get_reserve_current_liquidity_rate", p(tObject), 1),
	fnReserveVariableIndex:       fn(config.DomainPool, "pool", "get_reserve_variable_borrow_index", p(tObject), 1),
	fnReserveVariableRate:        fn(config.DomainPool, "pool", "get_reserve_current_variable_borrow_rate", p(tObject), 1),
	fnReserveLastUpdate:          fn(config.DomainPool, "pool", "get_reserve_last_update_timestamp", p(tObject), 1),
	fnReserveID:                  fn(config.DomainPool, "pool", "get_reserve_id", p(tObject), 1),
	fnReserveATokenAddress:       fn(config.DomainPool, "pool", "get_reserve_a_token_address", p(tObject), 1),
	fnReserveVariableDebtAddress: fn(config.DomainPool, "pool", "get_reserve_variable_debt_token_address", p(tObject), 1),
	fnReserveAccruedToTreasury:   fn(config.DomainPool, "pool", "get_reserve_accrued_to_treasury", p(tObject), 1),
	fnReserveIsolationDebt:       fn(config.DomainPool, "pool", "get_reserve_isolation_mode_total_debt", p(tObject), 1),

	fnInitReserves: fn(config.DomainConfig, "pool_configurator", "init_reserves",
		p(tAddrs, tAddrs, tStrings, tStrings, tStrings, tStrings, tU256s, tU256s, tU256s, tU256s), 0),
	fnConfigureAsCollateral:    fn(config.DomainConfig, "pool_configurator", "configure_reserve_as_collateral", p(tAddr, tU256, tU256, tU256), 0),
	fnSetReserveBorrowing:      fn(config.DomainConfig, "pool_configurator", "set_reserve_borrowing", p(tAddr, tBool), 0),
	fnSetReserveFlashLoaning:   fn(config.DomainConfig, "pool_configurator", "set_reserve_flash_loaning", p(tAddr, tBool), 0),
	fnSetReserveFactor:         fn(config.DomainConfig, "pool_configurator", "set_reserve_factor", p(tAddr, tU256), 0),
	fnSetBorrowCap:             fn(config.DomainConfig, "pool_configurator", "set_borrow_cap", p(tAddr, tU256), 0),
	fnSetSupplyCap:             fn(config.DomainConfig, "pool_configurator", "set_supply_cap", p(tAddr, tU256), 0),
	fnSetEModeCategory:         fn(config.DomainConfig, "pool_configurator", "set_emode_category", p(tU8, tU16, tU16, tU16, tAddr, tString), 0),
	fnSetAssetEModeCategory:    fn(config.DomainConfig, "pool_configurator", "set_asset_emode_category", p(tAddr, tU8), 0),
	fnSetBorrowableInIsolation: fn(config.DomainConfig, "pool_configurator", "set_borrowable_in_isolation", p(tAddr, tBool), 0),
	fnSetReserveActive:         fn(config.DomainConfig, "pool_configurator", "set_reserve_active", p(tAddr, tBool), 0),
	fnSetReservePause:          fn(config.DomainConfig, "pool_configurator", "set_reserve_pause", p(tAddr, tBool), 0),
	fnSetReserveFreeze:         fn(config.DomainConfig, "pool_configurator", "set_reserve_freeze", p(tAddr, tBool), 0),
	fnSetDebtCeiling:           fn(config.DomainConfig, "pool_configurator", "set_debt_ceiling", p(tAddr, tU256), 0),
	fnSetPoolPause:             fn(config.DomainConfig, "pool_configurator", "set_pool_pause", p(tBool), 0),
	fnDropReserve:              fn(config.DomainConfig, "pool_configurator", "drop_reserve", p(tAddr), 0),

	fnGetAssetPrice:             fn(config.DomainOracle, "oracle", "get_asset_price", p(tAddr), 1),
	fnGetAssetPriceAndTimestamp: fn(config.DomainOracle, "oracle", "get_asset_price_and_timestamp", p(tAddr), 2),
	fnGetAssetsPrices:           fn(config.DomainOracle, "oracle", "get_assets_prices", p(tAddrs), 1),
	fnSetAssetFeedID:            fn(config.DomainOracle, "oracle", "set_asset_feed_id", p(tAddr, tBytes), 0),
	fnSetAssetCustomPrice:       fn(config.DomainOracle, "oracle", "set_asset_custom_price", p(tAddr, tU256), 0),
	fnRemoveAssetFeedID:         fn(config.DomainOracle, "oracle", "remove_asset_feed_id", p(tAddr), 0),
	fnGetBaseCurrencyUnit:       fn(config.DomainOracle, "oracle", "get_base_currency_unit", p(), 1),

	fnCreateToken:         fn(config.DomainTokens, "mock_underlying_token_factory", "create_token", p(tU128, tString, tString, tU8, tString, tString), 0),
	fnMint:                fn(config.DomainTokens, "mock_underlying_token_factory", "mint", p(tAddr, tU64, tAddr), 0),
	fnTokenTransfer:       fn(config.DomainTokens, "mock_underlying_token_factory", "transfer", p(tAddr, tU64, tAddr), 0),
	fnGetMetadataBySymbol: fn(config.DomainTokens, "mock_underlying_token_factory", "get_metadata_by_symbol", p(tString), 1),
	fnTokenName:           fn(config.DomainTokens, "mock_underlying_token_factory", "name", p(tAddr), 1),
	fnTokenSymbol:         fn(config.DomainTokens, "mock_underlying_token_factory", "symbol", p(tAddr), 1),
	fnTokenDecimals:       fn(config.DomainTokens, "mock_underlying_token_factory", "decimals", p(tAddr), 1),
	fnTokenMaximum:        fn(config.DomainTokens, "mock_underlying_token_factory", "maximum", p(tAddr), 1),
	fnTokenSupply:         fn(config.DomainTokens, "mock_underlying_token_factory", "supply", p(tAddr), 1),
	fnTokenBalanceOf:      fn(config.DomainTokens, "mock_underlying_token_factory", "balance_of", p(tAddr, tAddr), 1),

	fnSetRateStrategy:           fn(config.DomainRate, "default_reserve_interest_rate_strategy", "set_reserve_interest_rate_strategy", p(tAddr, tU256, tU256, tU256, tU256), 0),
	fnGetOptimalUsageRatio:      fn(config.DomainRate, "default_reserve_interest_rate_strategy", "get_optimal_usage_ratio", p(tAddr), 1),
	fnGetBaseVariableBorrowRate: fn(config.DomainRate, "default_reserve_interest_rate_strategy", "get_base_variable_borrow_rate", p(tAddr), 1),
	fnGetVariableRateSlope1:     fn(config.DomainRate, "default_reserve_interest_rate_strategy", "get_variable_rate_slope1", p(tAddr), 1),
	fnGetVariableRateSlope2:     fn(config.DomainRate, "default_reserve_interest_rate_strategy", "get_variable_rate_slope2", p(tAddr), 1),
	fnGetMaxVariableBorrowRate:  fn(config.DomainRate, "default_reserve_interest_rate_strategy", "get_max_variable_borrow_rate", p(tAddr), 1),

	fnGetAllReservesTokens:      fn(config.DomainData, "pool_data_provider", "get_all_reserves_tokens", p(), 1),
	fnGetAllATokens:             fn(config.DomainData, "pool_data_provider", "get_all_a_tokens", p(), 1),
	fnGetReserveConfiguration:   fn(config.DomainData, "pool_data_provider", "get_reserve_configuration_data", p(tAddr), 9),
	fnGetReserveEModeCategory:   fn(config.DomainData, "pool_data_provider", "get_reserve_emode_category", p(tAddr), 1),
	fnGetReserveCaps:            fn(config.DomainData, "pool_data_provider", "get_reserve_caps", p(tAddr), 2),
	fnGetPaused:                 fn(config.DomainData, "pool_data_provider", "get_paused", p(tAddr), 1),
	fnGetDebtCeiling:            fn(config.DomainData, "pool_data_provider", "get_debt_ceiling", p(tAddr), 1),
	fnGetDebtCeilingDecimals:    fn(config.DomainData, "pool_data_provider", "get_debt_ceiling_decimals", p(), 1),
	fnGetReserveData2:           fn(config.DomainData, "pool_data_provider", "get_reserve_data", p(tAddr), 9),
	fnGetUserReserveData:        fn(config.DomainData, "pool_data_provider", "get_user_reserve_data", p(tAddr, tAddr), 5),
	fnGetReserveTokensAddresses: fn(config.DomainData, "pool_data_provider", "get_reserve_tokens_addresses", p(tAddr), 2),
	fnGetFlashLoanEnabled:       fn(config.DomainData, "pool_data_provider", "get_flash_loan_enabled", p(tAddr), 1),

	fnGetRewardsList:    fn(config.DomainIncentives, "rewards_controller", "get_rewards_list", p(), 1),
	fnGetRewardsByAsset: fn(config.DomainIncentives, "rewards_controller", "get_rewards_by_asset", p(tAddr), 1),
	fnGetUserRewards:    fn(config.DomainIncentives, "rewards_controller", "get_user_rewards", p(tAddrs, tAddr, tAddr), 1),
	fnClaimRewards:      fn(config.DomainIncentives, "rewards_controller", "claim_rewards", p(tAddrs, tU256, tAddr, tAddr), 0),
	fnClaimAllRewards:   fn(config.DomainIncentives, "rewards_controller", "claim_all_rewards", p(tAddrs, tAddr), 0),

	fnAddPoolAdmin:         fn(config.DomainACL, "acl_manage", "add_pool_admin", p(tAddr), 0),
	fnAddRiskAdmin:         fn(config.DomainACL, "acl_manage", "add_risk_admin", p(tAddr), 0),
	fnAddAssetListingAdmin: fn(config.DomainACL, "acl_manage", "add_asset_listing_admin", p(tAddr), 0),
	fnIsPoolAdmin:          fn(config.DomainACL, "acl_manage", "is_pool_admin", p(tAddr), 1),
	fnIsRiskAdmin:          fn(config.DomainACL, "acl_manage", "is_risk_admin", p(tAddr), 1),
	fnIsAssetListingAdmin:  fn(config.DomainACL, "acl_manage", "is_asset_listing_admin", p(tAddr), 1),

	fnCoinTransfer: fn(config.DomainFramework, "aptos_account", "transfer", p(tAddr, tU64), 0),
	fnCoinBalance: {
		domain:   config.DomainFramework,
		module:   "coin",
		name:     "balance",
		params:   p(tAddr),
		returns:  1,
		typeArgs: []string{AptosCoinType},
	},
}
