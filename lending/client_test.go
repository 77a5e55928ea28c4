package lending

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

type recordedCall struct {
	kind string
	call gateway.Call
}

// fakeCaller answers views from a table keyed by "module::name" and accepts
// every submission.
type fakeCaller struct {
	views   map[string][]any
	errs    map[string]error
	calls   []recordedCall
	signers []gateway.Signer
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{views: map[string][]any{}, errs: map[string]error{}}
}

func key(call gateway.Call) string {
	return call.Function.Module + "::" + call.Function.Name
}

func (f *fakeCaller) View(_ context.Context, call gateway.Call) (gateway.Result, error) {
	f.calls = append(f.calls, recordedCall{kind: "view", call: call})
	if err := call.Validate(); err != nil {
		return gateway.Result{}, err
	}
	if err := f.errs[key(call)]; err != nil {
		return gateway.Result{}, err
	}
	values, ok := f.views[key(call)]
	if !ok {
		return gateway.Result{}, &gateway.APIError{StatusCode: http.StatusBadRequest, Message: "no fixture for " + key(call)}
	}
	res := gateway.Result{Function: call.Function.String()}
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return gateway.Result{}, err
		}
		res.Values = append(res.Values, raw)
	}
	return res, nil
}

func (f *fakeCaller) Submit(_ context.Context, signer gateway.Signer, call gateway.Call) (*gateway.Receipt, error) {
	f.calls = append(f.calls, recordedCall{kind: "submit", call: call})
	f.signers = append(f.signers, signer)
	if err := call.Validate(); err != nil {
		return nil, err
	}
	if err := f.errs[key(call)]; err != nil {
		return nil, err
	}
	return &gateway.Receipt{Hash: "0xabcdef", Success: true, VMStatus: "Executed successfully"}, nil
}

func (f *fakeCaller) wireArgs(t *testing.T, i int) []any {
	t.Helper()
	raw, err := json.Marshal(f.calls[i].call.Args)
	require.NoError(t, err)
	var out []any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func testRegistry() config.Registry {
	return config.Registry{
		config.DomainPool:       crypto.MustParseAddress("0x20"),
		config.DomainConfig:     crypto.MustParseAddress("0x20"),
		config.DomainData:       crypto.MustParseAddress("0x20"),
		config.DomainRate:       crypto.MustParseAddress("0x20"),
		config.DomainIncentives: crypto.MustParseAddress("0x20"),
		config.DomainACL:        crypto.MustParseAddress("0x10"),
		config.DomainOracle:     crypto.MustParseAddress("0x30"),
		config.DomainTokens:     crypto.MustParseAddress("0x40"),
	}
}

func testSigner(t *testing.T) *crypto.Account {
	t.Helper()
	acct, err := crypto.AccountFromHex("0x9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f")
	require.NoError(t, err)
	return acct
}

func TestFunctionTableIsWellFormed(t *testing.T) {
	seen := map[string]functionID{}
	for id, desc := range functions {
		require.NotEmpty(t, desc.module, id)
		require.NotEmpty(t, desc.name, id)
		require.GreaterOrEqual(t, desc.returns, 0, id)
		full := string(desc.domain) + "/" + desc.module + "::" + desc.name
		if prev, dup := seen[full]; dup {
			t.Fatalf("%s and %s both map to %s", prev, id, full)
		}
		seen[full] = id
		require.True(t, strings.HasPrefix(string(id), string(desc.domain)+"."), "id %s does not match domain %s", id, desc.domain)
	}
}

func TestSupplyResolvesSymbolAndSubmits(t *testing.T) {
	fake := newFakeCaller()
	dai := crypto.MustParseAddress("0xabc")
	fake.views["pool_data_provider::get_all_reserves_tokens"] = []any{
		[]map[string]string{
			{"symbol": "WETH", "token_address": crypto.MustParseAddress("0xdef").String()},
			{"symbol": "DAI", "token_address": dai.String()},
		},
	}
	signer := testSigner(t)
	data := NewDataProviderClient(fake, testRegistry())
	pool := NewPoolClient(fake, testRegistry(), signer)

	token, err := data.GetReserveBySymbol(context.Background(), "dai")
	require.NoError(t, err)
	require.Equal(t, dai, token.TokenAddress)

	amount, err := ParseAmount("100")
	require.NoError(t, err)
	receipt, err := pool.Supply(context.Background(), token.TokenAddress, amount, signer.Address(), 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(receipt.Hash, "0x"))
	require.Greater(t, len(receipt.Hash), 2)

	require.Len(t, fake.calls, 2)
	submitted := fake.calls[1]
	require.Equal(t, "submit", submitted.kind)
	require.Equal(t, "supply_logic", submitted.call.Function.Module)
	require.Equal(t, "supply", submitted.call.Function.Name)
	require.Equal(t, crypto.MustParseAddress("0x20"), submitted.call.Function.Address)
	require.Equal(t, []any{dai.String(), "100", signer.Address().String(), "0"}, fake.wireArgs(t, 1))
	require.Same(t, signer, fake.signers[0])
}

func TestSubmitWithoutSignerFailsLocally(t *testing.T) {
	fake := newFakeCaller()
	pool := NewPoolClient(fake, testRegistry(), nil)
	_, err := pool.SetUserEMode(context.Background(), 1)
	require.ErrorIs(t, err, gateway.ErrNoSigner)
	require.Empty(t, fake.calls)
}

func TestMissingDomainAddressIsConfigError(t *testing.T) {
	fake := newFakeCaller()
	oracle := NewOracleClient(fake, config.Registry{}, nil)
	_, err := oracle.GetAssetPrice(context.Background(), crypto.MustParseAddress("0x1"))
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "addresses.oracle", cfgErr.Key)
	require.Empty(t, fake.calls)
}

func TestPriceAndTimestampIsStable(t *testing.T) {
	fake := newFakeCaller()
	fake.views["oracle::get_asset_price_and_timestamp"] = []any{"100000000", "1717171717"}
	oracle := NewOracleClient(fake, testRegistry(), nil)
	asset := crypto.MustParseAddress("0xabc")

	first, err := oracle.GetAssetPriceAndTimestamp(context.Background(), asset)
	require.NoError(t, err)
	second, err := oracle.GetAssetPriceAndTimestamp(context.Background(), asset)
	require.NoError(t, err)

	require.GreaterOrEqual(t, first.Price.Sign(), 0)
	require.GreaterOrEqual(t, first.Timestamp.Sign(), 0)
	require.Equal(t, 0, first.Price.Cmp(second.Price))
	require.Equal(t, 0, first.Timestamp.Cmp(second.Timestamp))
	require.Equal(t, "100000000", first.Price.String())
	require.Len(t, fake.calls, 2, "no caching between calls")
}

func TestAssetsPricesLengthMismatch(t *testing.T) {
	fake := newFakeCaller()
	fake.views["oracle::get_assets_prices"] = []any{[]string{"1"}}
	oracle := NewOracleClient(fake, testRegistry(), nil)
	_, err := oracle.GetAssetsPrices(context.Background(), []crypto.Address{crypto.MustParseAddress("0x1"), crypto.MustParseAddress("0x2")})
	var decErr *gateway.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestGetMetadataBySymbolNotFound(t *testing.T) {
	fake := newFakeCaller()
	code := uint64(4016)
	fake.errs["mock_underlying_token_factory::get_metadata_by_symbol"] = &gateway.APIError{
		StatusCode:  http.StatusBadRequest,
		Message:     "Move abort in 0x40::mock_underlying_token_factory: ETOKEN_NOT_FOUND(0x10001)",
		ErrorCode:   "vm_error",
		VMErrorCode: &code,
	}
	tokens := NewUnderlyingTokensClient(fake, testRegistry(), nil)
	_, err := tokens.GetMetadataBySymbol(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "NOPE", nf.Key)
}

func TestGetMetadataBySymbolKeepsTransportErrors(t *testing.T) {
	fake := newFakeCaller()
	fake.errs["mock_underlying_token_factory::get_metadata_by_symbol"] = &gateway.APIError{StatusCode: http.StatusServiceUnavailable, Message: "upstream down"}
	tokens := NewUnderlyingTokensClient(fake, testRegistry(), nil)
	_, err := tokens.GetMetadataBySymbol(context.Background(), "DAI")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestGetMetadataBySymbolKeepsVMFailures(t *testing.T) {
	fake := newFakeCaller()
	code := uint64(1091)
	fake.errs["mock_underlying_token_factory::get_metadata_by_symbol"] = &gateway.APIError{
		StatusCode:  http.StatusBadRequest,
		Message:     "Error encountered when calling view function: FUNCTION_RESOLUTION_FAILURE",
		ErrorCode:   "vm_error",
		VMErrorCode: &code,
	}
	tokens := NewUnderlyingTokensClient(fake, testRegistry(), nil)
	_, err := tokens.GetMetadataBySymbol(context.Background(), "DAI")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestGetTokenMetadataFetchesEveryField(t *testing.T) {
	fake := newFakeCaller()
	addr := crypto.MustParseAddress("0xd1")
	fake.views["mock_underlying_token_factory::get_metadata_by_symbol"] = []any{addr.String()}
	fake.views["mock_underlying_token_factory::name"] = []any{"Dai Stablecoin"}
	fake.views["mock_underlying_token_factory::symbol"] = []any{"DAI"}
	fake.views["mock_underlying_token_factory::decimals"] = []any{8}
	fake.views["mock_underlying_token_factory::maximum"] = []any{map[string][]string{"vec": {"1000000000000"}}}
	fake.views["mock_underlying_token_factory::supply"] = []any{map[string][]string{"vec": {}}}
	tokens := NewUnderlyingTokensClient(fake, testRegistry(), nil)

	meta, err := tokens.GetTokenMetadata(context.Background(), "DAI")
	require.NoError(t, err)
	require.Equal(t, addr, meta.Address)
	require.Equal(t, "Dai Stablecoin", meta.Name)
	require.Equal(t, uint8(8), meta.Decimals)
	require.Equal(t, "1000000000000", meta.Maximum.String())
	require.Nil(t, meta.Supply)
	for _, c := range fake.calls[1:] {
		require.Equal(t, []gateway.Value{gateway.Address(addr)}, c.call.Args)
	}
}

func TestGetReserveDataTwoPhase(t *testing.T) {
	fake := newFakeCaller()
	handle := crypto.MustParseAddress("0x77")
	fake.views["pool::get_reserve_data"] = []any{map[string]string{"inner": handle.String()}}
	fake.views["pool::get_reserve_configuration_by_reserve_data"] = []any{map[string]string{"data": "379853412455464390983680"}}
	fake.views["pool::get_reserve_liquidity_index"] = []any{"1000000000000000000000000000"}
	fake.views["pool::get_reserve_current_liquidity_rate"] = []any{"0"}
	fake.views["pool::get_reserve_variable_borrow_index"] = []any{"1000000000000000000000000000"}
	fake.views["pool::get_reserve_current_variable_borrow_rate"] = []any{"0"}
	fake.views["pool::get_reserve_accrued_to_treasury"] = []any{"0"}
	fake.views["pool::get_reserve_isolation_mode_total_debt"] = []any{"0"}
	fake.views["pool::get_reserve_last_update_timestamp"] = []any{"1717171717"}
	fake.views["pool::get_reserve_id"] = []any{3}
	fake.views["pool::get_reserve_a_token_address"] = []any{crypto.MustParseAddress("0xa1").String()}
	fake.views["pool::get_reserve_variable_debt_token_address"] = []any{crypto.MustParseAddress("0xa2").String()}

	pool := NewPoolClient(fake, testRegistry(), nil)
	data, err := pool.GetReserveData(context.Background(), crypto.MustParseAddress("0xabc"))
	require.NoError(t, err)
	require.Equal(t, handle, data.Handle)
	require.Equal(t, "379853412455464390983680", data.Configuration.String())
	require.Equal(t, uint16(3), data.ID)
	require.Equal(t, uint64(1717171717), data.LastUpdateTimestamp)
	require.Equal(t, crypto.MustParseAddress("0xa2"), data.VariableDebtTokenAddress)
	require.Len(t, fake.calls, 12)
	for _, c := range fake.calls[1:] {
		require.Equal(t, gateway.TypeObject, c.call.Args[0].Type())
	}
}

func TestGetReserveDataStopsOnFieldError(t *testing.T) {
	fake := newFakeCaller()
	fake.views["pool::get_reserve_data"] = []any{map[string]string{"inner": "0x77"}}
	fake.views["pool::get_reserve_configuration_by_reserve_data"] = []any{map[string]string{"data": "0"}}
	fake.views["pool::get_reserve_liquidity_index"] = []any{"-1"}
	pool := NewPoolClient(fake, testRegistry(), nil)
	_, err := pool.GetReserveData(context.Background(), crypto.MustParseAddress("0xabc"))
	var decErr *gateway.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestWrongReturnCountIsDecodingError(t *testing.T) {
	fake := newFakeCaller()
	fake.views["pool_data_provider::get_reserve_caps"] = []any{"1"}
	data := NewDataProviderClient(fake, testRegistry())
	_, err := data.GetReserveCaps(context.Background(), crypto.MustParseAddress("0xabc"))
	var decErr *gateway.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestReserveConfigurationData(t *testing.T) {
	fake := newFakeCaller()
	fake.views["pool_data_provider::get_reserve_configuration_data"] = []any{"8", "7500", "8000", "10500", "1000", true, true, true, false}
	data := NewDataProviderClient(fake, testRegistry())
	cfg, err := data.GetReserveConfigurationData(context.Background(), crypto.MustParseAddress("0xabc"))
	require.NoError(t, err)
	require.Equal(t, "7500", cfg.LTV.String())
	require.Equal(t, "10500", cfg.LiquidationBonus.String())
	require.True(t, cfg.UsageAsCollateralEnabled)
	require.False(t, cfg.IsFrozen)
}

func TestInitReservesSendsParallelVectors(t *testing.T) {
	fake := newFakeCaller()
	cfg := NewConfiguratorClient(fake, testRegistry(), testSigner(t))
	treasury := crypto.MustParseAddress("0x99")
	inputs := []InitReserveInput{
		{UnderlyingAsset: crypto.MustParseAddress("0xa"), Treasury: treasury, ATokenName: "aDAI", ATokenSymbol: "aDAI", VariableDebtTokenName: "vDAI", VariableDebtTokenSymbol: "vDAI",
			OptimalUsageRatio: big.NewInt(1), BaseVariableBorrowRate: big.NewInt(2), VariableRateSlope1: big.NewInt(3), VariableRateSlope2: big.NewInt(4)},
		{UnderlyingAsset: crypto.MustParseAddress("0xb"), Treasury: treasury, ATokenName: "aWETH", ATokenSymbol: "aWETH", VariableDebtTokenName: "vWETH", VariableDebtTokenSymbol: "vWETH",
			OptimalUsageRatio: big.NewInt(5), BaseVariableBorrowRate: big.NewInt(6), VariableRateSlope1: big.NewInt(7), VariableRateSlope2: big.NewInt(8)},
	}
	_, err := cfg.InitReserves(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)
	args := fake.wireArgs(t, 0)
	require.Len(t, args, 10)
	require.Equal(t, []any{crypto.MustParseAddress("0xa").String(), crypto.MustParseAddress("0xb").String()}, args[0])
	require.Equal(t, []any{"aDAI", "aWETH"}, args[2])
	require.Equal(t, []any{"4", "8"}, args[9])
}

func TestCoinBalanceUsesFrameworkAndTypeArgs(t *testing.T) {
	fake := newFakeCaller()
	fake.views["coin::balance"] = []any{"123456"}
	coin := NewCoinClient(fake, nil)
	bal, err := coin.Balance(context.Background(), crypto.MustParseAddress("0xabc"))
	require.NoError(t, err)
	require.Equal(t, "123456", bal.String())
	require.Equal(t, config.FrameworkAddress, fake.calls[0].call.Function.Address)
	require.Equal(t, []string{AptosCoinType}, fake.calls[0].call.TypeArgs)
}

func TestGetStrategyReadsAllFields(t *testing.T) {
	fake := newFakeCaller()
	for i, name := range []string{"get_optimal_usage_ratio", "get_base_variable_borrow_rate", "get_variable_rate_slope1", "get_variable_rate_slope2", "get_max_variable_borrow_rate"} {
		fake.views["default_reserve_interest_rate_strategy::"+name] = []any{big.NewInt(int64(i + 1)).String()}
	}
	rate := NewRateClient(fake, testRegistry(), nil)
	strategy, err := rate.GetStrategy(context.Background(), crypto.MustParseAddress("0xabc"))
	require.NoError(t, err)
	require.Equal(t, "1", strategy.OptimalUsageRatio.String())
	require.Equal(t, "5", strategy.MaxVariableBorrowRate.String())
}

func TestEModeCategoryData(t *testing.T) {
	fake := newFakeCaller()
	fake.views["emode_logic::get_emode_category_data"] = []any{9000, 9300, 10100, crypto.MustParseAddress("0x0").String(), "Stablecoins"}
	pool := NewPoolClient(fake, testRegistry(), nil)
	cat, err := pool.GetEModeCategoryData(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, uint16(9300), cat.LiquidationThreshold)
	require.Equal(t, "Stablecoins", cat.Label)
}
