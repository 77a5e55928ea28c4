// Package configurator converges a protocol deployment toward a declared set
// of reserves and efficiency mode categories.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
	"aptoslend/lending"
	"aptoslend/observability"
	"aptoslend/storage"
)

// Step names, used in errors, logs, metrics and the journal.
const (
	StepCreateTokens             = "create_tokens"
	StepSetPrices                = "set_prices"
	StepSetEModes                = "set_emodes"
	StepSetInterestRates         = "set_interest_rate_strategies"
	StepInitReserves             = "init_reserves"
	StepConfigureReserves        = "configure_reserves"
	StepSetReservesEMode         = "set_reserves_emode"
	StepSetBorrowableInIsolation = "set_borrowable_in_isolation"
	StepSetReserveFlags          = "set_reserve_flags"
	StepSetDebtCeiling           = "set_debt_ceiling"
)

const (
	actionSubmitted = "submitted"
	actionSkipped   = "skipped"
)

// Recorder persists submitted transactions. *storage.Journal implements it.
type Recorder interface {
	Record(entry storage.Entry) error
}

// StepError wraps the failure that aborted a run.
type StepError struct {
	Step   string
	Symbol string
	Err    error
}

func (e *StepError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("configurator: %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("configurator: %s %s: %v", e.Step, e.Symbol, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Report summarizes a SetupProtocol run.
type Report struct {
	RunID     string
	Submitted int
	Skipped   int
}

// Configurator sequences resource client calls. It issues one remote call at
// a time and keeps no state between runs besides its collaborators; running
// two configurators against one deployment concurrently is unsafe.
type Configurator struct {
	pool     *lending.PoolClient
	admin    *lending.ConfiguratorClient
	oracle   *lending.OracleClient
	tokens   *lending.UnderlyingTokensClient
	rate     *lending.RateClient
	data     *lending.DataProviderClient
	treasury crypto.Address

	logger   *slog.Logger
	recorder Recorder
	metrics  *observability.ConfiguratorMetrics
	newRunID func() string
}

// Option customizes a Configurator.
type Option func(*Configurator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Configurator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder journals every submitted transaction.
func WithRecorder(r Recorder) Option {
	return func(c *Configurator) { c.recorder = r }
}

func WithMetrics(m *observability.ConfiguratorMetrics) Option {
	return func(c *Configurator) { c.metrics = m }
}

// WithTreasury sets the treasury of newly initialized reserves. It defaults
// to the pool admin address.
func WithTreasury(addr crypto.Address) Option {
	return func(c *Configurator) { c.treasury = addr }
}

func withRunIDs(gen func() string) Option {
	return func(c *Configurator) { c.newRunID = gen }
}

// New wires the resource clients of registry to caller with the role
// signers.
func New(caller gateway.Caller, registry config.Registry, signers Signers, opts ...Option) *Configurator {
	c := &Configurator{
		pool:     lending.NewPoolClient(caller, registry, signers.PoolAdmin),
		admin:    lending.NewConfiguratorClient(caller, registry, signers.PoolAdmin),
		oracle:   lending.NewOracleClient(caller, registry, signers.Oracle),
		tokens:   lending.NewUnderlyingTokensClient(caller, registry, signers.Tokens),
		rate:     lending.NewRateClient(caller, registry, signers.PoolAdmin),
		data:     lending.NewDataProviderClient(caller, registry),
		logger:   slog.Default(),
		newRunID: uuid.NewString,
	}
	if signers.PoolAdmin != nil {
		c.treasury = signers.PoolAdmin.Address()
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observability.Configurator()
	}
	return c
}

type runKey struct{}

type runState struct {
	id     string
	report *Report
}

func runFrom(ctx context.Context) *runState {
	if st, ok := ctx.Value(runKey{}).(*runState); ok {
		return st
	}
	return nil
}

// SetupProtocol applies every step in order: tokens, prices, eModes, rate
// strategies, reserve initialization and reserve parameters. The first error
// aborts the run; steps already applied stay applied and a re-run resumes
// from the top. Only token creation, reserve initialization and the debt
// ceiling check remote state first; every other step resubmits.
func (c *Configurator) SetupProtocol(ctx context.Context, reserves []*ReserveConfig, eModes []EModeConfig) (*Report, error) {
	if err := validatePlan(reserves); err != nil {
		return nil, err
	}
	st := &runState{id: c.newRunID(), report: &Report{}}
	st.report.RunID = st.id
	ctx = context.WithValue(ctx, runKey{}, st)
	logger := c.logger.With(slog.String("run_id", st.id))
	logger.Info("protocol setup started", slog.Int("reserves", len(reserves)), slog.Int("emodes", len(eModes)))

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{StepCreateTokens, func(ctx context.Context) error { return c.CreateTokens(ctx, reserves) }},
		{StepSetPrices, func(ctx context.Context) error { return c.SetPrices(ctx, reserves) }},
		{StepSetEModes, func(ctx context.Context) error { return c.SetEModes(ctx, eModes) }},
		{StepSetInterestRates, func(ctx context.Context) error { return c.SetInterestRateStrategies(ctx, reserves) }},
		{StepInitReserves, func(ctx context.Context) error { return c.InitReserves(ctx, reserves) }},
		{StepConfigureReserves, func(ctx context.Context) error { return c.ConfigureReserves(ctx, reserves) }},
		{StepSetReservesEMode, func(ctx context.Context) error { return c.SetReservesEMode(ctx, reserves) }},
		{StepSetBorrowableInIsolation, func(ctx context.Context) error { return c.SetBorrowableInIsolation(ctx, reserves) }},
		{StepSetReserveFlags, func(ctx context.Context) error { return c.SetReserveFlags(ctx, reserves) }},
		{StepSetDebtCeiling, func(ctx context.Context) error { return c.SetReservesDebtCeiling(ctx, reserves) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return st.report, &StepError{Step: step.name, Err: err}
		}
		logger.Info("step started", slog.String("step", step.name))
		if err := step.run(ctx); err != nil {
			logger.Error("protocol setup aborted", slog.String("step", step.name), slog.Any("error", err))
			return st.report, err
		}
	}
	logger.Info("protocol setup finished", slog.Int("submitted", st.report.Submitted), slog.Int("skipped", st.report.Skipped))
	return st.report, nil
}

func validatePlan(reserves []*ReserveConfig) error {
	seen := make(map[string]struct{}, len(reserves))
	for i, r := range reserves {
		if r == nil {
			return fmt.Errorf("%w: entry %d is nil", errInvalidReserve, i)
		}
		if err := r.validate(); err != nil {
			return err
		}
		key := strings.ToUpper(r.Symbol)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate symbol %s", errInvalidReserve, r.Symbol)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// CreateTokens resolves every reserve's underlying asset by symbol, creating
// it when the factory does not know the symbol. Existing tokens overwrite
// Decimals, Name and MaxSupply with the on-chain metadata.
func (c *Configurator) CreateTokens(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		addr, err := c.tokens.GetMetadataBySymbol(ctx, r.Symbol)
		switch {
		case err == nil:
			if err := c.backfill(ctx, r, addr); err != nil {
				return &StepError{Step: StepCreateTokens, Symbol: r.Symbol, Err: err}
			}
			c.skipped(ctx, StepCreateTokens, r.Symbol, "token exists")
		case errors.Is(err, lending.ErrNotFound):
			receipt, err := c.tokens.CreateToken(ctx, lending.CreateTokenInput{
				MaximumSupply: r.MaxSupply,
				Name:          r.Name,
				Symbol:        r.Symbol,
				Decimals:      r.Decimals,
				IconURI:       r.IconURI,
				ProjectURI:    r.ProjectURI,
			})
			if stepErr := c.commit(ctx, StepCreateTokens, r.Symbol, "create_token", receipt, err); stepErr != nil {
				return stepErr
			}
			if addr, err = c.tokens.GetMetadataBySymbol(ctx, r.Symbol); err != nil {
				return &StepError{Step: StepCreateTokens, Symbol: r.Symbol, Err: err}
			}
		default:
			return &StepError{Step: StepCreateTokens, Symbol: r.Symbol, Err: err}
		}
		r.Address = addr
	}
	return nil
}

func (c *Configurator) backfill(ctx context.Context, r *ReserveConfig, addr crypto.Address) error {
	name, err := c.tokens.Name(ctx, addr)
	if err != nil {
		return err
	}
	decimals, err := c.tokens.Decimals(ctx, addr)
	if err != nil {
		return err
	}
	maximum, err := c.tokens.Maximum(ctx, addr)
	if err != nil {
		return err
	}
	if r.Name != name || r.Decimals != decimals || !sameAmount(r.MaxSupply, maximum) {
		c.logger.Warn("existing token metadata overrides plan",
			slog.String("symbol", r.Symbol),
			slog.String("address", addr.String()),
			slog.String("name", name),
			slog.Int("decimals", int(decimals)),
			slog.String("max_supply", amountString(maximum)),
		)
	}
	r.Name = name
	r.Decimals = decimals
	r.MaxSupply = maximum
	return nil
}

// SetPrices pushes each reserve's price source to the oracle.
func (c *Configurator) SetPrices(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetPrices, r); err != nil {
			return err
		}
		var (
			receipt *gateway.Receipt
			fn      string
			err     error
		)
		if len(r.FeedID) > 0 {
			fn = "set_asset_feed_id"
			receipt, err = c.oracle.SetAssetFeedID(ctx, r.Address, r.FeedID)
		} else {
			fn = "set_asset_custom_price"
			receipt, err = c.oracle.SetAssetCustomPrice(ctx, r.Address, r.CustomPrice)
		}
		if stepErr := c.commit(ctx, StepSetPrices, r.Symbol, fn, receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

// SetEModes writes every category, whether or not it changed.
func (c *Configurator) SetEModes(ctx context.Context, eModes []EModeConfig) error {
	for _, e := range eModes {
		label := fmt.Sprintf("emode-%d", e.ID)
		receipt, err := c.admin.SetEModeCategory(ctx, lending.EModeCategory{
			ID:                   e.ID,
			LTV:                  e.LTV,
			LiquidationThreshold: e.LiquidationThreshold,
			LiquidationBonus:     e.LiquidationBonus,
			PriceSource:          e.Oracle,
			Label:                e.Label,
		})
		if stepErr := c.commit(ctx, StepSetEModes, label, "set_emode_category", receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

func (c *Configurator) SetInterestRateStrategies(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetInterestRates, r); err != nil {
			return err
		}
		receipt, err := c.rate.SetReserveInterestRateStrategy(ctx, r.Address,
			r.OptimalUsageRatio, r.BaseVariableBorrowRate, r.VariableRateSlope1, r.VariableRateSlope2)
		if stepErr := c.commit(ctx, StepSetInterestRates, r.Symbol, "set_reserve_interest_rate_strategy", receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

// InitReserves initializes, in a single transaction, every reserve whose
// asset is not yet in the pool's reserve list.
func (c *Configurator) InitReserves(ctx context.Context, reserves []*ReserveConfig) error {
	listed, err := c.pool.GetReservesList(ctx)
	if err != nil {
		return &StepError{Step: StepInitReserves, Err: err}
	}
	present := make(map[crypto.Address]struct{}, len(listed))
	for _, addr := range listed {
		present[addr] = struct{}{}
	}

	var (
		inputs  []lending.InitReserveInput
		symbols []string
	)
	for _, r := range reserves {
		if err := requireAddress(StepInitReserves, r); err != nil {
			return err
		}
		if _, ok := present[r.Address]; ok {
			c.skipped(ctx, StepInitReserves, r.Symbol, "reserve already initialized")
			continue
		}
		inputs = append(inputs, lending.InitReserveInput{
			UnderlyingAsset:         r.Address,
			Treasury:                c.treasury,
			ATokenName:              r.aTokenName(),
			ATokenSymbol:            r.aTokenSymbol(),
			VariableDebtTokenName:   r.debtTokenName(),
			VariableDebtTokenSymbol: r.debtTokenSymbol(),
			OptimalUsageRatio:       r.OptimalUsageRatio,
			BaseVariableBorrowRate:  r.BaseVariableBorrowRate,
			VariableRateSlope1:      r.VariableRateSlope1,
			VariableRateSlope2:      r.VariableRateSlope2,
		})
		symbols = append(symbols, r.Symbol)
	}
	if len(inputs) == 0 {
		return nil
	}
	joined := strings.Join(symbols, ",")
	if c.treasury.IsZero() {
		return &StepError{Step: StepInitReserves, Symbol: joined, Err: errors.New("treasury address not set")}
	}
	receipt, err := c.admin.InitReserves(ctx, inputs)
	if stepErr := c.commit(ctx, StepInitReserves, joined, "init_reserves", receipt, err); stepErr != nil {
		return stepErr
	}
	return nil
}

// ConfigureReserves applies collateral parameters, borrowing and flash loan
// switches, reserve factor and caps.
func (c *Configurator) ConfigureReserves(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepConfigureReserves, r); err != nil {
			return err
		}
		calls := []pendingCall{
			{"configure_reserve_as_collateral", func() (*gateway.Receipt, error) {
				return c.admin.ConfigureReserveAsCollateral(ctx, r.Address, r.LTV, r.LiquidationThreshold, r.LiquidationBonus)
			}},
			{"set_reserve_borrowing", func() (*gateway.Receipt, error) {
				return c.admin.SetReserveBorrowing(ctx, r.Address, r.BorrowingEnabled)
			}},
			{"set_reserve_flash_loaning", func() (*gateway.Receipt, error) {
				return c.admin.SetReserveFlashLoaning(ctx, r.Address, r.FlashLoanEnabled)
			}},
			{"set_reserve_factor", func() (*gateway.Receipt, error) {
				return c.admin.SetReserveFactor(ctx, r.Address, r.ReserveFactor)
			}},
			{"set_borrow_cap", func() (*gateway.Receipt, error) {
				return c.admin.SetBorrowCap(ctx, r.Address, r.BorrowCap)
			}},
			{"set_supply_cap", func() (*gateway.Receipt, error) {
				return c.admin.SetSupplyCap(ctx, r.Address, r.SupplyCap)
			}},
		}
		if err := c.submitAll(ctx, StepConfigureReserves, r.Symbol, calls); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configurator) SetReservesEMode(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetReservesEMode, r); err != nil {
			return err
		}
		receipt, err := c.admin.SetAssetEModeCategory(ctx, r.Address, r.EModeCategory)
		if stepErr := c.commit(ctx, StepSetReservesEMode, r.Symbol, "set_asset_emode_category", receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

func (c *Configurator) SetBorrowableInIsolation(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetBorrowableInIsolation, r); err != nil {
			return err
		}
		receipt, err := c.admin.SetBorrowableInIsolation(ctx, r.Address, r.BorrowableInIsolation)
		if stepErr := c.commit(ctx, StepSetBorrowableInIsolation, r.Symbol, "set_borrowable_in_isolation", receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

// SetReserveFlags applies the active, paused and frozen switches.
func (c *Configurator) SetReserveFlags(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetReserveFlags, r); err != nil {
			return err
		}
		calls := []pendingCall{
			{"set_reserve_active", func() (*gateway.Receipt, error) { return c.admin.SetReserveActive(ctx, r.Address, r.Active) }},
			{"set_reserve_pause", func() (*gateway.Receipt, error) { return c.admin.SetReservePause(ctx, r.Address, r.Paused) }},
			{"set_reserve_freeze", func() (*gateway.Receipt, error) { return c.admin.SetReserveFreeze(ctx, r.Address, r.Frozen) }},
		}
		if err := c.submitAll(ctx, StepSetReserveFlags, r.Symbol, calls); err != nil {
			return err
		}
	}
	return nil
}

// SetReservesDebtCeiling updates the debt ceiling of reserves whose on-chain
// value differs from the plan. A nil ceiling means zero.
func (c *Configurator) SetReservesDebtCeiling(ctx context.Context, reserves []*ReserveConfig) error {
	for _, r := range reserves {
		if err := requireAddress(StepSetDebtCeiling, r); err != nil {
			return err
		}
		current, err := c.data.GetDebtCeiling(ctx, r.Address)
		if err != nil {
			return &StepError{Step: StepSetDebtCeiling, Symbol: r.Symbol, Err: err}
		}
		want := r.DebtCeiling
		if want == nil {
			want = new(big.Int)
		}
		if current.Cmp(want) == 0 {
			c.skipped(ctx, StepSetDebtCeiling, r.Symbol, "debt ceiling unchanged")
			continue
		}
		receipt, err := c.admin.SetDebtCeiling(ctx, r.Address, want)
		if stepErr := c.commit(ctx, StepSetDebtCeiling, r.Symbol, "set_debt_ceiling", receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

type pendingCall struct {
	fn     string
	submit func() (*gateway.Receipt, error)
}

func (c *Configurator) submitAll(ctx context.Context, step, symbol string, calls []pendingCall) error {
	for _, call := range calls {
		receipt, err := call.submit()
		if err != nil {
			err = fmt.Errorf("%s: %w", call.fn, err)
		}
		if stepErr := c.commit(ctx, step, symbol, call.fn, receipt, err); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

func requireAddress(step string, r *ReserveConfig) error {
	if r.Address.IsZero() {
		return &StepError{Step: step, Symbol: r.Symbol, Err: errors.New("underlying asset not resolved; run create_tokens first")}
	}
	return nil
}

// commit settles one submission. Transactions that reached the chain are
// journaled even when their Move call aborted; any error becomes a StepError.
func (c *Configurator) commit(ctx context.Context, step, symbol, fn string, receipt *gateway.Receipt, err error) error {
	var execErr *gateway.ExecutionError
	if err == nil || (receipt != nil && errors.As(err, &execErr)) {
		c.submitted(ctx, step, symbol, fn, receipt)
	}
	if err != nil {
		return &StepError{Step: step, Symbol: symbol, Err: err}
	}
	return nil
}

func (c *Configurator) submitted(ctx context.Context, step, symbol, fn string, receipt *gateway.Receipt) {
	c.metrics.RecordStep(step, actionSubmitted)
	hash := ""
	if receipt != nil {
		hash = receipt.Hash
	}
	attrs := []any{
		slog.String("step", step),
		slog.String("symbol", symbol),
		slog.String("function", fn),
		slog.String("hash", hash),
	}
	if receipt != nil && !receipt.Success {
		c.logger.Warn("transaction aborted", append(attrs, slog.String("reason", receipt.VMStatus))...)
	} else {
		c.logger.Info("transaction committed", attrs...)
	}
	st := runFrom(ctx)
	if st == nil {
		return
	}
	st.report.Submitted++
	if c.recorder == nil {
		return
	}
	entry := storage.Entry{RunID: st.id, Step: step, Symbol: symbol, Function: fn, Hash: hash, Success: receipt != nil && receipt.Success}
	if err := c.recorder.Record(entry); err != nil {
		c.logger.Warn("journal write failed", slog.String("step", step), slog.String("hash", hash), slog.Any("error", err))
	}
}

func (c *Configurator) skipped(ctx context.Context, step, symbol, reason string) {
	c.metrics.RecordStep(step, actionSkipped)
	c.logger.Info("step skipped", slog.String("step", step), slog.String("symbol", symbol), slog.String("reason", reason))
	if st := runFrom(ctx); st != nil {
		st.report.Skipped++
	}
}

func sameAmount(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}

func amountString(v *big.Int) string {
	if v == nil {
		return "unlimited"
	}
	return v.String()
}
