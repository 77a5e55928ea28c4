package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"

	"github.com/olekukonko/tablewriter"

	"aptoslend/cmd/internal/keysource"
	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
	"aptoslend/lending"
	"aptoslend/observability/logging"
)

// environment is what every remote command needs: the resolved profile and a
// caller bound to its fullnode.
type environment struct {
	cfg    *config.Config
	caller gateway.Caller
}

var (
	loadEnvironment = defaultEnvironment
	resolveAccount  = func(role config.Role, explicit string) (*crypto.Account, error) {
		return keysource.New(role, explicit).Account()
	}
)

func defaultEnvironment() (*environment, error) {
	cfg, err := config.Load(globalConfigPath, globalNetwork)
	if err != nil {
		return nil, err
	}
	client, err := gateway.NewClient(cfg.NodeURL,
		gateway.WithAPIKey(cfg.APIKey),
		gateway.WithTimeout(cfg.Timeout()),
		gateway.WithRateLimit(cfg.RequestsPerSecond, 1),
		gateway.WithGas(cfg.MaxGasAmount, cfg.GasUnitPrice),
		gateway.WithExpiry(cfg.Expiry()),
	)
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded",
		slog.String("env", cfg.Network),
		slog.String("node_url", cfg.NodeURL),
		logging.MaskField("api_key", cfg.APIKey),
	)
	return &environment{cfg: cfg, caller: client}, nil
}

func (e *environment) registry() config.Registry {
	return e.cfg.Registry()
}

// addressRef reports whether value names an address rather than a symbol: a
// 0x prefix, or exactly 64 hex digits without one.
func addressRef(value string) (crypto.Address, bool, error) {
	trimmed := strings.TrimSpace(value)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "0x") {
		addr, err := crypto.ParseAddress(trimmed)
		return addr, true, err
	}
	if len(trimmed) == crypto.AddressLength*2 {
		if _, err := hex.DecodeString(trimmed); err == nil {
			addr, err := crypto.ParseAddress(trimmed)
			return addr, true, err
		}
	}
	return crypto.Address{}, false, nil
}

// reserveAsset resolves a reserve symbol through the data provider's reserve
// list, or parses an address.
func (e *environment) reserveAsset(ctx context.Context, value string) (crypto.Address, error) {
	if strings.TrimSpace(value) == "" {
		return crypto.Address{}, errors.New("--asset is required")
	}
	if addr, ok, err := addressRef(value); ok {
		return addr, err
	}
	token, err := lending.NewDataProviderClient(e.caller, e.registry()).GetReserveBySymbol(ctx, value)
	if err != nil {
		return crypto.Address{}, err
	}
	return token.TokenAddress, nil
}

// tokenAsset resolves an underlying token symbol through the token factory,
// which also knows tokens that are not reserves yet.
func (e *environment) tokenAsset(ctx context.Context, value string) (crypto.Address, error) {
	if strings.TrimSpace(value) == "" {
		return crypto.Address{}, errors.New("--asset is required")
	}
	if addr, ok, err := addressRef(value); ok {
		return addr, err
	}
	return lending.NewUnderlyingTokensClient(e.caller, e.registry(), nil).GetMetadataBySymbol(ctx, value)
}

// optionalAddress parses value or falls back when it is empty.
func optionalAddress(flagName, value string, fallback crypto.Address) (crypto.Address, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	addr, err := crypto.ParseAddress(value)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("--%s: %w", flagName, err)
	}
	return addr, nil
}

// parseAmountFlag accepts an unsigned decimal, or "max" when allowMax is set.
func parseAmountFlag(value string, allowMax bool) (*big.Int, error) {
	if allowMax && strings.EqualFold(strings.TrimSpace(value), "max") {
		return lending.MaxAmount(), nil
	}
	if strings.TrimSpace(value) == "" {
		return nil, errors.New("--amount is required")
	}
	return lending.ParsePositiveAmount("--amount", value)
}

func newFlagSet(name, synopsis string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  aave-cli %s %s\n\nFlags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and rejects positional leftovers.
func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "Error: unexpected positional arguments")
		return false
	}
	return true
}

func printError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

func writeTable(w io.Writer, header []string, rows [][]string) int {
	table := tablewriter.NewWriter(w)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return printError(w, err)
		}
	}
	if err := table.Render(); err != nil {
		return printError(w, err)
	}
	return 0
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return printError(w, err)
	}
	return 0
}

type receiptView struct {
	Hash     string `json:"hash"`
	Version  uint64 `json:"version"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
	GasUsed  uint64 `json:"gas_used"`
}

func writeReceipt(w io.Writer, receipt *gateway.Receipt) int {
	slog.Info("transaction committed", slog.String("hash", receipt.Hash))
	return writeJSON(w, toReceiptView(receipt))
}

func amountString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
