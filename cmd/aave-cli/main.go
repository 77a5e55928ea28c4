package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"aptoslend/config"
	"aptoslend/observability"
	"aptoslend/observability/logging"
	telemetry "aptoslend/observability/otel"
)

const serviceName = "aave-cli"

var (
	globalNetwork    = strings.TrimSpace(os.Getenv("AAVE_NETWORK"))
	globalConfigPath = config.ConfigPath()
	globalLogLevel   = strings.TrimSpace(os.Getenv("AAVE_LOG_LEVEL"))

	// rootCtx is cancelled on SIGINT/SIGTERM. Transactions already broadcast
	// may still commit.
	rootCtx = context.Background()
)

type command func(args []string, stdout, stderr io.Writer) int

var commands = map[string]command{
	"account":        runAccountCommand,
	"supply":         runSupplyCommand,
	"borrow":         runBorrowCommand,
	"repay":          runRepayCommand,
	"withdraw":       runWithdrawCommand,
	"mint":           runMintCommand,
	"transfer":       runTransferCommand,
	"fund":           runFundCommand,
	"balance":        runBalanceCommand,
	"reserves":       runReservesCommand,
	"reserve-data":   runReserveDataCommand,
	"price":          runPriceCommand,
	"position":       runPositionCommand,
	"setup-protocol": runSetupProtocolCommand,
	"journal":        runJournalCommand,
}

func main() {
	args, err := applyGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Setup(serviceName, globalNetwork, logging.Options{
		File:  os.Getenv("AAVE_LOG_FILE"),
		Level: logging.ParseLevel(globalLogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCtx = ctx

	shutdown, err := telemetry.Init(ctx, telemetry.FromEnv(serviceName, globalNetwork, nil))
	if err != nil {
		slog.Warn("telemetry disabled", slog.Any("error", err))
		shutdown = func(context.Context) error { return nil }
	}

	code := runCommand(args, os.Stdout, os.Stderr)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := shutdown(flushCtx); err != nil {
		slog.Warn("telemetry shutdown failed", slog.Any("error", err))
	}
	if err := observability.PushDefault(flushCtx, os.Getenv("AAVE_PUSHGATEWAY_URL"), serviceName); err != nil {
		slog.Warn("metrics push failed", slog.Any("error", err))
	}
	cancel()
	stop()
	os.Exit(code)
}

func runCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage())
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usage())
		return 1
	}
	return cmd(args[1:], stdout, stderr)
}

// applyGlobalFlags strips --network, --config and --log-level from args
// wherever they appear.
func applyGlobalFlags(args []string) ([]string, error) {
	targets := map[string]*string{
		"--network":   &globalNetwork,
		"--config":    &globalConfigPath,
		"--log-level": &globalLogLevel,
	}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		dst, ok := targets[name]
		if !ok {
			out = append(out, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for %s", name)
			}
			value = args[i+1]
			i++
		}
		*dst = strings.TrimSpace(value)
	}
	return out, nil
}

func usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.TrimSpace(`Usage:
  aave-cli [--network local|testnet|mainnet] [--config file.toml] [--log-level level] <command> [flags]

Commands:
  ` + strings.Join(names, "\n  ") + `

Signing keys default to AAVE_ACCOUNT_PRIVATE_KEY, AAVE_POOL_ADMIN_PRIVATE_KEY,
AAVE_ORACLE_PRIVATE_KEY and AAVE_UNDERLYING_TOKENS_PRIVATE_KEY.`)
}
