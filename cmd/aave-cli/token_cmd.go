package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
	"aptoslend/lending"
)

// runMintCommand mints a mock underlying token. Only the token factory owner
// may mint.
func runMintCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("mint", "--asset SYMBOL|ADDRESS --amount N [--to ADDRESS]", stderr)
	var asset, amount, to, key string
	fs.StringVar(&asset, "asset", "", "underlying token symbol or metadata address")
	fs.StringVar(&amount, "amount", "", "amount in the token's smallest unit")
	fs.StringVar(&to, "to", "", "recipient (defaults to the signer)")
	fs.StringVar(&key, "key", "", "token owner private key (defaults to AAVE_UNDERLYING_TOKENS_PRIVATE_KEY)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(amount) == "" {
		return printError(stderr, errors.New("--amount is required"))
	}
	parsed, err := lending.ParseUint64Amount(amount)
	if err != nil {
		return printError(stderr, fmt.Errorf("--amount: %w", err))
	}
	account, err := resolveAccount(config.RoleUnderlyingTokens, key)
	if err != nil {
		return printError(stderr, err)
	}
	recipient, err := optionalAddress("to", to, account.Address())
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	metadata, err := env.tokenAsset(rootCtx, asset)
	if err != nil {
		return printError(stderr, err)
	}
	tokens := lending.NewUnderlyingTokensClient(env.caller, env.registry(), account)
	receipt, err := tokens.Mint(rootCtx, recipient, parsed, metadata)
	if err != nil {
		return printError(stderr, err)
	}
	return writeReceipt(stdout, receipt)
}

func runTransferCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("transfer", "--asset SYMBOL|ADDRESS --to ADDRESS --amount N", stderr)
	var asset, amount, to, key string
	fs.StringVar(&asset, "asset", "", "underlying token symbol or metadata address")
	fs.StringVar(&amount, "amount", "", "amount in the token's smallest unit")
	fs.StringVar(&to, "to", "", "recipient address")
	fs.StringVar(&key, "key", "", "sender private key (defaults to AAVE_ACCOUNT_PRIVATE_KEY)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(to) == "" {
		return printError(stderr, errors.New("--to is required"))
	}
	recipient, err := crypto.ParseAddress(to)
	if err != nil {
		return printError(stderr, fmt.Errorf("--to: %w", err))
	}
	if strings.TrimSpace(amount) == "" {
		return printError(stderr, errors.New("--amount is required"))
	}
	parsed, err := lending.ParseUint64Amount(amount)
	if err != nil {
		return printError(stderr, fmt.Errorf("--amount: %w", err))
	}
	account, err := resolveAccount(config.RoleAccount, key)
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	metadata, err := env.tokenAsset(rootCtx, asset)
	if err != nil {
		return printError(stderr, err)
	}
	tokens := lending.NewUnderlyingTokensClient(env.caller, env.registry(), account)
	receipt, err := tokens.Transfer(rootCtx, recipient, parsed, metadata)
	if err != nil {
		return printError(stderr, err)
	}
	return writeReceipt(stdout, receipt)
}

// runFundCommand sends APT to each recipient in turn and stops at the first
// failure. Receipts of earlier transfers are still printed.
func runFundCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("fund", "--to ADDRESS[,ADDRESS...] --amount OCTAS", stderr)
	var to, amount, key string
	fs.StringVar(&to, "to", "", "comma separated recipient addresses")
	fs.StringVar(&amount, "amount", "", "octas sent to each recipient")
	fs.StringVar(&key, "key", "", "funding account private key (defaults to AAVE_ACCOUNT_PRIVATE_KEY)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	var recipients []crypto.Address
	for _, part := range strings.Split(to, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		addr, err := crypto.ParseAddress(part)
		if err != nil {
			return printError(stderr, fmt.Errorf("--to: %w", err))
		}
		recipients = append(recipients, addr)
	}
	if len(recipients) == 0 {
		return printError(stderr, errors.New("--to is required"))
	}
	if strings.TrimSpace(amount) == "" {
		return printError(stderr, errors.New("--amount is required"))
	}
	octas, err := lending.ParseUint64Amount(amount)
	if err != nil {
		return printError(stderr, fmt.Errorf("--amount: %w", err))
	}
	account, err := resolveAccount(config.RoleAccount, key)
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	coin := lending.NewCoinClient(env.caller, account)
	receipts := make([]receiptView, 0, len(recipients))
	for _, recipient := range recipients {
		receipt, err := coin.Transfer(rootCtx, recipient, octas)
		if err != nil {
			writeJSON(stdout, receipts)
			return printError(stderr, fmt.Errorf("fund %s: %w", recipient, err))
		}
		receipts = append(receipts, toReceiptView(receipt))
	}
	return writeJSON(stdout, receipts)
}

type balanceView struct {
	Owner   string `json:"owner"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// runBalanceCommand reads the APT balance, or the balance of an underlying
// token when --asset is given.
func runBalanceCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("balance", "[--owner ADDRESS] [--asset SYMBOL|ADDRESS]", stderr)
	var owner, asset, key string
	fs.StringVar(&owner, "owner", "", "account to inspect (defaults to the key's address)")
	fs.StringVar(&asset, "asset", "", "underlying token; APT when empty")
	fs.StringVar(&key, "key", "", "private key used only to derive the owner")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	ownerAddr, err := ownerAddress(owner, key)
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	view := balanceView{Owner: ownerAddr.String(), Asset: lending.AptosCoinType}
	if strings.TrimSpace(asset) == "" {
		balance, err := lending.NewCoinClient(env.caller, nil).Balance(rootCtx, ownerAddr)
		if err != nil {
			return printError(stderr, err)
		}
		view.Balance = amountString(balance)
		return writeJSON(stdout, view)
	}

	metadata, err := env.tokenAsset(rootCtx, asset)
	if err != nil {
		return printError(stderr, err)
	}
	balance, err := lending.NewUnderlyingTokensClient(env.caller, env.registry(), nil).BalanceOf(rootCtx, ownerAddr, metadata)
	if err != nil {
		return printError(stderr, err)
	}
	view.Asset = metadata.String()
	view.Balance = amountString(balance)
	return writeJSON(stdout, view)
}

// ownerAddress prefers an explicit address and otherwise derives one from the
// account key.
func ownerAddress(owner, key string) (crypto.Address, error) {
	if strings.TrimSpace(owner) != "" {
		addr, err := crypto.ParseAddress(owner)
		if err != nil {
			return crypto.Address{}, fmt.Errorf("--owner: %w", err)
		}
		return addr, nil
	}
	account, err := resolveAccount(config.RoleAccount, key)
	if err != nil {
		return crypto.Address{}, err
	}
	return account.Address(), nil
}

func toReceiptView(receipt *gateway.Receipt) receiptView {
	return receiptView{
		Hash:     receipt.Hash,
		Version:  receipt.Version,
		Success:  receipt.Success,
		VMStatus: receipt.VMStatus,
		GasUsed:  receipt.GasUsed,
	}
}
