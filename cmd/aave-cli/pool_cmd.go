package main

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
	"aptoslend/lending"
)

// poolRequest carries the resolved inputs shared by the pool actions.
type poolRequest struct {
	asset    crypto.Address
	amount   *big.Int
	target   crypto.Address
	referral uint16
	aTokens  bool
}

type poolAction func(ctx context.Context, pool *lending.PoolClient, req poolRequest) (*gateway.Receipt, error)

type poolCommandSpec struct {
	name        string
	allowMax    bool
	targetFlag  string
	targetUsage string
	referral    bool
	aTokens     bool
	action      poolAction
}

func runSupplyCommand(args []string, stdout, stderr io.Writer) int {
	return runPoolCommand(poolCommandSpec{
		name:        "supply",
		targetFlag:  "on-behalf-of",
		targetUsage: "account receiving the aTokens (defaults to the signer)",
		referral:    true,
		action: func(ctx context.Context, pool *lending.PoolClient, req poolRequest) (*gateway.Receipt, error) {
			return pool.Supply(ctx, req.asset, req.amount, req.target, req.referral)
		},
	}, args, stdout, stderr)
}

func runBorrowCommand(args []string, stdout, stderr io.Writer) int {
	return runPoolCommand(poolCommandSpec{
		name:        "borrow",
		targetFlag:  "on-behalf-of",
		targetUsage: "account incurring the debt (defaults to the signer)",
		referral:    true,
		action: func(ctx context.Context, pool *lending.PoolClient, req poolRequest) (*gateway.Receipt, error) {
			return pool.Borrow(ctx, req.asset, req.amount, lending.InterestRateModeVariable, req.referral, req.target)
		},
	}, args, stdout, stderr)
}

func runRepayCommand(args []string, stdout, stderr io.Writer) int {
	return runPoolCommand(poolCommandSpec{
		name:        "repay",
		allowMax:    true,
		targetFlag:  "on-behalf-of",
		targetUsage: "account whose debt is repaid (defaults to the signer)",
		aTokens:     true,
		action: func(ctx context.Context, pool *lending.PoolClient, req poolRequest) (*gateway.Receipt, error) {
			if req.aTokens {
				return pool.RepayWithATokens(ctx, req.asset, req.amount, lending.InterestRateModeVariable)
			}
			return pool.Repay(ctx, req.asset, req.amount, lending.InterestRateModeVariable, req.target)
		},
	}, args, stdout, stderr)
}

func runWithdrawCommand(args []string, stdout, stderr io.Writer) int {
	return runPoolCommand(poolCommandSpec{
		name:        "withdraw",
		allowMax:    true,
		targetFlag:  "to",
		targetUsage: "recipient of the underlying (defaults to the signer)",
		action: func(ctx context.Context, pool *lending.PoolClient, req poolRequest) (*gateway.Receipt, error) {
			return pool.Withdraw(ctx, req.asset, req.amount, req.target)
		},
	}, args, stdout, stderr)
}

func runPoolCommand(spec poolCommandSpec, args []string, stdout, stderr io.Writer) int {
	synopsis := "--asset SYMBOL|ADDRESS --amount N [flags]"
	if spec.allowMax {
		synopsis = "--asset SYMBOL|ADDRESS --amount N|max [flags]"
	}
	fs := newFlagSet(spec.name, synopsis, stderr)
	var (
		asset    string
		amount   string
		key      string
		target   string
		referral uint
		aTokens  bool
	)
	fs.StringVar(&asset, "asset", "", "reserve symbol or underlying asset address")
	fs.StringVar(&amount, "amount", "", "amount in the asset's smallest unit")
	fs.StringVar(&key, "key", "", "signer private key (defaults to AAVE_ACCOUNT_PRIVATE_KEY)")
	fs.StringVar(&target, spec.targetFlag, "", spec.targetUsage)
	if spec.referral {
		fs.UintVar(&referral, "referral-code", 0, "referral code")
	}
	if spec.aTokens {
		fs.BoolVar(&aTokens, "with-atokens", false, "repay with the signer's aTokens")
	}
	if !parseFlags(fs, args, stderr) {
		return 1
	}

	parsedAmount, err := parseAmountFlag(amount, spec.allowMax)
	if err != nil {
		return printError(stderr, err)
	}
	if referral > 0xffff {
		return printError(stderr, fmt.Errorf("--referral-code must be <= 65535"))
	}
	account, err := resolveAccount(config.RoleAccount, key)
	if err != nil {
		return printError(stderr, err)
	}
	targetAddr, err := optionalAddress(spec.targetFlag, target, account.Address())
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	ctx := rootCtx
	assetAddr, err := env.reserveAsset(ctx, asset)
	if err != nil {
		return printError(stderr, err)
	}

	pool := lending.NewPoolClient(env.caller, env.registry(), account)
	receipt, err := spec.action(ctx, pool, poolRequest{
		asset:    assetAddr,
		amount:   parsedAmount,
		target:   targetAddr,
		referral: uint16(referral),
		aTokens:  aTokens,
	})
	if err != nil {
		return printError(stderr, err)
	}
	return writeReceipt(stdout, receipt)
}
