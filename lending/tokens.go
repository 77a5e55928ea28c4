package lending

import (
	"context"
	"errors"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// UnderlyingTokensClient manages the mock underlying assets listed as
// reserves on test deployments.
type UnderlyingTokensClient struct {
	base
}

func NewUnderlyingTokensClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *UnderlyingTokensClient {
	return &UnderlyingTokensClient{base: newBase(caller, registry, signer)}
}

// CreateToken publishes a new fungible asset. A nil MaximumSupply is sent as
// zero, which the factory treats as unlimited.
func (c *UnderlyingTokensClient) CreateToken(ctx context.Context, in CreateTokenInput) (*gateway.Receipt, error) {
	maximum := in.MaximumSupply
	if maximum == nil {
		maximum = new(big.Int)
	}
	return c.submit(ctx, fnCreateToken,
		gateway.U128(maximum),
		gateway.String(in.Name),
		gateway.String(in.Symbol),
		gateway.U8(in.Decimals),
		gateway.String(in.IconURI),
		gateway.String(in.ProjectURI),
	)
}

func (c *UnderlyingTokensClient) Mint(ctx context.Context, to crypto.Address, amount uint64, metadata crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnMint, gateway.Address(to), gateway.U64(amount), gateway.Address(metadata))
}

func (c *UnderlyingTokensClient) Transfer(ctx context.Context, to crypto.Address, amount uint64, metadata crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnTokenTransfer, gateway.Address(to), gateway.U64(amount), gateway.Address(metadata))
}

// GetMetadataBySymbol resolves symbol to its metadata address. The factory
// aborts for unknown symbols; that abort is reported as a NotFoundError while
// transport and decoding failures pass through unchanged.
func (c *UnderlyingTokensClient) GetMetadataBySymbol(ctx context.Context, symbol string) (crypto.Address, error) {
	addr, err := c.viewAddress(ctx, fnGetMetadataBySymbol, gateway.String(symbol))
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.IsMoveAbort() {
			return crypto.Address{}, &NotFoundError{Entity: "token", Key: symbol}
		}
		return crypto.Address{}, err
	}
	if addr.IsZero() {
		return crypto.Address{}, &NotFoundError{Entity: "token", Key: symbol}
	}
	return addr, nil
}

func (c *UnderlyingTokensClient) Name(ctx context.Context, metadata crypto.Address) (string, error) {
	return c.viewString(ctx, fnTokenName, gateway.Address(metadata))
}

func (c *UnderlyingTokensClient) Symbol(ctx context.Context, metadata crypto.Address) (string, error) {
	return c.viewString(ctx, fnTokenSymbol, gateway.Address(metadata))
}

func (c *UnderlyingTokensClient) Decimals(ctx context.Context, metadata crypto.Address) (uint8, error) {
	res, err := c.view(ctx, fnTokenDecimals, gateway.Address(metadata))
	if err != nil {
		return 0, err
	}
	return res.Uint8(0)
}

// Maximum returns the supply cap, or nil when the asset is unlimited.
func (c *UnderlyingTokensClient) Maximum(ctx context.Context, metadata crypto.Address) (*big.Int, error) {
	return c.optional(ctx, fnTokenMaximum, metadata)
}

// Supply returns the circulating supply, or nil when the asset does not
// track it.
func (c *UnderlyingTokensClient) Supply(ctx context.Context, metadata crypto.Address) (*big.Int, error) {
	return c.optional(ctx, fnTokenSupply, metadata)
}

func (c *UnderlyingTokensClient) optional(ctx context.Context, id functionID, metadata crypto.Address) (*big.Int, error) {
	res, err := c.view(ctx, id, gateway.Address(metadata))
	if err != nil {
		return nil, err
	}
	value, _, err := res.OptionalBigInt(0)
	return value, err
}

func (c *UnderlyingTokensClient) BalanceOf(ctx context.Context, owner, metadata crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnTokenBalanceOf, gateway.Address(owner), gateway.Address(metadata))
}

// GetTokenMetadata resolves symbol and then reads every metadata field of
// the asset.
func (c *UnderlyingTokensClient) GetTokenMetadata(ctx context.Context, symbol string) (TokenMetadata, error) {
	addr, err := c.GetMetadataBySymbol(ctx, symbol)
	if err != nil {
		return TokenMetadata{}, err
	}
	out := TokenMetadata{Address: addr}
	if out.Name, err = c.Name(ctx, addr); err != nil {
		return TokenMetadata{}, err
	}
	if out.Symbol, err = c.Symbol(ctx, addr); err != nil {
		return TokenMetadata{}, err
	}
	if out.Decimals, err = c.Decimals(ctx, addr); err != nil {
		return TokenMetadata{}, err
	}
	if out.Maximum, err = c.Maximum(ctx, addr); err != nil {
		return TokenMetadata{}, err
	}
	if out.Supply, err = c.Supply(ctx, addr); err != nil {
		return TokenMetadata{}, err
	}
	return out, nil
}
