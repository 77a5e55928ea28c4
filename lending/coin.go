package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// CoinClient moves the native APT coin through the framework at 0x1.
type CoinClient struct {
	base
}

func NewCoinClient(caller gateway.Caller, signer gateway.Signer) *CoinClient {
	return &CoinClient{base: newBase(caller, config.Registry{}, signer)}
}

// Transfer sends amount octas to, creating the recipient account if needed.
func (c *CoinClient) Transfer(ctx context.Context, to crypto.Address, amount uint64) (*gateway.Receipt, error) {
	return c.submit(ctx, fnCoinTransfer, gateway.Address(to), gateway.U64(amount))
}

// Balance returns the APT balance of owner in octas.
func (c *CoinClient) Balance(ctx context.Context, owner crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnCoinBalance, gateway.Address(owner))
}
