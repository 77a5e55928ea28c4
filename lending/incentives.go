package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// IncentivesClient reads and claims liquidity mining rewards.
type IncentivesClient struct {
	base
}

func NewIncentivesClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *IncentivesClient {
	return &IncentivesClient{base: newBase(caller, registry, signer)}
}

func (c *IncentivesClient) GetRewardsList(ctx context.Context) ([]crypto.Address, error) {
	return c.viewAddressList(ctx, fnGetRewardsList)
}

// GetRewardsByAsset lists the rewards distributed to holders of asset (an
// aToken or variable debt token).
func (c *IncentivesClient) GetRewardsByAsset(ctx context.Context, asset crypto.Address) ([]crypto.Address, error) {
	return c.viewAddressList(ctx, fnGetRewardsByAsset, gateway.Address(asset))
}

func (c *IncentivesClient) GetUserRewards(ctx context.Context, assets []crypto.Address, user, reward crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetUserRewards, addressVector(assets), gateway.Address(user), gateway.Address(reward))
}

func (c *IncentivesClient) ClaimRewards(ctx context.Context, assets []crypto.Address, amount *big.Int, to, reward crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnClaimRewards, addressVector(assets), gateway.U256(amount), gateway.Address(to), gateway.Address(reward))
}

func (c *IncentivesClient) ClaimAllRewards(ctx context.Context, assets []crypto.Address, to crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnClaimAllRewards, addressVector(assets), gateway.Address(to))
}
