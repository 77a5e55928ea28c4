package lending

import (
	"context"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// ACLClient grants and checks protocol roles.
type ACLClient struct {
	base
}

func NewACLClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *ACLClient {
	return &ACLClient{base: newBase(caller, registry, signer)}
}

func (c *ACLClient) AddPoolAdmin(ctx context.Context, user crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnAddPoolAdmin, gateway.Address(user))
}

func (c *ACLClient) AddRiskAdmin(ctx context.Context, user crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnAddRiskAdmin, gateway.Address(user))
}

func (c *ACLClient) AddAssetListingAdmin(ctx context.Context, user crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnAddAssetListingAdmin, gateway.Address(user))
}

func (c *ACLClient) IsPoolAdmin(ctx context.Context, user crypto.Address) (bool, error) {
	return c.viewBool(ctx, fnIsPoolAdmin, gateway.Address(user))
}

func (c *ACLClient) IsRiskAdmin(ctx context.Context, user crypto.Address) (bool, error) {
	return c.viewBool(ctx, fnIsRiskAdmin, gateway.Address(user))
}

func (c *ACLClient) IsAssetListingAdmin(ctx context.Context, user crypto.Address) (bool, error) {
	return c.viewBool(ctx, fnIsAssetListingAdmin, gateway.Address(user))
}
