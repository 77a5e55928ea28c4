package lending

import (
	"context"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// OracleClient reads asset prices and, with the oracle admin signer, sets
// their sources.
type OracleClient struct {
	base
}

func NewOracleClient(caller gateway.Caller, registry config.Registry, signer gateway.Signer) *OracleClient {
	return &OracleClient{base: newBase(caller, registry, signer)}
}

func (c *OracleClient) GetAssetPrice(ctx context.Context, asset crypto.Address) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetAssetPrice, gateway.Address(asset))
}

func (c *OracleClient) GetAssetPriceAndTimestamp(ctx context.Context, asset crypto.Address) (PriceData, error) {
	res, err := c.view(ctx, fnGetAssetPriceAndTimestamp, gateway.Address(asset))
	if err != nil {
		return PriceData{}, err
	}
	var out PriceData
	err = bigInts(res, &out.Price, &out.Timestamp)
	return out, err
}

// GetAssetsPrices returns prices in the order of assets.
func (c *OracleClient) GetAssetsPrices(ctx context.Context, assets []crypto.Address) ([]*big.Int, error) {
	res, err := c.view(ctx, fnGetAssetsPrices, addressVector(assets))
	if err != nil {
		return nil, err
	}
	prices, err := res.BigIntList(0)
	if err != nil {
		return nil, err
	}
	if len(prices) != len(assets) {
		return nil, &gateway.DecodingError{Function: res.Function, Index: 0, Err: errCount(len(assets), len(prices))}
	}
	return prices, nil
}

// SetAssetFeedID points asset at an external price feed.
func (c *OracleClient) SetAssetFeedID(ctx context.Context, asset crypto.Address, feedID []byte) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetAssetFeedID, gateway.Address(asset), gateway.Bytes(feedID))
}

// SetAssetCustomPrice pins asset to a fixed price in base currency units.
func (c *OracleClient) SetAssetCustomPrice(ctx context.Context, asset crypto.Address, price *big.Int) (*gateway.Receipt, error) {
	return c.submit(ctx, fnSetAssetCustomPrice, gateway.Address(asset), gateway.U256(price))
}

func (c *OracleClient) RemoveAssetFeedID(ctx context.Context, asset crypto.Address) (*gateway.Receipt, error) {
	return c.submit(ctx, fnRemoveAssetFeedID, gateway.Address(asset))
}

func (c *OracleClient) GetBaseCurrencyUnit(ctx context.Context) (*big.Int, error) {
	return c.viewBigInt(ctx, fnGetBaseCurrencyUnit)
}
