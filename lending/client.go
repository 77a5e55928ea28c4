package lending

import (
	"context"
	"fmt"
	"math/big"

	"aptoslend/config"
	"aptoslend/crypto"
	"aptoslend/gateway"
)

// base is embedded by every resource client. It holds only values fixed at
// construction.
type base struct {
	caller   gateway.Caller
	registry config.Registry
	signer   gateway.Signer
}

func newBase(caller gateway.Caller, registry config.Registry, signer gateway.Signer) base {
	return base{caller: caller, registry: registry, signer: signer}
}

// Signer returns the bound signer or nil.
func (b base) Signer() gateway.Signer { return b.signer }

func (b base) prepare(id functionID, args []gateway.Value) (gateway.Call, function, error) {
	desc, ok := functions[id]
	if !ok {
		return gateway.Call{}, function{}, fmt.Errorf("lending: unknown function %s", id)
	}
	addr, err := b.registry.Address(desc.domain)
	if err != nil {
		return gateway.Call{}, function{}, err
	}
	call := gateway.Call{
		Function: gateway.FunctionRef{Address: addr, Module: desc.module, Name: desc.name},
		TypeArgs: desc.typeArgs,
		Params:   desc.params,
		Args:     args,
	}
	return call, desc, nil
}

func (b base) view(ctx context.Context, id functionID, args ...gateway.Value) (gateway.Result, error) {
	call, desc, err := b.prepare(id, args)
	if err != nil {
		return gateway.Result{}, err
	}
	res, err := b.caller.View(ctx, call)
	if err != nil {
		return gateway.Result{}, err
	}
	if err := res.Expect(desc.returns); err != nil {
		return gateway.Result{}, err
	}
	return res, nil
}

func (b base) submit(ctx context.Context, id functionID, args ...gateway.Value) (*gateway.Receipt, error) {
	if b.signer == nil {
		return nil, gateway.ErrNoSigner
	}
	call, _, err := b.prepare(id, args)
	if err != nil {
		return nil, err
	}
	return b.caller.Submit(ctx, b.signer, call)
}

func (b base) viewBigInt(ctx context.Context, id functionID, args ...gateway.Value) (*big.Int, error) {
	res, err := b.view(ctx, id, args...)
	if err != nil {
		return nil, err
	}
	return res.BigInt(0)
}

func (b base) viewBool(ctx context.Context, id functionID, args ...gateway.Value) (bool, error) {
	res, err := b.view(ctx, id, args...)
	if err != nil {
		return false, err
	}
	return res.Bool(0)
}

func (b base) viewAddress(ctx context.Context, id functionID, args ...gateway.Value) (crypto.Address, error) {
	res, err := b.view(ctx, id, args...)
	if err != nil {
		return crypto.Address{}, err
	}
	return res.Address(0)
}

func (b base) viewAddressList(ctx context.Context, id functionID, args ...gateway.Value) ([]crypto.Address, error) {
	res, err := b.view(ctx, id, args...)
	if err != nil {
		return nil, err
	}
	return res.AddressList(0)
}

func (b base) viewString(ctx context.Context, id functionID, args ...gateway.Value) (string, error) {
	res, err := b.view(ctx, id, args...)
	if err != nil {
		return "", err
	}
	return res.String(0)
}

// bigInts decodes values [0, len(dst)) of res into dst in order.
func bigInts(res gateway.Result, dst ...**big.Int) error {
	for i, d := range dst {
		v, err := res.BigInt(i)
		if err != nil {
			return err
		}
		*d = v
	}
	return nil
}

func addresses(list []crypto.Address) []gateway.Value {
	out := make([]gateway.Value, len(list))
	for i, a := range list {
		out[i] = gateway.Address(a)
	}
	return out
}

func addressVector(list []crypto.Address) gateway.Value {
	return gateway.Vector(gateway.TypeAddress, addresses(list)...)
}
