package gateway

import (
	"fmt"

	"aptoslend/crypto"
)

// FunctionRef identifies a Move function: package address, module and name.
type FunctionRef struct {
	Address crypto.Address
	Module  string
	Name    string
}

func (f FunctionRef) String() string {
	return fmt.Sprintf("%s::%s::%s", f.Address, f.Module, f.Name)
}

// Call is one invocation of a Move function. Params is the declared
// parameter list (signer excluded) that Args are checked against.
type Call struct {
	Function FunctionRef
	TypeArgs []string
	Params   []TypeTag
	Args     []Value
}

// Validate checks argument count and types against Params.
func (c Call) Validate() error {
	name := c.Function.String()
	if c.Function.Module == "" || c.Function.Name == "" {
		return &ArgumentError{Function: name, Index: -1, Reason: "function module and name are required"}
	}
	if len(c.Args) != len(c.Params) {
		return &ArgumentError{Function: name, Index: -1, Reason: fmt.Sprintf("expected %d arguments, got %d", len(c.Params), len(c.Args))}
	}
	for i, arg := range c.Args {
		if err := arg.Err(); err != nil {
			return &ArgumentError{Function: name, Index: i, Reason: err.Error()}
		}
		if arg.Type() != c.Params[i] {
			return &ArgumentError{Function: name, Index: i, Reason: fmt.Sprintf("expected %s, got %s", c.Params[i], arg.Type())}
		}
	}
	return nil
}

func (c Call) typeArguments() []string {
	if c.TypeArgs == nil {
		return []string{}
	}
	return c.TypeArgs
}

func (c Call) arguments() []Value {
	if c.Args == nil {
		return []Value{}
	}
	return c.Args
}
