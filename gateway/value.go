package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"aptoslend/crypto"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// TypeTag is a Move type as written in function signatures.
type TypeTag string

const (
	TypeBool    TypeTag = "bool"
	TypeU8      TypeTag = "u8"
	TypeU16     TypeTag = "u16"
	TypeU64     TypeTag = "u64"
	TypeU128    TypeTag = "u128"
	TypeU256    TypeTag = "u256"
	TypeAddress TypeTag = "address"
	TypeString  TypeTag = "0x1::string::String"
	TypeObject  TypeTag = "0x1::object::Object"
	TypeBytes   TypeTag = "vector<u8>"
)

// VectorOf returns the vector type of elem.
func VectorOf(elem TypeTag) TypeTag {
	return TypeTag("vector<" + string(elem) + ">")
}

// OptionOf returns the option type of elem.
func OptionOf(elem TypeTag) TypeTag {
	return TypeTag("0x1::option::Option<" + string(elem) + ">")
}

// Value is one typed argument in wire form. Integers of every width travel as
// decimal strings; addresses as 0x plus 64 hex digits.
type Value struct {
	tag  TypeTag
	wire any
	err  error
}

// Type returns the Move type of the value.
func (v Value) Type() TypeTag { return v.tag }

// Err returns the coercion error recorded when the value was built.
func (v Value) Err() error { return v.err }

// Wire returns the JSON representation sent to the node.
func (v Value) Wire() any { return v.wire }

func (v Value) MarshalJSON() ([]byte, error) {
	if v.err != nil {
		return nil, v.err
	}
	return json.Marshal(v.wire)
}

func Bool(b bool) Value {
	return Value{tag: TypeBool, wire: b}
}

func U8(n uint8) Value {
	return Value{tag: TypeU8, wire: strconv.FormatUint(uint64(n), 10)}
}

func U16(n uint16) Value {
	return Value{tag: TypeU16, wire: strconv.FormatUint(uint64(n), 10)}
}

func U64(n uint64) Value {
	return Value{tag: TypeU64, wire: strconv.FormatUint(n, 10)}
}

// U128 encodes x, recording an error when x is nil, negative or wider than
// 128 bits.
func U128(x *big.Int) Value {
	v := Value{tag: TypeU128}
	switch {
	case x == nil:
		v.err = errors.New("u128: nil value")
	case x.Sign() < 0:
		v.err = fmt.Errorf("u128: negative value %s", x)
	case x.BitLen() > 128:
		v.err = fmt.Errorf("u128: %s overflows 128 bits", x)
	default:
		v.wire = x.String()
	}
	return v
}

// U256 encodes x, recording an error when x is nil, negative or wider than
// 256 bits.
func U256(x *big.Int) Value {
	v := Value{tag: TypeU256}
	if x == nil {
		v.err = errors.New("u256: nil value")
		return v
	}
	if x.Sign() < 0 {
		v.err = fmt.Errorf("u256: negative value %s", x)
		return v
	}
	_, overflow := uint256.FromBig(x)
	if overflow {
		v.err = fmt.Errorf("u256: %s overflows 256 bits", x)
		return v
	}
	v.wire = x.String()
	return v
}

func Address(addr crypto.Address) Value {
	return Value{tag: TypeAddress, wire: addr.String()}
}

// Object passes an object handle, which the node accepts as its address.
func Object(addr crypto.Address) Value {
	return Value{tag: TypeObject, wire: addr.String()}
}

func String(s string) Value {
	return Value{tag: TypeString, wire: s}
}

// Bytes encodes a vector<u8> as 0x prefixed hex.
func Bytes(b []byte) Value {
	return Value{tag: TypeBytes, wire: hexutil.Encode(b)}
}

// Vector builds a vector<elem>. Every element must have type elem.
func Vector(elem TypeTag, values ...Value) Value {
	v := Value{tag: VectorOf(elem)}
	wire := make([]any, 0, len(values))
	for i, item := range values {
		if item.err != nil {
			v.err = fmt.Errorf("element %d: %w", i, item.err)
			return v
		}
		if item.tag != elem {
			v.err = fmt.Errorf("element %d: expected %s, got %s", i, elem, item.tag)
			return v
		}
		wire = append(wire, item.wire)
	}
	v.wire = wire
	return v
}

// OptionValue builds an Option<elem>; a nil value is none.
func OptionValue(elem TypeTag, value *Value) Value {
	v := Value{tag: OptionOf(elem)}
	if value == nil {
		v.wire = map[string][]any{"vec": {}}
		return v
	}
	if value.err != nil {
		v.err = value.err
		return v
	}
	if value.tag != elem {
		v.err = fmt.Errorf("option: expected %s, got %s", elem, value.tag)
		return v
	}
	v.wire = map[string][]any{"vec": {value.wire}}
	return v
}
