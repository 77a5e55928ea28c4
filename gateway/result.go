package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"aptoslend/crypto"
)

// Result holds the positional return values of a view call. Accessors never
// coerce: a value with an unexpected shape is a DecodingError.
type Result struct {
	Function string
	Values   []json.RawMessage
}

// Len is the number of returned values.
func (r Result) Len() int { return len(r.Values) }

// Expect fails unless exactly n values were returned.
func (r Result) Expect(n int) error {
	if len(r.Values) != n {
		return &DecodingError{Function: r.Function, Index: -1, Err: fmt.Errorf("expected %d return values, got %d", n, len(r.Values))}
	}
	return nil
}

func (r Result) fail(i int, err error) error {
	return &DecodingError{Function: r.Function, Index: i, Err: err}
}

func (r Result) raw(i int) (json.RawMessage, error) {
	if i < 0 || i >= len(r.Values) {
		return nil, r.fail(i, fmt.Errorf("index out of range (%d values)", len(r.Values)))
	}
	return r.Values[i], nil
}

// Decode unmarshals value i into v.
func (r Result) Decode(i int, v any) error {
	raw, err := r.raw(i)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return r.fail(i, err)
	}
	return nil
}

// BigInt decodes an unsigned integer of any width. The node sends u64 and
// wider as strings and narrower integers as JSON numbers; both are accepted.
func (r Result) BigInt(i int) (*big.Int, error) {
	raw, err := r.raw(i)
	if err != nil {
		return nil, err
	}
	value, err := parseUnsigned(raw)
	if err != nil {
		return nil, r.fail(i, err)
	}
	return value, nil
}

// Uint64 decodes an integer that must fit in 64 bits.
func (r Result) Uint64(i int) (uint64, error) {
	value, err := r.BigInt(i)
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return 0, r.fail(i, fmt.Errorf("%s overflows uint64", value))
	}
	return value.Uint64(), nil
}

// Uint8 decodes an integer that must fit in 8 bits.
func (r Result) Uint8(i int) (uint8, error) {
	value, err := r.Uint64(i)
	if err != nil {
		return 0, err
	}
	if value > 0xff {
		return 0, r.fail(i, fmt.Errorf("%d overflows uint8", value))
	}
	return uint8(value), nil
}

// Uint16 decodes an integer that must fit in 16 bits.
func (r Result) Uint16(i int) (uint16, error) {
	value, err := r.Uint64(i)
	if err != nil {
		return 0, err
	}
	if value > 0xffff {
		return 0, r.fail(i, fmt.Errorf("%d overflows uint16", value))
	}
	return uint16(value), nil
}

func (r Result) Bool(i int) (bool, error) {
	raw, err := r.raw(i)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, r.fail(i, err)
	}
	return b, nil
}

func (r Result) String(i int) (string, error) {
	raw, err := r.raw(i)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", r.fail(i, err)
	}
	return s, nil
}

func (r Result) Address(i int) (crypto.Address, error) {
	s, err := r.String(i)
	if err != nil {
		return crypto.Address{}, err
	}
	addr, err := crypto.ParseAddress(s)
	if err != nil {
		return crypto.Address{}, r.fail(i, err)
	}
	return addr, nil
}

// Object decodes an object handle, sent as {"inner": "0x..."}.
func (r Result) Object(i int) (crypto.Address, error) {
	var handle struct {
		Inner string `json:"inner"`
	}
	if err := r.Decode(i, &handle); err != nil {
		return crypto.Address{}, err
	}
	if handle.Inner == "" {
		return crypto.Address{}, r.fail(i, errors.New("object handle without inner address"))
	}
	addr, err := crypto.ParseAddress(handle.Inner)
	if err != nil {
		return crypto.Address{}, r.fail(i, err)
	}
	return addr, nil
}

// OptionalBigInt decodes an Option<uN>, sent as {"vec": []} or {"vec": [n]}.
func (r Result) OptionalBigInt(i int) (*big.Int, bool, error) {
	var option struct {
		Vec []json.RawMessage `json:"vec"`
	}
	if err := r.Decode(i, &option); err != nil {
		return nil, false, err
	}
	switch len(option.Vec) {
	case 0:
		return nil, false, nil
	case 1:
		value, err := parseUnsigned(option.Vec[0])
		if err != nil {
			return nil, false, r.fail(i, err)
		}
		return value, true, nil
	default:
		return nil, false, r.fail(i, fmt.Errorf("option with %d elements", len(option.Vec)))
	}
}

// AddressList decodes a vector<address>.
func (r Result) AddressList(i int) ([]crypto.Address, error) {
	var items []string
	if err := r.Decode(i, &items); err != nil {
		return nil, err
	}
	out := make([]crypto.Address, 0, len(items))
	for _, item := range items {
		addr, err := crypto.ParseAddress(item)
		if err != nil {
			return nil, r.fail(i, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// BigIntList decodes a vector of unsigned integers.
func (r Result) BigIntList(i int) ([]*big.Int, error) {
	var items []json.RawMessage
	if err := r.Decode(i, &items); err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, len(items))
	for _, item := range items {
		value, err := parseUnsigned(item)
		if err != nil {
			return nil, r.fail(i, err)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseUnsigned(raw json.RawMessage) (*big.Int, error) {
	trimmed := bytes.TrimSpace(raw)
	text := string(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
	}
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("%s is not a decimal integer", string(trimmed))
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%s is negative", value)
	}
	return value, nil
}
