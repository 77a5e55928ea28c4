package gateway

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"aptoslend/crypto"
)

func wireJSON(t *testing.T, v Value) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func TestValueWireForms(t *testing.T) {
	max256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	addr := crypto.MustParseAddress("0xabc")
	some := U64(9)

	cases := []struct {
		name  string
		value Value
		want  string
	}{
		{"bool", Bool(true), `true`},
		{"u8", U8(255), `"255"`},
		{"u16", U16(65535), `"65535"`},
		{"u64", U64(18446744073709551615), `"18446744073709551615"`},
		{"u256 max", U256(max256), `"` + max256.String() + `"`},
		{"address", Address(addr), `"0x0000000000000000000000000000000000000000000000000000000000000abc"`},
		{"bytes", Bytes([]byte{0xca, 0xfe}), `"0xcafe"`},
		{"string", String("DAI"), `"DAI"`},
		{"vector", Vector(TypeU8, U8(1), U8(2)), `["1","2"]`},
		{"option none", OptionValue(TypeU64, nil), `{"vec":[]}`},
		{"option some", OptionValue(TypeU64, &some), `{"vec":["9"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.value.Err())
			require.JSONEq(t, tc.want, wireJSON(t, tc.value))
		})
	}
}

func TestValueRangeErrors(t *testing.T) {
	over128 := new(big.Int).Lsh(big.NewInt(1), 128)
	over256 := new(big.Int).Lsh(big.NewInt(1), 256)

	require.Error(t, U128(nil).Err())
	require.Error(t, U128(big.NewInt(-1)).Err())
	require.Error(t, U128(over128).Err())
	require.NoError(t, U128(new(big.Int).Sub(over128, big.NewInt(1))).Err())
	require.Error(t, U256(over256).Err())
	require.Error(t, U256(big.NewInt(-5)).Err())

	_, err := json.Marshal(U256(over256))
	require.Error(t, err)

	mixed := Vector(TypeU64, U64(1), U8(2))
	require.ErrorContains(t, mixed.Err(), "element 1")
	bad := U8(1)
	require.ErrorContains(t, OptionValue(TypeU64, &bad).Err(), "expected u64")
}

func TestResultAccessorsNeverCoerce(t *testing.T) {
	res := Result{Function: "0x1::pool::get", Values: []json.RawMessage{
		json.RawMessage(`"340282366920938463463374607431768211455"`),
		json.RawMessage(`7`),
		json.RawMessage(`"1.5"`),
		json.RawMessage(`{"inner":"0xabc"}`),
		json.RawMessage(`{"vec":[]}`),
		json.RawMessage(`["0x1","0x2"]`),
		json.RawMessage(`"-3"`),
		json.RawMessage(`"300"`),
	}}

	n, err := res.BigInt(0)
	require.NoError(t, err)
	require.Equal(t, "340282366920938463463374607431768211455", n.String())

	small, err := res.Uint8(1)
	require.NoError(t, err)
	require.Equal(t, uint8(7), small)

	var decErr *DecodingError
	_, err = res.Uint64(0)
	require.True(t, errors.As(err, &decErr))
	require.Equal(t, 0, decErr.Index)

	_, err = res.BigInt(2)
	require.True(t, errors.As(err, &decErr))

	obj, err := res.Object(3)
	require.NoError(t, err)
	require.Equal(t, crypto.MustParseAddress("0xabc"), obj)

	value, ok, err := res.OptionalBigInt(4)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, value)

	list, err := res.AddressList(5)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = res.BigInt(6)
	require.ErrorContains(t, err, "negative")

	_, err = res.Uint8(7)
	require.ErrorContains(t, err, "overflows uint8")

	_, err = res.Bool(0)
	require.True(t, errors.As(err, &decErr))

	_, err = res.String(9)
	require.ErrorContains(t, err, "index out of range")

	require.Error(t, res.Expect(2))
	require.NoError(t, res.Expect(8))
}

func TestIsMoveAbort(t *testing.T) {
	aborted := uint64(4016)
	linker := uint64(1091)
	cases := []struct {
		name string
		err  APIError
		want bool
	}{
		{"abort status", APIError{StatusCode: http.StatusBadRequest, ErrorCode: "vm_error", VMErrorCode: &aborted, Message: "Move abort in 0x20::pool: 0x10001"}, true},
		{"abort message without status", APIError{StatusCode: http.StatusBadRequest, Message: "Move abort in 0x20::oracle: EASSET_NOT_REGISTERED(0x1)"}, true},
		{"function resolution failure", APIError{StatusCode: http.StatusBadRequest, ErrorCode: "vm_error", VMErrorCode: &linker, Message: "FUNCTION_RESOLUTION_FAILURE"}, false},
		{"linker error without status", APIError{StatusCode: http.StatusBadRequest, ErrorCode: "vm_error", Message: "LINKER_ERROR: module not found"}, false},
		{"aborted request", APIError{StatusCode: http.StatusServiceUnavailable, Message: "request aborted by upstream"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.IsMoveAbort())
		})
	}
}
