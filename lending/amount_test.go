package lending

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"aptoslend/gateway"
)

func TestParseAmountRoundTrip(t *testing.T) {
	maxU64 := new(big.Int).SetUint64(^uint64(0)).String()
	maxU256 := MaxAmount().String()
	cases := []string{"0", "1", "100", "1000000000000000000", maxU64, "18446744073709551616", maxU256}
	for _, input := range cases {
		amount, err := ParseAmount(input)
		require.NoError(t, err, input)
		require.Equal(t, input, amount.String())

		wire, err := json.Marshal(gateway.U256(amount))
		require.NoError(t, err)
		require.Equal(t, `"`+input+`"`, string(wire))
	}
}

func TestParseAmountRejects(t *testing.T) {
	overflow := new(big.Int).Add(MaxAmount(), big.NewInt(1)).String()
	for _, input := range []string{"", "  ", "-1", "+1", "1.5", "1e18", "0x10", "abc", overflow} {
		_, err := ParseAmount(input)
		require.ErrorIs(t, err, ErrInvalidAmount, input)
	}
}

func TestParsePositiveAmount(t *testing.T) {
	_, err := ParsePositiveAmount("supply", "0")
	require.ErrorIs(t, err, ErrInvalidAmount)
	v, err := ParsePositiveAmount("supply", " 42 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Int64())
}

func TestParseUint64Amount(t *testing.T) {
	v, err := ParseUint64Amount("18446744073709551615")
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), v)
	_, err = ParseUint64Amount("18446744073709551616")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
