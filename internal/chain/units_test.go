package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"10.00", 6, "10000000"},
		{"0.000001", 6, "1"},
		{"1", 18, "1000000000000000000"},
		{"0.001", 18, "1000000000000000"},
		{"0", 6, "0"},
		// Dust below the token precision is truncated.
		{"0.0000019", 6, "1"},
	}

	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		want, ok := new(big.Int).SetString(tc.want, 10)
		require.True(t, ok)
		assert.Equal(t, want, ToBaseUnits(amount, tc.decimals), "amount %s decimals %d", tc.amount, tc.decimals)
	}
}

func TestFromBaseUnits(t *testing.T) {
	units := big.NewInt(10_000_000)
	amount := FromBaseUnits(units, 6)
	assert.True(t, amount.Equal(decimal.RequireFromString("10")), "got %s", amount)

	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	amount = FromBaseUnits(wei, NativeDecimals)
	assert.True(t, amount.Equal(decimal.RequireFromString("1.5")), "got %s", amount)
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("42.123456")
	back := FromBaseUnits(ToBaseUnits(amount, 6), 6)
	assert.True(t, amount.Equal(back), "got %s", back)
}

func TestInsufficientBalanceShortfall(t *testing.T) {
	err := &InsufficientBalanceError{
		Balance:  decimal.RequireFromString("3.5"),
		Required: decimal.RequireFromString("10"),
	}
	assert.True(t, err.Shortfall().Equal(decimal.RequireFromString("6.5")))
	assert.Contains(t, err.Error(), "have 3.5")
	assert.Contains(t, err.Error(), "need 10")
}
