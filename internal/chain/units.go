package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the decimal precision of the gas token.
const NativeDecimals = 18

// ToBaseUnits converts a human-scaled amount to integer base units using the
// token's decimal precision. Fractional dust below the token's precision is
// truncated.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).BigInt()
}

// FromBaseUnits converts integer base units back to a human-scaled amount.
func FromBaseUnits(units *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(units, -int32(decimals))
}
