package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/rajat-gondkar/pat3on/pkg/validation"
)

// Oracle reads human-scaled balances. Native amounts are scaled by the fixed
// gas-token precision, token amounts by the contract-reported precision.
type Oracle struct {
	client *Client
}

func NewOracle(client *Client) *Oracle {
	return &Oracle{client: client}
}

// NativeBalance returns the gas-token balance of an address.
func (o *Oracle) NativeBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return decimal.Zero, err
	}
	wei, err := o.client.NativeBalanceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, err
	}
	return FromBaseUnits(wei, NativeDecimals), nil
}

// TokenBalance returns the stable-token balance of an address.
func (o *Oracle) TokenBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return decimal.Zero, err
	}
	decimals, err := o.client.Decimals(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	units, err := o.client.BalanceOf(ctx, common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, err
	}
	return FromBaseUnits(units, decimals), nil
}
