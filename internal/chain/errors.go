package chain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMasterWalletNotConfigured is returned by the funder when no master
// wallet key was supplied. This is a configuration fault, not a transient
// one, and must not be silently skipped by callers that require funding.
var ErrMasterWalletNotConfigured = errors.New("master wallet not configured: set MASTER_WALLET_PRIVATE_KEY")

// InsufficientBalanceError is an expected business outcome, not a system
// fault: the sender simply does not hold enough tokens. It is raised before
// any transaction is submitted, so no gas or nonce is consumed.
type InsufficientBalanceError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient token balance: have %s, need %s", e.Balance, e.Required)
}

// Shortfall returns how much the sender is missing.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Balance)
}

// ChainError wraps a network, revert, or timeout failure during submission
// or confirmation, carrying the underlying cause.
type ChainError struct {
	Op  string
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain error during %s: %v", e.Op, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}
