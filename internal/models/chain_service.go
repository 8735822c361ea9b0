package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// TxReceipt carries the on-chain confirmation of a submitted transaction.
type TxReceipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// BalanceReader reads human-scaled balances for an address.
type BalanceReader interface {
	// NativeBalance returns the gas-token balance.
	NativeBalance(ctx context.Context, address string) (decimal.Decimal, error)
	// TokenBalance returns the stable-token balance, scaled by the
	// contract-reported decimal precision.
	TokenBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// TransferExecutor moves stable tokens out of a custodial wallet. The stored
// encrypted key is passed as persisted; decryption happens inside. No retries
// are performed; retry policy belongs to the caller.
type TransferExecutor interface {
	Transfer(ctx context.Context, storedKey, recipient string, amount decimal.Decimal) (*TxReceipt, error)
}

// WalletFunder sends the initial gas-token grant to a newly created wallet
// from the shared master wallet.
type WalletFunder interface {
	Fund(ctx context.Context, recipient string) (*TxReceipt, error)
	MasterAddress() (string, error)
}

// NotificationSink accepts scheduler-produced notifications. Implementations
// must persist the notification; any additional delivery is best-effort.
type NotificationSink interface {
	Send(ctx context.Context, n *Notification) error
}
