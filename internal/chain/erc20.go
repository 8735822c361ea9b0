package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rajat-gondkar/pat3on/internal/models"
)

// ERC20ABI is the slice of the stable-token contract interface this service
// consumes: transfer, balanceOf and decimals.
const ERC20ABI = `[{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

// ERC20 is the stable-token contract surface used by the executor. Client
// implements it against the real chain; tests substitute a stub.
type ERC20 interface {
	// Decimals returns the contract-reported decimal precision.
	Decimals(ctx context.Context) (uint8, error)
	// BalanceOf returns the token balance of an address, in base units.
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	// Transfer submits a signed token transfer and blocks until it is mined.
	Transfer(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*models.TxReceipt, error)
}
