package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/internal/wallet"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
	"github.com/rajat-gondkar/pat3on/pkg/validation"
)

// DefaultConfirmTimeout bounds one submit-and-wait cycle.
const DefaultConfirmTimeout = 5 * time.Minute

// Executor decrypts a sender's custodial key, checks the balance and runs a
// single stable-token transfer through to confirmation. It performs no
// retries; retry policy is entirely the caller's.
type Executor struct {
	logger *logger.Logger
	vault  *wallet.Vault
	token  ERC20

	confirmTimeout time.Duration
}

func NewExecutor(vault *wallet.Vault, token ERC20, log *logger.Logger) *Executor {
	return &Executor{
		logger:         log,
		vault:          vault,
		token:          token,
		confirmTimeout: DefaultConfirmTimeout,
	}
}

// Transfer moves amount stable tokens from the wallet behind storedKey to
// recipient.
//
// Error cases: wallet.ErrDecryptionFailed propagates untouched (a corrupted
// secret is a configuration concern, not a transfer outcome);
// *InsufficientBalanceError is returned before any transaction is submitted;
// everything that goes wrong on the chain surfaces as *ChainError.
func (e *Executor) Transfer(ctx context.Context, storedKey, recipient string, amount decimal.Decimal) (*models.TxReceipt, error) {
	privateKey, err := e.vault.DecryptStored(storedKey)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decrypted key is not a valid private key: %w", err)
	}
	sender := crypto.PubkeyToAddress(key.PublicKey)

	if err := validation.ValidateAddress(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("transfer amount cannot be negative: %s", amount)
	}

	ctx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	decimals, err := e.token.Decimals(ctx)
	if err != nil {
		return nil, &ChainError{Op: "decimals lookup", Err: err}
	}
	units := ToBaseUnits(amount, decimals)

	balance, err := e.token.BalanceOf(ctx, sender)
	if err != nil {
		return nil, &ChainError{Op: "balance check", Err: err}
	}
	if balance.Cmp(units) < 0 {
		return nil, &InsufficientBalanceError{
			Balance:  FromBaseUnits(balance, decimals),
			Required: amount,
		}
	}

	e.logger.Info("Transferring tokens ", "from ", sender.Hex(), " to ", recipient, " amount ", amount.String())
	receipt, err := e.token.Transfer(ctx, key, common.HexToAddress(recipient), units)
	if err != nil {
		return nil, &ChainError{Op: "transfer", Err: err}
	}

	e.logger.Info("Transfer confirmed ", "tx ", receipt.TxHash, " block ", receipt.BlockNumber)
	return receipt, nil
}
