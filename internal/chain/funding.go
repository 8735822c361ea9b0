package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
	"github.com/rajat-gondkar/pat3on/pkg/validation"
)

// fundingGasLimit is the gas cost of a plain value transfer.
const fundingGasLimit = 21000

// Funder sends a small fixed gas-token grant from the master wallet to newly
// created custodial wallets so they can pay for their own transactions.
//
// The master wallet is the one shared mutable resource in the service: its
// transaction nonce must advance strictly, so all funding submissions are
// serialized under a mutex.
type Funder struct {
	logger *logger.Logger
	client *Client
	amount decimal.Decimal

	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewFunder builds a funder from the master wallet key. An empty key yields
// a funder whose Fund always fails with ErrMasterWalletNotConfigured; wallet
// creation still works, the wallets just start unfunded.
func NewFunder(client *Client, masterKeyHex string, amount decimal.Decimal, log *logger.Logger) (*Funder, error) {
	f := &Funder{logger: log, client: client, amount: amount}
	if masterKeyHex == "" {
		log.Warn("Master wallet key not set, new wallets will not be funded")
		return f, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(masterKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid master wallet private key: %w", err)
	}
	f.key = key
	f.address = crypto.PubkeyToAddress(key.PublicKey)
	log.Info("Master wallet configured ", "address ", f.address.Hex())
	return f, nil
}

// MasterAddress returns the master wallet's address.
func (f *Funder) MasterAddress() (string, error) {
	if f.key == nil {
		return "", ErrMasterWalletNotConfigured
	}
	return f.address.Hex(), nil
}

// Fund transfers the configured gas-token amount to recipient and blocks
// until the transaction is mined.
func (f *Funder) Fund(ctx context.Context, recipient string) (*models.TxReceipt, error) {
	if f.key == nil {
		return nil, ErrMasterWalletNotConfigured
	}
	if err := validation.ValidateAddress(recipient); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	nonce, err := f.client.eth.PendingNonceAt(ctx, f.address)
	if err != nil {
		return nil, &ChainError{Op: "nonce lookup", Err: err}
	}
	gasPrice, err := f.client.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &ChainError{Op: "gas price lookup", Err: err}
	}

	to := common.HexToAddress(recipient)
	tx := types.NewTransaction(nonce, to, ToBaseUnits(f.amount, NativeDecimals), fundingGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(f.client.chainID), f.key)
	if err != nil {
		return nil, &ChainError{Op: "signing", Err: err}
	}

	f.logger.Info("Funding wallet ", "recipient ", recipient, " amount ", f.amount.String())
	if err := f.client.eth.SendTransaction(ctx, signed); err != nil {
		return nil, &ChainError{Op: "submission", Err: err}
	}

	receipt, err := bind.WaitMined(ctx, f.client.eth, signed)
	if err != nil {
		return nil, &ChainError{Op: "confirmation", Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &ChainError{Op: "confirmation", Err: fmt.Errorf("funding transaction %s reverted", signed.Hash().Hex())}
	}

	f.logger.Info("Wallet funded ", "recipient ", recipient, " tx ", signed.Hash().Hex())
	return &models.TxReceipt{
		TxHash:      signed.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}
