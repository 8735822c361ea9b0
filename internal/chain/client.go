// Package chain wraps the RPC client, the stable-token contract and the
// master wallet behind the interfaces the rest of the service consumes.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

const (
	// DialTimeout bounds the initial RPC handshake.
	DialTimeout = 10 * time.Second
)

// Client talks to the chain RPC endpoint and the stable-token contract.
type Client struct {
	logger *logger.Logger

	rpcURL    string
	eth       *ethclient.Client
	chainID   *big.Int
	tokenAddr common.Address
	token     *bind.BoundContract

	mu       sync.Mutex
	decimals *uint8
}

// Dial connects to the RPC endpoint and binds the stable-token contract.
func Dial(rpcURL, tokenAddress string, log *logger.Logger) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the RPC endpoint: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to read chain ID: %w", err)
	}

	if !common.IsHexAddress(tokenAddress) {
		eth.Close()
		return nil, fmt.Errorf("invalid stable-token contract address: %s", tokenAddress)
	}
	parsedABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}
	tokenAddr := common.HexToAddress(tokenAddress)
	token := bind.NewBoundContract(tokenAddr, parsedABI, eth, eth, eth)

	log.Info("Connected to chain RPC ", "url ", rpcURL, " chainID ", chainID)

	return &Client{
		logger:    log,
		rpcURL:    rpcURL,
		eth:       eth,
		chainID:   chainID,
		tokenAddr: tokenAddr,
		token:     token,
	}, nil
}

// ChainID returns the connected network's chain ID.
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

func (c *Client) Close() {
	c.eth.Close()
}

// Decimals returns the contract-reported decimal precision, cached after the
// first successful read. The precision of a token contract never changes.
func (c *Client) Decimals(ctx context.Context) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decimals != nil {
		return *c.decimals, nil
	}

	var results []interface{}
	if err := c.token.Call(&bind.CallOpts{Context: ctx}, &results, "decimals"); err != nil {
		return 0, fmt.Errorf("failed to read token decimals: %w", err)
	}
	decimals, ok := results[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result type %T", results[0])
	}
	c.decimals = &decimals
	return decimals, nil
}

// BalanceOf returns the stable-token balance of an address, in base units.
func (c *Client) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var results []interface{}
	if err := c.token.Call(&bind.CallOpts{Context: ctx}, &results, "balanceOf", account); err != nil {
		return nil, fmt.Errorf("failed to read token balance: %w", err)
	}
	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balance result type %T", results[0])
	}
	return balance, nil
}

// Transfer submits a stable-token transfer signed by key and blocks until
// the transaction is mined. A mined-but-reverted transaction is an error.
func (c *Client) Transfer(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*models.TxReceipt, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := c.token.Transact(opts, "transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transfer: %w", err)
	}
	c.logger.Debug("Transfer submitted ", "tx ", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm transfer %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transfer %s reverted", tx.Hash().Hex())
	}

	return &models.TxReceipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// NativeBalanceAt returns the gas-token balance of an address, in wei.
func (c *Client) NativeBalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read native balance: %w", err)
	}
	return balance, nil
}
