package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/internal/wallet"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

// stubToken is an in-memory ERC20 that records which calls were made.
type stubToken struct {
	decimals uint8
	balance  *big.Int

	decimalsErr error
	balanceErr  error
	transferErr error

	transferCalls int
	lastRecipient common.Address
	lastAmount    *big.Int
}

func (s *stubToken) Decimals(ctx context.Context) (uint8, error) {
	if s.decimalsErr != nil {
		return 0, s.decimalsErr
	}
	return s.decimals, nil
}

func (s *stubToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return s.balance, nil
}

func (s *stubToken) Transfer(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*models.TxReceipt, error) {
	s.transferCalls++
	s.lastRecipient = to
	s.lastAmount = amount
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	return &models.TxReceipt{TxHash: "0xabc123", BlockNumber: 42}, nil
}

const executorTestSecret = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newExecutorFixture(t *testing.T, token ERC20) (*Executor, string) {
	t.Helper()
	vault, err := wallet.NewVault(executorTestSecret)
	require.NoError(t, err)
	generated, err := vault.Generate()
	require.NoError(t, err)
	return NewExecutor(vault, token, logger.NewTestLogger(t)), generated.EncryptedKey.String()
}

func TestTransferSuccess(t *testing.T) {
	token := &stubToken{decimals: 6, balance: big.NewInt(10_000_000)}
	executor, storedKey := newExecutorFixture(t, token)

	receipt, err := executor.Transfer(context.Background(), storedKey,
		"0x1111111111111111111111111111111111111111", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", receipt.TxHash)
	assert.Equal(t, 1, token.transferCalls)
	assert.Equal(t, big.NewInt(10_000_000), token.lastAmount)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), token.lastRecipient)
}

func TestTransferExactBalanceSucceeds(t *testing.T) {
	// A balance equal to the price is enough; the comparison is not strict.
	token := &stubToken{decimals: 6, balance: big.NewInt(5_000_000)}
	executor, storedKey := newExecutorFixture(t, token)

	_, err := executor.Transfer(context.Background(), storedKey,
		"0x1111111111111111111111111111111111111111", decimal.RequireFromString("5"))
	require.NoError(t, err)
	assert.Equal(t, 1, token.transferCalls)
}

func TestTransferInsufficientBalanceFailsFast(t *testing.T) {
	token := &stubToken{decimals: 6, balance: big.NewInt(3_500_000)}
	executor, storedKey := newExecutorFixture(t, token)

	_, err := executor.Transfer(context.Background(), storedKey,
		"0x1111111111111111111111111111111111111111", decimal.RequireFromString("10"))

	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Shortfall().Equal(decimal.RequireFromString("6.5")))
	// Nothing was submitted to the chain.
	assert.Equal(t, 0, token.transferCalls)
}

func TestTransferDecryptionFailureStopsBeforeChain(t *testing.T) {
	token := &stubToken{decimals: 6, balance: big.NewInt(10_000_000)}
	executor, _ := newExecutorFixture(t, token)

	// A key encrypted under a different secret cannot be opened.
	otherVault, err := wallet.NewVault("a different secret entirely")
	require.NoError(t, err)
	foreign, err := otherVault.Generate()
	require.NoError(t, err)

	_, err = executor.Transfer(context.Background(), foreign.EncryptedKey.String(),
		"0x1111111111111111111111111111111111111111", decimal.RequireFromString("10"))

	assert.ErrorIs(t, err, wallet.ErrDecryptionFailed)
	assert.Equal(t, 0, token.transferCalls)
}

func TestTransferRejectsInvalidRecipient(t *testing.T) {
	token := &stubToken{decimals: 6, balance: big.NewInt(10_000_000)}
	executor, storedKey := newExecutorFixture(t, token)

	_, err := executor.Transfer(context.Background(), storedKey, "not-an-address", decimal.RequireFromString("1"))
	assert.Error(t, err)
	assert.Equal(t, 0, token.transferCalls)
}

func TestTransferWrapsChainFailures(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("decimals lookup", func(t *testing.T) {
		token := &stubToken{decimalsErr: cause}
		executor, storedKey := newExecutorFixture(t, token)

		_, err := executor.Transfer(context.Background(), storedKey,
			"0x1111111111111111111111111111111111111111", decimal.RequireFromString("1"))

		var chainErr *ChainError
		require.ErrorAs(t, err, &chainErr)
		assert.Equal(t, "decimals lookup", chainErr.Op)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("balance check", func(t *testing.T) {
		token := &stubToken{decimals: 6, balanceErr: cause}
		executor, storedKey := newExecutorFixture(t, token)

		_, err := executor.Transfer(context.Background(), storedKey,
			"0x1111111111111111111111111111111111111111", decimal.RequireFromString("1"))

		var chainErr *ChainError
		require.ErrorAs(t, err, &chainErr)
		assert.Equal(t, "balance check", chainErr.Op)
	})

	t.Run("transfer", func(t *testing.T) {
		token := &stubToken{decimals: 6, balance: big.NewInt(10_000_000), transferErr: cause}
		executor, storedKey := newExecutorFixture(t, token)

		_, err := executor.Transfer(context.Background(), storedKey,
			"0x1111111111111111111111111111111111111111", decimal.RequireFromString("1"))

		var chainErr *ChainError
		require.ErrorAs(t, err, &chainErr)
		assert.Equal(t, "transfer", chainErr.Op)
		assert.Equal(t, 1, token.transferCalls)
	})
}
