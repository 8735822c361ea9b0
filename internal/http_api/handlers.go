package http_api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajat-gondkar/pat3on/internal/chain"
	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/validation"
)

// CreateWalletRequest represents the JSON body for custodial wallet creation
type CreateWalletRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CreateWalletResponse represents the success response for wallet creation.
// PrivateKey is shown exactly once; it is never stored in this form.
type CreateWalletResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Address       string `json:"address"`
	PrivateKey    string `json:"private_key"`
	Funded        bool   `json:"funded"`
	FundingTxHash string `json:"funding_tx_hash,omitempty"`
}

// createWallet is a handler for the wallet creation endpoint.
func (s *HTTPServer) createWallet(c *gin.Context) {
	var req CreateWalletRequest

	// Parse and validate JSON request body
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body: ", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	user, err := s.repo.GetUser(req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "User not found",
			})
			return
		}
		s.logger.Error("Failed to load user ", "user ", req.UserID, " error ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load user",
		})
		return
	}

	if user.HasCustodialWallet() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "User already has a custodial wallet",
			"address": user.WalletAddress,
		})
		return
	}

	s.logger.Info("Generating custodial wallet ", "user ", user.ID)
	generated, err := s.vault.Generate()
	if err != nil {
		s.logger.Error("Failed to generate wallet: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate wallet",
		})
		return
	}

	if err := s.repo.SetUserWallet(user.ID, generated.Address, generated.EncryptedKey.String(), time.Now()); err != nil {
		s.logger.Error("Failed to persist wallet ", "user ", user.ID, " error ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to persist wallet",
		})
		return
	}

	// Funding is best-effort: a wallet may legitimately exist unfunded and
	// can be funded later.
	response := CreateWalletResponse{
		Success:    true,
		Message:    "Custodial wallet created successfully",
		Address:    generated.Address,
		PrivateKey: generated.PrivateKey,
	}
	receipt, err := s.funder.Fund(c.Request.Context(), generated.Address)
	if err != nil {
		s.logger.Warn("Failed to fund new wallet ", "address ", generated.Address, " error ", err)
	} else {
		if err := s.repo.SetUserWalletFunding(user.ID, time.Now(), receipt.TxHash); err != nil {
			s.logger.Error("Failed to persist funding metadata ", "user ", user.ID, " error ", err)
		}
		response.Funded = true
		response.FundingTxHash = receipt.TxHash
	}

	s.logger.Info("Custodial wallet created ", "user ", user.ID, " address ", generated.Address)
	c.JSON(http.StatusCreated, response)
}

// walletBalances is a handler for the balance query endpoint.
func (s *HTTPServer) walletBalances(c *gin.Context) {
	address := c.Param("address")
	if err := validation.ValidateAddress(address); err != nil {
		s.logger.Debug("Invalid address ", "address ", address, " error ", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid address: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	native, err := s.balances.NativeBalance(ctx, address)
	if err != nil {
		s.logger.Error("Failed to read native balance ", "address ", address, " error ", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Failed to read native balance",
		})
		return
	}
	token, err := s.balances.TokenBalance(ctx, address)
	if err != nil {
		s.logger.Error("Failed to read token balance ", "address ", address, " error ", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Failed to read token balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"address":        address,
		"native_balance": native.String(),
		"token_balance":  token.String(),
	})
}

// masterWallet is a handler for the master wallet monitoring endpoint.
func (s *HTTPServer) masterWallet(c *gin.Context) {
	address, err := s.funder.MasterAddress()
	if err != nil {
		if errors.Is(err, chain.ErrMasterWalletNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Master wallet not configured",
			})
			return
		}
		s.logger.Error("Failed to resolve master wallet: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to resolve master wallet",
		})
		return
	}

	balance, err := s.balances.NativeBalance(c.Request.Context(), address)
	if err != nil {
		s.logger.Error("Failed to read master wallet balance: ", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Failed to read master wallet balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"address": address,
		"balance": balance.String(),
	})
}

// runRenewals triggers one scheduler tick outside the timer. The same
// reentrancy guard applies: a tick already in progress is not doubled.
func (s *HTTPServer) runRenewals(c *gin.Context) {
	summary, ran := s.scheduler.TryTick(c.Request.Context(), time.Now())
	if !ran {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "A renewal tick is already running",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
