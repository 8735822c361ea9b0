package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		APIPort:                8080,
		PostgresUser:           "postgres",
		PostgresPassword:       "password",
		PostgresHost:           "localhost",
		PostgresPort:           5432,
		PostgresDB:             "pat3on",
		RPCURL:                 "http://localhost:8545",
		TokenAddress:           "0x1111111111111111111111111111111111111111",
		WalletEncryptionSecret: "secret",
		FundingAmount:          decimal.RequireFromString("0.001"),
		TickInterval:           time.Minute,
		LookaheadWindow:        5 * time.Minute,
		RenewalPeriod:          30 * 24 * time.Hour,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := map[string]func(*Config){
		"missing token address":     func(c *Config) { c.TokenAddress = "" },
		"malformed token address":   func(c *Config) { c.TokenAddress = "0x123" },
		"missing rpc url":           func(c *Config) { c.RPCURL = "" },
		"missing encryption secret": func(c *Config) { c.WalletEncryptionSecret = "" },
		"missing database name":     func(c *Config) { c.PostgresDB = "" },
		"missing database host":     func(c *Config) { c.PostgresHost = "" },
		"zero tick interval":        func(c *Config) { c.TickInterval = 0 },
		"negative lookahead":        func(c *Config) { c.LookaheadWindow = -time.Minute },
		"zero renewal period":       func(c *Config) { c.RenewalPeriod = 0 },
		"negative funding amount":   func(c *Config) { c.FundingAmount = decimal.RequireFromString("-1") },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TOKEN_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("WALLET_ENCRYPTION_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 60*time.Second, cfg.TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.LookaheadWindow)
	assert.Equal(t, 30*24*time.Hour, cfg.RenewalPeriod)
	assert.True(t, cfg.FundingAmount.Equal(decimal.RequireFromString("0.001")))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("WALLET_ENCRYPTION_KEY", "secret")
	t.Setenv("TICK_INTERVAL", "30s")
	t.Setenv("LOOKAHEAD_WINDOW", "2m")
	t.Setenv("RENEWAL_PERIOD", "168h")
	t.Setenv("FUNDING_AMOUNT", "0.05")
	t.Setenv("API_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 2*time.Minute, cfg.LookaheadWindow)
	assert.Equal(t, 168*time.Hour, cfg.RenewalPeriod)
	assert.True(t, cfg.FundingAmount.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 9090, cfg.APIPort)
}
