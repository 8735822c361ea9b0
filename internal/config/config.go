package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rajat-gondkar/pat3on/pkg/validation"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Chain configuration
	RPCURL       string
	TokenAddress string
	// MasterWalletKey funds new wallets with gas. Optional: without it the
	// service runs, but new wallets start unfunded.
	MasterWalletKey string
	// WalletEncryptionSecret protects every custodial private key at rest.
	// Losing it makes the funds unrecoverable; leaking it is wallet takeover.
	WalletEncryptionSecret string
	// FundingAmount is the gas-token grant for each new wallet.
	FundingAmount decimal.Decimal

	// Scheduler configuration
	TickInterval    time.Duration
	LookaheadWindow time.Duration
	RenewalPeriod   time.Duration

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	// Notification configuration
	TelegramBotToken string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:            getEnvAsBool("DEVELOPMENT", false),
		APIPort:                getEnvAsInt("API_PORT", 8080),
		PostgresUser:           getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:             getEnv("POSTGRES_DB", "pat3on"),
		RPCURL:                 getEnv("RPC_URL", "http://localhost:8545"),
		TokenAddress:           getEnv("TOKEN_ADDRESS", ""),
		MasterWalletKey:        getEnv("MASTER_WALLET_PRIVATE_KEY", ""),
		WalletEncryptionSecret: getEnv("WALLET_ENCRYPTION_KEY", ""),
		FundingAmount:          getEnvAsDecimal("FUNDING_AMOUNT", decimal.RequireFromString("0.001")),
		TickInterval:           getEnvAsDuration("TICK_INTERVAL", 60*time.Second),
		LookaheadWindow:        getEnvAsDuration("LOOKAHEAD_WINDOW", 5*time.Minute),
		RenewalPeriod:          getEnvAsDuration("RENEWAL_PERIOD", 30*24*time.Hour),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPSender:             getEnv("SMTP_SENDER", ""),
		TelegramBotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.TokenAddress == "" {
		return fmt.Errorf("TOKEN_ADDRESS is required")
	}
	if err := validation.ValidateAddress(c.TokenAddress); err != nil {
		return fmt.Errorf("invalid TOKEN_ADDRESS: %w", err)
	}

	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}

	if c.WalletEncryptionSecret == "" {
		return fmt.Errorf("WALLET_ENCRYPTION_KEY is required")
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive")
	}

	if c.LookaheadWindow <= 0 {
		return fmt.Errorf("LOOKAHEAD_WINDOW must be positive")
	}

	if c.RenewalPeriod <= 0 {
		return fmt.Errorf("RENEWAL_PERIOD must be positive")
	}

	if c.FundingAmount.IsNegative() {
		return fmt.Errorf("FUNDING_AMOUNT cannot be negative")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDecimal(name string, defaultValue decimal.Decimal) decimal.Decimal {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := decimal.NewFromString(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
