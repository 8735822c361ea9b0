package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/rajat-gondkar/pat3on/internal/chain"
	"github.com/rajat-gondkar/pat3on/internal/config"
	"github.com/rajat-gondkar/pat3on/internal/http_api"
	"github.com/rajat-gondkar/pat3on/internal/notifier"
	"github.com/rajat-gondkar/pat3on/internal/renewal"
	"github.com/rajat-gondkar/pat3on/internal/repository"
	"github.com/rajat-gondkar/pat3on/internal/wallet"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "pat3on",
		Usage: "Pat3on custodial wallet and subscription renewal service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "Blockchain RPC endpoint URL"},
			&cli.StringFlag{Name: "token-address", Aliases: []string{"a"}, Usage: "Payment token contract address"},
			&cli.StringFlag{Name: "funding-amount", Aliases: []string{"f"}, Usage: "Gas-token amount granted to new wallets"},
			&cli.DurationFlag{Name: "tick-interval", Aliases: []string{"i"}, Usage: "Renewal scheduler tick interval"},
			&cli.DurationFlag{Name: "lookahead-window", Aliases: []string{"w"}, Usage: "Renewal selection lookahead window"},
			&cli.DurationFlag{Name: "renewal-period", Aliases: []string{"n"}, Usage: "Subscription period granted per renewal"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		stdlog.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("token-address") {
		cfg.TokenAddress = c.String("token-address")
	}
	if c.IsSet("funding-amount") {
		amount, err := decimal.NewFromString(c.String("funding-amount"))
		if err == nil {
			cfg.FundingAmount = amount
		}
	}
	if c.IsSet("tick-interval") {
		cfg.TickInterval = c.Duration("tick-interval")
	}
	if c.IsSet("lookahead-window") {
		cfg.LookaheadWindow = c.Duration("lookahead-window")
	}
	if c.IsSet("renewal-period") {
		cfg.RenewalPeriod = c.Duration("renewal-period")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgres(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Initialize chain client
	client, err := chain.Dial(cfg.RPCURL, cfg.TokenAddress, log)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain node: %v", err)
	}
	defer client.Close()

	// Initialize wallet vault
	vault, err := wallet.NewVault(cfg.WalletEncryptionSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet vault: %v", err)
	}

	funder, err := chain.NewFunder(client, cfg.MasterWalletKey, cfg.FundingAmount, log)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet funder: %v", err)
	}
	oracle := chain.NewOracle(client)
	executor := chain.NewExecutor(vault, client, log)

	// Initialize notification channels; each is optional
	var telegram *notifier.TelegramNotifier
	if cfg.TelegramBotToken != "" {
		telegram, err = notifier.NewTelegramNotifier(log, cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notifier: %v", err)
		}
	}
	var email *notifier.EmailNotifier
	if cfg.SMTPHost != "" {
		email = notifier.NewEmailNotifier(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notifications := notifier.NewService(db, log, telegram, email)

	// Create scheduler instance
	scheduler := renewal.NewScheduler(db, oracle, executor, notifications, log,
		cfg.TickInterval, cfg.LookaheadWindow, cfg.RenewalPeriod)

	// Initialize API server
	apiServer := http_api.NewHTTPServer(db, vault, funder, oracle, scheduler, cfg.APIPort, log)
	go apiServer.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the scheduler; blocks until shutdown is requested
	scheduler.Start(ctx)

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down HTTP server: ", err)
	}

	return nil
}
