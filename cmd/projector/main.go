package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"

	"projector/internal/api"
	"projector/internal/chain"
	"projector/internal/config"
	"projector/internal/projection"
	"projector/internal/resolver"
	"projector/internal/retry"
	"projector/internal/storage"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Configure logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"chain_id", cfg.ChainID,
		"start_block", cfg.StartBlock,
		"log_level", cfg.LogLevel,
	)

	// 3. Initialize database connection
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repository, err := storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repository.Close()
	slog.Info("Database connected successfully")

	// 4. Connect to the EVM node
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		log.Fatalf("Failed to connect to RPC node: %v", err)
	}
	defer eth.Close()

	// 5. Build the resolver over the chain client
	strategy := retry.NewStrategy(retry.Config{
		Enabled:      cfg.RetryEnabled,
		MaxRetries:   cfg.RetryMaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
		MaxDelay:     cfg.RetryMaxDelay,
	})
	nft := chain.NewAlchemyNFT(cfg.AlchemyAPIKey)
	source := chain.NewClient(eth, nft, strategy)
	aux := resolver.NewCaching(source)

	// 6. Wire the projection router and the polling pipeline
	router := projection.NewRouter(repository, aux, chain.DAOTokenContract)
	book := chain.NewAddressBook()
	decoder := chain.NewDecoder(book, cfg.ChainID)
	poller := chain.NewPoller(eth, decoder, book, router, strategy, chain.PollerConfig{
		StartBlock:    cfg.StartBlock,
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		Confirmations: cfg.Confirmations,
	})

	// 7. Start the API server
	server := api.NewServer(cfg.APIPort, repository)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	// 8. Run until interrupted or the poller fails
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- poller.Run(ctx)
	}()

	select {
	case <-sigChan:
		slog.Warn("Interrupt received, shutting down...")
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			slog.Error("Poller error", "error", err)
			repository.Close()
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down API server", "error", err)
	}

	slog.Info("Projector stopped")
}
