package main

import (
	"coin-chat/infrastructure/http/server"
	"coin-chat/internal"
	"coin-chat/moderation"
	"coin-chat/observability"
	"coin-chat/repositories"
	"coin-chat/runtime"
	"coin-chat/runtime/workers"
	"coin-chat/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and serves until SIGINT or SIGTERM.
// Deferred closes run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories
	userRepository := repositories.NewUserRepository(db)
	ledgerRepository := repositories.NewLedgerRepository(db, logger)
	coinRepository := repositories.NewCoinRepository(db, blugeWriter, logger)
	chatRepository, err := repositories.NewChatRepository(db, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = chatRepository.Close()
	}()

	if err = loadCoins(config, coinRepository, logger); err != nil {
		return exitConfig, err
	}

	// 4. Relay
	moderator, err := moderation.NewModerator(config.CensoredWordList(), charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation dictionary: %w", err)
	}
	registry := runtime.NewRegistry(logger)
	monitoring := observability.NewMonitoringManager(logger)
	paymentService := services.NewPaymentService(userRepository, coinRepository, ledgerRepository, logger)
	dispatcher := runtime.NewDispatcher(registry, chatRepository, paymentService, moderator, monitoring, logger)

	// 5. Background workers
	sampler, err := workers.SelfSampler()
	if err != nil {
		return exitRuntime, fmt.Errorf("process sampler: %w", err)
	}
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHealthWorker(logger, registry, monitoring, sampler, config.MetricInterval),
		workers.NewValueLogGCWorker(db, logger, config.GCInterval),
	)
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. HTTP Server
	handler := server.NewHandler(
		services.NewAccountService(userRepository),
		services.NewWalletService(userRepository, coinRepository, ledgerRepository, logger),
		services.NewChatService(chatRepository),
		coinRepository,
		dispatcher,
		monitoring,
		server.SocketOptions{
			WriteTimeout: config.SocketWriteTimeout,
			ReadLimit:    config.SocketReadLimit,
			AllowOrigin:  allowOrigin(config.CheckOrigin),
		},
		logger,
	)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.NewRouter(handler, logger),
		// Socket loops end with the process context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		stop()
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	registry.Close()
	sup.Stop()
	<-supervisorDone

	if runErr != nil {
		return exitRuntime, runErr
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// loadCoins upserts the catalog file when configured, then rebuilds the
// search index from Badger so that both agree.
func loadCoins(config internal.Config, coins *repositories.CoinRepository, logger *slog.Logger) error {
	if config.CoinCatalogFile != "" {
		catalog, err := internal.LoadCatalog(config.CoinCatalogFile)
		if err != nil {
			return err
		}
		for _, coin := range catalog {
			if err = coins.PutCoin(coin); err != nil {
				return fmt.Errorf("store coin %d: %w", coin.ID, err)
			}
		}
		logger.Info("Coin catalog loaded", "file", config.CoinCatalogFile, "coins", len(catalog))
	}
	indexed, err := coins.Reindex()
	if err != nil {
		return fmt.Errorf("coin index rebuild: %w", err)
	}
	logger.Info("Coin index ready", "coins", indexed)
	return nil
}

// allowOrigin returns nil to keep gorilla's same-origin check, or a function
// accepting every origin.
func allowOrigin(check bool) func(r *http.Request) bool {
	if check {
		return nil
	}
	return func(*http.Request) bool { return true }
}
