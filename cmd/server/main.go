package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cricledger/auction-backend/internal/adapter/httpapi"
	"github.com/cricledger/auction-backend/internal/adapter/repository/memory"
	"github.com/cricledger/auction-backend/internal/adapter/repository/postgres"
	"github.com/cricledger/auction-backend/internal/auth"
	"github.com/cricledger/auction-backend/internal/config"
	"github.com/cricledger/auction-backend/internal/domain"
	"github.com/cricledger/auction-backend/internal/logging"
	"github.com/cricledger/auction-backend/internal/metrics"
	"github.com/cricledger/auction-backend/internal/usecase/auction"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Debug)

	// 1. Team ledger
	ledger, cleanup, err := buildLedger(cfg, logger)
	if err != nil {
		logger.Error("failed to set up team ledger", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 2. Authentication
	tokens := auth.NewTokenRegistry()
	tokens.Register(cfg.AdminToken, domain.RoleAdmin)
	for _, token := range cfg.UserTokens {
		tokens.Register(token, domain.RoleUser)
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder := metrics.NewRecorder(registry)

	// 4. Auction engine and HTTP adapter
	engine := auction.NewService(ledger, auth.RoleGate{}, logger, recorder)
	apiServer := httpapi.NewServer(engine, ledger, tokens, logger)

	router := apiServer.Router()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Info("auction server listening", "addr", cfg.ListenAddr, "ledger", cfg.LedgerBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(srv, logger, cfg)
}

// buildLedger selects the ledger backend. Postgres is the default; the
// in-memory ledger supports database-less local runs.
func buildLedger(cfg *config.Config, logger *slog.Logger) (domain.TeamLedger, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerMemory:
		logger.Warn("using in-memory team ledger; commitments will not survive restarts")
		return memory.NewTeamLedger(), func() {}, nil
	case config.LedgerPostgres:
		db, err := postgres.NewDB(cfg.DBConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewTeamLedger(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(srv *http.Server, logger *slog.Logger, cfg *config.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("received signal, shutting down gracefully", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
		return
	}
	logger.Info("http server stopped")
}
