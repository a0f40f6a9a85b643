// ====================================
// File: cmd/launchpadd/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rabbit-labs/launchpad/internal/api"
	"github.com/rabbit-labs/launchpad/internal/config"
	"github.com/rabbit-labs/launchpad/internal/engine"
	"github.com/rabbit-labs/launchpad/internal/events"
	"github.com/rabbit-labs/launchpad/internal/guard"
	"github.com/rabbit-labs/launchpad/internal/ledger"
	"github.com/rabbit-labs/launchpad/internal/logger"
	"github.com/rabbit-labs/launchpad/internal/metrics"
	"github.com/rabbit-labs/launchpad/internal/storage"
	"github.com/rabbit-labs/launchpad/internal/storage/postgres"
)

const shutdownGrace = 15 * time.Second

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "launchpadd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting launchpad",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Uint64("platform_fee_bp", cfg.PlatformFeeBp),
		zap.Uint64("creator_fee_bp", cfg.CreatorFeeBp))

	bus := events.NewBus(log.Logger, cfg.EventBufferSize)

	g, err := guard.New(guard.Config{
		Owner:             cfg.Owner,
		Treasury:          cfg.Treasury,
		EmergencyCooldown: cfg.EmergencyCooldown(),
		TreasuryDelay:     cfg.TreasuryDelay(),
		Publish:           func(e events.Event) { _ = bus.Publish(e) },
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("init guard: %w", err)
	}

	eng, err := engine.New(engine.Params{
		PlatformFeeBp:   cfg.PlatformFeeBp,
		CreatorFeeBp:    cfg.CreatorFeeBp,
		CreateFee:       config.MustAmount(cfg.CreateFee),
		RaiseTarget:     config.MustAmount(cfg.RaiseTarget),
		MaxCurveSupply:  config.MustAmount(cfg.MaxCurveSupply),
		VenueAllocation: config.MustAmount(cfg.VenueAllocation),
		Venue:           cfg.Venue,
		InitialPrice:    config.MustAmount(cfg.InitialPrice),
		Slope:           config.MustAmount(cfg.Slope),
	}, ledger.NewRegistry(log.Logger), ledger.NewBook(), g, bus, log.Logger)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	// Trade history is optional: without a database the engine still runs,
	// it just keeps no durable audit trail.
	if cfg.PostgresURL != "" {
		store, err := postgres.NewStorage(cfg.PostgresURL, log.Logger)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		recorder := storage.NewRecorder(store, log.Logger)
		recorder.Attach(bus)
		defer recorder.Detach()
	} else {
		log.Warn("No postgres_url configured, trade history is disabled")
	}

	m := metrics.New(bus)
	defer m.Detach()

	server := api.NewServer(eng, m, log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start(cfg.ListenAddr)
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
		return bus.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Info("Launchpad stopped")
	return nil
}
