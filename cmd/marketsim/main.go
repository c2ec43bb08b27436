package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/chesadev/marketsim/internal/config"
	"github.com/chesadev/marketsim/internal/engine"
	"github.com/chesadev/marketsim/internal/handler"
	"github.com/chesadev/marketsim/internal/logging"
	"github.com/chesadev/marketsim/internal/service"
	"github.com/chesadev/marketsim/internal/store"
	"github.com/chesadev/marketsim/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("MARKETSIM_PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	// Open the datastore.
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open datastore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Graceful shutdown context: cancelling it stops both market loops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Market gate, primed from the persisted flag.
	gate := engine.NewMarketGate(db)
	if err := gate.Load(ctx); err != nil {
		logger.Error("failed to load market state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Price tick stream and the single price-write authority.
	hub := stream.NewHub(logger)
	authority := engine.NewPriceAuthority(db, hub)

	// Execution engine and the two background loops.
	executor := engine.NewExecutor(db, logger)
	formation := engine.NewFormationLoop(db, authority, cfg.FormationInterval(), logger)
	clearing := engine.NewClearingLoop(
		db, executor, gate, authority,
		cfg.CollectionWindow(), cfg.PassDelay(), cfg.ClosedBackoff(),
		logger,
	)
	formation.Start(ctx)
	clearing.Start(ctx)
	logger.Info("market loops started",
		slog.Duration("formation_interval", cfg.FormationInterval()),
		slog.Duration("collection_window", cfg.CollectionWindow()))

	// Services.
	accountSvc := service.NewAccountService(db)
	orderSvc := service.NewOrderService(db, gate, executor)
	stockSvc := service.NewStockService(db)
	marketSvc := service.NewMarketService(db, gate)
	newsSvc := service.NewNewsService(db)

	// Router.
	intakeLimiter := rate.NewLimiter(rate.Limit(cfg.Market.IntakeRatePerSec), cfg.Market.IntakeBurst)
	router := handler.NewRouter(accountSvc, orderSvc, stockSvc, marketSvc, newsSvc, hub, intakeLimiter, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Graceful shutdown: stop the HTTP server; the loops halt at their
	// next context check.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
