package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"arbscan/internal/config"
	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/market"
	"arbscan/internal/ledger"
	"arbscan/internal/server"
	"arbscan/pkg/application/modules"
	"arbscan/pkg/contextx"
	"arbscan/pkg/logx"
	"arbscan/pkg/middlewarex"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("application failed", logx.Error(err))
		os.Exit(1)
	}

	log.Info("application stopped")
}

func run(ctx context.Context, log *slog.Logger) error {
	ctx = contextx.WithLogger(ctx, log)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	assets := entity.DefaultAssets()
	exchanges := entity.DefaultExchanges()

	generator, err := market.NewGenerator(
		assets,
		exchanges,
		rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data
	)
	if err != nil {
		return fmt.Errorf("market.NewGenerator: %w", err)
	}

	// The ledger is owned here and handed to the server; nothing else in
	// the process can reach it as a global.
	dealLedger := ledger.New(exchanges)

	srv := server.NewServer(
		server.NewScannerServer(generator, cfg.Market.BatchSize),
		server.NewDashboardServer(dealLedger),
		server.NewDealServer(dealLedger),
		server.NewStreamServer(assets, exchanges, cfg.Market.UpdatePeriod),
	)

	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
	)
	srv.RegisterRoutes(router)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(ctx, g)
	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsListenAddress}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
