// Command client keeps a live working set of opportunities against a
// running scanner server: one full query over HTTP, then incremental price
// patches over the websocket feed.
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
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"arbscan/internal/client"
	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/internal/reconcile"
	"arbscan/pkg/contextx"
	"arbscan/pkg/httpx"
	"arbscan/pkg/logx"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "scanner server base URL")
	feedURL := flag.String("feed", "ws://localhost:8080/ws", "websocket feed URL")
	minProfit := flag.Float64("min-profit", 0.5, "minimum profit bound, 0 disables")
	minVolume := flag.Float64("min-volume", 30, "minimum volume bound, 0 disables")
	period := flag.Int("period", 5, "update period in seconds")
	verbose := flag.Bool("v", false, "log every HTTP exchange")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	if err := run(ctx, log, options{
		serverURL: *serverURL,
		feedURL:   *feedURL,
		minProfit: *minProfit,
		minVolume: *minVolume,
		period:    *period,
		verbose:   *verbose,
	}); err != nil {
		log.Error("client failed", logx.Error(err))
		os.Exit(1)
	}

	log.Info("client stopped")
}

type options struct {
	serverURL string
	feedURL   string
	minProfit float64
	minVolume float64
	period    int
	verbose   bool
}

func run(ctx context.Context, log *slog.Logger, opts options) error {
	ctx = contextx.WithLogger(ctx, log)

	httpClient := http.DefaultClient
	if opts.verbose {
		httpClient = &http.Client{
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport),
		}
	}

	api := client.NewAPI(opts.serverURL, httpClient)

	store := reconcile.NewStore(api, ledgerAdapter{api: api})
	store.Configure(1, 50, scanner.FilterSpec{
		MinProfit: opts.minProfit,
		MinVolume: opts.minVolume,
	}, scanner.DefaultSort())

	if err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("store.Refresh: %w", err)
	}

	// Session snapshot: later balance reads display only the delta against
	// this starting point.
	session := reconcile.NewSession()

	balances, err := api.Balances(ctx)
	if err != nil {
		return fmt.Errorf("api.Balances: %w", err)
	}
	session.Init(balances)

	feed, err := client.DialFeed(ctx, opts.feedURL)
	if err != nil {
		return fmt.Errorf("client.DialFeed: %w", err)
	}
	defer feed.Close()

	if err := feed.SetUpdatePeriod(opts.period); err != nil {
		return fmt.Errorf("feed.SetUpdatePeriod: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feed.Listen(ctx, store)
	})

	g.Go(func() error {
		return report(ctx, log, api, store, session)
	})

	log.Info("client started",
		slog.String("server", opts.serverURL),
		slog.Int("period", opts.period),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

// report prints the working set and the session balance deltas every 10s.
func report(
	ctx context.Context,
	log *slog.Logger,
	api client.API,
	store *reconcile.Store,
	session *reconcile.Session,
) error {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			opportunities, summary := store.Snapshot()

			log.Info("working set",
				slog.Int("opportunities", len(opportunities)),
				slog.Float64("avgSpread", summary.AvgSpread),
				slog.Float64("totalVolume", summary.TotalVolume),
				slog.Bool("refetchPending", store.RefetchPending()),
			)

			balances, err := api.Balances(ctx)
			if err != nil {
				log.Warn("api.Balances", logx.Error(err))
				continue
			}

			for exchange, currencies := range session.Deltas(balances) {
				for currency, delta := range currencies {
					if delta != 0 {
						log.Info("balance delta",
							slog.String("exchange", exchange),
							slog.String("currency", currency),
							slog.Float64("delta", delta),
						)
					}
				}
			}
		}
	}
}

// ledgerAdapter narrows the API to the acknowledgement the store needs.
type ledgerAdapter struct {
	api client.API
}

func (a ledgerAdapter) Submit(ctx context.Context, deal entity.Deal) (bool, error) {
	return a.api.Submit(ctx, deal)
}
