package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/slideconv/internal/clients"
	"github.com/pwnholic/slideconv/internal/config"
	"github.com/pwnholic/slideconv/internal/exports"
	"github.com/pwnholic/slideconv/internal/ledger"
	"github.com/pwnholic/slideconv/internal/logging"
	"github.com/pwnholic/slideconv/internal/metrics"
	"github.com/pwnholic/slideconv/internal/server"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config failed")
	}

	reg := ledger.New(cfg.StalenessThreshold)
	if err := reg.Start(cfg.SweepInterval); err != nil {
		log.Fatal().Err(err).Msg("sweeper failed to start")
	}
	defer reg.Stop()

	fetcher := clients.NewClientRequest(&clients.HTTPClientOptions{
		Timeout:   cfg.FetchTimeout,
		UserAgent: clients.RandomUserAgent(),
	})
	defer fetcher.Client.Close()

	exporter := exports.NewExporter(fetcher, reg, cfg.TempDir)

	e := server.New(&server.Handlers{
		Exporter: exporter,
		Scraper:  fetcher,
		Metrics:  metrics.NewRegistry(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return e.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
