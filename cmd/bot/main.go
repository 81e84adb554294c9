package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/blockfish/bot"
	"github.com/domino14/blockfish/cache"
	"github.com/domino14/blockfish/config"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	cfg.SetupLogging(os.Stderr)
	log.Info().Interface("config", cfg.SanitizedSettings()).Str("exPath", exPath).Msg("loaded-config")

	table, err := cache.ShapeTable(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading-shapetable")
	}
	b, err := bot.NewBot(cfg, table)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.GetString(config.ConfigMetricsAddr), Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("metrics-listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return bot.Main(gctx, cfg.GetString(config.ConfigBotChannel), b)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("got quit signal...")
		sctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("bot-exited")
		os.Exit(1)
	}
	log.Info().Msg("server gracefully shutting down")
}
