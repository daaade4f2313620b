package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	conf "pricefeed/internal/config"
	"pricefeed/internal/db"
	"pricefeed/internal/feedclient"
	"pricefeed/internal/logs"
	"pricefeed/internal/pipeline"
	"pricefeed/internal/server"
	"pricefeed/internal/syncer"
)

// override with: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	dir := flag.String("dir", defaultDataDir(), "data directory (config, logs, sqlite db)")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		panic(err)
	}

	log := logs.New(filepath.Join(*dir, "pricefeed.log"), true)
	log.Info().Str("version", ver).Msg("pricefeed starting")

	cfgPath := filepath.Join(*dir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	if firstRun {
		log.Info().Msgf("created default config: %s", cfgPath)
	}

	dbh, err := db.Open(*dir, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("DB open error")
	}
	if err := dbh.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("DB migrate error")
	}
	log.Info().Str("db", dbh.DSN).Msg("DB ready")
	sqlDB, _ := dbh.DB.DB()
	defer sqlDB.Close()

	store := db.NewStore(dbh.DB)
	client := feedclient.New(cfg.Feed.URL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
	pipe := pipeline.New(store, log, cfg.Feed.FallbackSupermarketID)
	s := syncer.New(log, cfg, client.Fetch, pipe)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Sync.Enabled {
		if err := s.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("syncer start error")
		}
	} else {
		log.Info().Msg("internal schedule disabled, runs happen on /api/cron only")
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(log, cfg.CronSecret, s).Handler(),
	}
	// a listen failure must still go through the orderly shutdown below,
	// so it is reported back here instead of killing the process in place
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-srvErr:
		log.Error().Err(err).Msg("HTTP server error, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	s.Stop()
	log.Info().Msg("bye")
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".pricefeed")
	}
	return "./data"
}
