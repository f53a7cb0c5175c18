package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"raumcheck/internal/config"
	"raumcheck/internal/finder"
	"raumcheck/internal/ics"
	"raumcheck/internal/snapshot"
	"raumcheck/internal/tz"
	"raumcheck/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	// Local .env overrides are a dev convenience; absence is fine.
	_ = godotenv.Load()

	flags := parseFlags()

	logger := newLogger(flags.debug)
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	log.Infow("raumcheck starting", "config_path", flags.configPath)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		log.Errorw("failed to load config", "config_path", flags.configPath, "err", err)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	norm, err := tz.NewNormalizer(conf.Timezone)
	if err != nil {
		log.Errorw("invalid timezone in config", "timezone", conf.Timezone, "err", err)
		os.Exit(1)
	}

	fetcher := ics.NewFetcher(conf.FeedBaseURL, ics.FetcherOptions{
		Timeout: conf.FetchTimeout(),
		Workers: conf.FetchConcurrency,
	}, log)

	var store snapshot.Store = snapshot.Disabled{}
	if conf.SnapshotPath != "" {
		fs, serr := snapshot.NewFileStore(conf.SnapshotPath)
		if serr != nil {
			log.Errorw("invalid snapshot path", "path", conf.SnapshotPath, "err", serr)
			os.Exit(1)
		}
		store = fs
	}

	fdr := finder.New(conf.CourseIDs, fetcher, store, norm, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		fdr.Refresh(ctx, time.Now())
		log.Info("single refresh done")
		return
	}

	// Background daily refresh so the first morning query hits a warm
	// snapshot instead of fanning out ~95 fetches.
	c := cron.New()
	if _, cerr := c.AddFunc(conf.RefreshCron, func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer refreshCancel()
		fdr.Refresh(refreshCtx, time.Now())
	}); cerr != nil {
		log.Errorw("invalid refresh cron expression", "cron", conf.RefreshCron, "err", cerr)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(fdr, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("http server listening", "listen", conf.Listen, "courses", len(conf.CourseIDs))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("http server failed", "err", err)
		os.Exit(1)
	}

	log.Info("raumcheck exiting")
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", envOr("RAUMCHECK_CONFIG", "/etc/raumcheck/config.yaml"), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one snapshot refresh and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Verbose development logging")

	flag.Parse()

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
