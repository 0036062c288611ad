package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"perpdash/config"
	"perpdash/internal/metrics"
	"perpdash/internal/server"
	"perpdash/internal/service"
	"perpdash/internal/symbols"
	"perpdash/internal/venue"
	"perpdash/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", config.DefaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Perpdash.Name,
		"version": cfg.Perpdash.Version,
	}).Info("starting perpdash")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Logging.CloudWatchRegion != "" {
		logger.InitCloudWatch(cfg.Logging.CloudWatchRegion, cfg.Logging.CloudWatchNamespace, "")
		logger.CreateDefaultDashboard(ctx)
	}
	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	client := venue.NewClient(venue.Options{
		DataBaseURL:    cfg.Venue.DataBaseURL,
		GatewayBaseURL: cfg.Venue.GatewayBaseURL,
		UserAgent:      cfg.Venue.UserAgent,
		Timeout:        cfg.Venue.Timeout,
		RequestsPerSec: float64(cfg.Venue.RateLimit.RequestsPerSecond),
		Burst:          cfg.Venue.RateLimit.BurstSize,
		PageLimit:      cfg.Venue.PageLimit,
	})

	mapper := symbols.NewMapper(client.Symbols, cfg.Cache.SymbolsTTL, log.WithComponent("symbols"))

	svc := service.New(client, mapper, service.Options{
		MaxPages:  cfg.Venue.MaxPages,
		VolumeTTL: cfg.Cache.VolumeTTL,
		PricesTTL: cfg.Cache.PricesTTL,
		Roster:    cfg.Leaderboard.Accounts,
	})

	srv := server.New(cfg.Server, svc, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
		cancel()
		if err := <-errCh; err != nil {
			log.WithError(err).Warn("server shutdown with error")
		}
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}

	log.Info("perpdash stopped")
}
