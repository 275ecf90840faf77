package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/datastore"
	"github.com/batemapf/site-differ/internal/differ"
	"github.com/batemapf/site-differ/internal/fetcher"
	"github.com/batemapf/site-differ/internal/limiter"
	"github.com/batemapf/site-differ/internal/logger"
	"github.com/batemapf/site-differ/internal/models"
	"github.com/batemapf/site-differ/internal/monitor"
	"github.com/batemapf/site-differ/internal/normalizer"
	"github.com/batemapf/site-differ/internal/notifier"
	"github.com/batemapf/site-differ/internal/policy"
	"github.com/batemapf/site-differ/internal/urlhandler"
)

func main() {
	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load configuration: %v", err)
	}
	if flags.LogLevel != "" {
		gCfg.LogConfig.LogLevel = flags.LogLevel
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	if flags.URLsFile != "" {
		urls, err := urlhandler.ReadURLsFromFile(flags.URLsFile, zLogger)
		if err != nil {
			zLogger.Fatal().Err(err).Str("file", flags.URLsFile).Msg("Failed to load URL list file")
		}
		gCfg.URLs = make([]config.URLConfig, 0, len(urls))
		for _, u := range urls {
			gCfg.URLs = append(gCfg.URLs, config.URLConfig{URL: u})
		}
		zLogger.Info().Int("count", len(urls)).Str("file", flags.URLsFile).Msg("URL list overridden from file")
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	service, store, err := buildCheckService(gCfg, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer func() {
		if err := store.Close(); err != nil {
			zLogger.Error().Err(err).Msg("Failed to close state store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, shutting down")
		cancel()
	}()

	if flags.Interval > 0 {
		if err := monitor.NewScheduler(service, flags.Interval, zLogger).Run(ctx); err != nil {
			zLogger.Fatal().Err(err).Msg("Scheduler stopped with error")
		}
		zLogger.Info().Msg("Shutdown complete")
		return
	}

	digest, err := service.Run(ctx)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Check pass failed")
	}
	zLogger.Info().
		Int("checked", digest.Summary.Checked).
		Int("changed", digest.Summary.Changed).
		Int("failed", digest.Summary.Failed).
		Msg("Check pass complete")
}

// buildCheckService wires the full check pipeline from configuration. The
// returned store is handed back separately so main can close it on exit.
func buildCheckService(gCfg *config.GlobalConfig, zLogger zerolog.Logger) (*monitor.CheckService, models.StateStore, error) {
	contentFetcher, err := fetcher.NewFetcher(gCfg.FetcherConfig, gCfg.CheckConfig.UserAgent, zLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	contentNormalizer, err := normalizer.NewContentNormalizer(gCfg.NormalizerConfig, zLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize normalizer: %w", err)
	}

	webhookClient, err := fetcher.NewHTTPClient(fetcher.DefaultHTTPClientConfig(), zLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize webhook HTTP client: %w", err)
	}
	webhook, err := notifier.NewWebhookNotifier(gCfg.NotificationConfig, webhookClient, zLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize webhook notifier: %w", err)
	}

	store, err := datastore.NewSQLiteStateStore(gCfg.StorageConfig, zLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	checker := monitor.NewURLChecker(
		contentFetcher,
		contentNormalizer,
		differ.NewContentDiffer(gCfg.DiffConfig, zLogger),
		policy.NewEvaluator(gCfg.CheckConfig, zLogger),
		zLogger,
	)

	digestNotifier := notifier.NewMultiNotifier(zLogger,
		webhook,
		notifier.NewMarkdownReportNotifier(gCfg.NotificationConfig, zLogger),
	)

	guard := limiter.NewResourceGuard(gCfg.ResourceLimiterConfig, zLogger)

	return monitor.NewCheckService(gCfg, checker, store, digestNotifier, guard, zLogger), store, nil
}
