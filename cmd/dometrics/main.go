package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/config"
	"github.com/Aliserag/Dometrics-sub001/internal/logger"
	"github.com/Aliserag/Dometrics-sub001/internal/registry"
	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
	"github.com/Aliserag/Dometrics-sub001/internal/storage"
	"github.com/Aliserag/Dometrics-sub001/internal/telegram"
	"github.com/Aliserag/Dometrics-sub001/internal/tracker"
	"github.com/Aliserag/Dometrics-sub001/internal/valuation"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(
		cfg.Storage.MaxDomains,
		cfg.Storage.DBPath,
	)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	weights, err := config.LoadWeights(cfg.Scoring.WeightsPath)
	if err != nil {
		logger.Fatal("Failed to load scoring weights: %v", err)
	}
	engine, err := scoring.New(weights)
	if err != nil {
		logger.Fatal("Invalid scoring weights: %v", err)
	}
	if cfg.Scoring.WeightsPath != "" {
		logger.Info("Scoring weights loaded from %s", cfg.Scoring.WeightsPath)
	} else {
		logger.Debug("Using built-in default scoring weights")
	}

	registryClient := registry.NewClient(
		cfg.Registry.APIURL,
		cfg.Registry.Timeout,
		registry.ClientConfig{
			MaxRetries:     cfg.Registry.MaxRetries,
			RetryDelayBase: cfg.Registry.RetryDelayBase,
		},
	)

	var valuer scoring.Valuer
	if cfg.Valuation.Enabled {
		valuer = valuation.NewClient(cfg.Valuation.APIURL, cfg.Valuation.Timeout)
		logger.Info("External valuation service enabled")
	} else {
		logger.Debug("External valuation disabled, using deterministic estimator only")
	}

	trackerConfig := tracker.Config{
		OfferDelta:         cfg.Tracker.OfferDelta,
		TopK:               cfg.Tracker.TopK,
		CooldownMultiplier: cfg.Tracker.CooldownMultiplier,
		CheckpointInterval: cfg.Tracker.CheckpointInterval,
		Concurrency:        cfg.Tracker.Concurrency,
	}
	trk := tracker.New(store, engine, valuer, trackerConfig)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		trk.Shutdown()
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	logger.Info("Starting tracking service (interval: %v, offer_delta: %d, top_k: %d)",
		cfg.Registry.PollInterval,
		cfg.Tracker.OfferDelta,
		cfg.Tracker.TopK,
	)

	ticker := time.NewTicker(cfg.Registry.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Polling cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial polling cycle")
	handleCycleResult(runPollingCycle(ctx, registryClient, trk, store, telegramClient, cfg))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled polling cycle")
			handleCycleResult(runPollingCycle(ctx, registryClient, trk, store, telegramClient, cfg))
			if err := store.RotateDomains(); err != nil {
				logger.Warn("Failed to rotate tracked domains: %v", err)
			}
		}
	}
}

func runPollingCycle(
	ctx context.Context,
	registryClient *registry.Client,
	trk *tracker.Tracker,
	store *storage.Storage,
	telegramClient *telegram.Client,
	cfg *config.Config,
) error {
	startTime := time.Now()
	logger.Info("Starting polling cycle")

	logger.Debug("Fetching domains from registry (tlds: %v, limit: %d)", cfg.Registry.TLDs, cfg.Registry.Limit)
	domains, err := registryClient.FetchDomains(ctx, cfg.Registry.TLDs, cfg.Registry.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch domains: %w", err)
	}
	logger.Info("Fetched %d tokenized domains", len(domains))

	alerts := trk.ProcessPoll(ctx, domains)
	logger.Info("Detected %d offer alerts", len(alerts))

	for i := range alerts {
		if err := store.AddAlert(&alerts[i]); err != nil {
			logger.Warn("Failed to store alert for %s: %v", alerts[i].TokenID, err)
		}
	}

	groups := trk.PostProcessAlerts(alerts, cfg.Registry.PollInterval)

	if len(groups) > 0 {
		totalDomains := 0
		for _, g := range groups {
			totalDomains += len(g.Domains)
		}
		logger.Info("Post-processed alerts: %d TLD groups (%d domains)", len(groups), totalDomains)

		if cfg.Telegram.Enabled && telegramClient != nil {
			logger.Debug("Sending top %d alert groups to Telegram", len(groups))
			if err := telegramClient.Send(groups); err != nil {
				logger.Error("Failed to send Telegram notification: %v", err)
			} else {
				logger.Info("Sent Telegram notification with top %d alert groups", len(groups))
				trk.RecordNotified(groups)
			}
		} else {
			logger.Debug("Alerts detected but Telegram notifications disabled or client not initialized")
		}
	} else {
		logger.Info("No alerts above quality bar this cycle")
	}

	duration := time.Since(startTime)
	logger.Info("Polling cycle completed in %v", duration)

	return nil
}
