// fleportd is the FlePort alerting daemon.
//
// It keeps the fleet entity store in memory, evaluates the rule set on every
// change and on a periodic sweep, and serves the alert, entity and settings API.
//
// Usage:
//
//	fleportd --seed config/seed.yaml --rules config/rules.yaml
//	FLEPORT_WEBHOOK_URL=https://hooks.example.com/fleet fleportd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sonaligoyal925/FlePort/internal/alerts"
	"github.com/sonaligoyal925/FlePort/internal/api"
	"github.com/sonaligoyal925/FlePort/internal/notifier"
	"github.com/sonaligoyal925/FlePort/internal/pipeline"
	"github.com/sonaligoyal925/FlePort/internal/rules"
	"github.com/sonaligoyal925/FlePort/internal/settings"
	"github.com/sonaligoyal925/FlePort/internal/store"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

var version = "dev"

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Setup logger
	level, err := zapcore.ParseLevel(cfg.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := logConfig.Build()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting FlePort",
		zap.String("version", version),
		zap.String("listen_address", cfg.listenAddr),
		zap.Duration("sweep_interval", cfg.sweepInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Daemon exited with error", zap.Error(err))
	}
}

// run wires the components and blocks until ctx is cancelled.
func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	st := store.New(nil)
	for _, path := range cfg.seedFiles {
		n, err := loadSeedFile(st, path)
		if err != nil {
			return err
		}
		logger.Info("Seed loaded", zap.String("file", path), zap.Int("entities", n))
	}

	ruleSet, err := loadRules(cfg.rulesFile)
	if err != nil {
		return err
	}
	logger.Info("Rule set loaded", zap.Int("rules", len(ruleSet)), zap.String("file", cfg.rulesFile))

	manager := alerts.NewManager(logger)
	engine := rules.NewEngine(logger, manager)
	settingsStore := settings.New(types.DefaultSettings(), logger)

	// Build notification dispatcher
	hub := api.NewHub(logger)
	dispatcherOpts := notifier.DefaultDispatcherOptions()
	dispatcherOpts.RateLimitPerMinute = cfg.rateLimit
	dispatcherOpts.Senders = append(dispatcherOpts.Senders, hub)

	var webhookSender *notifier.WebhookSender
	if cfg.webhookURL != "" {
		webhookSender, err = notifier.NewWebhookSender(logger, notifier.WebhookSenderConfig{
			URL:                cfg.webhookURL,
			Timeout:            cfg.webhookTimeout,
			InsecureSkipVerify: cfg.webhookInsec,
			MinPriority:        cfg.webhookMinPrio,
			AuthToken:          cfg.webhookToken,
			SigningSecret:      cfg.webhookSecret,
		})
		if err != nil {
			return fmt.Errorf("create webhook sender: %w", err)
		}
		dispatcherOpts.Senders = append(dispatcherOpts.Senders, webhookSender)
		logger.Info("Webhook sender configured", zap.String("url", notifier.RedactURL(cfg.webhookURL)))
	}

	var redisClient *redis.Client
	if cfg.redisAddr != "" {
		redisClient, err = notifier.NewRedisClient(ctx, cfg.redisAddr, cfg.redisPassword, cfg.redisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		dispatcherOpts.Senders = append(dispatcherOpts.Senders, notifier.NewRedisSender(redisClient, logger, notifier.RedisSenderConfig{
			ChannelPrefix: cfg.redisPrefix,
			MinPriority:   cfg.redisMinPrio,
		}))
		logger.Info("Redis sender configured", zap.String("address", cfg.redisAddr))
	}

	dispatcher := notifier.NewDispatcher(logger, dispatcherOpts)

	p := pipeline.New(st, engine, manager, settingsStore, dispatcher, ruleSet, logger,
		pipeline.Options{SweepInterval: cfg.sweepInterval})
	st.SetOnChange(p.OnStoreChange)
	settingsStore.SetOnChange(p.OnSettingsChange)

	senderNames := make([]string, 0, len(dispatcherOpts.Senders))
	for _, s := range dispatcherOpts.Senders {
		senderNames = append(senderNames, s.Name())
	}

	mux := http.NewServeMux()
	api.RegisterHandlers(mux, api.Deps{
		Store:      st,
		Manager:    manager,
		Settings:   settingsStore,
		Dispatcher: dispatcher,
		Hub:        hub,
		Options: api.CapabilitiesHandlerOptions{
			Rules:   ruleSet,
			Senders: senderNames,
			LastRun: p.LastRun,
		},
	}, logger)
	mux.Handle("/metrics", promhttp.Handler())

	dispatcher.Start(ctx)

	created := p.RunOnce(ctx)
	logger.Info("Initial evaluation finished", zap.Int("alerts", len(created)))

	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := p.Start(ctx); err != nil {
			logger.Error("Evaluation pipeline exited with error", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Serving API", zap.String("address", cfg.listenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serve %s: %w", cfg.listenAddr, err)
		}
	}

	logger.Info("Shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	<-pipelineDone

	// Wait for webhook sender to drain queued notifications.
	if webhookSender != nil {
		webhookSender.Close()
	}
	return runErr
}

func loadSeedFile(st *store.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	n, err := st.LoadSeed(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

func loadRules(path string) ([]types.Rule, error) {
	if path == "" {
		return rules.DefaultRules(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	ruleSet, err := rules.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ruleSet, nil
}
