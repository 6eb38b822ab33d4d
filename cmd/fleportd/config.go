package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sonaligoyal925/FlePort/internal/util"
)

// envPrefix prefixes every flag's environment override: --webhook-url reads FLEPORT_WEBHOOK_URL.
const envPrefix = "FLEPORT_"

type config struct {
	listenAddr     string
	seedFiles      []string
	rulesFile      string
	sweepInterval  time.Duration
	rateLimit      int
	webhookURL     string
	webhookTimeout time.Duration
	webhookInsec   bool
	webhookMinPrio string
	webhookToken   string
	webhookSecret  string
	redisAddr      string
	redisPassword  string
	redisDB        int
	redisPrefix    string
	redisMinPrio   string
	logLevel       string
}

// parseConfig registers the daemon flags on fs, parses args and applies environment
// overrides for every flag not set on the command line.
func parseConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (config, error) {
	var (
		cfg       config
		seedFiles string
	)
	fs.StringVar(&cfg.listenAddr, "listen-address", ":8080", "The address the API, health and metrics endpoints bind to.")
	fs.StringVar(&seedFiles, "seed", "", "Comma-separated list of YAML/JSON seed files loaded into the entity store at startup.")
	fs.StringVar(&cfg.rulesFile, "rules", "", "YAML rule set file. Built-in rules are used when empty.")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", time.Minute, "How often every entity is re-evaluated.")
	fs.IntVar(&cfg.rateLimit, "notify-rate-limit", 30, "Maximum notifications per entity per minute.")
	fs.StringVar(&cfg.webhookURL, "webhook-url", "", "URL for generic webhook notifications (HTTP POST).")
	fs.DurationVar(&cfg.webhookTimeout, "webhook-timeout", 10*time.Second, "Webhook HTTP request timeout.")
	fs.BoolVar(&cfg.webhookInsec, "webhook-insecure-skip-verify", false, "Disable TLS certificate verification for webhook (insecure).")
	fs.StringVar(&cfg.webhookMinPrio, "webhook-min-priority", "medium", "Minimum priority for webhook notifications (critical, high, medium, low).")
	fs.StringVar(&cfg.webhookToken, "webhook-auth-token", "", "Bearer token for webhook Authorization header.")
	fs.StringVar(&cfg.webhookSecret, "webhook-signing-secret", "", "HMAC secret for the X-FlePort-Signature webhook header.")
	fs.StringVar(&cfg.redisAddr, "redis-address", "", "Redis address for publishing notifications. Disabled when empty.")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "Redis password.")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "Redis database number.")
	fs.StringVar(&cfg.redisPrefix, "redis-channel-prefix", "fleet:alerts:", "Prefix of the per-category Redis channels.")
	fs.StringVar(&cfg.redisMinPrio, "redis-min-priority", "low", "Minimum priority for Redis notifications.")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if err := applyEnv(fs, getenv); err != nil {
		return config{}, err
	}
	cfg.seedFiles = util.Unique(util.SplitCSV(seedFiles))
	if cfg.sweepInterval <= 0 {
		return config{}, fmt.Errorf("sweep-interval must be positive, got %s", cfg.sweepInterval)
	}
	return cfg, nil
}

// applyEnv sets each flag not given on the command line from FLEPORT_<NAME>.
func applyEnv(fs *flag.FlagSet, getenv func(string) string) error {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || explicit[f.Name] {
			return
		}
		v := getenv(envName(f.Name))
		if v == "" {
			return
		}
		if setErr := fs.Set(f.Name, v); setErr != nil {
			err = fmt.Errorf("%s: %w", envName(f.Name), setErr)
		}
	})
	return err
}

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// loadDotEnv loads .env from the working directory when present.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}
