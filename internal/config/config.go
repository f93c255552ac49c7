package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress               string        `validate:"required"`
	DatabaseURI              string        `validate:"required"`
	AuthSecret               string        `validate:"required"`
	AuthStrategy             string        `validate:"oneof=hmac jwt"`
	TokenTTL                 time.Duration `validate:"gt=0"`
	LogLevel                 string        `validate:"oneof=debug info warn error"`
	ConcurrencyRetryAttempts int           `validate:"gte=1,lte=10"`
	AuditVerifyInterval      time.Duration `validate:"gt=0"`
	AuditVerifyWindow        time.Duration `validate:"gt=0"`
	AuditVerifyBatch         int           `validate:"gt=0"`
	WorkerPoolSize           int           `validate:"gt=0"`
	ShutdownTimeout          time.Duration `validate:"gt=0"`
}

const (
	defaultRunAddress               = ":8080"
	defaultAuthSecret               = "change-me-in-production"
	defaultAuthStrategy             = "jwt"
	defaultTokenTTL                 = 24 * time.Hour
	defaultLogLevel                 = "info"
	defaultConcurrencyRetryAttempts = 2
	defaultAuditVerifyInterval      = time.Minute
	defaultAuditVerifyWindow        = time.Hour
	defaultAuditVerifyBatch         = 50
	defaultWorkerPoolSize           = 4
	defaultShutdownTimeout          = 10 * time.Second
)

var validate = validator.New()

// Load parses configuration from flags and environment variables. A .env
// file in the working directory fills in variables the environment leaves
// unset.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:               getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:              getString(lookup, "DATABASE_URI", ""),
		AuthSecret:               getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		AuthStrategy:             getString(lookup, "AUTH_STRATEGY", defaultAuthStrategy),
		TokenTTL:                 getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		LogLevel:                 getString(lookup, "LOG_LEVEL", defaultLogLevel),
		ConcurrencyRetryAttempts: getInt(lookup, "CONCURRENCY_RETRY_ATTEMPTS", defaultConcurrencyRetryAttempts),
		AuditVerifyInterval:      getDuration(lookup, "AUDIT_VERIFY_INTERVAL", defaultAuditVerifyInterval),
		AuditVerifyWindow:        getDuration(lookup, "AUDIT_VERIFY_WINDOW", defaultAuditVerifyWindow),
		AuditVerifyBatch:         getInt(lookup, "AUDIT_VERIFY_BATCH", defaultAuditVerifyBatch),
		WorkerPoolSize:           getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:          getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("procuremart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		verifyIntervalStr  = cfg.AuditVerifyInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.AuthStrategy, "auth-strategy", cfg.AuthStrategy, "Token strategy: hmac or jwt")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.ConcurrencyRetryAttempts, "retry-attempts", cfg.ConcurrencyRetryAttempts, "Attempts for optimistic concurrency writes")
	fs.StringVar(&verifyIntervalStr, "audit-interval", verifyIntervalStr, "Interval between audit replay runs")
	fs.IntVar(&cfg.AuditVerifyBatch, "audit-batch", cfg.AuditVerifyBatch, "Orders verified per audit replay run")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent audit workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.AuditVerifyInterval, err = time.ParseDuration(verifyIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid audit interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	cfg.AuthStrategy = strings.ToLower(cfg.AuthStrategy)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.ConcurrencyRetryAttempts <= 0 {
		cfg.ConcurrencyRetryAttempts = defaultConcurrencyRetryAttempts
	}
	if cfg.AuditVerifyInterval <= 0 {
		cfg.AuditVerifyInterval = defaultAuditVerifyInterval
	}
	if cfg.AuditVerifyWindow <= 0 {
		cfg.AuditVerifyWindow = defaultAuditVerifyWindow
	}
	if cfg.AuditVerifyBatch <= 0 {
		cfg.AuditVerifyBatch = defaultAuditVerifyBatch
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
