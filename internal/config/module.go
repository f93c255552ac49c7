package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module loads configuration and reports the effective settings once the
// logger is available. Secrets and the database URI are never logged.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logEffective),
)

func logEffective(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("addr", cfg.RunAddress),
		slog.String("auth_strategy", cfg.AuthStrategy),
		slog.Duration("token_ttl", cfg.TokenTTL),
		slog.Int("retry_attempts", cfg.ConcurrencyRetryAttempts),
		slog.Duration("audit_interval", cfg.AuditVerifyInterval),
		slog.Duration("audit_window", cfg.AuditVerifyWindow),
		slog.Int("workers", cfg.WorkerPoolSize),
	)
}
