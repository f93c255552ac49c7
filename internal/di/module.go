package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/procuremart/internal/app"
	"github.com/polkiloo/procuremart/internal/config"
	"github.com/polkiloo/procuremart/internal/logger"
	"github.com/polkiloo/procuremart/internal/metrics"
	"github.com/polkiloo/procuremart/internal/pkg/auth"
	"github.com/polkiloo/procuremart/internal/server/http/router"
	"github.com/polkiloo/procuremart/internal/storage/postgres"
	"github.com/polkiloo/procuremart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		usecase.Module,
		router.Module,
		fx.Provide(func(s *postgres.Storage) router.HealthChecker { return s }),
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
