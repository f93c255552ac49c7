package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/procuremart/internal/config"
	"github.com/polkiloo/procuremart/internal/metrics"
	"github.com/polkiloo/procuremart/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewProcurementFacade,
		newHTTPServer,
		newAuditVerifier,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade  *ProcurementFacade
	Config  *config.Config
	Metrics *metrics.Procurement
	Logger  *slog.Logger
}

func newAuditVerifier(p workerParams) *worker.AuditVerifier {
	return worker.NewAuditVerifier(
		p.Facade,
		worker.Options{
			Interval: p.Config.AuditVerifyInterval,
			Window:   p.Config.AuditVerifyWindow,
			Batch:    p.Config.AuditVerifyBatch,
			Workers:  p.Config.WorkerPoolSize,
		},
		p.Metrics,
		p.Logger.With(slog.String("component", "audit_verifier")),
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Verifier   *worker.AuditVerifier
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting procuremart", slog.String("addr", p.Server.Addr))
			p.Verifier.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Verifier.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("procuremart stopped")
			return nil
		},
	})
}
