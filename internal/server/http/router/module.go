package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/procuremart/internal/app"
	"github.com/polkiloo/procuremart/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		Setup,
		func(f *app.ProcurementFacade) handlers.ProcurementFacade { return f },
	),
)
