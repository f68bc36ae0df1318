package fx

import (
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/cache"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/logger"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/server"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// api client
	fx.Provide(api.NewOpenF1Client),
	// svc
	fx.Provide(service.NewSessionService),
	fx.Provide(service.NewScheduleService),
	fx.Provide(service.NewQualifyingService),
	fx.Provide(service.NewTelemetryService),
	fx.Provide(service.NewPitService),
	// session cache
	fx.Provide(cache.NewSessionStore),
	// server
	fx.Provide(server.NewDashboardServer),
)
