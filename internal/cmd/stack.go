package cmd

import (
	"fmt"
	"strconv"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/cache"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/logger"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/service"
	"github.com/rs/zerolog"
)

// stack bundles the wiring the one-shot commands need. The serve
// command wires the same components through fx instead.
type stack struct {
	logger     zerolog.Logger
	cfg        *config.Config
	store      *cache.SessionStore
	schedule   *service.ScheduleService
	qualifying *service.QualifyingService
	telemetry  *service.TelemetryService
	pits       *service.PitService
}

func buildStack() (*stack, error) {
	log := logger.New()
	cfg, err := config.Load(log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client := api.NewOpenF1Client(cfg, log)
	sessions := service.NewSessionService(client, log)

	return &stack{
		logger:     log,
		cfg:        cfg,
		store:      cache.NewSessionStore(sessions, cfg, log),
		schedule:   service.NewScheduleService(client, log),
		qualifying: service.NewQualifyingService(cfg, log),
		telemetry:  service.NewTelemetryService(client, log),
		pits:       service.NewPitService(client, log),
	}, nil
}

// parseKey turns a positional key argument into an int with a readable
// error naming what the key identifies.
func parseKey(arg, what string) (int, error) {
	key, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric, got %q", what, arg)
	}
	return key, nil
}

// warnIncomplete surfaces drivers whose tire data could not be fully
// resolved, so table output is read with the right amount of trust.
func warnIncomplete(log zerolog.Logger, assembled *domain.AssembledSession) {
	if flagged := assembled.IncompleteDrivers(); len(flagged) > 0 {
		log.Warn().Strs("drivers", flagged).Msg("tire data incomplete for some drivers")
	}
}
