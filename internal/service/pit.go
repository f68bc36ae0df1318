package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type PitService struct {
	openf1 *api.OpenF1Client
	logger zerolog.Logger
}

func NewPitService(openf1 *api.OpenF1Client, logger zerolog.Logger) *PitService {
	return &PitService{openf1: openf1, logger: logger}
}

// Summary aggregates the session's pit stops per driver: stop count,
// the laps they stopped on, and the mean pit lane duration over stops
// that carried one. A session without recorded stops yields an empty
// summary, not an error.
func (s *PitService) Summary(ctx context.Context, sessionKey int) ([]domain.DriverPitSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rows, err := s.openf1.Pits(ctx, sessionKey)
	if errors.Is(err, api.ErrNoData) {
		s.logger.Info().Int("session_key", sessionKey).Msg("no pit stops recorded for session")
		return []domain.DriverPitSummary{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Int("session_key", sessionKey).Msg("failed to fetch pit stops")
		return nil, fmt.Errorf("failed to fetch pit stops: %w", err)
	}

	numbers := lo.Uniq(lo.Map(rows, func(r api.PitRow, _ int) int { return r.DriverNumber }))

	summaries := make([]domain.DriverPitSummary, 0, len(numbers))
	for _, number := range numbers {
		stops := lo.Filter(rows, func(r api.PitRow, _ int) bool { return r.DriverNumber == number })
		summaries = append(summaries, summarizeStops(number, stops))
	}

	s.logger.Info().Int("session_key", sessionKey).Int("drivers", len(summaries)).Msg("pit summary built")
	return summaries, nil
}

func summarizeStops(driverNumber int, stops []api.PitRow) domain.DriverPitSummary {
	summary := domain.DriverPitSummary{
		DriverNumber: driverNumber,
		Stops:        len(stops),
		Laps:         lo.Map(stops, func(r api.PitRow, _ int) int { return r.LapNumber }),
	}

	timed := lo.Filter(stops, func(r api.PitRow, _ int) bool { return r.PitDuration != nil })
	if len(timed) == 0 {
		return summary
	}

	sum := decimal.Zero
	for _, r := range timed {
		sum = sum.Add(decimal.NewFromFloat(*r.PitDuration))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(timed)))).Round(3).InexactFloat64()
	summary.MeanDuration = &mean

	return summary
}
