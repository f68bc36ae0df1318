package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type TelemetryService struct {
	openf1 *api.OpenF1Client
	logger zerolog.Logger
}

func NewTelemetryService(openf1 *api.OpenF1Client, logger zerolog.Logger) *TelemetryService {
	return &TelemetryService{openf1: openf1, logger: logger}
}

// LapTelemetry extracts the car telemetry recorded during one lap of an
// assembled session. An unknown driver or lap number is not an error;
// it logs a warning and yields no samples.
func (s *TelemetryService) LapTelemetry(ctx context.Context, assembled *domain.AssembledSession, driverNumber, lapNumber int) ([]domain.TelemetrySample, error) {
	entry, ok := assembled.DriverByNumber(driverNumber)
	if !ok {
		s.logger.Warn().Int("driver_number", driverNumber).Msg("driver not in session, no telemetry")
		return nil, nil
	}

	lap, ok := lo.Find(entry.Laps, func(l domain.Lap) bool { return l.LapNumber == lapNumber })
	if !ok {
		s.logger.Warn().
			Int("driver_number", driverNumber).
			Int("lap_number", lapNumber).
			Msg("unknown lap number, no telemetry")
		return nil, nil
	}

	return s.extract(ctx, assembled.Session.SessionKey, lap)
}

// FastestLapTelemetry extracts telemetry for the driver's fastest lap.
func (s *TelemetryService) FastestLapTelemetry(ctx context.Context, assembled *domain.AssembledSession, driverNumber int) ([]domain.TelemetrySample, error) {
	lap, ok := assembled.FastestLapOf(driverNumber)
	if !ok {
		s.logger.Warn().Int("driver_number", driverNumber).Msg("driver has no timed lap, no telemetry")
		return nil, nil
	}
	return s.extract(ctx, assembled.Session.SessionKey, lap)
}

func (s *TelemetryService) extract(ctx context.Context, sessionKey int, lap domain.Lap) ([]domain.TelemetrySample, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	window, ok := lapWindow(lap)
	if !ok {
		s.logger.Warn().
			Int("driver_number", lap.DriverNumber).
			Int("lap_number", lap.LapNumber).
			Msg("lap has no usable time window, no telemetry")
		return nil, nil
	}

	carCtx, carCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer carCancel()

	// the car_data endpoint cannot filter by lap, so the whole session
	// is fetched and cut down to the lap window
	carRows, err := s.openf1.CarData(carCtx, sessionKey, lap.DriverNumber)
	if errors.Is(err, api.ErrNoData) {
		s.logger.Warn().Int("driver_number", lap.DriverNumber).Msg("no car data for driver, no telemetry")
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Int("driver_number", lap.DriverNumber).Msg("failed to fetch car data")
		return nil, fmt.Errorf("failed to fetch car data for driver %d: %w", lap.DriverNumber, err)
	}

	samples := make([]domain.TelemetrySample, 0, 256)
	for _, row := range carRows {
		if row.Date.Before(window.start) || row.Date.After(window.end) {
			continue
		}
		samples = append(samples, domain.TelemetrySample{
			Date:                row.Date,
			SecondsFromLapStart: row.Date.Sub(window.start).Seconds(),
			Speed:               row.Speed,
			Throttle:            row.Throttle,
			Brake:               row.Brake,
			RPM:                 row.RPM,
			Gear:                row.NGear,
			DRS:                 row.DRS,
		})
	}
	if len(samples) == 0 {
		s.logger.Warn().
			Int("driver_number", lap.DriverNumber).
			Int("lap_number", lap.LapNumber).
			Msg("no car data inside the lap window")
		return nil, nil
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })

	s.attachPositions(ctx, sessionKey, lap.DriverNumber, window, samples)

	s.logger.Info().
		Int("driver_number", lap.DriverNumber).
		Int("lap_number", lap.LapNumber).
		Int("samples", len(samples)).
		Msg("telemetry extracted")

	return samples, nil
}

type timeWindow struct {
	start time.Time
	end   time.Time
}

// lapWindow derives the closed telemetry interval from the lap start
// and the lap time, preferring the sector-derived time over the
// reported duration.
func lapWindow(lap domain.Lap) (timeWindow, bool) {
	if lap.DateStart == nil {
		return timeWindow{}, false
	}
	duration := lap.ActualLapTime
	if duration == nil {
		duration = lap.RawDuration
	}
	if duration == nil {
		return timeWindow{}, false
	}
	start := *lap.DateStart
	return timeWindow{start: start, end: start.Add(time.Duration(*duration * float64(time.Second)))}, true
}

// attachPositions aligns the location stream to the car samples by
// nearest timestamp. The streams sample at different rates, so each car
// sample gets the closest position; exact ties keep the earlier one.
// Missing location data leaves the car samples standing alone.
func (s *TelemetryService) attachPositions(ctx context.Context, sessionKey, driverNumber int, window timeWindow, samples []domain.TelemetrySample) {
	locCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	locRows, err := s.openf1.Locations(locCtx, sessionKey, driverNumber)
	if errors.Is(err, api.ErrNoData) {
		s.logger.Debug().Int("driver_number", driverNumber).Msg("no location data, car samples stand alone")
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Int("driver_number", driverNumber).Msg("failed to fetch location data, car samples stand alone")
		return
	}

	positions := make([]domain.TrackPosition, 0, len(locRows))
	for _, row := range locRows {
		if row.Date.Before(window.start) || row.Date.After(window.end) {
			continue
		}
		positions = append(positions, domain.TrackPosition{Date: row.Date, X: row.X, Y: row.Y, Z: row.Z})
	}
	if len(positions) == 0 {
		return
	}
	sort.SliceStable(positions, func(i, j int) bool { return positions[i].Date.Before(positions[j].Date) })

	j := 0
	for i := range samples {
		for j+1 < len(positions) && absDelta(positions[j+1].Date, samples[i].Date) < absDelta(positions[j].Date, samples[i].Date) {
			j++
		}
		pos := positions[j]
		samples[i].Position = &pos
	}
}

func absDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
