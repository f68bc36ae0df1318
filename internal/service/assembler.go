package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type SessionService struct {
	openf1 *api.OpenF1Client
	logger zerolog.Logger
}

func NewSessionService(openf1 *api.OpenF1Client, logger zerolog.Logger) *SessionService {
	return &SessionService{openf1: openf1, logger: logger}
}

// Assemble fetches everything a session view needs and joins it into a
// single immutable value: metadata, the driver roster, per-driver lap
// tables with tire data joined from stints, and the fastest-lap table.
// Fetches run sequentially in roster order; any failure beyond missing
// laps for a single driver fails the whole assembly.
func (s *SessionService) Assemble(ctx context.Context, sessionKey int) (*domain.AssembledSession, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Int("session_key", sessionKey).Msg("assembling session")

	session, err := s.fetchSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	roster, err := s.fetchRoster(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	drivers := make([]domain.DriverLaps, 0, len(roster))
	for _, driver := range roster {
		entry, ok, err := s.fetchDriverLaps(ctx, sessionKey, driver)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		drivers = append(drivers, entry)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	assembled := &domain.AssembledSession{
		AssemblyID:  id,
		Session:     *session,
		Drivers:     drivers,
		FastestLaps: fastestLaps(drivers),
	}

	s.logger.Info().
		Str("assembly_id", id).
		Int("session_key", sessionKey).
		Int("drivers", len(drivers)).
		Strs("incomplete_tire_data", assembled.IncompleteDrivers()).
		Msg("session assembled")

	return assembled, nil
}

func (s *SessionService) fetchSession(ctx context.Context, sessionKey int) (*domain.Session, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	row, err := s.openf1.Session(apiCtx, sessionKey)
	if err != nil {
		s.logger.Error().Err(err).Int("session_key", sessionKey).Msg("failed to fetch session")
		return nil, fmt.Errorf("failed to fetch session %d: %w", sessionKey, err)
	}

	session := &domain.Session{
		SessionKey:       row.SessionKey,
		MeetingKey:       row.MeetingKey,
		CircuitShortName: row.CircuitShortName,
		SessionName:      row.SessionName,
		SessionType:      domain.SessionType(row.SessionType),
		Year:             row.Year,
	}
	if row.DateStart != nil {
		session.DateStart = *row.DateStart
	}
	if row.DateEnd != nil {
		session.DateEnd = *row.DateEnd
	}
	return session, nil
}

func (s *SessionService) fetchRoster(ctx context.Context, sessionKey int) ([]domain.Driver, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rows, err := s.openf1.Drivers(apiCtx, sessionKey)
	if err != nil {
		s.logger.Error().Err(err).Int("session_key", sessionKey).Msg("failed to fetch drivers")
		return nil, fmt.Errorf("failed to fetch drivers: %w", err)
	}

	// the API repeats driver records in some sessions
	rows = lo.UniqBy(rows, func(r api.DriverRow) int { return r.DriverNumber })

	acronyms := lo.Uniq(lo.Map(rows, func(r api.DriverRow, _ int) string { return r.NameAcronym }))
	if len(acronyms) != len(rows) {
		rosterErr := &RosterError{Numbers: len(rows), Acronyms: len(acronyms)}
		s.logger.Error().Err(rosterErr).Int("session_key", sessionKey).Msg("driver roster is inconsistent")
		return nil, rosterErr
	}

	return lo.Map(rows, func(r api.DriverRow, _ int) domain.Driver {
		return domain.Driver{
			Number:     r.DriverNumber,
			Acronym:    r.NameAcronym,
			FullName:   r.FullName,
			TeamName:   r.TeamName,
			TeamColour: r.TeamColour,
		}
	}), nil
}

func (s *SessionService) fetchDriverLaps(ctx context.Context, sessionKey int, driver domain.Driver) (domain.DriverLaps, bool, error) {
	lapCtx, lapCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer lapCancel()

	lapRows, err := s.openf1.DriverLaps(lapCtx, sessionKey, driver.Number)
	if errors.Is(err, api.ErrNoData) {
		s.logger.Info().
			Int("driver_number", driver.Number).
			Str("acronym", driver.Acronym).
			Msg("driver has no laps, skipping")
		return domain.DriverLaps{}, false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Int("driver_number", driver.Number).Msg("failed to fetch laps")
		return domain.DriverLaps{}, false, fmt.Errorf("failed to fetch laps for driver %d: %w", driver.Number, err)
	}

	stintCtx, stintCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer stintCancel()

	// missing stint data is not fatal, the join just leaves tire
	// attributes empty and flags the driver
	stintRows, err := s.openf1.DriverStints(stintCtx, sessionKey, driver.Number)
	if err != nil && !errors.Is(err, api.ErrNoData) {
		s.logger.Error().Err(err).Int("driver_number", driver.Number).Msg("failed to fetch stints")
		return domain.DriverLaps{}, false, fmt.Errorf("failed to fetch stints for driver %d: %w", driver.Number, err)
	}

	stints := lo.Map(stintRows, func(r api.StintRow, _ int) domain.Stint {
		return domain.Stint{
			DriverNumber:   r.DriverNumber,
			StintNumber:    r.StintNumber,
			LapStart:       r.LapStart,
			LapEnd:         r.LapEnd,
			Compound:       r.Compound,
			TyreAgeAtStart: r.TyreAgeAtStart,
		}
	})

	laps := make([]domain.Lap, 0, len(lapRows))
	incomplete := false
	for _, row := range lapRows {
		lap := buildLap(driver, row, stints)
		if lap.Compound == nil || lap.TireAge == nil || lap.StintNumber == nil {
			incomplete = true
		}
		laps = append(laps, lap)
	}

	if incomplete {
		s.logger.Warn().
			Int("driver_number", driver.Number).
			Str("acronym", driver.Acronym).
			Msg("incomplete tire data after stint join")
	}

	return domain.DriverLaps{Driver: driver, Laps: laps, IncompleteTireData: incomplete}, true, nil
}

func buildLap(driver domain.Driver, row api.LapRow, stints []domain.Stint) domain.Lap {
	lap := domain.Lap{
		DriverNumber:  driver.Number,
		DriverAcronym: driver.Acronym,
		TeamColour:    driver.TeamColour,
		LapNumber:     row.LapNumber,
		DateStart:     row.DateStart,
		Sector1:       row.DurationSector1,
		Sector2:       row.DurationSector2,
		Sector3:       row.DurationSector3,
		RawDuration:   row.LapDuration,
		ActualLapTime: domain.SectorSum(row.DurationSector1, row.DurationSector2, row.DurationSector3),
		IsPitOutLap:   row.IsPitOutLap,
	}

	stint, found := lo.Find(stints, func(st domain.Stint) bool { return st.Covers(row.LapNumber) })
	if !found {
		return lap
	}
	if stint.Compound != nil {
		lap.Compound = lo.ToPtr(*stint.Compound)
	}
	if stint.TyreAgeAtStart != nil {
		lap.TireAge = lo.ToPtr(*stint.TyreAgeAtStart + (row.LapNumber - *stint.LapStart))
	}
	if stint.StintNumber != nil {
		lap.StintNumber = lo.ToPtr(*stint.StintNumber)
	}
	return lap
}

func fastestLaps(drivers []domain.DriverLaps) []domain.Lap {
	table := make([]domain.Lap, 0, len(drivers))
	for _, d := range drivers {
		if best, ok := bestLap(d.Laps); ok {
			table = append(table, best)
		}
	}
	sortByLapTime(table)
	return table
}

// bestLap picks the minimum non-null lap time; ties keep the earlier
// lap because tables are in ascending lap order.
func bestLap(laps []domain.Lap) (domain.Lap, bool) {
	var best domain.Lap
	found := false
	for _, lap := range laps {
		if lap.ActualLapTime == nil {
			continue
		}
		if !found || *lap.ActualLapTime < *best.ActualLapTime {
			best = lap
			found = true
		}
	}
	return best, found
}

// sortByLapTime orders laps fastest first. Equal times fall back to the
// earlier start; laps without a start sort last among equals. Every
// entry must carry a lap time.
func sortByLapTime(laps []domain.Lap) {
	sort.SliceStable(laps, func(i, j int) bool {
		a, b := laps[i], laps[j]
		if *a.ActualLapTime != *b.ActualLapTime {
			return *a.ActualLapTime < *b.ActualLapTime
		}
		switch {
		case a.DateStart == nil:
			return false
		case b.DateStart == nil:
			return true
		default:
			return a.DateStart.Before(*b.DateStart)
		}
	})
}
