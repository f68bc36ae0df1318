package service

import (
	"context"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ScheduleService lists race weekends and their sessions for the
// year -> weekend -> session selection flow.
type ScheduleService struct {
	openf1 *api.OpenF1Client
	logger zerolog.Logger
}

func NewScheduleService(openf1 *api.OpenF1Client, logger zerolog.Logger) *ScheduleService {
	return &ScheduleService{openf1: openf1, logger: logger}
}

func (s *ScheduleService) Meetings(ctx context.Context, year int) ([]domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rows, err := s.openf1.Meetings(ctx, year)
	if err != nil {
		s.logger.Error().Err(err).Int("year", year).Msg("failed to fetch meetings")
		return nil, fmt.Errorf("failed to fetch meetings for %d: %w", year, err)
	}

	rows = lo.UniqBy(rows, func(r api.MeetingRow) int { return r.MeetingKey })

	meetings := lo.Map(rows, func(r api.MeetingRow, _ int) domain.Meeting {
		name := r.MeetingOfficialName
		if name == "" {
			name = r.MeetingName
		}
		return domain.Meeting{
			MeetingKey:       r.MeetingKey,
			Name:             name,
			CircuitShortName: r.CircuitShortName,
			Year:             r.Year,
		}
	})

	s.logger.Info().Int("year", year).Int("count", len(meetings)).Msg("meetings listed")
	return meetings, nil
}

func (s *ScheduleService) Sessions(ctx context.Context, meetingKey int) ([]domain.SessionListing, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rows, err := s.openf1.MeetingSessions(ctx, meetingKey)
	if err != nil {
		s.logger.Error().Err(err).Int("meeting_key", meetingKey).Msg("failed to fetch sessions")
		return nil, fmt.Errorf("failed to fetch sessions for meeting %d: %w", meetingKey, err)
	}

	rows = lo.UniqBy(rows, func(r api.SessionRow) int { return r.SessionKey })

	listings := lo.Map(rows, func(r api.SessionRow, _ int) domain.SessionListing {
		return domain.SessionListing{
			SessionKey:  r.SessionKey,
			SessionName: r.SessionName,
			SessionType: domain.SessionType(r.SessionType),
		}
	})

	s.logger.Info().Int("meeting_key", meetingKey).Int("count", len(listings)).Msg("sessions listed")
	return listings, nil
}
