package service

import (
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type QualifyingService struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func NewQualifyingService(cfg *config.Config, logger zerolog.Logger) *QualifyingService {
	return &QualifyingService{cfg: cfg, logger: logger}
}

// Segment cuts an assembled qualifying session into Q1/Q2/Q3 by lap
// start time and reconstructs the elimination classification. The
// windows are derived from the session start and the configured segment
// lengths; a session that ran past the configured ceiling was stopped
// by a red flag and cannot be segmented this way.
func (s *QualifyingService) Segment(assembled *domain.AssembledSession) (*domain.QualifyingReport, error) {
	session := assembled.Session

	if session.SessionType != domain.SessionTypeQualifying {
		s.logger.Warn().
			Int("session_key", session.SessionKey).
			Str("session_type", string(session.SessionType)).
			Msg("segmentation requested for non-qualifying session")
		return nil, ErrNotQualifying
	}

	duration := session.DateEnd.Sub(session.DateStart)
	if duration > s.cfg.QualifyingMaxDuration {
		s.logger.Warn().
			Int("session_key", session.SessionKey).
			Dur("duration", duration).
			Dur("ceiling", s.cfg.QualifyingMaxDuration).
			Msg("qualifying ran past the regular window")
		return nil, ErrRedFlagged
	}

	q1End := session.DateStart.Add(s.cfg.Q1Duration + s.cfg.Q1Break)
	q2End := q1End.Add(s.cfg.Q2Duration + s.cfg.Q2Break)

	var q1, q2, q3 []domain.Lap
	for _, lap := range assembled.CombinedLaps() {
		// pit-out laps are never representative; laps without a start
		// timestamp belong to no window
		if lap.IsPitOutLap || lap.DateStart == nil {
			continue
		}
		switch t := *lap.DateStart; {
		case t.Before(q1End):
			q1 = append(q1, lap)
		case t.Before(q2End):
			q2 = append(q2, lap)
		default:
			q3 = append(q3, lap)
		}
	}

	report := &domain.QualifyingReport{
		Q1: segmentBests(q1),
		Q2: segmentBests(q2),
		Q3: segmentBests(q3),
	}
	report.EliminationOrder = eliminationOrder(report)

	s.logger.Info().
		Int("session_key", session.SessionKey).
		Int("q1", len(report.Q1)).
		Int("q2", len(report.Q2)).
		Int("q3", len(report.Q3)).
		Msg("qualifying segmented")

	return report, nil
}

// segmentBests reduces a segment's laps to one best per driver, fastest
// first. Drivers without a timed lap in the segment are absent.
func segmentBests(laps []domain.Lap) []domain.Lap {
	numbers := lo.Uniq(lo.Map(laps, func(l domain.Lap, _ int) int { return l.DriverNumber }))

	bests := make([]domain.Lap, 0, len(numbers))
	for _, number := range numbers {
		driverLaps := lo.Filter(laps, func(l domain.Lap, _ int) bool { return l.DriverNumber == number })
		if best, ok := bestLap(driverLaps); ok {
			bests = append(bests, best)
		}
	}
	sortByLapTime(bests)
	return bests
}

// eliminationOrder rebuilds the classification: everyone who reached Q3
// in their Q3 order, then the drivers knocked out in Q2, then those
// knocked out in Q1.
func eliminationOrder(report *domain.QualifyingReport) []domain.QualifyingResult {
	rows := make([]domain.QualifyingResult, 0, len(report.Q3)+2*constants.EliminatedPerSegment)
	for _, lap := range report.Q3 {
		rows = append(rows, domain.QualifyingResult{Segment: domain.SegmentQ3, Lap: lap})
	}
	for _, lap := range slowest(report.Q2, constants.EliminatedPerSegment) {
		rows = append(rows, domain.QualifyingResult{Segment: domain.SegmentQ2, Lap: lap})
	}
	for _, lap := range slowest(report.Q1, constants.EliminatedPerSegment) {
		rows = append(rows, domain.QualifyingResult{Segment: domain.SegmentQ1, Lap: lap})
	}
	return rows
}

// slowest returns the final n entries of a fastest-first table, still
// ordered fastest first.
func slowest(laps []domain.Lap, n int) []domain.Lap {
	if len(laps) <= n {
		return laps
	}
	return laps[len(laps)-n:]
}
