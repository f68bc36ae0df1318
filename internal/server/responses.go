package server

import (
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/samber/lo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type meetingResponse struct {
	MeetingKey       int    `json:"meeting_key"`
	Name             string `json:"meeting_name"`
	CircuitShortName string `json:"circuit_short_name"`
	Year             int    `json:"year"`
}

type sessionListingResponse struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
}

type lapResponse struct {
	DriverNumber  int        `json:"driver_number"`
	DriverAcronym string     `json:"driver_acronym"`
	TeamColour    string     `json:"team_colour"`
	LapNumber     int        `json:"lap_number"`
	DateStart     *time.Time `json:"date_start"`
	Sector1       *float64   `json:"sector_1"`
	Sector2       *float64   `json:"sector_2"`
	Sector3       *float64   `json:"sector_3"`
	LapTime       *float64   `json:"lap_time"`
	LapTimeText   string     `json:"lap_time_display"`
	IsPitOutLap   bool       `json:"is_pit_out_lap"`
	Compound      *string    `json:"compound"`
	TireAge       *int       `json:"tire_age"`
	StintNumber   *int       `json:"stint_number"`
}

type sessionSummaryResponse struct {
	AssemblyID        string        `json:"assembly_id"`
	SessionKey        int           `json:"session_key"`
	MeetingKey        int           `json:"meeting_key"`
	CircuitShortName  string        `json:"circuit_short_name"`
	SessionName       string        `json:"session_name"`
	SessionType       string        `json:"session_type"`
	DateStart         time.Time     `json:"date_start"`
	DateEnd           time.Time     `json:"date_end"`
	Year              int           `json:"year"`
	FastestLaps       []lapResponse `json:"fastest_laps"`
	IncompleteDrivers []string      `json:"incomplete_tire_data"`
}

type eliminationRowResponse struct {
	Position int         `json:"position"`
	Segment  string      `json:"segment"`
	Lap      lapResponse `json:"lap"`
}

type qualifyingResponse struct {
	Q1               []lapResponse            `json:"q1"`
	Q2               []lapResponse            `json:"q2"`
	Q3               []lapResponse            `json:"q3"`
	EliminationOrder []eliminationRowResponse `json:"elimination_order"`
}

type pitSummaryResponse struct {
	DriverNumber int      `json:"driver_number"`
	Stops        int      `json:"stops"`
	Laps         []int    `json:"laps"`
	MeanDuration *float64 `json:"mean_duration"`
}

type trackPositionResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type telemetrySampleResponse struct {
	Date                time.Time              `json:"date"`
	SecondsFromLapStart float64                `json:"seconds_from_lap_start"`
	Speed               int                    `json:"speed"`
	Throttle            int                    `json:"throttle"`
	Brake               int                    `json:"brake"`
	RPM                 int                    `json:"rpm"`
	Gear                int                    `json:"gear"`
	DRS                 int                    `json:"drs"`
	Position            *trackPositionResponse `json:"position"`
}

type telemetryResponse struct {
	DriverNumber  int                       `json:"driver_number"`
	DriverAcronym string                    `json:"driver_acronym"`
	LapNumber     int                       `json:"lap_number"`
	SampleCount   int                       `json:"sample_count"`
	Samples       []telemetrySampleResponse `json:"samples"`
}

func toMeetings(meetings []domain.Meeting) []meetingResponse {
	return lo.Map(meetings, func(m domain.Meeting, _ int) meetingResponse {
		return meetingResponse{
			MeetingKey:       m.MeetingKey,
			Name:             m.Name,
			CircuitShortName: m.CircuitShortName,
			Year:             m.Year,
		}
	})
}

func toSessionListings(listings []domain.SessionListing) []sessionListingResponse {
	return lo.Map(listings, func(l domain.SessionListing, _ int) sessionListingResponse {
		return sessionListingResponse{
			SessionKey:  l.SessionKey,
			SessionName: l.SessionName,
			SessionType: string(l.SessionType),
		}
	})
}

func toLap(lap domain.Lap) lapResponse {
	return lapResponse{
		DriverNumber:  lap.DriverNumber,
		DriverAcronym: lap.DriverAcronym,
		TeamColour:    lap.TeamColour,
		LapNumber:     lap.LapNumber,
		DateStart:     lap.DateStart,
		Sector1:       lap.Sector1,
		Sector2:       lap.Sector2,
		Sector3:       lap.Sector3,
		LapTime:       lap.ActualLapTime,
		LapTimeText:   domain.FormatLapTime(lap.ActualLapTime),
		IsPitOutLap:   lap.IsPitOutLap,
		Compound:      lap.Compound,
		TireAge:       lap.TireAge,
		StintNumber:   lap.StintNumber,
	}
}

func toLaps(laps []domain.Lap) []lapResponse {
	return lo.Map(laps, func(l domain.Lap, _ int) lapResponse {
		return toLap(l)
	})
}

func toSessionSummary(assembled *domain.AssembledSession) sessionSummaryResponse {
	return sessionSummaryResponse{
		AssemblyID:        assembled.AssemblyID,
		SessionKey:        assembled.Session.SessionKey,
		MeetingKey:        assembled.Session.MeetingKey,
		CircuitShortName:  assembled.Session.CircuitShortName,
		SessionName:       assembled.Session.SessionName,
		SessionType:       string(assembled.Session.SessionType),
		DateStart:         assembled.Session.DateStart,
		DateEnd:           assembled.Session.DateEnd,
		Year:              assembled.Session.Year,
		FastestLaps:       toLaps(assembled.FastestLaps),
		IncompleteDrivers: assembled.IncompleteDrivers(),
	}
}

func toQualifying(report *domain.QualifyingReport) qualifyingResponse {
	return qualifyingResponse{
		Q1: toLaps(report.Q1),
		Q2: toLaps(report.Q2),
		Q3: toLaps(report.Q3),
		EliminationOrder: lo.Map(report.EliminationOrder, func(r domain.QualifyingResult, i int) eliminationRowResponse {
			return eliminationRowResponse{
				Position: i + 1,
				Segment:  string(r.Segment),
				Lap:      toLap(r.Lap),
			}
		}),
	}
}

func toPitSummaries(summaries []domain.DriverPitSummary) []pitSummaryResponse {
	return lo.Map(summaries, func(s domain.DriverPitSummary, _ int) pitSummaryResponse {
		return pitSummaryResponse{
			DriverNumber: s.DriverNumber,
			Stops:        s.Stops,
			Laps:         s.Laps,
			MeanDuration: s.MeanDuration,
		}
	})
}

func toTelemetry(driver domain.Driver, lapNumber int, samples []domain.TelemetrySample) telemetryResponse {
	return telemetryResponse{
		DriverNumber:  driver.Number,
		DriverAcronym: driver.Acronym,
		LapNumber:     lapNumber,
		SampleCount:   len(samples),
		Samples: lo.Map(samples, func(s domain.TelemetrySample, _ int) telemetrySampleResponse {
			var pos *trackPositionResponse
			if s.Position != nil {
				pos = &trackPositionResponse{X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z}
			}
			return telemetrySampleResponse{
				Date:                s.Date,
				SecondsFromLapStart: s.SecondsFromLapStart,
				Speed:               s.Speed,
				Throttle:            s.Throttle,
				Brake:               s.Brake,
				RPM:                 s.RPM,
				Gear:                s.Gear,
				DRS:                 s.DRS,
				Position:            pos,
			}
		}),
	}
}
