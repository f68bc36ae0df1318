package render

import (
	"testing"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestCalendarTable(t *testing.T) {
	out := CalendarTable([]domain.Meeting{
		{MeetingKey: 1219, Name: "Singapore Grand Prix", CircuitShortName: "Singapore"},
		{MeetingKey: 1220, Name: "Japanese Grand Prix", CircuitShortName: "Suzuka"},
	})

	assert.Contains(t, out, "Singapore Grand Prix")
	assert.Contains(t, out, "Suzuka")
	assert.Contains(t, out, "1219")
	assert.Contains(t, out, "Circuit")
}

func TestSessionsTable(t *testing.T) {
	out := SessionsTable([]domain.SessionListing{
		{SessionKey: 9161, SessionName: "Qualifying", SessionType: domain.SessionTypeQualifying},
	})

	assert.Contains(t, out, "9161")
	assert.Contains(t, out, "Qualifying")
}

func TestLapTable(t *testing.T) {
	out := LapTable([]domain.Lap{
		{
			DriverAcronym: "VER",
			LapNumber:     7,
			ActualLapTime: lo.ToPtr(91.004),
			Sector1:       lo.ToPtr(26.324),
			Sector2:       lo.ToPtr(31.485),
			Sector3:       lo.ToPtr(33.195),
			Compound:      lo.ToPtr("SOFT"),
			TireAge:       lo.ToPtr(2),
		},
		{DriverAcronym: "LEC", LapNumber: 1, IsPitOutLap: true},
	})

	assert.Contains(t, out, "VER")
	assert.Contains(t, out, "1:31.004")
	assert.Contains(t, out, "26.324")
	assert.Contains(t, out, "SOFT")
	// the pit-out lap has no sectors or tire data
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "yes")
}

func TestFastestLapTable(t *testing.T) {
	assembled := chartAssembly(2)
	out := FastestLapTable(assembled)

	assert.Contains(t, out, "D01")
	assert.Contains(t, out, "D02")
	assert.Contains(t, out, "1:30.100")
	assert.Contains(t, out, "Pos")
}

func TestQualifyingTable(t *testing.T) {
	out := QualifyingTable(&domain.QualifyingReport{
		EliminationOrder: []domain.QualifyingResult{
			{Segment: domain.SegmentQ3, Lap: domain.Lap{DriverAcronym: "VER", ActualLapTime: lo.ToPtr(90.984), Compound: lo.ToPtr("SOFT")}},
			{Segment: domain.SegmentQ1, Lap: domain.Lap{DriverAcronym: "SAR"}},
		},
	})

	assert.Contains(t, out, "Q3")
	assert.Contains(t, out, "Q1")
	assert.Contains(t, out, "VER")
	assert.Contains(t, out, "1:30.984")
	assert.Contains(t, out, "N/A")
}

func TestPitTable(t *testing.T) {
	out := PitTable([]domain.DriverPitSummary{
		{DriverNumber: 1, Stops: 2, Laps: []int{14, 33}, MeanDuration: lo.ToPtr(23.45)},
		{DriverNumber: 44, Stops: 1, Laps: []int{20}, MeanDuration: nil},
	})

	assert.Contains(t, out, "14, 33")
	assert.Contains(t, out, "23.450")
	assert.Contains(t, out, "44")
	assert.Contains(t, out, "N/A")
}
