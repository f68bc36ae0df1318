package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

func newTable(buf *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	t.SetStyle(table.StyleRounded)
	return t
}

// CalendarTable lists a year's race weekends.
func CalendarTable(meetings []domain.Meeting) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Key", "Meeting", "Circuit"})
	for _, m := range meetings {
		t.AppendRow(table.Row{m.MeetingKey, m.Name, m.CircuitShortName})
	}
	t.Render()
	return b.String()
}

// SessionsTable lists the sessions of one race weekend.
func SessionsTable(listings []domain.SessionListing) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Key", "Session", "Type"})
	for _, l := range listings {
		t.AppendRow(table.Row{l.SessionKey, l.SessionName, string(l.SessionType)})
	}
	t.Render()
	return b.String()
}

// LapTable renders a lap-by-lap view, one row per lap.
func LapTable(laps []domain.Lap) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Driver", "Lap", "Time", "S1", "S2", "S3", "Compound", "Age", "Pit out"})
	for _, lap := range laps {
		pitOut := ""
		if lap.IsPitOutLap {
			pitOut = "yes"
		}
		t.AppendRow(table.Row{
			lap.DriverAcronym,
			lap.LapNumber,
			domain.FormatLapTime(lap.ActualLapTime),
			fmtSeconds(lap.Sector1),
			fmtSeconds(lap.Sector2),
			fmtSeconds(lap.Sector3),
			fmtCompound(lap.Compound),
			fmtInt(lap.TireAge),
			pitOut,
		})
	}
	t.Render()
	return b.String()
}

// FastestLapTable renders the session's fastest lap per driver in
// classification order.
func FastestLapTable(assembled *domain.AssembledSession) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Pos", "Driver", "Time", "Compound", "Lap"})
	for i, lap := range assembled.FastestLaps {
		t.AppendRow(table.Row{
			i + 1,
			lap.DriverAcronym,
			domain.FormatLapTime(lap.ActualLapTime),
			fmtCompound(lap.Compound),
			lap.LapNumber,
		})
	}
	t.Render()
	return b.String()
}

// QualifyingTable renders the reconstructed elimination classification.
func QualifyingTable(report *domain.QualifyingReport) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Pos", "Segment", "Driver", "Time", "Compound"})
	for i, row := range report.EliminationOrder {
		t.AppendRow(table.Row{
			i + 1,
			string(row.Segment),
			row.Lap.DriverAcronym,
			domain.FormatLapTime(row.Lap.ActualLapTime),
			fmtCompound(row.Lap.Compound),
		})
	}
	t.Render()
	return b.String()
}

// PitTable renders the per-driver pit stop summary.
func PitTable(summaries []domain.DriverPitSummary) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendHeader(table.Row{"Driver", "Stops", "Laps", "Mean duration"})
	for _, s := range summaries {
		laps := strings.Join(lo.Map(s.Laps, func(n int, _ int) string { return strconv.Itoa(n) }), ", ")
		t.AppendRow(table.Row{s.DriverNumber, s.Stops, laps, fmtSeconds(s.MeanDuration)})
	}
	t.Render()
	return b.String()
}

func fmtSeconds(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", *v)
}

func fmtCompound(compound *string) string {
	if compound == nil {
		return "N/A"
	}
	return *compound
}

func fmtInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
