package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Official tire compound colors, hex without '#'. Unknown compounds
// fall back to grey.
var compoundColors = map[string]string{
	"SOFT":         "FF0000",
	"MEDIUM":       "FFD800",
	"HARD":         "808080",
	"INTERMEDIATE": "00A550",
	"WET":          "0072C6",
}

const fallbackColor = "808080"

func compoundColor(compound *string) drawing.Color {
	if compound != nil {
		if hex, ok := compoundColors[*compound]; ok {
			return drawing.ColorFromHex(hex)
		}
	}
	return drawing.ColorFromHex(fallbackColor)
}

// FastestLapChart renders one bar per driver, colored by the compound
// the lap was set on. With a qualifying report the bars follow the
// elimination order and each driver shows their own segment's best;
// otherwise the session's fastest-lap table is drawn as is.
func FastestLapChart(assembled *domain.AssembledSession, report *domain.QualifyingReport) ([]byte, error) {
	laps := assembled.FastestLaps
	if report != nil {
		laps = lo.Map(report.EliminationOrder, func(r domain.QualifyingResult, _ int) domain.Lap {
			return r.Lap
		})
	}
	if len(laps) == 0 {
		return nil, errors.New("no timed laps to chart")
	}

	bars := make([]chart.Value, 0, len(laps))
	minTime := *laps[0].ActualLapTime
	maxTime := minTime
	for _, lap := range laps {
		t := *lap.ActualLapTime
		if t < minTime {
			minTime = t
		}
		if t > maxTime {
			maxTime = t
		}
		c := compoundColor(lap.Compound)
		bars = append(bars, chart.Value{
			Label: lap.DriverAcronym,
			Value: t,
			Style: chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0},
		})
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Circuit %s - %s fastest lap times",
			assembled.Session.CircuitShortName, assembled.Session.SessionName),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 20}},
		Width:      1280,
		Height:     720,
		BarWidth:   40,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: minTime - 0.5, Max: maxTime + 0.5},
			ValueFormatter: lapTimeTicks,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render fastest lap chart: %w", err)
	}
	return buf.Bytes(), nil
}

// TelemetryChart draws speed against the lap clock, with throttle and
// brake on the secondary percent axis.
func TelemetryChart(driverAcronym string, lapNumber int, samples []domain.TelemetrySample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("no telemetry samples to chart")
	}
	// a lone sample cannot span an axis, pad a twin one second later
	if len(samples) == 1 {
		twin := samples[0]
		twin.SecondsFromLapStart++
		samples = append(samples, twin)
	}

	xs := lo.Map(samples, func(s domain.TelemetrySample, _ int) float64 { return s.SecondsFromLapStart })
	speeds := lo.Map(samples, func(s domain.TelemetrySample, _ int) float64 { return float64(s.Speed) })
	throttles := lo.Map(samples, func(s domain.TelemetrySample, _ int) float64 { return float64(s.Throttle) })
	brakes := lo.Map(samples, func(s domain.TelemetrySample, _ int) float64 { return float64(s.Brake) })

	ch := chart.Chart{
		Title:          fmt.Sprintf("%s lap %d telemetry", driverAcronym, lapNumber),
		Background:     chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 20}},
		Width:          1280,
		Height:         720,
		XAxis:          chart.XAxis{Name: "seconds from lap start"},
		YAxis:          chart.YAxis{Name: "km/h"},
		YAxisSecondary: chart.YAxis{Name: "%"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Speed",
				XValues: xs,
				YValues: speeds,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("0072C6"), StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Throttle",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: throttles,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("00A550"), StrokeWidth: 1.5},
			},
			chart.ContinuousSeries{
				Name:    "Brake",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: brakes,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("FF0000"), StrokeWidth: 1.5},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render telemetry chart: %w", err)
	}
	return buf.Bytes(), nil
}

func lapTimeTicks(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return domain.FormatLapTime(&f)
}
