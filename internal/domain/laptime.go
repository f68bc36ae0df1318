package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SectorSum returns the lap time derived from the three sector times,
// rounded to three decimals. Reported lap_duration values drift from
// the sector sum on some laps, so the sum is authoritative whenever all
// three sectors are present. Returns nil if any sector is missing.
func SectorSum(s1, s2, s3 *float64) *float64 {
	if s1 == nil || s2 == nil || s3 == nil {
		return nil
	}
	sum := decimal.NewFromFloat(*s1).
		Add(decimal.NewFromFloat(*s2)).
		Add(decimal.NewFromFloat(*s3)).
		Round(3).
		InexactFloat64()
	return &sum
}

// FormatLapTime renders a lap time in seconds as M:SS.mmm, e.g. 91.004
// becomes "1:31.004". Missing times render as "N/A".
func FormatLapTime(seconds *float64) string {
	if seconds == nil {
		return "N/A"
	}
	ms := decimal.NewFromFloat(*seconds).Round(3).Mul(decimal.NewFromInt(1000)).IntPart()
	minutes := ms / 60000
	rem := ms % 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, rem/1000, rem%1000)
}
