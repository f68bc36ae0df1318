package domain

import (
	"time"

	"github.com/samber/lo"
)

type SessionType string

const (
	SessionTypePractice   SessionType = "Practice"
	SessionTypeQualifying SessionType = "Qualifying"
	SessionTypeRace       SessionType = "Race"
)

type Session struct {
	SessionKey       int
	MeetingKey       int
	CircuitShortName string
	SessionName      string // "Qualifying", "Sprint", "Race", etc.
	SessionType      SessionType
	DateStart        time.Time
	DateEnd          time.Time
	Year             int
}

type Meeting struct {
	MeetingKey       int
	Name             string // official name, sponsor included
	CircuitShortName string
	Year             int
}

type SessionListing struct {
	SessionKey  int
	SessionName string
	SessionType SessionType
}

type Driver struct {
	Number     int
	Acronym    string // "VER", "LEC", ...
	FullName   string
	TeamName   string
	TeamColour string // hex without leading '#'
}

type Lap struct {
	DriverNumber  int
	DriverAcronym string
	TeamColour    string
	LapNumber     int
	DateStart     *time.Time
	Sector1       *float64 // seconds
	Sector2       *float64
	Sector3       *float64
	RawDuration   *float64 // lap_duration as reported, not authoritative
	ActualLapTime *float64 // rounded sector sum
	IsPitOutLap   bool
	Compound      *string
	TireAge       *int
	StintNumber   *int
}

type Stint struct {
	DriverNumber   int
	StintNumber    *int
	LapStart       *int
	LapEnd         *int
	Compound       *string
	TyreAgeAtStart *int
}

// Covers reports whether lapNumber falls inside the stint's lap range.
// Stints without a defined range cover nothing.
func (s Stint) Covers(lapNumber int) bool {
	if s.LapStart == nil || s.LapEnd == nil {
		return false
	}
	return lapNumber >= *s.LapStart && lapNumber <= *s.LapEnd
}

type TrackPosition struct {
	Date time.Time
	X    float64
	Y    float64
	Z    float64
}

type TelemetrySample struct {
	Date                time.Time
	SecondsFromLapStart float64
	Speed               int // km/h
	Throttle            int // percent
	Brake               int
	RPM                 int
	Gear                int
	DRS                 int
	Position            *TrackPosition // nearest location sample, nil when unavailable
}

type PitStop struct {
	DriverNumber int
	LapNumber    int
	Date         time.Time
	Duration     *float64 // seconds spent in the pit lane
}

type DriverPitSummary struct {
	DriverNumber int
	Stops        int
	Laps         []int
	MeanDuration *float64 // nil when no stop carried a duration
}

type QualifyingSegment string

const (
	SegmentQ1 QualifyingSegment = "Q1"
	SegmentQ2 QualifyingSegment = "Q2"
	SegmentQ3 QualifyingSegment = "Q3"
)

type QualifyingResult struct {
	Segment QualifyingSegment
	Lap     Lap
}

type QualifyingReport struct {
	Q1 []Lap // per-driver segment bests, fastest first
	Q2 []Lap
	Q3 []Lap

	// EliminationOrder is the reconstructed classification: all of Q3,
	// then the five slowest of Q2, then the five slowest of Q1.
	EliminationOrder []QualifyingResult
}

type DriverLaps struct {
	Driver Driver
	Laps   []Lap

	// IncompleteTireData marks drivers with laps whose tire attributes
	// could not be resolved from stint data.
	IncompleteTireData bool
}

// AssembledSession is the immutable product of session assembly. It is
// built once and handed to segmentation, telemetry extraction and
// rendering as a plain value, never mutated afterwards.
type AssembledSession struct {
	AssemblyID string // nanoid, correlates dashboard loads with server logs
	Session    Session
	Drivers    []DriverLaps // roster order

	// FastestLaps holds each driver's best lap, sorted by lap time with
	// earlier start as tie-break. Drivers without a timed lap are absent.
	FastestLaps []Lap
}

// CombinedLaps concatenates every driver's lap table in roster order.
func (a *AssembledSession) CombinedLaps() []Lap {
	return lo.FlatMap(a.Drivers, func(d DriverLaps, _ int) []Lap {
		return d.Laps
	})
}

// DriverByNumber returns the roster entry for the given car number.
func (a *AssembledSession) DriverByNumber(number int) (DriverLaps, bool) {
	return lo.Find(a.Drivers, func(d DriverLaps) bool {
		return d.Driver.Number == number
	})
}

// FastestLapOf returns the fastest-lap row for the given car number.
func (a *AssembledSession) FastestLapOf(number int) (Lap, bool) {
	return lo.Find(a.FastestLaps, func(l Lap) bool {
		return l.DriverNumber == number
	})
}

// IncompleteDrivers lists the acronyms of drivers flagged during the
// tire join, for surfacing as a warning alongside the data.
func (a *AssembledSession) IncompleteDrivers() []string {
	flagged := lo.Filter(a.Drivers, func(d DriverLaps, _ int) bool {
		return d.IncompleteTireData
	})
	return lo.Map(flagged, func(d DriverLaps, _ int) string {
		return d.Driver.Acronym
	})
}
