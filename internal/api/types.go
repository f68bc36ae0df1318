package api

import "time"

// Row types mirror the OpenF1 payloads. Every endpoint answers with a
// JSON array of these; fields the API reports as null are pointers.

type SessionRow struct {
	SessionKey       int        `json:"session_key"`
	MeetingKey       int        `json:"meeting_key"`
	CircuitKey       int        `json:"circuit_key"`
	CircuitShortName string     `json:"circuit_short_name"`
	CountryName      string     `json:"country_name"`
	Location         string     `json:"location"`
	SessionName      string     `json:"session_name"`
	SessionType      string     `json:"session_type"`
	DateStart        *time.Time `json:"date_start"`
	DateEnd          *time.Time `json:"date_end"`
	Year             int        `json:"year"`
}

type MeetingRow struct {
	MeetingKey          int    `json:"meeting_key"`
	MeetingName         string `json:"meeting_name"`
	MeetingOfficialName string `json:"meeting_official_name"`
	CircuitShortName    string `json:"circuit_short_name"`
	CountryName         string `json:"country_name"`
	Location            string `json:"location"`
	Year                int    `json:"year"`
}

type DriverRow struct {
	DriverNumber int    `json:"driver_number"`
	NameAcronym  string `json:"name_acronym"`
	FullName     string `json:"full_name"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
	CountryCode  string `json:"country_code"`
	SessionKey   int    `json:"session_key"`
	MeetingKey   int    `json:"meeting_key"`
}

type LapRow struct {
	DriverNumber    int        `json:"driver_number"`
	LapNumber       int        `json:"lap_number"`
	DateStart       *time.Time `json:"date_start"`
	DurationSector1 *float64   `json:"duration_sector_1"`
	DurationSector2 *float64   `json:"duration_sector_2"`
	DurationSector3 *float64   `json:"duration_sector_3"`
	LapDuration     *float64   `json:"lap_duration"`
	IsPitOutLap     bool       `json:"is_pit_out_lap"`
	I1Speed         *int       `json:"i1_speed"`
	I2Speed         *int       `json:"i2_speed"`
	STSpeed         *int       `json:"st_speed"`
	SessionKey      int        `json:"session_key"`
}

type StintRow struct {
	DriverNumber   int     `json:"driver_number"`
	StintNumber    *int    `json:"stint_number"`
	LapStart       *int    `json:"lap_start"`
	LapEnd         *int    `json:"lap_end"`
	Compound       *string `json:"compound"`
	TyreAgeAtStart *int    `json:"tyre_age_at_start"`
	SessionKey     int     `json:"session_key"`
}

type CarDataRow struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	Speed        int       `json:"speed"`
	Throttle     int       `json:"throttle"`
	Brake        int       `json:"brake"`
	RPM          int       `json:"rpm"`
	NGear        int       `json:"n_gear"`
	DRS          int       `json:"drs"`
	SessionKey   int       `json:"session_key"`
}

type PitRow struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  *float64  `json:"pit_duration"`
	SessionKey   int       `json:"session_key"`
}

type LocationRow struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Z            float64   `json:"z"`
	SessionKey   int       `json:"session_key"`
}
