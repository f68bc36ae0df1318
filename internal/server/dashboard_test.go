package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/cache"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDashboard wires the full stack against a stub upstream serving
// canned payloads keyed by "path?rawquery". Unknown routes answer an
// empty array.
func newDashboard(t *testing.T, routes map[string]string) *http.ServeMux {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := routes[key]
		if !ok {
			body = "[]"
		}
		if body == "FAIL" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		OpenF1BaseURL:         upstream.URL,
		CacheTTL:              time.Minute,
		RetryInitialDelay:     time.Millisecond,
		RetryMaxDelay:         time.Millisecond,
		RetryMaxAttempts:      1,
		Q1Duration:            constants.Q1Duration,
		Q1Break:               constants.Q1Break,
		Q2Duration:            constants.Q2Duration,
		Q2Break:               constants.Q2Break,
		QualifyingMaxDuration: constants.QualifyingMaxDuration,
	}
	client := api.NewOpenF1Client(cfg, zerolog.Nop())
	sessions := service.NewSessionService(client, zerolog.Nop())
	store := cache.NewSessionStore(sessions, cfg, zerolog.Nop())

	dash := NewDashboardServer(
		store,
		service.NewScheduleService(client, zerolog.Nop()),
		service.NewQualifyingService(cfg, zerolog.Nop()),
		service.NewTelemetryService(client, zerolog.Nop()),
		service.NewPitService(client, zerolog.Nop()),
		zerolog.Nop(),
	)
	mux := http.NewServeMux()
	dash.Register(mux)
	return mux
}

// dashboardRoutes is a complete qualifying weekend: two drivers with
// laps and stints, pit stops, and telemetry for VER's flying lap.
func dashboardRoutes() map[string]string {
	return map[string]string{
		"/meetings?year=2023": `[
			{"meeting_key":1219,"meeting_name":"Singapore Grand Prix",
			 "meeting_official_name":"Formula 1 Singapore Airlines Singapore Grand Prix 2023",
			 "circuit_short_name":"Singapore","year":2023},
			{"meeting_key":1219,"meeting_name":"Singapore Grand Prix",
			 "meeting_official_name":"Formula 1 Singapore Airlines Singapore Grand Prix 2023",
			 "circuit_short_name":"Singapore","year":2023},
			{"meeting_key":1220,"meeting_name":"Japanese Grand Prix","meeting_official_name":"",
			 "circuit_short_name":"Suzuka","year":2023}
		]`,
		"/sessions?meeting_key=1219": `[
			{"session_key":9159,"meeting_key":1219,"session_name":"Practice 3","session_type":"Practice",
			 "date_start":"2023-09-16T09:30:00+00:00","date_end":"2023-09-16T10:30:00+00:00","year":2023},
			{"session_key":9161,"meeting_key":1219,"session_name":"Qualifying","session_type":"Qualifying",
			 "date_start":"2023-09-16T13:00:00+00:00","date_end":"2023-09-16T14:00:00+00:00","year":2023}
		]`,
		"/sessions?session_key=9161": `[
			{"session_key":9161,"meeting_key":1219,"circuit_short_name":"Singapore",
			 "session_name":"Qualifying","session_type":"Qualifying",
			 "date_start":"2023-09-16T13:00:00+00:00","date_end":"2023-09-16T14:00:00+00:00","year":2023}
		]`,
		"/drivers?session_key=9161": `[
			{"driver_number":1,"name_acronym":"VER","full_name":"Max VERSTAPPEN",
			 "team_name":"Red Bull Racing","team_colour":"3671C6","session_key":9161},
			{"driver_number":16,"name_acronym":"LEC","full_name":"Charles LECLERC",
			 "team_name":"Ferrari","team_colour":"F91536","session_key":9161}
		]`,
		"/laps?session_key=9161&driver_number=1": `[
			{"driver_number":1,"lap_number":1,"date_start":null,"duration_sector_1":null,
			 "duration_sector_2":40.1,"duration_sector_3":35.2,"lap_duration":null,
			 "is_pit_out_lap":true,"session_key":9161},
			{"driver_number":1,"lap_number":2,"date_start":"2023-09-16T13:10:00+00:00",
			 "duration_sector_1":26.324,"duration_sector_2":31.485,"duration_sector_3":33.195,
			 "lap_duration":91.005,"is_pit_out_lap":false,"session_key":9161}
		]`,
		"/stints?session_key=9161&driver_number=1": `[
			{"driver_number":1,"stint_number":1,"lap_start":1,"lap_end":2,
			 "compound":"SOFT","tyre_age_at_start":0,"session_key":9161}
		]`,
		"/laps?session_key=9161&driver_number=16": `[
			{"driver_number":16,"lap_number":1,"date_start":"2023-09-16T13:05:00+00:00",
			 "duration_sector_1":27.0,"duration_sector_2":32.0,"duration_sector_3":33.5,
			 "lap_duration":92.5,"is_pit_out_lap":false,"session_key":9161}
		]`,
		"/stints?session_key=9161&driver_number=16": `[
			{"driver_number":16,"stint_number":1,"lap_start":1,"lap_end":1,
			 "compound":"MEDIUM","tyre_age_at_start":2,"session_key":9161}
		]`,
		"/pit?session_key=9161": `[
			{"date":"2023-09-16T13:08:00+00:00","driver_number":1,"lap_number":1,
			 "pit_duration":23.4,"session_key":9161},
			{"date":"2023-09-16T13:30:00+00:00","driver_number":1,"lap_number":3,
			 "pit_duration":23.5,"session_key":9161},
			{"date":"2023-09-16T13:20:00+00:00","driver_number":16,"lap_number":2,
			 "pit_duration":null,"session_key":9161}
		]`,
		"/car_data?session_key=9161&driver_number=1": `[
			{"date":"2023-09-16T13:10:05+00:00","driver_number":1,"speed":301,"throttle":100,
			 "brake":0,"rpm":11500,"n_gear":8,"drs":12,"session_key":9161},
			{"date":"2023-09-16T13:10:10+00:00","driver_number":1,"speed":315,"throttle":100,
			 "brake":0,"rpm":11900,"n_gear":8,"drs":12,"session_key":9161},
			{"date":"2023-09-16T13:20:00+00:00","driver_number":1,"speed":280,"throttle":90,
			 "brake":0,"rpm":11000,"n_gear":7,"drs":0,"session_key":9161}
		]`,
		"/location?session_key=9161&driver_number=1": `[
			{"date":"2023-09-16T13:10:04.900000+00:00","driver_number":1,
			 "x":1024.5,"y":-512.25,"z":7.5,"session_key":9161},
			{"date":"2023-09-16T13:10:09+00:00","driver_number":1,
			 "x":2048.0,"y":-256.0,"z":7.75,"session_key":9161}
		]`,
	}
}

func get(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	rec := get(t, newDashboard(t, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMeetingsEndpoint(t *testing.T) {
	mux := newDashboard(t, dashboardRoutes())
	rec := get(t, mux, "/api/v1/meetings?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	meetings := decode[[]meetingResponse](t, rec)
	require.Len(t, meetings, 2, "duplicate meeting rows collapse")
	assert.Equal(t, "Formula 1 Singapore Airlines Singapore Grand Prix 2023", meetings[0].Name)
	assert.Equal(t, "Japanese Grand Prix", meetings[1].Name, "empty official name falls back")
}

func TestMeetingsEndpointBadYear(t *testing.T) {
	rec := get(t, newDashboard(t, nil), "/api/v1/meetings?year=twenty")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "year")
}

func TestMeetingsEndpointUnknownYear(t *testing.T) {
	rec := get(t, newDashboard(t, nil), "/api/v1/meetings?year=1949")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/meetings/1219/sessions")

	require.Equal(t, http.StatusOK, rec.Code)
	listings := decode[[]sessionListingResponse](t, rec)
	require.Len(t, listings, 2)
	assert.Equal(t, 9161, listings[1].SessionKey)
	assert.Equal(t, "Qualifying", listings[1].SessionType)
}

func TestSessionSummaryEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161")

	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[sessionSummaryResponse](t, rec)
	assert.Equal(t, 9161, summary.SessionKey)
	assert.Equal(t, "Singapore", summary.CircuitShortName)
	assert.NotEmpty(t, summary.AssemblyID)
	assert.Empty(t, summary.IncompleteDrivers)

	require.Len(t, summary.FastestLaps, 2)
	assert.Equal(t, "VER", summary.FastestLaps[0].DriverAcronym)
	assert.Equal(t, "1:31.004", summary.FastestLaps[0].LapTimeText)
	assert.Equal(t, "LEC", summary.FastestLaps[1].DriverAcronym)
}

func TestSessionSummaryUnknownSession(t *testing.T) {
	rec := get(t, newDashboard(t, nil), "/api/v1/sessions/777")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestSessionSummaryBadKey(t *testing.T) {
	rec := get(t, newDashboard(t, nil), "/api/v1/sessions/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionSummaryUpstreamFailure(t *testing.T) {
	routes := dashboardRoutes()
	routes["/sessions?session_key=9161"] = "FAIL"
	rec := get(t, newDashboard(t, routes), "/api/v1/sessions/9161")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "status 500")
}

func TestLapsEndpoint(t *testing.T) {
	mux := newDashboard(t, dashboardRoutes())

	rec := get(t, mux, "/api/v1/sessions/9161/laps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]lapResponse](t, rec), 3)

	rec = get(t, mux, "/api/v1/sessions/9161/laps?driver=1")
	require.Equal(t, http.StatusOK, rec.Code)
	laps := decode[[]lapResponse](t, rec)
	require.Len(t, laps, 2)
	assert.True(t, laps[0].IsPitOutLap)
	assert.Equal(t, "N/A", laps[0].LapTimeText)

	rec = get(t, mux, "/api/v1/sessions/9161/laps?driver=99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQualifyingEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161/qualifying")

	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[qualifyingResponse](t, rec)

	// both flying laps start inside the Q1 window
	require.Len(t, report.Q1, 2)
	assert.Empty(t, report.Q2)
	assert.Empty(t, report.Q3)

	require.Len(t, report.EliminationOrder, 2)
	assert.Equal(t, 1, report.EliminationOrder[0].Position)
	assert.Equal(t, "Q1", report.EliminationOrder[0].Segment)
	assert.Equal(t, "VER", report.EliminationOrder[0].Lap.DriverAcronym)
}

func TestQualifyingEndpointNotQualifying(t *testing.T) {
	routes := dashboardRoutes()
	routes["/sessions?session_key=9161"] = strings.ReplaceAll(
		routes["/sessions?session_key=9161"], `"session_type":"Qualifying"`, `"session_type":"Race"`)
	rec := get(t, newDashboard(t, routes), "/api/v1/sessions/9161/qualifying")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a qualifying session")
}

func TestQualifyingEndpointRedFlag(t *testing.T) {
	routes := dashboardRoutes()
	routes["/sessions?session_key=9161"] = strings.ReplaceAll(
		routes["/sessions?session_key=9161"], "2023-09-16T14:00:00+00:00", "2023-09-16T14:30:00+00:00")
	rec := get(t, newDashboard(t, routes), "/api/v1/sessions/9161/qualifying")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPitsEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161/pits")

	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]pitSummaryResponse](t, rec)
	require.Len(t, summaries, 2)

	assert.Equal(t, 1, summaries[0].DriverNumber)
	assert.Equal(t, 2, summaries[0].Stops)
	assert.Equal(t, []int{1, 3}, summaries[0].Laps)
	require.NotNil(t, summaries[0].MeanDuration)
	assert.Equal(t, 23.45, *summaries[0].MeanDuration)

	assert.Nil(t, summaries[1].MeanDuration, "stop without a duration contributes no mean")
}

func TestPitsEndpointNoStops(t *testing.T) {
	routes := dashboardRoutes()
	delete(routes, "/pit?session_key=9161")
	rec := get(t, newDashboard(t, routes), "/api/v1/sessions/9161/pits")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]pitSummaryResponse](t, rec))
}

func TestChartEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161/chart")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestTelemetryEndpoint(t *testing.T) {
	mux := newDashboard(t, dashboardRoutes())
	rec := get(t, mux, "/api/v1/sessions/9161/drivers/1/telemetry?lap=2")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[telemetryResponse](t, rec)
	assert.Equal(t, "VER", resp.DriverAcronym)
	assert.Equal(t, 2, resp.LapNumber)
	require.Equal(t, 2, resp.SampleCount, "sample outside the lap window is cut")

	first := resp.Samples[0]
	assert.Equal(t, 301, first.Speed)
	assert.Equal(t, 5.0, first.SecondsFromLapStart)
	require.NotNil(t, first.Position)
	assert.Equal(t, 1024.5, first.Position.X)

	require.NotNil(t, resp.Samples[1].Position)
	assert.Equal(t, 2048.0, resp.Samples[1].Position.X)
}

func TestTelemetryEndpointDefaultsToFastest(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161/drivers/1/telemetry")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[telemetryResponse](t, rec).LapNumber)
}

func TestTelemetryEndpointErrors(t *testing.T) {
	mux := newDashboard(t, dashboardRoutes())

	rec := get(t, mux, "/api/v1/sessions/9161/drivers/99/telemetry")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, mux, "/api/v1/sessions/9161/drivers/1/telemetry?lap=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// LEC is in the session but has no recorded car data
	rec = get(t, mux, "/api/v1/sessions/9161/drivers/16/telemetry?lap=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTelemetryChartEndpoint(t *testing.T) {
	rec := get(t, newDashboard(t, dashboardRoutes()), "/api/v1/sessions/9161/drivers/1/telemetry/chart?lap=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}
