package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/api"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/cache"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/service"
	"github.com/rs/zerolog"
)

// DashboardServer exposes assembled session data over a JSON API, with
// PNG chart endpoints for embedding.
type DashboardServer struct {
	store      *cache.SessionStore
	schedule   *service.ScheduleService
	qualifying *service.QualifyingService
	telemetry  *service.TelemetryService
	pits       *service.PitService
	logger     zerolog.Logger
}

func NewDashboardServer(
	store *cache.SessionStore,
	schedule *service.ScheduleService,
	qualifying *service.QualifyingService,
	telemetry *service.TelemetryService,
	pits *service.PitService,
	logger zerolog.Logger,
) *DashboardServer {
	return &DashboardServer{
		store:      store,
		schedule:   schedule,
		qualifying: qualifying,
		telemetry:  telemetry,
		pits:       pits,
		logger:     logger,
	}
}

// Register attaches all dashboard routes to the mux.
func (s *DashboardServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/meetings", s.handleMeetings)
	mux.HandleFunc("GET /api/v1/meetings/{meetingKey}/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}", s.handleSessionSummary)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/laps", s.handleLaps)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/qualifying", s.handleQualifying)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/pits", s.handlePits)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/chart", s.handleChart)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/drivers/{driverNumber}/telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /api/v1/sessions/{sessionKey}/drivers/{driverNumber}/telemetry/chart", s.handleTelemetryChart)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DashboardServer) handleMeetings(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			s.errorJSON(w, http.StatusBadRequest, "year must be numeric")
			return
		}
		year = parsed
	}

	meetings, err := s.schedule.Meetings(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMeetings(meetings))
}

func (s *DashboardServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	meetingKey, err := pathInt(r, "meetingKey")
	if err != nil {
		s.errorJSON(w, http.StatusBadRequest, "meeting key must be numeric")
		return
	}

	listings, err := s.schedule.Sessions(r.Context(), meetingKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionListings(listings))
}

func (s *DashboardServer) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	assembled, ok := s.assembled(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionSummary(assembled))
}

func (s *DashboardServer) handleLaps(w http.ResponseWriter, r *http.Request) {
	assembled, ok := s.assembled(w, r)
	if !ok {
		return
	}

	laps := assembled.CombinedLaps()
	if v := r.URL.Query().Get("driver"); v != "" {
		number, err := strconv.Atoi(v)
		if err != nil {
			s.errorJSON(w, http.StatusBadRequest, "driver must be a car number")
			return
		}
		entry, found := assembled.DriverByNumber(number)
		if !found {
			s.errorJSON(w, http.StatusNotFound, fmt.Sprintf("driver %d not in session", number))
			return
		}
		laps = entry.Laps
	}
	s.writeJSON(w, http.StatusOK, toLaps(laps))
}

func (s *DashboardServer) handleQualifying(w http.ResponseWriter, r *http.Request) {
	assembled, ok := s.assembled(w, r)
	if !ok {
		return
	}

	report, err := s.qualifying.Segment(assembled)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toQualifying(report))
}

func (s *DashboardServer) handlePits(w http.ResponseWriter, r *http.Request) {
	sessionKey, err := pathInt(r, "sessionKey")
	if err != nil {
		s.errorJSON(w, http.StatusBadRequest, "session key must be numeric")
		return
	}

	summaries, err := s.pits.Summary(r.Context(), sessionKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPitSummaries(summaries))
}

func (s *DashboardServer) handleChart(w http.ResponseWriter, r *http.Request) {
	assembled, ok := s.assembled(w, r)
	if !ok {
		return
	}
	if len(assembled.FastestLaps) == 0 {
		s.errorJSON(w, http.StatusNotFound, "session has no timed laps")
		return
	}

	// qualifying charts follow the elimination order when the session
	// can be segmented, otherwise classification order is close enough
	var report *domain.QualifyingReport
	if assembled.Session.SessionType == domain.SessionTypeQualifying {
		segmented, err := s.qualifying.Segment(assembled)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("segmentation failed, charting classification order")
		} else {
			report = segmented
		}
	}

	data, err := render.FastestLapChart(assembled, report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePNG(w, data)
}

func (s *DashboardServer) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	assembled, entry, lapNumber, ok := s.telemetryTarget(w, r)
	if !ok {
		return
	}

	samples, err := s.telemetry.LapTelemetry(r.Context(), assembled, entry.Driver.Number, lapNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(samples) == 0 {
		s.errorJSON(w, http.StatusNotFound, fmt.Sprintf("no telemetry for driver %d lap %d", entry.Driver.Number, lapNumber))
		return
	}
	s.writeJSON(w, http.StatusOK, toTelemetry(entry.Driver, lapNumber, samples))
}

func (s *DashboardServer) handleTelemetryChart(w http.ResponseWriter, r *http.Request) {
	assembled, entry, lapNumber, ok := s.telemetryTarget(w, r)
	if !ok {
		return
	}

	samples, err := s.telemetry.LapTelemetry(r.Context(), assembled, entry.Driver.Number, lapNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(samples) == 0 {
		s.errorJSON(w, http.StatusNotFound, fmt.Sprintf("no telemetry for driver %d lap %d", entry.Driver.Number, lapNumber))
		return
	}

	data, err := render.TelemetryChart(entry.Driver.Acronym, lapNumber, samples)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePNG(w, data)
}

// assembled resolves the sessionKey path segment into the cached
// assembly, writing the error response itself when that fails.
func (s *DashboardServer) assembled(w http.ResponseWriter, r *http.Request) (*domain.AssembledSession, bool) {
	sessionKey, err := pathInt(r, "sessionKey")
	if err != nil {
		s.errorJSON(w, http.StatusBadRequest, "session key must be numeric")
		return nil, false
	}

	assembled, err := s.store.Get(r.Context(), sessionKey)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return assembled, true
}

// telemetryTarget resolves the driver and lap selector shared by the
// telemetry endpoints. The lap query parameter is a lap number or
// "fastest"; it defaults to the fastest lap.
func (s *DashboardServer) telemetryTarget(w http.ResponseWriter, r *http.Request) (*domain.AssembledSession, domain.DriverLaps, int, bool) {
	assembled, ok := s.assembled(w, r)
	if !ok {
		return nil, domain.DriverLaps{}, 0, false
	}

	driverNumber, err := pathInt(r, "driverNumber")
	if err != nil {
		s.errorJSON(w, http.StatusBadRequest, "driver number must be numeric")
		return nil, domain.DriverLaps{}, 0, false
	}
	entry, found := assembled.DriverByNumber(driverNumber)
	if !found {
		s.errorJSON(w, http.StatusNotFound, fmt.Sprintf("driver %d not in session", driverNumber))
		return nil, domain.DriverLaps{}, 0, false
	}

	lapParam := r.URL.Query().Get("lap")
	if lapParam == "" || lapParam == "fastest" {
		fastest, found := assembled.FastestLapOf(driverNumber)
		if !found {
			s.errorJSON(w, http.StatusNotFound, fmt.Sprintf("driver %d has no timed lap", driverNumber))
			return nil, domain.DriverLaps{}, 0, false
		}
		return assembled, entry, fastest.LapNumber, true
	}

	lapNumber, err := strconv.Atoi(lapParam)
	if err != nil {
		s.errorJSON(w, http.StatusBadRequest, `lap must be a lap number or "fastest"`)
		return nil, domain.DriverLaps{}, 0, false
	}
	return assembled, entry, lapNumber, true
}

func pathInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.PathValue(name))
}

func (s *DashboardServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *DashboardServer) writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to write chart response")
	}
}

func (s *DashboardServer) errorJSON(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps upstream and domain failures onto response codes:
// missing data is 404, misuse is 400, a red-flagged session is 422 and
// upstream trouble is 502.
func (s *DashboardServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var statusErr *api.StatusError
	var rosterErr *service.RosterError
	switch {
	case errors.Is(err, api.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotQualifying):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrRedFlagged):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &statusErr), errors.As(err, &rosterErr):
		status = http.StatusBadGateway
	}

	logger := zerolog.Ctx(r.Context())
	evt := logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	s.errorJSON(w, status, err.Error())
}
