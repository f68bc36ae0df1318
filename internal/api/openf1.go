package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

type OpenF1Client struct {
	baseURL       string
	client        *fasthttp.Client
	logger        zerolog.Logger
	retryInitial  time.Duration
	retryCap      time.Duration
	retryAttempts uint64
}

func NewOpenF1Client(cfg *config.Config, logger zerolog.Logger) *OpenF1Client {
	return &OpenF1Client{
		baseURL: strings.TrimRight(cfg.OpenF1BaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger:        logger,
		retryInitial:  cfg.RetryInitialDelay,
		retryCap:      cfg.RetryMaxDelay,
		retryAttempts: cfg.RetryMaxAttempts,
	}
}

// Session resolves a single session by key. The API answers with a
// one-element array; the first element wins.
func (c *OpenF1Client) Session(ctx context.Context, sessionKey int) (*SessionRow, error) {
	rows, err := fetch[SessionRow](ctx, c, "sessions", fmt.Sprintf("session_key=%d", sessionKey))
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (c *OpenF1Client) MeetingSessions(ctx context.Context, meetingKey int) ([]SessionRow, error) {
	return fetch[SessionRow](ctx, c, "sessions", fmt.Sprintf("meeting_key=%d", meetingKey))
}

func (c *OpenF1Client) Meetings(ctx context.Context, year int) ([]MeetingRow, error) {
	return fetch[MeetingRow](ctx, c, "meetings", fmt.Sprintf("year=%d", year))
}

func (c *OpenF1Client) Drivers(ctx context.Context, sessionKey int) ([]DriverRow, error) {
	return fetch[DriverRow](ctx, c, "drivers", fmt.Sprintf("session_key=%d", sessionKey))
}

func (c *OpenF1Client) DriverLaps(ctx context.Context, sessionKey, driverNumber int) ([]LapRow, error) {
	return fetch[LapRow](ctx, c, "laps", fmt.Sprintf("session_key=%d&driver_number=%d", sessionKey, driverNumber))
}

func (c *OpenF1Client) DriverStints(ctx context.Context, sessionKey, driverNumber int) ([]StintRow, error) {
	return fetch[StintRow](ctx, c, "stints", fmt.Sprintf("session_key=%d&driver_number=%d", sessionKey, driverNumber))
}

func (c *OpenF1Client) CarData(ctx context.Context, sessionKey, driverNumber int) ([]CarDataRow, error) {
	return fetch[CarDataRow](ctx, c, "car_data", fmt.Sprintf("session_key=%d&driver_number=%d", sessionKey, driverNumber))
}

func (c *OpenF1Client) Locations(ctx context.Context, sessionKey, driverNumber int) ([]LocationRow, error) {
	return fetch[LocationRow](ctx, c, "location", fmt.Sprintf("session_key=%d&driver_number=%d", sessionKey, driverNumber))
}

func (c *OpenF1Client) Pits(ctx context.Context, sessionKey int) ([]PitRow, error) {
	return fetch[PitRow](ctx, c, "pit", fmt.Sprintf("session_key=%d", sessionKey))
}

// fetch GETs one endpoint and decodes the array payload. 429 responses
// are retried with capped exponential backoff, honoring a numeric
// Retry-After header when it asks for a longer wait than the schedule;
// the retry budget spent, the 429 surfaces as a StatusError. An empty
// array on success becomes ErrNoData.
func fetch[T any](ctx context.Context, c *OpenF1Client, endpoint, query string) ([]T, error) {
	url := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query)

	var rows []T
	attempt := 0
	var retryAfter time.Duration

	backoff := retry.WithMaxRetries(c.retryAttempts,
		retry.WithCappedDuration(c.retryCap, retry.NewExponential(c.retryInitial)))
	hinted := retry.BackoffFunc(func() (time.Duration, bool) {
		wait, stop := backoff.Next()
		if stop {
			return 0, true
		}
		if retryAfter > wait {
			wait = retryAfter
		}
		retryAfter = 0
		return wait, false
	})

	err := retry.Do(ctx, hinted, func(ctx context.Context) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)

		deadline, ok := ctx.Deadline()
		if ok {
			if err := c.client.DoDeadline(req, resp, deadline); err != nil {
				return fmt.Errorf("openf1 %s: %w", endpoint, err)
			}
		} else {
			if err := c.client.Do(req, resp); err != nil {
				return fmt.Errorf("openf1 %s: %w", endpoint, err)
			}
		}

		switch status := resp.StatusCode(); {
		case status == fasthttp.StatusTooManyRequests:
			retryAfter = retryAfterHint(resp)
			attempt++
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("retry_after", retryAfter).
				Msg("rate limited by openf1, backing off")
			return retry.RetryableError(&StatusError{Endpoint: endpoint, Code: status})
		case status != fasthttp.StatusOK:
			return &StatusError{Endpoint: endpoint, Code: status}
		}

		rows = nil
		if err := json.Unmarshal(resp.Body(), &rows); err != nil {
			return fmt.Errorf("decode openf1 %s response: %w", endpoint, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

func retryAfterHint(resp *fasthttp.Response) time.Duration {
	v := string(resp.Header.Peek(fasthttp.HeaderRetryAfter))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
