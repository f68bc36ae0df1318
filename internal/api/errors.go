package api

import (
	"errors"
	"fmt"
)

// ErrNoData signals a successful response whose array payload was empty.
// Callers decide whether that is fatal for their operation.
var ErrNoData = errors.New("no data returned for request")

// StatusError reports a non-success status code from the OpenF1 API.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openf1 %s returned status %d", e.Endpoint, e.Code)
}
