package service

import (
	"errors"
	"fmt"
)

// ErrNotQualifying is returned when segmentation is requested for a
// session that is not a qualifying session.
var ErrNotQualifying = errors.New("session is not a qualifying session")

// ErrRedFlagged is returned when a qualifying session ran longer than
// the configured ceiling, which means at least one red flag stopped the
// clock and the fixed segment windows no longer apply.
var ErrRedFlagged = errors.New("qualifying session exceeded the regular time window")

// RosterError reports a driver roster whose car numbers and acronyms do
// not pair up one to one.
type RosterError struct {
	Numbers  int
	Acronyms int
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("driver roster mismatch: %d unique numbers vs %d unique acronyms", e.Numbers, e.Acronyms)
}
