package constants

import "time"

const (
	SessionCacheTTL = 10 * time.Minute
)

const (
	ExternalAPITimeout = 30 * time.Second
	RequestTimeout     = 2 * time.Minute
)

const (
	RetryInitialDelay = 5 * time.Second
	RetryMaxDelay     = 60 * time.Second
	RetryMaxAttempts  = 5
)

// Regulation lengths of the qualifying segments plus the buffer between
// them. Windows are cut from the session start using these.
const (
	Q1Duration            = 18 * time.Minute
	Q1Break               = 7 * time.Minute
	Q2Duration            = 15 * time.Minute
	Q2Break               = 8 * time.Minute
	QualifyingMaxDuration = 70 * time.Minute
)

// EliminatedPerSegment is fixed by the 20-entrant knockout format.
const EliminatedPerSegment = 5

const (
	ShutdownTimeout = 5 * time.Second
)
