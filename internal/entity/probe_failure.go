package entity

import "time"

// ProbeFailure mirrors the `probe_failures` PostgreSQL table schema.
type ProbeFailure struct {
	ID                   int64
	Endpoint             string
	Mode                 ProbeMode
	FailureReason        string
	HTTPStatusCode       int
	LastAttemptTimestamp time.Time
	ConsecutiveFailures  int
}
