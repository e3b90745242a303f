package entity

import "time"

// Run is one complete diagnosis: both probes, the verdict and the exit code
// a CLI invocation would have returned.
type Run struct {
	ID              string       `json:"id"`
	Endpoint        string       `json:"endpoint"`
	StartedAt       time.Time    `json:"started_at"`
	Unauthenticated *ProbeResult `json:"unauthenticated"`
	Authenticated   *ProbeResult `json:"authenticated"`
	Diagnosis       Diagnosis    `json:"diagnosis"`
	ExitCode        int          `json:"exit_code"`
}

// Succeeded reports whether the authenticated import call went through.
func (r *Run) Succeeded() bool {
	return r.Authenticated != nil && r.Authenticated.OK
}
