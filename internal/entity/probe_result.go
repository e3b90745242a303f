package entity

import (
	"net/http"
	"time"
)

// ProbeMode distinguishes the two calls made against the edge function.
type ProbeMode string

const (
	ModeUnauthenticated ProbeMode = "unauthenticated"
	ModeAuthenticated   ProbeMode = "authenticated"
)

// ProbeOutcome classifies how a single probe ended.
type ProbeOutcome string

const (
	OutcomeSuccess          ProbeOutcome = "success"
	OutcomeHTTPError        ProbeOutcome = "http_error"
	OutcomeUnexpectedStatus ProbeOutcome = "unexpected_status"
	OutcomeTimeout          ProbeOutcome = "timeout"
	OutcomeConnectionError  ProbeOutcome = "connection_error"
	OutcomeError            ProbeOutcome = "error"
	OutcomeSkipped          ProbeOutcome = "skipped"
)

// ImportOptions mirrors the `import_options` form field sent with the upload.
type ImportOptions struct {
	CreateNewQuestionnaire bool `json:"create_new_questionnaire"`
	MergeWithExisting      bool `json:"merge_with_existing"`
	PreserveIDs            bool `json:"preserve_ids"`
}

// DefaultImportOptions matches what the CRM frontend sends on a fresh import.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{CreateNewQuestionnaire: true}
}

// ProbeResult is the captured response (or failure) of one probe.
type ProbeResult struct {
	Mode       ProbeMode     `json:"mode"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	Header     http.Header   `json:"header,omitempty"`
	Body       []byte        `json:"body,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Timeout    time.Duration `json:"timeout"`
	Outcome    ProbeOutcome  `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	OK         bool          `json:"ok"`
}
