package response

import (
	"net/http"
	"time"

	"github.com/user/edge-probe/internal/entity"
)

// ProbeResponse is a DTO for one probe, mirroring entity.ProbeResult
type ProbeResponse struct {
	Mode       string      `json:"mode"`
	Outcome    string      `json:"outcome"`
	OK         bool        `json:"ok"`
	StatusCode int         `json:"status_code,omitempty"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	TimeoutMS  int64       `json:"timeout_ms"`
	Header     http.Header `json:"header,omitempty"`
	Body       string      `json:"body,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type RunResponse struct {
	ID              string         `json:"id"`
	Endpoint        string         `json:"endpoint"`
	StartedAt       time.Time      `json:"started_at"`
	Verdict         string         `json:"verdict"`
	Findings        []string       `json:"findings"`
	Recommendations []string       `json:"recommendations,omitempty"`
	ExitCode        int            `json:"exit_code"`
	Unauthenticated *ProbeResponse `json:"unauthenticated,omitempty"`
	Authenticated   *ProbeResponse `json:"authenticated,omitempty"`
}

type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

func NewRunResponse(run *entity.Run) RunResponse {
	return RunResponse{
		ID:              run.ID,
		Endpoint:        run.Endpoint,
		StartedAt:       run.StartedAt,
		Verdict:         string(run.Diagnosis.Verdict),
		Findings:        run.Diagnosis.Findings,
		Recommendations: run.Diagnosis.Recommendations,
		ExitCode:        run.ExitCode,
		Unauthenticated: newProbeResponse(run.Unauthenticated),
		Authenticated:   newProbeResponse(run.Authenticated),
	}
}

func NewRunListResponse(runs []*entity.Run) RunListResponse {
	out := RunListResponse{Runs: make([]RunResponse, 0, len(runs)), Count: len(runs)}
	for _, run := range runs {
		out.Runs = append(out.Runs, NewRunResponse(run))
	}
	return out
}

func newProbeResponse(res *entity.ProbeResult) *ProbeResponse {
	if res == nil {
		return nil
	}
	return &ProbeResponse{
		Mode:       string(res.Mode),
		Outcome:    string(res.Outcome),
		OK:         res.OK,
		StatusCode: res.StatusCode,
		ElapsedMS:  res.Elapsed.Milliseconds(),
		TimeoutMS:  res.Timeout.Milliseconds(),
		Header:     res.Header,
		Body:       string(res.Body),
		Error:      res.Error,
	}
}
