package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/edge-probe/internal/entity"
)

var (
	ErrProbeTimeout = errors.New("probe timed out")
	ErrConnection   = errors.New("connection to endpoint failed")
	ErrProbeFailed  = errors.New("probe failed")
)

// ProbeRequest describes a single multipart upload against the edge function.
type ProbeRequest struct {
	Mode        entity.ProbeMode
	URL         string
	FileName    string
	FileContent []byte
	Options     entity.ImportOptions
	BearerToken string
	APIKey      string
	UserAgent   string
	Timeout     time.Duration
}

// EndpointProber defines the contract for sending one probe request.
type EndpointProber interface {
	// Probe sends the request and captures the response. A non-nil error
	// wraps ErrProbeTimeout, ErrConnection or ErrProbeFailed; the returned
	// result still carries the elapsed time in that case.
	Probe(ctx context.Context, req ProbeRequest) (*entity.ProbeResult, error)
}
