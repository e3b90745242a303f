package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/repository"
	"github.com/user/edge-probe/pkg/metrics"
)

var (
	ErrDiagnosedRecently = errors.New("endpoint was diagnosed recently and force is false")
)

// Target is everything needed to probe one edge function.
type Target struct {
	Endpoint      string
	FileName      string
	FileContent   []byte
	Options       entity.ImportOptions
	AccessToken   string
	BearerToken   string
	APIKey        string
	UserAgent     string
	UnauthTimeout time.Duration
	AuthTimeout   time.Duration
	Cooldown      time.Duration
}

// Diagnoser defines the interface for running a full endpoint diagnosis.
type Diagnoser interface {
	Run(ctx context.Context, force bool) (*entity.Run, error)
}

type diagnoseUseCase struct {
	target       Target
	prober       repository.EndpointProber
	runRepo      repository.RunRepository
	failureRepo  repository.FailureRepository
	cooldownRepo repository.CooldownRepository
	historyRepo  repository.HistoryRepository
	now          func() time.Time

	// One diagnosis at a time: the probes must not interleave.
	mu sync.Mutex
}

// NewDiagnoser creates a new instance of the diagnose use case.
func NewDiagnoser(
	target Target,
	prober repository.EndpointProber,
	runRepo repository.RunRepository,
	failureRepo repository.FailureRepository,
	cooldownRepo repository.CooldownRepository,
	historyRepo repository.HistoryRepository,
) Diagnoser {
	metrics.Init()
	return &diagnoseUseCase{
		target:       target,
		prober:       prober,
		runRepo:      runRepo,
		failureRepo:  failureRepo,
		cooldownRepo: cooldownRepo,
		historyRepo:  historyRepo,
		now:          time.Now,
	}
}

// Run probes the endpoint without and then with authentication, and
// diagnoses the pair. Probe failures are part of the result, not errors;
// an error is returned only when the run could not start.
func (uc *diagnoseUseCase) Run(ctx context.Context, force bool) (*entity.Run, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	endpoint := uc.target.Endpoint
	if force {
		if err := uc.cooldownRepo.Clear(ctx, endpoint); err != nil {
			slog.Warn("Failed to clear cooldown for forced diagnosis", "endpoint", endpoint, "error", err)
		}
	} else {
		cooling, err := uc.cooldownRepo.IsCoolingDown(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to check cooldown for %s: %w", endpoint, err)
		}
		if cooling {
			return nil, ErrDiagnosedRecently
		}
	}

	run := &entity.Run{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		StartedAt: uc.now(),
	}
	slog.Info("Starting diagnosis", "run_id", run.ID, "endpoint", endpoint)

	run.Unauthenticated = uc.probe(ctx, entity.ModeUnauthenticated)
	run.Authenticated = uc.probe(ctx, entity.ModeAuthenticated)

	run.Diagnosis = Diagnose(run.Unauthenticated.OK, run.Authenticated.OK)
	run.ExitCode = ExitCode(run.Succeeded())
	metrics.DiagnosesTotal.WithLabelValues(string(run.Diagnosis.Verdict)).Inc()

	slog.Info("Diagnosis finished",
		"run_id", run.ID,
		"verdict", run.Diagnosis.Verdict,
		"exit_code", run.ExitCode,
	)

	uc.record(ctx, run)
	return run, nil
}

func (uc *diagnoseUseCase) probe(ctx context.Context, mode entity.ProbeMode) *entity.ProbeResult {
	req := repository.ProbeRequest{
		Mode:        mode,
		URL:         uc.target.Endpoint,
		FileName:    uc.target.FileName,
		FileContent: uc.target.FileContent,
		Options:     uc.target.Options,
		UserAgent:   uc.target.UserAgent,
		Timeout:     uc.target.UnauthTimeout,
	}
	expected := http.StatusUnauthorized
	if mode == entity.ModeAuthenticated {
		if uc.target.AccessToken == "" {
			res := &entity.ProbeResult{
				Mode:    mode,
				URL:     uc.target.Endpoint,
				Timeout: uc.target.AuthTimeout,
				Outcome: entity.OutcomeSkipped,
				Error:   "access token not configured",
			}
			slog.Error("Skipping authenticated probe: access token not configured")
			metrics.ProbesTotal.WithLabelValues(string(mode), string(res.Outcome)).Inc()
			uc.trackFailure(ctx, res)
			return res
		}
		req.BearerToken = uc.target.BearerToken
		req.APIKey = uc.target.APIKey
		req.Timeout = uc.target.AuthTimeout
		expected = http.StatusOK
	}

	slog.Debug("Sending probe", "mode", mode, "url", req.URL, "timeout", req.Timeout)
	res, err := uc.prober.Probe(ctx, req)
	if res == nil {
		res = &entity.ProbeResult{Mode: mode, URL: req.URL, Timeout: req.Timeout}
	}

	switch {
	case err != nil:
		if res.Outcome == "" {
			res.Outcome = entity.OutcomeError
		}
		if res.Error == "" {
			res.Error = err.Error()
		}
		slog.Error("Probe failed", "mode", mode, "outcome", res.Outcome, "elapsed_ms", res.Elapsed.Milliseconds(), "error", err)
	case res.StatusCode == expected:
		res.Outcome = entity.OutcomeSuccess
		res.OK = true
	case mode == entity.ModeUnauthenticated:
		res.Outcome = entity.OutcomeUnexpectedStatus
	default:
		res.Outcome = entity.OutcomeHTTPError
	}

	if err == nil {
		slog.Info("Probe completed",
			"mode", mode,
			"status", res.StatusCode,
			"outcome", res.Outcome,
			"elapsed_ms", res.Elapsed.Milliseconds(),
		)
	}

	metrics.ProbesTotal.WithLabelValues(string(mode), string(res.Outcome)).Inc()
	metrics.ProbeDuration.WithLabelValues(string(mode)).Observe(res.Elapsed.Seconds())
	uc.trackFailure(ctx, res)
	return res
}

func (uc *diagnoseUseCase) trackFailure(ctx context.Context, res *entity.ProbeResult) {
	endpoint := uc.target.Endpoint
	if res.OK {
		metrics.FailureStreak.WithLabelValues(string(res.Mode)).Set(0)
		if err := uc.failureRepo.Delete(ctx, endpoint, res.Mode); err != nil {
			// Not critical: the streak is informational.
			slog.Warn("Failed to clear probe failure record", "mode", res.Mode, "error", err)
		}
		return
	}

	reason := res.Error
	if reason == "" {
		reason = fmt.Sprintf("%s: status %d", res.Outcome, res.StatusCode)
	}
	failure := &entity.ProbeFailure{
		Endpoint:             endpoint,
		Mode:                 res.Mode,
		FailureReason:        reason,
		HTTPStatusCode:       res.StatusCode,
		LastAttemptTimestamp: uc.now(),
	}
	if err := uc.failureRepo.SaveOrUpdate(ctx, failure); err != nil {
		slog.Warn("Failed to save probe failure record", "mode", res.Mode, "error", err)
		return
	}
	stored, err := uc.failureRepo.Find(ctx, endpoint, res.Mode)
	if err != nil || stored == nil {
		return
	}
	metrics.FailureStreak.WithLabelValues(string(res.Mode)).Set(float64(stored.ConsecutiveFailures))
	if stored.ConsecutiveFailures > 1 {
		slog.Warn("Probe keeps failing", "mode", res.Mode, "consecutive_failures", stored.ConsecutiveFailures)
	}
}

func (uc *diagnoseUseCase) record(ctx context.Context, run *entity.Run) {
	if err := uc.runRepo.Save(ctx, run); err != nil {
		slog.Error("Failed to save diagnosis run", "run_id", run.ID, "error", err)
	}
	if err := uc.historyRepo.Push(ctx, run); err != nil {
		slog.Error("Failed to push run to history", "run_id", run.ID, "error", err)
	}
	if uc.target.Cooldown > 0 {
		if err := uc.cooldownRepo.MarkDiagnosed(ctx, run.Endpoint, uc.target.Cooldown); err != nil {
			slog.Warn("Failed to mark endpoint as diagnosed", "endpoint", run.Endpoint, "error", err)
		}
	}
}
