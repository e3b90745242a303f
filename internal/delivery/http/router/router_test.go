package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/edge-probe/internal/adapter/memory"
	"github.com/user/edge-probe/internal/delivery/http/handler"
	"github.com/user/edge-probe/internal/delivery/http/response"
	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/usecase"
)

type stubDiagnoser struct {
	store *memory.RunStore
	calls int
	force []bool
	err   error
}

func (s *stubDiagnoser) Run(ctx context.Context, force bool) (*entity.Run, error) {
	s.calls++
	s.force = append(s.force, force)
	if s.err != nil {
		return nil, s.err
	}
	run := &entity.Run{
		ID:        "run-1",
		Endpoint:  "https://fn.test/import-questionnaire",
		StartedAt: time.Now(),
		Unauthenticated: &entity.ProbeResult{
			Mode: entity.ModeUnauthenticated, StatusCode: 401, Outcome: entity.OutcomeSuccess, OK: true,
		},
		Authenticated: &entity.ProbeResult{
			Mode: entity.ModeAuthenticated, Outcome: entity.OutcomeTimeout, Timeout: time.Minute, Elapsed: time.Minute,
		},
		Diagnosis: usecase.Diagnose(true, false),
		ExitCode:  1,
	}
	_ = s.store.Save(ctx, run)
	return run, nil
}

func newServer(t *testing.T, diagErr error) (*httptest.Server, *stubDiagnoser) {
	t.Helper()
	store := memory.NewRunStore(0)
	diag := &stubDiagnoser{store: store, err: diagErr}
	h := handler.NewHandler(diag, usecase.NewRunHistory(store, store))
	server := httptest.NewServer(New(h))
	t.Cleanup(server.Close)
	return server, diag
}

func TestHealth(t *testing.T) {
	server, _ := newServer(t, nil)
	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got %d, want 200", resp.StatusCode)
	}
}

func TestDiagnose_ThenLatestAndList(t *testing.T) {
	server, diag := newServer(t, nil)

	resp, err := http.Get(server.URL + "/api/runs/latest")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("latest before any run: got %d, want 404", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/api/diagnose", "application/json", strings.NewReader(`{"force":true}`))
	if err != nil {
		t.Fatal(err)
	}
	var run response.RunResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("diagnose: got %d, want 200", resp.StatusCode)
	}
	if run.Verdict != "auth_hang" || run.ExitCode != 1 {
		t.Errorf("got verdict %s exit %d", run.Verdict, run.ExitCode)
	}
	if run.Authenticated == nil || run.Authenticated.Outcome != "timeout" || run.Authenticated.TimeoutMS != 60000 {
		t.Errorf("got authenticated probe %+v", run.Authenticated)
	}
	if len(diag.force) != 1 || !diag.force[0] {
		t.Errorf("force flag not passed through: %v", diag.force)
	}

	resp, err = http.Get(server.URL + "/api/runs/latest")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("latest after run: got %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/runs?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	var list response.RunListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if list.Count != 1 || len(list.Runs) != 1 || list.Runs[0].ID != "run-1" {
		t.Errorf("got list %+v", list)
	}
}

func TestDiagnose_EmptyBodyDefaultsToNoForce(t *testing.T) {
	server, diag := newServer(t, nil)
	resp, err := http.Post(server.URL+"/api/diagnose", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d, want 200", resp.StatusCode)
	}
	if len(diag.force) != 1 || diag.force[0] {
		t.Errorf("got force %v, want [false]", diag.force)
	}
}

func TestDiagnose_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"cooldown", usecase.ErrDiagnosedRecently, `{}`, http.StatusConflict},
		{"bad body", nil, `{"force":`, http.StatusBadRequest},
		{"internal", context.DeadlineExceeded, `{}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		server, _ := newServer(t, tt.err)
		resp, err := http.Post(server.URL+"/api/diagnose", "application/json", strings.NewReader(tt.body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, resp.StatusCode, tt.want)
		}
	}
}

func TestListRuns_BadLimit(t *testing.T) {
	server, _ := newServer(t, nil)
	resp, err := http.Get(server.URL + "/api/runs?limit=abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got %d, want 400", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newServer(t, nil)
	if resp, err := http.Get(server.URL + "/api/health"); err == nil {
		resp.Body.Close()
	}
	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `http_requests_total{method="GET",path="/api/health",status="200"}`) {
		t.Errorf("route-labelled request counter missing from /metrics")
	}
}
