package edgefunction

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/repository"
)

func newRequest(mode entity.ProbeMode, url string) repository.ProbeRequest {
	return repository.ProbeRequest{
		Mode:        mode,
		URL:         url,
		FileName:    "/tmp/data/test_questionnaire.json",
		FileContent: []byte(`{"title":"LGPD"}`),
		Options:     entity.DefaultImportOptions(),
		BearerToken: "anon-key",
		APIKey:      "anon-key",
		UserAgent:   "SeusDados-CRM-Test/1.0",
		Timeout:     5 * time.Second,
	}
}

func TestProbe_MultipartShape(t *testing.T) {
	var (
		fileName, fileType, fileBody string
		options                      entity.ImportOptions
		auth, apikey, ua             string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part: %v", err)
			return
		}
		b, _ := io.ReadAll(f)
		fileName, fileType, fileBody = hdr.Filename, hdr.Header.Get("Content-Type"), string(b)
		if err := json.Unmarshal([]byte(r.FormValue("import_options")), &options); err != nil {
			t.Errorf("import_options: %v", err)
		}
		auth, apikey, ua = r.Header.Get("Authorization"), r.Header.Get("apikey"), r.UserAgent()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "abc")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	res, err := NewProber().Probe(context.Background(), newRequest(entity.ModeAuthenticated, server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", res.StatusCode)
	}
	if string(res.Body) != `{"success":true}` {
		t.Errorf("got body %q", res.Body)
	}
	if res.Header.Get("X-Request-Id") != "abc" {
		t.Errorf("response headers not captured: %v", res.Header)
	}
	if res.Elapsed <= 0 {
		t.Errorf("elapsed not measured: %v", res.Elapsed)
	}
	if fileName != "test_questionnaire.json" {
		t.Errorf("got filename %q, want base name", fileName)
	}
	if fileType != "application/json" {
		t.Errorf("got file content type %q, want application/json", fileType)
	}
	if fileBody != `{"title":"LGPD"}` {
		t.Errorf("got file body %q", fileBody)
	}
	if options != entity.DefaultImportOptions() {
		t.Errorf("got import options %+v", options)
	}
	if auth != "Bearer anon-key" || apikey != "anon-key" {
		t.Errorf("got auth headers %q / %q", auth, apikey)
	}
	if ua != "SeusDados-CRM-Test/1.0" {
		t.Errorf("got user agent %q", ua)
	}
}

func TestProbe_UnauthenticatedOmitsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" || r.Header.Get("apikey") != "" {
			t.Errorf("credentials sent on unauthenticated probe: %v", r.Header)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	res, err := NewProber().Probe(context.Background(), newRequest(entity.ModeUnauthenticated, server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", res.StatusCode)
	}
}

func TestProbe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	req := newRequest(entity.ModeAuthenticated, server.URL)
	req.Timeout = 50 * time.Millisecond

	res, err := NewProber().Probe(context.Background(), req)
	if !errors.Is(err, repository.ErrProbeTimeout) {
		t.Fatalf("want ErrProbeTimeout, got %v", err)
	}
	if res.Outcome != entity.OutcomeTimeout {
		t.Errorf("got outcome %s, want timeout", res.Outcome)
	}
	if res.Elapsed < 45*time.Millisecond {
		t.Errorf("elapsed %v shorter than the timeout", res.Elapsed)
	}
}

func TestProbe_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res, err := NewProber().Probe(context.Background(), newRequest(entity.ModeUnauthenticated, url))
	if !errors.Is(err, repository.ErrConnection) {
		t.Fatalf("want ErrConnection, got %v", err)
	}
	if res.Outcome != entity.OutcomeConnectionError {
		t.Errorf("got outcome %s, want connection_error", res.Outcome)
	}
}

func TestProbe_InvalidURL(t *testing.T) {
	res, err := NewProber().Probe(context.Background(), newRequest(entity.ModeUnauthenticated, "://bad"))
	if !errors.Is(err, repository.ErrProbeFailed) {
		t.Fatalf("want ErrProbeFailed, got %v", err)
	}
	if res.Outcome != entity.OutcomeError {
		t.Errorf("got outcome %s, want error", res.Outcome)
	}
}

func TestProbe_UntrustedCertificateIsConnectionError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	res, err := NewProber().Probe(context.Background(), newRequest(entity.ModeUnauthenticated, server.URL))
	if !errors.Is(err, repository.ErrConnection) {
		t.Fatalf("want ErrConnection, got %v", err)
	}
	if res.Outcome != entity.OutcomeConnectionError {
		t.Errorf("got outcome %s, want connection_error", res.Outcome)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), repository.ErrProbeTimeout},
		{"canceled", context.Canceled, repository.ErrProbeFailed},
		{"tls record", fmt.Errorf("handshake: %w", tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}), repository.ErrConnection},
		{"unknown authority", fmt.Errorf("verify: %w", x509.UnknownAuthorityError{}), repository.ErrConnection},
		{"hostname", fmt.Errorf("verify: %w", x509.HostnameError{Certificate: &x509.Certificate{}, Host: "fn.test"}), repository.ErrConnection},
		{"eof", fmt.Errorf("read: %w", io.EOF), repository.ErrConnection},
		{"other", errors.New("boom"), repository.ErrProbeFailed},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("%s: classify = %v, want %v", tt.name, got, tt.want)
		}
	}
}
