package edgefunction

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/repository"
)

// Prober sends multipart import requests to a Supabase Edge Function.
type Prober struct {
	httpClient *http.Client
}

// NewProber creates a prober. Per-request timeouts come from ProbeRequest.
func NewProber() *Prober {
	return NewProberWithClient(&http.Client{})
}

// NewProberWithClient creates a prober around a custom HTTP client.
func NewProberWithClient(client *http.Client) *Prober {
	return &Prober{httpClient: client}
}

// Probe uploads the questionnaire file and captures the response.
// The whole exchange, body included, is bounded by req.Timeout.
func (p *Prober) Probe(ctx context.Context, req repository.ProbeRequest) (*entity.ProbeResult, error) {
	result := &entity.ProbeResult{
		Mode:    req.Mode,
		URL:     req.URL,
		Timeout: req.Timeout,
	}

	body, contentType, err := buildForm(req)
	if err != nil {
		result.Outcome = entity.OutcomeError
		result.Error = err.Error()
		return result, fmt.Errorf("%w: build form: %w", repository.ErrProbeFailed, err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, body)
	if err != nil {
		result.Outcome = entity.OutcomeError
		result.Error = err.Error()
		return result, fmt.Errorf("%w: %w", repository.ErrProbeFailed, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
	if req.Mode == entity.ModeAuthenticated {
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
		httpReq.Header.Set("apikey", req.APIKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		result.Elapsed = time.Since(start)
		return result, p.fail(result, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	result.Elapsed = time.Since(start)
	result.StatusCode = resp.StatusCode
	result.Header = resp.Header
	if err != nil {
		return result, p.fail(result, err)
	}
	result.Body = respBody
	return result, nil
}

func (p *Prober) fail(result *entity.ProbeResult, err error) error {
	result.Error = err.Error()
	sentinel := classify(err)
	switch sentinel {
	case repository.ErrProbeTimeout:
		result.Outcome = entity.OutcomeTimeout
	case repository.ErrConnection:
		result.Outcome = entity.OutcomeConnectionError
	default:
		result.Outcome = entity.OutcomeError
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// classify maps a transport error onto one of the three handled failure kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return repository.ErrProbeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return repository.ErrProbeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return repository.ErrProbeFailed
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var certErr *tls.CertificateVerificationError
	var recordErr tls.RecordHeaderError
	var authorityErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	switch {
	case errors.As(err, &certErr),
		errors.As(err, &recordErr),
		errors.As(err, &authorityErr),
		errors.As(err, &hostErr),
		errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return repository.ErrConnection
	}
	return repository.ErrProbeFailed
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildForm encodes the file part and the import_options field the same way
// the CRM frontend's FormData does.
func buildForm(req repository.ProbeRequest) (*bytes.Buffer, string, error) {
	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		quoteEscaper.Replace(filepath.Base(req.FileName))))
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.FileContent); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("import_options", string(options)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
