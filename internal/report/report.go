// Package report renders diagnosis runs for a terminal.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/edge-probe/internal/entity"
)

const tokenPrefixLen = 20

// Printer writes human-readable probe results and diagnoses.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Upload describes the file sent with the authenticated probe.
type Upload struct {
	FileName    string
	Size        int
	AccessToken string
}

// Run prints a complete run in the order the probes were made.
func (p *Printer) Run(run *entity.Run, upload Upload) {
	fmt.Fprintf(p.w, "Testing Edge Function %s\n", run.Endpoint)
	if run.Unauthenticated != nil {
		p.Unauthenticated(run.Unauthenticated)
	}
	if run.Authenticated != nil {
		p.Authenticated(run.Authenticated, upload)
	}
	p.Diagnosis(run.Diagnosis)
}

// Unauthenticated prints the short comparison probe.
func (p *Printer) Unauthenticated(res *entity.ProbeResult) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Probe without authentication (for comparison)")
	switch res.Outcome {
	case entity.OutcomeTimeout:
		fmt.Fprintf(p.w, "  Timed out after %s even without authentication: the function itself is failing\n", seconds(res.Elapsed.Seconds()))
		return
	case entity.OutcomeConnectionError, entity.OutcomeError:
		fmt.Fprintf(p.w, "  Error: %s\n", res.Error)
		return
	}
	fmt.Fprintf(p.w, "  Response time: %s\n", seconds(res.Elapsed.Seconds()))
	fmt.Fprintf(p.w, "  Status code: %d\n", res.StatusCode)
	if res.OK {
		fmt.Fprintln(p.w, "  Fast 401: the function is responding")
	} else {
		fmt.Fprintf(p.w, "  Unexpected response: %d\n", res.StatusCode)
	}
}

// Authenticated prints the full authenticated probe, headers and body included.
func (p *Printer) Authenticated(res *entity.ProbeResult, upload Upload) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Probe with authentication")
	fmt.Fprintf(p.w, "  URL: %s\n", res.URL)
	if res.Outcome == entity.OutcomeSkipped {
		fmt.Fprintf(p.w, "  Skipped: %s\n", res.Error)
		return
	}
	fmt.Fprintf(p.w, "  File: %s (%d bytes)\n", upload.FileName, upload.Size)
	fmt.Fprintf(p.w, "  Token: %s\n", TokenPrefix(upload.AccessToken))

	switch res.Outcome {
	case entity.OutcomeTimeout:
		fmt.Fprintf(p.w, "  Timed out after %s\n", seconds(res.Elapsed.Seconds()))
		fmt.Fprintf(p.w, "  The request takes longer than %s (timeout)\n", seconds(res.Timeout.Seconds()))
		fmt.Fprintln(p.w, "  This is probably what causes the endless loop in the frontend")
		return
	case entity.OutcomeConnectionError:
		fmt.Fprintf(p.w, "  Connection error: %s\n", res.Error)
		return
	case entity.OutcomeError:
		fmt.Fprintf(p.w, "  Unexpected error: %s\n", res.Error)
		return
	}

	fmt.Fprintf(p.w, "  Response time: %s\n", seconds(res.Elapsed.Seconds()))
	fmt.Fprintf(p.w, "  Status code: %d\n", res.StatusCode)
	fmt.Fprintln(p.w, "  Response headers:")
	for _, line := range HeaderLines(res.Header) {
		fmt.Fprintf(p.w, "    %s\n", line)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "  Response body:")
	if title := HTMLTitle(res.Header.Get("Content-Type"), res.Body); title != "" {
		fmt.Fprintf(p.w, "  (HTML page: %s)\n", title)
	}
	fmt.Fprintln(p.w, FormatBody(res.Body))

	if res.OK {
		fmt.Fprintln(p.w, "  Test succeeded")
	} else {
		fmt.Fprintln(p.w, "  Test failed with an HTTP error")
	}
}

// Diagnosis prints the verdict with its findings and recommendations.
func (p *Printer) Diagnosis(d entity.Diagnosis) {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "DIAGNOSIS: %s\n", d.Verdict)
	for _, f := range d.Findings {
		fmt.Fprintf(p.w, "- %s\n", f)
	}
	if len(d.Recommendations) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, "RECOMMENDED ACTIONS:")
		for _, r := range d.Recommendations {
			fmt.Fprintf(p.w, "- %s\n", r)
		}
	}
}

// FormatBody pretty-prints JSON bodies with a two-space indent and returns
// anything else verbatim. Escaped string content is printed as plain text, so
// "\u00e3" shows as "ã". Key order is kept as the server sent it.
func FormatBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return "(empty body)"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "  "); err != nil {
		return string(body)
	}
	return string(unescapeStrings(out.Bytes()))
}

// unescapeStrings re-encodes every string literal of valid JSON without
// unicode or HTML escaping.
func unescapeStrings(doc []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(doc); {
		if doc[i] != '"' {
			out.WriteByte(doc[i])
			i++
			continue
		}
		end := i + 1
		for end < len(doc) && doc[end] != '"' {
			if doc[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(doc) {
			out.Write(doc[i:])
			break
		}
		lit := doc[i : end+1]
		var s string
		if err := json.Unmarshal(lit, &s); err != nil {
			out.Write(lit)
		} else {
			writeString(&out, s, lit)
		}
		i = end + 1
	}
	return out.Bytes()
}

func writeString(out *bytes.Buffer, s string, fallback []byte) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		out.Write(fallback)
		return
	}
	out.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// HeaderLines returns "Name: value" lines sorted by header name.
func HeaderLines(h map[string][]string) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, strings.Join(h[name], ", ")))
	}
	return lines
}

// HTMLTitle extracts the <title> of an HTML body, such as a gateway error page.
func HTMLTitle(contentType string, body []byte) string {
	if !strings.Contains(contentType, "text/html") {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || trimmed[0] != '<' {
			return ""
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// TokenPrefix shows only the start of a secret.
func TokenPrefix(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) > tokenPrefixLen {
		token = token[:tokenPrefixLen]
	}
	return token + "..."
}

func seconds(s float64) string {
	return fmt.Sprintf("%.2f seconds", s)
}
