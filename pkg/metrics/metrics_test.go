package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPush_SendsProbeCollectors(t *testing.T) {
	Init()
	ProbesTotal.WithLabelValues("authenticated", "timeout").Inc()

	var method, path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := Push(server.URL, "edge_probe"); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPut {
		t.Errorf("got method %s, want PUT", method)
	}
	if path != "/metrics/job/edge_probe" {
		t.Errorf("got path %s, want /metrics/job/edge_probe", path)
	}
	if body == "" {
		t.Error("pushed body is empty")
	}
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := Push(server.URL, "edge_probe")
	if err == nil {
		t.Fatal("want error from failing gateway, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention status 500", err)
	}
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	first := ProbesTotal
	Init()
	if ProbesTotal != first {
		t.Error("Init replaced collectors on second call")
	}
}
