package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
)

func newHealthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.2.0"}`))
	})
	mux.HandleFunc("/api/notifications/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		// Empty payload is rejected, which is exactly what the probe expects.
		w.WriteHeader(http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDetailedCheckHealthy(t *testing.T) {
	srv := newHealthyServer(t)
	p := NewProbe()

	result := p.DetailedCheck(context.Background(), srv.URL, 0)

	if result.Status != types.HealthHealthy {
		t.Fatalf("expected healthy, got %s (errors: %v)", result.Status, result.Errors)
	}
	if result.Version != "1.2.0" {
		t.Errorf("expected version 1.2.0, got %q", result.Version)
	}
	if len(result.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoint results, got %d", len(result.Endpoints))
	}
	api := result.Endpoints[DefaultAPIProbePath]
	if !api.Success {
		t.Errorf("API probe should accept 400: %s", api.Error)
	}
	if api.StatusCode != http.StatusBadRequest {
		t.Errorf("expected API status 400, got %d", api.StatusCode)
	}
}

func TestDetailedCheckUnauthorizedAPIIsHealthy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/notifications/send", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	result := NewProbe().DetailedCheck(context.Background(), srv.URL, 0)

	if result.Status != types.HealthHealthy {
		t.Fatalf("expected healthy, got %s", result.Status)
	}
	if !result.Endpoints[DefaultAPIProbePath].Success {
		t.Error("401 from the API probe should count as success")
	}
}

func TestDetailedCheckUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := NewProbe().DetailedCheck(context.Background(), srv.URL, 0)

	if result.Status != types.HealthUnhealthy {
		t.Fatalf("expected unhealthy, got %s", result.Status)
	}
	if len(result.Errors) == 0 {
		t.Error("expected an error describing the bad status")
	}
	// The API probe is conditional on the root check passing.
	if _, ok := result.Endpoints[DefaultAPIProbePath]; ok {
		t.Error("API endpoint should not be probed when the root check fails")
	}
}

func TestDetailedCheckUnreachable(t *testing.T) {
	// A closed server refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := NewProbe().DetailedCheck(context.Background(), url, time.Second)

	if result.Status != types.HealthUnreachable {
		t.Fatalf("expected unreachable, got %s", result.Status)
	}
	root := result.Endpoints["/"]
	if root.StatusCode != 0 {
		t.Errorf("expected status code 0, got %d", root.StatusCode)
	}
	if root.Error == "" {
		t.Error("expected a descriptive error")
	}
}

func TestDetailedCheckBadURLIsError(t *testing.T) {
	result := NewProbe().DetailedCheck(context.Background(), "http://bad url\x7f", time.Second)

	if result.Status != types.HealthError {
		t.Fatalf("expected error state, got %s", result.Status)
	}
}

func TestTestEndpointTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	result := NewProbe().TestEndpoint(context.Background(), srv.URL, EndpointOptions{
		Timeout: 50 * time.Millisecond,
	})

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.StatusCode != 0 {
		t.Errorf("expected status code 0 on timeout, got %d", result.StatusCode)
	}
	if result.Error == "" {
		t.Error("expected a timeout error message")
	}
}

func TestTestEndpointDefaultExpectation(t *testing.T) {
	srv := newHealthyServer(t)

	result := NewProbe().TestEndpoint(context.Background(), srv.URL+"/", EndpointOptions{})
	if !result.Success {
		t.Fatalf("expected success with default 200 expectation: %s", result.Error)
	}
	if result.Data == "" {
		t.Error("expected the response body to be captured")
	}
}

func TestCheckTargetSelection(t *testing.T) {
	p := NewProbe()
	env := &types.Environment{Name: "staging", RenderServiceName: "stocksure-staging"}

	_, err := p.Check(context.Background(), CheckOptions{})
	if !errdefs.HasCode(err, errdefs.CodeConfigurationTarget) {
		t.Errorf("no target: expected %s, got %v", errdefs.CodeConfigurationTarget, err)
	}

	_, err = p.Check(context.Background(), CheckOptions{URL: "http://example.test", Environment: env})
	if !errdefs.HasCode(err, errdefs.CodeConfigurationTarget) {
		t.Errorf("both targets: expected %s, got %v", errdefs.CodeConfigurationTarget, err)
	}
}

func TestCheckDerivesURLFromEnvironment(t *testing.T) {
	// The derived URL points at a .onrender.com host that does not resolve
	// in tests; the check must still return a result, not an error.
	p := NewProbe()
	p.Client = &http.Client{Timeout: 100 * time.Millisecond}

	result, err := p.Check(context.Background(), CheckOptions{
		Environment: &types.Environment{Name: "staging", RenderServiceName: "stocksure-staging"},
		Timeout:     100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.URL != "https://stocksure-staging.onrender.com" {
		t.Errorf("unexpected derived URL %q", result.URL)
	}
	if result.Status == types.HealthHealthy {
		t.Errorf("expected a failing state, got %s", result.Status)
	}
}

func TestResultError(t *testing.T) {
	tests := []struct {
		status   types.HealthState
		wantCode string
	}{
		{types.HealthHealthy, ""},
		{types.HealthUnreachable, errdefs.CodeNetworkUnreachable},
		{types.HealthUnhealthy, errdefs.CodeHealthCheckFailed},
		{types.HealthError, errdefs.CodeHealthCheckFailed},
	}
	for _, tt := range tests {
		err := ResultError(&types.HealthResult{Status: tt.status, URL: "https://svc.onrender.com"})
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("%s: expected nil, got %v", tt.status, err)
			}
			continue
		}
		if !errdefs.HasCode(err, tt.wantCode) {
			t.Errorf("%s: expected code %s, got %v", tt.status, tt.wantCode, err)
		}
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"version":"2.0.1"}`, "2.0.1"},
		{`{"status":"ok"}`, ""},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := extractVersion(tt.body); got != tt.want {
			t.Errorf("extractVersion(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
