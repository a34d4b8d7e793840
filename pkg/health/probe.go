package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/log"
	"github.com/stocksure/deployctl/pkg/render"
	"github.com/stocksure/deployctl/pkg/types"
)

const (
	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultAPIProbePath is the routed API endpoint probed after the root
	// check. The endpoint enforces validation, so a 400 or 401 response
	// proves routing is live without exercising the endpoint itself.
	DefaultAPIProbePath = "/api/notifications/send"

	maxBodyBytes = 64 * 1024
)

// EndpointOptions configures a single endpoint test.
type EndpointOptions struct {
	// Method defaults to GET.
	Method string

	// Headers are added to the request.
	Headers map[string]string

	// Body is the request payload, if any.
	Body []byte

	// ExpectStatuses are the status codes that count as success. Empty
	// means 200 only. Failure codes are legitimate entries here: a probe
	// that expects 400/401 is asserting the route exists and validates.
	ExpectStatuses []int

	// Timeout bounds the request (DefaultTimeout if zero).
	Timeout time.Duration
}

// failureKind distinguishes the non-throwing failure modes of an endpoint
// test.
type failureKind int

const (
	failNone failureKind = iota
	failRequest
	failConnection
	failTimeout
)

// Probe issues HTTP requests against a deployed service and classifies its
// health. Probes never return errors from endpoint tests: every failure
// mode resolves to a result value.
type Probe struct {
	// Client is the HTTP client to use (allows custom configuration).
	Client *http.Client

	// APIProbePath overrides DefaultAPIProbePath.
	APIProbePath string
}

// NewProbe creates a probe with a default client.
func NewProbe() *Probe {
	return &Probe{
		Client:       &http.Client{},
		APIProbePath: DefaultAPIProbePath,
	}
}

// CheckOptions selects the probe target. Exactly one of URL and Environment
// must be set.
type CheckOptions struct {
	URL         string
	Environment *types.Environment
	Timeout     time.Duration
}

// Check resolves the target URL and runs the detailed health check.
func (p *Probe) Check(ctx context.Context, opts CheckOptions) (*types.HealthResult, error) {
	url := opts.URL
	switch {
	case url != "" && opts.Environment != nil:
		return nil, errdefs.New(errdefs.CodeConfigurationTarget,
			"both a URL and an environment were given",
			"pass either --url or --environment, not both")
	case url == "" && opts.Environment == nil:
		return nil, errdefs.New(errdefs.CodeConfigurationTarget,
			"no health check target",
			"pass --url or --environment")
	case url == "":
		url = render.ServiceURL(opts.Environment)
	}
	return p.DetailedCheck(ctx, url, opts.Timeout), nil
}

// DetailedCheck probes the service root, then (only if the root answers
// 200) the API probe path. The two tests are sequential: the second is
// conditioned on the first's outcome.
func (p *Probe) DetailedCheck(ctx context.Context, url string, timeout time.Duration) *types.HealthResult {
	logger := log.WithComponent("health")

	result := &types.HealthResult{
		URL:       url,
		Endpoints: make(map[string]types.EndpointResult),
	}

	root, rootFail := p.testEndpoint(ctx, url+"/", EndpointOptions{
		Method:         http.MethodGet,
		ExpectStatuses: []int{http.StatusOK},
		Timeout:        timeout,
	})
	result.Endpoints["/"] = root
	result.ResponseTime = root.ResponseTime

	switch {
	case root.Success:
		result.Status = types.HealthHealthy
		result.Version = extractVersion(root.Data)
	case rootFail == failNone:
		// Got a response, wrong status.
		result.Status = types.HealthUnhealthy
		result.Errors = append(result.Errors,
			fmt.Sprintf("root endpoint returned %d", root.StatusCode))
	case rootFail == failRequest:
		result.Status = types.HealthError
		result.Errors = append(result.Errors, root.Error)
	default:
		result.Status = types.HealthUnreachable
		result.Errors = append(result.Errors, root.Error)
	}

	if !root.Success {
		logger.Debug().Str("url", url).Str("status", string(result.Status)).Msg("root check failed")
		return result
	}

	// The API endpoint rejects an empty payload, so 400 and 401 both prove
	// the route is alive and enforcing validation.
	api, _ := p.testEndpoint(ctx, url+p.apiPath(), EndpointOptions{
		Method:         http.MethodPost,
		Headers:        map[string]string{"Content-Type": "application/json"},
		Body:           []byte(`{}`),
		ExpectStatuses: []int{http.StatusBadRequest, http.StatusUnauthorized},
		Timeout:        timeout,
	})
	result.Endpoints[p.apiPath()] = api
	if !api.Success {
		result.Errors = append(result.Errors,
			fmt.Sprintf("API probe did not respond as expected: %s", api.Error))
	}

	return result
}

// TestEndpoint issues one request and captures the outcome as a result.
// Connection errors, timeouts, and request-construction errors are three
// distinct non-throwing outcomes with StatusCode 0 and a descriptive error
// string; TestEndpoint never fails past its own boundary.
func (p *Probe) TestEndpoint(ctx context.Context, url string, opts EndpointOptions) types.EndpointResult {
	result, _ := p.testEndpoint(ctx, url, opts)
	return result
}

func (p *Probe) testEndpoint(ctx context.Context, url string, opts EndpointOptions) (types.EndpointResult, failureKind) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	expect := opts.ExpectStatuses
	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return types.EndpointResult{
			StatusCode:   0,
			ResponseTime: time.Since(start),
			Error:        fmt.Sprintf("failed to build request: %v", err),
		}, failRequest
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		elapsed := time.Since(start)
		if isTimeout(err) {
			return types.EndpointResult{
				StatusCode:   0,
				ResponseTime: elapsed,
				Error:        fmt.Sprintf("request timed out after %v", timeout),
			}, failTimeout
		}
		return types.EndpointResult{
			StatusCode:   0,
			ResponseTime: elapsed,
			Error:        fmt.Sprintf("connection failed: %v", err),
		}, failConnection
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)

	for _, code := range expect {
		if resp.StatusCode == code {
			return types.EndpointResult{
				Success:      true,
				StatusCode:   resp.StatusCode,
				ResponseTime: elapsed,
				Data:         string(data),
			}, failNone
		}
	}
	return types.EndpointResult{
		StatusCode:   resp.StatusCode,
		ResponseTime: elapsed,
		Data:         string(data),
		Error:        fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}, failNone
}

func (p *Probe) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *Probe) apiPath() string {
	if p.APIProbePath != "" {
		return p.APIProbePath
	}
	return DefaultAPIProbePath
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ResultError maps a probe result onto the error taxonomy: nil for a
// healthy service, a network-kind error when the service could not be
// reached, and a health-check error for every other failing state.
func ResultError(result *types.HealthResult) error {
	switch result.Status {
	case types.HealthHealthy:
		return nil
	case types.HealthUnreachable:
		return errdefs.New(errdefs.CodeNetworkUnreachable,
			fmt.Sprintf("service at %s is unreachable", result.URL),
			"check that the service is deployed and the URL is correct")
	default:
		return errdefs.New(errdefs.CodeHealthCheckFailed,
			fmt.Sprintf("service is %s", result.Status),
			"check the service logs in the Render dashboard")
	}
}

// extractVersion pulls a version field out of a JSON response body, if the
// service reports one.
func extractVersion(body string) string {
	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Version
}
