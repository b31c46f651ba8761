package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drblury/pingcheck/connectivity"
	"github.com/drblury/pingcheck/metrics"
	"github.com/drblury/pingcheck/probe"
	"github.com/drblury/pingcheck/responder"
)

type fakeSession struct {
	pingErr error
	hang    bool
}

func (s *fakeSession) Ping(ctx context.Context) (connectivity.Response, error) {
	if s.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.pingErr != nil {
		return nil, s.pingErr
	}
	return connectivity.Response{"ok": 1}, nil
}

func (s *fakeSession) Close(context.Context) error { return nil }

type fakeConnector struct {
	session  *fakeSession
	connects atomic.Int32
}

func (c *fakeConnector) Driver() string { return "fake" }

func (c *fakeConnector) Connect(context.Context, string, time.Duration) (connectivity.Session, error) {
	c.connects.Add(1)
	return c.session, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, session *fakeSession, opts ...Option) http.Handler {
	t.Helper()
	return newCountingHandler(t, &fakeConnector{session: session}, opts...)
}

func newCountingHandler(t *testing.T, connector *fakeConnector, opts ...Option) http.Handler {
	t.Helper()
	prober := connectivity.New("mongodb://user:secret@db:27017",
		connectivity.WithConnector(connector),
		connectivity.WithTimeout(time.Second),
		connectivity.WithLogger(quietLogger()),
	)
	h, err := New(context.Background(), prober, append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) responder.ProblemDetails {
	t.Helper()
	var problem responder.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v (%s)", err, rr.Body.String())
	}
	return problem
}

func TestProbeEndpoint(t *testing.T) {
	t.Run("success returns report", func(t *testing.T) {
		rr := serve(newTestHandler(t, &fakeSession{}), http.MethodGet, "/probe", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var report connectivity.Report
		if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		if !report.OK || report.Driver != "fake" || report.RunID == "" {
			t.Fatalf("unexpected report %+v", report)
		}
		if strings.Contains(report.Target, "secret") {
			t.Fatalf("target must be redacted, got %q", report.Target)
		}
	})

	t.Run("authentication failure is 503 with kind and code", func(t *testing.T) {
		session := &fakeSession{pingErr: &connectivity.ProbeError{
			Kind:    connectivity.KindAuthentication,
			Code:    "18",
			Message: "Authentication failed.",
		}}
		rr := serve(newTestHandler(t, session), http.MethodGet, "/probe", "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		problem := decodeProblem(t, rr)
		if problem.Kind != "authentication" || problem.Code != "18" {
			t.Fatalf("unexpected problem %+v", problem)
		}
	})

	t.Run("timeout override is honoured", func(t *testing.T) {
		start := time.Now()
		rr := serve(newTestHandler(t, &fakeSession{hang: true}), http.MethodPost, "/probe", `{"timeoutMs":30}`)
		if rr.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected 504, got %d: %s", rr.Code, rr.Body.String())
		}
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Fatalf("override not applied, took %s", elapsed)
		}
		if problem := decodeProblem(t, rr); problem.Kind != "timeout" {
			t.Fatalf("expected timeout kind, got %+v", problem)
		}
	})

	t.Run("empty post uses configured timeout", func(t *testing.T) {
		rr := serve(newTestHandler(t, &fakeSession{}), http.MethodPost, "/probe", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("invalid body is rejected by validation", func(t *testing.T) {
		rr := serve(newTestHandler(t, &fakeSession{}), http.MethodPost, "/probe", `{"timeoutMs":"soon"}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("negative timeout without validation", func(t *testing.T) {
		rr := serve(newTestHandler(t, &fakeSession{}, WithoutValidation()), http.MethodPost, "/probe", `{"timeoutMs":-5}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unsupported scheme is a configuration failure", func(t *testing.T) {
		prober := connectivity.New("redis://cache:6379", connectivity.WithLogger(quietLogger()))
		h, err := New(context.Background(), prober, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		rr := serve(h, http.MethodGet, "/probe", "")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
		if problem := decodeProblem(t, rr); problem.Kind != "configuration" {
			t.Fatalf("expected configuration kind, got %+v", problem)
		}
	})
}

func TestProbeRateLimit(t *testing.T) {
	h := newTestHandler(t, &fakeSession{}, WithProbeRateLimit(0.001, 2))

	for i := 0; i < 2; i++ {
		if rr := serve(h, http.MethodGet, "/probe", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	rr := serve(h, http.MethodGet, "/probe", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	if rr := serve(h, http.MethodGet, "/readyz", ""); rr.Code != http.StatusOK {
		t.Fatalf("first readiness check must run despite the spent burst, got %d", rr.Code)
	}
}

func TestReadyzSharesProbeRateLimit(t *testing.T) {
	connector := &fakeConnector{session: &fakeSession{}}
	h := newCountingHandler(t, connector, WithProbeRateLimit(0.001, 1))

	for i := 0; i < 5; i++ {
		rr := serve(h, http.MethodGet, "/readyz", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected cached readiness 200, got %d", i+1, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"database":"ok"`) {
			t.Fatalf("request %d: expected database outcome, got %s", i+1, rr.Body.String())
		}
	}
	if got := connector.connects.Load(); got != 1 {
		t.Fatalf("expected 1 connection for 5 readiness requests, got %d", got)
	}

	if rr := serve(h, http.MethodGet, "/probe", ""); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected readiness to spend the shared burst, got %d", rr.Code)
	}
	if got := connector.connects.Load(); got != 1 {
		t.Fatalf("throttled probe must not connect, got %d connections", got)
	}
}

func TestReadyzReplaysLastFailure(t *testing.T) {
	connector := &fakeConnector{session: &fakeSession{pingErr: errors.New("connection reset by peer")}}
	h := newCountingHandler(t, connector, WithProbeRateLimit(0.001, 1))

	for i := 0; i < 3; i++ {
		if rr := serve(h, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("request %d: expected 503, got %d", i+1, rr.Code)
		}
	}
	if got := connector.connects.Load(); got != 1 {
		t.Fatalf("expected failures to be replayed without reconnecting, got %d connections", got)
	}
}

func TestReadyz(t *testing.T) {
	dependency := probe.Named{Name: "search", Probe: func(context.Context) error { return nil }}

	t.Run("ready", func(t *testing.T) {
		rr := serve(newTestHandler(t, &fakeSession{}, WithDependencies(dependency)), http.MethodGet, "/readyz", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		body := rr.Body.String()
		if !strings.Contains(body, `"database":"ok"`) || !strings.Contains(body, `"search":"ok"`) {
			t.Fatalf("expected both checks in payload, got %s", body)
		}
	})

	t.Run("database down", func(t *testing.T) {
		session := &fakeSession{pingErr: errors.New("connection reset by peer")}
		rr := serve(newTestHandler(t, session, WithDependencies(dependency)), http.MethodGet, "/readyz", "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		problem := decodeProblem(t, rr)
		if !strings.Contains(problem.Detail, `check "database" failed`) || problem.Kind != "unknown" {
			t.Fatalf("unexpected problem %+v", problem)
		}
		if problem.Checks["database"] != "failed" || problem.Checks["search"] != "ok" {
			t.Fatalf("expected every check outcome, got %v", problem.Checks)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeSession{}, WithMetrics(metrics.New()))

	if rr := serve(h, http.MethodGet, "/probe", ""); rr.Code != http.StatusOK {
		t.Fatalf("probe failed: %d", rr.Code)
	}
	rr := serve(h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `pingcheck_probe_runs_total{driver="fake",kind="",outcome="success"} 1`) {
		t.Fatalf("expected probe run to be counted, got %s", rr.Body.String())
	}
}

func TestMetricsEndpointAbsentWithoutRecorder(t *testing.T) {
	rr := serve(newTestHandler(t, &fakeSession{}, WithoutValidation()), http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	if _, err := LoadOpenAPI(context.Background()); err != nil {
		t.Fatalf("embedded document is invalid: %v", err)
	}

	h := newTestHandler(t, &fakeSession{})
	rr := serve(h, http.MethodGet, "/openapi.json", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"operationId": "runProbe"`) {
		t.Fatalf("unexpected document response %d", rr.Code)
	}

	if rr := serve(h, http.MethodGet, "/undocumented", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for undocumented route, got %d", rr.Code)
	}
}

func TestNewRequiresProber(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil prober")
	}
}
