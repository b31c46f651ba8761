package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Func is a health check. A nil error means the resource is available.
type Func func(ctx context.Context) error

// PingFunc is the signature of ping style checks such as (*connectivity.Prober).Check.
type PingFunc func(ctx context.Context) error

// Named pairs a probe with the name it is reported under.
type Named struct {
	Name  string
	Probe Func
}

// HTTPDoer is the part of *http.Client that NewHTTPProbe uses.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewPingProbe reports fn's failures under name. A nil fn always fails.
func NewPingProbe(name string, fn PingFunc) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return fmt.Errorf("%s probe: ping function is nil", name)
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// maxDrain caps how much of a health response body is read before the
// connection is returned to the pool.
const maxDrain = 64 << 10

// NewHTTPProbe requests target and fails unless the status is accepted
// (2xx unless WithHTTPAllowedStatuses says otherwise). A nil client uses
// http.DefaultClient and an empty method means GET.
func NewHTTPProbe(name, method, target string, client HTTPDoer, opts ...HTTPOption) Func {
	settings := newHTTPSettings(opts)
	if client == nil {
		client = http.DefaultClient
	}
	target = strings.TrimSpace(target)
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	return func(ctx context.Context) error {
		if target == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if settings.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, settings.timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return fmt.Errorf("%s probe: build request: %w", name, err)
		}
		for key, values := range settings.header {
			req.Header[key] = slices.Clone(values)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("%s probe request failed: %w", name, err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

		if !settings.accepts(resp.StatusCode) {
			return fmt.Errorf("%s probe: unexpected status %d %s", name, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil
	}
}

// NewHTTPDependencyProbes builds one GET probe per target, named after the
// target host. Blank targets are skipped.
func NewHTTPDependencyProbes(targets []string, client HTTPDoer, opts ...HTTPOption) []Named {
	probes := make([]Named, 0, len(targets))
	for _, target := range targets {
		trimmed := strings.TrimSpace(target)
		if trimmed == "" {
			continue
		}
		name := dependencyName(trimmed)
		probes = append(probes, Named{Name: name, Probe: NewHTTPProbe(name, http.MethodGet, trimmed, client, opts...)})
	}
	return probes
}

func dependencyName(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host
}
