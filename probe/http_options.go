package probe

import (
	"net/http"
	"slices"
	"time"
)

// HTTPOption configures NewHTTPProbe.
type HTTPOption func(*httpSettings)

type httpSettings struct {
	timeout time.Duration
	allowed []int
	header  http.Header
}

func newHTTPSettings(opts []HTTPOption) httpSettings {
	s := httpSettings{header: http.Header{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// accepts reports whether status counts as healthy: any 2xx by default, or
// exactly the statuses passed to WithHTTPAllowedStatuses.
func (s httpSettings) accepts(status int) bool {
	if len(s.allowed) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(s.allowed, status)
}

// WithHTTPTimeout bounds each request independently of the caller's context.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(s *httpSettings) {
		s.timeout = timeout
	}
}

// WithHTTPAllowedStatuses replaces the 2xx rule with an explicit list.
// Without arguments the 2xx rule stays.
func WithHTTPAllowedStatuses(statuses ...int) HTTPOption {
	return func(s *httpSettings) {
		s.allowed = append(s.allowed, statuses...)
	}
}

// WithHTTPHeader sets a header on every request, such as User-Agent or an
// Authorization token for a protected health endpoint.
func WithHTTPHeader(key, value string) HTTPOption {
	return func(s *httpSettings) {
		s.header.Set(key, value)
	}
}
