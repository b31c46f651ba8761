package info

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/drblury/pingcheck/probe"
	"github.com/drblury/pingcheck/responder"
)

// InfoProvider returns the payload exposed by the version endpoint.
type InfoProvider func() any

// DocumentProvider returns the raw OpenAPI document.
type DocumentProvider func() ([]byte, error)

// InfoOption configures an InfoHandler.
type InfoOption func(*InfoHandler)

const defaultProbeTimeout = 2 * time.Second

// Check is a named liveness or readiness probe.
type Check = probe.Named

// NamedCheck pairs a probe with the name reported for it.
func NamedCheck(name string, fn probe.Func) Check {
	return Check{Name: name, Probe: fn}
}

// BuildInfo is the default version payload.
type BuildInfo struct {
	Module    string `json:"module"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// InfoHandler serves the status, probe, version, and OpenAPI endpoints.
type InfoHandler struct {
	*responder.Responder
	infoProvider     InfoProvider
	documentProvider DocumentProvider
	probeTimeout     time.Duration
	livenessChecks   []Check
	readinessChecks  []Check
}

// NewInfoHandler constructs an InfoHandler reporting the binary's build
// information and no checks.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder:    responder.NewResponder(),
		infoProvider: func() any { return ReadBuildInfo() },
		documentProvider: func() ([]byte, error) {
			return nil, errors.New("openapi document provider not configured")
		},
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// ReadBuildInfo collects module and VCS metadata embedded by the Go
// toolchain.
func ReadBuildInfo() BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return BuildInfo{Version: "(unknown)"}
	}
	out := BuildInfo{
		Module:    bi.Main.Path,
		Version:   bi.Main.Version,
		GoVersion: bi.GoVersion,
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			out.Revision = setting.Value
		case "vcs.modified":
			out.Modified = setting.Value == "true"
		}
	}
	return out
}

// WithInfoResponder replaces the responder used for payloads and errors.
func WithInfoResponder(r *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if r != nil {
			ih.Responder = r
		}
	}
}

// WithInfoProvider replaces the version payload source.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithDocumentProvider sets the source of the OpenAPI JSON document.
func WithDocumentProvider(provider DocumentProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.documentProvider = provider
		}
	}
}

// WithProbeTimeout bounds each individual check.
func WithProbeTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks replaces the liveness checks.
func WithLivenessChecks(checks ...Check) InfoOption {
	return func(ih *InfoHandler) {
		ih.livenessChecks = filterChecks(checks)
	}
}

// WithReadinessChecks replaces the readiness checks.
func WithReadinessChecks(checks ...Check) InfoOption {
	return func(ih *InfoHandler) {
		ih.readinessChecks = filterChecks(checks)
	}
}
