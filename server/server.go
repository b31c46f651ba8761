// Package server assembles the HTTP handler of the probe daemon: on-demand
// probes, readiness and version endpoints, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/drblury/pingcheck/connectivity"
	"github.com/drblury/pingcheck/info"
	"github.com/drblury/pingcheck/metrics"
	"github.com/drblury/pingcheck/probe"
	"github.com/drblury/pingcheck/responder"
	"github.com/drblury/pingcheck/router"
)

// Option configures New.
type Option func(*settings)

type settings struct {
	logger       *slog.Logger
	recorder     *metrics.Recorder
	dependencies []probe.Named
	routerConfig router.Config
	infoProvider info.InfoProvider
	limiter      *rate.Limiter
	validate     bool
}

// WithLogger sets the logger shared by the responder and the access log.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every probe run and serves the registry at /metrics.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *settings) {
		s.recorder = recorder
	}
}

// WithDependencies adds readiness checks next to the database probe.
func WithDependencies(deps ...probe.Named) Option {
	return func(s *settings) {
		s.dependencies = append(s.dependencies, deps...)
	}
}

// WithRouterConfig replaces the middleware settings.
func WithRouterConfig(cfg router.Config) Option {
	return func(s *settings) {
		s.routerConfig = cfg
	}
}

// WithInfoProvider replaces the /version payload.
func WithInfoProvider(provider info.InfoProvider) Option {
	return func(s *settings) {
		s.infoProvider = provider
	}
}

// WithProbeRateLimit caps database probes at limit per second with the
// given burst. Each probe opens a database connection, so neither /probe nor
// /readyz may exhaust the server's connection slots. Throttled readiness
// requests answer with the outcome of the last database check.
func WithProbeRateLimit(limit float64, burst int) Option {
	return func(s *settings) {
		if limit > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
		}
	}
}

// WithoutValidation skips OpenAPI request validation.
func WithoutValidation() Option {
	return func(s *settings) {
		s.validate = false
	}
}

// probeStatuses maps failure kinds to the status of the /probe response.
var probeStatuses = map[string]int{
	string(connectivity.KindConfiguration):  http.StatusInternalServerError,
	string(connectivity.KindTimeout):        http.StatusGatewayTimeout,
	string(connectivity.KindNetwork):        http.StatusServiceUnavailable,
	string(connectivity.KindServer):         http.StatusServiceUnavailable,
	string(connectivity.KindAuthentication): http.StatusServiceUnavailable,
	string(connectivity.KindCanceled):       http.StatusServiceUnavailable,
	string(connectivity.KindUnknown):        http.StatusServiceUnavailable,
}

type handler struct {
	prober  *connectivity.Prober
	resp    *responder.Responder
	limiter *rate.Limiter
}

var errRateLimited = errors.New("probe rate limit exceeded, retry later")

type probeRequest struct {
	TimeoutMs int64 `json:"timeoutMs"`
}

// New returns the daemon handler for prober.
func New(ctx context.Context, prober *connectivity.Prober, opts ...Option) (http.Handler, error) {
	if prober == nil {
		return nil, errors.New("server: prober is required")
	}

	s := &settings{
		logger:       slog.Default(),
		routerConfig: router.DefaultConfig(),
		validate:     true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.recorder != nil {
		prober = prober.With(connectivity.WithObserver(s.recorder.Observe))
	}

	resp := responder.NewResponder(
		responder.WithLogger(s.logger),
		responder.WithErrorClassifier(responder.KindClassifier(probeStatuses)),
		responder.WithStatusMetadata(http.StatusTooManyRequests, responder.StatusMetadata{
			LogLevel: slog.LevelWarn,
			LogMsg:   "probe request throttled",
		}),
	)

	readiness := append([]info.Check{
		info.NamedCheck("database", probe.NewPingProbe("database", (&gatedCheck{
			check:   prober.Check,
			limiter: s.limiter,
		}).Check)),
	}, s.dependencies...)

	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithInfoProvider(s.infoProvider),
		info.WithDocumentProvider(OpenAPIDocument),
		info.WithProbeTimeout(prober.Timeout()+time.Second),
		info.WithReadinessChecks(readiness...),
	)

	h := &handler{prober: prober, resp: resp, limiter: s.limiter}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe", h.getProbe)
	mux.HandleFunc("POST /probe", h.postProbe)
	infoHandler.Register(mux, "")
	if s.recorder != nil {
		mux.Handle("GET /metrics", s.recorder.Handler())
	}

	routerOpts := []router.Option{
		router.WithLogger(s.logger),
		router.WithConfig(s.routerConfig),
	}
	if s.validate {
		doc, err := LoadOpenAPI(ctx)
		if err != nil {
			return nil, err
		}
		routerOpts = append(routerOpts, router.WithSwagger(doc))
	} else {
		routerOpts = append(routerOpts, router.WithoutOpenAPIValidation())
	}

	return router.New(mux, routerOpts...), nil
}

// gatedCheck spends a limiter token per database check and replays the
// last outcome when none is left. The first check always runs. Checks are
// serialized so concurrent readiness requests never stack connections.
type gatedCheck struct {
	check   func(context.Context) error
	limiter *rate.Limiter

	mu      sync.Mutex
	ran     bool
	lastErr error
}

func (g *gatedCheck) Check(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	allowed := g.limiter == nil || g.limiter.Allow()
	if !allowed && g.ran {
		return g.lastErr
	}
	g.lastErr = g.check(ctx)
	g.ran = true
	return g.lastErr
}

func (h *handler) getProbe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.prober)
}

func (h *handler) postProbe(w http.ResponseWriter, r *http.Request) {
	var body probeRequest
	if !h.resp.ReadRequestBody(w, r, &body, true) {
		return
	}
	if body.TimeoutMs < 0 {
		h.resp.HandleBadRequestError(w, r, errors.New("timeoutMs must be positive"))
		return
	}

	p := h.prober
	if body.TimeoutMs > 0 {
		timeout := time.Duration(body.TimeoutMs) * time.Millisecond
		if timeout < p.Timeout() {
			p = p.With(connectivity.WithTimeout(timeout))
		}
	}
	h.respond(w, r, p)
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, p *connectivity.Prober) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		h.resp.HandleAPIError(w, r, http.StatusTooManyRequests, errRateLimited)
		return
	}

	report := p.Run(r.Context())
	if report.OK {
		h.resp.RespondWithJSON(w, r, http.StatusOK, report)
		return
	}
	h.resp.HandleErrors(w, r, report.Error, "database probe failed", report.RunID)
}
