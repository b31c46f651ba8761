package connectivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

const (
	// DefaultTimeout bounds server selection, connect, and ping.
	DefaultTimeout = 10 * time.Second
	// DefaultCloseTimeout bounds releasing the connection.
	DefaultCloseTimeout = 5 * time.Second
)

// Observer receives every report produced by a Prober.
type Observer func(Report)

// Option configures a Prober via the functional options pattern.
type Option func(*Prober)

// Prober performs single-attempt liveness probes against one URI.
type Prober struct {
	uri          string
	connector    Connector
	timeout      time.Duration
	closeTimeout time.Duration
	logger       *slog.Logger
	observers    []Observer
	now          func() time.Time
}

// New constructs a Prober for uri. Without WithConnector the driver is
// picked from the URI scheme on every Run.
func New(uri string, opts ...Option) *Prober {
	p := &Prober{
		uri:          uri,
		timeout:      DefaultTimeout,
		closeTimeout: DefaultCloseTimeout,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// WithTimeout sets the deadline shared by connect and ping.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithCloseTimeout sets the deadline for releasing the session.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		if timeout > 0 {
			p.closeTimeout = timeout
		}
	}
}

// WithLogger injects the logger used to report outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConnector bypasses scheme based driver selection.
func WithConnector(connector Connector) Option {
	return func(p *Prober) {
		p.connector = connector
	}
}

// WithObserver registers a callback invoked with every report.
func WithObserver(observer Observer) Option {
	return func(p *Prober) {
		if observer != nil {
			p.observers = append(p.observers, observer)
		}
	}
}

// With returns a copy of p with opts applied on top of its settings.
func (p *Prober) With(opts ...Option) *Prober {
	clone := *p
	clone.observers = slices.Clone(p.observers)
	for _, opt := range opts {
		if opt != nil {
			opt(&clone)
		}
	}
	return &clone
}

// Timeout returns the configured probe deadline.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Run performs one connect, ping, release sequence and reports the outcome.
// It never panics on driver failures and always returns within roughly the
// probe timeout plus the close timeout.
func (p *Prober) Run(ctx context.Context) Report {
	if ctx == nil {
		ctx = context.Background()
	}

	start := p.now()
	report := Report{
		RunID:     newRunID(start),
		Target:    Redact(p.uri),
		CheckedAt: start.UTC(),
	}

	connector := p.connector
	if connector == nil {
		selected, err := ConnectorFor(p.uri)
		if err != nil {
			return p.finish(report, start, nil, nil, err)
		}
		connector = selected
	}
	report.Driver = connector.Driver()

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	session, err := p.connect(runCtx, connector)
	if err != nil {
		return p.finish(report, start, connector, nil, err)
	}

	resp, err := p.ping(runCtx, session)
	latency := p.now().Sub(start)

	if closeErr := p.release(ctx, session); closeErr != nil {
		report.CloseError = closeErr.Error()
	}

	report.Latency = latency
	return p.finish(report, start, connector, resp, err)
}

// Check adapts Run to the readiness check signature used by probe.Func.
func (p *Prober) Check(ctx context.Context) error {
	report := p.Run(ctx)
	if report.Error != nil {
		return report.Error
	}
	return nil
}

type connectResult struct {
	session Session
	err     error
}

func (p *Prober) connect(ctx context.Context, connector Connector) (Session, error) {
	done := make(chan connectResult, 1)
	go func() {
		session, err := connector.Connect(ctx, p.uri, p.timeout)
		done <- connectResult{session: session, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if res.session != nil {
				_ = p.release(ctx, res.session)
			}
			return nil, res.err
		}
		if res.session == nil {
			return nil, fmt.Errorf("%s connector returned no session", connector.Driver())
		}
		return res.session, nil
	case <-ctx.Done():
		// The connector ignored its deadline; close whatever it hands back later.
		go func() {
			if res := <-done; res.session != nil {
				_ = p.release(context.Background(), res.session)
			}
		}()
		return nil, p.deadlineError("connect", ctx.Err())
	}
}

type pingResult struct {
	resp Response
	err  error
}

func (p *Prober) ping(ctx context.Context, session Session) (Response, error) {
	done := make(chan pingResult, 1)
	go func() {
		resp, err := session.Ping(ctx)
		done <- pingResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, p.deadlineError("ping", ctx.Err())
	}
}

func (p *Prober) release(parent context.Context, session Session) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.closeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- session.Close(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("release did not finish within %s: %w", p.closeTimeout, ctx.Err())
	}
	if err != nil {
		p.logger.Warn("failed to release database connection", "error", err)
	}
	return err
}

func (p *Prober) deadlineError(stage string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s was cancelled before completing: %w", stage, err)
	}
	return fmt.Errorf("%s did not complete within %s: %w", stage, p.timeout, err)
}

func (p *Prober) finish(report Report, start time.Time, connector Connector, resp Response, err error) Report {
	if report.Latency == 0 {
		report.Latency = p.now().Sub(start)
	}
	report.LatencyMS = float64(report.Latency) / float64(time.Millisecond)

	if err != nil {
		var classifiers []Classifier
		if c, ok := connector.(classifyingConnector); ok {
			classifiers = append(classifiers, c.Classify)
		}
		report.Error = Classify(err, classifiers...)
	} else {
		report.OK = true
		report.Response = resp
		if report.Response == nil {
			report.Response = Response{}
		}
	}

	for _, observe := range p.observers {
		observe(report)
	}
	logReport(p.logger, report)
	return report
}
