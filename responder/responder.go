package responder

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	jsonContentType    = "application/json"
	problemContentType = "application/problem+json"
	statusDocBaseURL   = "https://httpstatuses.io"
)

// ErrorClassifierFunc maps an error to the HTTP status used for its problem
// document. handled=false hands the error to the next classifier.
type ErrorClassifierFunc func(err error) (status int, handled bool)

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

type statusMeta struct {
	typeURI  string
	title    string
	logLevel slog.Leveler
	logMsg   string
}

// StatusMetadata customises how a status code is logged and titled. A nil
// LogLevel logs at error level.
type StatusMetadata struct {
	TypeURI  string
	Title    string
	LogLevel slog.Leveler
	LogMsg   string
}

// Responder renders JSON payloads and problem documents for HTTP handlers
// and logs every error it reports.
type Responder struct {
	log            *slog.Logger
	statusMetadata map[int]statusMeta
	classifiers    []ErrorClassifierFunc
	clock          func() time.Time
}

// NewResponder constructs a Responder with default status metadata and the
// global slog logger.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log:            slog.Default(),
		statusMetadata: defaultStatusMetadata(),
		clock:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger injects the logger used for error records.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithErrorClassifier appends a classifier consulted by HandleErrors.
// Classifiers run in registration order and the first handled result wins.
func WithErrorClassifier(classifier ErrorClassifierFunc) ResponderOption {
	return func(r *Responder) {
		if classifier != nil {
			r.classifiers = append(r.classifiers, classifier)
		}
	}
}

// WithClock overrides the time source used for problem timestamps.
func WithClock(clock func() time.Time) ResponderOption {
	return func(r *Responder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithStatusMetadata overrides the error metadata used for a specific HTTP
// status code.
func WithStatusMetadata(status int, meta StatusMetadata) ResponderOption {
	return func(r *Responder) {
		if r.statusMetadata == nil {
			r.statusMetadata = make(map[int]statusMeta)
		}
		r.statusMetadata[status] = normalizeStatusMeta(status, statusMeta{
			typeURI:  meta.TypeURI,
			title:    meta.Title,
			logLevel: meta.LogLevel,
			logMsg:   meta.LogMsg,
		})
	}
}

// KindClassifier maps errors exposing ErrorKind() to a status code. Kinds
// missing from statuses are left unhandled.
func KindClassifier(statuses map[string]int) ErrorClassifierFunc {
	return func(err error) (int, bool) {
		var ke kindError
		if !errors.As(err, &ke) {
			return 0, false
		}
		status, ok := statuses[ke.ErrorKind()]
		return status, ok
	}
}

// Logger returns the slog logger used internally by the responder.
func (r *Responder) Logger() *slog.Logger {
	return r.logger()
}

func (r *Responder) logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

func (r *Responder) now() time.Time {
	if r == nil || r.clock == nil {
		return time.Now()
	}
	return r.clock()
}

func (r *Responder) classifyError(err error) (int, bool) {
	for _, classify := range r.classifiers {
		if status, handled := classify(err); handled {
			return status, true
		}
	}
	return 0, false
}

func defaultStatusMetadata() map[int]statusMeta {
	return map[int]statusMeta{
		http.StatusInternalServerError: {logLevel: slog.LevelError},
		http.StatusBadRequest:          {logLevel: slog.LevelWarn},
		http.StatusUnauthorized:        {logLevel: slog.LevelWarn},
		http.StatusServiceUnavailable:  {logLevel: slog.LevelWarn, logMsg: "dependency unavailable"},
		http.StatusGatewayTimeout:      {logLevel: slog.LevelWarn, logMsg: "dependency timed out"},
	}
}
