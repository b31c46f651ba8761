package responder

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ProblemDetails is an RFC 9457 problem document. Kind, Code and Checks are
// extension members copied from errors that describe themselves.
type ProblemDetails struct {
	Type      string            `json:"type,omitempty"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail,omitempty"`
	Instance  string            `json:"instance,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Code      string            `json:"code,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	TraceID   string            `json:"traceId,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

type kindError interface {
	error
	ErrorKind() string
}

type codeError interface {
	error
	ErrorCode() string
}

// checksError reports the outcome of every check behind a failure, not
// only the failing ones.
type checksError interface {
	error
	CheckOutcomes() map[string]string
}

func (r *Responder) statusMetaFor(status int) statusMeta {
	return normalizeStatusMeta(status, r.statusMetadata[status])
}

func (r *Responder) buildProblemDetails(req *http.Request, status int, err error, meta statusMeta) ProblemDetails {
	problem := ProblemDetails{
		Type:      meta.typeURI,
		Title:     meta.title,
		Status:    status,
		Detail:    err.Error(),
		Instance:  requestInstance(req),
		TraceID:   traceIDFor(req),
		Timestamp: r.now().UTC().Format(time.RFC3339),
	}
	var ke kindError
	if errors.As(err, &ke) {
		problem.Kind = ke.ErrorKind()
	}
	var ce codeError
	if errors.As(err, &ce) {
		problem.Code = ce.ErrorCode()
	}
	var chk checksError
	if errors.As(err, &chk) {
		problem.Checks = chk.CheckOutcomes()
	}
	return problem
}

func (r *Responder) logProblem(req *http.Request, meta statusMeta, problem ProblemDetails, msgs []string) {
	attrs := []any{"error", problem.Detail, "traceId", problem.TraceID, "status", problem.Status}
	if problem.Kind != "" {
		attrs = append(attrs, "kind", problem.Kind)
	}
	if problem.Code != "" {
		attrs = append(attrs, "code", problem.Code)
	}
	if len(msgs) > 0 {
		attrs = append(attrs, "logMessages", msgs)
	}
	r.logger().Log(requestContext(req), meta.logLevel.Level(), meta.logMsg, attrs...)
}

func normalizeStatusMeta(status int, meta statusMeta) statusMeta {
	if meta.logLevel == nil {
		meta.logLevel = slog.LevelError
	}
	if meta.title == "" {
		meta.title = http.StatusText(status)
	}
	if meta.logMsg == "" {
		meta.logMsg = meta.title
	}
	if meta.typeURI == "" {
		meta.typeURI = fmt.Sprintf("%s/%d", statusDocBaseURL, status)
	}
	return meta
}
